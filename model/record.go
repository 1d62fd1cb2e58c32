// Copyright 2024 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package model

import (
	"encoding/json"
	"strings"
)

const pathSeparator = "."

// Record is a single inventory entity (asset, site, contact...) as a tree of
// dynamically typed values.
type Record map[string]Value

// Path addresses a value nested in a Record, one key per segment.
type Path []string

// ParsePath splits a dotted field reference such as "site.name".
func ParsePath(s string) Path {
	return Path(strings.Split(s, pathSeparator))
}

func (p Path) String() string {
	return strings.Join(p, pathSeparator)
}

// Lookup descends into r following p. It reports false when any segment is
// missing or when an intermediate value is not an object.
func (r Record) Lookup(p Path) (Value, bool) {
	if len(p) == 0 {
		return Null(), false
	}
	cur := r
	for i, key := range p {
		v, ok := cur[key]
		if !ok {
			return Null(), false
		}
		if i == len(p)-1 {
			return v, true
		}
		cur, ok = v.Record()
		if !ok {
			return Null(), false
		}
	}
	return Null(), false
}

// Field is Lookup on a dotted field reference.
func (r Record) Field(path string) (Value, bool) {
	return r.Lookup(ParsePath(path))
}

// ID returns the record's "id" attribute rendered as text.
func (r Record) ID() string {
	v, ok := r["id"]
	if !ok || v.IsNull() {
		return ""
	}
	return v.String()
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	rc := make(Record, len(r))
	for k, v := range r {
		rc[k] = v
	}
	return rc
}

// Interface converts r to a plain map suitable for JSON request bodies.
func (r Record) Interface() map[string]interface{} {
	m := make(map[string]interface{}, len(r))
	for k, v := range r {
		m[k] = v.Interface()
	}
	return m
}

// ParseRecords decodes a JSON array of objects. Elements which are not
// objects are skipped.
func ParseRecords(b []byte) ([]Record, error) {
	var raw []Value
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	recs := make([]Record, 0, len(raw))
	for _, v := range raw {
		if rec, ok := v.Record(); ok {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}
