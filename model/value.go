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
	"math"
	"strconv"
	"strings"
)

// Kind is the dynamic type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	}
	return "null"
}

// Value is a single JSON value as returned by the inventory backend. The zero
// Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  Record
	list []Value
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func Int(i int) Value { return Number(float64(i)) }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Object(r Record) Value {
	if r == nil {
		r = Record{}
	}
	return Value{kind: KindObject, obj: r}
}

func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Strings is a convenience constructor for a list of strings.
func Strings(items ...string) Value {
	vals := make([]Value, len(items))
	for i, s := range items {
		vals[i] = String(s)
	}
	return List(vals...)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether v is null or the empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) Boolean() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) Record() (Record, bool) {
	return v.obj, v.kind == KindObject
}

func (v Value) Items() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// String renders the value the way a browser would when converting it to
// text: numbers without trailing zeros, lists joined by commas.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindObject:
		return "[object Object]"
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	}
	return ""
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StrictEqual compares two scalar values by kind and content. Objects and
// lists are never strictly equal to anything: they only ever match by
// identity, which decoded values do not have.
func (v Value) StrictEqual(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	}
	return false
}

// Contains reports whether the list v holds an element strictly equal to e.
// A non-list v contains nothing.
func (v Value) Contains(e Value) bool {
	if v.kind != KindList {
		return false
	}
	for _, item := range v.list {
		if item.StrictEqual(e) {
			return true
		}
	}
	return false
}

// Compare orders two values with the relational semantics of "<" and ">"
// on loosely typed data: two strings compare lexically, anything else is
// compared numerically. Pairs that cannot be ordered compare as equal.
func (v Value) Compare(o Value) int {
	a, b := v.primitive(), o.primitive()
	if a.kind == KindString && b.kind == KindString {
		return strings.Compare(a.str, b.str)
	}
	x, y := a.number(), b.number()
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func (v Value) primitive() Value {
	if v.kind == KindObject || v.kind == KindList {
		return String(v.String())
	}
	return v
}

func (v Value) number() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindNull:
		return 0
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// FromInterface converts a decoded JSON value (or a Go scalar) into a
// Value. Unsupported types become null.
func FromInterface(i interface{}) Value {
	switch t := i.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case Record:
		return Object(t)
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case map[string]interface{}:
		rec := make(Record, len(t))
		for k, e := range t {
			rec[k] = FromInterface(e)
		}
		return Object(rec)
	case []interface{}:
		items := make([]Value, len(t))
		for n, e := range t {
			items[n] = FromInterface(e)
		}
		return List(items...)
	case []string:
		return Strings(t...)
	case []Value:
		return List(t...)
	}
	return Null()
}

// Interface returns the plain Go representation of v, as produced by
// encoding/json when decoding into interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindObject:
		m := make(map[string]interface{}, len(v.obj))
		for k, e := range v.obj {
			m[k] = e.Interface()
		}
		return m
	case KindList:
		l := make([]interface{}, len(v.list))
		for n, e := range v.list {
			l[n] = e.Interface()
		}
		return l
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var i interface{}
	if err := json.Unmarshal(b, &i); err != nil {
		return err
	}
	*v = FromInterface(i)
	return nil
}
