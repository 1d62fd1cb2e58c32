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

package filters

import (
	"sort"
	"strings"

	"github.com/industrace/inventory-client/model"
)

type search struct {
	term  string
	paths []model.Path
}

func newSearch(term string, fields []string) search {
	s := search{term: strings.ToLower(term)}
	for _, f := range fields {
		s.paths = append(s.paths, model.ParsePath(f))
	}
	return s
}

func (s search) match(rec model.Record) bool {
	if s.term == "" {
		return true
	}
	for _, p := range s.paths {
		v, ok := rec.Lookup(p)
		if !ok || v.IsNull() {
			continue
		}
		if strings.Contains(strings.ToLower(v.String()), s.term) {
			return true
		}
	}
	return false
}


type fieldFilter struct {
	path   model.Path
	filter model.FilterValue
}

type compiled []fieldFilter

// compile resolves the filter paths once, in field order so results do not
// depend on map iteration.
func (s *State) compile() compiled {
	fields := make([]string, 0, len(s.filters))
	for field := range s.filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	c := make(compiled, 0, len(fields))
	for _, field := range fields {
		f := s.filters[field]
		if f.IsEmpty() {
			continue
		}
		c = append(c, fieldFilter{path: model.ParsePath(field), filter: f})
	}
	return c
}

func (c compiled) match(rec model.Record) bool {
	for _, ff := range c {
		v, _ := rec.Lookup(ff.path)
		if !Match(v, ff.filter) {
			return false
		}
	}
	return true
}

// Match applies a single filter to a resolved field value. Scalars require
// strict equality; matchers apply their match mode.
func Match(v model.Value, f model.FilterValue) bool {
	if !f.IsMatcher() {
		return v.StrictEqual(f.Value())
	}
	return MatchMode(v, f.Value(), f.MatchMode())
}

// MatchMode compares v with operand. Text modes work on the lower cased
// string forms, in and notIn test membership of the raw value in a list
// operand. Unknown modes behave as contains. A null v never matches.
func MatchMode(v, operand model.Value, mode model.MatchMode) bool {
	if v.IsNull() {
		return false
	}
	str := strings.ToLower(v.String())
	op := strings.ToLower(operand.String())

	switch mode {
	case model.MatchContains:
		return strings.Contains(str, op)
	case model.MatchStartsWith:
		return strings.HasPrefix(str, op)
	case model.MatchEndsWith:
		return strings.HasSuffix(str, op)
	case model.MatchEquals:
		return str == op
	case model.MatchNotEquals:
		return str != op
	case model.MatchIn:
		return operand.Kind() == model.KindList && operand.Contains(v)
	case model.MatchNotIn:
		return operand.Kind() == model.KindList && !operand.Contains(v)
	}
	return strings.Contains(str, op)
}
