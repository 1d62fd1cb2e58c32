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

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
)

// MatchMode selects how a Matcher compares a record field with its operand.
type MatchMode string

const (
	MatchContains   MatchMode = "contains"
	MatchStartsWith MatchMode = "startsWith"
	MatchEndsWith   MatchMode = "endsWith"
	MatchEquals     MatchMode = "equals"
	MatchNotEquals  MatchMode = "notEquals"
	MatchIn         MatchMode = "in"
	MatchNotIn      MatchMode = "notIn"
)

var validMatchModes = []interface{}{
	MatchContains,
	MatchStartsWith,
	MatchEndsWith,
	MatchEquals,
	MatchNotEquals,
	MatchIn,
	MatchNotIn,
}

const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

var validSortOrders = []interface{}{SortOrderAsc, SortOrderDesc}

type SortDirection int

const (
	Ascending  SortDirection = 1
	Descending SortDirection = -1
)

func (d SortDirection) String() string {
	if d == Descending {
		return SortOrderDesc
	}
	return SortOrderAsc
}

func ParseSortDirection(s string) (SortDirection, error) {
	if err := validation.Validate(s, validation.In(validSortOrders...)); err != nil {
		return Ascending, errors.Wrapf(err, "invalid sort order %q", s)
	}
	if s == SortOrderDesc {
		return Descending, nil
	}
	return Ascending, nil
}

// FilterValue is the value of a single per-field filter: either a plain
// value the field must strictly equal, or a matcher pairing an operand with
// a MatchMode.
type FilterValue struct {
	value   Value
	mode    MatchMode
	matcher bool
}

func Scalar(v Value) FilterValue {
	return FilterValue{value: v}
}

func Matcher(v Value, mode MatchMode) FilterValue {
	return FilterValue{value: v, mode: mode, matcher: true}
}

func (f FilterValue) IsMatcher() bool { return f.matcher }

func (f FilterValue) Value() Value { return f.value }

func (f FilterValue) MatchMode() MatchMode { return f.mode }

// IsEmpty reports whether the filter carries no constraint. Matchers are
// never empty.
func (f FilterValue) IsEmpty() bool {
	return !f.matcher && f.value.IsEmpty()
}

func (f FilterValue) Validate() error {
	if !f.matcher {
		return nil
	}
	err := validation.Validate(f.mode,
		validation.Required, validation.In(validMatchModes...))
	if err != nil {
		return errors.Wrap(err, "matchMode")
	}
	if f.mode == MatchIn || f.mode == MatchNotIn {
		if f.value.Kind() != KindList {
			return errors.Errorf("match mode %s requires a list value", f.mode)
		}
	}
	return nil
}

// Interface returns the wire form of the filter: the bare value, or
// {"value": ..., "matchMode": ...} for matchers.
func (f FilterValue) Interface() interface{} {
	if !f.matcher {
		return f.value.Interface()
	}
	return map[string]interface{}{
		"value":     f.value.Interface(),
		"matchMode": string(f.mode),
	}
}

func (f FilterValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Interface())
}

// UnmarshalJSON recognises matchers as objects with a non-empty "matchMode".
func (f *FilterValue) UnmarshalJSON(b []byte) error {
	var v Value
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FilterValueFrom(v)
	return nil
}

// FilterValueFrom classifies a decoded value as a scalar or a matcher.
func FilterValueFrom(v Value) FilterValue {
	if rec, ok := v.Record(); ok {
		if mode, ok := rec["matchMode"].Text(); ok && mode != "" {
			return Matcher(rec["value"], MatchMode(mode))
		}
	}
	return Scalar(v)
}

// Filters maps field references to their filter.
type Filters map[string]FilterValue

func (fs Filters) Clone() Filters {
	rc := make(Filters, len(fs))
	for k, v := range fs {
		rc[k] = v
	}
	return rc
}

func (fs Filters) Validate() error {
	for field, f := range fs {
		if field == "" {
			return errors.New("filter field cannot be blank")
		}
		if err := f.Validate(); err != nil {
			return errors.Wrapf(err, "filter %s", field)
		}
	}
	return nil
}
