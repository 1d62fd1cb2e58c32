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

package main

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/industrace/inventory-client/model"
)

const (
	flagValueSeparator  = ":"
	flagAssignSeparator = "="
	flagListSeparator   = ","

	sortAttributeNameIdx = 0
	sortOrderIdx         = 1
)

// parseSortParam parses "field[:asc|desc]"; the order defaults to asc.
func parseSortParam(s string) (string, model.SortDirection, error) {
	if s == "" {
		return "", model.Ascending, nil
	}
	parts := strings.SplitN(s, flagValueSeparator, 2)
	field := parts[sortAttributeNameIdx]
	if field == "" {
		return "", model.Ascending, errors.New("sort field cannot be blank")
	}
	if len(parts) == 1 {
		return field, model.Ascending, nil
	}
	dir, err := model.ParseSortDirection(parts[sortOrderIdx])
	if err != nil {
		return "", model.Ascending, err
	}
	return field, dir, nil
}

// parseValue reads a flag value as JSON when it is a number, a boolean,
// null or a quoted string; anything else is taken as a plain string.
func parseValue(s string) model.Value {
	var v model.Value
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v.Kind() {
		case model.KindString, model.KindNumber, model.KindBool, model.KindNull:
			return v
		}
	}
	return model.String(s)
}

func splitAssignment(s string) (string, string, error) {
	parts := strings.SplitN(s, flagAssignSeparator, 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", errors.Errorf("invalid filter %q, expected field=value", s)
	}
	return parts[0], parts[1], nil
}

// parseFilterParams parses equality filters given as "field=value".
//
// eg. `status=active` or `rank=2`
func parseFilterParams(params []string) (model.Filters, error) {
	filters := model.Filters{}
	for _, p := range params {
		field, value, err := splitAssignment(p)
		if err != nil {
			return nil, err
		}
		filters[field] = model.Scalar(parseValue(value))
	}
	return filters, nil
}

// parseMatchParams parses match filters given as "field=mode:value". The
// in and notIn modes take a comma separated list.
//
// eg. `name=startsWith:pump` or `status=in:active,maintenance`
func parseMatchParams(params []string) (model.Filters, error) {
	filters := model.Filters{}
	for _, p := range params {
		field, value, err := splitAssignment(p)
		if err != nil {
			return nil, err
		}
		parts := strings.SplitN(value, flagValueSeparator, 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid match %q, expected field=mode:value", p)
		}
		mode := model.MatchMode(parts[0])

		var operand model.Value
		if mode == model.MatchIn || mode == model.MatchNotIn {
			items := []model.Value{}
			for _, item := range strings.Split(parts[1], flagListSeparator) {
				items = append(items, parseValue(item))
			}
			operand = model.List(items...)
		} else {
			operand = model.String(parts[1])
		}

		f := model.Matcher(operand, mode)
		if err := f.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid match %q", p)
		}
		filters[field] = f
	}
	return filters, nil
}

// parseFieldParams parses record attributes given as "field=value".
func parseFieldParams(params []string) (model.Record, error) {
	rec := model.Record{}
	for _, p := range params {
		field, value, err := splitAssignment(p)
		if err != nil {
			return nil, err
		}
		rec[field] = parseValue(value)
	}
	return rec, nil
}
