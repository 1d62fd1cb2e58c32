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
	"net/url"
	"sort"

	"github.com/industrace/inventory-client/model"
)

// ApiParams merges the filters with the search term and sort order, in the
// shape accepted by the list endpoints.
func (s *State) ApiParams() map[string]interface{} {
	params := make(map[string]interface{}, len(s.filters)+3)
	for field, f := range s.filters {
		params[field] = f.Interface()
	}
	if s.globalSearch != "" {
		params[ParamSearch] = s.globalSearch
	}
	if s.sortField != "" {
		params[ParamSortBy] = s.sortField
		params[ParamSortOrder] = s.sortDirection.String()
	}
	return params
}

// QueryParams encodes ApiParams as a query string: lists as repeated
// "field[]" keys and matchers as "field[value]" and "field[matchMode]".
func (s *State) QueryParams() url.Values {
	q := url.Values{}
	for field, f := range s.filters {
		if f.IsMatcher() {
			addValue(q, field+"[value]", f.Value())
			q.Set(field+"[matchMode]", string(f.MatchMode()))
			continue
		}
		addValue(q, field, f.Value())
	}
	if s.globalSearch != "" {
		q.Set(ParamSearch, s.globalSearch)
	}
	if s.sortField != "" {
		q.Set(ParamSortBy, s.sortField)
		q.Set(ParamSortOrder, s.sortDirection.String())
	}
	return q
}

func addValue(q url.Values, key string, v model.Value) {
	switch v.Kind() {
	case model.KindNull:
		return
	case model.KindList:
		items, _ := v.Items()
		for _, item := range items {
			q.Add(key+"[]", item.String())
		}
	case model.KindObject:
		rec, _ := v.Record()
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			addValue(q, key+"["+k+"]", rec[k])
		}
	default:
		q.Add(key, v.String())
	}
}
