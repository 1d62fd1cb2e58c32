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

// Package filters keeps the filter, search, sort and column state of a list
// view and applies it to in-memory records or renders it as query
// parameters for the server.
package filters

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/industrace/inventory-client/model"
	"github.com/industrace/inventory-client/store"
)

const (
	filtersSuffix = "_filters"
	columnsSuffix = "_columns"

	ParamSearch    = "search"
	ParamSortBy    = "sort_by"
	ParamSortOrder = "sort_order"
)

type Options struct {
	// DefaultFilters are applied on construction and on reset.
	DefaultFilters model.Filters
	// StorageKey prefixes the persisted blobs; empty disables persistence.
	StorageKey     string
	DefaultColumns []string
}

// State is the filter state of a single list view. It is not safe for
// concurrent use.
type State struct {
	store    store.KeyValueStore
	key      string
	defaults model.Filters

	filters       model.Filters
	globalSearch  string
	sortField     string
	sortDirection model.SortDirection
	columns       []string
}

// New builds the state from opts, overlaying whatever was last persisted
// under opts.StorageKey. Unreadable blobs are ignored.
func New(ctx context.Context, kv store.KeyValueStore, opts Options) *State {
	s := &State{
		store:         kv,
		key:           opts.StorageKey,
		defaults:      withoutEmpty(opts.DefaultFilters),
		sortDirection: model.Ascending,
		columns:       append([]string(nil), opts.DefaultColumns...),
	}
	s.filters = s.defaults.Clone()
	s.load(ctx)
	return s
}

func withoutEmpty(fs model.Filters) model.Filters {
	rc := make(model.Filters, len(fs))
	for field, f := range fs {
		if !f.IsEmpty() {
			rc[field] = f
		}
	}
	return rc
}

func (s *State) persistent() bool {
	return s.store != nil && s.key != ""
}

func (s *State) load(ctx context.Context) {
	if !s.persistent() {
		return
	}
	l := log.FromContext(ctx)

	if raw, ok := s.read(ctx, s.key+filtersSuffix); ok {
		var saved model.Filters
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			l.Warnf("failed to load saved filters %s: %v", s.key, err)
			return
		}
		for field, f := range saved {
			if f.IsEmpty() {
				delete(s.filters, field)
				continue
			}
			s.filters[field] = f
		}
	}

	if raw, ok := s.read(ctx, s.key+columnsSuffix); ok {
		var cols []string
		if err := json.Unmarshal([]byte(raw), &cols); err != nil {
			l.Warnf("failed to load saved columns %s: %v", s.key, err)
			return
		}
		s.columns = cols
	}
}

func (s *State) read(ctx context.Context, key string) (string, bool) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if err != store.ErrKeyNotFound {
			log.FromContext(ctx).Warnf("failed to read %s: %v", key, err)
		}
		return "", false
	}
	return raw, raw != ""
}

// SaveFilters writes the filters and the selected columns to the store.
// Failures are logged; the in-memory state stays authoritative.
func (s *State) SaveFilters(ctx context.Context) {
	if !s.persistent() {
		return
	}
	l := log.FromContext(ctx)

	if b, err := json.Marshal(s.filters); err != nil {
		l.Warnf("failed to encode filters %s: %v", s.key, err)
	} else if err := s.store.Set(ctx, s.key+filtersSuffix, string(b)); err != nil {
		l.Warnf("failed to save filters %s: %v", s.key, err)
	}

	cols := s.columns
	if cols == nil {
		cols = []string{}
	}
	if b, err := json.Marshal(cols); err != nil {
		l.Warnf("failed to encode columns %s: %v", s.key, err)
	} else if err := s.store.Set(ctx, s.key+columnsSuffix, string(b)); err != nil {
		l.Warnf("failed to save columns %s: %v", s.key, err)
	}
}

// SetFilter sets the filter on field. An empty value removes it instead.
func (s *State) SetFilter(ctx context.Context, field string, f model.FilterValue) {
	if f.IsEmpty() {
		delete(s.filters, field)
	} else {
		s.filters[field] = f
	}
	s.SaveFilters(ctx)
}

func (s *State) ClearFilter(ctx context.Context, field string) {
	delete(s.filters, field)
	s.SaveFilters(ctx)
}

func (s *State) SetGlobalSearch(term string) {
	s.globalSearch = term
}

// SetSort orders results by field. An empty field disables sorting.
func (s *State) SetSort(field string, dir model.SortDirection) {
	if dir != model.Descending {
		dir = model.Ascending
	}
	s.sortField = field
	s.sortDirection = dir
}

func (s *State) SortAscending(field string) {
	s.SetSort(field, model.Ascending)
}

// ResetFilters restores the default filters, clears search and sort, and
// persists the defaults.
func (s *State) ResetFilters(ctx context.Context) {
	s.filters = s.defaults.Clone()
	s.globalSearch = ""
	s.sortField = ""
	s.sortDirection = model.Ascending
	s.SaveFilters(ctx)
}

func (s *State) SetColumns(ctx context.Context, cols []string) {
	s.columns = append([]string(nil), cols...)
	s.SaveFilters(ctx)
}

func (s *State) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Filters returns a copy of the active filters.
func (s *State) Filters() model.Filters {
	return s.filters.Clone()
}

func (s *State) GlobalSearch() string {
	return s.globalSearch
}

func (s *State) SortField() string {
	return s.sortField
}

func (s *State) SortDirection() model.SortDirection {
	return s.sortDirection
}

// FilterData returns the records passing the global search and every field
// filter, sorted when a sort field is set. records is not modified.
func (s *State) FilterData(records []model.Record, searchFields []string) []model.Record {
	out := make([]model.Record, 0, len(records))
	search := newSearch(s.globalSearch, searchFields)
	filters := s.compile()

	for _, rec := range records {
		if !search.match(rec) {
			continue
		}
		if !filters.match(rec) {
			continue
		}
		out = append(out, rec)
	}

	if s.sortField != "" {
		path := model.ParsePath(s.sortField)
		dir := int(s.sortDirection)
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := out[i].Lookup(path)
			b, _ := out[j].Lookup(path)
			return a.Compare(b)*dir < 0
		})
	}
	return out
}
