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
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/industrace/inventory-client/model"
	"github.com/industrace/inventory-client/store"
	"github.com/industrace/inventory-client/store/memory"
	mstore "github.com/industrace/inventory-client/store/mocks"
)

func site(name string) model.Value {
	return model.Object(model.Record{"name": model.String(name)})
}

func testRecords() []model.Record {
	return []model.Record{
		{
			"id":     model.Int(1),
			"name":   model.String("Pump A"),
			"status": model.String("active"),
			"site":   site("Milan"),
			"rank":   model.Int(2),
		},
		{
			"id":     model.Int(2),
			"name":   model.String("Valve B"),
			"status": model.String("retired"),
			"site":   site("Rome"),
			"rank":   model.Int(1),
		},
		{
			"id":     model.Int(3),
			"name":   model.String("PLC C"),
			"status": model.String("active"),
			"site":   model.Null(),
			"rank":   model.Int(2),
		},
		{
			"id":     model.Int(4),
			"name":   model.String("HMI D"),
			"status": model.String("maintenance"),
			"rank":   model.Int(4),
		},
	}
}

func ids(recs []model.Record) []string {
	rc := make([]string, len(recs))
	for i, r := range recs {
		rc[i] = r.ID()
	}
	return rc
}

func TestFilterDataIdentity(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), nil, Options{})
	recs := testRecords()

	out := s.FilterData(recs, []string{"name"})
	assert.Equal(t, recs, out)

	out = s.FilterData(nil, nil)
	assert.Empty(t, out)
}

func TestFilterDataGlobalSearch(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		term    string
		fields  []string
		records []model.Record
		ids     []string
	}{
		"nested field": {
			term:   "mil",
			fields: []string{"name", "site.name"},
			ids:    []string{"1"},
		},
		"case insensitive": {
			term:   "VALVE",
			fields: []string{"name"},
			ids:    []string{"2"},
		},
		"numbers are stringified": {
			term:   "4",
			fields: []string{"rank"},
			ids:    []string{"4"},
		},
		"missing intermediate is no match": {
			term:   "plc",
			fields: []string{"site.name"},
			ids:    []string{},
		},
		"no search fields": {
			term:   "pump",
			fields: nil,
			ids:    []string{},
		},
		"object values render as [object Object]": {
			term:   "object",
			fields: []string{"site"},
			ids:    []string{"1", "2"},
		},
		"zero is searchable": {
			term:   "0",
			fields: []string{"qty"},
			records: []model.Record{
				{"id": model.Int(1), "qty": model.Int(0)},
				{"id": model.Int(2), "qty": model.Int(10)},
				{"id": model.Int(3), "qty": model.Int(7)},
			},
			ids: []string{"1", "2"},
		},
		"false is searchable": {
			term:   "false",
			fields: []string{"flag"},
			records: []model.Record{
				{"id": model.Int(1), "flag": model.Bool(false)},
				{"id": model.Int(2), "flag": model.Bool(true)},
			},
			ids: []string{"1"},
		},
		"null never matches": {
			term:   "null",
			fields: []string{"qty"},
			records: []model.Record{
				{"id": model.Int(1), "qty": model.Null()},
			},
			ids: []string{},
		},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := New(context.Background(), nil, Options{})
			s.SetGlobalSearch(tc.term)
			records := tc.records
			if records == nil {
				records = testRecords()
			}
			out := s.FilterData(records, tc.fields)
			assert.Equal(t, tc.ids, ids(out))
		})
	}
}

func TestFilterDataMilanScenario(t *testing.T) {
	t.Parallel()

	recs := []model.Record{
		{"name": model.String("Pump A"), "site": site("Milan")},
		{"name": model.String("Valve B"), "site": site("Rome")},
	}
	s := New(context.Background(), nil, Options{})
	s.SetGlobalSearch("mil")

	out := s.FilterData(recs, []string{"name", "site.name"})
	assert.Equal(t, []model.Record{recs[0]}, out)
}

func TestFilterDataSearchIsSound(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), nil, Options{})
	s.SetGlobalSearch("a")
	fields := []string{"name", "site.name"}

	recs := testRecords()
	out := s.FilterData(recs, fields)

	kept := map[string]bool{}
	for _, r := range out {
		kept[r.ID()] = true
	}
	for _, r := range recs {
		assert.Equal(t, kept[r.ID()], newSearch("a", fields).match(r), r.ID())
	}
}

func TestFilterDataFieldFilters(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		filters model.Filters
		ids     []string
	}{
		"scalar equality": {
			filters: model.Filters{"status": model.Scalar(model.String("active"))},
			ids:     []string{"1", "3"},
		},
		"scalar is strict": {
			filters: model.Filters{"rank": model.Scalar(model.String("2"))},
			ids:     []string{},
		},
		"nested scalar": {
			filters: model.Filters{"site.name": model.Scalar(model.String("Rome"))},
			ids:     []string{"2"},
		},
		"combined": {
			filters: model.Filters{
				"status": model.Scalar(model.String("active")),
				"name": model.Matcher(model.String("pump"),
					model.MatchStartsWith),
			},
			ids: []string{"1"},
		},
		"in": {
			filters: model.Filters{
				"rank": model.Matcher(
					model.List(model.Int(1), model.Int(2), model.Int(3)),
					model.MatchIn),
			},
			ids: []string{"1", "2", "3"},
		},
		"notIn": {
			filters: model.Filters{
				"status": model.Matcher(model.Strings("active"), model.MatchNotIn),
			},
			ids: []string{"2", "4"},
		},
		"null field never matches": {
			filters: model.Filters{
				"site.name": model.Matcher(model.String("x"), model.MatchNotEquals),
			},
			ids: []string{"1", "2"},
		},
		"empty values are skipped": {
			filters: model.Filters{"status": model.Scalar(model.String(""))},
			ids:     []string{"1", "2", "3", "4"},
		},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := New(context.Background(), nil, Options{})
			for field, f := range tc.filters {
				s.filters[field] = f
			}
			out := s.FilterData(testRecords(), nil)
			assert.Equal(t, tc.ids, ids(out))
		})
	}
}

func TestMatchMode(t *testing.T) {
	t.Parallel()

	list := model.List(model.Int(1), model.Int(2), model.Int(3))
	testCases := []struct {
		Name    string
		Value   model.Value
		Operand model.Value
		Mode    model.MatchMode
		Match   bool
	}{
		{"contains", model.String("Pump A"), model.String("mp a"), model.MatchContains, true},
		{"contains miss", model.String("Pump A"), model.String("valve"), model.MatchContains, false},
		{"startsWith", model.String("Pump A"), model.String("PU"), model.MatchStartsWith, true},
		{"startsWith miss", model.String("Pump A"), model.String("a"), model.MatchStartsWith, false},
		{"endsWith", model.String("Pump A"), model.String(" a"), model.MatchEndsWith, true},
		{"equals", model.String("Active"), model.String("active"), model.MatchEquals, true},
		{"equals number", model.Int(42), model.String("42"), model.MatchEquals, true},
		{"notEquals", model.String("Active"), model.String("retired"), model.MatchNotEquals, true},
		{"notEquals same", model.String("Active"), model.String("ACTIVE"), model.MatchNotEquals, false},
		{"in", model.Int(2), list, model.MatchIn, true},
		{"in miss", model.Int(4), list, model.MatchIn, false},
		{"in is not stringly", model.String("2"), list, model.MatchIn, false},
		{"in scalar operand", model.Int(2), model.Int(2), model.MatchIn, false},
		{"notIn", model.Int(4), list, model.MatchNotIn, true},
		{"notIn miss", model.Int(2), list, model.MatchNotIn, false},
		{"notIn scalar operand", model.Int(4), model.Int(2), model.MatchNotIn, false},
		{"unknown mode is contains", model.String("Pump A"), model.String("ump"), "fuzzy", true},
		{"null value", model.Null(), model.String(""), model.MatchContains, false},
		{"null value notIn", model.Null(), list, model.MatchNotIn, false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.Match, MatchMode(tc.Value, tc.Operand, tc.Mode))
		})
	}
}

func TestFilterDataSort(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), nil, Options{})
	recs := testRecords()

	s.SortAscending("rank")
	assert.Equal(t, []string{"2", "1", "3", "4"}, ids(s.FilterData(recs, nil)))

	s.SetSort("rank", model.Descending)
	assert.Equal(t, []string{"4", "1", "3", "2"}, ids(s.FilterData(recs, nil)))

	s.SortAscending("site.name")
	out := s.FilterData(recs, nil)
	// missing and null names compare equal to everything, keeping input order
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(out))

	s.SortAscending("name")
	assert.Equal(t, []string{"4", "3", "1", "2"}, ids(s.FilterData(recs, nil)))

	// input untouched
	assert.Equal(t, ids(testRecords()), ids(recs))
}

func TestFilterDataSortIsStable(t *testing.T) {
	t.Parallel()

	var recs []model.Record
	for i := 0; i < 50; i++ {
		recs = append(recs, model.Record{
			"id":    model.Int(i),
			"group": model.Int(i % 3),
		})
	}
	s := New(context.Background(), nil, Options{})
	s.SetSort("group", model.Descending)

	out := s.FilterData(recs, nil)
	require.Len(t, out, len(recs))
	for i := 1; i < len(out); i++ {
		a, _ := out[i-1].Field("group")
		b, _ := out[i].Field("group")
		if a.Compare(b) == 0 {
			x, _ := out[i-1]["id"].Float()
			y, _ := out[i]["id"].Float()
			assert.Less(t, x, y)
		}
	}
}

func TestSetClearFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(ctx, nil, Options{})
	recs := testRecords()
	before := s.FilterData(recs, nil)

	s.SetFilter(ctx, "status", model.Scalar(model.String("active")))
	assert.Len(t, s.FilterData(recs, nil), 2)

	s.ClearFilter(ctx, "status")
	assert.Equal(t, before, s.FilterData(recs, nil))
	assert.Empty(t, s.Filters())

	// idempotent
	s.ClearFilter(ctx, "status")
	assert.Empty(t, s.Filters())

	s.SetFilter(ctx, "status", model.Scalar(model.String("active")))
	s.SetFilter(ctx, "status", model.Scalar(model.Null()))
	_, ok := s.Filters()["status"]
	assert.False(t, ok)
}

func TestApiParams(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(ctx, nil, Options{
		DefaultFilters: model.Filters{"status": model.Scalar(model.String("active"))},
	})
	assert.Equal(t, map[string]interface{}{"status": "active"}, s.ApiParams())

	s.SetSort("name", model.Descending)
	s.SetGlobalSearch("pump")
	s.SetFilter(ctx, "name", model.Matcher(model.String("p"), model.MatchStartsWith))

	params := s.ApiParams()
	assert.Equal(t, map[string]interface{}{
		"status":     "active",
		"search":     "pump",
		"sort_by":    "name",
		"sort_order": "desc",
		"name": map[string]interface{}{
			"value":     "p",
			"matchMode": "startsWith",
		},
	}, params)

	s.SortAscending("name")
	assert.Equal(t, "asc", s.ApiParams()["sort_order"])

	s.SetSort("", model.Descending)
	_, ok := s.ApiParams()["sort_by"]
	assert.False(t, ok)
}

func TestQueryParams(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(ctx, nil, Options{})
	s.SetFilter(ctx, "status", model.Scalar(model.String("active")))
	s.SetFilter(ctx, "rank", model.Matcher(model.List(model.Int(1), model.Int(2)), model.MatchIn))
	s.SetGlobalSearch("pump")
	s.SetSort("name", model.Descending)

	q := s.QueryParams()
	assert.Equal(t, "active", q.Get("status"))
	assert.Equal(t, []string{"1", "2"}, q["rank[value][]"])
	assert.Equal(t, "in", q.Get("rank[matchMode]"))
	assert.Equal(t, "pump", q.Get("search"))
	assert.Equal(t, "name", q.Get("sort_by"))
	assert.Equal(t, "desc", q.Get("sort_order"))
}

func TestPersistence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := memory.NewDataStoreMemory()
	opts := Options{
		DefaultFilters: model.Filters{
			"status":    model.Scalar(model.String("active")),
			"site.name": model.Scalar(model.String("Milan")),
		},
		StorageKey:     "assets",
		DefaultColumns: []string{"name", "status"},
	}

	s := New(ctx, kv, opts)
	assert.Equal(t, 0, kv.Len())

	s.SetFilter(ctx, "status", model.Scalar(model.String("retired")))
	raw, err := kv.Get(ctx, "assets_filters")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"retired","site.name":"Milan"}`, raw)
	raw, err = kv.Get(ctx, "assets_columns")
	require.NoError(t, err)
	assert.JSONEq(t, `["name","status"]`, raw)

	// search and sort are session scoped
	s.SetGlobalSearch("pump")
	s.SetSort("name", model.Descending)
	s.SetColumns(ctx, []string{"name"})

	restored := New(ctx, kv, opts)
	assert.Equal(t, s.Filters(), restored.Filters())
	assert.Equal(t, []string{"name"}, restored.Columns())
	assert.Equal(t, "", restored.GlobalSearch())
	assert.Equal(t, "", restored.SortField())
	assert.Equal(t, model.Ascending, restored.SortDirection())

	restored.ResetFilters(ctx)
	assert.Equal(t, opts.DefaultFilters, restored.Filters())
	raw, err = kv.Get(ctx, "assets_filters")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"active","site.name":"Milan"}`, raw)

	// persisted state is independent from other storage keys
	other := New(ctx, kv, Options{StorageKey: "sites"})
	assert.Empty(t, other.Filters())
}

func TestNewMergesPersistedFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := memory.NewDataStoreMemory()
	require.NoError(t, kv.Set(ctx, "assets_filters", `{"status":"active"}`))

	s := New(ctx, kv, Options{
		DefaultFilters: model.Filters{
			"status":  model.Scalar(model.String("retired")),
			"site_id": model.Scalar(model.Int(7)),
		},
		StorageKey:     "assets",
		DefaultColumns: []string{"name"},
	})
	assert.Equal(t, model.Filters{
		"status":  model.Scalar(model.String("active")),
		"site_id": model.Scalar(model.Int(7)),
	}, s.Filters())
	assert.Equal(t, []string{"name"}, s.Columns())
}

func TestNewLoadsMatchers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := memory.NewDataStoreMemory()
	require.NoError(t, kv.Set(ctx, "assets_filters",
		`{"rank":{"value":[1,2],"matchMode":"in"},"name":null}`))
	require.NoError(t, kv.Set(ctx, "assets_columns", `["name","rank"]`))

	s := New(ctx, kv, Options{
		DefaultFilters: model.Filters{"name": model.Scalar(model.String("Pump A"))},
		StorageKey:     "assets",
	})
	f := s.Filters()
	require.Contains(t, f, "rank")
	assert.True(t, f["rank"].IsMatcher())
	assert.Equal(t, model.MatchIn, f["rank"].MatchMode())
	assert.NotContains(t, f, "name")
	assert.Equal(t, []string{"name", "rank"}, s.Columns())
	assert.Equal(t, []string{"1", "2", "3"}, ids(s.FilterData(testRecords(), nil)))
}

func TestNewFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	defaults := model.Filters{"status": model.Scalar(model.String("active"))}
	testCases := map[string]struct {
		filters string
		columns string
		getErr  error
	}{
		"invalid JSON": {
			filters: `{"status":`,
			columns: `["name"]`,
		},
		"not an object": {
			filters: `["status"]`,
		},
		"store failure": {
			getErr: errors.New("connection refused"),
		},
		"absent": {
			getErr: store.ErrKeyNotFound,
		},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			kv := &mstore.KeyValueStore{}
			kv.On("Get", ctx, "assets_filters").Return(tc.filters, tc.getErr)
			kv.On("Get", ctx, "assets_columns").Return(tc.columns, tc.getErr).Maybe()

			var s *State
			assert.NotPanics(t, func() {
				s = New(ctx, kv, Options{
					DefaultFilters: defaults,
					StorageKey:     "assets",
					DefaultColumns: []string{"id"},
				})
			})
			assert.Equal(t, defaults, s.Filters())
			assert.Equal(t, []string{"id"}, s.Columns())
			kv.AssertExpectations(t)
		})
	}
}

func TestSaveFailureIsAbsorbed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := &mstore.KeyValueStore{}
	kv.On("Get", ctx, mock.AnythingOfType("string")).Return("", store.ErrKeyNotFound)
	kv.On("Set", ctx, "assets_filters", `{"status":"active"}`).
		Return(errors.New("quota exceeded"))
	kv.On("Set", ctx, "assets_columns", `[]`).
		Return(errors.New("quota exceeded"))

	s := New(ctx, kv, Options{StorageKey: "assets"})
	s.SetFilter(ctx, "status", model.Scalar(model.String("active")))

	assert.Equal(t, model.Filters{
		"status": model.Scalar(model.String("active")),
	}, s.Filters())
	assert.Len(t, s.FilterData(testRecords(), nil), 2)
	kv.AssertExpectations(t)
}

func TestNoStorageKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := &mstore.KeyValueStore{}

	s := New(ctx, kv, Options{})
	s.SetFilter(ctx, "status", model.Scalar(model.String("active")))
	s.SetColumns(ctx, []string{"name"})
	s.ResetFilters(ctx)
	s.SaveFilters(ctx)

	kv.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	kv.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}
