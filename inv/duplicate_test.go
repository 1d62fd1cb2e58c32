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

package inv

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrace/inventory-client/client/cmdb"
	"github.com/industrace/inventory-client/model"
	"github.com/industrace/inventory-client/notify"
)

func TestHasValidName(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		kind     model.EntityKind
		original model.Record
		valid    bool
	}{
		"asset": {
			kind:     model.EntityAsset,
			original: model.Record{"name": model.String("Pump A")},
			valid:    true,
		},
		"asset without name": {
			kind:     model.EntityAsset,
			original: model.Record{"tag": model.String("P-01")},
		},
		"asset blank name": {
			kind:     model.EntityAsset,
			original: model.Record{"name": model.String("")},
		},
		"asset null name": {
			kind:     model.EntityAsset,
			original: model.Record{"name": model.Null()},
		},
		"contact": {
			kind: model.EntityContact,
			original: model.Record{
				"first_name": model.String("Ada"),
				"last_name":  model.String("Lovelace"),
			},
			valid: true,
		},
		"contact without last name": {
			kind:     model.EntityContact,
			original: model.Record{"first_name": model.String("Ada")},
		},
		"nil": {
			kind: model.EntitySite,
		},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.valid, HasValidName(tc.kind, tc.original))
		})
	}
}

func TestPrepareDuplicate(t *testing.T) {
	t.Parallel()

	system := model.Record{
		"id":         model.String("a1"),
		"created_at": model.String("2024-01-01T00:00:00Z"),
		"updated_at": model.String("2024-01-02T00:00:00Z"),
		"tenant_id":  model.String("t1"),
		"deleted_at": model.Null(),
	}
	with := func(fields model.Record) model.Record {
		rec := system.Clone()
		for k, v := range fields {
			rec[k] = v
		}
		return rec
	}

	testCases := map[string]struct {
		kind     model.EntityKind
		original model.Record
		out      model.Record
	}{
		"asset": {
			kind: model.EntityAsset,
			original: with(model.Record{
				"name":          model.String("Pump A"),
				"tag":           model.String("P-01"),
				"floorplan":     model.String("x.png"),
				"documents":     model.List(),
				"photos":        model.List(),
				"custom_fields": model.Object(model.Record{}),
				"site":          model.Object(model.Record{"name": model.String("Milan")}),
			}),
			out: model.Record{
				"name": model.String("Copy of Pump A"),
				"tag":  model.String("P-01"),
				"site": model.Object(model.Record{"name": model.String("Milan")}),
			},
		},
		"location": {
			kind: model.EntityLocation,
			original: with(model.Record{
				"name":      model.String("Hall 1"),
				"code":      model.String("H1"),
				"floorplan": model.String("h1.png"),
			}),
			out: model.Record{"name": model.String("Copy of Hall 1")},
		},
		"site": {
			kind:     model.EntitySite,
			original: with(model.Record{"name": model.String("Milan"), "code": model.String("MI")}),
			out:      model.Record{"name": model.String("Copy of Milan")},
		},
		"supplier": {
			kind: model.EntitySupplier,
			original: with(model.Record{
				"name":       model.String("ACME"),
				"vat_number": model.String("IT123"),
				"documents":  model.List(),
			}),
			out: model.Record{
				"name":       model.String("Copy of ACME"),
				"vat_number": model.String("IT123"),
			},
		},
		"contact": {
			kind: model.EntityContact,
			original: with(model.Record{
				"first_name": model.String("Ada"),
				"last_name":  model.String("Lovelace"),
			}),
			out: model.Record{
				"first_name": model.String("Copy of Ada"),
				"last_name":  model.String("Lovelace"),
			},
		},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			before := tc.original.Clone()
			assert.Equal(t, tc.out, PrepareDuplicate(tc.kind, tc.original))
			assert.Equal(t, before, tc.original)
		})
	}
}

func TestDuplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	original := model.Record{
		"id":   model.String("s1"),
		"name": model.String("Milan"),
		"code": model.String("MI"),
	}

	t.Run("ok", func(t *testing.T) {
		exec, rec := newTestExecutor()
		var sent model.Record
		out, err := exec.Duplicate(ctx, model.EntitySite, original,
			func(_ context.Context, r model.Record) (model.Record, error) {
				sent = r
				created := r.Clone()
				created["id"] = model.String("s2")
				return created, nil
			})
		require.NoError(t, err)
		assert.Equal(t, model.Record{"name": model.String("Copy of Milan")}, sent)
		assert.Equal(t, "s2", out.ID())

		last, ok := rec.Last()
		require.True(t, ok)
		assert.Equal(t, notify.SeveritySuccess, last.Severity)
		assert.Equal(t, "sites.duplicated", last.Detail)
	})

	t.Run("invalid original", func(t *testing.T) {
		exec, rec := newTestExecutor()
		_, err := exec.Duplicate(ctx, model.EntitySite, model.Record{"code": model.String("MI")},
			func(context.Context, model.Record) (model.Record, error) {
				t.Fatal("create must not be called")
				return nil, nil
			})
		assert.Equal(t, ErrInvalidOriginal, err)
		assert.Empty(t, rec.Notifications())
	})

	t.Run("create fails", func(t *testing.T) {
		exec, rec := newTestExecutor()
		_, err := exec.Duplicate(ctx, model.EntitySite, original,
			func(context.Context, model.Record) (model.Record, error) {
				return nil, &cmdb.APIError{Status: 409, ErrorCode: "CONFLICT"}
			})
		assert.EqualError(t, err, "failed to duplicate site: cmdb: HTTP 409: Conflict (CONFLICT)")
		_, ok := cmdb.AsAPIError(errors.Cause(err))
		assert.True(t, ok)

		last, ok := rec.Last()
		require.True(t, ok)
		assert.Equal(t, notify.SeverityError, last.Severity)
		assert.Equal(t, "sites.duplicateError: errors.CONFLICT", last.Detail)
	})
}
