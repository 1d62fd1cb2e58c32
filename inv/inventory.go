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
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/industrace/inventory-client/client/cmdb"
	"github.com/industrace/inventory-client/filters"
	"github.com/industrace/inventory-client/model"
)

var ErrSearchTooShort = errors.New("inv: search query too short")

// ListQuery selects the records of a list view.
type ListQuery struct {
	State *filters.State
	// Local fetches every record and applies the filters client-side.
	Local bool
}

// InventoryApp is the inventory client used by the command line.
type InventoryApp interface {
	HealthCheck(ctx context.Context) error
	ListRecords(ctx context.Context, res model.Resource, q ListQuery) ([]model.Record, error)
	GetRecord(ctx context.Context, res model.Resource, id string) (model.Record, error)
	DeleteRecord(ctx context.Context, res model.Resource, id string, hard bool) error
	DeleteRecords(ctx context.Context, res model.Resource, ids []string) error
	UpdateRecords(ctx context.Context, res model.Resource, ids []string, fields model.Record) error
	DuplicateRecord(ctx context.Context, kind model.EntityKind, id string) (model.Record, error)
	ListTrash(ctx context.Context, res model.Resource) ([]model.Record, error)
	RestoreRecord(ctx context.Context, res model.Resource, id string) error
	EmptyTrash(ctx context.Context, res model.Resource) error
	Search(ctx context.Context, q string, limit int) ([]model.SearchResult, error)
	Lookup(ctx context.Context, res model.Resource) ([]model.Record, error)
	Export(ctx context.Context, res model.Resource, q url.Values) ([]byte, error)
	Import(ctx context.Context, res model.Resource, filename string, r io.Reader, confirm bool) (model.Record, error)
}

type inventory struct {
	client  cmdb.Client
	exec    *Executor
	lookups *Lookups
}

func NewInventory(client cmdb.Client, exec *Executor, lookups *Lookups) InventoryApp {
	return &inventory{client: client, exec: exec, lookups: lookups}
}

func (i *inventory) HealthCheck(ctx context.Context) error {
	if _, err := i.client.CurrentUser(ctx); err != nil {
		return errors.Wrap(err, "error reaching CMDB")
	}
	return nil
}

// message resolves an entity message of the resource, if it has one.
func (i *inventory) message(res model.Resource, name string) string {
	e, ok := model.EntityForResource(res)
	if !ok {
		return ""
	}
	return i.exec.tr.T(e.Kind.MessageKey(name))
}

func (i *inventory) ListRecords(
	ctx context.Context,
	res model.Resource,
	q ListQuery,
) ([]model.Record, error) {
	var params url.Values
	if q.State != nil && !q.Local {
		params = q.State.QueryParams()
	}
	var recs []model.Record
	err := i.exec.Execute(ctx, func(ctx context.Context) (err error) {
		recs, err = i.client.List(ctx, res, params)
		return err
	}, ExecOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", res)
	}
	if q.State != nil && q.Local {
		var searchFields []string
		if e, ok := model.EntityForResource(res); ok {
			searchFields = e.SearchFields
		}
		recs = q.State.FilterData(recs, searchFields)
	}
	return recs, nil
}

func (i *inventory) GetRecord(ctx context.Context, res model.Resource, id string) (model.Record, error) {
	var rec model.Record
	err := i.exec.Execute(ctx, func(ctx context.Context) (err error) {
		rec, err = i.client.Get(ctx, res, id)
		return err
	}, ExecOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s %s", res, id)
	}
	return rec, nil
}

func (i *inventory) DeleteRecord(ctx context.Context, res model.Resource, id string, hard bool) error {
	del, msg := i.client.Delete, "deleted"
	if hard {
		del, msg = i.client.HardDelete, "hardDeleted"
	}
	err := i.exec.Execute(ctx, func(ctx context.Context) error {
		return del(ctx, res, id)
	}, ExecOptions{SuccessMessage: i.message(res, msg)})
	if err != nil {
		return errors.Wrapf(err, "failed to delete %s %s", res, id)
	}
	i.lookups.Invalidate(res)
	return nil
}

func (i *inventory) DeleteRecords(ctx context.Context, res model.Resource, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := i.exec.Execute(ctx, func(ctx context.Context) error {
		return i.client.BulkSoftDelete(ctx, res, ids)
	}, ExecOptions{SuccessMessage: i.message(res, "deleted")})
	if err != nil {
		return errors.Wrapf(err, "failed to delete %s", res)
	}
	i.lookups.Invalidate(res)
	return nil
}

func (i *inventory) UpdateRecords(
	ctx context.Context,
	res model.Resource,
	ids []string,
	fields model.Record,
) error {
	if len(ids) == 0 {
		return nil
	}
	err := i.exec.Execute(ctx, func(ctx context.Context) error {
		return i.client.BulkUpdate(ctx, res, ids, fields)
	}, ExecOptions{SuccessMessage: i.exec.tr.T("common.success")})
	if err != nil {
		return errors.Wrapf(err, "failed to update %s", res)
	}
	i.lookups.Invalidate(res)
	return nil
}

func (i *inventory) DuplicateRecord(
	ctx context.Context,
	kind model.EntityKind,
	id string,
) (model.Record, error) {
	e, ok := model.Entities[kind]
	if !ok {
		return nil, errors.Errorf("inv: unknown entity %q", kind)
	}
	original, err := i.GetRecord(ctx, e.Resource, id)
	if err != nil {
		return nil, err
	}
	dup, err := i.exec.Duplicate(ctx, kind, original,
		func(ctx context.Context, rec model.Record) (model.Record, error) {
			return i.client.Create(ctx, e.Resource, rec)
		})
	if err != nil {
		return nil, err
	}
	i.lookups.Invalidate(e.Resource)
	return dup, nil
}

func (i *inventory) ListTrash(ctx context.Context, res model.Resource) ([]model.Record, error) {
	var recs []model.Record
	err := i.exec.Execute(ctx, func(ctx context.Context) (err error) {
		recs, err = i.client.ListTrash(ctx, res, nil)
		return err
	}, ExecOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list deleted %s", res)
	}
	return recs, nil
}

func (i *inventory) RestoreRecord(ctx context.Context, res model.Resource, id string) error {
	err := i.exec.Execute(ctx, func(ctx context.Context) error {
		return i.client.Restore(ctx, res, id)
	}, ExecOptions{SuccessMessage: i.message(res, "restored")})
	if err != nil {
		return errors.Wrapf(err, "failed to restore %s %s", res, id)
	}
	i.lookups.Invalidate(res)
	return nil
}

func (i *inventory) EmptyTrash(ctx context.Context, res model.Resource) error {
	err := i.exec.Execute(ctx, func(ctx context.Context) error {
		return i.client.EmptyTrash(ctx, res)
	}, ExecOptions{SuccessMessage: i.message(res, "hardDeleted")})
	if err != nil {
		return errors.Wrapf(err, "failed to empty the trash of %s", res)
	}
	return nil
}

func (i *inventory) Search(ctx context.Context, q string, limit int) ([]model.SearchResult, error) {
	q = strings.TrimSpace(q)
	if len(q) < model.MinSearchLength {
		return nil, ErrSearchTooShort
	}
	var results []model.SearchResult
	err := i.exec.Execute(ctx, func(ctx context.Context) (err error) {
		results, err = i.client.GlobalSearch(ctx, q, limit)
		return err
	}, ExecOptions{ErrorContext: i.exec.tr.T("search.error")})
	if err != nil {
		return nil, errors.Wrap(err, "search failed")
	}
	return results, nil
}

func (i *inventory) Lookup(ctx context.Context, res model.Resource) ([]model.Record, error) {
	return i.lookups.Get(ctx, res)
}

func (i *inventory) Export(ctx context.Context, res model.Resource, q url.Values) ([]byte, error) {
	b, err := i.client.Download(ctx, "/"+res.String()+"/export", q)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to export %s", res)
	}
	return b, nil
}

// Import uploads a spreadsheet of records. Without confirm the backend
// only returns a preview of the changes.
func (i *inventory) Import(
	ctx context.Context,
	res model.Resource,
	filename string,
	r io.Reader,
	confirm bool,
) (model.Record, error) {
	step := "preview"
	if confirm {
		step = "confirm"
	}
	var out model.Record
	err := i.exec.Execute(ctx, func(ctx context.Context) (err error) {
		out, err = i.client.Upload(ctx, "/"+res.String()+"/import/xlsx/"+step, "file", filename, r)
		return err
	}, ExecOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to import %s", res)
	}
	if confirm {
		i.lookups.Invalidate(res)
	}
	return out, nil
}
