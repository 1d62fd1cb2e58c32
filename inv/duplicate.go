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

	"github.com/pkg/errors"

	"github.com/industrace/inventory-client/model"
)

const copyPrefix = "Copy of "

var ErrInvalidOriginal = errors.New("inv: invalid original for duplication")

// CreateFunc stores a new record and returns it as saved by the backend.
type CreateFunc func(ctx context.Context, rec model.Record) (model.Record, error)

func nameFields(kind model.EntityKind) []string {
	if kind == model.EntityContact {
		return []string{"first_name", "last_name"}
	}
	return []string{"name"}
}

// HasValidName tells whether original carries the name fields of its kind.
func HasValidName(kind model.EntityKind, original model.Record) bool {
	if original == nil {
		return false
	}
	for _, f := range nameFields(kind) {
		v, ok := original[f]
		if !ok || v.IsEmpty() {
			return false
		}
	}
	return true
}

// PrepareDuplicate copies original without the attributes owned by the
// backend or bound to the original, and marks the copy in its name.
func PrepareDuplicate(kind model.EntityKind, original model.Record) model.Record {
	exclude := map[string]bool{}
	for _, f := range model.SystemFields {
		exclude[f] = true
	}
	for _, f := range model.Entities[kind].DuplicateExclude {
		exclude[f] = true
	}

	dup := model.Record{}
	for k, v := range original.Clone() {
		if !exclude[k] {
			dup[k] = v
		}
	}

	field := nameFields(kind)[0]
	if name, ok := dup[field]; ok && !name.IsEmpty() {
		dup[field] = model.String(copyPrefix + name.String())
	}
	return dup
}

// Duplicate creates a copy of original through create, notifying the
// outcome with the messages of kind.
func (e *Executor) Duplicate(
	ctx context.Context,
	kind model.EntityKind,
	original model.Record,
	create CreateFunc,
) (model.Record, error) {
	if !HasValidName(kind, original) {
		return nil, ErrInvalidOriginal
	}
	dup := PrepareDuplicate(kind, original)

	var created model.Record
	err := e.Execute(ctx, func(ctx context.Context) error {
		var err error
		created, err = create(ctx, dup)
		return err
	}, ExecOptions{
		SuccessMessage: e.tr.T(kind.MessageKey("duplicated")),
		ErrorContext:   e.tr.T(kind.MessageKey("duplicateError")),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to duplicate %s", kind)
	}
	return created, nil
}
