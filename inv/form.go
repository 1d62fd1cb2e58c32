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
	"sort"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"

	"github.com/industrace/inventory-client/client/cmdb"
	"github.com/industrace/inventory-client/model"
)

var ErrFormInvalid = errors.New("inv: form is invalid")

// FormRules are the local validation rules of each form field.
type FormRules map[string][]validation.Rule

type SubmitOptions struct {
	SuccessMessage string
	ErrorContext   string
	// SkipValidation submits without running the local rules first.
	SkipValidation bool
}

// SubmitFunc sends the form data to the backend.
type SubmitFunc func(ctx context.Context, data model.Record) (model.Record, error)

// Form is the editing state of a record.
type Form struct {
	exec    *Executor
	rules   FormRules
	initial model.Record

	mu         sync.Mutex
	data       model.Record
	errors     map[string]string
	dirty      bool
	submitting bool
}

func NewForm(exec *Executor, initial model.Record, rules FormRules) *Form {
	if initial == nil {
		initial = model.Record{}
	}
	return &Form{
		exec:    exec,
		rules:   rules,
		initial: initial.Clone(),
		data:    initial.Clone(),
		errors:  map[string]string{},
	}
}

func (f *Form) Data() model.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.Clone()
}

// Set changes a field and marks the form dirty.
func (f *Form) Set(field string, v model.Value) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[field] = v
	f.dirty = true
}

// SetForm replaces the data, e.g. with a freshly loaded record.
func (f *Form) SetForm(data model.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = data.Clone()
	f.dirty = false
}

func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = f.initial.Clone()
	f.errors = map[string]string{}
	f.dirty = false
	f.submitting = false
}

func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *Form) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors) == 0
}

func (f *Form) IsDirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

func (f *Form) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *Form) checkField(field string) error {
	v := f.data[field]
	return validation.Validate(v.Interface(), f.rules[field]...)
}

// Validate runs every rule and replaces the field errors.
func (f *Form) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = map[string]string{}

	fields := make([]string, 0, len(f.rules))
	for field := range f.rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if err := f.checkField(field); err != nil {
			f.errors[field] = err.Error()
		}
	}
	return len(f.errors) == 0
}

func (f *Form) ValidateField(field string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkField(field); err != nil {
		f.errors[field] = err.Error()
		return false
	}
	delete(f.errors, field)
	return true
}

// Submit validates the data and hands it to call. Backend validation
// errors are mapped onto the form fields before being returned.
func (f *Form) Submit(ctx context.Context, call SubmitFunc, opts SubmitOptions) (model.Record, error) {
	if !opts.SkipValidation && !f.Validate() {
		f.exec.notifyWarning(ctx, f.exec.tr.T("form.validationError"))
		return nil, ErrFormInvalid
	}

	f.mu.Lock()
	f.submitting = true
	data := f.data.Clone()
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	var saved model.Record
	err := f.exec.Execute(ctx, func(ctx context.Context) error {
		var err error
		saved, err = call(ctx, data)
		return err
	}, ExecOptions{
		SuccessMessage: opts.SuccessMessage,
		ErrorContext:   opts.ErrorContext,
	})
	if err != nil {
		f.applyErrors(err)
		return nil, err
	}

	f.mu.Lock()
	f.dirty = false
	f.mu.Unlock()
	return saved, nil
}

func (f *Form) applyErrors(err error) {
	apiErr, ok := cmdb.AsAPIError(err)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case len(apiErr.ValidationErrors) > 0:
		for _, v := range apiErr.ValidationErrors {
			f.errors[v.LastField()] = validationMessage(f.exec.tr, v)
		}
	case apiErr.FieldErrors != nil:
		f.errors = make(map[string]string, len(apiErr.FieldErrors))
		for k, v := range apiErr.FieldErrors {
			f.errors[k] = v
		}
	}
}
