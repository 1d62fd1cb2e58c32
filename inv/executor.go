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
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/industrace/inventory-client/client/cmdb"
	"github.com/industrace/inventory-client/i18n"
	"github.com/industrace/inventory-client/model"
	"github.com/industrace/inventory-client/notify"
)

// Translator resolves message keys; *i18n.Resolver implements it.
type Translator interface {
	T(key string, params ...i18n.Params) string
}

type ExecOptions struct {
	// SuccessMessage is notified when the call succeeds; none when empty.
	SuccessMessage string
	// ErrorContext prefixes the error notification.
	ErrorContext string
	// Silent suppresses every notification.
	Silent bool
}

// Executor runs backend calls, tracking their state and reporting the
// outcome to the user.
type Executor struct {
	sink notify.Sink
	tr   Translator

	mu      sync.Mutex
	loading int
	err     error
}

func NewExecutor(sink notify.Sink, tr Translator) *Executor {
	return &Executor{sink: sink, tr: tr}
}

// Execute runs call and returns its error unchanged.
func (e *Executor) Execute(
	ctx context.Context,
	call func(ctx context.Context) error,
	opts ExecOptions,
) error {
	e.mu.Lock()
	e.loading++
	e.err = nil
	e.mu.Unlock()

	err := call(ctx)

	e.mu.Lock()
	e.loading--
	e.err = err
	e.mu.Unlock()

	if opts.Silent {
		return err
	}
	if err != nil {
		e.NotifyError(ctx, err, opts.ErrorContext)
	} else if opts.SuccessMessage != "" {
		e.NotifySuccess(ctx, opts.SuccessMessage)
	}
	return err
}

func (e *Executor) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading > 0
}

// Err returns the error of the last call.
func (e *Executor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Executor) Reset() {
	e.mu.Lock()
	e.err = nil
	e.mu.Unlock()
}

func (e *Executor) NotifySuccess(ctx context.Context, detail string) {
	e.sink.Notify(ctx, notify.Notification{
		Severity: notify.SeveritySuccess,
		Summary:  e.tr.T("common.success"),
		Detail:   detail,
		Life:     notify.LifeSuccess,
	})
}

func (e *Executor) NotifyError(ctx context.Context, err error, errorContext string) {
	detail, life := ErrorDetail(e.tr, err, errorContext)
	e.sink.Notify(ctx, notify.Notification{
		Severity: notify.SeverityError,
		Summary:  e.tr.T("common.error"),
		Detail:   detail,
		Life:     life,
	})
}

func (e *Executor) notifyWarning(ctx context.Context, detail string) {
	e.sink.Notify(ctx, notify.Notification{
		Severity: notify.SeverityWarn,
		Summary:  e.tr.T("common.warning"),
		Detail:   detail,
		Life:     notify.LifeSuccess,
	})
}

// ErrorDetail renders err for the user. Backend validation errors become
// one "field: message" line each; other failures become the translated
// error code, prefixed with errorContext.
func ErrorDetail(tr Translator, err error, errorContext string) (string, time.Duration) {
	apiErr, ok := cmdb.AsAPIError(err)
	if ok && len(apiErr.ValidationErrors) > 0 {
		lines := make([]string, len(apiErr.ValidationErrors))
		for i, v := range apiErr.ValidationErrors {
			lines[i] = v.Field + ": " + validationMessage(tr, v)
		}
		return strings.Join(lines, "\n"), notify.LifeValidation
	}

	var msg string
	switch {
	case ok && apiErr.ErrorCode != "":
		msg = tr.T(errorKey(apiErr.ErrorCode))
	case ok:
		msg = tr.T("errors.generic")
	default:
		msg = tr.T("errors.network")
	}
	if errorContext != "" {
		msg = fmt.Sprintf("%s: %s", errorContext, msg)
	}
	return msg, notify.LifeError
}

func validationMessage(tr Translator, v model.ValidationError) string {
	switch {
	case v.ErrorCode != "":
		return tr.T(errorKey(v.ErrorCode))
	case v.Message != "":
		return v.Message
	default:
		return tr.T("errors.generic")
	}
}

func errorKey(code string) string {
	return "errors." + code
}
