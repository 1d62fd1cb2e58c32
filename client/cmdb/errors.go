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

package cmdb

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/industrace/inventory-client/model"
)

var (
	// ErrUnauthorized is the cause of every APIError with status 401: the
	// session is missing or expired.
	ErrUnauthorized = errors.New("cmdb: unauthorized")
)

// APIError is a non-2xx response of the CMDB.
type APIError struct {
	Status           int
	ErrorCode        string
	Message          string
	ValidationErrors []model.ValidationError
	// FieldErrors is the plain {"errors": {field: message}} form.
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.ErrorCode != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.ErrorCode)
	}
	if len(e.ValidationErrors) > 0 {
		fields := make([]string, len(e.ValidationErrors))
		for i, v := range e.ValidationErrors {
			fields[i] = v.Field
		}
		msg += ": " + strings.Join(fields, ", ")
	}
	return fmt.Sprintf("cmdb: HTTP %d: %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// parseAPIError decodes the error document of the backend:
//
//	{"error_code": "...", "detail": "...",
//	 "validation_errors": [{"field": "body -> name", "error_code": "...", "message": "..."}]}
//
// detail may also be a list of validation issues; non-JSON bodies are kept
// as the message.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if !gjson.ValidBytes(body) {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	doc := gjson.ParseBytes(body)
	apiErr.ErrorCode = doc.Get("error_code").String()

	detail := doc.Get("detail")
	switch {
	case detail.Type == gjson.String:
		apiErr.Message = detail.String()
	case detail.IsArray():
		for _, d := range detail.Array() {
			apiErr.ValidationErrors = append(apiErr.ValidationErrors,
				model.ValidationError{
					Field:   locField(d.Get("loc")),
					Message: d.Get("msg").String(),
				})
		}
	default:
		apiErr.Message = doc.Get("message").String()
	}

	for _, v := range doc.Get("validation_errors").Array() {
		apiErr.ValidationErrors = append(apiErr.ValidationErrors,
			model.ValidationError{
				Field:     v.Get("field").String(),
				Message:   v.Get("message").String(),
				ErrorCode: v.Get("error_code").String(),
			})
	}
	if fields := doc.Get("errors"); fields.IsObject() {
		apiErr.FieldErrors = map[string]string{}
		fields.ForEach(func(k, v gjson.Result) bool {
			apiErr.FieldErrors[k.String()] = v.String()
			return true
		})
	}
	return apiErr
}

func locField(loc gjson.Result) string {
	if !loc.IsArray() {
		return loc.String()
	}
	parts := []string{}
	for _, p := range loc.Array() {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " -> ")
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
