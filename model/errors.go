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

package model

import "strings"

const fieldPathSeparator = " -> "

// ValidationError is a single entry of the "validation_errors" list returned
// by the backend on a rejected request.
type ValidationError struct {
	Field     string `json:"field"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// LastField returns the innermost segment of a nested field reference such
// as "body -> site -> name".
func (e ValidationError) LastField() string {
	parts := strings.Split(e.Field, fieldPathSeparator)
	return parts[len(parts)-1]
}
