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

package store

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrKeyNotFound is returned by Get for keys that were never set.
	ErrKeyNotFound = errors.New("key not found")
)

// KeyValueStore persists small named string blobs, the way a browser's
// local storage does for the web console.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error
}
