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

package memory

import (
	"context"
	"sync"

	"github.com/industrace/inventory-client/store"
)

// DataStoreMemory keeps values for the lifetime of the process only.
type DataStoreMemory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewDataStoreMemory() *DataStoreMemory {
	return &DataStoreMemory{values: map[string]string{}}
}

func (db *DataStoreMemory) Get(ctx context.Context, key string) (string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.values[key]
	if !ok {
		return "", store.ErrKeyNotFound
	}
	return v, nil
}

func (db *DataStoreMemory) Set(ctx context.Context, key string, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.values[key] = value
	return nil
}

// Len returns the number of stored keys.
func (db *DataStoreMemory) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.values)
}
