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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/industrace/inventory-client/store"
)

func TestDataStoreMemory(t *testing.T) {
	ctx := context.Background()
	db := NewDataStoreMemory()

	_, err := db.Get(ctx, "sites_filters")
	assert.Equal(t, store.ErrKeyNotFound, err)

	assert.NoError(t, db.Set(ctx, "sites_filters", `{"code":"MI"}`))
	assert.NoError(t, db.Set(ctx, "sites_filters", `{"code":"RM"}`))

	v, err := db.Get(ctx, "sites_filters")
	assert.NoError(t, err)
	assert.Equal(t, `{"code":"RM"}`, v)
	assert.Equal(t, 1, db.Len())
}
