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

package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrace/inventory-client/store"
)

func TestDataStoreRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	db, err := NewDataStoreRedis(ctx, "redis://"+srv.Addr())
	require.NoError(t, err)

	_, err = db.Get(ctx, "assets_filters")
	assert.Equal(t, store.ErrKeyNotFound, err)

	require.NoError(t, db.Set(ctx, "assets_filters", `{"status":"active"}`))

	v, err := db.Get(ctx, "assets_filters")
	assert.NoError(t, err)
	assert.Equal(t, `{"status":"active"}`, v)

	raw, err := srv.Get(KeyPrefix + "assets_filters")
	assert.NoError(t, err)
	assert.Equal(t, `{"status":"active"}`, raw)

	user := db.WithPrefix("industrace:prefs:user-1:")
	_, err = user.Get(ctx, "assets_filters")
	assert.Equal(t, store.ErrKeyNotFound, err)
}

func TestDataStoreRedisErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewDataStoreRedis(ctx, "http://nope")
	assert.Error(t, err)

	srv := miniredis.RunT(t)
	db, err := NewDataStoreRedis(ctx, "redis://"+srv.Addr())
	require.NoError(t, err)
	srv.Close()

	_, err = db.Get(ctx, "key")
	assert.Error(t, err)
	assert.NotEqual(t, store.ErrKeyNotFound, err)

	err = db.Set(ctx, "key", "value")
	assert.Error(t, err)
}
