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
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/industrace/inventory-client/store"
)

const KeyPrefix = "industrace:prefs:"

// Client is the subset of the redis client used by the store.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// DataStoreRedis shares preferences between every console of a user that
// points at the same redis instance.
type DataStoreRedis struct {
	client Client
	prefix string
}

// NewDataStoreRedis connects to the redis URL (redis://[:pass@]host:port/db).
func NewDataStoreRedis(ctx context.Context, url string) (*DataStoreRedis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "redis store: invalid URL")
	}
	db := NewDataStoreRedisWithClient(redis.NewClient(opts))
	if err := db.Ping(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func NewDataStoreRedisWithClient(client Client) *DataStoreRedis {
	return &DataStoreRedis{client: client, prefix: KeyPrefix}
}

// WithPrefix returns a store namespacing its keys under prefix, e.g. per user.
func (db *DataStoreRedis) WithPrefix(prefix string) *DataStoreRedis {
	return &DataStoreRedis{client: db.client, prefix: prefix}
}

func (db *DataStoreRedis) Ping(ctx context.Context) error {
	if err := db.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis store: ping failed")
	}
	return nil
}

func (db *DataStoreRedis) Get(ctx context.Context, key string) (string, error) {
	v, err := db.client.Get(ctx, db.prefix+key).Result()
	if err == redis.Nil {
		return "", store.ErrKeyNotFound
	} else if err != nil {
		return "", errors.Wrap(err, "redis store: failed to get value")
	}
	return v, nil
}

func (db *DataStoreRedis) Set(ctx context.Context, key string, value string) error {
	if err := db.client.Set(ctx, db.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrap(err, "redis store: failed to set value")
	}
	return nil
}
