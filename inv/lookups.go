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
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"

	"github.com/industrace/inventory-client/client/cmdb"
	"github.com/industrace/inventory-client/model"
)

const (
	DefaultLookupTTL = 5 * time.Minute

	lookupCacheSize = 32
)

// Lookups caches the reference lists used to populate selections, such as
// asset types and statuses.
type Lookups struct {
	client cmdb.Client
	cache  *expirable.LRU[model.Resource, []model.Record]
}

func NewLookups(client cmdb.Client, ttl time.Duration) *Lookups {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &Lookups{
		client: client,
		cache:  expirable.NewLRU[model.Resource, []model.Record](lookupCacheSize, nil, ttl),
	}
}

func (l *Lookups) Get(ctx context.Context, res model.Resource) ([]model.Record, error) {
	if recs, ok := l.cache.Get(res); ok {
		return cloneRecords(recs), nil
	}
	recs, err := l.client.List(ctx, res, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", res)
	}
	l.cache.Add(res, recs)
	return cloneRecords(recs), nil
}

// Invalidate drops the cached list of res.
func (l *Lookups) Invalidate(res model.Resource) {
	l.cache.Remove(res)
}

func (l *Lookups) Purge() {
	l.cache.Purge()
}

func cloneRecords(recs []model.Record) []model.Record {
	out := make([]model.Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
