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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/industrace/inventory-client/client/cmdb"
	"github.com/industrace/inventory-client/i18n"
	"github.com/industrace/inventory-client/inv"
	"github.com/industrace/inventory-client/notify"
	"github.com/industrace/inventory-client/store"
	"github.com/industrace/inventory-client/store/file"
	"github.com/industrace/inventory-client/store/memory"
	"github.com/industrace/inventory-client/store/mongo"
	"github.com/industrace/inventory-client/store/redis"
	"github.com/industrace/inventory-client/utils"
)

const preferencesFile = "preferences.json"

// environment holds the components shared by the commands.
type environment struct {
	out io.Writer

	prefs   store.KeyValueStore
	closer  func(ctx context.Context) error
	tr      *i18n.Resolver
	client  cmdb.Client
	session *inv.Session
	exec    *inv.Executor
	inv     inv.InventoryApp
	dates   *utils.DateFormatter
}

func makeDataStoreConfig(c config.Reader) mongo.DataStoreMongoConfig {
	return mongo.DataStoreMongoConfig{
		ConnectionString: c.GetString(SettingDb),

		SSL:           c.GetBool(SettingDbSSL),
		SSLSkipVerify: c.GetBool(SettingDbSSLSkipVerify),

		Username: c.GetString(SettingDbUsername),
		Password: c.GetString(SettingDbPassword),
	}
}

func defaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate the configuration directory")
	}
	return filepath.Join(dir, "industrace", preferencesFile), nil
}

// makeStore opens the preference store selected in the configuration. The
// returned closer is nil when the store holds no resources.
func makeStore(
	ctx context.Context,
	c config.Reader,
) (store.KeyValueStore, func(context.Context) error, error) {
	switch kind := c.GetString(SettingStore); kind {
	case StoreMemory:
		return memory.NewDataStoreMemory(), nil, nil

	case StoreFile:
		path := c.GetString(SettingStorePath)
		if path == "" {
			var err error
			if path, err = defaultStorePath(); err != nil {
				return nil, nil, err
			}
		}
		db, err := file.NewDataStoreFile(path)
		return db, nil, err

	case StoreMongo:
		db, err := mongo.NewDataStoreMongo(ctx, makeDataStoreConfig(c))
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to db")
		}
		if c.GetBool(SettingDbAutomigrate) {
			db = db.WithAutomigrate()
		}
		if err := db.Migrate(ctx, mongo.DbVersion); err != nil {
			_ = db.Close(ctx)
			return nil, nil, errors.Wrap(err, "failed to run migrations")
		}
		return db.WithNamespace(c.GetString(SettingDbNamespace)), db.Close, nil

	case StoreRedis:
		db, err := redis.NewDataStoreRedis(ctx, c.GetString(SettingRedis))
		return db, nil, err

	default:
		return nil, nil, errors.Errorf("unknown preference store %q", kind)
	}
}

// consoleSink prints notifications for the user.
func consoleSink(w io.Writer) notify.Sink {
	return notify.SinkFunc(func(_ context.Context, n notify.Notification) {
		if n.Detail == "" {
			fmt.Fprintln(w, n.Summary)
			return
		}
		fmt.Fprintf(w, "%s: %s\n", n.Summary, n.Detail)
	})
}

func newEnvironment(
	ctx context.Context,
	c config.Reader,
	out, errOut io.Writer,
	debug bool,
) (*environment, error) {
	prefs, closer, err := makeStore(ctx, c)
	if err != nil {
		return nil, err
	}
	env := &environment{out: out, prefs: prefs, closer: closer}

	env.tr, err = i18n.New(ctx, i18n.Options{
		Store:          prefs,
		Locale:         c.GetString(SettingLocale),
		FallbackLocale: c.GetString(SettingFallbackLocale),
	})
	if err != nil {
		env.close(ctx)
		return nil, err
	}

	env.client = cmdb.NewClient(c.GetString(SettingServerURL), cmdb.ClientOptions{
		Timeout:    c.GetDuration(SettingTimeout),
		RetryCount: c.GetInt(SettingRetryCount),
		OnUnauthorized: func(ctx context.Context) {
			log.FromContext(ctx).Warn(env.tr.T("auth.sessionExpired"))
			env.session.Logout(ctx)
		},
	})
	env.session = inv.NewSession(env.client, inv.SessionOptions{
		Store:           prefs,
		RefreshInterval: c.GetDuration(SettingRefreshInterval),
		IdleTimeout:     c.GetDuration(SettingIdleTimeout),
	})
	env.session.Restore(ctx)

	sink := notify.Multi{consoleSink(errOut)}
	if debug {
		sink = append(sink, notify.LogSink{})
	}
	env.exec = inv.NewExecutor(sink, env.tr)
	env.inv = inv.NewInventory(env.client, env.exec,
		inv.NewLookups(env.client, c.GetDuration(SettingLookupCacheTTL)))
	env.dates = utils.NewDateFormatter(env.tr, nil)
	return env, nil
}

func (env *environment) close(ctx context.Context) {
	if env.session != nil {
		env.session.StopTokenRefresh()
	}
	if env.closer != nil {
		if err := env.closer(ctx); err != nil {
			log.FromContext(ctx).Warnf("failed to close the preference store: %v", err)
		}
	}
}
