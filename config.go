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
	"github.com/mendersoftware/go-lib-micro/config"
)

const (
	SettingServerURL        = "server_url"
	SettingServerURLDefault = "http://localhost:8000/api"

	SettingTimeout        = "timeout"
	SettingTimeoutDefault = "10s"

	SettingRetryCount        = "retry_count"
	SettingRetryCountDefault = 2

	SettingEmail    = "email"
	SettingPassword = "password"

	SettingStore        = "store"
	SettingStoreDefault = StoreFile

	SettingStorePath = "store_path"

	SettingDb        = "mongo"
	SettingDbDefault = "mongodb://localhost:27017"

	SettingDbSSL        = "mongo_ssl"
	SettingDbSSLDefault = false

	SettingDbSSLSkipVerify        = "mongo_ssl_skipverify"
	SettingDbSSLSkipVerifyDefault = false

	SettingDbUsername = "mongo_username"
	SettingDbPassword = "mongo_password"

	SettingDbNamespace        = "mongo_namespace"
	SettingDbNamespaceDefault = "default"

	SettingDbAutomigrate        = "mongo_automigrate"
	SettingDbAutomigrateDefault = true

	SettingRedis        = "redis"
	SettingRedisDefault = "redis://localhost:6379/0"

	SettingLocale = "locale"

	SettingFallbackLocale        = "fallback_locale"
	SettingFallbackLocaleDefault = "en"

	SettingRefreshInterval        = "refresh_interval"
	SettingRefreshIntervalDefault = "5m"

	SettingIdleTimeout        = "idle_timeout"
	SettingIdleTimeoutDefault = "10m"

	SettingLookupCacheTTL        = "lookup_cache_ttl"
	SettingLookupCacheTTLDefault = "5m"
)

// Preference store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
)

var (
	configDefaults = []config.Default{
		{Key: SettingServerURL, Value: SettingServerURLDefault},
		{Key: SettingTimeout, Value: SettingTimeoutDefault},
		{Key: SettingRetryCount, Value: SettingRetryCountDefault},
		{Key: SettingStore, Value: SettingStoreDefault},
		{Key: SettingDb, Value: SettingDbDefault},
		{Key: SettingDbSSL, Value: SettingDbSSLDefault},
		{Key: SettingDbSSLSkipVerify, Value: SettingDbSSLSkipVerifyDefault},
		{Key: SettingDbNamespace, Value: SettingDbNamespaceDefault},
		{Key: SettingDbAutomigrate, Value: SettingDbAutomigrateDefault},
		{Key: SettingRedis, Value: SettingRedisDefault},
		{Key: SettingFallbackLocale, Value: SettingFallbackLocaleDefault},
		{Key: SettingRefreshInterval, Value: SettingRefreshIntervalDefault},
		{Key: SettingIdleTimeout, Value: SettingIdleTimeoutDefault},
		{Key: SettingLookupCacheTTL, Value: SettingLookupCacheTTLDefault},
	}
)
