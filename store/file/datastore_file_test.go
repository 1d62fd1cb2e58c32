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

package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrace/inventory-client/store"
)

func TestDataStoreFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")

	db, err := NewDataStoreFile(path)
	require.NoError(t, err)

	_, err = db.Get(ctx, "assets_filters")
	assert.Equal(t, store.ErrKeyNotFound, err)

	require.NoError(t, db.Set(ctx, "assets_filters", `{"status":"active"}`))
	require.NoError(t, db.Set(ctx, "assets_columns", `["name"]`))
	require.NoError(t, db.Set(ctx, "assets_filters", `{}`))

	v, err := db.Get(ctx, "assets_filters")
	assert.NoError(t, err)
	assert.Equal(t, `{}`, v)

	// a second handle on the same file sees the same values
	other, err := NewDataStoreFile(path)
	require.NoError(t, err)
	v, err = other.Get(ctx, "assets_columns")
	assert.NoError(t, err)
	assert.Equal(t, `["name"]`, v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())
}

func TestDataStoreFileCorrupt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	db, err := NewDataStoreFile(path)
	require.NoError(t, err)

	_, err = db.Get(ctx, "key")
	assert.EqualError(t, err, "file store: corrupt document: "+
		"invalid character 'n' looking for beginning of object key string")

	err = db.Set(ctx, "key", "value")
	assert.Error(t, err)
}

func TestNewDataStoreFileBlankPath(t *testing.T) {
	_, err := NewDataStoreFile("")
	assert.EqualError(t, err, "file store: path cannot be blank")
}
