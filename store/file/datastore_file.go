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
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/industrace/inventory-client/store"
)

const (
	lockSuffix     = ".lock"
	lockRetryDelay = 20 * time.Millisecond
	filePerm       = 0o600
	dirPerm        = 0o700
)

// DataStoreFile keeps all values in a single JSON document on disk. Access
// is serialized across processes with an advisory lock next to the file.
type DataStoreFile struct {
	path string
	lock *flock.Flock
}

func NewDataStoreFile(path string) (*DataStoreFile, error) {
	if path == "" {
		return nil, errors.New("file store: path cannot be blank")
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, errors.Wrap(err, "file store: failed to create directory")
	}
	return &DataStoreFile{
		path: path,
		lock: flock.New(path + lockSuffix),
	}, nil
}

func (db *DataStoreFile) Path() string {
	return db.path
}

func (db *DataStoreFile) Get(ctx context.Context, key string) (string, error) {
	locked, err := db.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", errors.Wrap(err, "file store: failed to acquire read lock")
	} else if !locked {
		return "", errors.New("file store: failed to acquire read lock")
	}
	defer db.lock.Unlock()

	values, err := db.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", store.ErrKeyNotFound
	}
	return v, nil
}

func (db *DataStoreFile) Set(ctx context.Context, key string, value string) error {
	locked, err := db.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return errors.Wrap(err, "file store: failed to acquire lock")
	} else if !locked {
		return errors.New("file store: failed to acquire lock")
	}
	defer db.lock.Unlock()

	values, err := db.read()
	if err != nil {
		return err
	}
	values[key] = value
	return db.write(values)
}

func (db *DataStoreFile) read() (map[string]string, error) {
	values := map[string]string{}
	b, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return values, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "file store: failed to read")
	}
	if len(b) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, errors.Wrap(err, "file store: corrupt document")
	}
	return values, nil
}

func (db *DataStoreFile) write(values map[string]string) error {
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "file store: failed to encode")
	}
	tmp, err := os.CreateTemp(filepath.Dir(db.path), filepath.Base(db.path)+".*")
	if err != nil {
		return errors.Wrap(err, "file store: failed to create temporary file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "file store: failed to write")
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "file store: failed to set permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "file store: failed to write")
	}
	if err := os.Rename(tmp.Name(), db.path); err != nil {
		return errors.Wrap(err, "file store: failed to replace document")
	}
	return nil
}
