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

package mongo

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/industrace/inventory-client/store"
)

const (
	DbVersion = "1.0.0"

	DbName             = "industrace"
	DbPreferencesColl  = "preferences"
	DbPrefNamespace    = "namespace"
	DbPrefKey          = "key"
	DbPrefValue        = "value"
	DbPrefUpdatedTs    = "updated_ts"
	DefaultNamespace   = "default"
	connectTimeout     = 10 * time.Second
	indexPreferenceKey = "namespace_key"
)

type DataStoreMongoConfig struct {
	// Mongo connection string
	ConnectionString string

	// SSL support
	SSL           bool
	SSLSkipVerify bool

	// Overwrites credentials provided in connection string if provided
	Username string
	Password string
}

type preference struct {
	Namespace string    `bson:"namespace"`
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedTs time.Time `bson:"updated_ts"`
}

// DataStoreMongo stores preferences as one document per (namespace, key).
type DataStoreMongo struct {
	client      *mongo.Client
	namespace   string
	automigrate bool
}

func NewDataStoreMongoWithClient(client *mongo.Client) *DataStoreMongo {
	return &DataStoreMongo{client: client, namespace: DefaultNamespace}
}

func NewDataStoreMongo(ctx context.Context, config DataStoreMongoConfig) (*DataStoreMongo, error) {
	clientOptions := mopts.Client().
		ApplyURI(config.ConnectionString).
		SetConnectTimeout(connectTimeout).
		SetWriteConcern(writeconcern.New(writeconcern.W(1), writeconcern.J(true)))

	if config.Username != "" || config.Password != "" {
		clientOptions.SetAuth(mopts.Credential{
			Username: config.Username,
			Password: config.Password,
		})
	}
	if config.SSL {
		clientOptions.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: config.SSLSkipVerify,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongo server")
	}
	db := NewDataStoreMongoWithClient(client)
	if err := db.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return db, nil
}

// WithNamespace returns a store scoped to a namespace, e.g. the logged in
// user, sharing the same client.
func (db *DataStoreMongo) WithNamespace(namespace string) *DataStoreMongo {
	return &DataStoreMongo{
		client:      db.client,
		namespace:   namespace,
		automigrate: db.automigrate,
	}
}

func (db *DataStoreMongo) Namespace() string {
	return db.namespace
}

func (db *DataStoreMongo) Ping(ctx context.Context) error {
	if err := db.client.Ping(ctx, nil); err != nil {
		return errors.Wrap(err, "failed to ping mongo server")
	}
	return nil
}

func (db *DataStoreMongo) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func (db *DataStoreMongo) collection() *mongo.Collection {
	return db.client.Database(DbName).Collection(DbPreferencesColl)
}

func (db *DataStoreMongo) Get(ctx context.Context, key string) (string, error) {
	var pref preference
	err := db.collection().FindOne(ctx, bson.M{
		DbPrefNamespace: db.namespace,
		DbPrefKey:       key,
	}).Decode(&pref)
	if err == mongo.ErrNoDocuments {
		return "", store.ErrKeyNotFound
	} else if err != nil {
		return "", errors.Wrap(err, "failed to fetch preference")
	}
	return pref.Value, nil
}

func (db *DataStoreMongo) Set(ctx context.Context, key string, value string) error {
	filter := bson.M{
		DbPrefNamespace: db.namespace,
		DbPrefKey:       key,
	}
	update := bson.M{
		"$set": bson.M{
			DbPrefValue:     value,
			DbPrefUpdatedTs: time.Now().UTC(),
		},
	}
	_, err := db.collection().UpdateOne(ctx, filter, update,
		mopts.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, "failed to store preference")
	}
	return nil
}
