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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLookup(t *testing.T) {
	rec := Record{
		"id":   Int(7),
		"name": String("Pump"),
		"site": Object(Record{
			"name": String("Milan"),
			"area": Null(),
		}),
		"tags": Strings("a"),
	}

	testCases := map[string]struct {
		path  string
		value Value
		ok    bool
	}{
		"top level":         {path: "name", value: String("Pump"), ok: true},
		"nested":            {path: "site.name", value: String("Milan"), ok: true},
		"nested null":       {path: "site.area", value: Null(), ok: true},
		"through null":      {path: "site.area.name", ok: false},
		"through list":      {path: "tags.0", ok: false},
		"missing":           {path: "serial", ok: false},
		"missing nested":    {path: "site.code", ok: false},
		"through primitive": {path: "name.first", ok: false},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			v, ok := rec.Field(tc.path)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.value, v)
		})
	}

	_, ok := rec.Lookup(nil)
	assert.False(t, ok)
	assert.Equal(t, "7", rec.ID())
	assert.Equal(t, "", Record{"id": Null()}.ID())
	assert.Equal(t, "site.name", ParsePath("site.name").String())
}

func TestRecordClone(t *testing.T) {
	rec := Record{"name": String("Pump")}
	rc := rec.Clone()
	rc["name"] = String("Valve")
	assert.Equal(t, String("Pump"), rec["name"])
	assert.Nil(t, Record(nil).Clone())
}

func TestParseRecords(t *testing.T) {
	recs, err := ParseRecords([]byte(`[{"id":"a"},1,null,{"id":"b","site":{"name":"Rome"}}]`))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].ID())
	assert.Equal(t, map[string]interface{}{
		"id":   "b",
		"site": map[string]interface{}{"name": "Rome"},
	}, recs[1].Interface())

	_, err = ParseRecords([]byte(`{"id":"a"}`))
	assert.Error(t, err)
}

func TestValidationErrorLastField(t *testing.T) {
	assert.Equal(t, "name", ValidationError{Field: "body -> site -> name"}.LastField())
	assert.Equal(t, "email", ValidationError{Field: "email"}.LastField())
	assert.Equal(t, "", ValidationError{}.LastField())
}

func TestEntities(t *testing.T) {
	for kind, e := range Entities {
		assert.Equal(t, kind, e.Kind)
		assert.NoError(t, e.Resource.Validate())
		found, ok := EntityForResource(e.Resource)
		assert.True(t, ok)
		assert.Equal(t, kind, found.Kind)
	}
	_, ok := EntityForResource(ResourceUsers)
	assert.False(t, ok)
	assert.Error(t, Resource("things").Validate())
	assert.Equal(t, "assets.duplicated", EntityAsset.MessageKey("duplicated"))
}

func TestResourceValidate(t *testing.T) {
	testCases := map[string]struct {
		res Resource
		err bool
	}{
		"assets":       {res: ResourceAssets},
		"nested path":  {res: ResourcePrintTemplates},
		"blank":        {res: "", err: true},
		"unknown":      {res: "things", err: true},
		"wrong casing": {res: "Assets", err: true},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := tc.res.Validate()
			if tc.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
