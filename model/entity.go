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
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Resource is the collection segment of a backend endpoint, e.g. the
// "assets" in /api/assets/{id}.
type Resource string

const (
	ResourceAssets         Resource = "assets"
	ResourceSites          Resource = "sites"
	ResourceLocations      Resource = "locations"
	ResourceAreas          Resource = "areas"
	ResourceSuppliers      Resource = "suppliers"
	ResourceManufacturers  Resource = "manufacturers"
	ResourceContacts       Resource = "contacts"
	ResourceAssetTypes     Resource = "asset-types"
	ResourceAssetStatuses  Resource = "asset-statuses"
	ResourceUsers          Resource = "users"
	ResourceRoles          Resource = "roles"
	ResourceAuditLogs      Resource = "audit-logs"
	ResourcePrintTemplates Resource = "print/templates"
)

var AllResources = []Resource{
	ResourceAssets,
	ResourceSites,
	ResourceLocations,
	ResourceAreas,
	ResourceSuppliers,
	ResourceManufacturers,
	ResourceContacts,
	ResourceAssetTypes,
	ResourceAssetStatuses,
	ResourceUsers,
	ResourceRoles,
	ResourceAuditLogs,
	ResourcePrintTemplates,
}

func (r Resource) String() string {
	return string(r)
}

// Validate checks r is a known collection. The rules run on the plain
// string: ozzo calls Validate on Validatable values once the rules pass.
func (r Resource) Validate() error {
	valid := make([]interface{}, len(AllResources))
	for i, res := range AllResources {
		valid[i] = string(res)
	}
	return validation.Validate(string(r), validation.Required, validation.In(valid...))
}

type EntityKind string

const (
	EntityAsset        EntityKind = "asset"
	EntityLocation     EntityKind = "location"
	EntitySite         EntityKind = "site"
	EntitySupplier     EntityKind = "supplier"
	EntityManufacturer EntityKind = "manufacturer"
	EntityContact      EntityKind = "contact"
	EntityArea         EntityKind = "area"
)

// Attributes the backend owns; never sent back when copying an entity.
var SystemFields = []string{"id", "created_at", "updated_at", "tenant_id", "deleted_at"}

// Entity describes how the client presents and copies one kind of record.
type Entity struct {
	Kind     EntityKind
	Resource Resource

	// SearchFields are the dotted field references matched by the
	// global search box of the list view.
	SearchFields []string

	// Columns shown when the user has not picked any.
	Columns []string

	// DuplicateExclude lists attributes dropped on duplication in
	// addition to SystemFields.
	DuplicateExclude []string
}

var Entities = map[EntityKind]Entity{
	EntityAsset: {
		Kind:     EntityAsset,
		Resource: ResourceAssets,
		SearchFields: []string{
			"name", "tag", "serial_number", "model",
			"site.name", "location.name", "asset_type.name",
			"manufacturer.name",
		},
		Columns: []string{
			"name", "tag", "asset_type.name", "status.name",
			"site.name", "location.name", "business_criticality",
		},
		DuplicateExclude: []string{"floorplan", "documents", "photos", "custom_fields"},
	},
	EntityLocation: {
		Kind:             EntityLocation,
		Resource:         ResourceLocations,
		SearchFields:     []string{"name", "code", "description", "site.name", "area.name"},
		Columns:          []string{"name", "code", "site.name", "area.name"},
		DuplicateExclude: []string{"floorplan", "code"},
	},
	EntitySite: {
		Kind:             EntitySite,
		Resource:         ResourceSites,
		SearchFields:     []string{"name", "code", "address", "description"},
		Columns:          []string{"name", "code", "address"},
		DuplicateExclude: []string{"code"},
	},
	EntitySupplier: {
		Kind:             EntitySupplier,
		Resource:         ResourceSuppliers,
		SearchFields:     []string{"name", "vat_number", "city", "email", "phone"},
		Columns:          []string{"name", "vat_number", "city", "country", "email"},
		DuplicateExclude: []string{"documents", "code"},
	},
	EntityManufacturer: {
		Kind:         EntityManufacturer,
		Resource:     ResourceManufacturers,
		SearchFields: []string{"name", "description", "website", "email"},
		Columns:      []string{"name", "website", "email", "phone"},
	},
	EntityContact: {
		Kind:         EntityContact,
		Resource:     ResourceContacts,
		SearchFields: []string{"first_name", "last_name", "email", "phone1", "type"},
		Columns:      []string{"first_name", "last_name", "email", "phone1", "type"},
	},
	EntityArea: {
		Kind:         EntityArea,
		Resource:     ResourceAreas,
		SearchFields: []string{"name", "code", "typology", "site.name"},
		Columns:      []string{"name", "code", "typology", "site.name"},
	},
}

// EntityForResource finds the entity served by the given collection.
func EntityForResource(r Resource) (Entity, bool) {
	for _, e := range Entities {
		if e.Resource == r {
			return e, true
		}
	}
	return Entity{}, false
}

// MessageKey builds the catalog key of an entity specific message, e.g.
// "assets.duplicated".
func (k EntityKind) MessageKey(name string) string {
	return string(k) + "s." + name
}
