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
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Permission levels granted per section; each level implies the previous.
const (
	PermissionNone  = 0
	PermissionRead  = 1
	PermissionWrite = 2
	PermissionDel   = 3
	PermissionBulk  = 4
)

const RoleAdmin = "admin"

var PermissionSections = []string{
	"users", "roles", "assets", "locations", "sites", "areas",
	"suppliers", "manufacturers", "contacts", "audit_logs",
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required),
	)
}

type Role struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Permissions map[string]int `json:"permissions"`

	// EffectivePermissions includes levels inherited from parent roles.
	EffectivePermissions map[string]int `json:"effective_permissions,omitempty"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	TenantID string `json:"tenant_id,omitempty"`
	Role     *Role  `json:"role,omitempty"`
}

type PermissionInfo struct {
	Section        string `json:"section"`
	DirectLevel    int    `json:"direct_level"`
	EffectiveLevel int    `json:"effective_level"`
	Inherited      bool   `json:"inherited"`
	CanRead        bool   `json:"can_read"`
	CanWrite       bool   `json:"can_write"`
	CanDelete      bool   `json:"can_delete"`
	CanBulkOperate bool   `json:"can_bulk_operate"`
}

func (u *User) effective() map[string]int {
	if u == nil || u.Role == nil {
		return nil
	}
	if u.Role.EffectivePermissions != nil {
		return u.Role.EffectivePermissions
	}
	return u.Role.Permissions
}

func (u *User) direct() map[string]int {
	if u == nil || u.Role == nil {
		return nil
	}
	return u.Role.Permissions
}

// PermissionLevel returns the effective level of the user on section.
func (u *User) PermissionLevel(section string) int {
	return u.effective()[section]
}

func (u *User) DirectPermissionLevel(section string) int {
	return u.direct()[section]
}

func (u *User) HasPermission(section string, minLevel int) bool {
	return u.PermissionLevel(section) >= minLevel
}

func (u *User) CanRead(section string) bool   { return u.HasPermission(section, PermissionRead) }
func (u *User) CanWrite(section string) bool  { return u.HasPermission(section, PermissionWrite) }
func (u *User) CanDelete(section string) bool { return u.HasPermission(section, PermissionDel) }
func (u *User) CanBulkOperate(section string) bool {
	return u.HasPermission(section, PermissionBulk)
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role != nil && u.Role.Name == RoleAdmin
}

func (u *User) IsInheritedPermission(section string) bool {
	return u.PermissionLevel(section) > u.DirectPermissionLevel(section)
}

// AccessibleSections lists, sorted, the sections the user can at least read.
func (u *User) AccessibleSections() []string {
	sections := []string{}
	for section, level := range u.effective() {
		if level >= PermissionRead {
			sections = append(sections, section)
		}
	}
	sort.Strings(sections)
	return sections
}

func (u *User) PermissionInfo(section string) PermissionInfo {
	level := u.PermissionLevel(section)
	return PermissionInfo{
		Section:        section,
		DirectLevel:    u.DirectPermissionLevel(section),
		EffectiveLevel: level,
		Inherited:      u.IsInheritedPermission(section),
		CanRead:        level >= PermissionRead,
		CanWrite:       level >= PermissionWrite,
		CanDelete:      level >= PermissionDel,
		CanBulkOperate: level >= PermissionBulk,
	}
}

func (u *User) AllPermissionsInfo() []PermissionInfo {
	infos := make([]PermissionInfo, len(PermissionSections))
	for i, section := range PermissionSections {
		infos[i] = u.PermissionInfo(section)
	}
	return infos
}

func (u *User) CanManagePermissions() bool {
	return u.CanWrite("roles") || u.IsAdmin()
}

func (u *User) CanManageUsers() bool {
	return u.CanWrite("users") || u.IsAdmin()
}
