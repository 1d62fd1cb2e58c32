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
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrace/inventory-client/i18n"
	"github.com/industrace/inventory-client/model"
	"github.com/industrace/inventory-client/utils"
)

func newTestPrinter(t *testing.T) (*printer, *bytes.Buffer) {
	tr, err := i18n.New(context.Background(), i18n.Options{Locale: "en"})
	require.NoError(t, err)
	var buf bytes.Buffer
	return &printer{
		w:     &buf,
		tr:    tr,
		dates: utils.NewDateFormatter(tr, time.UTC),
	}, &buf
}

func TestPrinterCell(t *testing.T) {
	p, _ := newTestPrinter(t)
	rec := model.Record{
		"name":                 model.String("Pump A"),
		"tag":                  model.String(""),
		"rank":                 model.Number(2.5),
		"created_at":           model.String("2024-05-01T09:30:00Z"),
		"purchase_date":        model.String("2024-05-01"),
		"updated_at":           model.String("yesterday"),
		"business_criticality": model.String("HIGH"),
		"site":                 model.Object(model.Record{"name": model.String("Milan")}),
		"status": model.Object(model.Record{
			"id":    model.String("s1"),
			"name":  model.String("Active"),
			"color": model.String("#28a745"),
		}),
	}

	testCases := map[string]struct {
		column string
		out    string
	}{
		"plain":       {column: "name", out: "Pump A"},
		"nested":      {column: "site.name", out: "Milan"},
		"empty":       {column: "tag", out: cellNA},
		"missing":     {column: "serial_number", out: cellNA},
		"number":      {column: "rank", out: "2.5"},
		"timestamp":   {column: "created_at", out: "1/5/2024, 09:30:00"},
		"date":        {column: "purchase_date", out: "1/5/2024"},
		"bad date":    {column: "updated_at", out: "N/A"},
		"criticality": {column: fieldCriticality, out: "High"},
		"status":      {column: "status.name", out: "Active"},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, p.cell(rec, tc.column), tc.out)
		})
	}
}

func TestPrinterRecords(t *testing.T) {
	p, buf := newTestPrinter(t)
	p.Records([]model.Record{
		{"name": model.String("Pump A"), "code": model.String("P-1")},
		{"name": model.String("Valve B")},
	}, []string{"name", "code"})

	out := buf.String()
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "P-1")
	assert.Contains(t, out, "Valve B")
	assert.Contains(t, out, "2 records")
}

func TestPrinterStatuses(t *testing.T) {
	p, buf := newTestPrinter(t)
	p.Statuses([]model.Record{
		{"id": model.String("s1"), "name": model.String("Maintenance")},
		{"id": model.String("s2"), "name": model.String("Broken"), "color": model.String("#ef4444")},
	})

	out := buf.String()
	assert.Contains(t, out, model.SeverityWarning)
	assert.Contains(t, out, model.SeverityDanger)
	assert.Contains(t, out, "#64748b")
}

func TestPrinterPermissions(t *testing.T) {
	p, buf := newTestPrinter(t)
	p.Permissions(&model.User{
		Name: "Operator",
		Role: &model.Role{
			Name:        "operator",
			Permissions: map[string]int{"assets": model.PermissionWrite, "sites": model.PermissionRead},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "assets")
	assert.Contains(t, out, "sections: assets, sites")
	assert.Contains(t, out, "manage users: false, manage permissions: false")
}

func TestPrinterJSON(t *testing.T) {
	p, buf := newTestPrinter(t)
	require.NoError(t, p.JSON(model.Record{"name": model.String("Pump A")}))
	assert.Equal(t, "{\n  \"name\": \"Pump A\"\n}\n", buf.String())
}
