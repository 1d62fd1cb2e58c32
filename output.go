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
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tidwall/pretty"

	"github.com/industrace/inventory-client/i18n"
	"github.com/industrace/inventory-client/model"
	"github.com/industrace/inventory-client/utils"
)

const (
	cellNA          = "-"
	cellMark        = "x"
	timestampSuffix = "_at"
	dateSuffix      = "_date"

	fieldStatus      = "status"
	fieldCriticality = "business_criticality"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

type printer struct {
	w     io.Writer
	tr    *i18n.Resolver
	dates *utils.DateFormatter
}

func newPrinter(env *environment) *printer {
	return &printer{w: env.out, tr: env.tr, dates: env.dates}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// assetStatus reads the embedded status object of an asset.
func assetStatus(rec model.Record) (*model.AssetStatus, bool) {
	obj, ok := rec[fieldStatus].Record()
	if !ok {
		return nil, false
	}
	return &model.AssetStatus{
		ID:    obj.ID(),
		Name:  obj["name"].String(),
		Color: obj["color"].String(),
	}, true
}

func statusBadge(s *model.AssetStatus) string {
	bg := model.StatusColor(s)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(model.ContrastColor(bg))).
		Render(model.StatusLabel(s))
}

func (p *printer) criticality(level string) string {
	key := model.CriticalityKey(level)
	label := p.tr.T(key)
	if label == key {
		label = level
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(model.CriticalityColor(level))).
		Render(label)
}

func (p *printer) cell(rec model.Record, column string) string {
	if column == fieldStatus || column == fieldStatus+".name" {
		if status, ok := assetStatus(rec); ok {
			return statusBadge(status)
		}
	}
	v, ok := rec.Field(column)
	if !ok || v.IsEmpty() {
		return cellNA
	}
	if s, ok := v.Text(); ok {
		switch {
		case column == fieldCriticality:
			return p.criticality(s)
		case strings.HasSuffix(column, timestampSuffix):
			return p.dates.FormatDateTime(s)
		case strings.HasSuffix(column, dateSuffix):
			return p.dates.FormatDate(s)
		}
	}
	return v.String()
}

// Records prints the given columns of recs followed by the record count.
func (p *printer) Records(recs []model.Record, columns []string) {
	t := newTable(columns...)
	for _, rec := range recs {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = p.cell(rec, col)
		}
		t.Row(row...)
	}
	fmt.Fprintln(p.w, t.Render())
	fmt.Fprintln(p.w, p.tr.T("common.records", i18n.Params{"count": len(recs)}))
}

func (p *printer) SearchResults(results []model.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(p.w, p.tr.T("search.noResults"))
		return
	}
	t := newTable("type", "title", "url")
	for _, r := range results {
		t.Row(r.Type, r.Title, r.URL)
	}
	fmt.Fprintln(p.w, t.Render())
}

// Statuses prints the asset-statuses lookup with the severity each status
// is presented with.
func (p *printer) Statuses(recs []model.Record) {
	t := newTable("id", "name", "color", "severity")
	for _, rec := range recs {
		status := &model.AssetStatus{
			ID:    rec.ID(),
			Name:  rec["name"].String(),
			Color: rec["color"].String(),
		}
		t.Row(status.ID, statusBadge(status), model.StatusColor(status), model.StatusSeverity(status))
	}
	fmt.Fprintln(p.w, t.Render())
	fmt.Fprintln(p.w, p.tr.T("common.records", i18n.Params{"count": len(recs)}))
}

func mark(b bool) string {
	if b {
		return cellMark
	}
	return ""
}

// Permissions prints the access level of user on every section.
func (p *printer) Permissions(user *model.User) {
	t := newTable("section", "level", "read", "write", "delete", "bulk", "inherited")
	for _, info := range user.AllPermissionsInfo() {
		t.Row(
			info.Section,
			strconv.Itoa(info.EffectiveLevel),
			mark(info.CanRead),
			mark(info.CanWrite),
			mark(info.CanDelete),
			mark(info.CanBulkOperate),
			mark(info.Inherited),
		)
	}
	fmt.Fprintln(p.w, t.Render())
	fmt.Fprintf(p.w, "sections: %s\n", strings.Join(user.AccessibleSections(), ", "))
	fmt.Fprintf(p.w, "manage users: %t, manage permissions: %t\n",
		user.CanManageUsers(), user.CanManagePermissions())
}

func (p *printer) Languages(current string) {
	for _, lang := range p.tr.AvailableLanguages() {
		prefix := "  "
		if lang.Code == current {
			prefix = "* "
		}
		fmt.Fprintf(p.w, "%s%s\t%s\n", prefix, lang.Code, lang.Name)
	}
}

// JSON pretty prints v.
func (p *printer) JSON(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.w.Write(pretty.Pretty(b))
	return err
}
