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
	"strconv"
	"strings"
)

// Presentation severities, matching the notification severities of the UI.
const (
	SeveritySuccess   = "success"
	SeverityInfo      = "info"
	SeverityWarning   = "warning"
	SeverityDanger    = "danger"
	SeveritySecondary = "secondary"
)

const defaultStatusColor = "#64748b"

type severityEntry struct {
	key      string
	severity string
}

// Ordered: partial matches are resolved first come, first served.
var colorSeverities = []severityEntry{
	{"#28a745", SeveritySuccess}, {"#22c55e", SeveritySuccess},
	{"#16a34a", SeveritySuccess}, {"#15803d", SeveritySuccess},
	{"green", SeveritySuccess},

	{"#dc3545", SeverityDanger}, {"#ef4444", SeverityDanger},
	{"#f87171", SeverityDanger}, {"#dc2626", SeverityDanger},
	{"red", SeverityDanger},

	{"#fd7e14", SeverityWarning}, {"#f97316", SeverityWarning},
	{"#fb923c", SeverityWarning}, {"#ea580c", SeverityWarning},
	{"orange", SeverityWarning},

	{"#6c757d", SeveritySecondary}, {"#64748b", SeveritySecondary},
	{"#94a3b8", SeveritySecondary}, {"#475569", SeveritySecondary},
	{"gray", SeveritySecondary}, {"grey", SeveritySecondary},

	{"#0d6efd", SeverityInfo}, {"#3b82f6", SeverityInfo},
	{"#60a5fa", SeverityInfo}, {"#2563eb", SeverityInfo},
	{"blue", SeverityInfo},
}

var nameSeverities = []severityEntry{
	{"active", SeveritySuccess}, {"attivo", SeveritySuccess},
	{"operational", SeveritySuccess}, {"operativo", SeveritySuccess},
	{"running", SeveritySuccess},
	{"inactive", SeveritySecondary}, {"inattivo", SeveritySecondary},
	{"stopped", SeveritySecondary},
	{"maintenance", SeverityWarning}, {"manutenzione", SeverityWarning},
	{"repair", SeverityWarning}, {"riparazione", SeverityWarning},
	{"fault", SeverityDanger}, {"guasto", SeverityDanger},
	{"faulty", SeverityDanger}, {"error", SeverityDanger},
	{"errore", SeverityDanger},
	{"disposed", SeveritySecondary}, {"smaltito", SeveritySecondary},
	{"stock", SeverityInfo}, {"magazzino", SeverityInfo},
	{"in stock", SeverityInfo}, {"in magazzino", SeverityInfo},
}

// AssetStatus is an entry of the asset-statuses lookup.
type AssetStatus struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// StatusSeverity picks a presentation severity for a status, from its
// colour when known, otherwise from its name.
func StatusSeverity(s *AssetStatus) string {
	if s == nil {
		return SeverityInfo
	}
	if s.Color != "" {
		color := strings.ToLower(s.Color)
		for _, e := range colorSeverities {
			if e.key == color {
				return e.severity
			}
		}
		for _, e := range colorSeverities {
			if strings.Contains(color, e.key) || strings.Contains(e.key, color) {
				return e.severity
			}
		}
	}
	name := strings.ToLower(s.Name)
	for _, e := range nameSeverities {
		if e.key == name {
			return e.severity
		}
	}
	for _, e := range nameSeverities {
		if strings.Contains(name, e.key) {
			return e.severity
		}
	}
	return SeverityInfo
}

func StatusColor(s *AssetStatus) string {
	if s == nil || s.Color == "" {
		return defaultStatusColor
	}
	return s.Color
}

func StatusLabel(s *AssetStatus) string {
	if s == nil || s.Name == "" {
		return "-"
	}
	return s.Name
}

// ContrastColor returns black or white, whichever reads better on the
// given "#rrggbb" background.
func ContrastColor(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	channel := func(i int) int64 {
		if len(hex) < i+2 {
			return 0
		}
		v, _ := strconv.ParseInt(hex[i:i+2], 16, 64)
		return v
	}
	r, g, b := channel(0), channel(2), channel(4)
	brightness := float64(r*299+g*587+b*114) / 1000
	if brightness > 128 {
		return "#000000"
	}
	return "#ffffff"
}

var criticalityColors = map[string]string{
	"low":      "#28a745",
	"medium":   "#fd7e14",
	"high":     "#dc3545",
	"critical": "#b30000",
}

const defaultCriticalityColor = "#6c757d"

// CriticalityColor maps a business criticality level to its colour.
func CriticalityColor(level string) string {
	if c, ok := criticalityColors[strings.ToLower(level)]; ok {
		return c
	}
	return defaultCriticalityColor
}

// CriticalityKey is the message catalog key of a criticality label.
func CriticalityKey(level string) string {
	return "assets.criticality." + strings.ToLower(level)
}
