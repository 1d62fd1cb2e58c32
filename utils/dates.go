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

package utils

import (
	"time"

	"github.com/industrace/inventory-client/i18n"
)

const (
	dateLayout      = "2/1/2006"
	dateTimeLayout  = "2/1/2006, 15:04:05"
	inputDateLayout = "2006-01-02"

	naKey = "common.na"
)

// Timestamps are sent by the backend in any of these forms; those without
// a zone are in the local time of the user.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

type Translator interface {
	T(key string, params ...i18n.Params) string
}

// DateFormatter renders backend timestamps for display.
type DateFormatter struct {
	tr  Translator
	loc *time.Location
}

// NewDateFormatter formats in loc, the local zone when nil.
func NewDateFormatter(tr Translator, loc *time.Location) *DateFormatter {
	if loc == nil {
		loc = time.Local
	}
	return &DateFormatter{tr: tr, loc: loc}
}

// ParseTimestamp parses s like a browser would: a plain date is midnight
// UTC, a date-time without zone is local.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(inputDateLayout, s); err == nil {
		return t, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders the day of s, e.g. "1/5/2024".
func (f *DateFormatter) FormatDate(s string) string {
	t, ok := ParseTimestamp(s, f.loc)
	if !ok {
		return f.tr.T(naKey)
	}
	return t.In(f.loc).Format(dateLayout)
}

// FormatDateTime renders s with seconds, e.g. "1/5/2024, 09:30:00".
func (f *DateFormatter) FormatDateTime(s string) string {
	t, ok := ParseTimestamp(s, f.loc)
	if !ok {
		return f.tr.T(naKey)
	}
	return t.In(f.loc).Format(dateTimeLayout)
}

// FormatDateForInput renders the UTC day of s as YYYY-MM-DD, or nothing.
func (f *DateFormatter) FormatDateForInput(s string) string {
	t, ok := ParseTimestamp(s, f.loc)
	if !ok {
		return ""
	}
	return t.UTC().Format(inputDateLayout)
}
