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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/industrace/inventory-client/i18n"
)

type naTranslator struct{}

func (naTranslator) T(key string, _ ...i18n.Params) string {
	return "<" + key + ">"
}

func TestDateFormatter(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skip("no time zone database")
	}
	f := NewDateFormatter(naTranslator{}, rome)

	testCases := map[string]struct {
		in       string
		date     string
		dateTime string
		input    string
	}{
		"empty": {
			date:     "<common.na>",
			dateTime: "<common.na>",
		},
		"invalid": {
			in:       "yesterday",
			date:     "<common.na>",
			dateTime: "<common.na>",
		},
		"utc": {
			in:       "2024-05-01T07:30:00Z",
			date:     "1/5/2024",
			dateTime: "1/5/2024, 09:30:00",
			input:    "2024-05-01",
		},
		"offset": {
			in:       "2024-12-31T23:30:00.123456+00:00",
			date:     "1/1/2025",
			dateTime: "1/1/2025, 00:30:00",
			input:    "2024-12-31",
		},
		"no zone is local": {
			in:       "2024-05-01T00:15:00",
			date:     "1/5/2024",
			dateTime: "1/5/2024, 00:15:00",
			input:    "2024-04-30",
		},
		"space separated": {
			in:       "2024-05-01 12:00:00",
			date:     "1/5/2024",
			dateTime: "1/5/2024, 12:00:00",
			input:    "2024-05-01",
		},
		"date only is utc": {
			in:       "2024-11-05",
			date:     "5/11/2024",
			dateTime: "5/11/2024, 01:00:00",
			input:    "2024-11-05",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.date, f.FormatDate(tc.in))
			assert.Equal(t, tc.dateTime, f.FormatDateTime(tc.in))
			assert.Equal(t, tc.input, f.FormatDateForInput(tc.in))
		})
	}
}

func TestNewDateFormatterDefaultsToLocal(t *testing.T) {
	f := NewDateFormatter(naTranslator{}, nil)
	assert.Equal(t, time.Local, f.loc)
}
