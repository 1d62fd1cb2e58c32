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

// Package i18n resolves localized messages from the embedded catalogs.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/industrace/inventory-client/store"
)

const (
	DefaultLocale  = "it"
	FallbackLocale = "en"

	// StorageKey holds the locale chosen by the user.
	StorageKey = "user-lang"

	keySeparator = "."
)

var (
	ErrUnknownLocale = errors.New("i18n: unknown locale")

	//go:embed locales/*.yaml
	localesFS embed.FS

	placeholder = regexp.MustCompile(`\{(\w+)\}`)

	languageNames = map[string]string{
		"en": "English",
		"it": "Italiano",
	}

	localeEnv = []string{"LC_ALL", "LC_MESSAGES", "LANG"}
)

// Catalog maps dotted message keys to messages.
type Catalog map[string]string

// Params are the values of the named {placeholders} of a message.
type Params map[string]interface{}

type Language struct {
	Code string
	Name string
}

type Options struct {
	// Store persists the selected locale. Optional.
	Store store.KeyValueStore
	// Locale forces the active locale, skipping detection.
	Locale         string
	DefaultLocale  string
	FallbackLocale string
	// Getenv reads the locale environment, os.Getenv by default.
	Getenv func(string) string
}

// Resolver translates message keys with the active locale, falling back
// to the fallback locale and finally to the key itself.
type Resolver struct {
	mu       sync.RWMutex
	catalogs map[string]Catalog
	locale   string
	fallback string
	store    store.KeyValueStore
}

// LoadCatalog parses a YAML document of nested sections into a flat
// catalog: {"common": {"error": "Error"}} becomes "common.error".
func LoadCatalog(r io.Reader) (Catalog, error) {
	var doc map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "i18n: failed to parse catalog")
	}
	cat := Catalog{}
	flatten(cat, "", doc)
	return cat, nil
}

func flatten(cat Catalog, prefix string, doc map[string]interface{}) {
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + keySeparator + k
		}
		switch t := v.(type) {
		case map[string]interface{}:
			flatten(cat, key, t)
		case nil:
			cat[key] = ""
		default:
			cat[key] = fmt.Sprint(t)
		}
	}
}

func loadEmbedded() (map[string]Catalog, error) {
	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, errors.Wrap(err, "i18n: failed to list catalogs")
	}
	catalogs := make(map[string]Catalog, len(entries))
	for _, e := range entries {
		f, err := localesFS.Open(path.Join("locales", e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "i18n: failed to open %s", e.Name())
		}
		cat, err := LoadCatalog(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrap(err, e.Name())
		}
		catalogs[strings.TrimSuffix(e.Name(), path.Ext(e.Name()))] = cat
	}
	return catalogs, nil
}

// New loads the embedded catalogs and selects the active locale: the one
// saved in the store, else the one of the environment, else the default.
func New(ctx context.Context, opts Options) (*Resolver, error) {
	catalogs, err := loadEmbedded()
	if err != nil {
		return nil, err
	}
	return NewWithCatalogs(ctx, catalogs, opts), nil
}

func NewWithCatalogs(ctx context.Context, catalogs map[string]Catalog, opts Options) *Resolver {
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = DefaultLocale
	}
	if opts.FallbackLocale == "" {
		opts.FallbackLocale = FallbackLocale
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	r := &Resolver{
		catalogs: catalogs,
		fallback: opts.FallbackLocale,
		store:    opts.Store,
	}
	r.locale = r.detect(ctx, opts)
	return r
}

func (r *Resolver) detect(ctx context.Context, opts Options) string {
	if _, ok := r.catalogs[opts.Locale]; ok {
		return opts.Locale
	}
	if r.store != nil {
		saved, err := r.store.Get(ctx, StorageKey)
		if err == nil {
			if _, ok := r.catalogs[saved]; ok {
				return saved
			}
		} else if err != store.ErrKeyNotFound {
			log.FromContext(ctx).Warnf("i18n: failed to read saved locale: %v", err)
		}
	}
	for _, env := range localeEnv {
		if code, ok := r.match(opts.Getenv(env)); ok {
			return code
		}
	}
	return opts.DefaultLocale
}

// match maps a POSIX locale such as "it_IT.UTF-8" to an available catalog
// by primary language.
func (r *Resolver) match(posix string) (string, bool) {
	posix = strings.SplitN(posix, ".", 2)[0]
	posix = strings.SplitN(posix, "@", 2)[0]
	if posix == "" || posix == "C" || posix == "POSIX" {
		return "", false
	}
	tag, err := language.Parse(strings.ReplaceAll(posix, "_", "-"))
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	_, ok := r.catalogs[base.String()]
	return base.String(), ok
}

func (r *Resolver) Locale() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locale
}

func (r *Resolver) FallbackLocale() string {
	return r.fallback
}

// ChangeLanguage switches the active locale and persists the choice.
func (r *Resolver) ChangeLanguage(ctx context.Context, locale string) error {
	if _, ok := r.catalogs[locale]; !ok {
		return errors.Wrap(ErrUnknownLocale, locale)
	}
	r.mu.Lock()
	r.locale = locale
	r.mu.Unlock()
	if r.store != nil {
		if err := r.store.Set(ctx, StorageKey, locale); err != nil {
			return errors.Wrap(err, "i18n: failed to save locale")
		}
	}
	return nil
}

func (r *Resolver) AvailableLanguages() []Language {
	langs := make([]Language, 0, len(r.catalogs))
	for code := range r.catalogs {
		name, ok := languageNames[code]
		if !ok {
			name = code
		}
		langs = append(langs, Language{Code: code, Name: name})
	}
	sort.Slice(langs, func(i, j int) bool {
		return langs[i].Code < langs[j].Code
	})
	return langs
}

// Translation returns the message of key in locale (the active one when
// empty) without any fallback.
func (r *Resolver) Translation(key, locale string) (string, bool) {
	if locale == "" {
		locale = r.Locale()
	}
	msg, ok := r.catalogs[locale][key]
	return msg, ok
}

func (r *Resolver) HasTranslation(key, locale string) bool {
	_, ok := r.Translation(key, locale)
	return ok
}

// T resolves key and substitutes the named parameters. Unknown keys
// resolve to themselves.
func (r *Resolver) T(key string, params ...Params) string {
	msg, ok := r.Translation(key, "")
	if !ok {
		msg, ok = r.Translation(key, r.fallback)
	}
	if !ok {
		return key
	}
	if len(params) == 0 {
		return msg
	}
	merged := Params{}
	for _, p := range params {
		for k, v := range p {
			merged[k] = v
		}
	}
	return placeholder.ReplaceAllStringFunc(msg, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := merged[name]; ok {
			return fmt.Sprint(v)
		}
		return m
	})
}

// Validate compares every catalog with the fallback one and reports the
// missing and the extra keys.
func (r *Resolver) Validate() []string {
	var issues []string
	if len(r.catalogs) < 2 {
		return append(issues, "at least two languages are required")
	}
	base, ok := r.catalogs[r.fallback]
	if !ok {
		return append(issues, fmt.Sprintf("fallback language %s has no catalog", r.fallback))
	}
	codes := make([]string, 0, len(r.catalogs))
	for code := range r.catalogs {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		if code == r.fallback {
			continue
		}
		cat := r.catalogs[code]
		missing := diffKeys(base, cat)
		extra := diffKeys(cat, base)
		if len(missing) > 0 {
			issues = append(issues, fmt.Sprintf("missing translations in %s: %s",
				code, strings.Join(missing, ", ")))
		}
		if len(extra) > 0 {
			issues = append(issues, fmt.Sprintf("extra translations in %s: %s",
				code, strings.Join(extra, ", ")))
		}
	}
	return issues
}

// diffKeys lists the keys of a missing from b, sorted.
func diffKeys(a, b Catalog) []string {
	var keys []string
	for k := range a {
		if _, ok := b[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
