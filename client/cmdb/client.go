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

// Package cmdb is the HTTP client of the Industrace CMDB REST API.
package cmdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/mendersoftware/go-lib-micro/requestid"

	"github.com/industrace/inventory-client/model"
)

const (
	URILogin          = "/login"
	URILogout         = "/logout"
	URIRefresh        = "/refresh"
	URICurrentUser    = "/users/me"
	URIResource       = "/{resource}"
	URIResourceItem   = "/{resource}/{id}"
	URITrash          = "/{resource}/trash"
	URIRestore        = "/{resource}/{id}/restore"
	URIHardDelete     = "/{resource}/{id}/hard"
	URIEmptyTrash     = "/{resource}/trash/empty"
	URIBulkUpdate     = "/{resource}/bulk-update"
	URIBulkSoftDelete = "/{resource}/bulk-soft-delete"
	URIGlobalSearch   = "/search/global"
)

const (
	defaultTimeout    = time.Duration(5) * time.Second
	defaultRetryWait  = 100 * time.Millisecond
	defaultRetryLimit = 2 * time.Second
)

// Client talks to the CMDB on behalf of a logged in user. Identifiers and
// resources are interpolated into the path templates above.
//
//go:generate mockery --name=Client --output=./mocks
type Client interface {
	Login(ctx context.Context, creds model.Credentials) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	CurrentUser(ctx context.Context) (*model.User, error)

	List(ctx context.Context, res model.Resource, q url.Values) ([]model.Record, error)
	Get(ctx context.Context, res model.Resource, id string) (model.Record, error)
	Create(ctx context.Context, res model.Resource, rec model.Record) (model.Record, error)
	Update(ctx context.Context, res model.Resource, id string, rec model.Record) (model.Record, error)
	Delete(ctx context.Context, res model.Resource, id string) error

	ListTrash(ctx context.Context, res model.Resource, q url.Values) ([]model.Record, error)
	Restore(ctx context.Context, res model.Resource, id string) error
	HardDelete(ctx context.Context, res model.Resource, id string) error
	EmptyTrash(ctx context.Context, res model.Resource) error
	BulkUpdate(ctx context.Context, res model.Resource, ids []string, fields model.Record) error
	BulkSoftDelete(ctx context.Context, res model.Resource, ids []string) error

	Upload(ctx context.Context, path, field, filename string, r io.Reader) (model.Record, error)
	Download(ctx context.Context, path string, q url.Values) ([]byte, error)

	GlobalSearch(ctx context.Context, q string, limit int) ([]model.SearchResult, error)

	// Cookies and SetCookies expose the session cookies so that a session
	// can outlive the process.
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
}

type ClientOptions struct {
	Client *http.Client
	// Timeout applies to calls whose context has no deadline.
	Timeout time.Duration
	// RetryCount is the number of retries of idempotent requests failing
	// with a network error or a 429/502/503/504 status.
	RetryCount int
	// OnUnauthorized is invoked whenever a call other than login or logout
	// is rejected with 401.
	OnUnauthorized func(ctx context.Context)
	Debug          bool
}

// NewClient returns a new CMDB client for the API rooted at url, e.g.
// https://cmdb.example.com/api.
func NewClient(url string, opts ...ClientOptions) Client {
	var clientOpts = ClientOptions{
		Client:  &http.Client{},
		Timeout: defaultTimeout,
	}
	for _, opt := range opts {
		if opt.Client != nil {
			clientOpts.Client = opt.Client
		}
		if opt.Timeout > 0 {
			clientOpts.Timeout = opt.Timeout
		}
		if opt.RetryCount > 0 {
			clientOpts.RetryCount = opt.RetryCount
		}
		if opt.OnUnauthorized != nil {
			clientOpts.OnUnauthorized = opt.OnUnauthorized
		}
		clientOpts.Debug = clientOpts.Debug || opt.Debug
	}
	if clientOpts.Client.Jar == nil {
		jar, _ := cookiejar.New(nil)
		clientOpts.Client.Jar = jar
	}

	base := strings.TrimSuffix(url, "/")
	rc := resty.NewWithClient(clientOpts.Client).
		SetBaseURL(base).
		SetHeader("Accept", "application/json").
		SetRetryCount(clientOpts.RetryCount).
		SetRetryWaitTime(defaultRetryWait).
		SetRetryMaxWaitTime(defaultRetryLimit).
		SetDebug(clientOpts.Debug)
	rc.AddRetryCondition(retryCondition)

	return &client{
		url:            base,
		rc:             rc,
		jar:            clientOpts.Client.Jar,
		timeout:        clientOpts.Timeout,
		onUnauthorized: clientOpts.OnUnauthorized,
	}
}

type client struct {
	url            string
	rc             *resty.Client
	jar            http.CookieJar
	timeout        time.Duration
	onUnauthorized func(ctx context.Context)
}

func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil {
		return false
	}
	switch r.Request.Method {
	case http.MethodGet, http.MethodHead:
	default:
		return false
	}
	if err != nil {
		return true
	}
	switch r.StatusCode() {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

type call struct {
	method     string
	path       string
	pathParams map[string]string
	query      url.Values
	body       interface{}
	form       map[string]string
	file       *upload
	// noAuthHook disables OnUnauthorized, for the session endpoints.
	noAuthHook bool
}

type upload struct {
	field    string
	filename string
	r        io.Reader
}

func resourceParams(res model.Resource, id string) map[string]string {
	p := map[string]string{"resource": string(res)}
	if id != "" {
		p["id"] = id
	}
	return p
}

func (c *client) do(ctx context.Context, req call) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}

	r := c.rc.R().
		SetContext(ctx).
		SetHeader(requestid.RequestIdHeader, reqID).
		SetPathParams(req.pathParams)
	if req.query != nil {
		r.SetQueryParamsFromValues(req.query)
	}
	switch {
	case req.file != nil:
		r.SetFileReader(req.file.field, req.file.filename, req.file.r)
	case req.form != nil:
		r.SetFormData(req.form)
	case req.body != nil:
		r.SetHeader("Content-Type", "application/json").SetBody(req.body)
	}

	rsp, err := r.Execute(req.method, req.path)
	if err != nil {
		return nil, errors.Wrapf(err, "cmdb: %s %s failed", req.method, req.path)
	}
	if rsp.IsSuccess() {
		return rsp.Body(), nil
	}

	apiErr := parseAPIError(rsp.StatusCode(), rsp.Body())
	log.FromContext(ctx).Debugf("cmdb: %s %s: %s",
		req.method, rsp.Request.URL, apiErr.Error())
	if apiErr.Status == http.StatusUnauthorized &&
		!req.noAuthHook && c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
	return nil, apiErr
}

func (c *client) Login(ctx context.Context, creds model.Credentials) error {
	if err := creds.Validate(); err != nil {
		return errors.Wrap(err, "cmdb: invalid credentials")
	}
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   URILogin,
		form: map[string]string{
			"email":    creds.Email,
			"password": creds.Password,
		},
		noAuthHook: true,
	})
	return err
}

func (c *client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, call{
		method:     http.MethodPost,
		path:       URILogout,
		noAuthHook: true,
	})
	return err
}

func (c *client) Refresh(ctx context.Context) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: URIRefresh})
	return err
}

func (c *client) CurrentUser(ctx context.Context) (*model.User, error) {
	b, err := c.do(ctx, call{method: http.MethodGet, path: URICurrentUser})
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(b, &user); err != nil {
		return nil, errors.Wrap(err, "cmdb: failed to parse user")
	}
	return &user, nil
}

func (c *client) List(ctx context.Context, res model.Resource, q url.Values) ([]model.Record, error) {
	b, err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       URIResource,
		pathParams: resourceParams(res, ""),
		query:      q,
	})
	if err != nil {
		return nil, err
	}
	return parseList(b)
}

// parseList accepts a bare array or the paginated {"items": [...]} form.
func parseList(b []byte) ([]model.Record, error) {
	doc := gjson.ParseBytes(b)
	if !doc.IsArray() {
		for _, key := range []string{"items", "results", "data"} {
			if v := doc.Get(key); v.IsArray() {
				doc = v
				break
			}
		}
	}
	if !doc.IsArray() {
		return nil, errors.New("cmdb: unexpected list response")
	}
	recs, err := model.ParseRecords([]byte(doc.Raw))
	if err != nil {
		return nil, errors.Wrap(err, "cmdb: failed to parse list")
	}
	return recs, nil
}

func parseRecord(b []byte) (model.Record, error) {
	if len(strings.TrimSpace(string(b))) == 0 {
		return model.Record{}, nil
	}
	var v model.Value
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, errors.Wrap(err, "cmdb: failed to parse record")
	}
	rec, ok := v.Record()
	if !ok {
		return nil, errors.Errorf("cmdb: expected an object, got %s", v.Kind())
	}
	return rec, nil
}

func (c *client) Get(ctx context.Context, res model.Resource, id string) (model.Record, error) {
	b, err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       URIResourceItem,
		pathParams: resourceParams(res, id),
	})
	if err != nil {
		return nil, err
	}
	return parseRecord(b)
}

func (c *client) Create(ctx context.Context, res model.Resource, rec model.Record) (model.Record, error) {
	b, err := c.do(ctx, call{
		method:     http.MethodPost,
		path:       URIResource,
		pathParams: resourceParams(res, ""),
		body:       rec.Interface(),
	})
	if err != nil {
		return nil, err
	}
	return parseRecord(b)
}

func (c *client) Update(
	ctx context.Context,
	res model.Resource,
	id string,
	rec model.Record,
) (model.Record, error) {
	b, err := c.do(ctx, call{
		method:     http.MethodPut,
		path:       URIResourceItem,
		pathParams: resourceParams(res, id),
		body:       rec.Interface(),
	})
	if err != nil {
		return nil, err
	}
	return parseRecord(b)
}

func (c *client) Delete(ctx context.Context, res model.Resource, id string) error {
	_, err := c.do(ctx, call{
		method:     http.MethodDelete,
		path:       URIResourceItem,
		pathParams: resourceParams(res, id),
	})
	return err
}

func (c *client) ListTrash(ctx context.Context, res model.Resource, q url.Values) ([]model.Record, error) {
	b, err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       URITrash,
		pathParams: resourceParams(res, ""),
		query:      q,
	})
	if err != nil {
		return nil, err
	}
	return parseList(b)
}

func (c *client) Restore(ctx context.Context, res model.Resource, id string) error {
	_, err := c.do(ctx, call{
		method:     http.MethodPatch,
		path:       URIRestore,
		pathParams: resourceParams(res, id),
	})
	return err
}

func (c *client) HardDelete(ctx context.Context, res model.Resource, id string) error {
	_, err := c.do(ctx, call{
		method:     http.MethodDelete,
		path:       URIHardDelete,
		pathParams: resourceParams(res, id),
	})
	return err
}

func (c *client) EmptyTrash(ctx context.Context, res model.Resource) error {
	_, err := c.do(ctx, call{
		method:     http.MethodDelete,
		path:       URIEmptyTrash,
		pathParams: resourceParams(res, ""),
	})
	return err
}

func (c *client) BulkUpdate(
	ctx context.Context,
	res model.Resource,
	ids []string,
	fields model.Record,
) error {
	_, err := c.do(ctx, call{
		method:     http.MethodPost,
		path:       URIBulkUpdate,
		pathParams: resourceParams(res, ""),
		body: map[string]interface{}{
			"ids":    ids,
			"fields": fields.Interface(),
		},
	})
	return err
}

func (c *client) BulkSoftDelete(ctx context.Context, res model.Resource, ids []string) error {
	_, err := c.do(ctx, call{
		method:     http.MethodPost,
		path:       URIBulkSoftDelete,
		pathParams: resourceParams(res, ""),
		body:       map[string]interface{}{"ids": ids},
	})
	return err
}

// Upload posts r as a multipart file under field, e.g. to
// /locations/{id}/floorplan or /assets/import/xlsx/preview.
func (c *client) Upload(
	ctx context.Context,
	path, field, filename string,
	r io.Reader,
) (model.Record, error) {
	b, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   path,
		file:   &upload{field: field, filename: filename, r: r},
	})
	if err != nil {
		return nil, err
	}
	return parseRecord(b)
}

// Download fetches a binary document such as a CSV export or a photo.
func (c *client) Download(ctx context.Context, path string, q url.Values) ([]byte, error) {
	return c.do(ctx, call{
		method: http.MethodGet,
		path:   path,
		query:  q,
	})
}

func (c *client) GlobalSearch(ctx context.Context, q string, limit int) ([]model.SearchResult, error) {
	b, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   URIGlobalSearch,
		query: url.Values{
			"q":     []string{q},
			"limit": []string{strconv.Itoa(limit)},
		},
	})
	if err != nil {
		return nil, err
	}
	results := []model.SearchResult{}
	raw := gjson.GetBytes(b, "results")
	if !raw.Exists() || raw.Type == gjson.Null {
		return results, nil
	}
	if err := json.Unmarshal([]byte(raw.Raw), &results); err != nil {
		return nil, errors.Wrap(err, "cmdb: failed to parse search results")
	}
	return results, nil
}

func (c *client) baseURL() *url.URL {
	u, err := url.Parse(c.url)
	if err != nil {
		return &url.URL{}
	}
	return u
}

func (c *client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL())
}

func (c *client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.baseURL(), cookies)
}
