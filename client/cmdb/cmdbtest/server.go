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

// Package cmdbtest runs an in-process fake of the CMDB REST API for tests.
package cmdbtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/google/uuid"
	"github.com/mendersoftware/go-lib-micro/requestid"

	"github.com/industrace/inventory-client/model"
)

const (
	SessionCookie = "access_token"

	uriLogin          = "/login"
	uriLogout         = "/logout"
	uriRefresh        = "/refresh"
	uriCurrentUser    = "/users/me"
	uriGlobalSearch   = "/search/global"
	uriResource       = "/:resource"
	uriResourceItem   = "/:resource/:id"
	uriTrash          = "/:resource/trash"
	uriEmptyTrash     = "/:resource/trash/empty"
	uriBulkUpdate     = "/:resource/bulk-update"
	uriBulkSoftDelete = "/:resource/bulk-soft-delete"
	uriRestore        = "/:resource/:id/restore"
	uriHardDelete     = "/:resource/:id/hard"
	uriUpload         = "/:resource/:id/:attachment"

	fieldDeletedAt = "deleted_at"
)

type account struct {
	password string
	user     model.User
}

type failure struct {
	status int
	body   string
}

// Upload is a file received by the fake server.
type Upload struct {
	Path     string
	Field    string
	Filename string
	Content  []byte
}

// Server is a fake CMDB. Records are kept per resource in insertion order;
// soft deleted records carry a deleted_at attribute.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	accounts   map[string]account
	sessions   map[string]string
	data       map[model.Resource][]model.Record
	files      map[string][]byte
	uploads    []Upload
	requestIDs []string
	failures   []failure
	calls      []string
}

// NewServer starts a fake CMDB. Close it when done.
func NewServer() *Server {
	s := &Server{
		accounts: map[string]account{},
		sessions: map[string]string{},
		data:     map[model.Resource][]model.Record{},
		files:    map[string][]byte{},
	}
	app, err := s.GetApp()
	if err != nil {
		panic(err)
	}
	api := rest.NewApi()
	api.Use(
		rest.MiddlewareSimple(s.recordMiddleware),
		rest.MiddlewareSimple(s.failureMiddleware),
		rest.MiddlewareSimple(s.authMiddleware),
		rest.MiddlewareSimple(s.filesMiddleware),
	)
	api.SetApp(app)
	s.Server = httptest.NewServer(api.MakeHandler())
	return s
}

func (s *Server) GetApp() (rest.App, error) {
	// static segments are declared first: among matching routes the
	// router picks the first one defined
	routes := []*rest.Route{
		rest.Post(uriLogin, s.LoginHandler),
		rest.Post(uriLogout, s.LogoutHandler),
		rest.Post(uriRefresh, s.RefreshHandler),
		rest.Get(uriCurrentUser, s.CurrentUserHandler),
		rest.Get(uriGlobalSearch, s.GlobalSearchHandler),

		rest.Get(uriTrash, s.ListTrashHandler),
		rest.Delete(uriEmptyTrash, s.EmptyTrashHandler),
		rest.Post(uriBulkUpdate, s.BulkUpdateHandler),
		rest.Post(uriBulkSoftDelete, s.BulkSoftDeleteHandler),
		rest.Patch(uriRestore, s.RestoreHandler),
		rest.Delete(uriHardDelete, s.HardDeleteHandler),
		rest.Post(uriUpload, s.UploadHandler),

		rest.Get(uriResource, s.ListHandler),
		rest.Post(uriResource, s.CreateHandler),
		rest.Get(uriResourceItem, s.GetHandler),
		rest.Put(uriResourceItem, s.UpdateHandler),
		rest.Delete(uriResourceItem, s.DeleteHandler),
	}
	return rest.MakeRouter(routes...)
}

// AddUser registers an account that can log in.
func (s *Server) AddUser(email, password string, user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.Email == "" {
		user.Email = email
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.accounts[email] = account{password: password, user: user}
}

// Seed appends records to a resource, assigning ids where missing, and
// returns them.
func (s *Server) Seed(res model.Resource, recs ...model.Record) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Record, 0, len(recs))
	for _, rec := range recs {
		rec = rec.Clone()
		if rec.ID() == "" {
			rec["id"] = model.String(uuid.NewString())
		}
		s.data[res] = append(s.data[res], rec)
		out = append(out, rec)
	}
	return out
}

// Records returns the live records of a resource.
func (s *Server) Records(res model.Resource) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(res, false)
}

// Trash returns the soft deleted records of a resource.
func (s *Server) Trash(res model.Resource) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(res, true)
}

// SetFile serves content on GET path.
func (s *Server) SetFile(path string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = content
}

func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// RequestIDs lists the request id header of every request received.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// Calls lists "METHOD /path" for every request received.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// ExpireSessions invalidates every session cookie.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = map[string]string{}
}

// FailNext makes the next request fail with status and the raw JSON body.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, body: body})
}

func writeError(w rest.ResponseWriter, status int, code, detail string) {
	w.WriteHeader(status)
	_ = w.WriteJson(map[string]interface{}{
		"error_code": code,
		"detail":     detail,
	})
}

func writeRaw(w rest.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.(http.ResponseWriter).Write(body)
}

func (s *Server) recordMiddleware(h rest.HandlerFunc) rest.HandlerFunc {
	return func(w rest.ResponseWriter, r *rest.Request) {
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, r.Header.Get(requestid.RequestIdHeader))
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		h(w, r)
	}
}

func (s *Server) failureMiddleware(h rest.HandlerFunc) rest.HandlerFunc {
	return func(w rest.ResponseWriter, r *rest.Request) {
		s.mu.Lock()
		var f *failure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()
		if f != nil {
			writeRaw(w, f.status, "application/json", []byte(f.body))
			return
		}
		h(w, r)
	}
}

func (s *Server) authMiddleware(h rest.HandlerFunc) rest.HandlerFunc {
	return func(w rest.ResponseWriter, r *rest.Request) {
		if r.URL.Path == uriLogin {
			h(w, r)
			return
		}
		if _, ok := s.session(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
			return
		}
		h(w, r)
	}
}

func (s *Server) filesMiddleware(h rest.HandlerFunc) rest.HandlerFunc {
	return func(w rest.ResponseWriter, r *rest.Request) {
		if r.Method == http.MethodGet {
			s.mu.Lock()
			content, ok := s.files[r.URL.Path]
			s.mu.Unlock()
			if ok {
				writeRaw(w, http.StatusOK, "application/octet-stream", content)
				return
			}
		}
		h(w, r)
	}
}

func (s *Server) session(r *rest.Request) (model.User, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return model.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.sessions[c.Value]
	if !ok {
		return model.User{}, false
	}
	return s.accounts[email].user, true
}

func (s *Server) setSession(w rest.ResponseWriter, email string) {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = email
	s.mu.Unlock()
	w.Header().Add("Set-Cookie", (&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	}).String())
}

func (s *Server) LoginHandler(w rest.ResponseWriter, r *rest.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	email := r.PostForm.Get("email")
	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok || acc.password != r.PostForm.Get("password") {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS",
			"Incorrect email or password")
		return
	}
	s.setSession(w, email)
	_ = w.WriteJson(map[string]string{"message": "Login successful"})
}

func (s *Server) LogoutHandler(w rest.ResponseWriter, r *rest.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	w.Header().Add("Set-Cookie", (&http.Cookie{
		Name:    SessionCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	}).String())
	_ = w.WriteJson(map[string]string{"message": "Logout successful"})
}

func (s *Server) RefreshHandler(w rest.ResponseWriter, r *rest.Request) {
	user, _ := s.session(r)
	s.setSession(w, user.Email)
	_ = w.WriteJson(map[string]string{"message": "Token refreshed"})
}

func (s *Server) CurrentUserHandler(w rest.ResponseWriter, r *rest.Request) {
	user, _ := s.session(r)
	_ = w.WriteJson(user)
}

func (s *Server) GlobalSearchHandler(w rest.ResponseWriter, r *rest.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	results := []model.SearchResult{}
	if len(q) < model.MinSearchLength {
		_ = w.WriteJson(map[string]interface{}{"results": results})
		return
	}

	s.mu.Lock()
	resources := make([]string, 0, len(s.data))
	for res := range s.data {
		resources = append(resources, string(res))
	}
	sort.Strings(resources)
	for _, res := range resources {
		kind := strings.TrimSuffix(res, "s")
		for _, rec := range s.filter(model.Resource(res), false) {
			title := recordTitle(rec)
			if strings.Contains(strings.ToLower(title), q) {
				results = append(results, model.SearchResult{
					ID:    rec.ID(),
					Type:  kind,
					Title: title,
					URL:   "/" + res + "/" + rec.ID(),
				})
			}
		}
	}
	s.mu.Unlock()
	_ = w.WriteJson(map[string]interface{}{"results": results})
}

func recordTitle(rec model.Record) string {
	if v, ok := rec["name"]; ok && !v.IsNull() {
		return v.String()
	}
	first := rec["first_name"]
	last := rec["last_name"]
	return strings.TrimSpace(first.String() + " " + last.String())
}

func (s *Server) filter(res model.Resource, deleted bool) []model.Record {
	out := []model.Record{}
	for _, rec := range s.data[res] {
		v, ok := rec[fieldDeletedAt]
		isDeleted := ok && !v.IsNull()
		if isDeleted == deleted {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Server) find(res model.Resource, id string) int {
	for i, rec := range s.data[res] {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

var reservedParams = map[string]bool{
	"search":     true,
	"sort_by":    true,
	"sort_order": true,
	"skip":       true,
	"limit":      true,
}

// query applies search (on the record title), equality filters on plain
// parameters, and sort_by/sort_order.
func query(recs []model.Record, r *rest.Request) []model.Record {
	params := r.URL.Query()
	search := strings.ToLower(params.Get("search"))
	out := []model.Record{}
	for _, rec := range recs {
		if search != "" && !strings.Contains(strings.ToLower(recordTitle(rec)), search) {
			continue
		}
		match := true
		for key, values := range params {
			if reservedParams[key] || strings.Contains(key, "[") {
				continue
			}
			v, ok := rec.Field(key)
			if !ok || v.String() != values[0] {
				match = false
				break
			}
		}
		if match {
			out = append(out, rec)
		}
	}
	if field := params.Get("sort_by"); field != "" {
		dir := 1
		if params.Get("sort_order") == "desc" {
			dir = -1
		}
		path := model.ParsePath(field)
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := out[i].Lookup(path)
			b, _ := out[j].Lookup(path)
			return a.Compare(b)*dir < 0
		})
	}
	return out
}

func (s *Server) ListHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	s.mu.Lock()
	recs := query(s.filter(res, false), r)
	s.mu.Unlock()
	_ = w.WriteJson(recs)
}

func (s *Server) ListTrashHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	s.mu.Lock()
	recs := query(s.filter(res, true), r)
	s.mu.Unlock()
	_ = w.WriteJson(recs)
}

func (s *Server) GetHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(res, r.PathParam("id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}
	_ = w.WriteJson(s.data[res][i])
}

func validateRecord(res model.Resource, rec model.Record) []model.ValidationError {
	required := []string{"name"}
	if res == model.ResourceContacts {
		required = []string{"first_name", "last_name"}
	}
	var verrs []model.ValidationError
	for _, field := range required {
		if v, ok := rec[field]; !ok || v.IsEmpty() {
			verrs = append(verrs, model.ValidationError{
				Field:     "body -> " + field,
				Message:   "Field required",
				ErrorCode: "VALIDATION_ERROR",
			})
		}
	}
	return verrs
}

func writeValidationErrors(w rest.ResponseWriter, verrs []model.ValidationError) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = w.WriteJson(map[string]interface{}{
		"error_code":        "VALIDATION_ERROR",
		"detail":            "Invalid input data",
		"validation_errors": verrs,
	})
}

func decodeRecord(w rest.ResponseWriter, r *rest.Request) (model.Record, bool) {
	var v model.Value
	if err := r.DecodeJsonPayload(&v); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return nil, false
	}
	rec, ok := v.Record()
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "expected an object")
		return nil, false
	}
	return rec, true
}

func (s *Server) CreateHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if verrs := validateRecord(res, rec); len(verrs) > 0 {
		writeValidationErrors(w, verrs)
		return
	}
	now := model.String(time.Now().UTC().Format(time.RFC3339))
	rec["id"] = model.String(uuid.NewString())
	rec["created_at"] = now
	rec["updated_at"] = now
	s.mu.Lock()
	s.data[res] = append(s.data[res], rec)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
	_ = w.WriteJson(rec)
}

func (s *Server) UpdateHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(res, r.PathParam("id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}
	cur := s.data[res][i].Clone()
	for k, v := range rec {
		cur[k] = v
	}
	if verrs := validateRecord(res, cur); len(verrs) > 0 {
		writeValidationErrors(w, verrs)
		return
	}
	cur["updated_at"] = model.String(time.Now().UTC().Format(time.RFC3339))
	s.data[res][i] = cur
	_ = w.WriteJson(cur)
}

func (s *Server) softDelete(res model.Resource, id string) bool {
	i := s.find(res, id)
	if i < 0 {
		return false
	}
	rec := s.data[res][i].Clone()
	rec[fieldDeletedAt] = model.String(time.Now().UTC().Format(time.RFC3339))
	s.data[res][i] = rec
	return true
}

func (s *Server) DeleteHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.softDelete(res, r.PathParam("id")) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RestoreHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(res, r.PathParam("id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}
	rec := s.data[res][i].Clone()
	delete(rec, fieldDeletedAt)
	s.data[res][i] = rec
	_ = w.WriteJson(rec)
}

func (s *Server) HardDeleteHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(res, r.PathParam("id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}
	s.data[res] = append(s.data[res][:i], s.data[res][i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) EmptyTrashHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	s.mu.Lock()
	s.data[res] = s.filter(res, false)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	IDs    []string    `json:"ids"`
	Fields model.Value `json:"fields"`
}

func (s *Server) BulkUpdateHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	var req bulkRequest
	if err := r.DecodeJsonPayload(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	fields, _ := req.Fields.Record()
	s.mu.Lock()
	updated := 0
	for _, id := range req.IDs {
		i := s.find(res, id)
		if i < 0 {
			continue
		}
		rec := s.data[res][i].Clone()
		for k, v := range fields {
			rec[k] = v
		}
		s.data[res][i] = rec
		updated++
	}
	s.mu.Unlock()
	_ = w.WriteJson(map[string]int{"updated": updated})
}

func (s *Server) BulkSoftDeleteHandler(w rest.ResponseWriter, r *rest.Request) {
	res := model.Resource(r.PathParam("resource"))
	var req bulkRequest
	if err := r.DecodeJsonPayload(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.mu.Lock()
	deleted := 0
	for _, id := range req.IDs {
		if s.softDelete(res, id) {
			deleted++
		}
	}
	s.mu.Unlock()
	_ = w.WriteJson(map[string]int{"deleted": deleted})
}

func (s *Server) UploadHandler(w rest.ResponseWriter, r *rest.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	for field, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
				return
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
				return
			}
			s.mu.Lock()
			s.uploads = append(s.uploads, Upload{
				Path:     r.URL.Path,
				Field:    field,
				Filename: fh.Filename,
				Content:  content,
			})
			s.mu.Unlock()
		}
	}
	_ = w.WriteJson(map[string]string{
		"id":     uuid.NewString(),
		"status": "uploaded",
	})
}
