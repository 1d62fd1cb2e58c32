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

package inv

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/industrace/inventory-client/client/cmdb"
	"github.com/industrace/inventory-client/model"
	"github.com/industrace/inventory-client/store"
)

const (
	DefaultRefreshInterval = 5 * time.Minute
	DefaultIdleTimeout     = 10 * time.Minute

	// SessionStorageKey holds the persisted session.
	SessionStorageKey = "auth"
)

var ErrNotAuthenticated = errors.New("inv: not authenticated")

type SessionOptions struct {
	// Store persists the session between runs. Optional.
	Store           store.KeyValueStore
	RefreshInterval time.Duration
	// IdleTimeout stops token refreshes once the user has been
	// inactive for longer.
	IdleTimeout time.Duration
	Now         func() time.Time
}

// Session tracks the authenticated user and keeps the session token fresh
// while the user is active.
type Session struct {
	client cmdb.Client
	opts   SessionOptions

	mu            sync.Mutex
	user          *model.User
	authenticated bool
	lastActivity  time.Time
	cron          *cron.Cron
}

type sessionCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

type persistedSession struct {
	User            *model.User     `json:"user"`
	IsAuthenticated bool            `json:"is_authenticated"`
	Cookies         []sessionCookie `json:"cookies,omitempty"`
}

func NewSession(client cmdb.Client, opts SessionOptions) *Session {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		client:       client,
		opts:         opts,
		lastActivity: opts.Now(),
	}
}

func (s *Session) Login(ctx context.Context, creds model.Credentials) error {
	if err := s.client.Login(ctx, creds); err != nil {
		return errors.Wrap(err, "login failed")
	}
	if _, err := s.FetchUser(ctx); err != nil {
		return err
	}
	s.Touch()
	s.save(ctx)
	return s.StartTokenRefresh(ctx)
}

// FetchUser loads the current user; a failure ends the session.
func (s *Session) FetchUser(ctx context.Context) (*model.User, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.Logout(ctx)
		return nil, errors.Wrap(err, "failed to fetch current user")
	}
	s.mu.Lock()
	s.user = user
	s.authenticated = true
	s.mu.Unlock()
	return user, nil
}

// Logout ends the session. Local state is cleared even when the backend
// cannot be reached.
func (s *Session) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		log.FromContext(ctx).Debugf("logout request failed: %v", err)
	}
	s.StopTokenRefresh()
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
	s.save(ctx)
}

func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Touch records user activity.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = s.opts.Now()
	s.mu.Unlock()
}

// RequireAuth guards operations reserved to authenticated users.
func (s *Session) RequireAuth(ctx context.Context) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	s.Touch()
	return nil
}

// StartTokenRefresh schedules Refresh every refresh interval. Calling it
// again while running is a no-op.
func (s *Session) StartTokenRefresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc("@every "+s.opts.RefreshInterval.String(), func() {
		_ = s.Refresh(ctx)
	})
	if err != nil {
		return errors.Wrap(err, "failed to schedule token refresh")
	}
	c.Start()
	s.cron = c
	return nil
}

func (s *Session) StopTokenRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		// running jobs may be the caller, do not wait for them
		s.cron.Stop()
		s.cron = nil
	}
}

func (s *Session) refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// Refresh renews the session token unless the user is logged out or has
// been idle for longer than the idle timeout. A failed refresh logs the
// user out.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	skip := !s.authenticated || s.opts.Now().Sub(s.lastActivity) > s.opts.IdleTimeout
	s.mu.Unlock()
	if skip {
		return nil
	}

	if err := s.client.Refresh(ctx); err != nil {
		log.FromContext(ctx).Warnf("token refresh failed: %v", err)
		s.Logout(ctx)
		return errors.Wrap(err, "token refresh failed")
	}
	s.save(ctx)
	return nil
}

func (s *Session) save(ctx context.Context) {
	if s.opts.Store == nil {
		return
	}
	s.mu.Lock()
	doc := persistedSession{User: s.user, IsAuthenticated: s.authenticated}
	s.mu.Unlock()
	if doc.IsAuthenticated {
		for _, c := range s.client.Cookies() {
			doc.Cookies = append(doc.Cookies, sessionCookie{
				Name:    c.Name,
				Value:   c.Value,
				Path:    c.Path,
				Expires: c.Expires,
			})
		}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		log.FromContext(ctx).Warnf("failed to encode session: %v", err)
		return
	}
	if err := s.opts.Store.Set(ctx, SessionStorageKey, string(b)); err != nil {
		log.FromContext(ctx).Warnf("failed to save session: %v", err)
	}
}

// Restore reloads the session saved by a previous run. It reports whether
// an authenticated session was found.
func (s *Session) Restore(ctx context.Context) bool {
	if s.opts.Store == nil {
		return false
	}
	raw, err := s.opts.Store.Get(ctx, SessionStorageKey)
	if err != nil {
		if err != store.ErrKeyNotFound {
			log.FromContext(ctx).Warnf("failed to load session: %v", err)
		}
		return false
	}
	var doc persistedSession
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		log.FromContext(ctx).Warnf("failed to parse saved session: %v", err)
		return false
	}
	if !doc.IsAuthenticated {
		return false
	}

	cookies := make([]*http.Cookie, len(doc.Cookies))
	for i, c := range doc.Cookies {
		cookies[i] = &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires}
	}
	s.client.SetCookies(cookies)

	s.mu.Lock()
	s.user = doc.User
	s.authenticated = true
	s.lastActivity = s.opts.Now()
	s.mu.Unlock()
	return true
}
