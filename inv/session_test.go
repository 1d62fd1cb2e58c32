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
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/industrace/inventory-client/client/cmdb"
	"github.com/industrace/inventory-client/client/cmdb/cmdbtest"
	mcmdb "github.com/industrace/inventory-client/client/cmdb/mocks"
	"github.com/industrace/inventory-client/model"
	"github.com/industrace/inventory-client/store/memory"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "secret"
)

func newTestServer(t *testing.T) *cmdbtest.Server {
	srv := cmdbtest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser(testEmail, testPassword, model.User{
		Name: "Admin",
		Role: &model.Role{Name: model.RoleAdmin},
	})
	return srv
}

var testCreds = model.Credentials{Email: testEmail, Password: testPassword}

// fakeClock is advanced by hand.
type fakeClock struct {
	now atomic.Int64
}

func newFakeClock() *fakeClock {
	c := &fakeClock{}
	c.now.Store(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time {
	return time.Unix(0, c.now.Load()).UTC()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now.Add(int64(d))
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	ctx := context.Background()
	db := memory.NewDataStoreMemory()

	var sess *Session
	client := cmdb.NewClient(srv.URL, cmdb.ClientOptions{
		OnUnauthorized: func(ctx context.Context) { sess.Logout(ctx) },
	})
	sess = NewSession(client, SessionOptions{Store: db})
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, ErrNotAuthenticated, sess.RequireAuth(ctx))

	err := sess.Login(ctx, model.Credentials{Email: testEmail, Password: "nope"})
	assert.Error(t, err)
	assert.False(t, sess.IsAuthenticated())

	require.NoError(t, sess.Login(ctx, testCreds))
	defer sess.StopTokenRefresh()
	assert.True(t, sess.IsAuthenticated())
	assert.True(t, sess.refreshing())
	assert.NoError(t, sess.RequireAuth(ctx))
	require.NotNil(t, sess.User())
	assert.Equal(t, "Admin", sess.User().Name)
	assert.True(t, sess.User().IsAdmin())

	// a second run picks the session up from the store
	other := NewSession(cmdb.NewClient(srv.URL), SessionOptions{Store: db})
	require.True(t, other.Restore(ctx))
	assert.Equal(t, "Admin", other.User().Name)
	user, err := other.FetchUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, testEmail, user.Email)

	// an expired session triggers the logout hook
	srv.ExpireSessions()
	_, err = client.List(ctx, model.ResourceAssets, nil)
	assert.True(t, errors.Is(err, cmdb.ErrUnauthorized))
	assert.False(t, sess.IsAuthenticated())
	assert.Nil(t, sess.User())
	assert.False(t, sess.refreshing())

	// and the saved session is gone too
	again := NewSession(cmdb.NewClient(srv.URL), SessionOptions{Store: db})
	assert.False(t, again.Restore(ctx))
}

func TestSessionRestoreInvalid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := mcmdb.NewClient(t)

	assert.False(t, NewSession(client, SessionOptions{}).Restore(ctx))

	db := memory.NewDataStoreMemory()
	sess := NewSession(client, SessionOptions{Store: db})
	assert.False(t, sess.Restore(ctx))

	require.NoError(t, db.Set(ctx, SessionStorageKey, "{corrupt"))
	assert.False(t, sess.Restore(ctx))
	assert.False(t, sess.IsAuthenticated())
}

func TestSessionFetchUserFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := mcmdb.NewClient(t)
	client.On("Login", ctx, testCreds).Return(nil)
	client.On("CurrentUser", ctx).Return(nil, errors.New("connection refused"))
	client.On("Logout", ctx).Return(errors.New("connection refused"))

	sess := NewSession(client, SessionOptions{})
	err := sess.Login(ctx, testCreds)
	assert.EqualError(t, err, "failed to fetch current user: connection refused")
	assert.False(t, sess.IsAuthenticated())
	assert.False(t, sess.refreshing())
}

func TestSessionSaveEncodeFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := mcmdb.NewClient(t)
	client.On("CurrentUser", ctx).Return(&model.User{Name: "Admin"}, nil)
	// Years past 9999 cannot be encoded as RFC 3339.
	client.On("Cookies").Return([]*http.Cookie{{
		Name:    "session",
		Value:   "abc",
		Expires: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
	}})

	db := memory.NewDataStoreMemory()
	require.NoError(t, db.Set(ctx, SessionStorageKey, "previous"))

	sess := NewSession(client, SessionOptions{Store: db})
	_, err := sess.FetchUser(ctx)
	require.NoError(t, err)
	sess.save(ctx)

	raw, err := db.Get(ctx, SessionStorageKey)
	require.NoError(t, err)
	assert.Equal(t, "previous", raw)
	assert.True(t, sess.IsAuthenticated())
}

func TestSessionRefresh(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		authenticated bool
		idle          time.Duration
		refreshErr    error

		refresh        bool
		err            string
		authenticated2 bool
	}{
		"logged out": {},
		"active": {
			authenticated:  true,
			idle:           time.Minute,
			refresh:        true,
			authenticated2: true,
		},
		"at idle timeout": {
			authenticated:  true,
			idle:           DefaultIdleTimeout,
			refresh:        true,
			authenticated2: true,
		},
		"idle": {
			authenticated:  true,
			idle:           DefaultIdleTimeout + time.Second,
			authenticated2: true,
		},
		"refresh fails": {
			authenticated: true,
			refreshErr:    &cmdb.APIError{Status: 401},
			refresh:       true,
			err:           "token refresh failed: cmdb: HTTP 401: Unauthorized",
		},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			clock := newFakeClock()
			client := mcmdb.NewClient(t)
			if tc.authenticated {
				client.On("CurrentUser", ctx).Return(&model.User{Email: testEmail}, nil)
			}
			if tc.refresh {
				client.On("Refresh", ctx).Return(tc.refreshErr)
			}
			if tc.refreshErr != nil {
				client.On("Logout", ctx).Return(nil)
			}

			sess := NewSession(client, SessionOptions{Now: clock.Now})
			if tc.authenticated {
				_, err := sess.FetchUser(ctx)
				require.NoError(t, err)
				sess.Touch()
			}
			clock.Advance(tc.idle)

			err := sess.Refresh(ctx)
			if tc.err != "" {
				assert.EqualError(t, err, tc.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.authenticated2, sess.IsAuthenticated())
		})
	}
}

func TestSessionTokenRefreshSchedule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := mcmdb.NewClient(t)
	client.On("CurrentUser", ctx).Return(&model.User{Email: testEmail}, nil)

	var refreshes atomic.Int32
	client.On("Refresh", mock.Anything).
		Run(func(mock.Arguments) { refreshes.Add(1) }).
		Return(nil)

	sess := NewSession(client, SessionOptions{RefreshInterval: time.Second})
	_, err := sess.FetchUser(ctx)
	require.NoError(t, err)

	require.NoError(t, sess.StartTokenRefresh(ctx))
	require.NoError(t, sess.StartTokenRefresh(ctx))
	assert.Eventually(t, func() bool {
		return refreshes.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	sess.StopTokenRefresh()
	sess.StopTokenRefresh()
	assert.False(t, sess.refreshing())
}
