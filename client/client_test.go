package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers a small subset of the API and records the last Authorization header.
type fakeAPI struct {
	lastAuth atomic.Value
	calls    atomic.Int32
	expireOn string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer good-token" || r.URL.Path == f.expireOn {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized", "message": "invalid or expired token"})
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct-horse" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_credentials", "message": "invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, Session{Token: "good-token", Email: body["email"], Role: RoleClient, ExpiresAt: time.Now().Add(time.Hour)})
	})
	mux.HandleFunc("/logout", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("/rentals", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusCreated, map[string]any{"rental": Rental{ID: "r1", PropertyID: 4, ReceiptCode: "ABC"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rentals": []Rental{}})
	}))
	mux.HandleFunc("/properties/for-rent", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("location") == "Nowhere" {
			writeJSON(w, http.StatusOK, []Property{})
			return
		}
		writeJSON(w, http.StatusOK, []Property{{ID: 1, Name: "Bedsitter", ListingType: "rent"}})
	})
	mux.HandleFunc("/properties/for-sale/9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "property not found"})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.lastAuth.Store(r.Header.Get("Authorization"))
		mux.ServeHTTP(w, r)
	})
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", opts...)
}

func TestLogin_ValidatesBeforeRequest(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	_, err := c.Login(context.Background(), "not-an-email", "short")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Equal(t, "must be at least 8 characters", verr.Fields["password"])
	assert.Zero(t, api.calls.Load(), "no request for invalid input")
}

func TestLogin_StoresSessionAndAttachesToken(t *testing.T) {
	api := &fakeAPI{}
	store := NewMemoryStore()
	c := newTestClient(t, api, WithSessionManager(NewManager(store)))
	ctx := context.Background()

	s, err := c.Login(ctx, "  tenant@example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "tenant@example.com", s.Email)

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "good-token", persisted.Token)

	rentals, err := c.Rentals(ctx)
	require.NoError(t, err)
	assert.NotNil(t, rentals)
	assert.Empty(t, rentals)
	assert.Equal(t, "Bearer good-token", api.lastAuth.Load())
}

func TestLogin_BadCredentials(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	_, err := c.Login(context.Background(), "tenant@example.com", "wrong-password")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid_credentials", apiErr.Code)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUnauthorizedClearsSessionForEveryone(t *testing.T) {
	api := &fakeAPI{expireOn: "/rentals"}
	m := NewManager(NewMemoryStore())
	c := newTestClient(t, api, WithSessionManager(m))
	other := New("http://unused.invalid", WithSessionManager(m))

	var loggedOut atomic.Bool
	m.Subscribe(func(s *Session) {
		if s == nil {
			loggedOut.Store(true)
		}
	})

	_, err := c.Login(context.Background(), "tenant@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = c.Rentals(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, loggedOut.Load())
	assert.Empty(t, other.Session().Token(), "a second client sharing the manager sees the logout")

	_, err = c.Rentals(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestRoleGuardsRunLocally(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)
	ctx := context.Background()

	_, err := c.Rent(ctx, 4, 0, "0712345678")
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = c.Login(ctx, "tenant@example.com", "correct-horse")
	require.NoError(t, err)
	before := api.calls.Load()

	_, err = c.AgentPayments(ctx)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = c.CreateListing(ctx, "rent", Listing{Name: "x", Price: 1, Location: "y"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, before, api.calls.Load())

	r, err := c.Rent(ctx, 4, 0, "0712345678")
	require.NoError(t, err)
	assert.Equal(t, "ABC", r.ReceiptCode)

	_, err = c.Rent(ctx, 0, 0, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "property_id")
	assert.Contains(t, verr.Fields, "phone_number")
}

func TestLogout_ClearsEvenWhenServerRejects(t *testing.T) {
	api := &fakeAPI{expireOn: "/logout"}
	c := newTestClient(t, api)
	ctx := context.Background()

	_, err := c.Login(ctx, "tenant@example.com", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Session().Token())
}

func TestListings(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})
	ctx := context.Background()

	props, err := c.ListForRent(ctx, ListOptions{Location: "Kilimani", MaxPrice: 30000})
	require.NoError(t, err)
	require.Len(t, props, 1)

	props, err = c.ListForRent(ctx, ListOptions{Location: "Nowhere"})
	require.NoError(t, err)
	assert.NotNil(t, props)
	assert.Empty(t, props)

	_, err = c.GetProperty(ctx, 9, "sale")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestRateLimitHonoursContext(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, WithRateLimit(0.001, 1))
	ctx := context.Background()

	_, err := c.ListForRent(ctx, ListOptions{})
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = c.ListForRent(short, ListOptions{})
	assert.Error(t, err)
}

func TestLateUnauthorizedForReplacedTokenKeepsNewSession(t *testing.T) {
	received := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer old-token" {
			close(received)
			<-release
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized","message":"invalid or expired token"}`))
	}))
	defer srv.Close()

	m := NewManager(NewMemoryStore())
	c := New(srv.URL, WithSessionManager(m))
	require.NoError(t, m.Set(&Session{Token: "old-token", Role: RoleClient, ExpiresAt: time.Now().Add(time.Hour)}))

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Me(context.Background())
		errCh <- err
	}()

	<-received
	require.NoError(t, m.Set(&Session{Token: "new-token", Role: RoleClient, ExpiresAt: time.Now().Add(time.Hour)}))
	close(release)

	assert.ErrorIs(t, <-errCh, ErrUnauthorized)
	assert.Equal(t, "new-token", m.Token(), "the 401 answered a token that is no longer current")
}
