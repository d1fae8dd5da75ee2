package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Da1ch1/CoffeeShop/internal/api"
)

func newTestStore(t *testing.T, handler http.Handler) (*Store, *MemoryStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, 2*time.Second)
	require.NoError(t, err)

	tokens := NewMemoryStore()
	store, err := NewStore(client, tokens)
	require.NoError(t, err)
	return store, tokens, srv
}

func tokenHandler(token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
}

func TestLoginSuccessPersistsToken(t *testing.T) {
	store, tokens, _ := newTestStore(t, tokenHandler("abc"))

	require.NoError(t, store.Login(context.Background(), "dani@example.com", "cafecito"))

	assert.Equal(t, StatusAuthenticated, store.Status())
	assert.Equal(t, "abc", store.Token())

	persisted, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", persisted)
}

func TestLogin422IsAuthErrorAndStateUnchanged(t *testing.T) {
	store, tokens, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	err := store.Login(context.Background(), "dani@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, api.KindAuth, api.KindOf(err))

	// 422 must not force the session to anonymous.
	assert.Equal(t, StatusUnknown, store.Status())
	assert.Empty(t, store.Token())
	_, loadErr := tokens.Load()
	assert.ErrorIs(t, loadErr, ErrNoToken)
}

func TestLoginEmptyTokenIsAuthError(t *testing.T) {
	store, _, _ := newTestStore(t, tokenHandler(""))

	err := store.Login(context.Background(), "dani@example.com", "cafecito")
	require.Error(t, err)
	assert.Equal(t, api.KindAuth, api.KindOf(err))
	assert.Equal(t, StatusUnknown, store.Status())
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	var requests atomic.Int32
	store, _, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))

	for _, tc := range []struct{ email, password string }{
		{"not-an-email", "secret"},
		{"", "secret"},
		{"dani@example.com", ""},
	} {
		err := store.Login(context.Background(), tc.email, tc.password)
		require.Error(t, err)
		assert.Equal(t, api.KindValidation, api.KindOf(err))
	}
	assert.Equal(t, int32(0), requests.Load(), "format errors must not reach the server")
}

func TestLoginConnectivityError(t *testing.T) {
	store, _, srv := newTestStore(t, tokenHandler("abc"))
	srv.Close()

	err := store.Login(context.Background(), "dani@example.com", "cafecito")
	require.Error(t, err)
	assert.Equal(t, api.KindConnectivity, api.KindOf(err))
	assert.Equal(t, StatusUnknown, store.Status())
}

func TestLogoutClearsEverything(t *testing.T) {
	store, tokens, _ := newTestStore(t, tokenHandler("abc"))
	require.NoError(t, store.Login(context.Background(), "dani@example.com", "cafecito"))

	require.NoError(t, store.Logout())

	assert.Equal(t, StatusAnonymous, store.Status())
	assert.Empty(t, store.Token())
	_, err := tokens.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestLogoutWithoutTokenSucceeds(t *testing.T) {
	store, _, _ := newTestStore(t, tokenHandler("abc"))
	require.NoError(t, store.Logout())
	assert.Equal(t, StatusAnonymous, store.Status())
}

func TestRestoreWithStoredToken(t *testing.T) {
	store, tokens, _ := newTestStore(t, tokenHandler("abc"))
	require.NoError(t, tokens.Save("opaque-token"))

	assert.Equal(t, StatusAuthenticated, store.Restore())
	assert.Equal(t, "opaque-token", store.Token())
}

func TestRestoreWithoutTokenIsAnonymous(t *testing.T) {
	store, _, _ := newTestStore(t, tokenHandler("abc"))
	assert.Equal(t, StatusAnonymous, store.Restore())
}

func signedJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "dani@example.com",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestRestoreDiscardsExpiredJWT(t *testing.T) {
	store, tokens, _ := newTestStore(t, tokenHandler("abc"))
	require.NoError(t, tokens.Save(signedJWT(t, time.Now().Add(-time.Hour))))

	assert.Equal(t, StatusAnonymous, store.Restore())
	assert.Empty(t, store.Token())

	_, err := tokens.Load()
	assert.ErrorIs(t, err, ErrNoToken, "the expired token must be removed from the slot")
}

func TestRestoreKeepsUnexpiredJWT(t *testing.T) {
	store, tokens, _ := newTestStore(t, tokenHandler("abc"))
	valid := signedJWT(t, time.Now().Add(time.Hour))
	require.NoError(t, tokens.Save(valid))

	assert.Equal(t, StatusAuthenticated, store.Restore())
	assert.Equal(t, valid, store.Token())
}

func TestProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/api/login", tokenHandler("abc"))
	mux.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "Dani", "email": "dani@example.com"})
	})

	store, _, _ := newTestStore(t, mux)
	require.NoError(t, store.Login(context.Background(), "dani@example.com", "cafecito"))

	profile, err := store.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dani", profile.Name)
}
