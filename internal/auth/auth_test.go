// internal/auth/auth_test.go
package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServiceKey = "service-key"

// signToken builds a syntactically valid bearer token. The signature is
// irrelevant: ResolveUser never verifies it locally.
func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return signed
}

func TestResolveUserSuccess(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, time.Now().Add(time.Hour))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		assert.Equal(t, testServiceKey, r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"` + userID.String() + `","email":"player@example.com"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testServiceKey)
	user, err := c.ResolveUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "player@example.com", user.Email)
}

func TestResolveUserProviderRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testServiceKey)
	_, err := c.ResolveUser(context.Background(), signToken(t, time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveUserProviderReturnsNoUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testServiceKey)
	_, err := c.ResolveUser(context.Background(), signToken(t, time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveUserProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, testServiceKey)
	_, err := c.ResolveUser(context.Background(), signToken(t, time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveUserRejectsLocallyWithoutProviderCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testServiceKey)

	cases := map[string]string{
		"empty":     "",
		"malformed": "not-a-jwt",
		"expired":   signToken(t, time.Now().Add(-time.Hour)),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.ResolveUser(context.Background(), token)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
	assert.False(t, called, "locally rejected tokens must not reach the provider")
}
