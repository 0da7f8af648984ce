// internal/auth/auth.go

// Package auth resolves bearer tokens against the external identity
// provider. The provider owns token issuance and validation; this
// package only delegates and fails closed.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/newambition/convince/internal/models"
)

// ErrUnauthorized marks any credential failure: missing, malformed,
// expired, or rejected by the provider.
var ErrUnauthorized = errors.New("could not validate credentials")

// Client talks to the identity provider's user endpoint.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a provider client for the given base URL and
// service key.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ResolveUser exchanges a bearer token for the user it identifies.
// Any failure, local or remote, yields ErrUnauthorized; no detail about
// the credential leaks to the caller.
func (c *Client) ResolveUser(ctx context.Context, token string) (models.User, error) {
	if err := precheck(token); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.User{}, fmt.Errorf("%w: provider returned %d", ErrUnauthorized, resp.StatusCode)
	}

	var payload struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if payload.ID == uuid.Nil {
		return models.User{}, fmt.Errorf("%w: provider returned no user", ErrUnauthorized)
	}
	return models.User{ID: payload.ID, Email: payload.Email}, nil
}

// precheck rejects tokens that cannot possibly validate without paying
// for a provider round-trip. The signature is NOT verified here; the
// provider stays authoritative.
func precheck(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return err
	}
	if exp != nil && exp.Before(time.Now()) {
		return errors.New("token expired")
	}
	return nil
}
