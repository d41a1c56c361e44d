package digikey

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/suppliers"
)

// expiryMargin is subtracted from the reported token lifetime so a token is
// never used right at its expiry boundary.
const expiryMargin = 30 * time.Second

// TokenSource caches the client-credentials bearer token shared by all
// Digi-Key calls in the process. The mutex guarantees only one refresh is in
// flight at a time: concurrent callers block on the lock and reuse the token
// the winning refresh produced.
type TokenSource struct {
	mu sync.Mutex

	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client

	accessToken string
	expiresAt   time.Time

	now func() time.Time // overridable in tests
}

// NewTokenSource creates a token source for the Digi-Key token endpoint.
func NewTokenSource(clientID, clientSecret, tokenURL string, timeout time.Duration) *TokenSource {
	if tokenURL == "" {
		tokenURL = "https://api.digikey.com/v1/token"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &TokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// Token returns a valid access token, refreshing if the cached one is
// absent or expired.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && s.now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

// Invalidate discards the cached token if it is still the one that failed.
// A token refreshed by a concurrent caller in the meantime is kept.
func (s *TokenSource) Invalidate(failedToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken == failedToken {
		s.accessToken = ""
		s.expiresAt = time.Time{}
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// refreshLocked obtains a fresh token. Caller must hold the lock.
func (s *TokenSource) refreshLocked(ctx context.Context) error {
	if s.clientID == "" || s.clientSecret == "" {
		return &suppliers.MisconfiguredError{
			Supplier: entities.SupplierDigiKey,
			Reason:   "DIGIKEY_CLIENT_ID and DIGIKEY_CLIENT_SECRET are required",
		}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.clientID, s.clientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &suppliers.UnavailableError{Supplier: entities.SupplierDigiKey, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &suppliers.MisconfiguredError{
			Supplier: entities.SupplierDigiKey,
			Reason:   fmt.Sprintf("client credentials rejected (HTTP %d)", resp.StatusCode),
		}
	case resp.StatusCode >= 500:
		return &suppliers.UnavailableError{Supplier: entities.SupplierDigiKey, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected token endpoint status %d: %s", resp.StatusCode, string(body))
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return fmt.Errorf("token endpoint returned an empty access token")
	}

	lifetime := time.Duration(payload.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}

	s.accessToken = payload.AccessToken
	s.expiresAt = s.now().Add(lifetime - expiryMargin)

	return nil
}
