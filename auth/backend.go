package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	autherrors "github.com/grcops/go-session-server/internal/errors"
)

// Credentials are the login inputs forwarded to the external backend.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the backend's successful login response. Everything needed
// to populate the three session slots arrives in one payload.
type LoginResult struct {
	AccessToken          string         `json:"accessToken"`
	ExpiresAt            time.Time      `json:"expiresAt"`
	User                 map[string]any `json:"user"`
	MerchantID           string         `json:"merchantID"`
	UserPermissions      map[string]any `json:"userPermissions"`
	KYC                  map[string]any `json:"kyc"`
	WorkspaceIDs         []string       `json:"workspaceIDs"`
	WorkspacePermissions map[string]any `json:"workspacePermissions"`
}

// RefreshResult is the backend's token refresh response.
type RefreshResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Backend is the external credential service. The session layer never stores
// passwords; it only brokers them to this backend and keeps the issued token.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Refresh(ctx context.Context, accessToken string) (*RefreshResult, error)
}

// BackendClient is the HTTP implementation of Backend.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

type BackendOption func(*BackendClient)

// WithHTTPClient overrides the HTTP client, used by tests and for custom timeouts.
func WithHTTPClient(client *http.Client) BackendOption {
	return func(c *BackendClient) {
		c.httpClient = client
	}
}

// NewBackendClient creates a client for the credential backend at baseURL.
func NewBackendClient(baseURL string, options ...BackendOption) *BackendClient {
	c := &BackendClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *BackendClient) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.Wrap(err, "BackendClient.Login marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "BackendClient.Login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(autherrors.ErrBackendUnavailable, "BackendClient.Login: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, autherrors.ErrInvalidCredentials
	case resp.StatusCode >= 300:
		return nil, errors.Wrapf(autherrors.ErrBackendUnavailable, "BackendClient.Login status %d", resp.StatusCode)
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "BackendClient.Login decode")
	}
	if result.AccessToken == "" {
		return nil, errors.Wrap(autherrors.ErrBackendUnavailable, "BackendClient.Login empty access token")
	}
	return &result, nil
}

func (c *BackendClient) Refresh(ctx context.Context, accessToken string) (*RefreshResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", nil)
	if err != nil {
		return nil, errors.Wrap(err, "BackendClient.Refresh request")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(autherrors.ErrBackendUnavailable, "BackendClient.Refresh: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, autherrors.ErrUnauthenticated
	case resp.StatusCode >= 300:
		return nil, errors.Wrapf(autherrors.ErrBackendUnavailable, "BackendClient.Refresh status %d", resp.StatusCode)
	}

	var result RefreshResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "BackendClient.Refresh decode")
	}
	return &result, nil
}
