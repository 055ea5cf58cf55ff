// AngelaMos | 2026
// clerk.go

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nutriai/backend/internal/config"
	"github.com/nutriai/backend/internal/core"
)

// ErrProvider marks a non-success answer from the identity provider.
var ErrProvider = errors.New("identity provider error")

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// ClerkUser is the subset of the Backend API user object this service reads.
type ClerkUser struct {
	ID             string         `json:"id"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	FirstName      *string        `json:"first_name"`
	LastName       *string        `json:"last_name"`
	Username       *string        `json:"username"`
}

func (u *ClerkUser) PrimaryEmail() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return u.EmailAddresses[0].EmailAddress
}

// DisplayName joins first and last name, falling back to the username.
func (u *ClerkUser) DisplayName() string {
	name := strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
	if name != "" {
		return name
	}
	return deref(u.Username)
}

type CreateUserParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type ClerkClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClerkClient(cfg config.ClerkConfig) *ClerkClient {
	return &ClerkClient{
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *ClerkClient) GetUser(ctx context.Context, id string) (*ClerkUser, error) {
	var u ClerkUser
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, fmt.Errorf("get clerk user: %w", err)
	}
	return &u, nil
}

func (c *ClerkClient) FindUserByEmail(
	ctx context.Context,
	email string,
) (*ClerkUser, error) {
	q := url.Values{}
	q.Set("email_address", email)

	var users []ClerkUser
	if err := c.do(ctx, http.MethodGet, "/users?"+q.Encode(), nil, &users); err != nil {
		return nil, fmt.Errorf("find clerk user: %w", err)
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("find clerk user: %w", core.ErrNotFound)
	}

	return &users[0], nil
}

func (c *ClerkClient) CreateUser(
	ctx context.Context,
	p CreateUserParams,
) (*ClerkUser, error) {
	body := map[string]any{
		"email_address":             []string{p.Email},
		"password":                  p.Password,
		"skip_password_checks":      false,
		"skip_password_requirement": false,
	}
	if p.FirstName != "" {
		body["first_name"] = p.FirstName
	}
	if p.LastName != "" {
		body["last_name"] = p.LastName
	}

	var u ClerkUser
	if err := c.do(ctx, http.MethodPost, "/users", body, &u); err != nil {
		return nil, fmt.Errorf("create clerk user: %w", err)
	}

	if u.ID == "" {
		return nil, fmt.Errorf("create clerk user: missing id: %w", ErrProvider)
	}

	return &u, nil
}

// VerifyPassword returns false, not an error, when the provider rejects the
// password.
func (c *ClerkClient) VerifyPassword(
	ctx context.Context,
	id, password string,
) (bool, error) {
	var out struct {
		Verified bool `json:"verified"`
	}

	err := c.do(ctx, http.MethodPost,
		"/users/"+url.PathEscape(id)+"/verify_password",
		map[string]string{"password": password},
		&out,
	)
	var pe *ProviderError
	if errors.As(err, &pe) &&
		(pe.StatusCode == http.StatusUnprocessableEntity ||
			pe.StatusCode == http.StatusBadRequest) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}

	return out.Verified, nil
}

// ProviderError carries the status and body of a rejected provider call.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("clerk api status %d: %s", e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return ErrProvider
}

func (c *ClerkClient) do(
	ctx context.Context,
	method, path string,
	in, out any,
) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, core.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		//nolint:errcheck // best-effort error context
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, ErrProvider)
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
