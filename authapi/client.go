package authapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds every Auth API call.
	DefaultTimeout = 15 * time.Second

	// maxResponseSize caps response body reads; the Auth API never
	// legitimately returns more than a few KiB.
	maxResponseSize = 1 << 20
)

// sharedHTTPClient pools connections across all HTTPClient instances.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// User is the normalized account payload returned by login and refresh.
// Role is the raw wire string; callers map it into their closed role set.
type User struct {
	ID         string
	Email      string
	Name       string
	Role       string
	Department string
	Campus     string
	Username   string
	Students   []string
}

// LoginReply pairs the issued token with the account payload and the
// client-side capture time for the session window.
type LoginReply struct {
	Token     string
	User      User
	LoginTime time.Time
}

// DemoCredentials is the demo/test account listing from /test-credentials.
type DemoCredentials struct {
	SampleInstructor Credentials `json:"sample_instructor"`
	SampleAdmin      Credentials `json:"sample_admin"`
}

// Credentials is a single demo email/password pair.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client is the Auth API operation set. HTTPClient is the production
// implementation; tests substitute fakes.
type Client interface {
	Login(ctx context.Context, email, password string) (*LoginReply, error)
	Logout(ctx context.Context, token string) error
	RefreshUser(ctx context.Context, token string) (*User, error)
	TestCredentials(ctx context.Context) (*DemoCredentials, error)
}

// Options configures an HTTPClient.
type Options struct {
	// BaseURL is the Auth API root, e.g. "https://auth.campuspulse.io/api".
	BaseURL string

	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration

	// UserAgent overrides the default request User-Agent.
	UserAgent string

	// HTTPClient overrides the shared pooled client. Used by tests.
	HTTPClient *http.Client

	// Now overrides the clock used to stamp LoginTime. Used by tests.
	Now func() time.Time
}

// HTTPClient talks to the Auth API over HTTPS.
type HTTPClient struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	httpc     *http.Client
	now       func() time.Time
}

// NewHTTPClient validates the base URL and returns a ready client.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, errors.New("authapi: empty base URL")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("authapi: invalid base URL %q", opts.BaseURL)
	}

	c := &HTTPClient{
		baseURL:   base,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		httpc:     opts.HTTPClient,
		now:       opts.Now,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = "sessionkit"
	}
	if c.httpc == nil {
		c.httpc = sharedHTTPClient
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID         json.Number `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Role       string      `json:"role"`
	Department string      `json:"department"`
	Campus     string      `json:"campus"`
	Username   string      `json:"username"`
	Students   []string    `json:"students"`
}

func (p userPayload) user() User {
	return User{
		ID:         p.ID.String(),
		Email:      p.Email,
		Name:       p.Name,
		Role:       p.Role,
		Department: p.Department,
		Campus:     p.Campus,
		Username:   p.Username,
		Students:   p.Students,
	}
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	User        userPayload `json:"user"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Login exchanges credentials for a token and account payload. LoginTime
// is the moment the response is decoded on this machine.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginReply, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &APIError{Status: http.StatusBadGateway, Detail: "login response missing access token"}
	}

	return &LoginReply{
		Token:     resp.AccessToken,
		User:      resp.User.user(),
		LoginTime: c.now(),
	}, nil
}

// Logout invalidates the token server-side. Callers treat failures as
// best effort; local teardown never waits on this result.
func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

// RefreshUser fetches the server's current view of the account.
func (c *HTTPClient) RefreshUser(ctx context.Context, token string) (*User, error) {
	var payload userPayload
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &payload); err != nil {
		return nil, err
	}
	u := payload.user()
	return &u, nil
}

// TestCredentials fetches the demo account listing. Demo/test UI only.
func (c *HTTPClient) TestCredentials(ctx context.Context) (*DemoCredentials, error) {
	var creds DemoCredentials
	if err := c.do(ctx, http.MethodGet, "/test-credentials", "", nil, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var detail errorResponse
		if json.Unmarshal(raw, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Detail: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}
