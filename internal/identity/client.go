package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Identity is the authenticated principal as reported by the backend.
// Replaced wholesale on every fetch, never partially mutated.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IClient is the four-operation contract against the identity backend.
// Every call is a network round trip and may fail with a *Error.
type IClient interface {
	CreateAccount(ctx context.Context, email, password, name string) (*Identity, error)
	Login(ctx context.Context, email, password string) (*Identity, error)
	CurrentIdentity(ctx context.Context) (*Identity, error)
	Logout(ctx context.Context) error
}

// Client talks to an Appwrite-compatible REST identity backend. The session
// itself lives in the backend's cookie; the client only carries the jar.
type Client struct {
	endpoint string
	project  string
	http     *http.Client
}

func NewClient(endpoint, projectID string, jar http.CookieJar) *Client {
	return &Client{
		endpoint: endpoint,
		project:  projectID,
		http:     &http.Client{Jar: jar},
	}
}

type accountResponse struct {
	Id    string `json:"$id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type backendError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

type createAccountRequest struct {
	UserId   string `json:"userId"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type createSessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccount registers a new account. It establishes no session; callers
// must follow up with Login.
func (c *Client) CreateAccount(ctx context.Context, email, password, name string) (*Identity, error) {
	reqBody := createAccountRequest{
		UserId:   "unique()",
		Email:    email,
		Password: password,
		Name:     name,
	}

	var account accountResponse
	if err := c.do(ctx, http.MethodPost, "/account", reqBody, &account); err != nil {
		return nil, err
	}
	return &Identity{Name: account.Name, Email: account.Email}, nil
}

// Login creates an email/password session, then fetches the account so the
// caller gets a full Identity rather than the raw session object.
func (c *Client) Login(ctx context.Context, email, password string) (*Identity, error) {
	reqBody := createSessionRequest{Email: email, Password: password}

	if err := c.do(ctx, http.MethodPost, "/account/sessions/email", reqBody, nil); err != nil {
		return nil, err
	}
	return c.CurrentIdentity(ctx)
}

// CurrentIdentity fetches the account behind the active session. A missing or
// expired session is the expected "not logged in" outcome, reported as
// KindNoSession.
func (c *Client) CurrentIdentity(ctx context.Context) (*Identity, error) {
	var account accountResponse
	if err := c.do(ctx, http.MethodGet, "/account", nil, &account); err != nil {
		return nil, err
	}
	return &Identity{Name: account.Name, Email: account.Email}, nil
}

// Logout invalidates the current session. Calling it with no active session
// is a success, not an error.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodDelete, "/account/sessions/current", nil, nil)
	if IsKind(err, KindNoSession) {
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, resBody interface{}) error {
	var body io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return NewNetworkError(err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", c.endpoint, path), body)
	if err != nil {
		return NewNetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.project)

	resp, err := c.http.Do(req)
	if err != nil {
		return NewNetworkError(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		return normalizeError(resp.StatusCode, bodyBytes)
	}

	if resBody != nil {
		if err := json.Unmarshal(bodyBytes, resBody); err != nil {
			return NewNetworkError(err)
		}
	}
	return nil
}

// normalizeError maps the backend's {message, code, type} error shape onto the
// closed Kind taxonomy. Anything unrecognized counts as a network-level fault.
func normalizeError(status int, body []byte) error {
	var be backendError
	if err := json.Unmarshal(body, &be); err != nil {
		return NewNetworkError(fmt.Errorf("backend returned status %d", status))
	}

	switch be.Type {
	case "user_already_exists", "user_email_already_exists":
		return NewConflictError()
	case "user_invalid_credentials":
		return NewInvalidCredentialsError()
	case "general_unauthorized_scope", "user_session_not_found":
		return NewNoSessionError()
	}

	switch {
	case status == http.StatusConflict:
		return NewConflictError()
	case status == http.StatusUnauthorized:
		return NewNoSessionError()
	case status == http.StatusBadRequest:
		return NewValidationError(be.Message)
	}
	return NewNetworkError(fmt.Errorf("backend returned status %d: %s", status, be.Message))
}
