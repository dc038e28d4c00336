package stubserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"authgate/internal/config"
	"authgate/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func newTestServer() *Server {
	cfg := &config.Config{
		Stub: config.StubConfig{
			Port:          "0",
			SessionSecret: "test_secret",
			SessionTTLMin: 5,
		},
	}
	return New(cfg, logger.NewNopLogger())
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", "p1")
	return req
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Type string `json:"type"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Type
}

func TestCreateAccount(t *testing.T) {
	srv := newTestServer()
	app := srv.GetApp()

	t.Run("success", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest("POST", "/v1/account",
			`{"userId":"unique()","email":"ada@example.com","password":"hunter22x","name":"Ada"}`), -1)
		assert.Equal(t, 201, resp.StatusCode)

		var body map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "Ada", body["name"])
		assert.Equal(t, "ada@example.com", body["email"])
		assert.NotEmpty(t, body["$id"])
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest("POST", "/v1/account",
			`{"userId":"unique()","email":"ada@example.com","password":"hunter22x","name":"Ada"}`), -1)
		assert.Equal(t, 409, resp.StatusCode)
		assert.Equal(t, "user_already_exists", decodeError(t, resp))
	})

	t.Run("short password rejected", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest("POST", "/v1/account",
			`{"userId":"unique()","email":"bob@example.com","password":"short","name":"Bob"}`), -1)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "general_argument_invalid", decodeError(t, resp))
	})

	t.Run("missing project header rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/account", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer()
	app := srv.GetApp()

	resp, _ := app.Test(jsonRequest("POST", "/v1/account",
		`{"userId":"unique()","email":"ada@example.com","password":"hunter22x","name":"Ada"}`), -1)
	assert.Equal(t, 201, resp.StatusCode)

	t.Run("wrong password", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest("POST", "/v1/account/sessions/email",
			`{"email":"ada@example.com","password":"wrongpass"}`), -1)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "user_invalid_credentials", decodeError(t, resp))
	})

	t.Run("unknown email reports the same failure", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest("POST", "/v1/account/sessions/email",
			`{"email":"nobody@example.com","password":"hunter22x"}`), -1)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "user_invalid_credentials", decodeError(t, resp))
	})

	t.Run("get account without session", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest("GET", "/v1/account", ""), -1)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "general_unauthorized_scope", decodeError(t, resp))
	})

	var sessionCookie string
	t.Run("login sets session cookie", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest("POST", "/v1/account/sessions/email",
			`{"email":"ada@example.com","password":"hunter22x"}`), -1)
		assert.Equal(t, 201, resp.StatusCode)

		for _, c := range resp.Cookies() {
			if c.Name == "a_session_p1" {
				sessionCookie = c.Value
			}
		}
		assert.NotEmpty(t, sessionCookie)
	})

	t.Run("get account with session", func(t *testing.T) {
		req := jsonRequest("GET", "/v1/account", "")
		req.AddCookie(&http.Cookie{Name: "a_session_p1", Value: sessionCookie})
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 200, resp.StatusCode)

		var body map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "ada@example.com", body["email"])
	})

	t.Run("delete session", func(t *testing.T) {
		req := jsonRequest("DELETE", "/v1/account/sessions/current", "")
		req.AddCookie(&http.Cookie{Name: "a_session_p1", Value: sessionCookie})
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 204, resp.StatusCode)
	})

	t.Run("second delete has no session", func(t *testing.T) {
		req := jsonRequest("DELETE", "/v1/account/sessions/current", "")
		req.AddCookie(&http.Cookie{Name: "a_session_p1", Value: sessionCookie})
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "user_session_not_found", decodeError(t, resp))
	})

	t.Run("tampered cookie rejected", func(t *testing.T) {
		req := jsonRequest("GET", "/v1/account", "")
		req.AddCookie(&http.Cookie{Name: "a_session_p1", Value: sessionCookie + "x"})
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 401, resp.StatusCode)
	})
}
