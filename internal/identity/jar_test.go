package identity

import (
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	assert.NoError(t, err)
	return u
}

func TestFileJarRoundTrip(t *testing.T) {
	u := mustURL(t, "http://backend.local/v1/account")
	jar, err := NewFileJar("")
	assert.NoError(t, err)

	jar.SetCookies(u, []*http.Cookie{{Name: "a_session_p", Value: "tok"}})

	got := jar.Cookies(u)
	assert.Len(t, got, 1)
	assert.Equal(t, "tok", got[0].Value)

	// Replaced by name, not appended
	jar.SetCookies(u, []*http.Cookie{{Name: "a_session_p", Value: "tok2"}})
	got = jar.Cookies(u)
	assert.Len(t, got, 1)
	assert.Equal(t, "tok2", got[0].Value)
}

func TestFileJarDeletion(t *testing.T) {
	u := mustURL(t, "http://backend.local/v1/account")
	jar, _ := NewFileJar("")

	jar.SetCookies(u, []*http.Cookie{{Name: "a_session_p", Value: "tok"}})
	jar.SetCookies(u, []*http.Cookie{{Name: "a_session_p", Value: "", Expires: time.Now().Add(-time.Hour)}})

	assert.Empty(t, jar.Cookies(u))
}

func TestFileJarSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jar.json")
	u := mustURL(t, "http://backend.local/v1/account")

	jar, err := NewFileJar(path)
	assert.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "a_session_p", Value: "tok", Expires: time.Now().Add(time.Hour)}})

	// A fresh jar from the same file sees the session cookie
	reloaded, err := NewFileJar(path)
	assert.NoError(t, err)
	got := reloaded.Cookies(u)
	assert.Len(t, got, 1)
	assert.Equal(t, "tok", got[0].Value)
}

func TestFileJarIsolatesHosts(t *testing.T) {
	jar, _ := NewFileJar("")
	jar.SetCookies(mustURL(t, "http://one.local/"), []*http.Cookie{{Name: "c", Value: "v"}})

	assert.Empty(t, jar.Cookies(mustURL(t, "http://two.local/")))
}
