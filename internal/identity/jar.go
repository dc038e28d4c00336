package identity

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"
)

// FileJar is a cookie jar that mirrors itself to a JSON file, so the session
// cookie the backend sets survives process restarts. An empty path keeps the
// jar memory-only (tests, throwaway sessions).
type FileJar struct {
	mu      sync.Mutex
	path    string
	cookies map[string][]*http.Cookie // keyed by host
}

func NewFileJar(path string) (*FileJar, error) {
	jar := &FileJar{
		path:    path,
		cookies: make(map[string][]*http.Cookie),
	}
	if path == "" {
		return jar, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return jar, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &jar.cookies); err != nil {
		// Corrupt jar file: start over rather than refuse to boot.
		jar.cookies = make(map[string][]*http.Cookie)
	}
	return jar, nil
}

func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	existing := j.cookies[u.Host]
	for _, c := range cookies {
		filtered := existing[:0]
		for _, old := range existing {
			if old.Name != c.Name {
				filtered = append(filtered, old)
			}
		}
		existing = filtered
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			continue // deletion
		}
		existing = append(existing, c)
	}
	j.cookies[u.Host] = existing

	j.persist()
}

func (j *FileJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	var valid []*http.Cookie
	for _, c := range j.cookies[u.Host] {
		if !c.Expires.IsZero() && c.Expires.Before(time.Now()) {
			continue
		}
		valid = append(valid, c)
	}
	return valid
}

// persist is best-effort: a failed write means the session will not survive a
// restart, which is the same outcome as an expired cookie.
func (j *FileJar) persist() {
	if j.path == "" {
		return
	}
	data, err := json.MarshalIndent(j.cookies, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(j.path, data, 0600)
}
