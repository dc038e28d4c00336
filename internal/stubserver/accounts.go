package stubserver

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

var (
	errAccountExists      = errors.New("account already exists")
	errInvalidCredentials = errors.New("invalid credentials")
)

type account struct {
	Id        string
	Email     string
	Name      string
	hash      []byte
	CreatedAt time.Time
}

// accountRegistry keeps stub accounts in memory. The stub exists for local
// development and tests, so nothing here survives a process restart.
type accountRegistry struct {
	mu       sync.Mutex
	byEmail  map[string]*account
	sessions *cache.Cache
}

func newAccountRegistry(sessionTTL time.Duration) *accountRegistry {
	return &accountRegistry{
		byEmail:  make(map[string]*account),
		sessions: cache.New(sessionTTL, 10*time.Minute),
	}
}

func (r *accountRegistry) Create(email, password, name string) (*account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, errAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	acc := &account{
		Id:        uuid.New().String(),
		Email:     email,
		Name:      name,
		hash:      hash,
		CreatedAt: time.Now(),
	}
	r.byEmail[email] = acc
	return acc, nil
}

func (r *accountRegistry) Authenticate(email, password string) (*account, error) {
	r.mu.Lock()
	acc, exists := r.byEmail[email]
	r.mu.Unlock()

	// Same failure for unknown email and wrong password, so callers cannot
	// probe which one it was.
	if !exists {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return acc, nil
}

func (r *accountRegistry) FindById(id string) (*account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.byEmail {
		if acc.Id == id {
			return acc, true
		}
	}
	return nil, false
}

// OpenSession mints a session id for the account, tracked with a TTL.
func (r *accountRegistry) OpenSession(accountId string) string {
	sessionId := uuid.New().String()
	r.sessions.Set(sessionId, accountId, cache.DefaultExpiration)
	return sessionId
}

// ResolveSession returns the account behind a live session id.
func (r *accountRegistry) ResolveSession(sessionId string) (*account, bool) {
	v, found := r.sessions.Get(sessionId)
	if !found {
		return nil, false
	}
	return r.FindById(v.(string))
}

func (r *accountRegistry) CloseSession(sessionId string) bool {
	if _, found := r.sessions.Get(sessionId); !found {
		return false
	}
	r.sessions.Delete(sessionId)
	return true
}
