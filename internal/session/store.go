// Package session implements the short-lived carry store that bridges the
// login redirect and the provider callback. Values live server-side and are
// bound to the browser through a random HttpOnly cookie, so page scripts
// never see them. Reads are destructive: once a value is taken it is gone,
// which closes the replay window for captured callback URLs.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/brizzai/auth-gateway/internal/secrets"
)

// CookieName is the browser-binding cookie issued on the first Put.
const CookieName = "auth_gateway_session"

// cookieIDLength is the entropy behind the binding cookie value.
const cookieIDLength = 16

// janitorInterval is how often expired entries are swept out.
const janitorInterval = time.Minute

type entry struct {
	value     string
	expiresAt time.Time
}

// Store is an in-memory carry store. Entries are keyed by the binding cookie
// plus a caller-supplied key and expire after their TTL.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	secure bool
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore creates a Store and starts its expiry janitor. When secure is
// true the binding cookie is restricted to secure channels.
func NewStore(secure bool) *Store {
	s := &Store{
		entries: make(map[string]entry),
		secure:  secure,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Put stores value under key for the browser behind r, issuing the binding
// cookie if the browser does not carry one yet. The value expires after ttl.
func (s *Store) Put(w http.ResponseWriter, r *http.Request, key, value string, ttl time.Duration) error {
	id, err := s.bind(w, r, ttl)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id+"\x00"+key] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// TakeOnce returns the value stored under key for the browser behind r and
// removes it. A second call for the same key reports not-found even inside
// the TTL, as does an expired or never-stored entry.
func (s *Store) TakeOnce(r *http.Request, key string) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := c.Value + "\x00" + key
	e, ok := s.entries[k]
	if !ok {
		return "", false
	}
	delete(s.entries, k)
	if s.now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Clear removes the listed keys for the browser behind r and expires the
// binding cookie on the response. TakeOnce already consumes entries during
// the callback; this is the explicit clearing for the final response.
func (s *Store) Clear(w http.ResponseWriter, r *http.Request, keys ...string) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		s.mu.Lock()
		for _, key := range keys {
			delete(s.entries, c.Value+"\x00"+key)
		}
		s.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Close stops the expiry janitor.
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// bind returns the binding cookie value for r, minting and setting a fresh
// one when the request carries none. The new cookie is also attached to r so
// later Puts within the same request land under the same binding.
func (s *Store) bind(w http.ResponseWriter, r *http.Request, ttl time.Duration) (string, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	id, err := secrets.RandomToken(cookieIDLength)
	if err != nil {
		return "", err
	}

	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
	r.AddCookie(cookie)
	return id, nil
}

func (s *Store) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			for k, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, k)
				}
			}
			s.mu.Unlock()
		}
	}
}
