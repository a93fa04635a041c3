package core

// cache.go holds validated dry-run sessions between the preview and
// the commit request. The cache is an explicit service object passed
// by handle to the web layer, so tests get isolated instances and no
// state leaks across them.

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an uncommitted dry run stays
// committable.
const DefaultSessionTTL = time.Hour

// DryRunCache stores validated sessions under single-use tokens.
// Safe for concurrent use; a double-commit race on one token resolves
// so exactly one caller wins.
type DryRunCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

// NewDryRunCache creates a cache with the given TTL. A zero or
// negative TTL falls back to DefaultSessionTTL.
func NewDryRunCache(ttl time.Duration) *DryRunCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &DryRunCache{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Put stores a session under a fresh token and returns the token.
// Expired entries are swept on every call; there is no background
// timer.
func (c *DryRunCache) Put(sess *Session) string {
	token := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now)

	sess.Token = token
	sess.CreatedAt = now
	c.sessions[token] = sess

	return token
}

// Get returns the live session for a token without consuming it.
func (c *DryRunCache) Get(token string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[token]
	if !ok || c.expired(sess) {
		delete(c.sessions, token)
		return nil, fmt.Errorf("%w: %q", ErrTokenNotFound, token)
	}
	return sess, nil
}

// Consume atomically checks and deletes a session, enforcing
// single-use tokens. The second of two racing callers observes
// ErrTokenNotFound.
func (c *DryRunCache) Consume(token string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[token]
	if !ok || c.expired(sess) {
		delete(c.sessions, token)
		return nil, fmt.Errorf("%w: %q", ErrTokenNotFound, token)
	}
	delete(c.sessions, token)
	return sess, nil
}

// Len returns the number of live sessions. Primarily for tests.
func (c *DryRunCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(c.now())
	return len(c.sessions)
}

func (c *DryRunCache) expired(sess *Session) bool {
	return c.now().Sub(sess.CreatedAt) > c.ttl
}

func (c *DryRunCache) sweepLocked(now time.Time) {
	for token, sess := range c.sessions {
		if now.Sub(sess.CreatedAt) > c.ttl {
			delete(c.sessions, token)
		}
	}
}
