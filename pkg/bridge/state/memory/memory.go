package memory

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// tokenLength is the number of random bytes per state token. 32 bytes gives
// 256 bits of entropy, far beyond what brute-forcing a 10 minute window allows.
const tokenLength = 32

// Registry is an in-memory one-time token table. It owns its map and lock
// and is safe for concurrent use. Entries are lost on restart.
type Registry struct {
	mu     sync.Mutex
	tokens map[string]time.Time

	ttl time.Duration
	now func() time.Time

	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

// New returns a Registry whose entries expire after ttl, with a background
// sweep every sweepEvery. Close stops the sweep goroutine.
func New(ttl, sweepEvery time.Duration) *Registry {
	r := &Registry{
		tokens: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
		ticker: time.NewTicker(sweepEvery),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Registry) run() {
	for {
		select {
		case <-r.ticker.C:
			r.Sweep()
		case <-r.done:
			return
		}
	}
}

func (r *Registry) Issue() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = r.now()
	return token, nil
}

func (r *Registry) Peek(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	created, ok := r.tokens[token]
	return ok && r.now().Sub(created) <= r.ttl
}

func (r *Registry) Consume(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	created, ok := r.tokens[token]
	if !ok {
		return false
	}
	delete(r.tokens, token)
	return r.now().Sub(created) <= r.ttl
}

func (r *Registry) Sweep() {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, created := range r.tokens {
		if now.Sub(created) > r.ttl {
			delete(r.tokens, token)
		}
	}
}

func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		r.ticker.Stop()
		close(r.done)
	})
	return nil
}
