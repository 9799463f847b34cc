package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New(10*time.Minute, time.Hour)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestConsumeSingleUse(t *testing.T) {
	r := newTestRegistry(t)

	token, err := r.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.True(t, r.Consume(token))
	assert.False(t, r.Consume(token), "second redemption must fail")
}

func TestConsumeUnknownToken(t *testing.T) {
	r := newTestRegistry(t)
	assert.False(t, r.Consume("never-issued"))
}

func TestConsumeExpiredWithoutSweep(t *testing.T) {
	r := newTestRegistry(t)

	base := time.Now()
	r.now = func() time.Time { return base }

	token, err := r.Issue()
	require.NoError(t, err)

	// Advance past the TTL without running Sweep; redemption must still
	// treat the entry as absent.
	r.now = func() time.Time { return base.Add(10*time.Minute + time.Second) }
	assert.False(t, r.Consume(token))
}

func TestConsumeAtTTLBoundary(t *testing.T) {
	r := newTestRegistry(t)

	base := time.Now()
	r.now = func() time.Time { return base }

	token, err := r.Issue()
	require.NoError(t, err)

	r.now = func() time.Time { return base.Add(10 * time.Minute) }
	assert.True(t, r.Consume(token), "a token aged exactly TTL is still valid")
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := newTestRegistry(t)

	token, err := r.Issue()
	require.NoError(t, err)

	assert.True(t, r.Peek(token))
	assert.True(t, r.Peek(token))
	assert.True(t, r.Consume(token))
	assert.False(t, r.Peek(token))
}

func TestPeekExpired(t *testing.T) {
	r := newTestRegistry(t)

	base := time.Now()
	r.now = func() time.Time { return base }

	token, err := r.Issue()
	require.NoError(t, err)

	r.now = func() time.Time { return base.Add(11 * time.Minute) }
	assert.False(t, r.Peek(token))
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	r := newTestRegistry(t)

	base := time.Now()
	r.now = func() time.Time { return base }
	stale, err := r.Issue()
	require.NoError(t, err)

	r.now = func() time.Time { return base.Add(9 * time.Minute) }
	fresh, err := r.Issue()
	require.NoError(t, err)

	r.now = func() time.Time { return base.Add(12 * time.Minute) }
	r.Sweep()

	r.mu.Lock()
	_, staleKept := r.tokens[stale]
	_, freshKept := r.tokens[fresh]
	r.mu.Unlock()

	assert.False(t, staleKept)
	assert.True(t, freshKept)
}

func TestIssueTokensAreUnique(t *testing.T) {
	r := newTestRegistry(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := r.Issue()
		require.NoError(t, err)
		require.False(t, seen[token], "duplicate token issued")
		seen[token] = true
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	r := New(10*time.Minute, time.Hour)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}
