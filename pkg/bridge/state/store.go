package state

// Store issues and redeems the one-time anti-forgery tokens carried in the
// OAuth state parameter. Tokens are single-use: once Consume returns true
// for a value, every later call with the same value returns false.
type Store interface {
	// Issue generates a cryptographically random token and records it with
	// the current time.
	Issue() (string, error)

	// Peek reports whether token exists and is still within its TTL,
	// without redeeming it.
	Peek(token string) bool

	// Consume atomically removes token and reports whether it existed and
	// was still within its TTL. Expired entries are treated as absent.
	Consume(token string) bool

	// Sweep deletes expired entries. Redemption enforces the TTL on its
	// own; this is garbage collection only.
	Sweep()

	// Close releases any background resources held by the store.
	Close() error
}
