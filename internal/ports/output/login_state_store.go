package output

import "repost-bridge/internal/domain"

// LoginStateStore interface - Output port
// Correlates OAuth callbacks with the chat-side login that issued them.
// The chat gateway inserts and the HTTP callback takes, from independent
// goroutines, so implementations must be thread-safe.
type LoginStateStore interface {
	// Insert stores the session under a freshly generated state token and
	// returns the token. When the store is full the oldest inserted session
	// is evicted first. Tokens are random; collisions with live tokens are
	// improbable and not checked.
	Insert(session domain.LoginSession) string

	// Take atomically looks up and removes the session for token.
	// Returns false if the token was never issued, already taken or evicted.
	Take(token string) (domain.LoginSession, bool)

	// Len returns the number of sessions waiting for their callback.
	Len() int
}
