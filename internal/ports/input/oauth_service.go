package input

import "context"

// OAuthService interface - Input port (use case)
// Links a chat user to a Mastodon account with the two-step OAuth handshake
type OAuthService interface {
	// Login registers an app on the instance and returns the authorize URL
	// the chat user has to open. The URL carries the state token.
	Login(ctx context.Context, chatUserID, instanceHost string) (string, error)

	// Complete finishes the handshake started by Login from the redirect callback
	Complete(ctx context.Context, code, state string) error
}
