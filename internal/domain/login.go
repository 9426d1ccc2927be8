package domain

// MastodonWriteScope is the full write scope requested on every app registration
const MastodonWriteScope = "write"

// LoginSession represents an OAuth handshake waiting for its callback
type LoginSession struct {
	StateToken   string // Correlation token round-tripped through the authorize redirect
	ClientID     string // Client ID of the per-login app registration
	ClientSecret string // Client secret of the per-login app registration
	InstanceHost string // Mastodon instance host, e.g. mastodon.social
	ChatUserID   string // Namespaced chat user identifier, e.g. discord:1234
}

// AppRegistrationRequest describes an app registration against a Mastodon instance.
// The registration is a pure function of these fields.
type AppRegistrationRequest struct {
	InstanceHost string
	RedirectURI  string
	Scopes       []string
}

// AppRegistration is a registered app handle on a Mastodon instance
type AppRegistration struct {
	InstanceHost string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	AuthorizeURL string // Empty when the handle was rebuilt from a LoginSession
}

// RegisteredApp rebuilds the registered app handle stored in the session
func (s LoginSession) RegisteredApp(redirectURI string) AppRegistration {
	return AppRegistration{
		InstanceHost: s.InstanceHost,
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURI:  redirectURI,
		Scopes:       []string{MastodonWriteScope},
	}
}
