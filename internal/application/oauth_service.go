package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"
	"repost-bridge/pkg/validator"

	"github.com/sirupsen/logrus"
)

// OAuthService struct - Application service implementing the login handshake
type OAuthService struct {
	social      output.SocialClient
	states      output.LoginStateStore
	records     output.UserRecordStore
	validator   validator.Validator
	redirectURI string
}

// NewOAuthService func - Creates new OAuth service.
// redirectURI is fixed for the lifetime of the process.
func NewOAuthService(
	social output.SocialClient,
	states output.LoginStateStore,
	records output.UserRecordStore,
	redirectURI string,
) *OAuthService {
	return &OAuthService{
		social:      social,
		states:      states,
		records:     records,
		validator:   validator.New(),
		redirectURI: redirectURI,
	}
}

// instanceHostRules accepts a DNS name with an optional port, e.g. example.org:8443
const instanceHostRules = "required,hostname_rfc1123|hostname_port"

// NormalizeInstanceHost trims what users commonly paste around an instance name
func NormalizeInstanceHost(instanceHost string) string {
	host := strings.ToLower(strings.TrimSpace(instanceHost))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimSuffix(host, "/")
}

// Login func - Use case: Register an app on the instance and hand out an authorize URL
func (s *OAuthService) Login(ctx context.Context, chatUserID, instanceHost string) (string, error) {
	host := NormalizeInstanceHost(instanceHost)
	if err := s.validator.ValidateVar(host, instanceHostRules); err != nil {
		return "", fmt.Errorf("%w: invalid instance %q: %w", domain.ErrRegistration, instanceHost, err)
	}
	// hostname_port accepts a bare ":port"
	if strings.HasPrefix(host, ":") {
		return "", fmt.Errorf("%w: invalid instance %q: missing host", domain.ErrRegistration, instanceHost)
	}

	app, err := s.social.RegisterApp(ctx, domain.AppRegistrationRequest{
		InstanceHost: host,
		RedirectURI:  s.redirectURI,
		Scopes:       []string{domain.MastodonWriteScope},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRegistration, err)
	}

	authorizeURL, err := url.Parse(app.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid authorize URL: %w", domain.ErrRegistration, err)
	}

	token := s.states.Insert(domain.LoginSession{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		InstanceHost: host,
		ChatUserID:   chatUserID,
	})

	query := authorizeURL.Query()
	query.Set("state", token)
	authorizeURL.RawQuery = query.Encode()

	logrus.Infof("Login started: chatUserID=%s, instance=%s, pending=%d", chatUserID, host, s.states.Len())

	return authorizeURL.String(), nil
}

// Complete func - Use case: Finish the handshake from the redirect callback
func (s *OAuthService) Complete(ctx context.Context, code, state string) error {
	session, ok := s.states.Take(state)
	if !ok {
		return domain.ErrUnknownState
	}

	accessToken, err := s.social.ExchangeCode(ctx, session.RegisteredApp(s.redirectURI), code)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExchange, err)
	}

	record := domain.UserRecord{
		AccessToken:  accessToken,
		InstanceHost: session.InstanceHost,
	}
	if err := s.records.PutUserRecord(ctx, session.ChatUserID, record); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	logrus.Infof("Login completed: chatUserID=%s, instance=%s", session.ChatUserID, session.InstanceHost)

	return nil
}
