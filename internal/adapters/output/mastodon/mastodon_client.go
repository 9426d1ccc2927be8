package mastodon

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"repost-bridge/configs"
	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"

	gomastodon "github.com/mattn/go-mastodon"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Compile-time check to ensure MastodonClientAdapter implements SocialClient interface
var _ output.SocialClient = (*MastodonClientAdapter)(nil)

const (
	defaultClientName  = "repost-bridge"
	defaultHTTPTimeout = 60 * time.Second
)

// MastodonClientAdapter struct - Output adapter for Mastodon instances.
// Every instance is addressed by host; nothing is cached between calls.
type MastodonClientAdapter struct {
	httpClient *http.Client
	clientName string
	website    string
	scheme     string
}

// NewMastodonClientAdapter func - Creates new Mastodon client adapter
func NewMastodonClientAdapter(config configs.Mastodon) (*MastodonClientAdapter, error) {
	clientName := config.ClientName
	if clientName == "" {
		clientName = defaultClientName
	}

	timeout := time.Duration(config.HTTPTimeout) * time.Second
	if config.HTTPTimeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	logrus.Infof("Mastodon client adapter initialized with client name: %s, timeout: %v", clientName, timeout)

	return &MastodonClientAdapter{
		httpClient: httpClient,
		clientName: clientName,
		website:    config.Website,
		scheme:     "https",
	}, nil
}

func (a *MastodonClientAdapter) baseURL(instanceHost string) string {
	return fmt.Sprintf("%s://%s", a.scheme, instanceHost)
}

// RegisterApp - Registers a new app on the instance for a single login attempt
func (a *MastodonClientAdapter) RegisterApp(ctx context.Context, request domain.AppRegistrationRequest) (*domain.AppRegistration, error) {
	server := a.baseURL(request.InstanceHost)
	scopes := strings.Join(request.Scopes, " ")

	app, err := gomastodon.RegisterApp(ctx, &gomastodon.AppConfig{
		Client:       *a.httpClient,
		Server:       server,
		ClientName:   a.clientName,
		RedirectURIs: request.RedirectURI,
		Scopes:       scopes,
		Website:      a.website,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register app on %s: %w", request.InstanceHost, err)
	}

	authorizeURL := app.AuthURI
	if authorizeURL == "" {
		authorizeURL = fmt.Sprintf("%s/oauth/authorize?%s", server, url.Values{
			"client_id":     {app.ClientID},
			"redirect_uri":  {request.RedirectURI},
			"response_type": {"code"},
			"scope":         {scopes},
		}.Encode())
	}

	logrus.Infof("Registered app on %s with client id %s", request.InstanceHost, app.ClientID)

	return &domain.AppRegistration{
		InstanceHost: request.InstanceHost,
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		RedirectURI:  request.RedirectURI,
		Scopes:       request.Scopes,
		AuthorizeURL: authorizeURL,
	}, nil
}

// ExchangeCode - Exchanges an authorization code for an access token
func (a *MastodonClientAdapter) ExchangeCode(ctx context.Context, app domain.AppRegistration, code string) (string, error) {
	server := a.baseURL(app.InstanceHost)
	oauthConfig := &oauth2.Config{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		RedirectURL:  app.RedirectURI,
		Scopes:       app.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   server + "/oauth/authorize",
			TokenURL:  server + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code on %s: %w", app.InstanceHost, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("empty access token from %s", app.InstanceHost)
	}

	return token.AccessToken, nil
}

// MediaClient - Returns a client acting as the user of record
func (a *MastodonClientAdapter) MediaClient(record domain.UserRecord) output.MediaClient {
	server := a.baseURL(record.InstanceHost)
	client := gomastodon.NewClient(&gomastodon.Config{
		Server:      server,
		AccessToken: record.AccessToken,
	})
	client.Client = *a.httpClient

	return &mediaClient{
		client:       client,
		server:       server,
		instanceHost: record.InstanceHost,
	}
}

// mediaClient - Mastodon client bound to one access token
type mediaClient struct {
	client       *gomastodon.Client
	server       string
	instanceHost string
}

// UploadMedia - Uploads the file at path as a media attachment
func (c *mediaClient) UploadMedia(ctx context.Context, path string) (string, error) {
	attachment, err := c.client.UploadMedia(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to upload media to %s: %w", c.instanceHost, err)
	}
	return string(attachment.ID), nil
}

// MediaReady - Queries the processing state of an uploaded media.
// Mastodon answers 206 while the media is still being processed.
func (c *mediaClient) MediaReady(ctx context.Context, mediaID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v1/media/%s", c.server, url.PathEscape(mediaID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create media request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.client.Config.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to query media %s: %w", mediaID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusPartialContent:
		return false, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("unexpected status %d for media %s: %s", resp.StatusCode, mediaID, string(body))
	}
}

// PostStatus - Creates a status and returns its public URL
func (c *mediaClient) PostStatus(ctx context.Context, text string, mediaIDs []string) (string, error) {
	ids := make([]gomastodon.ID, 0, len(mediaIDs))
	for _, id := range mediaIDs {
		ids = append(ids, gomastodon.ID(id))
	}

	status, err := c.client.PostStatus(ctx, &gomastodon.Toot{
		Status:   text,
		MediaIDs: ids,
	})
	if err != nil {
		return "", fmt.Errorf("failed to post status to %s: %w", c.instanceHost, err)
	}

	if status.URL != "" {
		return status.URL, nil
	}
	return status.URI, nil
}
