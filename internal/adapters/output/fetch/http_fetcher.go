package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"repost-bridge/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure HTTPFetcher implements AttachmentFetcher interface
var _ output.AttachmentFetcher = (*HTTPFetcher)(nil)

const defaultTimeout = 60 * time.Second

// HTTPFetcher struct - Output adapter downloading attachments over plain HTTP(S).
// A failed download is terminal; the caller decides what to do with it.
type HTTPFetcher struct {
	httpClient *http.Client
}

// NewHTTPFetcher func - Creates new attachment fetcher. timeout is in seconds.
func NewHTTPFetcher(timeout int) *HTTPFetcher {
	clientTimeout := time.Duration(timeout) * time.Second
	if timeout <= 0 {
		clientTimeout = defaultTimeout
	}

	httpClient := &http.Client{
		Timeout: clientTimeout,
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

	logrus.Infof("Attachment fetcher initialized with timeout: %v", clientTimeout)

	return &HTTPFetcher{
		httpClient: httpClient,
	}
}

// Fetch - Opens a streamed download of url. The caller closes the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download %s: status %d - %s", url, resp.StatusCode, string(body))
	}

	return resp.Body, nil
}
