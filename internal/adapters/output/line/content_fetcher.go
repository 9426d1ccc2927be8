package line

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure ContentFetcher implements AttachmentFetcher interface
var _ output.AttachmentFetcher = (*ContentFetcher)(nil)

// ContentFetcher struct - Downloads attachments sent to the bot.
// LINE keeps image content behind the authenticated data API, so those URLs
// go through the blob client; any other URL is handed to the fallback fetcher.
type ContentFetcher struct {
	getContent func(ctx context.Context, messageID string) (*http.Response, error)
	fallback   output.AttachmentFetcher
}

// NewContentFetcher func - Creates new LINE content fetcher
func NewContentFetcher(channelToken string, fallback output.AttachmentFetcher) (*ContentFetcher, error) {
	blob, err := messaging_api.NewMessagingApiBlobAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE blob API client: %w", err)
	}

	return &ContentFetcher{
		getContent: func(ctx context.Context, messageID string) (*http.Response, error) {
			return blob.WithContext(ctx).GetMessageContent(messageID)
		},
		fallback: fallback,
	}, nil
}

// Fetch - Opens a streamed download of url. The caller closes the body.
func (f *ContentFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	messageID, ok := domain.LineContentMessageID(url)
	if !ok {
		if f.fallback == nil {
			return nil, fmt.Errorf("no fetcher for %s", url)
		}
		return f.fallback.Fetch(ctx, url)
	}

	resp, err := f.getContent(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get content of message %s: %w", messageID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for content of message %s", resp.StatusCode, messageID)
	}

	logrus.Debugf("Fetching content of LINE message %s", messageID)

	return resp.Body, nil
}
