package output

import (
	"context"
	"io"
)

// AttachmentFetcher interface - Output port
// Opens a streamed download of a chat attachment.
type AttachmentFetcher interface {
	// Fetch opens the attachment at url. The caller must close the returned reader.
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}
