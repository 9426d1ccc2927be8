package application

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"time"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Default repost configuration values
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxPolls     = 120
)

// RepostConfig struct - Tuning for the attachment fan-out
type RepostConfig struct {
	MaxConcurrentUploads int           // 0 runs one goroutine per attachment
	PollInterval         time.Duration // Delay between processing polls
	MaxPolls             int           // Polls before a media is given up on
	TempDir              string        // Empty means os.TempDir
}

// RepostService struct - Application service implementing the repost pipeline
type RepostService struct {
	social  output.SocialClient
	records output.UserRecordStore
	fetcher output.AttachmentFetcher
	config  RepostConfig
}

// NewRepostService func - Creates new repost service
func NewRepostService(
	social output.SocialClient,
	records output.UserRecordStore,
	fetcher output.AttachmentFetcher,
	config RepostConfig,
) *RepostService {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.MaxPolls <= 0 {
		config.MaxPolls = DefaultMaxPolls
	}
	if config.MaxConcurrentUploads < 0 {
		config.MaxConcurrentUploads = 0
	}

	return &RepostService{
		social:  social,
		records: records,
		fetcher: fetcher,
		config:  config,
	}
}

// Run func - Use case: Republish a chat message as a status on the user's instance
func (s *RepostService) Run(ctx context.Context, request domain.RepostRequest) (string, error) {
	runLog := logrus.WithFields(logrus.Fields{
		"run_id":       uuid.NewString(),
		"chat_user_id": request.ChatUserID,
	})

	record, err := s.records.GetUserRecord(ctx, request.ChatUserID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if record == nil {
		return "", domain.ErrNotLoggedIn
	}

	// Bound to this run only
	client := s.social.MediaClient(*record)

	mediaIDs := make([]string, 0, len(request.AttachmentURLs))
	if len(request.AttachmentURLs) > 0 {
		runLog.Infof("Uploading %d attachments to %s", len(request.AttachmentURLs), record.InstanceHost)

		outcomes, err := s.uploadAll(ctx, client, request.AttachmentURLs, runLog)
		if err != nil {
			runLog.Warnf("Repost aborted, no status posted: %v", err)
			return "", err
		}

		for _, outcome := range outcomes {
			mediaIDs = append(mediaIDs, outcome.MediaID)
		}
	}

	postURL, err := client.PostStatus(ctx, request.MessageText, mediaIDs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPostCreation, err)
	}

	runLog.Infof("Reposted with %d media: %s", len(mediaIDs), postURL)

	return postURL, nil
}

// uploadAll runs one unit per attachment and joins them all.
// Units that are already running are not cancelled when another one fails;
// the first error is returned once every unit has finished.
func (s *RepostService) uploadAll(
	ctx context.Context,
	client output.MediaClient,
	attachmentURLs []string,
	runLog *logrus.Entry,
) ([]domain.AttachmentOutcome, error) {
	outcomes := make([]domain.AttachmentOutcome, len(attachmentURLs))

	var group errgroup.Group
	if s.config.MaxConcurrentUploads > 0 {
		group.SetLimit(s.config.MaxConcurrentUploads)
	}

	for i, attachmentURL := range attachmentURLs {
		group.Go(func() error {
			mediaID, err := s.uploadAttachment(ctx, client, attachmentURL)
			outcomes[i] = domain.AttachmentOutcome{
				Index:   i,
				URL:     attachmentURL,
				MediaID: mediaID,
				Err:     err,
			}
			if err != nil {
				runLog.Warnf("Attachment %d failed: %v", i, err)
				return err
			}

			runLog.Debugf("Attachment %d uploaded as media %s", i, mediaID)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

// uploadAttachment downloads one attachment into a temp file, uploads it and
// waits for the instance to finish processing it. The temp file is removed
// on every return path.
func (s *RepostService) uploadAttachment(ctx context.Context, client output.MediaClient, attachmentURL string) (string, error) {
	body, err := s.fetcher.Fetch(ctx, attachmentURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAttachmentFetch, err)
	}
	defer body.Close()

	file, err := os.CreateTemp(s.config.TempDir, "attachment-*"+attachmentExt(attachmentURL))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAttachmentFetch, err)
	}
	defer func() {
		file.Close()
		if err := os.Remove(file.Name()); err != nil && !os.IsNotExist(err) {
			logrus.Warnf("Failed to remove temp file %s: %v", file.Name(), err)
		}
	}()

	if _, err := io.Copy(file, body); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAttachmentFetch, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAttachmentFetch, err)
	}

	mediaID, err := client.UploadMedia(ctx, file.Name())
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMediaUpload, err)
	}

	if err := s.waitForProcessing(ctx, client, mediaID); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrProcessing, err)
	}

	return mediaID, nil
}

// waitForProcessing polls until the media is ready or MaxPolls is reached
func (s *RepostService) waitForProcessing(ctx context.Context, client output.MediaClient, mediaID string) error {
	for poll := 1; poll <= s.config.MaxPolls; poll++ {
		ready, err := client.MediaReady(ctx, mediaID)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}

		if poll == s.config.MaxPolls {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.config.PollInterval):
		}
	}

	return fmt.Errorf("media %s still processing after %d polls", mediaID, s.config.MaxPolls)
}

// attachmentExt keeps the file extension of the attachment URL so the
// instance can tell the media type from the upload's file name
func attachmentExt(attachmentURL string) string {
	parsed, err := url.Parse(attachmentURL)
	if err != nil {
		return ""
	}

	ext := path.Ext(parsed.Path)
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}

	return ext
}
