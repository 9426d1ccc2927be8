package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/input"
	"repost-bridge/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Reply texts for the LINE gateway
const (
	lineHelpText = "Available commands:\n" +
		"/login <instance> - Log into your Mastodon account\n" +
		"/logout - Log out from your Mastodon account\n" +
		"/repost - Post your draft to Mastodon\n" +
		"/clear - Discard your draft\n" +
		"/help - Show this message\n\n" +
		"Send text and images to build the draft you want to repost."
	lineWelcomeText      = "Welcome! Send me text and images, then use /repost to post them on your Mastodon account.\n\nType /login <instance> to get started."
	lineLoginUsageText   = "Usage: /login <instance>, e.g. /login mastodon.social"
	lineEmptyDraftText   = "Nothing to repost yet. Send some text or images first."
	lineRepostingText    = "Reposting your draft, I'll message you when it's done."
	lineDraftClearedText = "Draft cleared."
	lineTextSavedText    = "Saved as the text of your next /repost."
	lineDraftFailureText = "Sorry, I couldn't update your draft. Please try again."
)

// LineWebhookService struct - Application service implementing LINE webhook use cases.
// LINE has no message-context commands, so each user builds a draft that /repost submits.
type LineWebhookService struct {
	lineClient     output.LineClient
	commands       input.ChatCommandService
	draftStore output.DraftStore

	// Reposts outlive the webhook request
	reposts sync.WaitGroup
}

// NewLineWebhookService func - Creates new LINE webhook service.
// Draft timeout and maxAttachments are settings of the draft store.
func NewLineWebhookService(
	lineClient output.LineClient,
	commands input.ChatCommandService,
	draftStore output.DraftStore,
) *LineWebhookService {
	return &LineWebhookService{
		lineClient: lineClient,
		commands:   commands,
		draftStore: draftStore,
	}
}

// HandleWebhook func - Use case: Handle incoming webhook events from LINE
func (s *LineWebhookService) HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error {
	// Process each event
	for _, event := range request.Events {
		logrus.Infof("Received LINE event: type=%s, source=%s, userID=%s",
			event.Type, event.Source.Type, event.Source.UserID)

		if event.Source.UserID == "" {
			logrus.Infof("Ignoring event without user: type=%s", event.Type)
			continue
		}

		switch event.Type {
		case domain.LineEventTypeMessage:
			if err := s.handleMessageEvent(ctx, event); err != nil {
				logrus.Errorf("Failed to handle message event: %v", err)
				return err
			}

		case domain.LineEventTypeFollow:
			if err := s.handleFollowEvent(event); err != nil {
				logrus.Errorf("Failed to handle follow event: %v", err)
				return err
			}

		case domain.LineEventTypeUnfollow:
			if err := s.handleUnfollowEvent(event); err != nil {
				logrus.Errorf("Failed to handle unfollow event: %v", err)
				return err
			}

		default:
			logrus.Infof("Unhandled event type: %s", event.Type)
		}
	}

	return nil
}

// Wait blocks until every repost started by /repost has delivered its result
func (s *LineWebhookService) Wait() {
	s.reposts.Wait()
}

// handleMessageEvent - Business logic for message events
func (s *LineWebhookService) handleMessageEvent(ctx context.Context, event domain.LineWebhookEvent) error {
	if event.Message == nil {
		return nil
	}

	userID := event.Source.UserID
	var replyText string

	switch event.Message.Type {
	case domain.LineMessageTypeText:
		text := strings.TrimSpace(event.Message.Text)
		if strings.HasPrefix(text, "/") {
			replyText = s.handleCommand(ctx, text, userID)
		} else {
			replyText = lineTextSavedText
			if _, err := s.updateDraft(userID, func(draft *domain.RepostDraft) {
				draft.SetText(text)
			}); err != nil {
				replyText = lineDraftFailureText
			}
		}

	case domain.LineMessageTypeImage:
		if event.Message.ContentURL == "" {
			logrus.Warnf("Image message %s has no content URL", event.Message.ID)
			return nil
		}
		draft, err := s.updateDraft(userID, func(draft *domain.RepostDraft) {
			draft.AddAttachment(event.Message.ContentURL)
		})
		if err != nil {
			replyText = lineDraftFailureText
		} else {
			replyText = fmt.Sprintf("Saved image %d of %d for your next /repost.", len(draft.AttachmentURLs), draft.MaxAttachments())
		}

	default:
		logrus.Infof("Ignoring unsupported message: type=%s", event.Message.Type)
		return nil
	}

	return s.reply(event.ReplyToken, replyText)
}

// handleCommand - Business logic for command processing
func (s *LineWebhookService) handleCommand(ctx context.Context, text, userID string) string {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return ""
	}

	chatUserID := domain.ChatUserID(domain.ChatPlatformLine, userID)
	command := strings.ToLower(parts[0])

	switch command {
	case "/help":
		return lineHelpText

	case "/login":
		if len(parts) != 2 {
			return lineLoginUsageText
		}
		return s.commands.Login(ctx, chatUserID, parts[1]).Text

	case "/logout":
		return s.commands.Logout(ctx, chatUserID).Text

	case "/repost":
		return s.startRepost(ctx, userID)

	case "/clear":
		if err := s.draftStore.DeleteDraft(userID); err != nil {
			logrus.Errorf("Failed to delete draft for user %s: %v", userID, err)
			return lineDraftFailureText
		}
		return lineDraftClearedText

	default:
		return fmt.Sprintf("Unknown command: %s\nType /help for available commands", command)
	}
}

// startRepost submits the user's draft in the background.
// The result is pushed because it usually outlives the reply token.
func (s *LineWebhookService) startRepost(ctx context.Context, userID string) string {
	draft, err := s.draftStore.GetDraft(userID)
	if err != nil {
		logrus.Errorf("Failed to get draft for user %s: %v", userID, err)
		return lineDraftFailureText
	}
	if draft == nil || draft.IsEmpty() {
		return lineEmptyDraftText
	}

	request := draft.ToRepostRequest(domain.ChatUserID(domain.ChatPlatformLine, userID))
	repostCtx := context.WithoutCancel(ctx)

	s.reposts.Add(1)
	go func() {
		defer s.reposts.Done()

		reply := s.commands.Repost(repostCtx, request)
		if reply.Success {
			if err := s.draftStore.DeleteDraft(userID); err != nil {
				logrus.Errorf("Failed to delete draft for user %s: %v", userID, err)
			}
		}

		if err := s.push(userID, reply.Text); err != nil {
			logrus.Errorf("Failed to push repost result to %s: %v", userID, err)
		}
	}()

	return lineRepostingText
}

// updateDraft applies change to the user's draft and returns the updated copy
func (s *LineWebhookService) updateDraft(userID string, change func(draft *domain.RepostDraft)) (*domain.RepostDraft, error) {
	draft, err := s.draftStore.ModifyDraft(userID, change)
	if err != nil {
		logrus.Errorf("Failed to update draft for user %s: %v", userID, err)
		return nil, err
	}

	return draft, nil
}

// reply sends a single text message via reply token
func (s *LineWebhookService) reply(replyToken, text string) error {
	if text == "" || replyToken == "" {
		return nil
	}

	replyReq := domain.LineReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []domain.LineOutgoingMessage{
			{
				Type: domain.LineMessageTypeText,
				Text: text,
			},
		},
	}

	if _, err := s.lineClient.ReplyMessage(replyReq); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}

// push sends a single text message to a user directly
func (s *LineWebhookService) push(userID, text string) error {
	pushReq := domain.LinePushMessageRequest{
		To: userID,
		Messages: []domain.LineOutgoingMessage{
			{
				Type: domain.LineMessageTypeText,
				Text: text,
			},
		},
	}

	if _, err := s.lineClient.PushMessage(pushReq); err != nil {
		return err
	}

	return nil
}

// handleFollowEvent - Business logic for follow events
func (s *LineWebhookService) handleFollowEvent(event domain.LineWebhookEvent) error {
	name, err := s.lineClient.GetDisplayName(event.Source.UserID)
	if err != nil {
		logrus.Warnf("Failed to get display name of %s: %v", event.Source.UserID, err)
	}
	logrus.Infof("User followed: userID=%s, name=%s", event.Source.UserID, name)

	if err := s.push(event.Source.UserID, lineWelcomeText); err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}

	return nil
}

// handleUnfollowEvent - Business logic for unfollow events
func (s *LineWebhookService) handleUnfollowEvent(event domain.LineWebhookEvent) error {
	logrus.Infof("User unfollowed: userID=%s", event.Source.UserID)

	if err := s.draftStore.DeleteDraft(event.Source.UserID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	return nil
}
