package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"repost-bridge/internal/adapters/output/memory"
	"repost-bridge/internal/domain"
)

// Default draft configuration values for tests
const defaultTestTimeout = 30 * time.Minute
const defaultTestMaxAttachments = 4

// Test helper to create a basic text message event
func createTextMessageEvent(text string) domain.LineWebhookEvent {
	return domain.LineWebhookEvent{
		Type:       domain.LineEventTypeMessage,
		ReplyToken: "test-reply-token",
		Source: domain.LineSource{
			Type:   domain.LineSourceTypeUser,
			UserID: "test-user-id",
		},
		Message: &domain.LineMessage{
			ID:   "test-message-id",
			Type: domain.LineMessageTypeText,
			Text: text,
		},
	}
}

// Test helper to create an image message event
func createImageMessageEvent(messageID string) domain.LineWebhookEvent {
	event := createTextMessageEvent("")
	event.Message = &domain.LineMessage{
		ID:         messageID,
		Type:       domain.LineMessageTypeImage,
		ContentURL: domain.LineContentURL(messageID),
	}
	return event
}

func newTestLineWebhookService(lineClient *MockLineClient, commands *MockChatCommandService, drafts *MockDraftStore) *LineWebhookService {
	return NewLineWebhookService(lineClient, commands, drafts)
}

func handle(t *testing.T, service *LineWebhookService, events ...domain.LineWebhookEvent) {
	t.Helper()
	if err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{Events: events}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// TestHelpCommand_ListsCommands tests that /help lists every command
func TestHelpCommand_ListsCommands(t *testing.T) {
	// Arrange
	mockLineClient := &MockLineClient{}
	service := newTestLineWebhookService(mockLineClient, &MockChatCommandService{}, &MockDraftStore{})

	// Act
	handle(t, service, createTextMessageEvent("/help"))

	// Assert
	text := mockLineClient.lastReplyText()
	for _, command := range []string{"/login", "/logout", "/repost", "/clear", "/help"} {
		if !strings.Contains(text, command) {
			t.Errorf("Expected help to mention %s, got:\n%s", command, text)
		}
	}
}

// TestLoginCommand_UsesNamespacedUserAndRepliesWithCommandText tests /login routing
func TestLoginCommand_UsesNamespacedUserAndRepliesWithCommandText(t *testing.T) {
	// Arrange
	mockLineClient := &MockLineClient{}
	commands := &MockChatCommandService{
		LoginFunc: func(ctx context.Context, chatUserID, instanceHost string) domain.CommandReply {
			return domain.CommandReply{Text: "open this link", Success: true}
		},
	}
	service := newTestLineWebhookService(mockLineClient, commands, &MockDraftStore{})

	// Act
	handle(t, service, createTextMessageEvent("/login mastodon.social"))

	// Assert
	if len(commands.LoginCalls) != 1 || commands.LoginCalls[0] != "line:test-user-id mastodon.social" {
		t.Errorf("Unexpected login calls: %v", commands.LoginCalls)
	}
	if mockLineClient.lastReplyText() != "open this link" {
		t.Errorf("Expected command reply, got %q", mockLineClient.lastReplyText())
	}
}

// TestLoginCommand_WithoutInstanceShowsUsage tests the /login usage message
func TestLoginCommand_WithoutInstanceShowsUsage(t *testing.T) {
	mockLineClient := &MockLineClient{}
	commands := &MockChatCommandService{}
	service := newTestLineWebhookService(mockLineClient, commands, &MockDraftStore{})

	handle(t, service, createTextMessageEvent("/login"))

	if len(commands.LoginCalls) != 0 {
		t.Errorf("Expected no login call, got %v", commands.LoginCalls)
	}
	if mockLineClient.lastReplyText() != lineLoginUsageText {
		t.Errorf("Expected usage text, got %q", mockLineClient.lastReplyText())
	}
}

// TestLogoutCommand tests /logout routing
func TestLogoutCommand(t *testing.T) {
	mockLineClient := &MockLineClient{}
	commands := &MockChatCommandService{}
	service := newTestLineWebhookService(mockLineClient, commands, &MockDraftStore{})

	handle(t, service, createTextMessageEvent("/LOGOUT"))

	if len(commands.LogoutCalls) != 1 || commands.LogoutCalls[0] != "line:test-user-id" {
		t.Errorf("Unexpected logout calls: %v", commands.LogoutCalls)
	}
}

// TestTextAndImages_BuildDraft tests that plain messages feed the draft
func TestTextAndImages_BuildDraft(t *testing.T) {
	// Arrange
	mockLineClient := &MockLineClient{}
	drafts := memory.NewMemoryDraftStore(defaultTestTimeout, defaultTestMaxAttachments)
	service := NewLineWebhookService(mockLineClient, &MockChatCommandService{}, drafts)

	// Act
	handle(t, service, createTextMessageEvent("first"), createTextMessageEvent("  latest text  "))
	handle(t, service, createImageMessageEvent("m1"))
	handle(t, service, createImageMessageEvent("m2"))

	// Assert
	draft, err := drafts.GetDraft("test-user-id")
	if err != nil || draft == nil {
		t.Fatalf("Expected draft, got %v (err %v)", draft, err)
	}
	if draft.Text != "latest text" {
		t.Errorf("Expected latest text, got %q", draft.Text)
	}

	attachments := draft.GetAttachments()
	if len(attachments) != 2 || attachments[0] != domain.LineContentURL("m1") || attachments[1] != domain.LineContentURL("m2") {
		t.Errorf("Unexpected attachments: %v", attachments)
	}

	if mockLineClient.lastReplyText() != "Saved image 2 of 4 for your next /repost." {
		t.Errorf("Unexpected reply: %q", mockLineClient.lastReplyText())
	}
}

// TestConcurrentImageDeliveries_KeepEveryImage tests that webhook deliveries
// for the same user handled in parallel do not drop images
func TestConcurrentImageDeliveries_KeepEveryImage(t *testing.T) {
	// Arrange
	const deliveries = 20
	mockLineClient := &MockLineClient{}
	drafts := memory.NewMemoryDraftStore(defaultTestTimeout, deliveries)
	service := NewLineWebhookService(mockLineClient, &MockChatCommandService{}, drafts)

	// Act
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			event := createImageMessageEvent(fmt.Sprintf("m%d", i))
			if err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{Events: []domain.LineWebhookEvent{event}}); err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		}(i)
	}
	wg.Wait()

	// Assert
	draft, err := drafts.GetDraft("test-user-id")
	if err != nil || draft == nil {
		t.Fatalf("Expected draft, got %v (err %v)", draft, err)
	}
	if len(draft.GetAttachments()) != deliveries {
		t.Errorf("Expected %d images, got %d", deliveries, len(draft.GetAttachments()))
	}
}

// TestRepostCommand_EmptyDraft tests /repost without a draft
func TestRepostCommand_EmptyDraft(t *testing.T) {
	mockLineClient := &MockLineClient{}
	commands := &MockChatCommandService{}
	service := newTestLineWebhookService(mockLineClient, commands, &MockDraftStore{})

	handle(t, service, createTextMessageEvent("/repost"))
	service.Wait()

	if len(commands.RepostRequests) != 0 {
		t.Errorf("Expected no repost, got %d", len(commands.RepostRequests))
	}
	if mockLineClient.lastReplyText() != lineEmptyDraftText {
		t.Errorf("Expected empty draft text, got %q", mockLineClient.lastReplyText())
	}
}

// TestRepostCommand_SubmitsDraftAndPushesResult tests the background repost
func TestRepostCommand_SubmitsDraftAndPushesResult(t *testing.T) {
	// Arrange
	mockLineClient := &MockLineClient{}
	commands := &MockChatCommandService{
		RepostFunc: func(ctx context.Context, request domain.RepostRequest) domain.CommandReply {
			return domain.CommandReply{Text: "posted https://mastodon.social/@me/1", Success: true}
		},
	}
	draft := domain.NewRepostDraft("test-user-id", defaultTestTimeout, defaultTestMaxAttachments)
	draft.SetText("hello")
	draft.AddAttachment(domain.LineContentURL("m1"))
	drafts := &MockDraftStore{
		GetDraftFunc: func(userID string) (*domain.RepostDraft, error) {
			return draft, nil
		},
	}
	service := newTestLineWebhookService(mockLineClient, commands, drafts)

	// Act
	handle(t, service, createTextMessageEvent("/repost"))
	service.Wait()

	// Assert
	if mockLineClient.lastReplyText() != lineRepostingText {
		t.Errorf("Expected reposting text, got %q", mockLineClient.lastReplyText())
	}

	if len(commands.RepostRequests) != 1 {
		t.Fatalf("Expected 1 repost, got %d", len(commands.RepostRequests))
	}
	request := commands.RepostRequests[0]
	if request.ChatUserID != "line:test-user-id" || request.MessageText != "hello" || len(request.AttachmentURLs) != 1 {
		t.Errorf("Unexpected repost request: %+v", request)
	}

	if len(mockLineClient.PushRequests) != 1 {
		t.Fatalf("Expected 1 push, got %d", len(mockLineClient.PushRequests))
	}
	push := mockLineClient.PushRequests[0]
	if push.To != "test-user-id" || push.Messages[0].Text != "posted https://mastodon.social/@me/1" {
		t.Errorf("Unexpected push: %+v", push)
	}

	if len(drafts.DeleteCalls) != 1 {
		t.Errorf("Expected draft to be cleared after success, got %v", drafts.DeleteCalls)
	}
}

// TestRepostCommand_KeepsDraftOnFailure tests that a failed repost can be retried by the user
func TestRepostCommand_KeepsDraftOnFailure(t *testing.T) {
	mockLineClient := &MockLineClient{}
	commands := &MockChatCommandService{
		RepostFunc: func(ctx context.Context, request domain.RepostRequest) domain.CommandReply {
			return domain.CommandReply{Text: "failed"}
		},
	}
	draft := domain.NewRepostDraft("test-user-id", defaultTestTimeout, defaultTestMaxAttachments)
	draft.SetText("hello")
	drafts := &MockDraftStore{
		GetDraftFunc: func(userID string) (*domain.RepostDraft, error) {
			return draft, nil
		},
	}
	service := newTestLineWebhookService(mockLineClient, commands, drafts)

	handle(t, service, createTextMessageEvent("/repost"))
	service.Wait()

	if len(drafts.DeleteCalls) != 0 {
		t.Errorf("Expected draft to be kept, got %v", drafts.DeleteCalls)
	}
	if len(mockLineClient.PushRequests) != 1 || mockLineClient.PushRequests[0].Messages[0].Text != "failed" {
		t.Errorf("Expected failure to be pushed, got %+v", mockLineClient.PushRequests)
	}
}

// TestClearCommand_DeletesDraft tests /clear
func TestClearCommand_DeletesDraft(t *testing.T) {
	mockLineClient := &MockLineClient{}
	drafts := &MockDraftStore{}
	service := newTestLineWebhookService(mockLineClient, &MockChatCommandService{}, drafts)

	handle(t, service, createTextMessageEvent("/clear"))

	if len(drafts.DeleteCalls) != 1 || drafts.DeleteCalls[0] != "test-user-id" {
		t.Errorf("Expected draft of test-user-id to be deleted, got %v", drafts.DeleteCalls)
	}
	if mockLineClient.lastReplyText() != lineDraftClearedText {
		t.Errorf("Expected cleared text, got %q", mockLineClient.lastReplyText())
	}
}

// TestUnknownCommand tests the reply to unknown commands
func TestUnknownCommand(t *testing.T) {
	mockLineClient := &MockLineClient{}
	service := newTestLineWebhookService(mockLineClient, &MockChatCommandService{}, &MockDraftStore{})

	handle(t, service, createTextMessageEvent("/dance"))

	if !strings.HasPrefix(mockLineClient.lastReplyText(), "Unknown command: /dance") {
		t.Errorf("Unexpected reply: %q", mockLineClient.lastReplyText())
	}
}

// TestDraftStoreFailure_RepliesWithoutDetails tests the draft error path
func TestDraftStoreFailure_RepliesWithoutDetails(t *testing.T) {
	mockLineClient := &MockLineClient{}
	drafts := &MockDraftStore{
		ModifyDraftFunc: func(userID string, change func(draft *domain.RepostDraft)) (*domain.RepostDraft, error) {
			return nil, errors.New("out of memory")
		},
	}
	service := newTestLineWebhookService(mockLineClient, &MockChatCommandService{}, drafts)

	handle(t, service, createTextMessageEvent("some text"))

	if mockLineClient.lastReplyText() != lineDraftFailureText {
		t.Errorf("Expected draft failure text, got %q", mockLineClient.lastReplyText())
	}
}

// TestReplyFailure_ReturnsError tests that reply errors surface to the handler
func TestReplyFailure_ReturnsError(t *testing.T) {
	mockLineClient := &MockLineClient{
		ReplyMessageFunc: func(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error) {
			return nil, errors.New("invalid reply token")
		},
	}
	service := newTestLineWebhookService(mockLineClient, &MockChatCommandService{}, &MockDraftStore{})

	err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{
		Events: []domain.LineWebhookEvent{createTextMessageEvent("/help")},
	})

	if err == nil {
		t.Error("Expected error when reply fails")
	}
}

// TestFollowAndUnfollowEvents tests the welcome push and draft cleanup
func TestFollowAndUnfollowEvents(t *testing.T) {
	mockLineClient := &MockLineClient{}
	drafts := &MockDraftStore{}
	service := newTestLineWebhookService(mockLineClient, &MockChatCommandService{}, drafts)

	source := domain.LineSource{Type: domain.LineSourceTypeUser, UserID: "test-user-id"}
	handle(t, service,
		domain.LineWebhookEvent{Type: domain.LineEventTypeFollow, Source: source},
		domain.LineWebhookEvent{Type: domain.LineEventTypeUnfollow, Source: source},
	)

	if len(mockLineClient.PushRequests) != 1 || mockLineClient.PushRequests[0].Messages[0].Text != lineWelcomeText {
		t.Errorf("Expected welcome push, got %+v", mockLineClient.PushRequests)
	}
	if len(drafts.DeleteCalls) != 1 {
		t.Errorf("Expected draft to be deleted on unfollow, got %v", drafts.DeleteCalls)
	}
}

// TestEventsWithoutUserAreIgnored tests group events without a user ID
func TestEventsWithoutUserAreIgnored(t *testing.T) {
	mockLineClient := &MockLineClient{}
	service := newTestLineWebhookService(mockLineClient, &MockChatCommandService{}, &MockDraftStore{})

	event := createTextMessageEvent("/help")
	event.Source = domain.LineSource{Type: domain.LineSourceTypeGroup, GroupID: "g1"}
	handle(t, service, event)

	if mockLineClient.LastReplyRequest != nil {
		t.Error("Expected no reply for events without a user")
	}
}
