package application

import (
	"context"
	"errors"
	"os"
	"sync"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"
)

// Mock implementations for testing

// MockLineClient implements output.LineClient for testing
type MockLineClient struct {
	ReplyMessageFunc   func(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error)
	PushMessageFunc    func(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error)
	GetDisplayNameFunc func(userID string) (string, error)

	mu sync.Mutex

	// Captured values for assertions
	LastReplyRequest *domain.LineReplyMessageRequest
	LastPushRequest  *domain.LinePushMessageRequest

	// Track all push requests for multi-message testing
	PushRequests []domain.LinePushMessageRequest
}

func (m *MockLineClient) ReplyMessage(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error) {
	m.mu.Lock()
	m.LastReplyRequest = &request
	m.mu.Unlock()
	if m.ReplyMessageFunc != nil {
		return m.ReplyMessageFunc(request)
	}
	return &domain.LineMessageResponse{Status: "ok"}, nil
}

func (m *MockLineClient) PushMessage(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error) {
	m.mu.Lock()
	m.LastPushRequest = &request
	m.PushRequests = append(m.PushRequests, request)
	m.mu.Unlock()
	if m.PushMessageFunc != nil {
		return m.PushMessageFunc(request)
	}
	return &domain.LineMessageResponse{Status: "ok"}, nil
}

func (m *MockLineClient) GetDisplayName(userID string) (string, error) {
	if m.GetDisplayNameFunc != nil {
		return m.GetDisplayNameFunc(userID)
	}
	return "Test User", nil
}

// lastReplyText returns the text of the last reply, or "" if none was sent
func (m *MockLineClient) lastReplyText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LastReplyRequest == nil || len(m.LastReplyRequest.Messages) == 0 {
		return ""
	}
	return m.LastReplyRequest.Messages[0].Text
}

// MockDraftStore implements output.DraftStore for testing
type MockDraftStore struct {
	GetDraftFunc    func(userID string) (*domain.RepostDraft, error)
	ModifyDraftFunc func(userID string, change func(draft *domain.RepostDraft)) (*domain.RepostDraft, error)
	DeleteDraftFunc func(userID string) error

	mu sync.Mutex

	// Captured values for assertions
	LastModifiedDraft *domain.RepostDraft
	DeleteCalls      []string
}

func (m *MockDraftStore) GetDraft(userID string) (*domain.RepostDraft, error) {
	if m.GetDraftFunc != nil {
		return m.GetDraftFunc(userID)
	}
	return nil, nil
}

func (m *MockDraftStore) ModifyDraft(userID string, change func(draft *domain.RepostDraft)) (*domain.RepostDraft, error) {
	if m.ModifyDraftFunc != nil {
		return m.ModifyDraftFunc(userID, change)
	}
	draft := domain.NewRepostDraft(userID, defaultTestTimeout, defaultTestMaxAttachments)
	change(draft)
	m.mu.Lock()
	m.LastModifiedDraft = draft
	m.mu.Unlock()
	return draft.Clone(), nil
}

func (m *MockDraftStore) DeleteDraft(userID string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, userID)
	m.mu.Unlock()
	if m.DeleteDraftFunc != nil {
		return m.DeleteDraftFunc(userID)
	}
	return nil
}

// MockChatCommandService implements input.ChatCommandService for testing
type MockChatCommandService struct {
	LoginFunc  func(ctx context.Context, chatUserID, instanceHost string) domain.CommandReply
	LogoutFunc func(ctx context.Context, chatUserID string) domain.CommandReply
	RepostFunc func(ctx context.Context, request domain.RepostRequest) domain.CommandReply

	mu sync.Mutex

	// Captured values for assertions
	LoginCalls     []string
	LogoutCalls    []string
	RepostRequests []domain.RepostRequest
}

func (m *MockChatCommandService) Login(ctx context.Context, chatUserID, instanceHost string) domain.CommandReply {
	m.mu.Lock()
	m.LoginCalls = append(m.LoginCalls, chatUserID+" "+instanceHost)
	m.mu.Unlock()
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, chatUserID, instanceHost)
	}
	return domain.CommandReply{Text: "login", Success: true}
}

func (m *MockChatCommandService) Logout(ctx context.Context, chatUserID string) domain.CommandReply {
	m.mu.Lock()
	m.LogoutCalls = append(m.LogoutCalls, chatUserID)
	m.mu.Unlock()
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, chatUserID)
	}
	return domain.CommandReply{Text: "logout", Success: true}
}

func (m *MockChatCommandService) Repost(ctx context.Context, request domain.RepostRequest) domain.CommandReply {
	m.mu.Lock()
	m.RepostRequests = append(m.RepostRequests, request)
	m.mu.Unlock()
	if m.RepostFunc != nil {
		return m.RepostFunc(ctx, request)
	}
	return domain.CommandReply{Text: "reposted", Success: true}
}

// MockOAuthService implements input.OAuthService for testing
type MockOAuthService struct {
	LoginFunc    func(ctx context.Context, chatUserID, instanceHost string) (string, error)
	CompleteFunc func(ctx context.Context, code, state string) error
}

func (m *MockOAuthService) Login(ctx context.Context, chatUserID, instanceHost string) (string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, chatUserID, instanceHost)
	}
	return "https://mastodon.social/oauth/authorize?state=abc", nil
}

func (m *MockOAuthService) Complete(ctx context.Context, code, state string) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, code, state)
	}
	return nil
}

// MockRepostService implements input.RepostService for testing
type MockRepostService struct {
	RunFunc func(ctx context.Context, request domain.RepostRequest) (string, error)
}

func (m *MockRepostService) Run(ctx context.Context, request domain.RepostRequest) (string, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, request)
	}
	return "https://mastodon.social/@me/1", nil
}

// MockLoginStateStore implements output.LoginStateStore for testing
type MockLoginStateStore struct {
	InsertFunc func(session domain.LoginSession) string
	TakeFunc   func(token string) (domain.LoginSession, bool)

	// Captured values for assertions
	InsertedSessions []domain.LoginSession
	TakeCalls        []string
}

func (m *MockLoginStateStore) Insert(session domain.LoginSession) string {
	m.InsertedSessions = append(m.InsertedSessions, session)
	if m.InsertFunc != nil {
		return m.InsertFunc(session)
	}
	return "state-token"
}

func (m *MockLoginStateStore) Take(token string) (domain.LoginSession, bool) {
	m.TakeCalls = append(m.TakeCalls, token)
	if m.TakeFunc != nil {
		return m.TakeFunc(token)
	}
	return domain.LoginSession{}, false
}

func (m *MockLoginStateStore) Len() int {
	return len(m.InsertedSessions)
}

// MockUserRecordStore implements output.UserRecordStore for testing
type MockUserRecordStore struct {
	GetUserRecordFunc    func(ctx context.Context, chatUserID string) (*domain.UserRecord, error)
	PutUserRecordFunc    func(ctx context.Context, chatUserID string, record domain.UserRecord) error
	DeleteUserRecordFunc func(ctx context.Context, chatUserID string) error

	// Captured values for assertions
	PutCalls    []string
	PutRecords  []domain.UserRecord
	DeleteCalls []string
}

func (m *MockUserRecordStore) GetUserRecord(ctx context.Context, chatUserID string) (*domain.UserRecord, error) {
	if m.GetUserRecordFunc != nil {
		return m.GetUserRecordFunc(ctx, chatUserID)
	}
	return &domain.UserRecord{AccessToken: "user-token", InstanceHost: "mastodon.social"}, nil
}

func (m *MockUserRecordStore) PutUserRecord(ctx context.Context, chatUserID string, record domain.UserRecord) error {
	m.PutCalls = append(m.PutCalls, chatUserID)
	m.PutRecords = append(m.PutRecords, record)
	if m.PutUserRecordFunc != nil {
		return m.PutUserRecordFunc(ctx, chatUserID, record)
	}
	return nil
}

func (m *MockUserRecordStore) DeleteUserRecord(ctx context.Context, chatUserID string) error {
	m.DeleteCalls = append(m.DeleteCalls, chatUserID)
	if m.DeleteUserRecordFunc != nil {
		return m.DeleteUserRecordFunc(ctx, chatUserID)
	}
	return nil
}

func (m *MockUserRecordStore) Ping(ctx context.Context) error {
	return nil
}

// MockSocialClient implements output.SocialClient for testing
type MockSocialClient struct {
	RegisterAppFunc  func(ctx context.Context, request domain.AppRegistrationRequest) (*domain.AppRegistration, error)
	ExchangeCodeFunc func(ctx context.Context, app domain.AppRegistration, code string) (string, error)
	Media            *MockMediaClient

	// Captured values for assertions
	RegisterRequests []domain.AppRegistrationRequest
	ExchangedApps    []domain.AppRegistration
	MediaRecords     []domain.UserRecord
}

func (m *MockSocialClient) RegisterApp(ctx context.Context, request domain.AppRegistrationRequest) (*domain.AppRegistration, error) {
	m.RegisterRequests = append(m.RegisterRequests, request)
	if m.RegisterAppFunc != nil {
		return m.RegisterAppFunc(ctx, request)
	}
	return &domain.AppRegistration{
		InstanceHost: request.InstanceHost,
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURI:  request.RedirectURI,
		Scopes:       request.Scopes,
		AuthorizeURL: "https://" + request.InstanceHost + "/oauth/authorize?client_id=cid&response_type=code",
	}, nil
}

func (m *MockSocialClient) ExchangeCode(ctx context.Context, app domain.AppRegistration, code string) (string, error) {
	m.ExchangedApps = append(m.ExchangedApps, app)
	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, app, code)
	}
	return "access-token", nil
}

func (m *MockSocialClient) MediaClient(record domain.UserRecord) output.MediaClient {
	m.MediaRecords = append(m.MediaRecords, record)
	if m.Media == nil {
		m.Media = &MockMediaClient{}
	}
	return m.Media
}

// MockMediaClient implements output.MediaClient for testing.
// Attachment units call it concurrently.
type MockMediaClient struct {
	UploadMediaFunc func(ctx context.Context, path string) (string, error)
	MediaReadyFunc  func(ctx context.Context, mediaID string) (bool, error)
	PostStatusFunc  func(ctx context.Context, text string, mediaIDs []string) (string, error)

	mu sync.Mutex

	// Captured values for assertions
	UploadedPaths   []string
	UploadedContent []string
	ReadyCalls      int
	PostCalls       int
	PostedText      string
	PostedMediaIDs  []string
}

func (m *MockMediaClient) UploadMedia(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.New("temp file missing during upload")
	}

	m.mu.Lock()
	m.UploadedPaths = append(m.UploadedPaths, path)
	m.UploadedContent = append(m.UploadedContent, string(content))
	m.mu.Unlock()

	if m.UploadMediaFunc != nil {
		return m.UploadMediaFunc(ctx, path)
	}
	return "media-" + string(content), nil
}

func (m *MockMediaClient) MediaReady(ctx context.Context, mediaID string) (bool, error) {
	m.mu.Lock()
	m.ReadyCalls++
	m.mu.Unlock()
	if m.MediaReadyFunc != nil {
		return m.MediaReadyFunc(ctx, mediaID)
	}
	return true, nil
}

func (m *MockMediaClient) PostStatus(ctx context.Context, text string, mediaIDs []string) (string, error) {
	m.mu.Lock()
	m.PostCalls++
	m.PostedText = text
	m.PostedMediaIDs = mediaIDs
	m.mu.Unlock()
	if m.PostStatusFunc != nil {
		return m.PostStatusFunc(ctx, text, mediaIDs)
	}
	return "https://mastodon.social/@me/1", nil
}
