package application

import (
	"context"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/input"
	"repost-bridge/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Reply texts for chat commands
const (
	loginSuccessText  = "We successfully registered ourselves with your instance! Use this URL to grant us permission: "
	logoutSuccessText = "Successfully removed your login"
	logoutFailureText = "There was a problem removing your login. Please try again later."
	repostSuccessText = "We reposted the message for you on your Mastodon account! "
	repostFailureText = "We unfortunately couldn't repost the message to your Mastodon account! "
)

// ChatCommandService struct - Application service shared by every chat gateway.
// Errors are logged here and never reach the chat user.
type ChatCommandService struct {
	oauth   input.OAuthService
	repost  input.RepostService
	records output.UserRecordStore
}

// NewChatCommandService func - Creates new chat command service
func NewChatCommandService(oauth input.OAuthService, repost input.RepostService, records output.UserRecordStore) *ChatCommandService {
	return &ChatCommandService{
		oauth:   oauth,
		repost:  repost,
		records: records,
	}
}

// Login func - Use case: Start a login on the given instance
func (s *ChatCommandService) Login(ctx context.Context, chatUserID, instanceHost string) domain.CommandReply {
	authorizeURL, err := s.oauth.Login(ctx, chatUserID, instanceHost)
	if err != nil {
		logrus.Errorf("Login failed for %s on %q: %v", chatUserID, instanceHost, err)
		return domain.CommandReply{Text: domain.UserMessage(err)}
	}

	return domain.CommandReply{Text: loginSuccessText + authorizeURL, Success: true}
}

// Logout func - Use case: Forget the stored credentials of a chat user
func (s *ChatCommandService) Logout(ctx context.Context, chatUserID string) domain.CommandReply {
	if err := s.records.DeleteUserRecord(ctx, chatUserID); err != nil {
		logrus.Errorf("Logout failed for %s: %v", chatUserID, err)
		return domain.CommandReply{Text: logoutFailureText}
	}

	logrus.Infof("Logged out: chatUserID=%s", chatUserID)

	return domain.CommandReply{Text: logoutSuccessText, Success: true}
}

// Repost func - Use case: Republish a chat message on the user's instance
func (s *ChatCommandService) Repost(ctx context.Context, request domain.RepostRequest) domain.CommandReply {
	postURL, err := s.repost.Run(ctx, request)
	if err != nil {
		logrus.Errorf("Repost failed for %s: %v", request.ChatUserID, err)
		return domain.CommandReply{Text: repostFailureText + domain.UserMessage(err)}
	}

	return domain.CommandReply{Text: repostSuccessText + postURL, Success: true}
}
