package domain

import "errors"

// OAuth handshake error types

var (
	// ErrRegistration indicates the app registration against the Mastodon instance failed
	ErrRegistration = errors.New("app registration failed")

	// ErrUnknownState indicates the OAuth state was never issued, already consumed or evicted
	ErrUnknownState = errors.New("unknown oauth state")

	// ErrExchange indicates the authorization code could not be exchanged for an access token
	ErrExchange = errors.New("authorization code exchange failed")

	// ErrPersistence indicates the user record store failed
	ErrPersistence = errors.New("user record persistence failed")
)

// Repost error types

var (
	// ErrNotLoggedIn indicates the chat user has no (or a tombstoned) user record
	ErrNotLoggedIn = errors.New("user is not logged in")

	// ErrAttachmentFetch indicates an attachment could not be downloaded or buffered
	ErrAttachmentFetch = errors.New("attachment fetch failed")

	// ErrMediaUpload indicates the media upload to the Mastodon instance failed
	ErrMediaUpload = errors.New("media upload failed")

	// ErrProcessing indicates the uploaded media never became ready
	ErrProcessing = errors.New("media processing failed")

	// ErrPostCreation indicates the status could not be created
	ErrPostCreation = errors.New("post creation failed")
)

// userMessages holds the fixed replies shown to chat users. Internal error
// detail never leaves the server.
var userMessages = []struct {
	err     error
	message string
}{
	{ErrRegistration, "We couldn't register ourselves with your Mastodon instance. Please check the instance name and try again."},
	{ErrUnknownState, "This login link is no longer valid. Please run the login command again."},
	{ErrExchange, "We couldn't complete the login with your Mastodon instance."},
	{ErrPersistence, "We couldn't store or load your login on our backend."},
	{ErrNotLoggedIn, "You are not logged in. Use the login command with your Mastodon instance first."},
	{ErrAttachmentFetch, "We couldn't download one of the attachments of this message."},
	{ErrMediaUpload, "Your Mastodon instance rejected one of the attachments."},
	{ErrProcessing, "Your Mastodon instance didn't finish processing one of the attachments."},
	{ErrPostCreation, "Your Mastodon instance didn't accept the post."},
}

// GenericFailureMessage is used for errors outside the taxonomy
const GenericFailureMessage = "Something went wrong on our side. Please try again later."

// UserMessage maps an error to its fixed, user-safe message
func UserMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	return GenericFailureMessage
}
