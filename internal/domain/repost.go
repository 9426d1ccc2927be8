package domain

// RepostRequest describes a chat message to republish as a Mastodon status
type RepostRequest struct {
	ChatUserID     string
	MessageText    string
	AttachmentURLs []string // Ordered as in the chat message
}

// AttachmentOutcome is the result of one attachment unit of work
type AttachmentOutcome struct {
	Index   int
	URL     string
	MediaID string
	Err     error
}

// Succeeded reports whether the attachment produced a media identifier
func (o AttachmentOutcome) Succeeded() bool {
	return o.Err == nil && o.MediaID != ""
}

// CommandReply is the text answered to a chat command
type CommandReply struct {
	Text    string
	Success bool
}

// Chat platforms a user can be namespaced by
const (
	ChatPlatformDiscord = "discord"
	ChatPlatformLine    = "line"
)

// ChatUserID namespaces a platform user identifier, e.g. discord:1234
func ChatUserID(platform, userID string) string {
	return platform + ":" + userID
}
