package domain

import "time"

// RepostDraft represents the message a LINE user is assembling for /repost.
// LINE has no message-context commands, so the bot collects the latest text
// and images per user instead.
type RepostDraft struct {
	UserID         string        // LINE user identifier
	Text           string        // Latest non-command text
	AttachmentURLs []string      // Collected image content URLs, oldest first
	LastAccessTime time.Time     // For draft expiration checking
	timeout        time.Duration // Configurable draft timeout
	maxAttachments int           // Configurable maximum attachments kept
}

// NewRepostDraft creates a new empty draft for a user
// with configurable timeout and maxAttachments parameters
func NewRepostDraft(userID string, timeout time.Duration, maxAttachments int) *RepostDraft {
	return &RepostDraft{
		UserID:         userID,
		AttachmentURLs: make([]string, 0),
		LastAccessTime: time.Now(),
		timeout:        timeout,
		maxAttachments: maxAttachments,
	}
}

// IsExpired checks if the draft has exceeded the configured timeout
func (d *RepostDraft) IsExpired() bool {
	return time.Since(d.LastAccessTime) > d.timeout
}

// SetText replaces the draft text
func (d *RepostDraft) SetText(text string) {
	d.Text = text
}

// AddAttachment appends an attachment URL.
// If the limit is reached, the oldest attachment is removed
func (d *RepostDraft) AddAttachment(url string) {
	if d.maxAttachments > 0 && len(d.AttachmentURLs) >= d.maxAttachments {
		d.AttachmentURLs = d.AttachmentURLs[1:]
	}

	d.AttachmentURLs = append(d.AttachmentURLs, url)
}

// GetAttachments returns a copy of the attachment URLs
func (d *RepostDraft) GetAttachments() []string {
	if len(d.AttachmentURLs) == 0 {
		return []string{}
	}

	// Return a copy to prevent external modification
	attachments := make([]string, len(d.AttachmentURLs))
	copy(attachments, d.AttachmentURLs)
	return attachments
}

// MaxAttachments returns the number of attachments the draft keeps
func (d *RepostDraft) MaxAttachments() int {
	return d.maxAttachments
}

// Clone returns a copy that shares no state with the draft
func (d *RepostDraft) Clone() *RepostDraft {
	clone := *d
	clone.AttachmentURLs = d.GetAttachments()
	return &clone
}

// IsEmpty reports whether there is nothing to repost
func (d *RepostDraft) IsEmpty() bool {
	return d.Text == "" && len(d.AttachmentURLs) == 0
}

// ToRepostRequest converts the draft into a repost request for chatUserID
func (d *RepostDraft) ToRepostRequest(chatUserID string) RepostRequest {
	return RepostRequest{
		ChatUserID:     chatUserID,
		MessageText:    d.Text,
		AttachmentURLs: d.GetAttachments(),
	}
}
