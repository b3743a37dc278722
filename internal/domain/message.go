package domain

import "time"

// UnsentPlaceholder replaces the content of a soft-deleted message
const UnsentPlaceholder = "This message was unsent"

// AttachmentMarker is the inbox/notification snippet of an attachment-only message
const AttachmentMarker = "[attachment]"

// Attachment types
const (
	AttachmentTypeImage     = "image"
	AttachmentTypeFile      = "file"
	AttachmentTypeInterview = "interview"
)

// Message directions relative to the viewer
const (
	DirectionMine   = "mine"
	DirectionTheirs = "theirs"
)

// Message represents a direct message (dm_messages)
type Message struct {
	CreatedAt      time.Time         `gorm:"column:created_at;index:idx_dm_messages_conv_created,priority:2" json:"created_at"`
	DeletedAt      *time.Time        `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
	ReplyToID      *uint64           `gorm:"column:reply_to_id" json:"reply_to_id,omitempty"`
	SenderID       string            `gorm:"column:sender_id;type:varchar(100);index;not null" json:"sender_id"`
	Content        string            `gorm:"column:content;type:text" json:"content"`
	AttachmentURL  string            `gorm:"column:attachment_url;type:varchar(1000)" json:"attachment_url,omitempty"`
	AttachmentType string            `gorm:"column:attachment_type;type:varchar(20)" json:"attachment_type,omitempty"`
	Reactions      []MessageReaction `gorm:"foreignKey:MessageID" json:"-"`
	ID             uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ConversationID uint64            `gorm:"column:conversation_id;not null;index:idx_dm_messages_conv_created,priority:1" json:"conversation_id"`
	IsDeleted      bool              `gorm:"column:is_deleted;not null" json:"is_deleted"`
}

func (Message) TableName() string {
	return "dm_messages"
}

// HasAttachment reports whether the message carries an attachment
func (m *Message) HasAttachment() bool {
	return m.AttachmentURL != ""
}

// Preview returns the text shown in the inbox for this message
func (m *Message) Preview() string {
	if m.IsDeleted {
		return UnsentPlaceholder
	}
	if m.Content == "" && m.HasAttachment() {
		return AttachmentMarker
	}
	return m.Content
}

// SendMessageRequest represents a send message request.
// Exactly one of RecipientID or ConversationID addresses the message.
type SendMessageRequest struct {
	ReplyToID      *uint64 `json:"reply_to_id,omitempty"`
	RecipientID    string  `json:"recipient_id,omitempty"`
	Content        string  `json:"content"`
	AttachmentURL  string  `json:"attachment_url,omitempty"`
	AttachmentType string  `json:"attachment_type,omitempty" binding:"omitempty,oneof=image file interview"`
	ConversationID uint64  `json:"conversation_id,omitempty"`
}

// SendMessageResponse returns the persisted message with its conversation
type SendMessageResponse struct {
	Message        MessageResponse `json:"message"`
	ConversationID uint64          `json:"conversation_id"`
}

// ReplyPreview is the quoted message shown above a reply
type ReplyPreview struct {
	SenderID  string `json:"sender_id"`
	Content   string `json:"content"`
	ID        uint64 `json:"id"`
	IsDeleted bool   `json:"is_deleted"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	CreatedAt      time.Time         `json:"created_at"`
	ReplyTo        *ReplyPreview     `json:"reply_to,omitempty"`
	SenderID       string            `json:"sender_id"`
	Direction      string            `json:"direction"`
	Content        string            `json:"content"`
	AttachmentURL  string            `json:"attachment_url,omitempty"`
	AttachmentType string            `json:"attachment_type,omitempty"`
	Reactions      []ReactionSummary `json:"reactions"`
	ID             uint64            `json:"id"`
	ConversationID uint64            `json:"conversation_id"`
	IsDeleted      bool              `json:"is_deleted"`
}

// ToResponse converts Message to MessageResponse as seen by viewerID.
// Deleted messages expose only the placeholder.
func (m *Message) ToResponse(viewerID string, replyTo *Message) MessageResponse {
	resp := MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Direction:      DirectionTheirs,
		CreatedAt:      m.CreatedAt,
		IsDeleted:      m.IsDeleted,
		Reactions:      []ReactionSummary{},
	}
	if m.SenderID == viewerID {
		resp.Direction = DirectionMine
	}

	if m.IsDeleted {
		resp.Content = UnsentPlaceholder
	} else {
		resp.Content = m.Content
		resp.AttachmentURL = m.AttachmentURL
		resp.AttachmentType = m.AttachmentType
		resp.Reactions = SummarizeReactions(m.Reactions, viewerID)
	}

	if replyTo != nil {
		preview := &ReplyPreview{
			ID:        replyTo.ID,
			SenderID:  replyTo.SenderID,
			Content:   replyTo.Preview(),
			IsDeleted: replyTo.IsDeleted,
		}
		resp.ReplyTo = preview
	}
	return resp
}
