package domain

import (
	"time"
)

// pairKeySeparator joins the two member ids of a pair key (member ids never contain it)
const pairKeySeparator = "\x1f"

// Conversation represents a two-party direct message thread (dm_conversations)
type Conversation struct {
	CreatedAt    time.Time                 `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;index" json:"updated_at"`
	PairKey      string                    `gorm:"column:pair_key;type:varchar(255);uniqueIndex;not null" json:"-"`
	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
	ID           uint64                    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
}

func (Conversation) TableName() string {
	return "dm_conversations"
}

// ConversationParticipant is one side of a conversation with its unread flag
type ConversationParticipant struct {
	JoinedAt       time.Time `gorm:"column:joined_at" json:"joined_at"`
	UserID         string    `gorm:"column:user_id;primaryKey;type:varchar(100);index" json:"user_id"`
	ConversationID uint64    `gorm:"column:conversation_id;primaryKey;autoIncrement:false" json:"conversation_id"`
	HasUnread      bool      `gorm:"column:has_unread;not null" json:"has_unread"`
}

func (ConversationParticipant) TableName() string {
	return "dm_conversation_participants"
}

// PairKey returns the order-independent key of a member pair
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + pairKeySeparator + b
}

// IsPair reports whether the participants are exactly {a, b}
func (c *Conversation) IsPair(a, b string) bool {
	if len(c.Participants) != 2 {
		return false
	}
	x, y := c.Participants[0].UserID, c.Participants[1].UserID
	return (x == a && y == b) || (x == b && y == a)
}

// HasParticipant reports whether userID takes part in the conversation
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant id that is not userID
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p.UserID != userID {
			return p.UserID
		}
	}
	return ""
}

// StartConversationRequest represents a start conversation request
type StartConversationRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required,notblank"`
}

// StartConversationResponse returns the resolved conversation id
type StartConversationResponse struct {
	ConversationID uint64 `json:"conversation_id"`
}

// ConversationSummary is one inbox row
type ConversationSummary struct {
	LastMessageTime    *time.Time  `json:"last_message_time,omitempty"`
	OtherParticipant   UserSummary `json:"other_participant"`
	LastMessagePreview string      `json:"last_message_preview"`
	UpdatedAt          time.Time   `json:"updated_at"`
	ConversationID     uint64      `json:"conversation_id"`
	UnreadCount        int         `json:"unread_count"`
}

// ConversationDetail is the result of opening a conversation
type ConversationDetail struct {
	OtherParticipant UserSummary       `json:"other_participant"`
	Messages         []MessageResponse `json:"messages"`
	ConversationID   uint64            `json:"conversation_id"`
}
