package domain

import (
	"sort"
	"time"
)

// MaxEmojiBytes bounds the stored emoji value
const MaxEmojiBytes = 32

// MessageReaction is a member's single reaction to a message (dm_message_reactions).
// At most one row exists per (message_id, user_id).
type MessageReaction struct {
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
	UserID    string    `gorm:"column:user_id;type:varchar(100);not null;uniqueIndex:uq_dm_reaction_message_user,priority:2" json:"user_id"`
	Emoji     string    `gorm:"column:emoji;type:varchar(32);not null" json:"emoji"`
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageID uint64    `gorm:"column:message_id;not null;uniqueIndex:uq_dm_reaction_message_user,priority:1" json:"message_id"`
}

func (MessageReaction) TableName() string {
	return "dm_message_reactions"
}

// ReactRequest represents a react request
type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required,notblank"`
}

// ReactionSummary aggregates one emoji on a message
type ReactionSummary struct {
	Emoji   string   `json:"emoji"`
	UserIDs []string `json:"user_ids"`
	Count   int      `json:"count"`
	Mine    bool     `json:"mine"`
}

// ReactionResult is returned after a react call
type ReactionResult struct {
	Reactions []ReactionSummary `json:"reactions"`
	MessageID uint64            `json:"message_id"`
}

// SummarizeReactions groups reactions by emoji, ordered by the earliest creation
// time among each emoji's rows. Replacing an emoji keeps the member's place.
func SummarizeReactions(reactions []MessageReaction, viewerID string) []ReactionSummary {
	summaries := []ReactionSummary{}
	index := make(map[string]int)

	for _, r := range sortedByCreation(reactions) {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(summaries)
			index[r.Emoji] = i
			summaries = append(summaries, ReactionSummary{Emoji: r.Emoji, UserIDs: []string{}})
		}
		summaries[i].Count++
		summaries[i].UserIDs = append(summaries[i].UserIDs, r.UserID)
		if r.UserID == viewerID {
			summaries[i].Mine = true
		}
	}
	return summaries
}

func sortedByCreation(reactions []MessageReaction) []MessageReaction {
	out := make([]MessageReaction, len(reactions))
	copy(out, reactions)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
