package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/damoang/angple-messenger/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository conversation and participant data access interface
type ConversationRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Conversation, error)
	FindByPairKey(ctx context.Context, pairKey string) (*domain.Conversation, error)
	CreateWithParticipants(ctx context.Context, conv *domain.Conversation) error
	ListForMember(ctx context.Context, userID string) ([]*domain.Conversation, error)
	ClearUnread(ctx context.Context, conversationID uint64, userID string) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindByID finds a conversation with its participants
func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Preload("Participants").Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByPairKey finds the conversation of a member pair
func (r *conversationRepository) FindByPairKey(ctx context.Context, pairKey string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Preload("Participants").Where("pair_key = ?", pairKey).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateWithParticipants inserts the conversation and its participants atomically.
// A concurrent create of the same pair fails with gorm.ErrDuplicatedKey.
func (r *conversationRepository) CreateWithParticipants(ctx context.Context, conv *domain.Conversation) error {
	now := time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(conv).Error; err != nil {
			return err
		}
		for i := range conv.Participants {
			conv.Participants[i].ConversationID = conv.ID
			if conv.Participants[i].JoinedAt.IsZero() {
				conv.Participants[i].JoinedAt = conv.CreatedAt
			}
		}
		return tx.Create(&conv.Participants).Error
	})
	if isDuplicateKey(err) {
		return gorm.ErrDuplicatedKey
	}
	return err
}

// ListForMember returns the member's conversations, most recently active first
func (r *conversationRepository) ListForMember(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN dm_conversation_participants p ON p.conversation_id = dm_conversations.id AND p.user_id = ?", userID).
		Order("dm_conversations.updated_at DESC, dm_conversations.id DESC").
		Find(&convs).Error
	return convs, err
}

// ClearUnread clears a participant's unread flag; clearing a clear flag is a no-op
func (r *conversationRepository) ClearUnread(ctx context.Context, conversationID uint64, userID string) error {
	return setUnread(r.db.WithContext(ctx), conversationID, userID, false)
}

func setUnread(tx *gorm.DB, conversationID uint64, userID string, unread bool) error {
	return tx.Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("has_unread", unread).Error
}

// isDuplicateKey reports a unique constraint violation.
// Drivers without error translation are matched on their message.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate entry")
}
