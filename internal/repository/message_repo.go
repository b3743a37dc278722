package repository

import (
	"context"
	"time"

	"github.com/damoang/angple-messenger/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	Append(ctx context.Context, msg *domain.Message, recipientID string) error
	FindByID(ctx context.Context, id uint64) (*domain.Message, error)
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID, afterID uint64) ([]*domain.Message, error)
	LastMessages(ctx context.Context, conversationIDs []uint64) (map[uint64]*domain.Message, error)
	SoftDelete(ctx context.Context, id uint64, at time.Time) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Append stores a message, flags the recipient unread and bumps the conversation
func (r *messageRepository) Append(ctx context.Context, msg *domain.Message, recipientID string) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		// 수신자 unread 표시
		if err := setUnread(tx, msg.ConversationID, recipientID, true); err != nil {
			return err
		}

		return tx.Model(&domain.Conversation{}).
			Where("id = ?", msg.ConversationID).
			UpdateColumn("updated_at", msg.CreatedAt).Error
	})
}

// FindByID finds a message by ID
func (r *messageRepository) FindByID(ctx context.Context, id uint64) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByIDs loads messages keyed by id; missing ids are absent from the map
func (r *messageRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]*domain.Message, error) {
	result := make(map[uint64]*domain.Message, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var messages []*domain.Message
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&messages).Error; err != nil {
		return nil, err
	}
	for _, m := range messages {
		result[m.ID] = m
	}
	return result, nil
}

// ListByConversation returns the timeline oldest first, with reactions.
// afterID > 0 limits the result to messages newer than that id.
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID, afterID uint64) ([]*domain.Message, error) {
	query := r.db.WithContext(ctx).
		Preload("Reactions").
		Where("conversation_id = ?", conversationID)
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}

	var messages []*domain.Message
	err := query.Order("created_at ASC, id ASC").Find(&messages).Error
	return messages, err
}

// LastMessages returns the newest message of each conversation
func (r *messageRepository) LastMessages(ctx context.Context, conversationIDs []uint64) (map[uint64]*domain.Message, error) {
	result := make(map[uint64]*domain.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return result, nil
	}

	var messages []*domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id IN ?", conversationIDs).
		Where("id = (SELECT m2.id FROM dm_messages m2 WHERE m2.conversation_id = dm_messages.conversation_id ORDER BY m2.created_at DESC, m2.id DESC LIMIT 1)").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for _, m := range messages {
		result[m.ConversationID] = m
	}
	return result, nil
}

// SoftDelete marks a message as unsent and redacts the inbox alerts written
// for it. The first deletion time is kept.
func (r *messageRepository) SoftDelete(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Message{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(map[string]interface{}{
				"is_deleted": true,
				"deleted_at": at,
			}).Error
		if err != nil {
			return err
		}
		return redactNotifications(tx, id)
	})
}
