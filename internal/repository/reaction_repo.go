package repository

import (
	"context"
	"errors"
	"time"

	"github.com/damoang/angple-messenger/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionChange describes what a toggle did to the caller's reaction row
type ReactionChange string

const (
	ReactionAdded    ReactionChange = "added"
	ReactionReplaced ReactionChange = "replaced"
	ReactionRemoved  ReactionChange = "removed"
)

// ReactionRepository reaction data access interface
type ReactionRepository interface {
	Toggle(ctx context.Context, messageID uint64, userID, emoji string) (ReactionChange, error)
	ListByMessage(ctx context.Context, messageID uint64) ([]domain.MessageReaction, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Toggle applies the toggle convention for (messageID, userID):
// same emoji removes the row, another emoji replaces it, no row inserts one.
// Losing an insert race on the unique index is retried once against the winner's row.
func (r *reactionRepository) Toggle(ctx context.Context, messageID uint64, userID, emoji string) (ReactionChange, error) {
	change, err := r.toggle(ctx, messageID, userID, emoji)
	if isDuplicateKey(err) {
		change, err = r.toggle(ctx, messageID, userID, emoji)
	}
	return change, err
}

func (r *reactionRepository) toggle(ctx context.Context, messageID uint64, userID, emoji string) (ReactionChange, error) {
	var change ReactionChange

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.MessageReaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("message_id = ? AND user_id = ?", messageID, userID).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now()
			change = ReactionAdded
			return tx.Create(&domain.MessageReaction{
				MessageID: messageID,
				UserID:    userID,
				Emoji:     emoji,
				CreatedAt: now,
				UpdatedAt: now,
			}).Error
		case err != nil:
			return err
		case existing.Emoji == emoji:
			change = ReactionRemoved
			return tx.Delete(&existing).Error
		default:
			change = ReactionReplaced
			return tx.Model(&existing).Updates(map[string]interface{}{
				"emoji":      emoji,
				"updated_at": time.Now(),
			}).Error
		}
	})
	if err != nil {
		return "", err
	}
	return change, nil
}

// ListByMessage returns a message's reactions in the order members first reacted
func (r *reactionRepository) ListByMessage(ctx context.Context, messageID uint64) ([]domain.MessageReaction, error) {
	var reactions []domain.MessageReaction
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC, id ASC").
		Find(&reactions).Error
	return reactions, err
}
