package repository

import (
	"context"
	"time"

	"github.com/damoang/angple-messenger/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository handles notification data operations
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(n).Error
}

// GetUnreadCount returns the number of unread notifications for a member
func (r *NotificationRepository) GetUnreadCount(ctx context.Context, memberID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("mb_id = ? AND is_read = ?", memberID, false).
		Count(&count).Error
	return count, err
}

// GetList returns the newest notifications of a member. Alerts for messages
// that have since been unsent show the placeholder instead of the snippet.
func (r *NotificationRepository) GetList(ctx context.Context, memberID string, limit int) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := r.db.WithContext(ctx).
		Where("mb_id = ?", memberID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	messageIDs := make([]uint64, 0, len(notifications))
	for _, n := range notifications {
		if n.MessageID != 0 {
			messageIDs = append(messageIDs, n.MessageID)
		}
	}
	if len(messageIDs) == 0 {
		return notifications, nil
	}

	var unsent []uint64
	err = r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("id IN ? AND is_deleted = ?", messageIDs, true).
		Pluck("id", &unsent).Error
	if err != nil {
		return nil, err
	}
	deleted := make(map[uint64]struct{}, len(unsent))
	for _, id := range unsent {
		deleted[id] = struct{}{}
	}
	for i := range notifications {
		if _, ok := deleted[notifications[i].MessageID]; ok {
			notifications[i].Content = domain.UnsentPlaceholder
		}
	}
	return notifications, nil
}

// redactNotifications replaces the stored snippet of every alert about messageID
func redactNotifications(tx *gorm.DB, messageID uint64) error {
	return tx.Model(&domain.Notification{}).
		Where("message_id = ?", messageID).
		Update("content", domain.UnsentPlaceholder).Error
}
