package service

import (
	"context"

	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/domain"
	"github.com/damoang/angple-messenger/internal/repository"
)

// NotificationList is the notification inbox of a member
type NotificationList struct {
	Items       []domain.Notification `json:"items"`
	UnreadCount int64                 `json:"unread_count"`
}

// NotificationService handles notification business logic
type NotificationService struct {
	repo *repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// GetList returns the newest notifications with the unread total
func (s *NotificationService) GetList(ctx context.Context, memberID string, limit int) (*NotificationList, error) {
	if memberID == "" {
		return nil, common.ErrUnauthorized
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, err := s.repo.GetList(ctx, memberID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.GetUnreadCount(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Items: items, UnreadCount: unread}, nil
}
