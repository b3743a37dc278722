package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/domain"
	"github.com/damoang/angple-messenger/internal/repository"
	pkgcache "github.com/damoang/angple-messenger/pkg/cache"
	pkglogger "github.com/damoang/angple-messenger/pkg/logger"
	"gorm.io/gorm"
)

// MemberService member directory lookups for chat headers and notifications
type MemberService interface {
	GetUserSummary(ctx context.Context, userID string) (*domain.UserSummary, error)
	GetUserSummaries(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error)
	FindMember(ctx context.Context, userID string) (*domain.Member, error)
	SyncMember(ctx context.Context, member *domain.Member) error
}

type memberService struct {
	repo  repository.MemberRepository
	cache pkgcache.Service
}

// NewMemberService creates a new MemberService. cache may be nil.
func NewMemberService(repo repository.MemberRepository, cache pkgcache.Service) MemberService {
	return &memberService{repo: repo, cache: cache}
}

// GetUserSummary returns the cached summary, falling back to the directory
func (s *memberService) GetUserSummary(ctx context.Context, userID string) (*domain.UserSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id: %w", common.ErrInvalidInput)
	}

	if s.cache != nil && s.cache.IsAvailable() {
		var cached domain.UserSummary
		if err := s.cache.GetUserSummary(ctx, userID, &cached); err == nil {
			return &cached, nil
		}
	}

	member, err := s.FindMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := member.ToSummary()

	if s.cache != nil && s.cache.IsAvailable() {
		if err := s.cache.SetUserSummary(ctx, userID, summary); err != nil {
			logger := pkglogger.GetLogger()
			logger.Warn().Err(err).Str("user_id", userID).Msg("user summary cache write failed")
		}
	}
	return &summary, nil
}

// GetUserSummaries resolves many summaries at once; unknown ids get a bare summary
func (s *memberService) GetUserSummaries(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error) {
	members, err := s.repo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	result := make(map[string]domain.UserSummary, len(userIDs))
	for _, id := range userIDs {
		if m, ok := members[id]; ok {
			result[id] = m.ToSummary()
			continue
		}
		result[id] = domain.UserSummary{ID: id, DisplayName: id}
	}
	return result, nil
}

// FindMember loads a directory entry
func (s *memberService) FindMember(ctx context.Context, userID string) (*domain.Member, error) {
	member, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find member %s: %w", userID, err)
	}
	return member, nil
}

// SyncMember upserts a directory entry and drops its cached summary
func (s *memberService) SyncMember(ctx context.Context, member *domain.Member) error {
	if member == nil || member.ID == "" {
		return fmt.Errorf("member id: %w", common.ErrInvalidInput)
	}
	if err := s.repo.Upsert(ctx, member); err != nil {
		return fmt.Errorf("upsert member %s: %w", member.ID, err)
	}

	if s.cache != nil && s.cache.IsAvailable() {
		if err := s.cache.InvalidateUserSummary(ctx, member.ID); err != nil {
			logger := pkglogger.GetLogger()
			logger.Warn().Err(err).Str("user_id", member.ID).Msg("user summary cache invalidation failed")
		}
	}
	return nil
}
