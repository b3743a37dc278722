package repository

import (
	"context"

	"github.com/damoang/angple-messenger/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberRepository member directory data access interface
type MemberRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Member, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Member, error)
	Upsert(ctx context.Context, member *domain.Member) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// FindByID finds a member by mb_id
func (r *memberRepository) FindByID(ctx context.Context, id string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).Where("mb_id = ?", id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByIDs loads members keyed by mb_id
func (r *memberRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Member, error) {
	result := make(map[string]*domain.Member, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var members []*domain.Member
	if err := r.db.WithContext(ctx).Where("mb_id IN ?", ids).Find(&members).Error; err != nil {
		return nil, err
	}
	for _, m := range members {
		result[m.ID] = m
	}
	return result, nil
}

// Upsert inserts or refreshes a directory entry (used for seeding and sync jobs)
func (r *memberRepository) Upsert(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mb_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"nickname", "avatar_url", "role_label", "email", "notify_messages"}),
	}).Create(member).Error
}
