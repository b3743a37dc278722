package migration

import (
	"context"

	"github.com/damoang/angple-messenger/internal/domain"
	"gorm.io/gorm"
)

// Models lists every table owned by the messenger
func Models() []interface{} {
	return []interface{}{
		&domain.Member{},
		&domain.Conversation{},
		&domain.ConversationParticipant{},
		&domain.Message{},
		&domain.MessageReaction{},
		&domain.Notification{},
	}
}

// Run executes AutoMigrate for the messenger tables.
// Tables that exist are altered in place, never dropped.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// MemberSyncer writes a directory entry and keeps derived caches in step
type MemberSyncer interface {
	SyncMember(ctx context.Context, member *domain.Member) error
}

// SeedMembers upserts directory entries for local development
func SeedMembers(ctx context.Context, members MemberSyncer, seed []domain.Member) error {
	for i := range seed {
		if err := members.SyncMember(ctx, &seed[i]); err != nil {
			return err
		}
	}
	return nil
}

// DevMembers is the local seed used by cmd/migrate -seed
func DevMembers() []domain.Member {
	return []domain.Member{
		{ID: "recruiter1", Nickname: "Dana (Recruiter)", RoleLabel: "Recruiter", Email: "dana@example.com", NotifyMessages: true},
		{ID: "candidate1", Nickname: "Minho", RoleLabel: "Candidate", Email: "minho@example.com", NotifyMessages: true},
		{ID: "candidate2", Nickname: "Sora", RoleLabel: "Candidate"},
	}
}
