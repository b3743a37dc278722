package service

import (
	"context"
	"testing"

	"github.com/damoang/angple-messenger/internal/database"
	"github.com/damoang/angple-messenger/internal/domain"
	"github.com/damoang/angple-messenger/internal/migration"
	"github.com/damoang/angple-messenger/internal/notify"
	"github.com/damoang/angple-messenger/internal/repository"
	pkgcache "github.com/damoang/angple-messenger/pkg/cache"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Mocks ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Dispatch(n notify.Notification) bool {
	return m.Called(n).Bool(0)
}

type mockHinter struct {
	mock.Mock
}

func (m *mockHinter) ConversationUpdated(memberID string, conversationID uint64) {
	m.Called(memberID, conversationID)
}

// --- Fixture ---

type fixture struct {
	db            *gorm.DB
	conversations ConversationService
	messages      MessageService
	members       MemberService
	notifier      *mockNotifier
	hinter        *mockHinter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))
	members := NewMemberService(repository.NewMemberRepository(db), pkgcache.NewService(nil, 0))
	require.NoError(t, migration.SeedMembers(context.Background(), members, []domain.Member{
		{ID: "alice", Nickname: "Alice", RoleLabel: "Recruiter", Email: "alice@example.com", NotifyMessages: true},
		{ID: "bob", Nickname: "Bob", RoleLabel: "Candidate", Email: "bob@example.com", NotifyMessages: true},
		{ID: "carol", Nickname: "Carol", RoleLabel: "Candidate"},
	}))

	notifier := new(mockNotifier)
	notifier.On("Dispatch", mock.Anything).Return(true).Maybe()
	hinter := new(mockHinter)
	hinter.On("ConversationUpdated", mock.Anything, mock.Anything).Return().Maybe()

	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	conversations := NewConversationService(convRepo, msgRepo, members)
	messages := NewMessageService(
		msgRepo,
		convRepo,
		repository.NewReactionRepository(db),
		conversations,
		notifier,
		hinter,
		MessageOptions{MaxContentLength: 20, DeepLinkBase: "https://angple.com/"},
	)

	return &fixture{
		db:            db,
		conversations: conversations,
		messages:      messages,
		members:       members,
		notifier:      notifier,
		hinter:        hinter,
	}
}

func (f *fixture) send(t *testing.T, from, to, content string) *domain.SendMessageResponse {
	t.Helper()
	resp, err := f.messages.Send(context.Background(), from, &domain.SendMessageRequest{RecipientID: to, Content: content})
	require.NoError(t, err)
	return resp
}

func (f *fixture) unread(t *testing.T, conversationID uint64, userID string) bool {
	t.Helper()
	var p domain.ConversationParticipant
	require.NoError(t, f.db.Where("conversation_id = ? AND user_id = ?", conversationID, userID).First(&p).Error)
	return p.HasUnread
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
