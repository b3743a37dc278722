package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/domain"
	"github.com/damoang/angple-messenger/internal/repository"
	pkglogger "github.com/damoang/angple-messenger/pkg/logger"
	"gorm.io/gorm"
)

// ConversationService conversation lifecycle and read state
type ConversationService interface {
	// Resolve finds or creates the conversation of the unordered pair {userA, userB}
	Resolve(ctx context.Context, userA, userB string, fromSend bool) (uint64, error)
	Start(ctx context.Context, callerID, targetID string) (uint64, error)
	List(ctx context.Context, callerID string) ([]domain.ConversationSummary, error)
	// Open returns the timeline and clears the reader's unread flag
	Open(ctx context.Context, conversationID uint64, readerID string, afterID uint64) (*domain.ConversationDetail, error)
}

type conversationService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	members  MemberService
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	members MemberService,
) ConversationService {
	return &conversationService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		members:  members,
	}
}

func (s *conversationService) Resolve(ctx context.Context, userA, userB string, fromSend bool) (uint64, error) {
	if userA == "" {
		return 0, common.ErrUnauthorized
	}
	if userB == "" {
		return 0, fmt.Errorf("target user: %w", common.ErrInvalidInput)
	}
	if userA == userB {
		return 0, common.ErrSelfConversation
	}
	if _, err := s.members.FindMember(ctx, userB); err != nil {
		return 0, err
	}

	pairKey := domain.PairKey(userA, userB)
	conv, err := s.findPair(ctx, pairKey, userA, userB)
	if err == nil {
		return conv.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	conv = &domain.Conversation{
		PairKey: pairKey,
		Participants: []domain.ConversationParticipant{
			{UserID: userA},
			{UserID: userB, HasUnread: fromSend},
		},
	}
	err = s.convRepo.CreateWithParticipants(ctx, conv)
	switch {
	case err == nil:
		conversationsCreated.Inc()
		return conv.ID, nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// lost a concurrent create of the same pair
		conversationRaceRecovered.Inc()
		winner, lookupErr := s.findPair(ctx, pairKey, userA, userB)
		if lookupErr != nil {
			return 0, fmt.Errorf("re-resolve conversation after duplicate key: %w", lookupErr)
		}
		return winner.ID, nil
	default:
		return 0, fmt.Errorf("create conversation: %w", err)
	}
}

// findPair looks up by pair key and checks that the participant set is exactly {a, b}
func (s *conversationService) findPair(ctx context.Context, pairKey, a, b string) (*domain.Conversation, error) {
	conv, err := s.convRepo.FindByPairKey(ctx, pairKey)
	if err != nil {
		return nil, err
	}
	if !conv.IsPair(a, b) {
		return nil, fmt.Errorf("conversation %d: participants do not match pair key", conv.ID)
	}
	return conv, nil
}

func (s *conversationService) Start(ctx context.Context, callerID, targetID string) (uint64, error) {
	return s.Resolve(ctx, callerID, targetID, false)
}

func (s *conversationService) List(ctx context.Context, callerID string) ([]domain.ConversationSummary, error) {
	if callerID == "" {
		return nil, common.ErrUnauthorized
	}

	convs, err := s.convRepo.ListForMember(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if len(convs) == 0 {
		return []domain.ConversationSummary{}, nil
	}

	ids := make([]uint64, 0, len(convs))
	others := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
		others = append(others, c.OtherParticipant(callerID))
	}

	lastMessages, err := s.msgRepo.LastMessages(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load last messages: %w", err)
	}
	summaries, err := s.members.GetUserSummaries(ctx, others)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ConversationSummary, 0, len(convs))
	for i, c := range convs {
		item := domain.ConversationSummary{
			ConversationID:   c.ID,
			OtherParticipant: summaries[others[i]],
			UpdatedAt:        c.UpdatedAt,
		}
		for _, p := range c.Participants {
			if p.UserID == callerID && p.HasUnread {
				item.UnreadCount = 1
			}
		}
		if last, ok := lastMessages[c.ID]; ok {
			createdAt := last.CreatedAt
			item.LastMessagePreview = last.Preview()
			item.LastMessageTime = &createdAt
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *conversationService) Open(ctx context.Context, conversationID uint64, readerID string, afterID uint64) (*domain.ConversationDetail, error) {
	if readerID == "" {
		return nil, common.ErrUnauthorized
	}

	conv, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(readerID) {
		return nil, common.ErrAccessDenied
	}

	if err := s.convRepo.ClearUnread(ctx, conv.ID, readerID); err != nil {
		return nil, fmt.Errorf("clear unread: %w", err)
	}

	messages, err := s.msgRepo.ListByConversation(ctx, conv.ID, afterID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	parents, err := s.replyParents(ctx, messages)
	if err != nil {
		return nil, err
	}

	otherID := conv.OtherParticipant(readerID)
	other, err := s.members.GetUserSummary(ctx, otherID)
	if err != nil {
		logger := pkglogger.GetLogger()
		logger.Warn().Err(err).Str("user_id", otherID).Msg("participant summary unavailable")
		other = &domain.UserSummary{ID: otherID, DisplayName: otherID}
	}

	detail := &domain.ConversationDetail{
		ConversationID:   conv.ID,
		OtherParticipant: *other,
		Messages:         make([]domain.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		var parent *domain.Message
		if m.ReplyToID != nil {
			parent = parents[*m.ReplyToID]
		}
		detail.Messages = append(detail.Messages, m.ToResponse(readerID, parent))
	}
	return detail, nil
}

func (s *conversationService) loadConversation(ctx context.Context, id uint64) (*domain.Conversation, error) {
	conv, err := s.convRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation %d: %w", id, err)
	}
	return conv, nil
}

// replyParents resolves quoted messages, reusing the page when possible
func (s *conversationService) replyParents(ctx context.Context, messages []*domain.Message) (map[uint64]*domain.Message, error) {
	byID := make(map[uint64]*domain.Message, len(messages))
	for _, m := range messages {
		byID[m.ID] = m
	}

	var missing []uint64
	for _, m := range messages {
		if m.ReplyToID == nil {
			continue
		}
		if _, ok := byID[*m.ReplyToID]; !ok {
			missing = append(missing, *m.ReplyToID)
		}
	}
	if len(missing) == 0 {
		return byID, nil
	}

	fetched, err := s.msgRepo.FindByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("load reply parents: %w", err)
	}
	for id, m := range fetched {
		byID[id] = m
	}
	return byID, nil
}
