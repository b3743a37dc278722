package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/domain"
	"github.com/damoang/angple-messenger/internal/notify"
	"github.com/damoang/angple-messenger/internal/repository"
	"gorm.io/gorm"
)

const snippetRunes = 100

// Notifier hands a message alert to the out-of-band dispatcher
type Notifier interface {
	Dispatch(n notify.Notification) bool
}

// Hinter tells a member's open clients that a conversation changed
type Hinter interface {
	ConversationUpdated(memberID string, conversationID uint64)
}

// MessageOptions tunes the message service
type MessageOptions struct {
	MaxContentLength int
	DeepLinkBase     string
}

// MessageService send, unsend and react
type MessageService interface {
	Send(ctx context.Context, senderID string, req *domain.SendMessageRequest) (*domain.SendMessageResponse, error)
	Unsend(ctx context.Context, messageID uint64, callerID string) error
	React(ctx context.Context, messageID uint64, userID, emoji string) (*domain.ReactionResult, error)
}

type messageService struct {
	msgRepo       repository.MessageRepository
	convRepo      repository.ConversationRepository
	reactionRepo  repository.ReactionRepository
	conversations ConversationService
	notifier      Notifier
	hinter        Hinter
	opts          MessageOptions
	now           func() time.Time
}

// NewMessageService creates a new MessageService. notifier and hinter may be nil.
func NewMessageService(
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	reactionRepo repository.ReactionRepository,
	conversations ConversationService,
	notifier Notifier,
	hinter Hinter,
	opts MessageOptions,
) MessageService {
	if opts.MaxContentLength <= 0 {
		opts.MaxContentLength = 5000
	}
	opts.DeepLinkBase = strings.TrimRight(opts.DeepLinkBase, "/")

	return &messageService{
		msgRepo:       msgRepo,
		convRepo:      convRepo,
		reactionRepo:  reactionRepo,
		conversations: conversations,
		notifier:      notifier,
		hinter:        hinter,
		opts:          opts,
		now:           time.Now,
	}
}

func (s *messageService) Send(ctx context.Context, senderID string, req *domain.SendMessageRequest) (*domain.SendMessageResponse, error) {
	if senderID == "" {
		return nil, common.ErrUnauthorized
	}

	content := strings.TrimSpace(req.Content)
	attachmentURL := strings.TrimSpace(req.AttachmentURL)
	if content == "" && attachmentURL == "" {
		return nil, common.ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > s.opts.MaxContentLength {
		return nil, fmt.Errorf("content longer than %d characters: %w", s.opts.MaxContentLength, common.ErrInvalidInput)
	}
	attachmentType, err := normalizeAttachmentType(attachmentURL, req.AttachmentType)
	if err != nil {
		return nil, err
	}

	conversationID, recipientID, err := s.target(ctx, senderID, req)
	if err != nil {
		return nil, err
	}

	var parent *domain.Message
	if req.ReplyToID != nil {
		parent, err = s.msgRepo.FindByID(ctx, *req.ReplyToID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && parent.ConversationID != conversationID) {
			return nil, common.ErrMessageNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("find reply parent: %w", err)
		}
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		AttachmentURL:  attachmentURL,
		AttachmentType: attachmentType,
		ReplyToID:      req.ReplyToID,
		CreatedAt:      s.now(),
	}
	if err := s.msgRepo.Append(ctx, msg, recipientID); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	messagesSent.WithLabelValues(labelOrNone(attachmentType)).Inc()

	s.hint(recipientID, conversationID)
	s.notifyRecipient(msg, recipientID)

	return &domain.SendMessageResponse{
		ConversationID: conversationID,
		Message:        msg.ToResponse(senderID, parent),
	}, nil
}

// target resolves the conversation and recipient of a send
func (s *messageService) target(ctx context.Context, senderID string, req *domain.SendMessageRequest) (uint64, string, error) {
	if req.ConversationID != 0 {
		conv, err := s.convRepo.FindByID(ctx, req.ConversationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", common.ErrConversationNotFound
		}
		if err != nil {
			return 0, "", fmt.Errorf("find conversation: %w", err)
		}
		if !conv.HasParticipant(senderID) {
			return 0, "", common.ErrAccessDenied
		}
		recipientID := conv.OtherParticipant(senderID)
		if req.RecipientID != "" && req.RecipientID != recipientID {
			return 0, "", fmt.Errorf("recipient does not belong to conversation: %w", common.ErrInvalidInput)
		}
		return conv.ID, recipientID, nil
	}

	recipientID := strings.TrimSpace(req.RecipientID)
	if recipientID == "" {
		return 0, "", fmt.Errorf("recipient or conversation required: %w", common.ErrInvalidInput)
	}
	conversationID, err := s.conversations.Resolve(ctx, senderID, recipientID, true)
	if err != nil {
		return 0, "", err
	}
	return conversationID, recipientID, nil
}

// notifyRecipient enqueues the alert after commit; failures never reach the sender.
// Recipient preferences and the sender's name are resolved by the dispatcher.
func (s *messageService) notifyRecipient(msg *domain.Message, recipientID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Dispatch(notify.Notification{
		RecipientID:    recipientID,
		SenderID:       msg.SenderID,
		Snippet:        Snippet(msg),
		DeepLink:       s.deepLink(msg.ConversationID),
		ConversationID: msg.ConversationID,
		MessageID:      msg.ID,
	})
}

func (s *messageService) hint(memberID string, conversationID uint64) {
	if s.hinter != nil && memberID != "" {
		s.hinter.ConversationUpdated(memberID, conversationID)
	}
}

// deepLink returns the web URL of a conversation
func (s *messageService) deepLink(conversationID uint64) string {
	return fmt.Sprintf("%s/messages/%d", s.opts.DeepLinkBase, conversationID)
}

// Snippet returns the first runes of the content, or the attachment marker
func Snippet(msg *domain.Message) string {
	if msg.Content == "" {
		return domain.AttachmentMarker
	}
	if utf8.RuneCountInString(msg.Content) <= snippetRunes {
		return msg.Content
	}
	return string([]rune(msg.Content)[:snippetRunes])
}

func (s *messageService) Unsend(ctx context.Context, messageID uint64, callerID string) error {
	if callerID == "" {
		return common.ErrUnauthorized
	}

	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != callerID {
		return common.ErrAccessDenied
	}
	if msg.IsDeleted {
		return nil
	}

	if err := s.msgRepo.SoftDelete(ctx, msg.ID, s.now()); err != nil {
		return fmt.Errorf("unsend message %d: %w", msg.ID, err)
	}
	messagesUnsent.Inc()

	if conv, err := s.convRepo.FindByID(ctx, msg.ConversationID); err == nil {
		s.hint(conv.OtherParticipant(callerID), conv.ID)
	}
	return nil
}

func (s *messageService) React(ctx context.Context, messageID uint64, userID, emoji string) (*domain.ReactionResult, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}

	emoji = strings.TrimSpace(emoji)
	if emoji == "" || len(emoji) > domain.MaxEmojiBytes {
		return nil, fmt.Errorf("emoji: %w", common.ErrInvalidInput)
	}

	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	conv, err := s.convRepo.FindByID(ctx, msg.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if !conv.HasParticipant(userID) {
		return nil, common.ErrAccessDenied
	}
	if msg.IsDeleted {
		return nil, fmt.Errorf("message was unsent: %w", common.ErrInvalidInput)
	}

	change, err := s.reactionRepo.Toggle(ctx, msg.ID, userID, emoji)
	if err != nil {
		return nil, fmt.Errorf("toggle reaction: %w", err)
	}
	reactionChanges.WithLabelValues(string(change)).Inc()

	reactions, err := s.reactionRepo.ListByMessage(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}

	s.hint(conv.OtherParticipant(userID), conv.ID)

	return &domain.ReactionResult{
		MessageID: msg.ID,
		Reactions: domain.SummarizeReactions(reactions, userID),
	}, nil
}

func (s *messageService) findMessage(ctx context.Context, id uint64) (*domain.Message, error) {
	msg, err := s.msgRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find message %d: %w", id, err)
	}
	return msg, nil
}

func normalizeAttachmentType(url, kind string) (string, error) {
	if url == "" {
		return "", nil
	}
	switch kind {
	case "":
		return domain.AttachmentTypeFile, nil
	case domain.AttachmentTypeImage, domain.AttachmentTypeFile, domain.AttachmentTypeInterview:
		return kind, nil
	default:
		return "", fmt.Errorf("attachment type %q: %w", kind, common.ErrInvalidInput)
	}
}

func labelOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
