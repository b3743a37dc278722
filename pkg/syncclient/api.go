package syncclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// UserSummary is the public profile shown next to a conversation
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	RoleLabel   string `json:"role_label,omitempty"`
}

// Conversation is one inbox row
type Conversation struct {
	LastMessageTime    *time.Time  `json:"last_message_time,omitempty"`
	OtherParticipant   UserSummary `json:"other_participant"`
	LastMessagePreview string      `json:"last_message_preview"`
	UpdatedAt          time.Time   `json:"updated_at"`
	ConversationID     uint64      `json:"conversation_id"`
	UnreadCount        int         `json:"unread_count"`
}

// Reaction is the per-emoji summary of a message
type Reaction struct {
	Emoji   string   `json:"emoji"`
	UserIDs []string `json:"user_ids"`
	Count   int      `json:"count"`
	Mine    bool     `json:"mine"`
}

// ReplyPreview is the quoted parent of a reply
type ReplyPreview struct {
	SenderID  string `json:"sender_id"`
	Content   string `json:"content"`
	ID        uint64 `json:"id"`
	IsDeleted bool   `json:"is_deleted"`
}

// Message is a server-confirmed timeline message as seen by the caller
type Message struct {
	CreatedAt      time.Time     `json:"created_at"`
	ReplyTo        *ReplyPreview `json:"reply_to,omitempty"`
	SenderID       string        `json:"sender_id"`
	Direction      string        `json:"direction"`
	Content        string        `json:"content"`
	AttachmentURL  string        `json:"attachment_url,omitempty"`
	AttachmentType string        `json:"attachment_type,omitempty"`
	Reactions      []Reaction    `json:"reactions"`
	ID             uint64        `json:"id"`
	ConversationID uint64        `json:"conversation_id"`
	IsDeleted      bool          `json:"is_deleted"`
}

// ConversationDetail is the full timeline of one conversation
type ConversationDetail struct {
	OtherParticipant UserSummary `json:"other_participant"`
	Messages         []Message   `json:"messages"`
	ConversationID   uint64      `json:"conversation_id"`
}

// SendRequest is the body of POST /messages
type SendRequest struct {
	ReplyToID      *uint64 `json:"reply_to_id,omitempty"`
	RecipientID    string  `json:"recipient_id,omitempty"`
	Content        string  `json:"content"`
	AttachmentURL  string  `json:"attachment_url,omitempty"`
	AttachmentType string  `json:"attachment_type,omitempty"`
	ConversationID uint64  `json:"conversation_id,omitempty"`
}

// SendResult is the confirmed message of a send
type SendResult struct {
	Message        Message `json:"message"`
	ConversationID uint64  `json:"conversation_id"`
}

// ReactionResult is the summary returned by a react toggle
type ReactionResult struct {
	Reactions []Reaction `json:"reactions"`
	MessageID uint64     `json:"message_id"`
}

// API is the messaging server as seen by the sync engine
type API interface {
	ListConversations(ctx context.Context) ([]Conversation, error)
	StartConversation(ctx context.Context, targetUserID string) (uint64, error)
	OpenConversation(ctx context.Context, conversationID uint64) (*ConversationDetail, error)
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
	React(ctx context.Context, messageID uint64, emoji string) (*ReactionResult, error)
	Unsend(ctx context.Context, messageID uint64) error
	UserSummary(ctx context.Context, userID string) (*UserSummary, error)
}

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("messaging api: %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("messaging api: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// HTTPAPI talks to the /api/v1 surface with a bearer token
type HTTPAPI struct {
	client *resty.Client
}

// NewHTTPAPI creates an HTTPAPI. baseURL is the server root, e.g. http://localhost:8090
func NewHTTPAPI(baseURL, token string) *HTTPAPI {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/api/v1").
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "angple-messenger-syncclient/1.0").
		SetTimeout(10 * time.Second)
	return &HTTPAPI{client: client}
}

func call[T any](ctx context.Context, c *resty.Client, method, path string, body interface{}) (T, error) {
	var result envelope[T]
	req := c.R().SetContext(ctx).SetResult(&result).SetError(&result)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode()}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		var zero T
		return zero, apiErr
	}
	return result.Data, nil
}

func (a *HTTPAPI) ListConversations(ctx context.Context) ([]Conversation, error) {
	return call[[]Conversation](ctx, a.client, http.MethodGet, "/conversations", nil)
}

func (a *HTTPAPI) StartConversation(ctx context.Context, targetUserID string) (uint64, error) {
	res, err := call[struct {
		ConversationID uint64 `json:"conversation_id"`
	}](ctx, a.client, http.MethodPost, "/conversations", map[string]string{"target_user_id": targetUserID})
	return res.ConversationID, err
}

func (a *HTTPAPI) OpenConversation(ctx context.Context, conversationID uint64) (*ConversationDetail, error) {
	detail, err := call[ConversationDetail](ctx, a.client, http.MethodGet,
		fmt.Sprintf("/conversations/%d/messages", conversationID), nil)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (a *HTTPAPI) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	res, err := call[SendResult](ctx, a.client, http.MethodPost, "/messages", req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *HTTPAPI) React(ctx context.Context, messageID uint64, emoji string) (*ReactionResult, error) {
	res, err := call[ReactionResult](ctx, a.client, http.MethodPost,
		fmt.Sprintf("/messages/%d/reactions", messageID), map[string]string{"emoji": emoji})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *HTTPAPI) Unsend(ctx context.Context, messageID uint64) error {
	_, err := call[struct{}](ctx, a.client, http.MethodDelete, fmt.Sprintf("/messages/%d", messageID), nil)
	return err
}

func (a *HTTPAPI) UserSummary(ctx context.Context, userID string) (*UserSummary, error) {
	res, err := call[UserSummary](ctx, a.client, http.MethodGet, "/users/"+url.PathEscape(userID)+"/summary", nil)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
