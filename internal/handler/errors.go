package handler

import (
	"errors"
	"net/http"

	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/pkg/ginutil"
	"github.com/damoang/angple-messenger/pkg/i18n"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error to a status and a localized generic message.
// The error itself only reaches the request log.
func respondError(c *gin.Context, err error) {
	status := common.StatusFor(err)

	var key string
	switch {
	case errors.Is(err, common.ErrEmptyMessage):
		key = "dm.empty_message"
	case errors.Is(err, common.ErrSelfConversation):
		key = "dm.self_conversation"
	case errors.Is(err, common.ErrConversationNotFound):
		key = "dm.conversation_not_found"
	case errors.Is(err, common.ErrMessageNotFound):
		key = "dm.message_not_found"
	case errors.Is(err, common.ErrUserNotFound):
		key = "dm.user_not_found"
	default:
		switch status {
		case http.StatusUnauthorized:
			key = "error.unauthorized"
		case http.StatusBadRequest:
			key = "error.bad_request"
		case http.StatusForbidden:
			key = "error.forbidden"
		case http.StatusNotFound:
			key = "error.not_found"
		default:
			key = "error.internal"
		}
	}

	respondMessage(c, status, key, err)
}

// respondMessage writes an error envelope with the message for key in the caller's language
func respondMessage(c *gin.Context, status int, key string, err error, args ...interface{}) {
	locale := i18n.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
	common.ErrorResponse(c, status, i18n.Default().T(locale, key, args...), err)
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := ginutil.ParamUint64(c, name)
	if err != nil || id == 0 {
		respondMessage(c, http.StatusBadRequest, "error.invalid_id", err)
		return 0, false
	}
	return id, true
}
