package handler

import (
	"net/http"

	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/domain"
	"github.com/damoang/angple-messenger/internal/middleware"
	"github.com/damoang/angple-messenger/internal/service"
	"github.com/gin-gonic/gin"
)

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	service service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Send handles POST /messages
// @Summary 메시지 보내기
// @Description recipient_id 또는 conversation_id 중 하나가 필요합니다
// @Tags messages
// @Accept json
// @Produce json
// @Param request body domain.SendMessageRequest true "메시지"
// @Success 201 {object} common.APIResponse{data=domain.SendMessageResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "error.validation", err)
		return
	}

	result, err := h.service.Send(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	common.CreatedResponse(c, result)
}

// React handles POST /messages/:id/reactions
// @Summary 메시지 반응
// @Description 같은 이모지를 다시 보내면 반응이 취소됩니다
// @Tags messages
// @Accept json
// @Produce json
// @Param id path int true "메시지 ID"
// @Param request body domain.ReactRequest true "이모지"
// @Success 200 {object} common.APIResponse{data=domain.ReactionResult}
// @Router /messages/{id}/reactions [post]
func (h *MessageHandler) React(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req domain.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "dm.emoji_required", err)
		return
	}

	result, err := h.service.React(c.Request.Context(), id, middleware.GetUserID(c), req.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Unsend handles DELETE /messages/:id
// @Summary 메시지 보내기 취소
// @Tags messages
// @Param id path int true "메시지 ID"
// @Success 204
// @Router /messages/{id} [delete]
func (h *MessageHandler) Unsend(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Unsend(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
