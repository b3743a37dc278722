package handler

import (
	"net/http"
	"time"

	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/domain"
	"github.com/damoang/angple-messenger/internal/middleware"
	"github.com/damoang/angple-messenger/internal/service"
	"github.com/damoang/angple-messenger/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// ConversationHandler handles conversation HTTP requests
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// List handles GET /conversations
// @Summary 대화 목록
// @Tags conversations
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.ConversationSummary}
// @Router /conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, items, &common.Meta{Total: int64(len(items))})
}

// Start handles POST /conversations
// @Summary 대화 시작
// @Description 상대와의 대화가 이미 있으면 그 대화를 돌려줍니다
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body domain.StartConversationRequest true "상대 사용자"
// @Success 200 {object} common.APIResponse{data=domain.StartConversationResponse}
// @Router /conversations [post]
func (h *ConversationHandler) Start(c *gin.Context) {
	var req domain.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "error.validation", err)
		return
	}

	id, err := h.service.Start(c.Request.Context(), middleware.GetUserID(c), req.TargetUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, domain.StartConversationResponse{ConversationID: id}, nil)
}

// Open handles GET /conversations/:id/messages
// @Summary 대화 열기
// @Description 메시지 타임라인을 돌려주고 읽음 처리합니다
// @Tags conversations
// @Produce json
// @Param id path int true "대화 ID"
// @Param after_id query int false "이 ID 이후 메시지만"
// @Success 200 {object} common.APIResponse{data=domain.ConversationDetail}
// @Failure 403 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /conversations/{id}/messages [get]
func (h *ConversationHandler) Open(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	afterID, err := ginutil.QueryUint64(c, "after_id")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "error.invalid_param", err, "after_id")
		return
	}

	detail, err := h.service.Open(c.Request.Context(), id, middleware.GetUserID(c), afterID)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, detail, &common.Meta{
		Total:      int64(len(detail.Messages)),
		ServerTime: time.Now().Unix(),
	})
}
