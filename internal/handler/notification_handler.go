package handler

import (
	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/middleware"
	"github.com/damoang/angple-messenger/internal/service"
	"github.com/damoang/angple-messenger/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetList handles GET /notifications
// @Summary 알림 목록
// @Tags notifications
// @Produce json
// @Param limit query int false "최대 개수 (기본 20)"
// @Success 200 {object} common.APIResponse{data=service.NotificationList}
// @Router /notifications [get]
func (h *NotificationHandler) GetList(c *gin.Context) {
	limit := ginutil.QueryInt(c, "limit", 20, 1, 100)

	result, err := h.service.GetList(c.Request.Context(), middleware.GetUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, result, &common.Meta{Total: result.UnreadCount})
}
