package handler

import (
	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/service"
	"github.com/gin-gonic/gin"
)

// MemberHandler serves member directory lookups
type MemberHandler struct {
	service service.MemberService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(service service.MemberService) *MemberHandler {
	return &MemberHandler{service: service}
}

// GetUserSummary handles GET /users/:id/summary
// @Summary 사용자 요약
// @Tags users
// @Produce json
// @Param id path string true "회원 ID"
// @Success 200 {object} common.APIResponse{data=domain.UserSummary}
// @Failure 404 {object} common.APIResponse
// @Router /users/{id}/summary [get]
func (h *MemberHandler) GetUserSummary(c *gin.Context) {
	summary, err := h.service.GetUserSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, summary, nil)
}
