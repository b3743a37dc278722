package handler

import (
	"net/http"
	"time"

	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/middleware"
	"github.com/damoang/angple-messenger/pkg/storage"
	"github.com/gin-gonic/gin"
)

// AttachmentResponse is what the client passes back on send
type AttachmentResponse struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// AttachmentHandler resolves uploads to attachment URLs
type AttachmentHandler struct {
	uploader storage.Uploader
	maxBytes int64
}

// NewAttachmentHandler creates a new AttachmentHandler. uploader may be nil when storage is disabled.
func NewAttachmentHandler(uploader storage.Uploader, maxBytes int64) *AttachmentHandler {
	return &AttachmentHandler{uploader: uploader, maxBytes: maxBytes}
}

// Upload handles POST /messages/attachments
// @Summary 첨부파일 업로드
// @Description 업로드 후 받은 url과 type을 메시지 전송에 사용합니다
// @Tags messages
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "첨부 파일"
// @Success 201 {object} common.APIResponse{data=AttachmentResponse}
// @Failure 413 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Router /messages/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	if h.uploader == nil {
		respondMessage(c, http.StatusServiceUnavailable, "attachment.disabled", nil)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "attachment.file_required", err)
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		respondMessage(c, http.StatusRequestEntityTooLarge, "attachment.too_large", nil, h.maxBytes>>20)
		return
	}

	src, err := file.Open()
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "attachment.unreadable", err)
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.GenerateKey("attachments/"+middleware.GetUserID(c), file.Filename, time.Now().UTC())
	result, err := h.uploader.Upload(c.Request.Context(), key, src, contentType, file.Size)
	if err != nil {
		respondMessage(c, http.StatusBadGateway, "attachment.upload_failed", err)
		return
	}

	common.CreatedResponse(c, AttachmentResponse{
		URL:  result.URL,
		Type: storage.AttachmentTypeFor(contentType),
		Size: result.Size,
	})
}
