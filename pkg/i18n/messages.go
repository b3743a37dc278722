package i18n

// DefaultMessages returns built-in translations for all supported locales
func DefaultMessages() map[Locale]map[string]string {
	return map[Locale]map[string]string{
		LocaleKo: koMessages,
		LocaleEn: enMessages,
		LocaleJa: jaMessages,
	}
}

var koMessages = map[string]string{
	"error.not_found":         "찾을 수 없습니다",
	"error.unauthorized":      "로그인이 필요합니다",
	"error.forbidden":         "접근 권한이 없습니다",
	"error.bad_request":       "요청이 올바르지 않습니다",
	"error.internal":          "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해 주세요",
	"error.too_many_requests": "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요",
	"error.validation":        "요청 형식이 올바르지 않습니다",
	"error.invalid_id":        "잘못된 ID입니다",
	"error.invalid_param":     "%s 값이 올바르지 않습니다",

	"dm.empty_message":          "메시지 내용을 입력해 주세요",
	"dm.self_conversation":      "자기 자신과는 대화할 수 없습니다",
	"dm.conversation_not_found": "대화를 찾을 수 없습니다",
	"dm.message_not_found":      "메시지를 찾을 수 없습니다",
	"dm.user_not_found":         "사용자를 찾을 수 없습니다",
	"dm.emoji_required":         "이모지를 선택해 주세요",

	"attachment.disabled":      "첨부파일 업로드를 사용할 수 없습니다",
	"attachment.file_required": "파일을 선택해 주세요",
	"attachment.too_large":     "파일이 너무 큽니다 (최대 %dMB)",
	"attachment.unreadable":    "파일을 읽을 수 없습니다",
	"attachment.upload_failed": "파일 업로드에 실패했습니다",
}

var enMessages = map[string]string{
	"error.not_found":         "Not found",
	"error.unauthorized":      "Authentication required",
	"error.forbidden":         "Access denied",
	"error.bad_request":       "Bad request",
	"error.internal":          "Something went wrong. Please try again later",
	"error.too_many_requests": "Too many requests. Please try again later",
	"error.validation":        "Malformed request body",
	"error.invalid_id":        "Invalid ID",
	"error.invalid_param":     "Invalid value for %s",

	"dm.empty_message":          "Please enter a message",
	"dm.self_conversation":      "You cannot start a conversation with yourself",
	"dm.conversation_not_found": "Conversation not found",
	"dm.message_not_found":      "Message not found",
	"dm.user_not_found":         "User not found",
	"dm.emoji_required":         "Please pick an emoji",

	"attachment.disabled":      "Attachment upload is not available",
	"attachment.file_required": "Please choose a file",
	"attachment.too_large":     "File is too large (max %dMB)",
	"attachment.unreadable":    "The file could not be read",
	"attachment.upload_failed": "File upload failed",
}

var jaMessages = map[string]string{
	"error.not_found":         "見つかりません",
	"error.unauthorized":      "ログインが必要です",
	"error.forbidden":         "アクセス権限がありません",
	"error.bad_request":       "リクエストが正しくありません",
	"error.internal":          "一時的なエラーが発生しました。しばらくしてから再度お試しください",
	"error.too_many_requests": "リクエストが多すぎます。しばらくしてから再度お試しください",

	"dm.empty_message":          "メッセージを入力してください",
	"dm.self_conversation":      "自分自身とは会話できません",
	"dm.conversation_not_found": "会話が見つかりません",
	"dm.message_not_found":      "メッセージが見つかりません",
	"dm.user_not_found":         "ユーザーが見つかりません",
}
