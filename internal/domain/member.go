package domain

// Member is the read-only directory entry of a user (dm_members)
type Member struct {
	ID             string `gorm:"column:mb_id;primaryKey;type:varchar(100)" json:"mb_id"`
	Nickname       string `gorm:"column:nickname;type:varchar(255)" json:"nickname"`
	AvatarURL      string `gorm:"column:avatar_url;type:varchar(1000)" json:"avatar_url,omitempty"`
	RoleLabel      string `gorm:"column:role_label;type:varchar(50)" json:"role_label,omitempty"`
	Email          string `gorm:"column:email;type:varchar(255)" json:"-"`
	NotifyMessages bool   `gorm:"column:notify_messages;not null" json:"-"`
}

func (Member) TableName() string {
	return "dm_members"
}

// DisplayName falls back to the member id when no nickname is set
func (m *Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.ID
}

// WantsMessageNotifications reports whether a message alert can reach the member
func (m *Member) WantsMessageNotifications() bool {
	return m.NotifyMessages && m.Email != ""
}

// UserSummary is the chat header view of a member
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	RoleLabel   string `json:"role_label,omitempty"`
}

// ToSummary converts Member to UserSummary
func (m *Member) ToSummary() UserSummary {
	return UserSummary{
		ID:          m.ID,
		DisplayName: m.DisplayName(),
		AvatarURL:   m.AvatarURL,
		RoleLabel:   m.RoleLabel,
	}
}
