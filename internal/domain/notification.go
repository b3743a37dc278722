package domain

import "time"

// NotificationTypeMessage is the type of direct message alerts
const NotificationTypeMessage = "message"

// Notification represents a user notification inbox row (dm_notifications)
type Notification struct {
	CreatedAt  time.Time `gorm:"column:created_at;index" json:"created_at"`
	MemberID   string    `gorm:"column:mb_id;type:varchar(100);index;not null" json:"member_id"`
	Type       string    `gorm:"column:type;type:varchar(20)" json:"type"`
	Title      string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Content    string    `gorm:"column:content;type:text" json:"content"`
	URL        string    `gorm:"column:url;type:varchar(1000)" json:"url,omitempty"`
	SenderID   string    `gorm:"column:sender_id;type:varchar(100)" json:"sender_id,omitempty"`
	SenderName string    `gorm:"column:sender_name;type:varchar(255)" json:"sender_name,omitempty"`
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageID  uint64    `gorm:"column:message_id;index" json:"message_id,omitempty"`
	IsRead     bool      `gorm:"column:is_read;not null" json:"is_read"`
}

// TableName returns the table name
func (Notification) TableName() string {
	return "dm_notifications"
}
