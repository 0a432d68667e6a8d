package models

import "time"

// Message is a direct message between the admin and a formateur/apprenant.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index:idx_messages_sender" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_receiver" json:"receiver_id"`
	Sender     *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver   *User     `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Message) TableName() string {
	return "messages"
}
