package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a private message between two users.
type Message struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SenderID    uint      `json:"sender_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	Body        string    `json:"body" gorm:"size:140"`
	Timestamp   time.Time `json:"timestamp" gorm:"index"`
}

func (*Message) entity() {}

func (*Message) SearchDocument() (SearchDocument, bool) { return SearchDocument{}, false }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}

type SendMessageRequest struct {
	Message string `json:"message" form:"message" validate:"required,min=1,max=140"`
}
