package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a short text published to one group.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"size:140"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	GroupID   uint      `json:"group_id" gorm:"index"`
	Comments  []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

func (*Post) entity() {}

func (*Post) SearchDocument() (SearchDocument, bool) { return SearchDocument{}, false }

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	return nil
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Text string `json:"text" form:"text" validate:"required,min=1,max=140"`
}
