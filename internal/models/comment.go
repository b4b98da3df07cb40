package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. GroupID always equals the post's group;
// the repository derives it from the post rather than trusting the caller.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"size:140"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	PostID    uint      `json:"post_id" gorm:"index"`
	GroupID   uint      `json:"group_id" gorm:"index"`
}

func (*Comment) entity() {}

func (*Comment) SearchDocument() (SearchDocument, bool) { return SearchDocument{}, false }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	return nil
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	CommentText string `json:"comment_text" form:"commentText" validate:"required,min=1,max=140"`
}
