package models

import (
	"strings"
	"time"
)

// GroupIndex is the text index holding group documents.
const GroupIndex = "groups"

type Group struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:120;uniqueIndex;not null"`
}

func (*Group) entity() {}

// SearchDocument mirrors the group's name into the text index.
func (g *Group) SearchDocument() (SearchDocument, bool) {
	return SearchDocument{
		Index:  GroupIndex,
		ID:     g.ID,
		Fields: map[string]interface{}{"name": g.Name},
	}, true
}

// Membership joins users and groups. The composite key makes joining idempotent.
type Membership struct {
	GroupID   uint      `json:"group_id" gorm:"primaryKey;autoIncrement:false"`
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (*Membership) entity() {}

func (*Membership) SearchDocument() (SearchDocument, bool) { return SearchDocument{}, false }

type CreateGroupRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=120"`
}

func (r *CreateGroupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

type AddMemberRequest struct {
	UserID  uint `query:"userId" json:"user_id" form:"userId" validate:"required"`
	GroupID uint `query:"groupId" json:"group_id" form:"groupId" validate:"required"`
}
