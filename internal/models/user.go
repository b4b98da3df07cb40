package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	Username            string     `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email               string     `json:"email" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash        string     `json:"-" gorm:"size:128"` // bcrypt hash, never the plaintext
	LastMessageReadTime *time.Time `json:"last_message_read_time,omitempty"`
}

func (*User) entity() {}

func (*User) SearchDocument() (SearchDocument, bool) { return SearchDocument{}, false }

// SetPassword stores a salted hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
// A user without a hash never verifies.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UserCompact is the public shape used in listings.
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username}
}

type RegisterRequest struct {
	Username  string `json:"username" form:"username" validate:"required,max=64"`
	Email     string `json:"email" form:"email" validate:"required,email,max=120"`
	Password  string `json:"password" form:"password" validate:"required"`
	Password2 string `json:"password2" form:"password2" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Username   string `json:"username" form:"username" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

// SessionClaims are the claims carried by the signed session cookie.
type SessionClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
