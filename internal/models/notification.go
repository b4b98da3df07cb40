package models

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// NotificationUnreadMessageCount carries the recipient's unread private message count.
const NotificationUnreadMessageCount = "unread_message_count"

// Notification is a named event for one user. Only the newest per (user, name) is kept.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:128;uniqueIndex:idx_notifications_user_name,priority:2"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_notifications_user_name,priority:1"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	Payload   Payload   `json:"payload"`
}

// Payload is a JSON document stored as JSONB on postgres and TEXT elsewhere.
// A sqlite JSON column has numeric affinity, so scalar documents like 3 would come
// back as integers.
type Payload datatypes.JSON

func (p Payload) Value() (driver.Value, error) {
	return datatypes.JSON(p).Value()
}

func (p *Payload) Scan(value interface{}) error {
	return (*datatypes.JSON)(p).Scan(value)
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return datatypes.JSON(p).MarshalJSON()
}

func (p *Payload) UnmarshalJSON(b []byte) error {
	return (*datatypes.JSON)(p).UnmarshalJSON(b)
}

func (Payload) GormDataType() string {
	return "json"
}

func (Payload) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "TEXT"
}

func (*Notification) entity() {}

func (*Notification) SearchDocument() (SearchDocument, bool) { return SearchDocument{}, false }

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	// the polling cursor is a float of seconds; keep it exactly representable
	n.Timestamp = n.Timestamp.Truncate(time.Microsecond)
	return nil
}

// Data decodes the payload into v.
func (n *Notification) Data(v interface{}) error {
	return json.Unmarshal(n.Payload, v)
}

// UnixTimestamp is the polling cursor handed to clients, in fractional seconds.
func (n *Notification) UnixTimestamp() float64 {
	return float64(n.Timestamp.UnixMicro()) / 1e6
}

// maxSince is 9999-12-31T23:59:59Z, the last cursor a client can meaningfully send.
const maxSince = 253402300799

// ValidSince reports whether sec is a polling cursor SinceFromUnix can convert.
func ValidSince(sec float64) bool {
	return !math.IsNaN(sec) && sec >= 0 && sec <= maxSince
}

// SinceFromUnix turns a polling cursor back into a time. sec must satisfy ValidSince.
func SinceFromUnix(sec float64) time.Time {
	return time.UnixMicro(int64(math.Round(sec * 1e6))).UTC()
}

// NotificationView is the JSON shape returned by the polling endpoint.
type NotificationView struct {
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp"`
}

func (n *Notification) View() NotificationView {
	data := json.RawMessage(n.Payload)
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return NotificationView{Name: n.Name, Data: data, Timestamp: n.UnixTimestamp()}
}
