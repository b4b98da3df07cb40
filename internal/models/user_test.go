package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPassword(t *testing.T) {
	t.Run("verifies only the last password set", func(t *testing.T) {
		u := &User{Username: "susan"}
		require.NoError(t, u.SetPassword("cat"))
		assert.True(t, u.CheckPassword("cat"))
		assert.False(t, u.CheckPassword("dog"))

		require.NoError(t, u.SetPassword("dog"))
		assert.True(t, u.CheckPassword("dog"))
		assert.False(t, u.CheckPassword("cat"))
	})

	t.Run("never stores the plaintext", func(t *testing.T) {
		u := &User{}
		require.NoError(t, u.SetPassword("hunter2"))
		assert.NotEqual(t, "hunter2", u.PasswordHash)
		assert.NotContains(t, u.PasswordHash, "hunter2")
	})

	t.Run("salts each hash", func(t *testing.T) {
		a, b := &User{}, &User{}
		require.NoError(t, a.SetPassword("same"))
		require.NoError(t, b.SetPassword("same"))
		assert.NotEqual(t, a.PasswordHash, b.PasswordHash)
	})

	t.Run("missing hash fails verification", func(t *testing.T) {
		u := &User{}
		assert.False(t, u.CheckPassword(""))
		assert.False(t, u.CheckPassword("anything"))
	})
}

func TestSearchDocumentDispatch(t *testing.T) {
	entities := []Entity{
		&User{ID: 1}, &Membership{GroupID: 1, UserID: 1}, &Post{ID: 1},
		&Comment{ID: 1}, &Message{ID: 1}, &Notification{ID: 1},
	}
	for _, e := range entities {
		_, ok := e.SearchDocument()
		assert.False(t, ok, "%T must not be searchable", e)
	}

	doc, ok := (&Group{ID: 7, Name: "Chess Club"}).SearchDocument()
	require.True(t, ok)
	assert.Equal(t, GroupIndex, doc.Index)
	assert.Equal(t, uint(7), doc.ID)
	assert.Equal(t, map[string]interface{}{"name": "Chess Club"}, doc.Fields)
}

func TestNotificationView(t *testing.T) {
	ts := time.Unix(1700000000, 500000000).UTC()
	n := &Notification{Name: NotificationUnreadMessageCount, Timestamp: ts, Payload: []byte(`3`)}

	var count int
	require.NoError(t, n.Data(&count))
	assert.Equal(t, 3, count)

	view := n.View()
	assert.Equal(t, NotificationUnreadMessageCount, view.Name)
	assert.JSONEq(t, `3`, string(view.Data))
	assert.InDelta(t, 1700000000.5, view.Timestamp, 1e-6)
}

func TestValidSince(t *testing.T) {
	tests := []struct {
		name string
		sec  float64
		want bool
	}{
		{"zero", 0, true},
		{"now", 1700000000.123456, true},
		{"year 9999", 253402300799, true},
		{"negative", -1, false},
		{"too far ahead", 1e300, false},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
		{"minus inf", math.Inf(-1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSince(tt.sec))
		})
	}
}
