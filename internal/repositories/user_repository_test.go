package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	store := newTestStore(t)
	users := NewSQLUserRepository(store)
	ctx := context.Background()
	susan := createUser(t, store, "susan")

	t.Run("lookups", func(t *testing.T) {
		got, err := users.GetUserByUsername(ctx, "susan")
		require.NoError(t, err)
		assert.Equal(t, susan.ID, got.ID)
		assert.True(t, got.CheckPassword("secret"))

		got, err = users.GetUserByEmail(ctx, "susan@example.com")
		require.NoError(t, err)
		assert.Equal(t, susan.ID, got.ID)

		_, err = users.GetUserByID(ctx, 999)
		assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	})

	t.Run("uniqueness", func(t *testing.T) {
		exists, err := users.UsernameExists(ctx, "susan")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = users.EmailExists(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)

		err = users.CreateUser(ctx, &models.User{Username: "susan", Email: "other@example.com"})
		assert.True(t, apperr.Is(err, apperr.CodeAlreadyExists))
		err = users.CreateUser(ctx, &models.User{Username: "other", Email: "susan@example.com"})
		assert.True(t, apperr.Is(err, apperr.CodeAlreadyExists))
	})
}

func TestUnreadMessages(t *testing.T) {
	store := newTestStore(t)
	users := NewSQLUserRepository(store)
	messages := NewSQLMessageRepository(store)
	ctx := context.Background()
	susan := createUser(t, store, "susan")
	john := createUser(t, store, "john")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	send := func(from, to *models.User, body string, at time.Time) {
		t.Helper()
		require.NoError(t, messages.CreateMessage(ctx, &models.Message{
			SenderID: from.ID, RecipientID: to.ID, Body: body, Timestamp: at,
		}))
	}
	send(john, susan, "hi", base)
	send(john, susan, "there", base.Add(time.Minute))
	send(susan, john, "yo", base.Add(time.Minute))

	n, err := messages.CountUnread(ctx, susan)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "never read counts everything")

	require.NoError(t, users.MarkMessagesRead(ctx, susan, base.Add(time.Minute)))
	reloaded, err := users.GetUserByID(ctx, susan.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastMessageReadTime)

	n, err = messages.CountUnread(ctx, reloaded)
	require.NoError(t, err)
	assert.Zero(t, n)

	send(john, susan, "again", base.Add(2*time.Minute))
	n, err = messages.CountUnread(ctx, reloaded)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	received, err := messages.GetReceived(ctx, susan.ID)
	require.NoError(t, err)
	require.Len(t, received, 3)
	assert.Equal(t, "again", received[0].Body)
}
