package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAddNotificationKeepsOnlyLatestPerName(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLNotificationRepository(store)
	ctx := context.Background()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	for _, n := range []int{1, 2, 5} {
		_, err := repo.AddNotification(ctx, alice.ID, models.NotificationUnreadMessageCount, n)
		require.NoError(t, err)
	}
	_, err := repo.AddNotification(ctx, alice.ID, "other", "x")
	require.NoError(t, err)
	_, err = repo.AddNotification(ctx, bob.ID, models.NotificationUnreadMessageCount, 9)
	require.NoError(t, err)

	var rows []models.Notification
	require.NoError(t, store.DB(ctx).
		Where("user_id = ? AND name = ?", alice.ID, models.NotificationUnreadMessageCount).
		Find(&rows).Error)
	require.Len(t, rows, 1)
	var count int
	require.NoError(t, rows[0].Data(&count))
	assert.Equal(t, 5, count)

	var total int64
	require.NoError(t, store.DB(ctx).Model(&models.Notification{}).Count(&total).Error)
	assert.Equal(t, int64(3), total, "other names and users are untouched")
}

func TestAddNotificationChangeset(t *testing.T) {
	hook := &recordingHook{}
	store := newTestStore(t, hook)
	repo := NewSQLNotificationRepository(store)
	ctx := context.Background()
	alice := createUser(t, store, "alice")

	first, err := repo.AddNotification(ctx, alice.ID, models.NotificationUnreadMessageCount, 1)
	require.NoError(t, err)
	second, err := repo.AddNotification(ctx, alice.ID, models.NotificationUnreadMessageCount, 2)
	require.NoError(t, err)

	last := hook.Last()
	require.Len(t, last.Deleted, 1)
	assert.Equal(t, first.ID, last.Deleted[0].(*models.Notification).ID)
	require.Len(t, last.Added, 1)
	assert.Equal(t, second, last.Added[0])
}

func TestListSinceIsStrictAndAscending(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLNotificationRepository(store)
	ctx := context.Background()
	alice := createUser(t, store, "alice")

	a, err := repo.AddNotification(ctx, alice.ID, "a", 1)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	b, err := repo.AddNotification(ctx, alice.ID, "b", 2)
	require.NoError(t, err)

	all, err := repo.ListSince(ctx, alice.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "b", all[1].Name)

	afterA, err := repo.ListSince(ctx, alice.ID, a.Timestamp)
	require.NoError(t, err)
	require.Len(t, afterA, 1)
	assert.Equal(t, b.ID, afterA[0].ID)

	none, err := repo.ListSince(ctx, alice.ID, b.Timestamp)
	require.NoError(t, err)
	assert.Empty(t, none)

	t.Run("polling cursor round trip", func(t *testing.T) {
		got, err := repo.ListSince(ctx, alice.ID, models.SinceFromUnix(a.UnixTimestamp()))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].Name)

		got, err = repo.ListSince(ctx, alice.ID, models.SinceFromUnix(b.UnixTimestamp()))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("scoped to the user", func(t *testing.T) {
		bob := createUser(t, store, "bob")
		got, err := repo.ListSince(ctx, bob.ID, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestNotificationPayloadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLNotificationRepository(store)
	ctx := context.Background()
	alice := createUser(t, store, "alice")

	cases := []struct {
		name string
		data interface{}
		want string
	}{
		{name: "int", data: 3, want: `3`},
		{name: "float", data: 1.5, want: `1.5`},
		{name: "string", data: "hi", want: `"hi"`},
		{name: "bool", data: true, want: `true`},
		{name: "object", data: map[string]int{"n": 1}, want: `{"n":1}`},
	}
	for _, tc := range cases {
		// twice, so the second call has to read the first row back
		for i := 0; i < 2; i++ {
			_, err := repo.AddNotification(ctx, alice.ID, tc.name, tc.data)
			require.NoError(t, err, tc.name)
		}
	}

	got, err := repo.ListSince(ctx, alice.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, len(cases))
	byName := make(map[string]models.Notification, len(got))
	for _, n := range got {
		byName[n.Name] = n
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, ok := byName[tc.name]
			require.True(t, ok)
			assert.JSONEq(t, tc.want, string(n.Payload))
		})
	}

	var kinds []string
	require.NoError(t, store.DB(ctx).Raw("SELECT DISTINCT typeof(payload) FROM notifications").Scan(&kinds).Error)
	assert.Equal(t, []string{"text"}, kinds)
}

func TestNotificationUniquePerUserAndName(t *testing.T) {
	hook := &recordingHook{}
	store := newTestStore(t, hook)
	ctx := context.Background()
	alice := createUser(t, store, "alice")

	first := &models.Notification{UserID: alice.ID, Name: models.NotificationUnreadMessageCount, Payload: []byte(`1`)}
	require.NoError(t, store.DB(ctx).Create(first).Error)

	dup := &models.Notification{UserID: alice.ID, Name: models.NotificationUnreadMessageCount, Payload: []byte(`2`)}
	err := store.DB(ctx).Create(dup).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	t.Run("insert over a row committed after the delete", func(t *testing.T) {
		n := &models.Notification{UserID: alice.ID, Name: models.NotificationUnreadMessageCount, Payload: []byte(`7`)}
		require.NoError(t, store.Transaction(ctx, func(tx *Tx) error {
			return upsertNotification(tx, n)
		}))

		var rows []models.Notification
		require.NoError(t, store.DB(ctx).Where("user_id = ?", alice.ID).Find(&rows).Error)
		require.Len(t, rows, 1)
		var count int
		require.NoError(t, rows[0].Data(&count))
		assert.Equal(t, 7, count)
		assert.Equal(t, first.ID, rows[0].ID)
		require.Len(t, hook.Last().Added, 1)
	})
}
