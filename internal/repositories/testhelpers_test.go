package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens a private in-memory sqlite database for the calling test.
func newTestStore(t *testing.T, hooks ...CommitHook) *Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := NewStore(db, hooks...)
	require.NoError(t, store.AutoMigrate())
	return store
}

// recordingHook keeps every changeset handed to it.
type recordingHook struct {
	mu      sync.Mutex
	commits []Changeset
}

func (h *recordingHook) AfterCommit(_ context.Context, changes Changeset) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commits = append(h.commits, changes)
}

func (h *recordingHook) Commits() []Changeset {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Changeset(nil), h.commits...)
}

func (h *recordingHook) Last() Changeset {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.commits) == 0 {
		return Changeset{}
	}
	return h.commits[len(h.commits)-1]
}

// stubSearcher answers every query with the same ranked ids.
type stubSearcher struct {
	ids   []uint
	total int64
}

func (s stubSearcher) Search(context.Context, string, string, int, int) ([]uint, int64) {
	return s.ids, s.total
}

func createUser(t *testing.T, store *Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, u.SetPassword("secret"))
	require.NoError(t, NewSQLUserRepository(store).CreateUser(context.Background(), u))
	return u
}

func createGroup(t *testing.T, store *Store, name string, creator *models.User) *models.Group {
	t.Helper()
	g := &models.Group{Name: name}
	require.NoError(t, NewSQLGroupRepository(store, stubSearcher{}).CreateGroup(context.Background(), g, creator.ID))
	return g
}
