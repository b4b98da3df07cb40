package repositories

import (
	"context"
	"log/slog"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Changeset lists the entities a transaction added, updated and deleted.
type Changeset struct {
	Added   []models.Entity
	Updated []models.Entity
	Deleted []models.Entity
}

func (c *Changeset) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Deleted) == 0
}

func (c *Changeset) snapshot() Changeset {
	return Changeset{
		Added:   append([]models.Entity(nil), c.Added...),
		Updated: append([]models.Entity(nil), c.Updated...),
		Deleted: append([]models.Entity(nil), c.Deleted...),
	}
}

// CommitHook observes the changeset of every transaction that committed.
// It is never called for a transaction that rolled back.
type CommitHook interface {
	AfterCommit(ctx context.Context, changes Changeset)
}

// Store owns the gorm handle and the commit pipeline every write goes through.
type Store struct {
	db    *gorm.DB
	hooks []CommitHook
}

func NewStore(db *gorm.DB, hooks ...CommitHook) *Store {
	return &Store{db: db, hooks: hooks}
}

// AddHook registers a hook. Call it during start-up only.
func (s *Store) AddHook(h CommitHook) {
	s.hooks = append(s.hooks, h)
}

// DB returns a handle for reads outside a transaction.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// AutoMigrate creates or updates the tables for every entity.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Membership{},
		&models.Post{},
		&models.Comment{},
		&models.Message{},
		&models.Notification{},
	)
}

// Transaction runs fn in a database transaction. The changeset fn builds through tx is
// snapshotted before commit and handed to the hooks only once the commit succeeded.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	var committed Changeset
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		tx := &Tx{db: gtx, changes: &Changeset{}}
		if err := fn(tx); err != nil {
			return err
		}
		committed = tx.changes.snapshot()
		return nil
	})
	if err != nil {
		return err
	}

	if committed.IsEmpty() {
		return nil
	}
	for _, h := range s.hooks {
		h.AfterCommit(ctx, committed)
	}
	slog.Debug("store: transaction committed",
		"added", len(committed.Added), "updated", len(committed.Updated), "deleted", len(committed.Deleted))
	return nil
}

// Tx is one transaction's write handle. Writes made through it are recorded in its changeset.
type Tx struct {
	db      *gorm.DB
	changes *Changeset
}

// DB returns the transaction's gorm handle for reads.
func (tx *Tx) DB() *gorm.DB {
	return tx.db
}

// Clauses returns a Tx sharing this transaction and changeset with extra clauses applied.
func (tx *Tx) Clauses(exprs ...clause.Expression) *Tx {
	return &Tx{db: tx.db.Clauses(exprs...), changes: tx.changes}
}

func (tx *Tx) Create(e models.Entity) error {
	res := tx.db.Create(e)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		tx.changes.Added = append(tx.changes.Added, e)
	}
	return nil
}

func (tx *Tx) Save(e models.Entity) error {
	if err := tx.db.Save(e).Error; err != nil {
		return err
	}
	tx.changes.Updated = append(tx.changes.Updated, e)
	return nil
}

// Delete removes e by its primary key.
func (tx *Tx) Delete(e models.Entity) error {
	res := tx.db.Delete(e)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		tx.changes.Deleted = append(tx.changes.Deleted, e)
	}
	return nil
}

// deleteWhere bulk-deletes the T rows matching query and records each of them as deleted.
func deleteWhere[T any, PT interface {
	*T
	models.Entity
}](tx *Tx, query string, args ...interface{}) error {
	var rows []T
	if err := tx.db.Where(query, args...).Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.db.Where(query, args...).Delete(PT(new(T))).Error; err != nil {
		return err
	}
	for i := range rows {
		tx.changes.Deleted = append(tx.changes.Deleted, PT(&rows[i]))
	}
	return nil
}

// wrapNotFound turns gorm's not-found into the given domain error and wraps everything else.
func wrapNotFound(err error, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return errors.Wrap(err, op)
}
