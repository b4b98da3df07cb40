package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm/clause"
)

// NotificationRepository is the per-user notification ledger
type NotificationRepository interface {
	AddNotification(ctx context.Context, userID uint, name string, data interface{}) (*models.Notification, error)
	ListSince(ctx context.Context, userID uint, since time.Time) ([]models.Notification, error)
}

type SQLNotificationRepository struct {
	store *Store
}

func NewSQLNotificationRepository(store *Store) *SQLNotificationRepository {
	return &SQLNotificationRepository{store: store}
}

// AddNotification replaces any notification userID holds under name with a new one
// carrying data.
func (r *SQLNotificationRepository) AddNotification(ctx context.Context, userID uint, name string, data interface{}) (*models.Notification, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "notificationRepo.AddNotification: encode payload")
	}

	n := &models.Notification{Name: name, UserID: userID, Payload: models.Payload(payload)}
	err = r.store.Transaction(ctx, func(tx *Tx) error {
		if err := deleteWhere[models.Notification](tx, "user_id = ? AND name = ?", userID, name); err != nil {
			return err
		}
		return upsertNotification(tx, n)
	})
	if err != nil {
		return nil, errors.Wrap(err, "notificationRepo.AddNotification")
	}
	return n, nil
}

// upsertNotification inserts n, or overwrites the row a concurrent writer inserted
// for the same (user, name) after our delete.
func upsertNotification(tx *Tx, n *models.Notification) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp", "payload"}),
	}).Create(n)
}

// ListSince returns userID's notifications strictly newer than since, oldest first.
func (r *SQLNotificationRepository) ListSince(ctx context.Context, userID uint, since time.Time) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.store.DB(ctx).
		Where("user_id = ? AND timestamp > ?", userID, since.UTC()).
		Order("timestamp ASC, id ASC").
		Find(&notifications).Error
	if err != nil {
		return nil, errors.Wrap(err, "notificationRepo.ListSince")
	}
	return notifications, nil
}
