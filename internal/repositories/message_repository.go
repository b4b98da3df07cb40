package repositories

import (
	"context"
	"time"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/pkg/errors"
)

// neverRead is the read cursor of a user who has never opened their messages.
var neverRead = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// MessageRepository defines the interface for private message operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetReceived(ctx context.Context, recipientID uint) ([]models.Message, error)
	CountUnread(ctx context.Context, user *models.User) (int64, error)
}

type SQLMessageRepository struct {
	store *Store
}

func NewSQLMessageRepository(store *Store) *SQLMessageRepository {
	return &SQLMessageRepository{store: store}
}

func (r *SQLMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		return tx.Create(msg)
	})
	return errors.Wrap(err, "messageRepo.CreateMessage")
}

// GetReceived lists the messages sent to recipientID, newest first
func (r *SQLMessageRepository) GetReceived(ctx context.Context, recipientID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.store.DB(ctx).
		Where("recipient_id = ?", recipientID).
		Order("timestamp DESC, id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.GetReceived")
	}
	return msgs, nil
}

// CountUnread counts the messages user received after their read cursor.
func (r *SQLMessageRepository) CountUnread(ctx context.Context, user *models.User) (int64, error) {
	since := neverRead
	if user.LastMessageReadTime != nil {
		since = user.LastMessageReadTime.UTC()
	}

	var count int64
	err := r.store.DB(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND timestamp > ?", user.ID, since).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "messageRepo.CountUnread")
	}
	return count, nil
}
