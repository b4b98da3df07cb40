package repositories

import (
	"context"
	"time"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	MarkMessagesRead(ctx context.Context, user *models.User, at time.Time) error
}

// SQLUserRepository implements UserRepository on the relational store
type SQLUserRepository struct {
	store *Store
}

// NewSQLUserRepository creates a new SQLUserRepository
func NewSQLUserRepository(store *Store) *SQLUserRepository {
	return &SQLUserRepository{store: store}
}

// CreateUser inserts a user. Duplicate usernames or emails are reported as AlreadyExists.
func (r *SQLUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		return tx.Create(user)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.AlreadyExists("username or email already registered")
	}
	if err != nil {
		return errors.Wrap(err, "userRepo.CreateUser")
	}
	return nil
}

func (r *SQLUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.store.DB(ctx).First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err, apperr.ErrUserNotFound, "userRepo.GetUserByID")
	}
	return &user, nil
}

func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.store.DB(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapNotFound(err, apperr.ErrUserNotFound, "userRepo.GetUserByUsername")
	}
	return &user, nil
}

func (r *SQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.store.DB(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapNotFound(err, apperr.ErrUserNotFound, "userRepo.GetUserByEmail")
	}
	return &user, nil
}

// GetUsers retrieves all users ordered by username
func (r *SQLUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.store.DB(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "userRepo.GetUsers")
	}
	return users, nil
}

func (r *SQLUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.store.DB(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "userRepo.UsernameExists")
	}
	return count > 0, nil
}

func (r *SQLUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.store.DB(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "userRepo.EmailExists")
	}
	return count > 0, nil
}

// MarkMessagesRead moves the user's read cursor for private messages to at.
func (r *SQLUserRepository) MarkMessagesRead(ctx context.Context, user *models.User, at time.Time) error {
	at = at.UTC()
	user.LastMessageReadTime = &at
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		return tx.Save(user)
	})
	return errors.Wrap(err, "userRepo.MarkMessagesRead")
}
