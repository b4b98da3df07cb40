package repositories

import (
	"context"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/pkg/errors"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostsByGroupID(ctx context.Context, groupID uint) ([]models.Post, error)
	DeletePost(ctx context.Context, id uint) error
}

// SQLPostRepository implements PostRepository on the relational store
type SQLPostRepository struct {
	store *Store
}

// NewSQLPostRepository creates a new SQLPostRepository
func NewSQLPostRepository(store *Store) *SQLPostRepository {
	return &SQLPostRepository{store: store}
}

func (r *SQLPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		return tx.Create(post)
	})
	return errors.Wrap(err, "postRepo.CreatePost")
}

func (r *SQLPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.store.DB(ctx).First(&post, id).Error; err != nil {
		return nil, wrapNotFound(err, apperr.ErrPostNotFound, "postRepo.GetPostByID")
	}
	return &post, nil
}

// GetPostsByGroupID retrieves a group's posts, newest first
func (r *SQLPostRepository) GetPostsByGroupID(ctx context.Context, groupID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.store.DB(ctx).
		Where("group_id = ?", groupID).
		Order("timestamp DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "postRepo.GetPostsByGroupID")
	}
	return posts, nil
}

// DeletePost removes the post and every comment on it in one transaction.
func (r *SQLPostRepository) DeletePost(ctx context.Context, id uint) error {
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		var post models.Post
		if err := tx.DB().First(&post, id).Error; err != nil {
			return err
		}
		if err := deleteWhere[models.Comment](tx, "post_id = ?", id); err != nil {
			return err
		}
		return tx.Delete(&post)
	})
	if err != nil {
		return wrapNotFound(err, apperr.ErrPostNotFound, "postRepo.DeletePost")
	}
	return nil
}
