package repositories

import (
	"context"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/pkg/errors"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByGroupID(ctx context.Context, groupID uint) ([]models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error)
}

type SQLCommentRepository struct {
	store *Store
}

func NewSQLCommentRepository(store *Store) *SQLCommentRepository {
	return &SQLCommentRepository{store: store}
}

// CreateComment stores the comment under its post's group. A non-zero GroupID
// that disagrees with the post is rejected.
func (r *SQLCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		var post models.Post
		if err := tx.DB().First(&post, comment.PostID).Error; err != nil {
			return wrapNotFound(err, apperr.ErrPostNotFound, "commentRepo.CreateComment")
		}
		if comment.GroupID != 0 && comment.GroupID != post.GroupID {
			return apperr.ErrCommentGroupMismatch
		}
		comment.GroupID = post.GroupID
		return tx.Create(comment)
	})
	if err != nil && apperr.CodeOf(err) != apperr.CodeUnknown {
		return err
	}
	return errors.Wrap(err, "commentRepo.CreateComment")
}

// GetCommentsByGroupID retrieves every comment in a group, oldest first
func (r *SQLCommentRepository) GetCommentsByGroupID(ctx context.Context, groupID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.store.DB(ctx).
		Where("group_id = ?", groupID).
		Order("timestamp ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrap(err, "commentRepo.GetCommentsByGroupID")
	}
	return comments, nil
}

func (r *SQLCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.store.DB(ctx).
		Where("post_id = ?", postID).
		Order("timestamp ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrap(err, "commentRepo.GetCommentsByPostID")
	}
	return comments, nil
}
