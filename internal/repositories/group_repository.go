package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Searcher answers ranked id queries against the text index.
// It reports (nil, 0) when the index cannot answer.
type Searcher interface {
	Search(ctx context.Context, index, text string, page, perPage int) ([]uint, int64)
}

// GroupRepository defines the interface for group and membership operations
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group, creatorID uint) error
	GetGroupByID(ctx context.Context, id uint) (*models.Group, error)
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	GetGroups(ctx context.Context) ([]models.Group, error)
	GetGroupsForUser(ctx context.Context, userID uint) ([]models.Group, error)
	AddMember(ctx context.Context, groupID, userID uint) error
	HasMember(ctx context.Context, groupID, userID uint) (bool, error)
	GetMembers(ctx context.Context, groupID uint) ([]models.User, error)
	SearchGroups(ctx context.Context, text string, page, perPage int) ([]models.Group, int64, error)
	RenameGroup(ctx context.Context, groupID uint, name string) (*models.Group, error)
	DeleteGroup(ctx context.Context, groupID uint) error
}

type SQLGroupRepository struct {
	store    *Store
	searcher Searcher
}

func NewSQLGroupRepository(store *Store, searcher Searcher) *SQLGroupRepository {
	return &SQLGroupRepository{store: store, searcher: searcher}
}

// CreateGroup inserts the group and makes the creator its first member.
func (r *SQLGroupRepository) CreateGroup(ctx context.Context, group *models.Group, creatorID uint) error {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return apperr.ErrGroupNameRequired
	}
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		if err := tx.Create(group); err != nil {
			return err
		}
		return tx.Create(&models.Membership{GroupID: group.ID, UserID: creatorID})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrGroupNameTaken
	}
	return errors.Wrap(err, "groupRepo.CreateGroup")
}

func (r *SQLGroupRepository) GetGroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.store.DB(ctx).First(&group, id).Error; err != nil {
		return nil, wrapNotFound(err, apperr.ErrGroupNotFound, "groupRepo.GetGroupByID")
	}
	return &group, nil
}

func (r *SQLGroupRepository) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	if err := r.store.DB(ctx).Where("name = ?", name).First(&group).Error; err != nil {
		return nil, wrapNotFound(err, apperr.ErrGroupNotFound, "groupRepo.GetGroupByName")
	}
	return &group, nil
}

func (r *SQLGroupRepository) GetGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.store.DB(ctx).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, errors.Wrap(err, "groupRepo.GetGroups")
	}
	return groups, nil
}

// GetGroupsForUser lists the groups userID belongs to
func (r *SQLGroupRepository) GetGroupsForUser(ctx context.Context, userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.store.DB(ctx).
		Joins("JOIN memberships ON memberships.group_id = groups.id").
		Where("memberships.user_id = ?", userID).
		Order("groups.name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, errors.Wrap(err, "groupRepo.GetGroupsForUser")
	}
	return groups, nil
}

// AddMember joins userID to groupID. Joining twice is a no-op.
func (r *SQLGroupRepository) AddMember(ctx context.Context, groupID, userID uint) error {
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		if err := tx.DB().First(&models.Group{}, groupID).Error; err != nil {
			return wrapNotFound(err, apperr.ErrGroupNotFound, "groupRepo.AddMember")
		}
		if err := tx.DB().First(&models.User{}, userID).Error; err != nil {
			return wrapNotFound(err, apperr.ErrUserNotFound, "groupRepo.AddMember")
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Membership{GroupID: groupID, UserID: userID})
	})
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		return err
	}
	return errors.Wrap(err, "groupRepo.AddMember")
}

func (r *SQLGroupRepository) HasMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := r.store.DB(ctx).Model(&models.Membership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "groupRepo.HasMember")
	}
	return count > 0, nil
}

func (r *SQLGroupRepository) GetMembers(ctx context.Context, groupID uint) ([]models.User, error) {
	var users []models.User
	err := r.store.DB(ctx).
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.group_id = ?", groupID).
		Order("users.username ASC").
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "groupRepo.GetMembers")
	}
	return users, nil
}

// SearchGroups asks the index for one page of ranked ids and loads the rows from SQL
// in that order. Field values always come from SQL.
func (r *SQLGroupRepository) SearchGroups(ctx context.Context, text string, page, perPage int) ([]models.Group, int64, error) {
	ids, total := r.searcher.Search(ctx, models.GroupIndex, text, page, perPage)
	if total == 0 || len(ids) == 0 {
		return []models.Group{}, total, nil
	}

	groups := make([]models.Group, 0, len(ids))
	err := r.store.DB(ctx).
		Where("id IN ?", ids).
		Clauses(clause.OrderBy{Expression: rankOrder(ids)}).
		Find(&groups).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "groupRepo.SearchGroups")
	}
	return groups, total, nil
}

// rankOrder orders rows by the position of their id in ids.
// The ids are integers, so they are inlined rather than bound.
func rankOrder(ids []uint) clause.Expression {
	var b strings.Builder
	b.WriteString("CASE id")
	for rank, id := range ids {
		fmt.Fprintf(&b, " WHEN %d THEN %d", id, rank)
	}
	b.WriteString(" END")
	return clause.Expr{SQL: b.String(), WithoutParentheses: true}
}

// RenameGroup changes the group's name; the mirror re-indexes it on commit.
func (r *SQLGroupRepository) RenameGroup(ctx context.Context, groupID uint, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ErrGroupNameRequired
	}
	var group models.Group
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		if err := tx.DB().First(&group, groupID).Error; err != nil {
			return err
		}
		group.Name = name
		return tx.Save(&group)
	})
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, apperr.ErrGroupNameTaken
	case err != nil:
		return nil, wrapNotFound(err, apperr.ErrGroupNotFound, "groupRepo.RenameGroup")
	}
	return &group, nil
}

// DeleteGroup removes the group together with its memberships, posts and comments.
func (r *SQLGroupRepository) DeleteGroup(ctx context.Context, groupID uint) error {
	err := r.store.Transaction(ctx, func(tx *Tx) error {
		var group models.Group
		if err := tx.DB().First(&group, groupID).Error; err != nil {
			return err
		}
		if err := deleteWhere[models.Comment](tx, "group_id = ?", groupID); err != nil {
			return err
		}
		if err := deleteWhere[models.Post](tx, "group_id = ?", groupID); err != nil {
			return err
		}
		if err := deleteWhere[models.Membership](tx, "group_id = ?", groupID); err != nil {
			return err
		}
		return tx.Delete(&group)
	})
	if err != nil {
		return wrapNotFound(err, apperr.ErrGroupNotFound, "groupRepo.DeleteGroup")
	}
	return nil
}
