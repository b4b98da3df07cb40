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

func TestDeletePostRemovesItsComments(t *testing.T) {
	store := newTestStore(t)
	posts := NewSQLPostRepository(store)
	comments := NewSQLCommentRepository(store)
	ctx := context.Background()
	susan := createUser(t, store, "susan")
	group := createGroup(t, store, "Chess Club", susan)

	doomed := &models.Post{Text: "first", UserID: susan.ID, GroupID: group.ID}
	kept := &models.Post{Text: "second", UserID: susan.ID, GroupID: group.ID}
	require.NoError(t, posts.CreatePost(ctx, doomed))
	require.NoError(t, posts.CreatePost(ctx, kept))
	for _, p := range []*models.Post{doomed, doomed, kept} {
		require.NoError(t, comments.CreateComment(ctx, &models.Comment{Text: "hi", UserID: susan.ID, PostID: p.ID}))
	}

	require.NoError(t, posts.DeletePost(ctx, doomed.ID))

	orphans, err := comments.GetCommentsByPostID(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	left, err := comments.GetCommentsByGroupID(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, kept.ID, left[0].PostID)

	_, err = posts.GetPostByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, apperr.ErrPostNotFound)
	assert.ErrorIs(t, posts.DeletePost(ctx, doomed.ID), apperr.ErrPostNotFound)
}

func TestGetPostsByGroupIDNewestFirst(t *testing.T) {
	store := newTestStore(t)
	posts := NewSQLPostRepository(store)
	ctx := context.Background()
	susan := createUser(t, store, "susan")
	group := createGroup(t, store, "Chess Club", susan)
	other := createGroup(t, store, "Go Club", susan)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"old", "new", "middle"} {
		offset := []time.Duration{0, 2 * time.Minute, time.Minute}[i]
		require.NoError(t, posts.CreatePost(ctx, &models.Post{
			Text: text, UserID: susan.ID, GroupID: group.ID, Timestamp: base.Add(offset),
		}))
	}
	require.NoError(t, posts.CreatePost(ctx, &models.Post{Text: "elsewhere", UserID: susan.ID, GroupID: other.ID}))

	got, err := posts.GetPostsByGroupID(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"new", "middle", "old"}, []string{got[0].Text, got[1].Text, got[2].Text})
}

func TestCreateCommentDerivesGroupFromPost(t *testing.T) {
	store := newTestStore(t)
	posts := NewSQLPostRepository(store)
	comments := NewSQLCommentRepository(store)
	ctx := context.Background()
	susan := createUser(t, store, "susan")
	group := createGroup(t, store, "Chess Club", susan)
	other := createGroup(t, store, "Go Club", susan)

	post := &models.Post{Text: "e4", UserID: susan.ID, GroupID: group.ID}
	require.NoError(t, posts.CreatePost(ctx, post))

	c := &models.Comment{Text: "e5", UserID: susan.ID, PostID: post.ID}
	require.NoError(t, comments.CreateComment(ctx, c))
	assert.Equal(t, group.ID, c.GroupID)

	err := comments.CreateComment(ctx, &models.Comment{Text: "x", UserID: susan.ID, PostID: post.ID, GroupID: other.ID})
	assert.ErrorIs(t, err, apperr.ErrCommentGroupMismatch)

	err = comments.CreateComment(ctx, &models.Comment{Text: "x", UserID: susan.ID, PostID: 999})
	assert.ErrorIs(t, err, apperr.ErrPostNotFound)
}
