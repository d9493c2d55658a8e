package service

import (
	"context"
	"testing"

	"newsletter/internal/models"
	"newsletter/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreateFansOutToSubscribers(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	author := s.user(t, "author")
	hr := s.user(t, "hr")
	s.user(t, "bystander")
	_, _, err := s.subscriptions.Toggle(ctx, hr.ID, "HR")
	require.NoError(t, err)
	_, _, err = s.subscriptions.Toggle(ctx, author.ID, "HR")
	require.NoError(t, err)

	post, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: author.ID, Title: " Policy ", Content: "Read me", Department: "HR"})
	require.NoError(t, err)
	assert.Equal(t, "Policy", post.Title)
	assert.Equal(t, models.DepartmentHR, post.Department)
	assert.Equal(t, "author", post.Author.Username)

	assert.Equal(t, []uint{hr.ID}, s.events.recipients())
	require.Len(t, s.events.events, 1)
	assert.Equal(t, notifications.EventNotificationCreated, s.events.events[0].Type)
	event, ok := s.events.events[0].Payload.(NotificationEvent)
	require.True(t, ok)
	assert.Equal(t, post.ID, event.PostID)
	assert.Equal(t, "author", event.Author)

	unread, err := s.notifications.UnreadCount(ctx, hr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	unread, err = s.notifications.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestPostService_GeneralPostReachesEveryone(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	author := s.user(t, "author")
	a := s.user(t, "a")
	b := s.user(t, "b")

	_, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: author.ID, Title: "Hello", Content: "All hands", Department: "General"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, s.events.recipients())
}

func TestPostService_DepartmentRules(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.user(t, "president")
	s.user(t, "vice")
	manager := s.user(t, "manager", func(u *models.User) {
		u.Role = models.RoleManager
		u.Department = models.DepartmentDesign
	})
	member := s.user(t, "member")

	post, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: manager.ID, Title: "T", Content: "C", Department: "HR"})
	require.NoError(t, err)
	assert.Equal(t, models.DepartmentDesign, post.Department)

	post, err = s.posts.CreatePost(ctx, CreatePostInput{UserID: manager.ID, Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, models.DepartmentDesign, post.Department)

	_, err = s.posts.CreatePost(ctx, CreatePostInput{UserID: member.ID, Title: "T", Content: "C"})
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Equal(t, models.DepartmentRequiredMessage, appErr.Fields["department"])

	_, err = s.posts.CreatePost(ctx, CreatePostInput{UserID: member.ID, Title: "T", Content: "C", Department: "Sales"})
	assertCode(t, err, models.CodeValidation)

	_, err = s.posts.CreatePost(ctx, CreatePostInput{UserID: member.ID, Title: "  ", Content: "C", Department: "HR"})
	appErr = assertCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, "title")

	var count int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPostService_UpdateAndDeleteAuthorization(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	author := s.user(t, "author")
	other := s.user(t, "other")
	admin := s.user(t, "admin", func(u *models.User) { u.IsAdmin = true })

	post, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: author.ID, Title: "Draft", Content: "C", Department: "HR"})
	require.NoError(t, err)

	_, err = s.posts.UpdatePost(ctx, UpdatePostInput{UserID: other.ID, PostID: post.ID, Title: strPtr("Hijacked")})
	assertCode(t, err, models.CodeForbidden)

	updated, err := s.posts.UpdatePost(ctx, UpdatePostInput{UserID: author.ID, PostID: post.ID, Title: strPtr("Final"), Department: strPtr("Design")})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, models.DepartmentDesign, updated.Department)
	assert.Equal(t, "C", updated.Content)

	_, err = s.posts.UpdatePost(ctx, UpdatePostInput{UserID: author.ID, PostID: post.ID, Content: strPtr(" "), Department: strPtr("Moon")})
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, "content")
	assert.Contains(t, appErr.Fields, "department")

	assertCode(t, s.posts.DeletePost(ctx, DeletePostInput{UserID: other.ID, PostID: post.ID}), models.CodeForbidden)
	require.NoError(t, s.posts.DeletePost(ctx, DeletePostInput{UserID: admin.ID, PostID: post.ID}))
	_, err = s.posts.GetPost(ctx, post.ID, author.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_Listings(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	ada := s.user(t, "ada")
	grace := s.user(t, "grace")

	hrPost, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: ada.ID, Title: "HR", Content: "C", Department: "HR"})
	require.NoError(t, err)
	general, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: ada.ID, Title: "General", Content: "C", Department: "General"})
	require.NoError(t, err)

	followed, err := s.posts.FollowedPosts(ctx, grace.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, general.ID, followed[0].ID)

	hrOnly, err := s.posts.ListPosts(ctx, ListPostsInput{Department: "HR", ViewerID: grace.ID})
	require.NoError(t, err)
	require.Len(t, hrOnly, 1)
	assert.Equal(t, hrPost.ID, hrOnly[0].ID)

	liked, err := s.engagement.ToggleLike(ctx, grace.ID, hrPost.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	saved, err := s.engagement.ToggleSave(ctx, grace.ID, general.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	likes, err := s.posts.LikedBy(ctx, "grace", ada.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, hrPost.ID, likes[0].ID)
	assert.False(t, likes[0].IsLiked)

	mine, err := s.posts.SavedBy(ctx, "grace", grace.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].IsSaved)

	theirs, err := s.posts.SavedBy(ctx, "grace", ada.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = s.posts.LikedBy(ctx, "ghost", ada.ID, 0, 0)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	ada := s.user(t, "ada")
	post, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: ada.ID, Title: "T", Content: "C", Department: "General"})
	require.NoError(t, err)

	comment, err := s.comments.CreateComment(ctx, CreateCommentInput{UserID: ada.ID, PostID: post.ID, Content: "First!"})
	require.NoError(t, err)
	assert.Equal(t, "ada", comment.Author.Username)

	_, err = s.comments.CreateComment(ctx, CreateCommentInput{UserID: ada.ID, PostID: post.ID, Content: "  "})
	assertCode(t, err, models.CodeValidation)
	_, err = s.comments.CreateComment(ctx, CreateCommentInput{UserID: ada.ID, PostID: 999, Content: "lost"})
	assertCode(t, err, models.CodeNotFound)

	comments, err := s.comments.ListComments(ctx, post.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	_, err = s.comments.ListComments(ctx, 999, 0, 0)
	assertCode(t, err, models.CodeNotFound)

	got, err := s.posts.GetPost(ctx, post.ID, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)
}
