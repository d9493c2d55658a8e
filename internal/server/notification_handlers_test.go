package server

import (
	"fmt"
	"net/http"
	"testing"

	"newsletter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationBody struct {
	ID        uint  `json:"id"`
	Recipient uint  `json:"recipient"`
	PostID    *uint `json:"post_id"`
	IsRead    bool  `json:"is_read"`
	Post      *struct {
		Title  string `json:"title"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	} `json:"post"`
}

func TestNotificationLifecycle(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	_, author := ts.createUser(t, "author")
	reader, readerToken := ts.createUser(t, "reader")
	_, otherToken := ts.createUser(t, "other")

	ts.createPost(t, author, "One", "General")
	ts.createPost(t, author, "Two", "General")

	status, raw := ts.do(t, http.MethodGet, "/notifications/", readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	notes := decode[[]notificationBody](t, raw)
	require.Len(t, notes, 2)
	assert.Equal(t, reader.ID, notes[0].Recipient)
	require.NotNil(t, notes[0].Post)
	assert.Equal(t, "Two", notes[0].Post.Title)
	assert.Equal(t, "author", notes[0].Post.Author.Username)

	newest := fmt.Sprintf("/notifications/%d/", notes[0].ID)

	status, _ = ts.do(t, http.MethodGet, newest, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = ts.do(t, http.MethodPut, newest, otherToken, map[string]bool{"is_read": true})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = ts.do(t, http.MethodDelete, newest, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = ts.do(t, http.MethodPut, newest, readerToken, map[string]any{})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[errorBody](t, raw).Fields, "is_read")

	status, raw = ts.do(t, http.MethodPatch, newest, readerToken, map[string]bool{"is_read": true})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[notificationBody](t, raw).IsRead)

	status, raw = ts.do(t, http.MethodGet, "/notifications/?unread=true", readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	unread := decode[[]notificationBody](t, raw)
	require.Len(t, unread, 1)
	assert.Equal(t, notes[1].ID, unread[0].ID)

	status, raw = ts.do(t, http.MethodPost, "/notifications/mark-all-read/", readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), decode[map[string]any](t, raw)["updated"])

	status, raw = ts.do(t, http.MethodGet, "/notifications/unread-count", readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), decode[map[string]any](t, raw)["unread_count"])

	status, raw = ts.do(t, http.MethodPut, newest, readerToken, map[string]bool{"is_read": false})
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[notificationBody](t, raw).IsRead)

	status, _ = ts.do(t, http.MethodDelete, newest, readerToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = ts.do(t, http.MethodGet, newest, readerToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// The other account still has its own copies.
	status, raw = ts.do(t, http.MethodGet, "/notifications/", otherToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]notificationBody](t, raw), 2)
}

func TestNotificationsRequireAuth(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	for _, path := range []string{"/notifications/", "/notifications/unread-count/", "/notifications/1/"} {
		status, _ := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
	status, _ := ts.do(t, http.MethodGet, "/notifications/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetNotifications_UnboundedWithoutLimit(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	_, author := ts.createUser(t, "author")
	reader, readerToken := ts.createUser(t, "reader")

	post := ts.createPost(t, author, "Weekly", "General")
	extra := make([]models.Notification, 0, 74)
	for i := 0; i < 74; i++ {
		postID := post.ID
		extra = append(extra, models.Notification{RecipientID: reader.ID, PostID: &postID})
	}
	require.NoError(t, ts.db.Create(&extra).Error)

	status, raw := ts.do(t, http.MethodGet, "/notifications/", readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]notificationBody](t, raw), 75)

	status, raw = ts.do(t, http.MethodGet, "/notifications/?limit=10&offset=70", readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]notificationBody](t, raw), 5)
}
