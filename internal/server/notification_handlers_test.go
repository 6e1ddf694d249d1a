package server

import (
	"net/http"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNotificationsMarksRead(t *testing.T) {
	srv, app, db := setupTestServer(t)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")

	require.NoError(t, db.Create(&models.Notification{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Type:       models.NotificationTypeLike,
	}).Error)

	resp, err := app.Test(authedRequest(t, srv, http.MethodGet, "/api/notifications", nil, bob))
	require.NoError(t, err)
	var notifications []models.Notification
	decodeBody(t, resp, &notifications)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)
	assert.Equal(t, "alice", notifications[0].From.Username)

	var unread int64
	db.Model(&models.Notification{}).
		Where("to_user_id = ? AND read = ?", bob.ID, false).
		Count(&unread)
	assert.Equal(t, int64(0), unread)
}

func TestClearNotificationsEndpoint(t *testing.T) {
	srv, app, db := setupTestServer(t)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")

	require.NoError(t, db.Create(&models.Notification{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Type:       models.NotificationTypeFollow,
	}).Error)

	resp, err := app.Test(authedRequest(t, srv, http.MethodDelete, "/api/notifications", nil, bob))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.Notification{}).Where("to_user_id = ?", bob.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
