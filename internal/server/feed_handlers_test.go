package server

import (
	"net/http"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createFeedPost(t *testing.T, db *gorm.DB, userID uint, text string, age time.Duration) *models.Post {
	t.Helper()
	post := &models.Post{UserID: userID, Text: text, CreatedAt: time.Now().Add(-age)}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestGetGlobalFeedEndpoint(t *testing.T) {
	_, app, db := setupTestServer(t)
	alice := createServerTestUser(t, db, "alice")

	createFeedPost(t, db, alice.ID, "old", 2*time.Hour)
	createFeedPost(t, db, alice.ID, "new", 0)

	resp, err := app.Test(authedRequest(t, nil, http.MethodGet, "/api/posts", nil, nil))
	require.NoError(t, err)
	var posts []models.Post
	decodeBody(t, resp, &posts)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, posts, 2)
	assert.Equal(t, "new", posts[0].Text)
	assert.Equal(t, "old", posts[1].Text)
}

func TestGetFollowingFeedEndpoint(t *testing.T) {
	srv, app, db := setupTestServer(t)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")
	carol := createServerTestUser(t, db, "carol")
	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}).Error)

	createFeedPost(t, db, bob.ID, "followed author", 0)
	createFeedPost(t, db, carol.ID, "stranger", 0)

	resp, err := app.Test(authedRequest(t, srv, http.MethodGet, "/api/posts/following", nil, alice))
	require.NoError(t, err)
	var posts []models.Post
	decodeBody(t, resp, &posts)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, posts, 1)
	assert.Equal(t, "followed author", posts[0].Text)
}

func TestGetUserFeedEndpoint(t *testing.T) {
	_, app, db := setupTestServer(t)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")

	createFeedPost(t, db, alice.ID, "by alice", 0)
	createFeedPost(t, db, bob.ID, "by bob", 0)

	resp, err := app.Test(authedRequest(t, nil, http.MethodGet, "/api/posts/user/alice", nil, nil))
	require.NoError(t, err)
	var posts []models.Post
	decodeBody(t, resp, &posts)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, posts, 1)
	assert.Equal(t, "by alice", posts[0].Text)

	resp, err = app.Test(authedRequest(t, nil, http.MethodGet, "/api/posts/user/ghost", nil, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetLikedFeedEndpoint(t *testing.T) {
	srv, app, db := setupTestServer(t)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")

	liked := createFeedPost(t, db, alice.ID, "liked", 0)
	createFeedPost(t, db, alice.ID, "ignored", 0)
	require.NoError(t, db.Create(&models.Like{UserID: bob.ID, PostID: liked.ID}).Error)

	resp, err := app.Test(authedRequest(t, srv, http.MethodGet, "/api/posts/likes/"+itoa(bob.ID), nil, bob))
	require.NoError(t, err)
	var posts []models.Post
	decodeBody(t, resp, &posts)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, posts, 1)
	assert.Equal(t, "liked", posts[0].Text)
	assert.True(t, posts[0].Liked)
}
