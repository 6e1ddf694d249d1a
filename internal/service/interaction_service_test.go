package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// assetStoreStub records uploads and destroys without touching disk.
type assetStoreStub struct {
	uploadFn  func(ctx context.Context, data []byte) (string, error)
	destroyed []string
}

func (s *assetStoreStub) Upload(ctx context.Context, data []byte) (string, error) {
	if s.uploadFn != nil {
		return s.uploadFn(ctx, data)
	}
	return "/media/stub-asset.png", nil
}

func (s *assetStoreStub) Destroy(_ context.Context, assetID string) error {
	s.destroyed = append(s.destroyed, assetID)
	return nil
}

func newInteractionService(db *gorm.DB, store *assetStoreStub) *InteractionService {
	return NewInteractionService(
		db,
		repository.NewPostRepository(db),
		repository.NewUserRepository(db),
		store,
	)
}

func TestToggleLikeLikesThenUnlikes(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, bob.ID, "hello")

	liked, err := svc.ToggleLike(context.Background(), alice.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked.Liked)
	assert.Equal(t, 1, liked.LikesCount)
	assert.Equal(t, int64(1), countNotifications(t, db, bob.ID, models.NotificationTypeLike))

	unliked, err := svc.ToggleLike(context.Background(), alice.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, unliked.Liked)
	assert.Equal(t, 0, unliked.LikesCount)

	// Unliking never notifies and never retracts the earlier notification.
	assert.Equal(t, int64(1), countNotifications(t, db, bob.ID, models.NotificationTypeLike))
}

func TestToggleLikeSelfStillNotifies(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "my own post")

	_, err := svc.ToggleLike(context.Background(), alice.ID, post.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), countNotifications(t, db, alice.ID, models.NotificationTypeLike))
}

func TestToggleLikeMissingPost(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")

	_, err := svc.ToggleLike(context.Background(), alice.ID, 999)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestCommentAppendsAndNotifies(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, bob.ID, "post")

	updated, err := svc.Comment(context.Background(), CommentInput{
		UserID: alice.ID,
		PostID: post.ID,
		Text:   "first",
	})
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "first", updated.Comments[0].Text)
	assert.Equal(t, 1, updated.CommentsCount)
	assert.Equal(t, int64(1), countNotifications(t, db, bob.ID, models.NotificationTypeComment))

	updated, err = svc.Comment(context.Background(), CommentInput{
		UserID: bob.ID,
		PostID: post.ID,
		Text:   "second",
	})
	require.NoError(t, err)
	require.Len(t, updated.Comments, 2)

	// Insertion order is preserved.
	assert.Equal(t, "first", updated.Comments[0].Text)
	assert.Equal(t, "second", updated.Comments[1].Text)

	// Self-comments notify too.
	assert.Equal(t, int64(2), countNotifications(t, db, bob.ID, models.NotificationTypeComment))
}

func TestCommentEmptyTextRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "post")

	_, err := svc.Comment(context.Background(), CommentInput{
		UserID: alice.ID,
		PostID: post.ID,
		Text:   "   ",
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, int64(0), countNotifications(t, db, alice.ID, models.NotificationTypeComment))
}

func TestCreatePostRequiresTextOrImage(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: alice.ID})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestCreatePostWithImage(t *testing.T) {
	db := setupTestDB(t)
	store := &assetStoreStub{
		uploadFn: func(_ context.Context, data []byte) (string, error) {
			return "/media/uploaded-123.png", nil
		},
	}
	svc := newInteractionService(db, store)
	alice := createTestUser(t, db, "alice")

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:    alice.ID,
		Text:      "look at this",
		ImageData: []byte{0x89, 0x50, 0x4e, 0x47},
	})
	require.NoError(t, err)
	assert.Equal(t, "/media/uploaded-123.png", post.ImageURL)
	assert.Equal(t, "look at this", post.Text)
	assert.Equal(t, alice.ID, post.UserID)
}

func TestCreatePostUploadFailure(t *testing.T) {
	db := setupTestDB(t)
	store := &assetStoreStub{
		uploadFn: func(context.Context, []byte) (string, error) {
			return "", fmt.Errorf("storage offline")
		},
	}
	svc := newInteractionService(db, store)
	alice := createTestUser(t, db, "alice")

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:    alice.ID,
		Text:      "doomed",
		ImageData: []byte{0x01},
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeUpstream, appErr.Code)

	// Nothing was persisted.
	var posts int64
	db.Model(&models.Post{}).Count(&posts)
	assert.Equal(t, int64(0), posts)
}

func TestDeletePostOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, bob.ID, "bob's post")

	err := svc.DeletePost(context.Background(), alice.ID, post.ID)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)

	var posts int64
	db.Model(&models.Post{}).Count(&posts)
	assert.Equal(t, int64(1), posts)
}

func TestDeletePostDestroysStoredImage(t *testing.T) {
	db := setupTestDB(t)
	store := &assetStoreStub{}
	svc := newInteractionService(db, store)
	alice := createTestUser(t, db, "alice")

	post := &models.Post{UserID: alice.ID, Text: "pic", ImageURL: "/media/abc123.png"}
	require.NoError(t, db.Create(post).Error)

	require.NoError(t, svc.DeletePost(context.Background(), alice.ID, post.ID))

	require.Len(t, store.destroyed, 1)
	assert.Equal(t, "abc123", store.destroyed[0])

	var posts int64
	db.Model(&models.Post{}).Count(&posts)
	assert.Equal(t, int64(0), posts)
}

func TestDeletePostMissing(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")

	err := svc.DeletePost(context.Background(), alice.ID, 404)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestGetPostAnonymousServedCacheAside(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "cached read")

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	fetched, err := svc.GetPost(context.Background(), post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "cached read", fetched.Text)
	assert.True(t, mr.Exists(cache.PostKey(post.ID)))

	// The second anonymous read comes from the cache, not the store.
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		Update("text", "changed underneath").Error)
	cached, err := svc.GetPost(context.Background(), post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "cached read", cached.Text)

	// Signed-in viewers bypass the cache for their per-viewer liked flag.
	fresh, err := svc.GetPost(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed underneath", fresh.Text)
}

func TestToggleLikeInvalidatesCachedPost(t *testing.T) {
	db := setupTestDB(t)
	svc := newInteractionService(db, &assetStoreStub{})
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "count me")

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	_, err := svc.GetPost(context.Background(), post.ID, 0)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.PostKey(post.ID)))

	_, err = svc.ToggleLike(context.Background(), alice.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))

	refetched, err := svc.GetPost(context.Background(), post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, refetched.LikesCount)
}
