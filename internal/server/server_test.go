package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"ripple/internal/config"
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubAssetStore keeps handler tests off the filesystem.
type stubAssetStore struct {
	destroyed []string
}

func (s *stubAssetStore) Upload(_ context.Context, _ []byte) (string, error) {
	return "/media/test-asset.png", nil
}

func (s *stubAssetStore) Destroy(_ context.Context, assetID string) error {
	s.destroyed = append(s.destroyed, assetID)
	return nil
}

func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
	))

	cfg := &config.Config{
		JWTSecret:    "test-secret-for-handler-tests",
		Port:         "0",
		AssetBaseURL: "/media",
	}

	// NewServerWithDeps wires the auth middleware config itself, the same
	// way the production bootstrap does.
	srv, err := NewServerWithDeps(cfg, db, nil, &stubAssetStore{})
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app, db
}

func createServerTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Str0ng!Passw0rd"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hashed),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func authedRequest(t *testing.T, s *Server, method, target string, body io.Reader, user *models.User) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := s.generateToken(user.ID, user.Username)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
