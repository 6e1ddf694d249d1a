package server

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	_, app, _ := setupTestServer(t)

	signupBody := []byte(`{"username":"newuser","email":"newuser@example.com","password":"Str0ng!Passw0rd"}`)
	req := authedRequest(t, nil, http.MethodPost, "/api/auth/signup", bytes.NewReader(signupBody), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var signupResult struct {
		Token string `json:"token"`
		User  struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeBody(t, resp, &signupResult)
	assert.NotEmpty(t, signupResult.Token)
	assert.Equal(t, "newuser", signupResult.User.Username)

	loginBody := []byte(`{"email":"newuser@example.com","password":"Str0ng!Passw0rd"}`)
	req = authedRequest(t, nil, http.MethodPost, "/api/auth/login", bytes.NewReader(loginBody), nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignupDuplicateEmail(t *testing.T) {
	_, app, db := setupTestServer(t)
	createServerTestUser(t, db, "taken")

	body := []byte(`{"username":"someoneelse","email":"taken@example.com","password":"Str0ng!Passw0rd"}`)
	req := authedRequest(t, nil, http.MethodPost, "/api/auth/signup", bytes.NewReader(body), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSignupWeakPassword(t *testing.T) {
	_, app, _ := setupTestServer(t)

	body := []byte(`{"username":"weakling","email":"weak@example.com","password":"short"}`)
	req := authedRequest(t, nil, http.MethodPost, "/api/auth/signup", bytes.NewReader(body), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	_, app, db := setupTestServer(t)
	createServerTestUser(t, db, "victim")

	body := []byte(`{"email":"victim@example.com","password":"WrongPassword1!"}`)
	req := authedRequest(t, nil, http.MethodPost, "/api/auth/login", bytes.NewReader(body), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// A server built through the constructor must leave the auth middleware
// ready for token-bearing requests. A misconfigured middleware package
// would panic inside the JWT keyfunc and surface here as a recovered 500.
func TestServerConstructorConfiguresAuthMiddleware(t *testing.T) {
	srv, _, db := setupTestServer(t)
	alice := createServerTestUser(t, db, "alice")

	app := fiber.New()
	app.Use(recover.New())
	srv.SetupRoutes(app)

	resp, err := app.Test(authedRequest(t, srv, http.MethodGet, "/api/notifications", nil, alice))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// An invalid token must come back as 401, never a recovered panic.
	req := authedRequest(t, srv, http.MethodGet, "/api/notifications", nil, nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	_, app, _ := setupTestServer(t)

	req := authedRequest(t, nil, http.MethodGet, "/api/notifications", nil, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
