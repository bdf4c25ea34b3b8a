package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"parasocial/internal/config"
	"parasocial/internal/database"
	"parasocial/internal/middleware"
	"parasocial/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testPassword satisfies the signup password policy.
const testPassword = "Sup3rSecret!pw"

// newTestServer builds a Server backed by an in-memory SQLite database and no
// Redis. Cache and notification paths degrade to no-ops without Redis.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret:            "test-secret-key",
		Port:                 "0",
		Env:                  "test",
		SweepIntervalSeconds: 30,
		SweepBatchLimit:      50,
	}
	middleware.InitMiddleware(cfg)

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	return srv, app, db
}

// doRequest performs a JSON request against the test app. token may be empty
// for anonymous requests, body may be nil.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// signupUser registers a user through the API and returns their token and ID.
func signupUser(t *testing.T, app *fiber.App, username, email string) (string, uint) {
	t.Helper()

	resp := doRequest(t, app, "POST", "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(t, resp, &out)
	require.NotEmpty(t, out.Token)
	require.NotZero(t, out.User.ID)
	return out.Token, out.User.ID
}

// makeAdmin flips the is_admin flag directly in the database.
func makeAdmin(t *testing.T, db *gorm.DB, userID uint) {
	t.Helper()
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_admin", true).Error)
}

func TestLivenessCheck(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doRequest(t, app, "GET", "/health/live", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	require.Equal(t, "up", body["status"])
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doRequest(t, app, "GET", "/api/users/me", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/users/me", "not-a-jwt", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
