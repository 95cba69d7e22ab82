package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aulavivo/lms-api/database"
	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/utils/auth"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.NewGORMStore(db).Init(); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func newTestJWT() *auth.JWTManager {
	return auth.NewJWTManager(auth.JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "lms-api-test",
	})
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()

	user := model.User{
		Email:          email,
		PasswordHash:   "x",
		FirstName:      "Test",
		LastName:       "User",
		Role:           role,
		StudentEnabled: true,
	}
	user.ApplyRole()
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

// newAuthApp wires the middleware in front of a handler that reports whether
// a user landed in the request context, mirroring how real handlers read it.
func newAuthApp(m *AuthMiddleware, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", guard, func(c *fiber.Ctx) error {
		if user, ok := GetUser(c); ok {
			return c.JSON(fiber.Map{"email": user.Email})
		}
		return c.JSON(fiber.Map{"anonymous": true})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestRequiredRejectsMissingToken(t *testing.T) {
	db := newTestDB(t)
	m := NewAuthMiddleware(newTestJWT(), db)
	app := newAuthApp(m, m.Required())

	resp := doRequest(t, app, "")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("no Authorization header: got status %d, want 401", resp.StatusCode)
	}

	resp = doRequest(t, app, "Basic abc123")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: got status %d, want 401", resp.StatusCode)
	}

	resp = doRequest(t, app, "Bearer not-a-jwt")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("garbage token: got status %d, want 401", resp.StatusCode)
	}
}

func TestRequiredAcceptsValidToken(t *testing.T) {
	db := newTestDB(t)
	jwtManager := newTestJWT()
	m := NewAuthMiddleware(jwtManager, db)
	app := newAuthApp(m, m.Required())

	user := createUser(t, db, "student@example.com", "student")
	token, _, err := jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	resp := doRequest(t, app, "Bearer "+token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("valid token: got status %d, want 200", resp.StatusCode)
	}
}

func TestRequiredRejectsBumpedTokenVersion(t *testing.T) {
	db := newTestDB(t)
	jwtManager := newTestJWT()
	m := NewAuthMiddleware(jwtManager, db)
	app := newAuthApp(m, m.Required())

	user := createUser(t, db, "student@example.com", "student")
	token, _, err := jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if err := db.Model(user).Update("token_version", user.TokenVersion+1).Error; err != nil {
		t.Fatalf("failed to bump token version: %v", err)
	}

	resp := doRequest(t, app, "Bearer "+token)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("invalidated token: got status %d, want 401", resp.StatusCode)
	}
}

func TestOptionalDegradesToAnonymous(t *testing.T) {
	db := newTestDB(t)
	m := NewAuthMiddleware(newTestJWT(), db)
	app := newAuthApp(m, m.Optional())

	resp := doRequest(t, app, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("no token: got status %d, want 200", resp.StatusCode)
	}

	// An unparseable token must not fail the request on the optional chain.
	resp = doRequest(t, app, "Bearer not-a-jwt")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("garbage token: got status %d, want 200", resp.StatusCode)
	}
}

func TestRequireStaffForbidsNonStaff(t *testing.T) {
	db := newTestDB(t)
	jwtManager := newTestJWT()
	m := NewAuthMiddleware(jwtManager, db)
	app := newAuthApp(m, m.RequireStaff())

	student := createUser(t, db, "student@example.com", "student")
	token, _, err := jwtManager.GenerateAccessToken(student.ID, student.Email, student.Role, student.TokenVersion)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	resp := doRequest(t, app, "Bearer "+token)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("student on staff route: got status %d, want 403", resp.StatusCode)
	}

	resp = doRequest(t, app, "")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("anonymous on staff route: got status %d, want 401", resp.StatusCode)
	}
}
