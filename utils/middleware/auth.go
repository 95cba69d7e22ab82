package middleware

import (
	"errors"
	"strings"

	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/utils/auth"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Authentication failures carried from resolveUser to the wrappers. The
// messages are user-facing; respondAuthError maps them onto the response
// envelope so resolveUser never writes to the connection itself.
var (
	errMissingToken     = errors.New("Missing authorization token")
	errBadAuthFormat    = errors.New("Invalid authorization format")
	errTokenExpired     = errors.New("Token has expired")
	errTokenInvalid     = errors.New("Invalid token")
	errWrongTokenType   = errors.New("Invalid token type")
	errUnknownUser      = errors.New("User not found")
	errTokenInvalidated = errors.New("Token has been invalidated")
	errUserLoadFailed   = errors.New("Failed to load user")
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	db         *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		db:         db,
	}
}

// resolveUser validates the bearer token and loads the current user row.
// The user is reloaded on every request: role, enablement flags and staff
// status are mutable, so authorization decisions must never ride on stale
// token claims.
func (m *AuthMiddleware) resolveUser(c *fiber.Ctx) (*model.User, *auth.Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil, errMissingToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, errBadAuthFormat
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		if err == auth.ErrExpiredToken {
			return nil, nil, errTokenExpired
		}
		return nil, nil, errTokenInvalid
	}

	if claims.TokenType != "access" {
		return nil, nil, errWrongTokenType
	}

	var user model.User
	if err := m.db.First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errUnknownUser
		}
		return nil, nil, errUserLoadFailed
	}

	// Check if token version matches
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, errTokenInvalidated
	}

	return &user, claims, nil
}

func respondAuthError(c *fiber.Ctx, err error) error {
	if err == errUserLoadFailed {
		return response.InternalServerError(c, err.Error())
	}
	return response.Unauthorized(c, err.Error())
}

func storeUser(c *fiber.Ctx, user *model.User, claims *auth.Claims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_role", user.Role)
	c.Locals("claims", claims)
	c.Locals("user", user)
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, err := m.resolveUser(c)
		if err != nil {
			return respondAuthError(c, err)
		}

		storeUser(c, user, claims)
		return c.Next()
	}
}

// Optional is middleware that allows requests with or without a token.
// Anonymous callers proceed with no user in context and get the
// published-courses-only view. An invalid token degrades to anonymous
// rather than failing the request.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}

		user, claims, err := m.resolveUser(c)
		if err != nil {
			if err == errUserLoadFailed {
				return respondAuthError(c, err)
			}
			return c.Next()
		}

		storeUser(c, user, claims)
		return c.Next()
	}
}

// RequireStaff is middleware that requires an admin/staff user
func (m *AuthMiddleware) RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, err := m.resolveUser(c)
		if err != nil {
			return respondAuthError(c, err)
		}

		if !user.IsStaff {
			return response.Forbidden(c, "Admin access required")
		}

		storeUser(c, user, claims)
		return c.Next()
	}
}

// RequireStudentEnabled requires an authenticated user whose student
// capability is currently enabled (staff always passes)
func RequireStudentEnabled() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok {
			return response.Unauthorized(c, "")
		}
		if !user.IsStaff && !user.StudentEnabled {
			return response.Forbidden(c, "Student capability required")
		}
		return c.Next()
	}
}

// RequireInstructorEnabled requires an authenticated user whose instructor
// capability is currently enabled (staff always passes)
func RequireInstructorEnabled() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok {
			return response.Unauthorized(c, "")
		}
		if !user.IsStaff && !user.InstructorEnabled {
			return response.Forbidden(c, "Instructor capability required")
		}
		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}
