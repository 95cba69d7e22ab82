package auth

import (
	"time"

	"github.com/aulavivo/lms-api/model"
	authutil "github.com/aulavivo/lms-api/utils/auth"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/aulavivo/lms-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
}

// RegisterResponse represents a successful registration response
type RegisterResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID                uint      `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Role              string    `json:"role"`
	StudentEnabled    bool      `json:"student_enabled"`
	InstructorEnabled bool      `json:"instructor_enabled"`
	IsStaff           bool      `json:"is_staff"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:                user.ID,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Role:              user.Role,
		StudentEnabled:    user.StudentEnabled,
		InstructorEnabled: user.InstructorEnabled,
		IsStaff:           user.IsStaff,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}
}

// RegisterStudent handles student registration
func (h *AuthHandler) RegisterStudent(c *fiber.Ctx) error {
	return h.register(c, model.RoleStudent)
}

// RegisterInstructor handles instructor registration
func (h *AuthHandler) RegisterInstructor(c *fiber.Ctx) error {
	return h.register(c, model.RoleInstructor)
}

// register creates the user with both profiles in one transaction. Profiles
// are created eagerly regardless of role; the capability flags decide which
// one is usable.
func (h *AuthHandler) register(c *fiber.Ctx, role string) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Check if user already exists
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FirstName:    validation.SanitizeString(req.FirstName),
		LastName:     validation.SanitizeString(req.LastName),
		Role:         role,
	}
	user.ApplyRole()

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		studentProfile := model.StudentProfile{
			UserID:   user.ID,
			Nombre:   user.FirstName,
			Apellido: user.LastName,
		}
		if err := tx.Create(&studentProfile).Error; err != nil {
			return err
		}
		instructorProfile := model.InstructorProfile{
			UserID: user.ID,
		}
		return tx.Create(&instructorProfile).Error
	})
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			return response.Conflict(c, "User with this email already exists")
		}
		return response.InternalServerError(c, "Failed to create user")
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}
	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	return c.Status(fiber.StatusCreated).JSON(response.Response{
		Success: true,
		Message: "Resource created successfully",
		Data: RegisterResponse{
			User:         toUserResponse(&user),
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    24 * 60 * 60,
		},
	})
}
