package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	FirstName    string         `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string         `gorm:"type:varchar(150)" json:"last_name"`
	Role         string         `gorm:"type:varchar(15);default:'student'" json:"role"` // student, instructor, admin

	// Capability flags. Role is the nominal label; these gate what the user
	// can actually do right now and are toggled independently by admins.
	StudentEnabled    bool `gorm:"default:true" json:"student_enabled"`
	InstructorEnabled bool `gorm:"default:false" json:"instructor_enabled"`
	IsStaff           bool `gorm:"default:false" json:"is_staff"`

	TokenVersion int `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	StudentProfile    *StudentProfile    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"student_profile,omitempty"`
	InstructorProfile *InstructorProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"instructor_profile,omitempty"`
	Enrollments       []Enrollment       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Submissions       []Submission       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Comments          []Comment          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CourseRatings     []CourseRating     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// ApplyRole applies the capability flags implied by the user's role.
// Called at registration and role-change time, never as a save hook, so
// admin-toggled flags are not silently overwritten by unrelated updates.
func (u *User) ApplyRole() {
	switch u.Role {
	case RoleAdmin:
		u.IsStaff = true
	case RoleInstructor:
		u.InstructorEnabled = true
	case RoleStudent:
		u.StudentEnabled = true
	}
}

// IsValidRole reports whether role is one of the known role labels
func IsValidRole(role string) bool {
	return role == RoleStudent || role == RoleInstructor || role == RoleAdmin
}

// StudentProfile is the 1:1 student-facing profile, created eagerly at
// registration regardless of role. StudentEnabled on the user gates whether
// it grants any capability.
type StudentProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Nombre    string    `gorm:"type:varchar(100)" json:"nombre"`
	Apellido  string    `gorm:"type:varchar(100)" json:"apellido"`
}

// InstructorProfile is the 1:1 instructor-facing profile and the ownership
// root for courses. Created eagerly at registration like StudentProfile.
type InstructorProfile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio           string    `gorm:"type:text" json:"bio"`
	Especialidad  string    `gorm:"type:varchar(100)" json:"especialidad"`
	RedesSociales string    `gorm:"type:varchar(255)" json:"redes_sociales"`

	Courses []Course `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"-"`
}
