package model

import (
	"time"

	"gorm.io/datatypes"
)

// Enrollment states
const (
	EnrollmentActivo   = "activo"
	EnrollmentInactivo = "inactivo"
)

// Enrollment links a student to a course and carries the derived progress
// percentage. Progreso is never client-set: it is recomputed from
// LessonProgress rows on every lesson completion.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID  uint      `gorm:"not null;index;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	Estado    string    `gorm:"type:varchar(20);default:'activo'" json:"estado"` // activo, inactivo
	Progreso  float64   `gorm:"default:0" json:"progreso"`                       // 0..100

	// Relationships
	User           User             `gorm:"foreignKey:UserID" json:"-"`
	Course         Course           `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	LessonProgress []LessonProgress `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsActive reports whether the enrollment currently grants access
func (e *Enrollment) IsActive() bool {
	return e.Estado == EnrollmentActivo
}

// LessonProgress records per-lesson completion for an enrollment.
// CompletedAt is set on first completion and never cleared.
type LessonProgress struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	EnrollmentID uint       `gorm:"not null;index;uniqueIndex:idx_progress_enrollment_lesson" json:"enrollment_id"`
	LessonID     uint       `gorm:"not null;index;uniqueIndex:idx_progress_enrollment_lesson" json:"lesson_id"`
	Completado   bool       `gorm:"default:false" json:"completado"`
	CompletedAt  *time.Time `json:"completed_at"`

	// Relationships
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID" json:"-"`
	Lesson     Lesson     `gorm:"foreignKey:LessonID" json:"-"`
}

// Submission is one scored quiz attempt. Rows are create-only: attempts form
// an auditable history and are never mutated or deleted through the API.
// Answers stores the submitted payload verbatim, including entries naming
// unknown questions or choices.
type Submission struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	UserID    uint              `gorm:"not null;index;uniqueIndex:idx_submission_attempt" json:"user_id"`
	QuizID    uint              `gorm:"not null;index;uniqueIndex:idx_submission_attempt" json:"quiz_id"`
	Attempt   int               `gorm:"not null;uniqueIndex:idx_submission_attempt" json:"attempt"`
	Score     float64           `gorm:"default:0" json:"score"` // 0..100
	Answers   datatypes.JSONMap `json:"answers"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
	Quiz Quiz `gorm:"foreignKey:QuizID" json:"-"`
}
