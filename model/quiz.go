package model

import (
	"time"
)

// Quiz hangs off exactly one of a course or a module (XOR). The database
// enforces the constraint too (see database.GORMStore.Init); validating
// here first produces field-level errors instead of a raw integrity fault.
type Quiz struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CourseID    *uint     `gorm:"index" json:"course_id"`
	ModuleID    *uint     `gorm:"index" json:"module_id"`
	Titulo      string    `gorm:"type:varchar(200);not null" json:"titulo"`
	Descripcion string    `gorm:"type:text" json:"descripcion"`
	Orden       int       `gorm:"default:1" json:"orden"`

	// Relationships
	Course    *Course    `gorm:"foreignKey:CourseID" json:"-"`
	Module    *Module    `gorm:"foreignKey:ModuleID" json:"-"`
	Questions []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// HasValidParent reports whether exactly one of course/module is set
func (q *Quiz) HasValidParent() bool {
	return (q.CourseID != nil) != (q.ModuleID != nil)
}

// Question belongs to a quiz; Orden is unique per quiz.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	QuizID    uint      `gorm:"not null;index;uniqueIndex:idx_question_quiz_orden" json:"quiz_id"`
	Texto     string    `gorm:"type:text;not null" json:"texto"`
	Orden     int       `gorm:"default:1;uniqueIndex:idx_question_quiz_orden" json:"orden"`

	// Relationships
	Quiz    Quiz     `gorm:"foreignKey:QuizID" json:"-"`
	Choices []Choice `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

// Choice is one answer option. Nothing constrains a question to a single
// correct choice; scoring treats any correct choice as a hit.
type Choice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Texto      string    `gorm:"type:varchar(255);not null" json:"texto"`
	Correcta   bool      `gorm:"default:false" json:"correcta"`

	// Relationships
	Question Question `gorm:"foreignKey:QuestionID" json:"-"`
}
