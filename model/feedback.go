package model

import (
	"time"
)

// Comment attaches to exactly one of a course or a lesson. When only the
// lesson is given the owning course is inferred before persisting, so the
// course_id column is always filled for visibility filtering.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CourseID  *uint     `gorm:"index" json:"course_id"`
	LessonID  *uint     `gorm:"index" json:"lesson_id"`
	Texto     string    `gorm:"type:text;not null" json:"texto"`

	// Relationships
	User   User    `gorm:"foreignKey:UserID" json:"-"`
	Course *Course `gorm:"foreignKey:CourseID" json:"-"`
	Lesson *Lesson `gorm:"foreignKey:LessonID" json:"-"`
}

// CourseRating is one user's rating of a course. The (user, course) pair is
// unique and acts as the upsert target for the rate action.
type CourseRating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_rating_user_course" json:"user_id"`
	CourseID  uint      `gorm:"not null;index;uniqueIndex:idx_rating_user_course" json:"course_id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1..5

	// Relationships
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

// RatingSummary is the aggregate returned by the summary action.
// AvgRating is nil when the course has no ratings.
type RatingSummary struct {
	CourseID     uint     `json:"course_id"`
	AvgRating    *float64 `json:"avg_rating"`
	RatingsCount int64    `json:"ratings_count"`
}
