package services

import (
	"fmt"
	"time"

	"github.com/aulavivo/lms-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentService handles enrollments and per-lesson progress. Progress is
// derived state: it only changes through lesson completions and the nightly
// reconciliation job, never through direct writes.
type EnrollmentService struct {
	db *gorm.DB
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// Enroll enrolls the caller in a published course. Unpublished courses are
// reported as not found so drafts stay invisible to students. Enrolling is
// idempotent: a second enroll returns the existing row unchanged, and the
// unique (user, course) index turns a concurrent double-enroll into the
// same answer.
func (s *EnrollmentService) Enroll(user *model.User, courseID uint) (*model.Enrollment, error) {
	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished() {
		return nil, notFound("Course not found")
	}

	enrollment := model.Enrollment{
		UserID:   user.ID,
		CourseID: courseID,
		Estado:   model.EnrollmentActivo,
	}
	if err := s.db.Create(&enrollment).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return s.existingEnrollment(user.ID, courseID)
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}
	return &enrollment, nil
}

func (s *EnrollmentService) existingEnrollment(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListMine returns the caller's enrollments with their courses
func (s *EnrollmentService) ListMine(user *model.User) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := s.db.Preload("Course").
		Where("user_id = ?", user.ID).
		Order("id").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// List returns enrollments scoped to the caller: all of them for staff,
// enrollments in own courses for instructors, own rows for students
func (s *EnrollmentService) List(user *model.User) ([]model.Enrollment, error) {
	query := s.db.Preload("Course").Order("id")

	switch {
	case user.IsStaff:
		// unscoped
	case user.InstructorEnabled:
		profile, err := instructorProfileOf(s.db, user)
		if err != nil {
			return nil, err
		}
		ownCourses := s.db.Model(&model.Course{}).Select("id").Where("instructor_id = ?", profile.ID)
		query = query.Where("course_id IN (?) OR user_id = ?", ownCourses, user.ID)
	default:
		query = query.Where("user_id = ?", user.ID)
	}

	var enrollments []model.Enrollment
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListProgress returns lesson progress rows scoped to the caller, optionally
// filtered to one course: all rows for staff, rows on own courses plus own
// rows for instructors, own rows for students
func (s *EnrollmentService) ListProgress(user *model.User, courseID *uint) ([]model.LessonProgress, error) {
	query := s.db.Model(&model.LessonProgress{}).
		Joins("JOIN enrollments ON enrollments.id = lesson_progresses.enrollment_id").
		Order("lesson_progresses.id")

	if courseID != nil {
		query = query.Where("enrollments.course_id = ?", *courseID)
	}

	switch {
	case user.IsStaff:
		// unscoped
	case user.InstructorEnabled:
		profile, err := instructorProfileOf(s.db, user)
		if err != nil {
			return nil, err
		}
		ownCourses := s.db.Model(&model.Course{}).Select("id").Where("instructor_id = ?", profile.ID)
		query = query.Where("enrollments.course_id IN (?) OR enrollments.user_id = ?", ownCourses, user.ID)
	default:
		query = query.Where("enrollments.user_id = ?", user.ID)
	}

	var progress []model.LessonProgress
	if err := query.Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to list lesson progress: %w", err)
	}
	return progress, nil
}

// CompleteLesson marks a lesson completed for the caller's enrollment in the
// lesson's course, then recomputes the enrollment percentage inside the same
// transaction. Completion is idempotent: repeating it never moves
// completed_at and never changes the derived percentage.
func (s *EnrollmentService) CompleteLesson(user *model.User, lessonID uint) (*model.Enrollment, *model.LessonProgress, error) {
	lesson, course, err := courseForLesson(s.db, lessonID)
	if err != nil {
		return nil, nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, nil, notFound("Lesson not found")
	}

	var enrollment model.Enrollment
	var progress model.LessonProgress

	err = s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ? AND course_id = ?", user.ID, course.ID)
		// Serialize concurrent completions on the same enrollment so the
		// derived percentage is computed against a stable row set
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&enrollment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return forbidden("Not enrolled in this course")
			}
			return err
		}
		if !enrollment.IsActive() {
			return forbidden("Enrollment is not active")
		}

		err := tx.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lesson.ID).
			First(&progress).Error
		switch err {
		case nil:
		case gorm.ErrRecordNotFound:
			progress = model.LessonProgress{
				EnrollmentID: enrollment.ID,
				LessonID:     lesson.ID,
			}
		default:
			return err
		}

		if !progress.Completado {
			now := time.Now().UTC()
			progress.Completado = true
			if progress.CompletedAt == nil {
				progress.CompletedAt = &now
			}
			if err := tx.Save(&progress).Error; err != nil {
				if err == gorm.ErrDuplicatedKey {
					return conflict("Lesson already completed")
				}
				return err
			}
		}

		return s.recomputeProgress(tx, &enrollment)
	})
	if err != nil {
		return nil, nil, err
	}
	return &enrollment, &progress, nil
}

// recomputeProgress recalculates the enrollment percentage over ALL lessons
// currently in the course, not just those with progress rows, so lessons
// added after enrollment count against the total
func (s *EnrollmentService) recomputeProgress(tx *gorm.DB, enrollment *model.Enrollment) error {
	var total int64
	err := tx.Model(&model.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", enrollment.CourseID).
		Count(&total).Error
	if err != nil {
		return err
	}

	var completed int64
	err = tx.Model(&model.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lesson_progresses.enrollment_id = ? AND lesson_progresses.completado = ? AND modules.course_id = ?",
			enrollment.ID, true, enrollment.CourseID).
		Count(&completed).Error
	if err != nil {
		return err
	}

	progreso := 0.0
	if total > 0 {
		progreso = Round2(100 * float64(completed) / float64(total))
	}

	enrollment.Progreso = progreso
	return tx.Model(&model.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Update("progreso", progreso).Error
}

// ReconcileAllProgress recomputes every enrollment's percentage. Run by the
// nightly job to repair drift from lessons added or removed after the last
// completion touched the enrollment.
func (s *EnrollmentService) ReconcileAllProgress() (int, error) {
	var enrollments []model.Enrollment
	if err := s.db.Find(&enrollments).Error; err != nil {
		return 0, fmt.Errorf("failed to load enrollments: %w", err)
	}

	updated := 0
	for i := range enrollments {
		before := enrollments[i].Progreso
		if err := s.recomputeProgress(s.db, &enrollments[i]); err != nil {
			return updated, fmt.Errorf("failed to reconcile enrollment %d: %w", enrollments[i].ID, err)
		}
		if enrollments[i].Progreso != before {
			updated++
		}
	}
	return updated, nil
}
