package services

import (
	"fmt"

	"github.com/aulavivo/lms-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmissionService handles quiz attempts. Submissions are append-only:
// every attempt is a new row and rows are never mutated afterwards.
type SubmissionService struct {
	db *gorm.DB
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{db: db}
}

// Submit grades and stores a quiz attempt for the caller. The submitted
// answers are persisted verbatim, including entries naming unknown
// questions, so the stored payload always matches what the client sent.
func (s *SubmissionService) Submit(user *model.User, quizID uint, answers map[string]interface{}) (*model.Submission, error) {
	quiz, course, err := courseForQuiz(s.db, quizID)
	if err != nil {
		return nil, err
	}
	// The published gate comes before any visibility answer: a quiz on a
	// draft course is 403 for everyone, even callers who can see the draft
	if !course.IsPublished() {
		return nil, forbidden("The course is not published")
	}

	var enrollment model.Enrollment
	err = s.db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&enrollment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, forbidden("Not enrolled in this course")
	}
	if err != nil {
		return nil, err
	}
	if !enrollment.IsActive() {
		return nil, forbidden("Enrollment is not active")
	}

	var questions []model.Question
	err = s.db.Preload("Choices").
		Where("quiz_id = ?", quiz.ID).
		Order("orden, id").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, badRequest("The quiz has no questions")
	}

	var lastAttempt int
	err = s.db.Model(&model.Submission{}).
		Where("user_id = ? AND quiz_id = ?", user.ID, quiz.ID).
		Select("COALESCE(MAX(attempt), 0)").
		Scan(&lastAttempt).Error
	if err != nil {
		return nil, fmt.Errorf("failed to determine attempt number: %w", err)
	}

	if answers == nil {
		answers = map[string]interface{}{}
	}

	submission := model.Submission{
		UserID:  user.ID,
		QuizID:  quiz.ID,
		Attempt: lastAttempt + 1,
		Score:   ScoreAnswers(questions, answers),
		Answers: datatypes.JSONMap(answers),
	}

	// Two racing submissions can compute the same attempt number; the
	// (user, quiz, attempt) unique index turns the loser into a 409
	if err := s.db.Create(&submission).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, conflict("A concurrent submission claimed this attempt, retry")
		}
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}
	return &submission, nil
}

// List returns submissions scoped to the caller: everything for staff,
// submissions against own courses for instructors, own rows for students
func (s *SubmissionService) List(user *model.User) ([]model.Submission, error) {
	query := s.db.Order("id")

	switch {
	case user.IsStaff:
		// unscoped
	case user.InstructorEnabled:
		profile, err := instructorProfileOf(s.db, user)
		if err != nil {
			return nil, err
		}
		ownCourses := s.db.Model(&model.Course{}).Select("id").Where("instructor_id = ?", profile.ID)
		ownModules := s.db.Model(&model.Module{}).Select("id").Where("course_id IN (?)", ownCourses)
		ownQuizzes := s.db.Model(&model.Quiz{}).Select("id").
			Where("course_id IN (?) OR module_id IN (?)", ownCourses, ownModules)
		query = query.Where("quiz_id IN (?) OR user_id = ?", ownQuizzes, user.ID)
	default:
		query = query.Where("user_id = ?", user.ID)
	}

	var submissions []model.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// Get returns one submission if the caller may see it: its owner, the
// instructor owning the quiz's course, or staff
func (s *SubmissionService) Get(user *model.User, submissionID uint) (*model.Submission, error) {
	var submission model.Submission
	err := s.db.First(&submission, submissionID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFound("Submission not found")
	}
	if err != nil {
		return nil, err
	}

	if submission.UserID != user.ID && !user.IsStaff {
		_, course, err := courseForQuiz(s.db, submission.QuizID)
		if err != nil {
			return nil, err
		}
		if !IsCourseOwner(user, course) {
			return nil, notFound("Submission not found")
		}
	}
	return &submission, nil
}
