package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/utils/cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ratingSummaryTTL = 5 * time.Minute

// FeedbackService handles comments and course ratings. Rating summaries are
// cached in Redis and invalidated whenever a rating changes.
type FeedbackService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewFeedbackService creates a new feedback service. redisCache may be nil;
// summaries are then computed on every request.
func NewFeedbackService(db *gorm.DB, redisCache *cache.RedisCache) *FeedbackService {
	return &FeedbackService{db: db, cache: redisCache}
}

// CreateCommentRequest represents the request to create a comment. Exactly
// one of course_id/lesson_id must be given; a lesson comment gets its owning
// course filled in from the lesson.
type CreateCommentRequest struct {
	CourseID *uint  `json:"course_id"`
	LessonID *uint  `json:"lesson_id"`
	Texto    string `json:"texto" validate:"required"`
}

// UpdateCommentRequest represents a comment text update
type UpdateCommentRequest struct {
	Texto string `json:"texto" validate:"required"`
}

// RateRequest represents the request to rate a course
type RateRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

func ratingSummaryKey(courseID uint) string {
	return fmt.Sprintf("rating_summary:%d", courseID)
}

// requireFeedbackAccess checks the shared write rule for comments and
// ratings: enabled student capability, published course and an active
// enrollment. Staff bypasses all three.
func (s *FeedbackService) requireFeedbackAccess(user *model.User, course *model.Course) error {
	if user.IsStaff {
		return nil
	}
	if !user.StudentEnabled {
		return forbidden("Student capability required")
	}
	if !course.IsPublished() {
		return forbidden("The course is not published")
	}

	var enrollment model.Enrollment
	err := s.db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&enrollment).Error
	if err == gorm.ErrRecordNotFound {
		return forbidden("Not enrolled in this course")
	}
	if err != nil {
		return err
	}
	if !enrollment.IsActive() {
		return forbidden("Enrollment is not active")
	}
	return nil
}

// ListComments returns comments filtered by course or lesson. Without a
// filter, staff sees everything and other callers see comments on courses
// visible to them.
func (s *FeedbackService) ListComments(user *model.User, courseID, lessonID *uint) ([]model.Comment, error) {
	query := s.db.Order("id")

	switch {
	case lessonID != nil:
		_, course, err := courseForLesson(s.db, *lessonID)
		if err != nil {
			return nil, err
		}
		if !CanViewCourse(user, course) {
			return nil, notFound("Lesson not found")
		}
		query = query.Where("lesson_id = ?", *lessonID)
	case courseID != nil:
		course, err := loadCourse(s.db, *courseID)
		if err != nil {
			return nil, err
		}
		if !CanViewCourse(user, course) {
			return nil, notFound("Course not found")
		}
		query = query.Where("course_id = ?", *courseID)
	case user != nil && user.IsStaff:
		// unscoped
	default:
		published := s.db.Model(&model.Course{}).Select("id").Where("estado = ?", model.EstadoPublicado)
		query = query.Where("course_id IN (?)", published)
	}

	var comments []model.Comment
	if err := query.Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CreateComment attaches a comment to a course or a lesson
func (s *FeedbackService) CreateComment(user *model.User, req CreateCommentRequest) (*model.Comment, error) {
	if (req.CourseID == nil) == (req.LessonID == nil) {
		return nil, badRequest("A comment needs exactly one of course or lesson")
	}

	comment := model.Comment{
		UserID: user.ID,
		Texto:  req.Texto,
	}

	var course *model.Course
	if req.LessonID != nil {
		lesson, c, err := courseForLesson(s.db, *req.LessonID)
		if err != nil {
			return nil, err
		}
		course = c
		comment.LessonID = &lesson.ID
		comment.CourseID = &c.ID
	} else {
		c, err := loadCourse(s.db, *req.CourseID)
		if err != nil {
			return nil, err
		}
		course = c
		comment.CourseID = &c.ID
	}

	if !CanViewCourse(user, course) {
		return nil, notFound("Course not found")
	}
	if !CanGiveFeedback(user) {
		return nil, forbidden("Student capability required")
	}
	if err := s.requireFeedbackAccess(user, course); err != nil {
		return nil, err
	}

	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &comment, nil
}

// UpdateComment changes the text of the caller's own comment. Staff may
// edit any comment.
func (s *FeedbackService) UpdateComment(user *model.User, commentID uint, req UpdateCommentRequest) (*model.Comment, error) {
	var comment model.Comment
	err := s.db.First(&comment, commentID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFound("Comment not found")
	}
	if err != nil {
		return nil, err
	}

	if comment.UserID != user.ID && !user.IsStaff {
		return nil, forbidden("Only the comment author may modify it")
	}

	comment.Texto = req.Texto
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return &comment, nil
}

// DeleteComment removes the caller's own comment. Staff may delete any.
func (s *FeedbackService) DeleteComment(user *model.User, commentID uint) error {
	var comment model.Comment
	err := s.db.First(&comment, commentID).Error
	if err == gorm.ErrRecordNotFound {
		return notFound("Comment not found")
	}
	if err != nil {
		return err
	}

	if comment.UserID != user.ID && !user.IsStaff {
		return forbidden("Only the comment author may delete it")
	}

	if err := s.db.Delete(&comment).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// Rate records or replaces the caller's rating of a course. The write is a
// single atomic upsert on the (user, course) pair, so concurrent calls
// settle on exactly one row holding the last value.
func (s *FeedbackService) Rate(ctx context.Context, user *model.User, courseID uint, rating int) (*model.CourseRating, error) {
	if rating < 1 || rating > 5 {
		return nil, badRequest("Rating must be between 1 and 5")
	}

	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Course not found")
	}
	if !CanGiveFeedback(user) {
		return nil, forbidden("Student capability required")
	}
	if err := s.requireFeedbackAccess(user, course); err != nil {
		return nil, err
	}

	row := model.CourseRating{
		UserID:   user.ID,
		CourseID: courseID,
		Rating:   rating,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to store rating: %w", err)
	}

	if s.cache != nil {
		s.cache.Delete(ctx, ratingSummaryKey(courseID))
	}

	// Reload so the upsert path also returns the row id
	err = s.db.Where("user_id = ? AND course_id = ?", user.ID, courseID).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload rating: %w", err)
	}
	return &row, nil
}

// ListRatings returns all ratings of a course visible to the caller
func (s *FeedbackService) ListRatings(user *model.User, courseID uint) ([]model.CourseRating, error) {
	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Course not found")
	}

	var ratings []model.CourseRating
	err = s.db.Where("course_id = ?", courseID).Order("id").Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

// Summary returns the course's average rating and count, served from Redis
// when a fresh cached value exists. Summaries exist only for published
// courses; a draft answers 403 for everyone, its owner included, so the
// aggregate never leaks into course cards before publication.
func (s *FeedbackService) Summary(ctx context.Context, user *model.User, courseID uint) (*model.RatingSummary, error) {
	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished() {
		return nil, forbidden("The course is not published")
	}

	if s.cache != nil {
		var cached model.RatingSummary
		if err := s.cache.GetJSON(ctx, ratingSummaryKey(courseID), &cached); err == nil {
			return &cached, nil
		}
	}

	summary, err := s.computeSummary(courseID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, ratingSummaryKey(courseID), summary, ratingSummaryTTL)
	}
	return summary, nil
}

// RefreshSummary recomputes and re-caches one course's summary. Used by the
// background refresh job.
func (s *FeedbackService) RefreshSummary(ctx context.Context, courseID uint) error {
	summary, err := s.computeSummary(courseID)
	if err != nil {
		return err
	}
	if s.cache != nil {
		return s.cache.SetJSON(ctx, ratingSummaryKey(courseID), summary, ratingSummaryTTL)
	}
	return nil
}

func (s *FeedbackService) computeSummary(courseID uint) (*model.RatingSummary, error) {
	summary := &model.RatingSummary{CourseID: courseID}

	err := s.db.Model(&model.CourseRating{}).
		Where("course_id = ?", courseID).
		Count(&summary.RatingsCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count ratings: %w", err)
	}

	if summary.RatingsCount > 0 {
		var avg float64
		err = s.db.Model(&model.CourseRating{}).
			Where("course_id = ?", courseID).
			Select("AVG(rating)").
			Scan(&avg).Error
		if err != nil {
			return nil, fmt.Errorf("failed to average ratings: %w", err)
		}
		avg = Round2(avg)
		summary.AvgRating = &avg
	}
	return summary, nil
}
