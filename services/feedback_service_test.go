package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aulavivo/lms-api/model"
)

func TestRateUpsert(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedbackService(db, nil)
	ctx := context.Background()

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	enrollUser(t, db, student, course)

	first, err := svc.Rate(ctx, student, course.ID, 4)
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if first.Rating != 4 {
		t.Errorf("Rating = %d, want 4", first.Rating)
	}

	second, err := svc.Rate(ctx, student, course.ID, 2)
	if err != nil {
		t.Fatalf("second Rate() error = %v", err)
	}
	if second.Rating != 2 {
		t.Errorf("Rating = %d, want 2", second.Rating)
	}
	if second.ID != first.ID {
		t.Errorf("re-rating created a new row: %d then %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&model.CourseRating{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count ratings: %v", err)
	}
	if count != 1 {
		t.Errorf("rating rows = %d, want 1", count)
	}
}

func TestRateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedbackService(db, nil)
	ctx := context.Background()

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	outsider := createUser(t, db, "outsider@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	enrollUser(t, db, student, course)

	if _, err := svc.Rate(ctx, student, course.ID, 0); !errors.Is(err, ErrBadRequest) {
		t.Errorf("Rate(0) error = %v, want ErrBadRequest", err)
	}
	if _, err := svc.Rate(ctx, student, course.ID, 6); !errors.Is(err, ErrBadRequest) {
		t.Errorf("Rate(6) error = %v, want ErrBadRequest", err)
	}
	if _, err := svc.Rate(ctx, outsider, course.ID, 3); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-enrolled Rate() error = %v, want ErrForbidden", err)
	}
}

func TestRatingSummary(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedbackService(db, nil)
	ctx := context.Background()

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	s1 := createUser(t, db, "s1@test.com", model.RoleStudent)
	s2 := createUser(t, db, "s2@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	enrollUser(t, db, s1, course)
	enrollUser(t, db, s2, course)

	// No ratings yet: count zero and no average
	summary, err := svc.Summary(ctx, s1, course.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.RatingsCount != 0 {
		t.Errorf("RatingsCount = %d, want 0", summary.RatingsCount)
	}
	if summary.AvgRating != nil {
		t.Errorf("AvgRating = %v, want nil", *summary.AvgRating)
	}

	if _, err := svc.Rate(ctx, s1, course.ID, 5); err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if _, err := svc.Rate(ctx, s2, course.ID, 2); err != nil {
		t.Fatalf("Rate() error = %v", err)
	}

	summary, err = svc.Summary(ctx, s1, course.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.RatingsCount != 2 {
		t.Errorf("RatingsCount = %d, want 2", summary.RatingsCount)
	}
	if summary.AvgRating == nil || *summary.AvgRating != 3.5 {
		t.Errorf("AvgRating = %v, want 3.5", summary.AvgRating)
	}
}

func TestSummaryUnpublishedCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedbackService(db, nil)
	ctx := context.Background()

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	staff := createUser(t, db, "admin@test.com", model.RoleAdmin)
	draft := createCourse(t, db, instructor, model.EstadoBorrador)

	// Drafts have no public aggregate. Even the owner and staff get 403;
	// the course page shows no summary until publication.
	if _, err := svc.Summary(ctx, instructor, draft.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("owner Summary() on draft error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Summary(ctx, staff, draft.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("staff Summary() on draft error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Summary(ctx, nil, draft.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("anonymous Summary() on draft error = %v, want ErrForbidden", err)
	}
}

func TestCreateCommentTargets(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedbackService(db, nil)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	mod := createModule(t, db, course, 1)
	lesson := createLesson(t, db, mod, 1)
	enrollUser(t, db, student, course)

	if _, err := svc.CreateComment(student, CreateCommentRequest{Texto: "hola"}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("CreateComment() without target error = %v, want ErrBadRequest", err)
	}

	// Naming both targets is rejected, even when they agree
	if _, err := svc.CreateComment(student, CreateCommentRequest{
		CourseID: &course.ID,
		LessonID: &lesson.ID,
		Texto:    "hola",
	}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("CreateComment() with both targets error = %v, want ErrBadRequest", err)
	}

	// A lesson comment gets its owning course filled in from the lesson
	comment, err := svc.CreateComment(student, CreateCommentRequest{
		LessonID: &lesson.ID,
		Texto:    "buena leccion",
	})
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if comment.CourseID == nil || *comment.CourseID != course.ID {
		t.Errorf("CourseID = %v, want %d", comment.CourseID, course.ID)
	}
	if comment.LessonID == nil || *comment.LessonID != lesson.ID {
		t.Errorf("LessonID = %v, want %d", comment.LessonID, lesson.ID)
	}

	courseComment, err := svc.CreateComment(student, CreateCommentRequest{
		CourseID: &course.ID,
		Texto:    "buen curso",
	})
	if err != nil {
		t.Fatalf("course CreateComment() error = %v", err)
	}
	if courseComment.LessonID != nil {
		t.Errorf("LessonID = %v, want nil", *courseComment.LessonID)
	}
}

func TestCreateCommentRequiresEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedbackService(db, nil)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	outsider := createUser(t, db, "outsider@test.com", model.RoleStudent)
	staff := createUser(t, db, "admin@test.com", model.RoleAdmin)
	course := createCourse(t, db, instructor, model.EstadoPublicado)

	req := CreateCommentRequest{CourseID: &course.ID, Texto: "hola"}
	if _, err := svc.CreateComment(outsider, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-enrolled CreateComment() error = %v, want ErrForbidden", err)
	}

	// Staff comments without enrolling
	if _, err := svc.CreateComment(staff, req); err != nil {
		t.Errorf("staff CreateComment() error = %v", err)
	}
}

func TestCommentOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedbackService(db, nil)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	author := createUser(t, db, "author@test.com", model.RoleStudent)
	other := createUser(t, db, "other@test.com", model.RoleStudent)
	staff := createUser(t, db, "admin@test.com", model.RoleAdmin)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	enrollUser(t, db, author, course)
	enrollUser(t, db, other, course)

	comment, err := svc.CreateComment(author, CreateCommentRequest{CourseID: &course.ID, Texto: "original"})
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if _, err := svc.UpdateComment(other, comment.ID, UpdateCommentRequest{Texto: "hijacked"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign UpdateComment() error = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteComment(other, comment.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign DeleteComment() error = %v, want ErrForbidden", err)
	}

	updated, err := svc.UpdateComment(staff, comment.ID, UpdateCommentRequest{Texto: "moderated"})
	if err != nil {
		t.Fatalf("staff UpdateComment() error = %v", err)
	}
	if updated.Texto != "moderated" {
		t.Errorf("Texto = %q, want moderated", updated.Texto)
	}

	if err := svc.DeleteComment(author, comment.ID); err != nil {
		t.Fatalf("owner DeleteComment() error = %v", err)
	}
	if err := svc.DeleteComment(author, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeated DeleteComment() error = %v, want ErrNotFound", err)
	}
}

func TestListCommentsFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedbackService(db, nil)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	mod := createModule(t, db, course, 1)
	lesson := createLesson(t, db, mod, 1)
	enrollUser(t, db, student, course)

	if _, err := svc.CreateComment(student, CreateCommentRequest{CourseID: &course.ID, Texto: "curso"}); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if _, err := svc.CreateComment(student, CreateCommentRequest{LessonID: &lesson.ID, Texto: "leccion"}); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	byLesson, err := svc.ListComments(student, nil, &lesson.ID)
	if err != nil {
		t.Fatalf("ListComments(lesson) error = %v", err)
	}
	if len(byLesson) != 1 {
		t.Errorf("lesson filter returned %d comments, want 1", len(byLesson))
	}

	byCourse, err := svc.ListComments(student, &course.ID, nil)
	if err != nil {
		t.Fatalf("ListComments(course) error = %v", err)
	}
	if len(byCourse) != 2 {
		t.Errorf("course filter returned %d comments, want 2", len(byCourse))
	}

	all, err := svc.ListComments(nil, nil, nil)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered list returned %d comments, want 2", len(all))
	}
}
