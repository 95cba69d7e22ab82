package services

import (
	"errors"
	"testing"

	"github.com/aulavivo/lms-api/model"
)

func TestSubmitScoring(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubmissionService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	quiz := createQuiz(t, db, course)

	q1, correct1, _ := createQuestion(t, db, quiz, 1)
	q2, correct2, _ := createQuestion(t, db, quiz, 2)
	q3, _, wrong3 := createQuestion(t, db, quiz, 3)

	enrollUser(t, db, student, course)

	answers := map[string]interface{}{
		questionKey(q1): float64(correct1),
		questionKey(q2): float64(correct2),
		questionKey(q3): float64(wrong3),
		"9999":          float64(correct1),
	}
	submission, err := svc.Submit(student, quiz.ID, answers)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if submission.Score != 66.67 {
		t.Errorf("Score = %v, want 66.67", submission.Score)
	}
	if submission.Attempt != 1 {
		t.Errorf("Attempt = %d, want 1", submission.Attempt)
	}
	// The payload is stored verbatim, unknown keys included
	if _, ok := submission.Answers["9999"]; !ok {
		t.Error("unknown answer key was dropped from the stored payload")
	}

	second, err := svc.Submit(student, quiz.ID, map[string]interface{}{
		questionKey(q1): float64(correct1),
	})
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if second.Attempt != 2 {
		t.Errorf("second Attempt = %d, want 2", second.Attempt)
	}
	if second.Score != 33.33 {
		t.Errorf("second Score = %v, want 33.33", second.Score)
	}
}

func TestSubmitNilAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubmissionService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	quiz := createQuiz(t, db, course)
	createQuestion(t, db, quiz, 1)

	enrollUser(t, db, student, course)

	submission, err := svc.Submit(student, quiz.ID, nil)
	if err != nil {
		t.Fatalf("Submit(nil) error = %v", err)
	}
	if submission.Score != 0 {
		t.Errorf("Score = %v, want 0", submission.Score)
	}
	if submission.Answers == nil {
		t.Error("Answers = nil, want empty map")
	}
}

func TestSubmitRequiresEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubmissionService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	quiz := createQuiz(t, db, course)
	createQuestion(t, db, quiz, 1)

	if _, err := svc.Submit(student, quiz.ID, nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-enrolled Submit() error = %v, want ErrForbidden", err)
	}

	var count int64
	if err := db.Model(&model.Submission{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count submissions: %v", err)
	}
	if count != 0 {
		t.Errorf("rejected submission left %d rows behind", count)
	}
}

func TestSubmitEmptyQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubmissionService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	quiz := createQuiz(t, db, course)

	enrollUser(t, db, student, course)

	if _, err := svc.Submit(student, quiz.ID, nil); !errors.Is(err, ErrBadRequest) {
		t.Errorf("Submit() against empty quiz error = %v, want ErrBadRequest", err)
	}
}

func TestSubmitUnpublishedCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubmissionService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoBorrador)
	quiz := createQuiz(t, db, course)
	createQuestion(t, db, quiz, 1)

	if _, err := svc.Submit(student, quiz.ID, nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("Submit() against draft course error = %v, want ErrForbidden", err)
	}

	// Enrolled students hit the same gate when a course is withdrawn after
	// they joined: unpublished means 403, not a vanished quiz
	if err := db.Model(course).Update("estado", model.EstadoPublicado).Error; err != nil {
		t.Fatalf("failed to publish course: %v", err)
	}
	enrollUser(t, db, student, course)
	if err := db.Model(course).Update("estado", model.EstadoBorrador).Error; err != nil {
		t.Fatalf("failed to withdraw course: %v", err)
	}

	if _, err := svc.Submit(student, quiz.ID, nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("Submit() after course withdrawn error = %v, want ErrForbidden", err)
	}
}

func TestSubmissionAccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubmissionService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	other := createUser(t, db, "other@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	staff := createUser(t, db, "admin@test.com", model.RoleAdmin)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	quiz := createQuiz(t, db, course)
	createQuestion(t, db, quiz, 1)

	enrollUser(t, db, student, course)
	submission, err := svc.Submit(student, quiz.ID, nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, err := svc.Get(student, submission.ID); err != nil {
		t.Errorf("owner Get() error = %v", err)
	}
	if _, err := svc.Get(instructor, submission.ID); err != nil {
		t.Errorf("course owner Get() error = %v", err)
	}
	if _, err := svc.Get(staff, submission.ID); err != nil {
		t.Errorf("staff Get() error = %v", err)
	}
	if _, err := svc.Get(other, submission.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("unrelated instructor Get() error = %v, want ErrNotFound", err)
	}

	mine, err := svc.List(student)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("student List() returned %d submissions, want 1", len(mine))
	}
	foreign, err := svc.List(other)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(foreign) != 0 {
		t.Errorf("unrelated instructor List() returned %d submissions, want 0", len(foreign))
	}
}
