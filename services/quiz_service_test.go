package services

import (
	"errors"
	"testing"

	"github.com/aulavivo/lms-api/model"
)

func TestCreateQuizParentValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	course := createCourse(t, db, instructor, model.EstadoBorrador)
	mod := createModule(t, db, course, 1)

	if _, err := svc.CreateQuiz(instructor, CreateQuizRequest{Titulo: "sin padre"}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("CreateQuiz() without parent error = %v, want ErrBadRequest", err)
	}
	if _, err := svc.CreateQuiz(instructor, CreateQuizRequest{
		CourseID: &course.ID,
		ModuleID: &mod.ID,
		Titulo:   "dos padres",
	}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("CreateQuiz() with both parents error = %v, want ErrBadRequest", err)
	}

	courseQuiz, err := svc.CreateQuiz(instructor, CreateQuizRequest{CourseID: &course.ID, Titulo: "final"})
	if err != nil {
		t.Fatalf("CreateQuiz(course) error = %v", err)
	}
	if courseQuiz.Orden != 1 {
		t.Errorf("default Orden = %d, want 1", courseQuiz.Orden)
	}

	if _, err := svc.CreateQuiz(instructor, CreateQuizRequest{ModuleID: &mod.ID, Titulo: "modulo"}); err != nil {
		t.Fatalf("CreateQuiz(module) error = %v", err)
	}
}

func TestCreateQuizOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	other := createUser(t, db, "other@test.com", model.RoleInstructor)
	published := createCourse(t, db, instructor, model.EstadoPublicado)
	draft := createCourse(t, db, instructor, model.EstadoBorrador)

	// Visible but not editable
	if _, err := svc.CreateQuiz(other, CreateQuizRequest{CourseID: &published.ID, Titulo: "ajeno"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign CreateQuiz() error = %v, want ErrForbidden", err)
	}
	// Invisible drafts do not leak
	if _, err := svc.CreateQuiz(other, CreateQuizRequest{CourseID: &draft.ID, Titulo: "ajeno"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("draft CreateQuiz() error = %v, want ErrNotFound", err)
	}
}

func TestListQuizzesIncludesModuleLevel(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	otherCourse := createCourse(t, db, instructor, model.EstadoPublicado)
	mod := createModule(t, db, course, 1)

	if _, err := svc.CreateQuiz(instructor, CreateQuizRequest{CourseID: &course.ID, Titulo: "final"}); err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}
	if _, err := svc.CreateQuiz(instructor, CreateQuizRequest{ModuleID: &mod.ID, Titulo: "parcial"}); err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}
	if _, err := svc.CreateQuiz(instructor, CreateQuizRequest{CourseID: &otherCourse.ID, Titulo: "otro"}); err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}

	quizzes, err := svc.ListQuizzes(nil, course.ID)
	if err != nil {
		t.Fatalf("ListQuizzes() error = %v", err)
	}
	if len(quizzes) != 2 {
		t.Errorf("ListQuizzes() returned %d quizzes, want 2", len(quizzes))
	}
}

func TestGetQuizTree(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	quiz := createQuiz(t, db, course)
	createQuestion(t, db, quiz, 2)
	createQuestion(t, db, quiz, 1)

	loaded, err := svc.GetQuiz(student, quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz() error = %v", err)
	}
	if len(loaded.Questions) != 2 {
		t.Fatalf("Questions = %d, want 2", len(loaded.Questions))
	}
	if loaded.Questions[0].Orden != 1 {
		t.Errorf("questions not ordered by orden: first has orden %d", loaded.Questions[0].Orden)
	}
	if len(loaded.Questions[0].Choices) != 2 {
		t.Errorf("Choices = %d, want 2", len(loaded.Questions[0].Choices))
	}
}

func TestQuestionOrdenConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	course := createCourse(t, db, instructor, model.EstadoBorrador)
	quiz := createQuiz(t, db, course)

	if _, err := svc.CreateQuestion(instructor, CreateQuestionRequest{QuizID: quiz.ID, Texto: "a", Orden: 1}); err != nil {
		t.Fatalf("CreateQuestion() error = %v", err)
	}
	if _, err := svc.CreateQuestion(instructor, CreateQuestionRequest{QuizID: quiz.ID, Texto: "b", Orden: 1}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate orden CreateQuestion() error = %v, want ErrConflict", err)
	}
}

func TestChoiceLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	quiz := createQuiz(t, db, course)
	question, err := svc.CreateQuestion(instructor, CreateQuestionRequest{QuizID: quiz.ID, Texto: "pregunta"})
	if err != nil {
		t.Fatalf("CreateQuestion() error = %v", err)
	}

	choice, err := svc.CreateChoice(instructor, CreateChoiceRequest{QuestionID: question.ID, Texto: "a", Correcta: true})
	if err != nil {
		t.Fatalf("CreateChoice() error = %v", err)
	}
	if _, err := svc.CreateChoice(student, CreateChoiceRequest{QuestionID: question.ID, Texto: "b"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("student CreateChoice() error = %v, want ErrForbidden", err)
	}

	correcta := false
	updated, err := svc.UpdateChoice(instructor, choice.ID, UpdateChoiceRequest{Correcta: &correcta})
	if err != nil {
		t.Fatalf("UpdateChoice() error = %v", err)
	}
	if updated.Correcta {
		t.Error("Correcta = true after update to false")
	}

	if err := svc.DeleteChoice(instructor, choice.ID); err != nil {
		t.Fatalf("DeleteChoice() error = %v", err)
	}
	choices, err := svc.ListChoices(instructor, question.ID)
	if err != nil {
		t.Fatalf("ListChoices() error = %v", err)
	}
	if len(choices) != 0 {
		t.Errorf("ListChoices() returned %d choices after delete, want 0", len(choices))
	}
}
