package services

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/aulavivo/lms-api/database"
	"github.com/aulavivo/lms-api/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database migrated with the full
// schema. TranslateError is on so unique violations surface as
// gorm.ErrDuplicatedKey like they do on postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	store := database.NewGORMStore(db)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()

	user := model.User{
		Email:          email,
		PasswordHash:   "x",
		FirstName:      "Test",
		LastName:       "User",
		Role:           role,
		StudentEnabled: true,
	}
	user.ApplyRole()
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	studentProfile := model.StudentProfile{UserID: user.ID, Nombre: user.FirstName, Apellido: user.LastName}
	if err := db.Create(&studentProfile).Error; err != nil {
		t.Fatalf("failed to create student profile: %v", err)
	}
	instructorProfile := model.InstructorProfile{UserID: user.ID}
	if err := db.Create(&instructorProfile).Error; err != nil {
		t.Fatalf("failed to create instructor profile: %v", err)
	}
	return &user
}

func createCourse(t *testing.T, db *gorm.DB, instructor *model.User, estado string) *model.Course {
	t.Helper()

	profile, err := instructorProfileOf(db, instructor)
	if err != nil {
		t.Fatalf("failed to load instructor profile: %v", err)
	}

	course := model.Course{
		InstructorID: profile.ID,
		Titulo:       "Curso de prueba",
		Estado:       estado,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	// Reload with the instructor for ownership checks
	if err := db.Preload("Instructor").First(&course, course.ID).Error; err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	return &course
}

func createModule(t *testing.T, db *gorm.DB, course *model.Course, orden int) *model.Module {
	t.Helper()

	mod := model.Module{CourseID: course.ID, Titulo: fmt.Sprintf("Modulo %d", orden), Orden: orden}
	if err := db.Create(&mod).Error; err != nil {
		t.Fatalf("failed to create module: %v", err)
	}
	return &mod
}

func createLesson(t *testing.T, db *gorm.DB, mod *model.Module, orden int) *model.Lesson {
	t.Helper()

	lesson := model.Lesson{
		ModuleID:  mod.ID,
		Titulo:    fmt.Sprintf("Leccion %d", orden),
		Tipo:      model.TipoTexto,
		Contenido: "contenido",
		Orden:     orden,
	}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("failed to create lesson: %v", err)
	}
	return &lesson
}

func createQuiz(t *testing.T, db *gorm.DB, course *model.Course) *model.Quiz {
	t.Helper()

	quiz := model.Quiz{CourseID: &course.ID, Titulo: "Quiz", Orden: 1}
	if err := db.Create(&quiz).Error; err != nil {
		t.Fatalf("failed to create quiz: %v", err)
	}
	return &quiz
}

// createQuestion adds a question with one correct and one wrong choice and
// returns (question, correctChoiceID, wrongChoiceID)
func createQuestion(t *testing.T, db *gorm.DB, quiz *model.Quiz, orden int) (*model.Question, uint, uint) {
	t.Helper()

	question := model.Question{QuizID: quiz.ID, Texto: fmt.Sprintf("Pregunta %d", orden), Orden: orden}
	if err := db.Create(&question).Error; err != nil {
		t.Fatalf("failed to create question: %v", err)
	}

	correct := model.Choice{QuestionID: question.ID, Texto: "correcta", Correcta: true}
	if err := db.Create(&correct).Error; err != nil {
		t.Fatalf("failed to create choice: %v", err)
	}
	wrong := model.Choice{QuestionID: question.ID, Texto: "incorrecta"}
	if err := db.Create(&wrong).Error; err != nil {
		t.Fatalf("failed to create choice: %v", err)
	}
	return &question, correct.ID, wrong.ID
}

// questionKey formats a question id the way answer payloads key them
func questionKey(q *model.Question) string {
	return strconv.FormatUint(uint64(q.ID), 10)
}

func enrollUser(t *testing.T, db *gorm.DB, user *model.User, course *model.Course) *model.Enrollment {
	t.Helper()

	enrollment, err := NewEnrollmentService(db).Enroll(user, course.ID)
	if err != nil {
		t.Fatalf("failed to enroll: %v", err)
	}
	return enrollment
}
