package services

import (
	"github.com/aulavivo/lms-api/model"
	"gorm.io/gorm"
)

// Every catalog entity resolves to exactly one root course, and all write
// authorization flows through that course's instructor. These helpers
// centralize the resolution so no call site re-derives the chain ad hoc.

// loadCourse fetches a course with its instructor preloaded for ownership
// checks. Returns ErrNotFound when the id does not exist.
func loadCourse(db *gorm.DB, courseID uint) (*model.Course, error) {
	var course model.Course
	err := db.Preload("Instructor").First(&course, courseID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFound("Course not found")
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// courseForModule resolves a module's owning course
func courseForModule(db *gorm.DB, moduleID uint) (*model.Module, *model.Course, error) {
	var mod model.Module
	err := db.First(&mod, moduleID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, notFound("Module not found")
	}
	if err != nil {
		return nil, nil, err
	}
	course, err := loadCourse(db, mod.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return &mod, course, nil
}

// courseForLesson resolves a lesson's owning course through its module
func courseForLesson(db *gorm.DB, lessonID uint) (*model.Lesson, *model.Course, error) {
	var lesson model.Lesson
	err := db.First(&lesson, lessonID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, notFound("Lesson not found")
	}
	if err != nil {
		return nil, nil, err
	}
	_, course, err := courseForModule(db, lesson.ModuleID)
	if err != nil {
		return nil, nil, err
	}
	return &lesson, course, nil
}

// courseForQuiz resolves a quiz's owning course, directly or via its module
func courseForQuiz(db *gorm.DB, quizID uint) (*model.Quiz, *model.Course, error) {
	var quiz model.Quiz
	err := db.First(&quiz, quizID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, notFound("Quiz not found")
	}
	if err != nil {
		return nil, nil, err
	}
	course, err := rootCourseOfQuiz(db, &quiz)
	if err != nil {
		return nil, nil, err
	}
	return &quiz, course, nil
}

// rootCourseOfQuiz resolves the root course of an already-loaded quiz.
// A quiz with neither parent is misconfigured data; callers surface that
// as a bad request.
func rootCourseOfQuiz(db *gorm.DB, quiz *model.Quiz) (*model.Course, error) {
	switch {
	case quiz.CourseID != nil:
		return loadCourse(db, *quiz.CourseID)
	case quiz.ModuleID != nil:
		_, course, err := courseForModule(db, *quiz.ModuleID)
		return course, err
	default:
		return nil, badRequest("Quiz has no parent course or module")
	}
}

// courseForQuestion resolves a question's owning course through its quiz
func courseForQuestion(db *gorm.DB, questionID uint) (*model.Question, *model.Course, error) {
	var question model.Question
	err := db.First(&question, questionID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, notFound("Question not found")
	}
	if err != nil {
		return nil, nil, err
	}
	_, course, err := courseForQuiz(db, question.QuizID)
	if err != nil {
		return nil, nil, err
	}
	return &question, course, nil
}

// courseForChoice resolves a choice's owning course through its question
func courseForChoice(db *gorm.DB, choiceID uint) (*model.Choice, *model.Course, error) {
	var choice model.Choice
	err := db.First(&choice, choiceID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, notFound("Choice not found")
	}
	if err != nil {
		return nil, nil, err
	}
	_, course, err := courseForQuestion(db, choice.QuestionID)
	if err != nil {
		return nil, nil, err
	}
	return &choice, course, nil
}
