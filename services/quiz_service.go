package services

import (
	"fmt"

	"github.com/aulavivo/lms-api/model"
	"gorm.io/gorm"
)

// QuizService handles quizzes, questions and choices
type QuizService struct {
	db *gorm.DB
}

// NewQuizService creates a new quiz service
func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{db: db}
}

// CreateQuizRequest represents the request to create a quiz. Exactly one of
// course_id/module_id must be set.
type CreateQuizRequest struct {
	CourseID    *uint  `json:"course_id"`
	ModuleID    *uint  `json:"module_id"`
	Titulo      string `json:"titulo" validate:"required,max=200"`
	Descripcion string `json:"descripcion"`
	Orden       int    `json:"orden" validate:"omitempty,min=1"`
}

// UpdateQuizRequest represents a partial quiz update. Parent links are
// immutable after creation.
type UpdateQuizRequest struct {
	Titulo      *string `json:"titulo" validate:"omitempty,max=200"`
	Descripcion *string `json:"descripcion"`
	Orden       *int    `json:"orden" validate:"omitempty,min=1"`
}

// CreateQuestionRequest represents the request to create a question
type CreateQuestionRequest struct {
	QuizID uint   `json:"quiz_id" validate:"required"`
	Texto  string `json:"texto" validate:"required"`
	Orden  int    `json:"orden" validate:"omitempty,min=1"`
}

// UpdateQuestionRequest represents a partial question update
type UpdateQuestionRequest struct {
	Texto *string `json:"texto"`
	Orden *int    `json:"orden" validate:"omitempty,min=1"`
}

// CreateChoiceRequest represents the request to create a choice
type CreateChoiceRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Texto      string `json:"texto" validate:"required,max=255"`
	Correcta   bool   `json:"correcta"`
}

// UpdateChoiceRequest represents a partial choice update
type UpdateChoiceRequest struct {
	Texto    *string `json:"texto" validate:"omitempty,max=255"`
	Correcta *bool   `json:"correcta"`
}

// GetQuiz returns a quiz with its ordered questions and their choices
func (s *QuizService) GetQuiz(user *model.User, quizID uint) (*model.Quiz, error) {
	quiz, course, err := courseForQuiz(s.db, quizID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Quiz not found")
	}

	if err := s.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("orden, id")
	}).Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(quiz, quiz.ID).Error; err != nil {
		return nil, err
	}
	return quiz, nil
}

// ListQuizzes returns the quizzes of a course visible to the caller,
// including module-level quizzes of its modules
func (s *QuizService) ListQuizzes(user *model.User, courseID uint) ([]model.Quiz, error) {
	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Course not found")
	}

	var quizzes []model.Quiz
	err = s.db.
		Where("course_id = ?", courseID).
		Or("module_id IN (?)", s.db.Model(&model.Module{}).Select("id").Where("course_id = ?", courseID)).
		Order("orden, id").
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

// CreateQuiz creates a quiz under a course or a module, never both
func (s *QuizService) CreateQuiz(user *model.User, req CreateQuizRequest) (*model.Quiz, error) {
	quiz := model.Quiz{
		CourseID:    req.CourseID,
		ModuleID:    req.ModuleID,
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Orden:       req.Orden,
	}
	if quiz.Orden == 0 {
		quiz.Orden = 1
	}
	if !quiz.HasValidParent() {
		return nil, badRequest("A quiz must belong to exactly one of a course or a module")
	}

	course, err := rootCourseOfQuiz(s.db, &quiz)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Parent not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may add quizzes")
	}

	if err := s.db.Create(&quiz).Error; err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	return &quiz, nil
}

// UpdateQuiz applies a partial update to a quiz
func (s *QuizService) UpdateQuiz(user *model.User, quizID uint, req UpdateQuizRequest) (*model.Quiz, error) {
	quiz, course, err := courseForQuiz(s.db, quizID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Quiz not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may modify quizzes")
	}

	if req.Titulo != nil {
		quiz.Titulo = *req.Titulo
	}
	if req.Descripcion != nil {
		quiz.Descripcion = *req.Descripcion
	}
	if req.Orden != nil {
		quiz.Orden = *req.Orden
	}

	if err := s.db.Save(quiz).Error; err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	return quiz, nil
}

// DeleteQuiz removes a quiz with its questions, choices and submissions
func (s *QuizService) DeleteQuiz(user *model.User, quizID uint) error {
	quiz, course, err := courseForQuiz(s.db, quizID)
	if err != nil {
		return err
	}
	if !CanViewCourse(user, course) {
		return notFound("Quiz not found")
	}
	if !CanEditCourse(user, course) {
		return forbidden("Only the course instructor may delete quizzes")
	}

	if err := s.db.Delete(quiz).Error; err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	return nil
}

// CreateQuestion adds a question to a quiz
func (s *QuizService) CreateQuestion(user *model.User, req CreateQuestionRequest) (*model.Question, error) {
	_, course, err := courseForQuiz(s.db, req.QuizID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Quiz not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may add questions")
	}

	question := model.Question{
		QuizID: req.QuizID,
		Texto:  req.Texto,
		Orden:  req.Orden,
	}
	if question.Orden == 0 {
		question.Orden = 1
	}
	if err := s.db.Create(&question).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, conflict("A question with this orden already exists in the quiz")
		}
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return &question, nil
}

// UpdateQuestion applies a partial update to a question
func (s *QuizService) UpdateQuestion(user *model.User, questionID uint, req UpdateQuestionRequest) (*model.Question, error) {
	question, course, err := courseForQuestion(s.db, questionID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Question not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may modify questions")
	}

	if req.Texto != nil {
		question.Texto = *req.Texto
	}
	if req.Orden != nil {
		question.Orden = *req.Orden
	}

	if err := s.db.Save(question).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, conflict("A question with this orden already exists in the quiz")
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

// DeleteQuestion removes a question and its choices
func (s *QuizService) DeleteQuestion(user *model.User, questionID uint) error {
	question, course, err := courseForQuestion(s.db, questionID)
	if err != nil {
		return err
	}
	if !CanViewCourse(user, course) {
		return notFound("Question not found")
	}
	if !CanEditCourse(user, course) {
		return forbidden("Only the course instructor may delete questions")
	}

	if err := s.db.Delete(question).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

// CreateChoice adds an answer option to a question
func (s *QuizService) CreateChoice(user *model.User, req CreateChoiceRequest) (*model.Choice, error) {
	_, course, err := courseForQuestion(s.db, req.QuestionID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Question not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may add choices")
	}

	choice := model.Choice{
		QuestionID: req.QuestionID,
		Texto:      req.Texto,
		Correcta:   req.Correcta,
	}
	if err := s.db.Create(&choice).Error; err != nil {
		return nil, fmt.Errorf("failed to create choice: %w", err)
	}
	return &choice, nil
}

// UpdateChoice applies a partial update to a choice
func (s *QuizService) UpdateChoice(user *model.User, choiceID uint, req UpdateChoiceRequest) (*model.Choice, error) {
	choice, course, err := courseForChoice(s.db, choiceID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Choice not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may modify choices")
	}

	if req.Texto != nil {
		choice.Texto = *req.Texto
	}
	if req.Correcta != nil {
		choice.Correcta = *req.Correcta
	}

	if err := s.db.Save(choice).Error; err != nil {
		return nil, fmt.Errorf("failed to update choice: %w", err)
	}
	return choice, nil
}

// DeleteChoice removes a choice
func (s *QuizService) DeleteChoice(user *model.User, choiceID uint) error {
	choice, course, err := courseForChoice(s.db, choiceID)
	if err != nil {
		return err
	}
	if !CanViewCourse(user, course) {
		return notFound("Choice not found")
	}
	if !CanEditCourse(user, course) {
		return forbidden("Only the course instructor may delete choices")
	}

	if err := s.db.Delete(choice).Error; err != nil {
		return fmt.Errorf("failed to delete choice: %w", err)
	}
	return nil
}

// ListQuestions returns a quiz's questions with their choices in orden order
func (s *QuizService) ListQuestions(user *model.User, quizID uint) ([]model.Question, error) {
	_, course, err := courseForQuiz(s.db, quizID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Quiz not found")
	}

	var questions []model.Question
	err = s.db.Preload("Choices", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Where("quiz_id = ?", quizID).Order("orden, id").Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// ListChoices returns a question's choices
func (s *QuizService) ListChoices(user *model.User, questionID uint) ([]model.Choice, error) {
	_, course, err := courseForQuestion(s.db, questionID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Question not found")
	}

	var choices []model.Choice
	err = s.db.Where("question_id = ?", questionID).Order("id").Find(&choices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list choices: %w", err)
	}
	return choices, nil
}
