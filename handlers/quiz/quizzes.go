package quiz

import (
	"github.com/aulavivo/lms-api/handlers"
	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/aulavivo/lms-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz, question and choice endpoints
type QuizHandler struct {
	svc       *services.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc *services.QuizService) *QuizHandler {
	return &QuizHandler{
		svc:       svc,
		validator: validation.NewValidator(),
	}
}

func currentUser(c *fiber.Ctx) *model.User {
	user, ok := middleware.GetUser(c)
	if !ok {
		return nil
	}
	return user
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

// ListQuizzes returns a course's quizzes, including those on its modules
// (course_id query)
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	courseID := c.QueryInt("course_id")
	if courseID < 1 {
		return response.BadRequest(c, "course_id is required")
	}

	quizzes, err := h.svc.ListQuizzes(currentUser(c), uint(courseID))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, quizzes)
}

// GetQuiz returns one quiz with questions and choices
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid quiz id")
	}

	quiz, err := h.svc.GetQuiz(currentUser(c), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, quiz)
}

// CreateQuiz creates a quiz under a course or a module
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req services.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	quiz, err := h.svc.CreateQuiz(currentUser(c), req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, quiz)
}

// UpdateQuiz applies a partial update to a quiz
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid quiz id")
	}

	var req services.UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	quiz, err := h.svc.UpdateQuiz(currentUser(c), id, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, quiz)
}

// DeleteQuiz removes a quiz
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid quiz id")
	}

	if err := h.svc.DeleteQuiz(currentUser(c), id); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.NoContent(c)
}

// ListQuestions returns a quiz's questions (quiz_id query)
func (h *QuizHandler) ListQuestions(c *fiber.Ctx) error {
	quizID := c.QueryInt("quiz_id")
	if quizID < 1 {
		return response.BadRequest(c, "quiz_id is required")
	}

	questions, err := h.svc.ListQuestions(currentUser(c), uint(quizID))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, questions)
}

// CreateQuestion adds a question to a quiz
func (h *QuizHandler) CreateQuestion(c *fiber.Ctx) error {
	var req services.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	question, err := h.svc.CreateQuestion(currentUser(c), req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, question)
}

// UpdateQuestion applies a partial update to a question
func (h *QuizHandler) UpdateQuestion(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid question id")
	}

	var req services.UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	question, err := h.svc.UpdateQuestion(currentUser(c), id, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, question)
}

// DeleteQuestion removes a question
func (h *QuizHandler) DeleteQuestion(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid question id")
	}

	if err := h.svc.DeleteQuestion(currentUser(c), id); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.NoContent(c)
}

// ListChoices returns a question's choices (question_id query)
func (h *QuizHandler) ListChoices(c *fiber.Ctx) error {
	questionID := c.QueryInt("question_id")
	if questionID < 1 {
		return response.BadRequest(c, "question_id is required")
	}

	choices, err := h.svc.ListChoices(currentUser(c), uint(questionID))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, choices)
}

// CreateChoice adds a choice to a question
func (h *QuizHandler) CreateChoice(c *fiber.Ctx) error {
	var req services.CreateChoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	choice, err := h.svc.CreateChoice(currentUser(c), req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, choice)
}

// UpdateChoice applies a partial update to a choice
func (h *QuizHandler) UpdateChoice(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid choice id")
	}

	var req services.UpdateChoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	choice, err := h.svc.UpdateChoice(currentUser(c), id, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, choice)
}

// DeleteChoice removes a choice
func (h *QuizHandler) DeleteChoice(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid choice id")
	}

	if err := h.svc.DeleteChoice(currentUser(c), id); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.NoContent(c)
}
