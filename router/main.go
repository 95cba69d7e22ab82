package router

import (
	"log"
	"os"
	"time"

	"github.com/aulavivo/lms-api/database"
	"github.com/aulavivo/lms-api/handlers"
	auth_handlers "github.com/aulavivo/lms-api/handlers/auth"
	course_handlers "github.com/aulavivo/lms-api/handlers/course"
	enrollment_handlers "github.com/aulavivo/lms-api/handlers/enrollment"
	feedback_handlers "github.com/aulavivo/lms-api/handlers/feedback"
	lesson_handlers "github.com/aulavivo/lms-api/handlers/lesson"
	profile_handlers "github.com/aulavivo/lms-api/handlers/profile"
	quiz_handlers "github.com/aulavivo/lms-api/handlers/quiz"
	submission_handlers "github.com/aulavivo/lms-api/handlers/submission"
	user_handlers "github.com/aulavivo/lms-api/handlers/user"
	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/services/spaces"
	"github.com/aulavivo/lms-api/utils/auth"
	"github.com/aulavivo/lms-api/utils/cache"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes wires middleware, services and handlers onto the fiber app.
// store is the GORM store; catalog is the raw SQL read store serving the
// ordered student catalog endpoints. redisCache and spacesClient may be nil.
func SetupRoutes(app *fiber.App, store database.Storage, catalog database.Storage, redisCache *cache.RedisCache, spacesClient *spaces.Client) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "lms-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Brute force protection needs Redis; without it logins stay unguarded
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	courseService := services.NewCourseService(db)
	lessonService := services.NewLessonService(db, spacesClient)
	quizService := services.NewQuizService(db)
	enrollmentService := services.NewEnrollmentService(db)
	submissionService := services.NewSubmissionService(db)
	feedbackService := services.NewFeedbackService(db, redisCache)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	userHandler := user_handlers.NewUserHandler(db)
	profileHandler := profile_handlers.NewProfileHandler(db)
	courseHandler := course_handlers.NewCourseHandler(courseService, catalog)
	lessonHandler := lesson_handlers.NewLessonHandler(lessonService)
	quizHandler := quiz_handlers.NewQuizHandler(quizService)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(enrollmentService)
	submissionHandler := submission_handlers.NewSubmissionHandler(submissionService)
	feedbackHandler := feedback_handlers.NewFeedbackHandler(feedbackService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// User routes
	users := api.Group("/users")
	users.Post("/register-student", authHandler.RegisterStudent)
	users.Post("/register-instructor", authHandler.RegisterInstructor)
	users.Get("/me", authMiddleware.Required(), authHandler.Me)
	users.Patch("/me", authMiddleware.Required(), authHandler.UpdateMe)
	users.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Admin user management
	users.Get("/", authMiddleware.RequireStaff(), userHandler.List)
	users.Patch("/:id/set-role", authMiddleware.RequireStaff(), userHandler.SetRole)
	users.Patch("/:id/enable-student", authMiddleware.RequireStaff(), userHandler.EnableStudent)
	users.Patch("/:id/enable-instructor", authMiddleware.RequireStaff(), userHandler.EnableInstructor)
	users.Patch("/:id/admin-flags", authMiddleware.RequireStaff(), userHandler.AdminFlags)
	users.Delete("/:id", authMiddleware.RequireStaff(), userHandler.Delete)

	// Profile routes (protected)
	studentProfiles := api.Group("/student-profiles", authMiddleware.Required())
	studentProfiles.Get("/:id", profileHandler.GetStudentProfile)
	studentProfiles.Put("/:id", profileHandler.UpdateStudentProfile)

	instructorProfiles := api.Group("/instructor-profiles", authMiddleware.Required())
	instructorProfiles.Get("/:id", profileHandler.GetInstructorProfile)
	instructorProfiles.Put("/:id", profileHandler.UpdateInstructorProfile)

	// Course routes. Reads are optionally authenticated: anonymous callers
	// get the published-only view.
	courses := api.Group("/courses")
	courses.Get("/", authMiddleware.Optional(), courseHandler.List)
	courses.Get("/student-modules", authMiddleware.Optional(), courseHandler.StudentModules)
	courses.Get("/student-lessons", authMiddleware.Optional(), courseHandler.StudentLessons)
	courses.Get("/:id", authMiddleware.Optional(), courseHandler.Get)
	courses.Post("/", authMiddleware.Required(), middleware.RequireInstructorEnabled(), courseHandler.Create)
	courses.Put("/:id", authMiddleware.Required(), courseHandler.Update)
	courses.Delete("/:id", authMiddleware.Required(), courseHandler.Delete)
	courses.Post("/:id/publish", authMiddleware.Required(), courseHandler.Publish)
	courses.Post("/:id/draft", authMiddleware.Required(), courseHandler.Draft)

	// Module routes
	modules := api.Group("/modules")
	modules.Get("/", authMiddleware.Optional(), lessonHandler.ListModules)
	modules.Get("/:id", authMiddleware.Optional(), lessonHandler.GetModule)
	modules.Post("/", authMiddleware.Required(), lessonHandler.CreateModule)
	modules.Put("/:id", authMiddleware.Required(), lessonHandler.UpdateModule)
	modules.Delete("/:id", authMiddleware.Required(), lessonHandler.DeleteModule)

	// Lesson routes
	lessons := api.Group("/lessons")
	lessons.Get("/", authMiddleware.Optional(), lessonHandler.ListLessons)
	lessons.Get("/:id", authMiddleware.Optional(), lessonHandler.GetLesson)
	lessons.Post("/", authMiddleware.Required(), lessonHandler.CreateLesson)
	lessons.Put("/:id", authMiddleware.Required(), lessonHandler.UpdateLesson)
	lessons.Delete("/:id", authMiddleware.Required(), lessonHandler.DeleteLesson)
	lessons.Post("/:id/upload", authMiddleware.Required(), lessonHandler.UploadAttachment)

	// Quiz routes
	quizzes := api.Group("/quizzes")
	quizzes.Get("/", authMiddleware.Optional(), quizHandler.ListQuizzes)
	quizzes.Get("/:id", authMiddleware.Optional(), quizHandler.GetQuiz)
	quizzes.Post("/", authMiddleware.Required(), quizHandler.CreateQuiz)
	quizzes.Put("/:id", authMiddleware.Required(), quizHandler.UpdateQuiz)
	quizzes.Delete("/:id", authMiddleware.Required(), quizHandler.DeleteQuiz)

	// Question routes
	questions := api.Group("/questions")
	questions.Get("/", authMiddleware.Optional(), quizHandler.ListQuestions)
	questions.Post("/", authMiddleware.Required(), quizHandler.CreateQuestion)
	questions.Put("/:id", authMiddleware.Required(), quizHandler.UpdateQuestion)
	questions.Delete("/:id", authMiddleware.Required(), quizHandler.DeleteQuestion)

	// Choice routes
	choices := api.Group("/choices")
	choices.Get("/", authMiddleware.Optional(), quizHandler.ListChoices)
	choices.Post("/", authMiddleware.Required(), quizHandler.CreateChoice)
	choices.Put("/:id", authMiddleware.Required(), quizHandler.UpdateChoice)
	choices.Delete("/:id", authMiddleware.Required(), quizHandler.DeleteChoice)

	// Enrollment routes. Rows only change through the enroll action.
	enrollments := api.Group("/enrollments", authMiddleware.Required())
	enrollments.Get("/", enrollmentHandler.List)
	enrollments.Get("/my", enrollmentHandler.My)
	enrollments.Post("/enroll", middleware.RequireStudentEnabled(), enrollmentHandler.Enroll)
	enrollments.Post("/", enrollment_handlers.NotAllowed)
	enrollments.Put("/:id", enrollment_handlers.NotAllowed)
	enrollments.Patch("/:id", enrollment_handlers.NotAllowed)
	enrollments.Delete("/:id", enrollment_handlers.NotAllowed)

	// Lesson progress routes. Rows only change through the complete action.
	progress := api.Group("/lesson-progress", authMiddleware.Required())
	progress.Get("/", enrollmentHandler.ListProgress)
	progress.Post("/complete", middleware.RequireStudentEnabled(), enrollmentHandler.CompleteLesson)
	progress.Post("/", enrollment_handlers.NotAllowed)
	progress.Put("/:id", enrollment_handlers.NotAllowed)
	progress.Patch("/:id", enrollment_handlers.NotAllowed)
	progress.Delete("/:id", enrollment_handlers.NotAllowed)

	// Submission routes. Rows only change through the submit action.
	submissions := api.Group("/submissions", authMiddleware.Required())
	submissions.Get("/", submissionHandler.List)
	submissions.Post("/submit", middleware.RequireStudentEnabled(), submissionHandler.Submit)
	submissions.Get("/:id", submissionHandler.Get)
	submissions.Post("/", submission_handlers.NotAllowed)
	submissions.Put("/:id", submission_handlers.NotAllowed)
	submissions.Patch("/:id", submission_handlers.NotAllowed)
	submissions.Delete("/:id", submission_handlers.NotAllowed)

	// Comment routes
	comments := api.Group("/comments")
	comments.Get("/", authMiddleware.Optional(), feedbackHandler.ListComments)
	comments.Post("/", authMiddleware.Required(), feedbackHandler.CreateComment)
	comments.Put("/:id", authMiddleware.Required(), feedbackHandler.UpdateComment)
	comments.Delete("/:id", authMiddleware.Required(), feedbackHandler.DeleteComment)

	// Rating routes. Rows only change through the rate action (upsert).
	ratings := api.Group("/ratings")
	ratings.Get("/", authMiddleware.Optional(), feedbackHandler.ListRatings)
	ratings.Get("/summary", authMiddleware.Optional(), feedbackHandler.Summary)
	ratings.Post("/rate", authMiddleware.Required(), feedbackHandler.Rate)
	ratings.Post("/", feedback_handlers.NotAllowed)
	ratings.Put("/:id", feedback_handlers.NotAllowed)
	ratings.Patch("/:id", feedback_handlers.NotAllowed)
	ratings.Delete("/:id", feedback_handlers.NotAllowed)
}
