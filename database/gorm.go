package database

import (
	"fmt"
	"log"
	"time"

	"github.com/aulavivo/lms-api/config"
	"github.com/aulavivo/lms-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db *gorm.DB
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	// Build DSN (Data Source Name)
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	// Open GORM connection. TranslateError maps driver unique-violation
	// errors to gorm.ErrDuplicatedKey so races on (user,quiz,attempt) and
	// (user,course) surface as 409s instead of 500s.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// NewGORMStore wraps an existing GORM connection (used by tests)
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	err := s.db.AutoMigrate(
		// Identity & roles
		&model.User{},
		&model.StudentProfile{},
		&model.InstructorProfile{},

		// Catalog hierarchy
		&model.Course{},
		&model.Module{},
		&model.Lesson{},

		// Assessment
		&model.Quiz{},
		&model.Question{},
		&model.Choice{},

		// Enrollment & progress
		&model.Enrollment{},
		&model.LessonProgress{},
		&model.Submission{},

		// Feedback
		&model.Comment{},
		&model.CourseRating{},

		// Background job logs
		&model.CronJobLog{},
	)

	if err != nil {
		log.Println("Error running AutoMigrate:", err)
		return err
	}

	// Defense in depth: the service layer validates the XOR parents before
	// persisting, and the database holds the same invariant as CHECKs.
	if s.db.Dialector.Name() == "postgres" {
		checks := []string{
			`ALTER TABLE quizzes DROP CONSTRAINT IF EXISTS quiz_course_xor_module;
			 ALTER TABLE quizzes ADD CONSTRAINT quiz_course_xor_module CHECK (
				(course_id IS NOT NULL AND module_id IS NULL) OR
				(course_id IS NULL AND module_id IS NOT NULL)
			 )`,
			`ALTER TABLE comments DROP CONSTRAINT IF EXISTS comment_course_or_lesson;
			 ALTER TABLE comments ADD CONSTRAINT comment_course_or_lesson CHECK (
				course_id IS NOT NULL OR lesson_id IS NOT NULL
			 )`,
			`ALTER TABLE course_ratings DROP CONSTRAINT IF EXISTS rating_range;
			 ALTER TABLE course_ratings ADD CONSTRAINT rating_range CHECK (
				rating BETWEEN 1 AND 5
			 )`,
		}
		for _, stmt := range checks {
			if err := s.db.Exec(stmt).Error; err != nil {
				log.Println("Error adding check constraint:", err)
				return err
			}
		}
	}

	log.Println("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Println("Closing GORM PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in services/handlers
func (s *GORMStore) GetDB() interface{} {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// ListCourseModules returns a course's modules ordered by orden
func (s *GORMStore) ListCourseModules(courseID uint) ([]model.Module, error) {
	var modules []model.Module
	err := s.db.Where("course_id = ?", courseID).
		Order("orden, id").
		Find(&modules).Error
	return modules, err
}

// ListCourseLessons returns a course's lessons ordered by (module.orden, lesson.orden)
func (s *GORMStore) ListCourseLessons(courseID uint, moduleID *uint) ([]model.Lesson, error) {
	query := s.db.Model(&model.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID)

	if moduleID != nil {
		query = query.Where("lessons.module_id = ?", *moduleID)
	}

	var lessons []model.Lesson
	err := query.Order("modules.orden, lessons.orden, lessons.id").Find(&lessons).Error
	return lessons, err
}
