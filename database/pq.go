package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/aulavivo/lms-api/config"
	"github.com/aulavivo/lms-api/model"
	_ "github.com/lib/pq"
)

type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	// DB access: *gorm.DB for GORMStore, *sql.DB for PostgreSQLStore
	GetDB() interface{}

	// Ordered catalog reads for the student-facing endpoints
	ListCourseModules(courseID uint) ([]model.Module, error)
	ListCourseLessons(courseID uint, moduleID *uint) ([]model.Lesson, error)
}

// PostgreSQLStore is a plain database/sql store. It serves the read-only
// student catalog queries; everything mutating goes through GORMStore.
type PostgreSQLStore struct {
	db *sql.DB
}

func Start() (*PostgreSQLStore, error) {
	getEnv, err := config.Get()

	if err != nil {
		return nil, err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DB_HOST, getEnv.DB_PORT, getEnv.DB_USER_NAME, getEnv.DB_PASSWORD, getEnv.DB_NAME, getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		log.Println("Unable to start PostgreSQL database:", err)
		return nil, err
	}

	log.Println("Successfully connected to PostgreSQL Database.")

	return &PostgreSQLStore{db: db}, nil
}

// Init is a no-op: GORMStore owns schema migration, this store only reads
func (s *PostgreSQLStore) Init() error {
	return nil
}

func (s *PostgreSQLStore) Close() error {
	log.Println("Closing PostgreSQL connection...")
	return s.db.Close()
}

func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}

func (s *PostgreSQLStore) GetDB() interface{} {
	return s.db
}
