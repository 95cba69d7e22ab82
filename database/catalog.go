package database

import (
	"database/sql"

	"github.com/aulavivo/lms-api/model"
)

// ListCourseModules returns a course's modules ordered by orden
func (s *PostgreSQLStore) ListCourseModules(courseID uint) ([]model.Module, error) {
	query := `
		SELECT id, course_id, titulo, orden, created_at, updated_at
		FROM modules
		WHERE course_id = $1
		ORDER BY orden, id;
	`
	rows, err := s.db.Query(query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := []model.Module{}
	for rows.Next() {
		module, err := scanIntoModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, *module)
	}

	return modules, rows.Err()
}

// ListCourseLessons returns a course's lessons ordered by (module.orden, lesson.orden),
// optionally restricted to one module
func (s *PostgreSQLStore) ListCourseLessons(courseID uint, moduleID *uint) ([]model.Lesson, error) {
	query := `
		SELECT l.id, l.module_id, l.titulo, l.tipo, l.contenido, l.url_video, l.archivo, l.orden,
		       l.created_at, l.updated_at
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = $1 AND ($2::bigint IS NULL OR l.module_id = $2)
		ORDER BY m.orden, l.orden, l.id;
	`

	var moduleArg sql.NullInt64
	if moduleID != nil {
		moduleArg = sql.NullInt64{Int64: int64(*moduleID), Valid: true}
	}

	rows, err := s.db.Query(query, courseID, moduleArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := []model.Lesson{}
	for rows.Next() {
		lesson, err := scanIntoLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, *lesson)
	}

	return lessons, rows.Err()
}

func scanIntoModule(rows *sql.Rows) (*model.Module, error) {
	module := new(model.Module)
	err := rows.Scan(
		&module.ID,
		&module.CourseID,
		&module.Titulo,
		&module.Orden,
		&module.CreatedAt,
		&module.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return module, nil
}

func scanIntoLesson(rows *sql.Rows) (*model.Lesson, error) {
	lesson := new(model.Lesson)
	err := rows.Scan(
		&lesson.ID,
		&lesson.ModuleID,
		&lesson.Titulo,
		&lesson.Tipo,
		&lesson.Contenido,
		&lesson.URLVideo,
		&lesson.Archivo,
		&lesson.Orden,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return lesson, nil
}
