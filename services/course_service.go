package services

import (
	"fmt"

	"github.com/aulavivo/lms-api/model"
	"gorm.io/gorm"
)

// CourseService handles the course catalog root: CRUD, publication state and
// visibility-scoped listing
type CourseService struct {
	db *gorm.DB
}

// NewCourseService creates a new course service
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// CreateCourseRequest represents the request to create a course
type CreateCourseRequest struct {
	Titulo      string `json:"titulo" validate:"required,max=200"`
	Descripcion string `json:"descripcion"`
	Categoria   string `json:"categoria" validate:"max=100"`
	Nivel       string `json:"nivel" validate:"max=50"`
	Duracion    int    `json:"duracion" validate:"min=0"`
	Imagen      string `json:"imagen" validate:"max=255"`
}

// UpdateCourseRequest represents a partial course update
type UpdateCourseRequest struct {
	Titulo      *string `json:"titulo" validate:"omitempty,max=200"`
	Descripcion *string `json:"descripcion"`
	Categoria   *string `json:"categoria" validate:"omitempty,max=100"`
	Nivel       *string `json:"nivel" validate:"omitempty,max=50"`
	Duracion    *int    `json:"duracion" validate:"omitempty,min=0"`
	Imagen      *string `json:"imagen" validate:"omitempty,max=255"`
}

// instructorProfileOf fetches the caller's instructor profile. Profiles are
// created eagerly at registration, so a missing row is an internal fault.
func instructorProfileOf(db *gorm.DB, user *model.User) (*model.InstructorProfile, error) {
	var profile model.InstructorProfile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to load instructor profile: %w", err)
	}
	return &profile, nil
}

// List returns the courses visible to the caller: everything for staff, own
// drafts plus published courses for enabled instructors, published only for
// everyone else (including anonymous callers)
func (s *CourseService) List(user *model.User) ([]model.Course, error) {
	query := s.db.Preload("Instructor").Order("id")

	switch {
	case user != nil && user.IsStaff:
		// unscoped
	case user != nil && user.InstructorEnabled:
		profile, err := instructorProfileOf(s.db, user)
		if err != nil {
			return nil, err
		}
		query = query.Where("estado = ? OR instructor_id = ?", model.EstadoPublicado, profile.ID)
	default:
		query = query.Where("estado = ?", model.EstadoPublicado)
	}

	var courses []model.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// Get returns one course with its ordered module/lesson tree. Courses the
// caller may not see are reported as not found, not forbidden, so drafts do
// not leak their existence.
func (s *CourseService) Get(user *model.User, courseID uint) (*model.Course, error) {
	var course model.Course
	err := s.db.Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden, id")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden, id")
		}).
		First(&course, courseID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFound("Course not found")
	}
	if err != nil {
		return nil, err
	}

	if !CanViewCourse(user, &course) {
		return nil, notFound("Course not found")
	}
	return &course, nil
}

// Create creates a new draft course owned by the caller's instructor profile
func (s *CourseService) Create(user *model.User, req CreateCourseRequest) (*model.Course, error) {
	profile, err := instructorProfileOf(s.db, user)
	if err != nil {
		return nil, err
	}

	course := model.Course{
		InstructorID: profile.ID,
		Titulo:       req.Titulo,
		Descripcion:  req.Descripcion,
		Categoria:    req.Categoria,
		Nivel:        req.Nivel,
		Duracion:     req.Duracion,
		Imagen:       req.Imagen,
		Estado:       model.EstadoBorrador,
	}

	if err := s.db.Create(&course).Error; err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return &course, nil
}

// Update applies a partial update to a course owned by the caller
func (s *CourseService) Update(user *model.User, courseID uint, req UpdateCourseRequest) (*model.Course, error) {
	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Course not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may modify it")
	}

	if req.Titulo != nil {
		course.Titulo = *req.Titulo
	}
	if req.Descripcion != nil {
		course.Descripcion = *req.Descripcion
	}
	if req.Categoria != nil {
		course.Categoria = *req.Categoria
	}
	if req.Nivel != nil {
		course.Nivel = *req.Nivel
	}
	if req.Duracion != nil {
		course.Duracion = *req.Duracion
	}
	if req.Imagen != nil {
		course.Imagen = *req.Imagen
	}

	if err := s.db.Save(course).Error; err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

// Delete removes a course and, through FK cascades, its whole subtree
func (s *CourseService) Delete(user *model.User, courseID uint) error {
	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return err
	}
	if !CanViewCourse(user, course) {
		return notFound("Course not found")
	}
	if !CanEditCourse(user, course) {
		return forbidden("Only the course instructor may delete it")
	}

	if err := s.db.Delete(course).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

// SetEstado transitions the course publication state. Both transitions are
// idempotent: publishing a published course is a no-op, not an error.
func (s *CourseService) SetEstado(user *model.User, courseID uint, estado string) (*model.Course, error) {
	if estado != model.EstadoBorrador && estado != model.EstadoPublicado {
		return nil, badRequest("Unknown course state")
	}

	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Course not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may change its state")
	}

	course.Estado = estado
	if err := s.db.Save(course).Error; err != nil {
		return nil, fmt.Errorf("failed to update course state: %w", err)
	}
	return course, nil
}

// EnsureVisible checks that the caller may see the course without loading
// its content tree. Used by the raw-SQL catalog read endpoints.
func (s *CourseService) EnsureVisible(user *model.User, courseID uint) error {
	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return err
	}
	if !CanViewCourse(user, course) {
		return notFound("Course not found")
	}
	return nil
}
