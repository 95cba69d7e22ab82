package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/services/spaces"
	"github.com/aulavivo/lms-api/utils/pdfvalidation"
	"gorm.io/gorm"
)

// LessonService handles modules and lessons, including attachment uploads
type LessonService struct {
	db     *gorm.DB
	spaces *spaces.Client
}

// NewLessonService creates a new lesson service. spacesClient may be nil
// when blob storage is not configured; uploads are then rejected.
func NewLessonService(db *gorm.DB, spacesClient *spaces.Client) *LessonService {
	return &LessonService{db: db, spaces: spacesClient}
}

// CreateModuleRequest represents the request to create a module
type CreateModuleRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Titulo   string `json:"titulo" validate:"required,max=200"`
	Orden    int    `json:"orden" validate:"required,min=1"`
}

// UpdateModuleRequest represents a partial module update
type UpdateModuleRequest struct {
	Titulo *string `json:"titulo" validate:"omitempty,max=200"`
	Orden  *int    `json:"orden" validate:"omitempty,min=1"`
}

// CreateLessonRequest represents the request to create a lesson
type CreateLessonRequest struct {
	ModuleID  uint   `json:"module_id" validate:"required"`
	Titulo    string `json:"titulo" validate:"required,max=200"`
	Tipo      string `json:"tipo" validate:"required,oneof=video texto archivo"`
	Contenido string `json:"contenido"`
	URLVideo  string `json:"url_video" validate:"omitempty,max=255"`
	Archivo   string `json:"archivo" validate:"omitempty,max=255"`
	Orden     int    `json:"orden" validate:"required,min=1"`
}

// UpdateLessonRequest represents a partial lesson update
type UpdateLessonRequest struct {
	Titulo    *string `json:"titulo" validate:"omitempty,max=200"`
	Tipo      *string `json:"tipo" validate:"omitempty,oneof=video texto archivo"`
	Contenido *string `json:"contenido"`
	URLVideo  *string `json:"url_video" validate:"omitempty,max=255"`
	Archivo   *string `json:"archivo" validate:"omitempty,max=255"`
	Orden     *int    `json:"orden" validate:"omitempty,min=1"`
}

// validateLessonContent checks the tipo/content-field pairing. The declared
// tipo decides which field must be present; the others may stay empty. For
// archivo only the .pdf extension is checked here, the upload endpoint does
// the deep validation.
func validateLessonContent(tipo, contenido, urlVideo, archivo string) error {
	switch tipo {
	case model.TipoVideo:
		if urlVideo == "" {
			return badRequest("A video lesson requires url_video")
		}
	case model.TipoTexto:
		if contenido == "" {
			return badRequest("A text lesson requires contenido")
		}
	case model.TipoArchivo:
		if archivo == "" {
			return badRequest("A file lesson requires archivo")
		}
		if !model.HasPDFExtension(archivo) {
			return badRequest("A file lesson attachment must be a .pdf file")
		}
	default:
		return badRequest("Unknown lesson type")
	}
	return nil
}

// GetModule returns a module with its ordered lessons
func (s *LessonService) GetModule(user *model.User, moduleID uint) (*model.Module, error) {
	mod, course, err := courseForModule(s.db, moduleID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Module not found")
	}

	if err := s.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("orden, id")
	}).First(mod, mod.ID).Error; err != nil {
		return nil, err
	}
	return mod, nil
}

// CreateModule adds a module to a course owned by the caller. The
// (course, orden) pair is unique; a concurrent insert at the same position
// surfaces as a conflict through the unique index.
func (s *LessonService) CreateModule(user *model.User, req CreateModuleRequest) (*model.Module, error) {
	course, err := loadCourse(s.db, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Course not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may add modules")
	}

	mod := model.Module{
		CourseID: req.CourseID,
		Titulo:   req.Titulo,
		Orden:    req.Orden,
	}
	if err := s.db.Create(&mod).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, conflict("A module with this orden already exists in the course")
		}
		return nil, fmt.Errorf("failed to create module: %w", err)
	}
	return &mod, nil
}

// UpdateModule applies a partial update to a module
func (s *LessonService) UpdateModule(user *model.User, moduleID uint, req UpdateModuleRequest) (*model.Module, error) {
	mod, course, err := courseForModule(s.db, moduleID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Module not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may modify modules")
	}

	if req.Titulo != nil {
		mod.Titulo = *req.Titulo
	}
	if req.Orden != nil {
		mod.Orden = *req.Orden
	}

	if err := s.db.Save(mod).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, conflict("A module with this orden already exists in the course")
		}
		return nil, fmt.Errorf("failed to update module: %w", err)
	}
	return mod, nil
}

// DeleteModule removes a module and its lessons
func (s *LessonService) DeleteModule(user *model.User, moduleID uint) error {
	mod, course, err := courseForModule(s.db, moduleID)
	if err != nil {
		return err
	}
	if !CanViewCourse(user, course) {
		return notFound("Module not found")
	}
	if !CanEditCourse(user, course) {
		return forbidden("Only the course instructor may delete modules")
	}

	if err := s.db.Delete(mod).Error; err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}
	return nil
}

// GetLesson returns one lesson
func (s *LessonService) GetLesson(user *model.User, lessonID uint) (*model.Lesson, error) {
	lesson, course, err := courseForLesson(s.db, lessonID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Lesson not found")
	}
	return lesson, nil
}

// CreateLesson adds a lesson to a module owned by the caller
func (s *LessonService) CreateLesson(user *model.User, req CreateLessonRequest) (*model.Lesson, error) {
	_, course, err := courseForModule(s.db, req.ModuleID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Module not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may add lessons")
	}

	if err := validateLessonContent(req.Tipo, req.Contenido, req.URLVideo, req.Archivo); err != nil {
		return nil, err
	}

	lesson := model.Lesson{
		ModuleID:  req.ModuleID,
		Titulo:    req.Titulo,
		Tipo:      req.Tipo,
		Contenido: req.Contenido,
		URLVideo:  req.URLVideo,
		Archivo:   req.Archivo,
		Orden:     req.Orden,
	}
	if err := s.db.Create(&lesson).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, conflict("A lesson with this orden already exists in the module")
		}
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	return &lesson, nil
}

// UpdateLesson applies a partial update to a lesson. The tipo/content
// pairing is revalidated against the post-update state, so switching tipo
// without supplying the matching content field fails.
func (s *LessonService) UpdateLesson(user *model.User, lessonID uint, req UpdateLessonRequest) (*model.Lesson, error) {
	lesson, course, err := courseForLesson(s.db, lessonID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Lesson not found")
	}
	if !CanEditCourse(user, course) {
		return nil, forbidden("Only the course instructor may modify lessons")
	}

	if req.Titulo != nil {
		lesson.Titulo = *req.Titulo
	}
	if req.Tipo != nil {
		lesson.Tipo = *req.Tipo
	}
	if req.Contenido != nil {
		lesson.Contenido = *req.Contenido
	}
	if req.URLVideo != nil {
		lesson.URLVideo = *req.URLVideo
	}
	if req.Archivo != nil {
		lesson.Archivo = *req.Archivo
	}
	if req.Orden != nil {
		lesson.Orden = *req.Orden
	}

	if err := validateLessonContent(lesson.Tipo, lesson.Contenido, lesson.URLVideo, lesson.Archivo); err != nil {
		return nil, err
	}

	if err := s.db.Save(lesson).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, conflict("A lesson with this orden already exists in the module")
		}
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}
	return lesson, nil
}

// DeleteLesson removes a lesson
func (s *LessonService) DeleteLesson(user *model.User, lessonID uint) error {
	lesson, course, err := courseForLesson(s.db, lessonID)
	if err != nil {
		return err
	}
	if !CanViewCourse(user, course) {
		return notFound("Lesson not found")
	}
	if !CanEditCourse(user, course) {
		return forbidden("Only the course instructor may delete lessons")
	}

	if err := s.db.Delete(lesson).Error; err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}

// UploadAttachment validates and stores a PDF attachment for a file lesson,
// then records the deterministic blob key on the lesson
func (s *LessonService) UploadAttachment(ctx context.Context, user *model.User, lessonID uint, file *multipart.FileHeader) (*model.Lesson, string, error) {
	lesson, course, err := courseForLesson(s.db, lessonID)
	if err != nil {
		return nil, "", err
	}
	if !CanViewCourse(user, course) {
		return nil, "", notFound("Lesson not found")
	}
	if !CanEditCourse(user, course) {
		return nil, "", forbidden("Only the course instructor may upload lesson files")
	}
	if lesson.Tipo != model.TipoArchivo {
		return nil, "", badRequest("Only file lessons accept attachments")
	}
	if s.spaces == nil {
		return nil, "", badRequest("File storage is not configured")
	}

	result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.LessonAttachmentLimits)
	if err != nil {
		return nil, "", fmt.Errorf("failed to validate PDF: %w", err)
	}
	if !result.Valid {
		return nil, "", badRequest(result.Error)
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	key := model.LessonUploadKey(course.ID, lesson.ModuleID, file.Filename)
	url, err := s.spaces.UploadFile(ctx, key, src, spaces.GetContentType(file.Filename))
	if err != nil {
		return nil, "", fmt.Errorf("failed to store attachment: %w", err)
	}

	lesson.Archivo = key
	if err := s.db.Save(lesson).Error; err != nil {
		return nil, "", fmt.Errorf("failed to record attachment: %w", err)
	}
	return lesson, url, nil
}

// ListModules returns a course's modules in orden order
func (s *LessonService) ListModules(user *model.User, courseID uint) ([]model.Module, error) {
	course, err := loadCourse(s.db, courseID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Course not found")
	}

	var modules []model.Module
	err = s.db.Where("course_id = ?", courseID).Order("orden, id").Find(&modules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

// ListLessons returns a module's lessons in orden order
func (s *LessonService) ListLessons(user *model.User, moduleID uint) ([]model.Lesson, error) {
	_, course, err := courseForModule(s.db, moduleID)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(user, course) {
		return nil, notFound("Module not found")
	}

	var lessons []model.Lesson
	err = s.db.Where("module_id = ?", moduleID).Order("orden, id").Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}
