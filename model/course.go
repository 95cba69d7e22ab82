package model

import (
	"fmt"
	"path"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Course publication states
const (
	EstadoBorrador  = "borrador"
	EstadoPublicado = "publicado"
)

// Lesson content types
const (
	TipoVideo   = "video"
	TipoTexto   = "texto"
	TipoArchivo = "archivo"
)

// Course is the root of the catalog hierarchy and of the ownership chain:
// every module, lesson, quiz, question and choice resolves to exactly one
// course, and write access resolves to that course's instructor.
type Course struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	InstructorID uint           `gorm:"not null;index" json:"instructor_id"` // FK to instructor_profiles
	Titulo       string         `gorm:"type:varchar(200);not null" json:"titulo"`
	Descripcion  string         `gorm:"type:text" json:"descripcion"`
	Categoria    string         `gorm:"type:varchar(100)" json:"categoria"`
	Nivel        string         `gorm:"type:varchar(50)" json:"nivel"`
	Duracion     int            `json:"duracion"`
	Imagen       string         `gorm:"type:varchar(255)" json:"imagen"`
	Estado       string         `gorm:"type:varchar(20);default:'borrador'" json:"estado"` // borrador, publicado

	// Relationships
	Instructor InstructorProfile `gorm:"foreignKey:InstructorID" json:"-"`
	Modules    []Module          `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	Quizzes    []Quiz            `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsPublished reports whether the course is visible to non-owners
func (c *Course) IsPublished() bool {
	return c.Estado == EstadoPublicado
}

// Module groups lessons inside a course. Orden is unique per course.
type Module struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CourseID  uint      `gorm:"not null;index;uniqueIndex:idx_module_course_orden" json:"course_id"`
	Titulo    string    `gorm:"type:varchar(200);not null" json:"titulo"`
	Orden     int       `gorm:"not null;uniqueIndex:idx_module_course_orden" json:"orden"`

	// Relationships
	Course  Course   `gorm:"foreignKey:CourseID" json:"-"`
	Lessons []Lesson `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

// Lesson is a single content unit. The declared Tipo decides which content
// field is required: video needs URLVideo, texto needs Contenido, archivo
// needs a stored file reference ending in .pdf.
type Lesson struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ModuleID  uint      `gorm:"not null;index;uniqueIndex:idx_lesson_module_orden" json:"module_id"`
	Titulo    string    `gorm:"type:varchar(200);not null" json:"titulo"`
	Tipo      string    `gorm:"type:varchar(10);not null" json:"tipo"` // video, texto, archivo
	Contenido string    `gorm:"type:text" json:"contenido"`
	URLVideo  string    `gorm:"type:varchar(255)" json:"url_video"`
	Archivo   string    `gorm:"type:varchar(255)" json:"archivo"` // blob store key
	Orden     int       `gorm:"not null;uniqueIndex:idx_lesson_module_orden" json:"orden"`

	// Relationships
	Module Module `gorm:"foreignKey:ModuleID" json:"-"`
}

// IsValidTipo reports whether tipo is one of the known lesson content types
func IsValidTipo(tipo string) bool {
	return tipo == TipoVideo || tipo == TipoTexto || tipo == TipoArchivo
}

// LessonUploadKey builds the deterministic blob store key for a lesson
// attachment: lessons/course_{courseId}/module_{moduleId}/{filename}
func LessonUploadKey(courseID, moduleID uint, filename string) string {
	return fmt.Sprintf("lessons/course_%d/module_%d/%s", courseID, moduleID, path.Base(filename))
}

// HasPDFExtension reports whether the file reference names a .pdf file.
// Extension check only; content is not inspected at save time.
func HasPDFExtension(name string) bool {
	return strings.ToLower(path.Ext(name)) == ".pdf"
}
