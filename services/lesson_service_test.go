package services

import (
	"errors"
	"testing"

	"github.com/aulavivo/lms-api/model"
)

func TestValidateLessonContent(t *testing.T) {
	tests := []struct {
		name      string
		tipo      string
		contenido string
		urlVideo  string
		archivo   string
		wantErr   bool
	}{
		{"video with url", model.TipoVideo, "", "https://example.com/v", "", false},
		{"video without url", model.TipoVideo, "texto", "", "", true},
		{"texto with content", model.TipoTexto, "hola", "", "", false},
		{"texto without content", model.TipoTexto, "", "https://example.com/v", "", true},
		{"archivo with pdf", model.TipoArchivo, "", "", "apuntes.pdf", false},
		{"archivo uppercase extension", model.TipoArchivo, "", "", "APUNTES.PDF", false},
		{"archivo without file", model.TipoArchivo, "", "", "", true},
		{"archivo wrong extension", model.TipoArchivo, "", "", "apuntes.docx", true},
		{"unknown tipo", "audio", "x", "x", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLessonContent(tt.tipo, tt.contenido, tt.urlVideo, tt.archivo)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateLessonContent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrBadRequest) {
				t.Errorf("error kind = %v, want ErrBadRequest", err)
			}
		})
	}
}

func TestModuleOrdenConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db, nil)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	course := createCourse(t, db, instructor, model.EstadoBorrador)

	if _, err := svc.CreateModule(instructor, CreateModuleRequest{CourseID: course.ID, Titulo: "uno", Orden: 1}); err != nil {
		t.Fatalf("CreateModule() error = %v", err)
	}
	if _, err := svc.CreateModule(instructor, CreateModuleRequest{CourseID: course.ID, Titulo: "dos", Orden: 1}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate orden CreateModule() error = %v, want ErrConflict", err)
	}
	if _, err := svc.CreateModule(instructor, CreateModuleRequest{CourseID: course.ID, Titulo: "dos", Orden: 2}); err != nil {
		t.Errorf("CreateModule(orden 2) error = %v", err)
	}
}

func TestLessonLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db, nil)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	student := createUser(t, db, "student@test.com", model.RoleStudent)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	mod := createModule(t, db, course, 1)

	lesson, err := svc.CreateLesson(instructor, CreateLessonRequest{
		ModuleID:  mod.ID,
		Titulo:    "Introduccion",
		Tipo:      model.TipoTexto,
		Contenido: "hola",
		Orden:     1,
	})
	if err != nil {
		t.Fatalf("CreateLesson() error = %v", err)
	}

	// Switching tipo without the matching content field fails
	tipo := model.TipoVideo
	if _, err := svc.UpdateLesson(instructor, lesson.ID, UpdateLessonRequest{Tipo: &tipo}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("UpdateLesson(tipo only) error = %v, want ErrBadRequest", err)
	}
	url := "https://example.com/v"
	updated, err := svc.UpdateLesson(instructor, lesson.ID, UpdateLessonRequest{Tipo: &tipo, URLVideo: &url})
	if err != nil {
		t.Fatalf("UpdateLesson() error = %v", err)
	}
	if updated.Tipo != model.TipoVideo || updated.URLVideo != url {
		t.Errorf("update not applied: tipo=%q url=%q", updated.Tipo, updated.URLVideo)
	}

	if _, err := svc.UpdateLesson(student, lesson.ID, UpdateLessonRequest{Titulo: &url}); !errors.Is(err, ErrForbidden) {
		t.Errorf("student UpdateLesson() error = %v, want ErrForbidden", err)
	}

	if err := svc.DeleteLesson(instructor, lesson.ID); err != nil {
		t.Fatalf("DeleteLesson() error = %v", err)
	}
	if _, err := svc.GetLesson(instructor, lesson.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLesson() after delete error = %v, want ErrNotFound", err)
	}
}

func TestUploadAttachmentGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db, nil)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	course := createCourse(t, db, instructor, model.EstadoBorrador)
	mod := createModule(t, db, course, 1)
	textLesson := createLesson(t, db, mod, 1)

	// Attachments only attach to archivo lessons
	if _, _, err := svc.UploadAttachment(t.Context(), instructor, textLesson.ID, nil); !errors.Is(err, ErrBadRequest) {
		t.Errorf("UploadAttachment(texto lesson) error = %v, want ErrBadRequest", err)
	}

	fileLesson := model.Lesson{ModuleID: mod.ID, Titulo: "PDF", Tipo: model.TipoArchivo, Archivo: "a.pdf", Orden: 2}
	if err := db.Create(&fileLesson).Error; err != nil {
		t.Fatalf("failed to create lesson: %v", err)
	}

	// Without a configured blob store the upload is rejected before touching
	// the file
	if _, _, err := svc.UploadAttachment(t.Context(), instructor, fileLesson.ID, nil); !errors.Is(err, ErrBadRequest) {
		t.Errorf("UploadAttachment() without storage error = %v, want ErrBadRequest", err)
	}
}

func TestListModulesOrdered(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db, nil)

	instructor := createUser(t, db, "owner@test.com", model.RoleInstructor)
	course := createCourse(t, db, instructor, model.EstadoPublicado)
	createModule(t, db, course, 2)
	createModule(t, db, course, 1)

	modules, err := svc.ListModules(nil, course.ID)
	if err != nil {
		t.Fatalf("ListModules() error = %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("ListModules() returned %d modules, want 2", len(modules))
	}
	if modules[0].Orden != 1 || modules[1].Orden != 2 {
		t.Errorf("modules not ordered by orden: %d, %d", modules[0].Orden, modules[1].Orden)
	}
}
