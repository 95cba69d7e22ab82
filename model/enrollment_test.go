package model

import "testing"

func TestEnrollmentIsActive(t *testing.T) {
	if !(&Enrollment{Estado: EnrollmentActivo}).IsActive() {
		t.Error("activo reported as inactive")
	}
	if (&Enrollment{Estado: EnrollmentInactivo}).IsActive() {
		t.Error("inactivo reported as active")
	}
	if (&Enrollment{}).IsActive() {
		t.Error("empty estado reported as active")
	}
}
