package model

import "testing"

func TestApplyRole(t *testing.T) {
	student := User{Role: RoleStudent}
	student.ApplyRole()
	if !student.StudentEnabled || student.InstructorEnabled || student.IsStaff {
		t.Errorf("student flags = (%v, %v, %v)", student.StudentEnabled, student.InstructorEnabled, student.IsStaff)
	}

	instructor := User{Role: RoleInstructor}
	instructor.ApplyRole()
	if !instructor.InstructorEnabled || instructor.IsStaff {
		t.Errorf("instructor flags = (%v, %v)", instructor.InstructorEnabled, instructor.IsStaff)
	}

	admin := User{Role: RoleAdmin}
	admin.ApplyRole()
	if !admin.IsStaff {
		t.Error("admin IsStaff = false")
	}
}

func TestApplyRoleNeverRevokes(t *testing.T) {
	user := User{Role: RoleStudent}
	user.ApplyRole()

	// A promotion adds capability without dropping what an admin granted
	user.InstructorEnabled = true
	user.Role = RoleAdmin
	user.ApplyRole()

	if !user.StudentEnabled || !user.InstructorEnabled || !user.IsStaff {
		t.Errorf("flags after promotion = (%v, %v, %v), want all true",
			user.StudentEnabled, user.InstructorEnabled, user.IsStaff)
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{RoleStudent, RoleInstructor, RoleAdmin} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "superuser", "Admin"} {
		if IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = true, want false", role)
		}
	}
}
