package services

import (
	"github.com/aulavivo/lms-api/model"
)

// Authorization helpers. A nil user means an anonymous caller. Ownership
// checks require course.Instructor to be preloaded; loadCourse does that.

// IsCourseOwner reports whether user owns the course through their
// instructor profile
func IsCourseOwner(user *model.User, course *model.Course) bool {
	if user == nil {
		return false
	}
	return course.Instructor.UserID == user.ID
}

// CanViewCourse reports whether user may see the course at all. Published
// courses are world-readable; drafts are visible only to staff and to their
// owner while the owner's instructor capability is enabled.
func CanViewCourse(user *model.User, course *model.Course) bool {
	if course.IsPublished() {
		return true
	}
	if user == nil {
		return false
	}
	if user.IsStaff {
		return true
	}
	return user.InstructorEnabled && IsCourseOwner(user, course)
}

// CanEditCourse reports whether user may modify the course or anything that
// resolves to it (modules, lessons, quizzes, questions, choices)
func CanEditCourse(user *model.User, course *model.Course) bool {
	if user == nil {
		return false
	}
	if user.IsStaff {
		return true
	}
	return user.InstructorEnabled && IsCourseOwner(user, course)
}

// CanGiveFeedback reports whether user may comment on or rate course
// content. Requires an enabled student capability; staff bypasses it. The
// active-enrollment requirement is checked separately by the services and
// staff bypasses that too.
func CanGiveFeedback(user *model.User) bool {
	if user == nil {
		return false
	}
	return user.IsStaff || user.StudentEnabled
}
