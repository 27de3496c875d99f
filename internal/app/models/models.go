package models

// RoleType defines the role carried in access tokens
type RoleType string

const (
	RoleAdmin      RoleType = "ADMIN"
	RoleAccountant RoleType = "ACCOUNTANT"
	RoleTeacher    RoleType = "TEACHER"
)

// Gender of a student
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// AssignmentTarget names the kind of entity a fee is assigned to
type AssignmentTarget string

const (
	TargetClass   AssignmentTarget = "class"
	TargetBusStop AssignmentTarget = "bus_stop"
	TargetStudent AssignmentTarget = "student"
)

// ParseAssignmentTarget returns the target for a filter value, false when unknown.
func ParseAssignmentTarget(s string) (AssignmentTarget, bool) {
	switch AssignmentTarget(s) {
	case TargetClass, TargetBusStop, TargetStudent:
		return AssignmentTarget(s), true
	}
	return "", false
}
