package models

import "time"

// AcademicYear is a school year, e.g. "2025/2026".
type AcademicYear struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
}

// Class is a grade level such as "Grade 5".
type Class struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	GradeLevel int       `db:"grade_level" json:"grade_level"`
	Capacity   int       `db:"capacity" json:"capacity"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	Divisions []*Division `json:"divisions,omitempty"`
}

// Division is a section of a class ("5A", "5B").
type Division struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ClassID      int64     `db:"class_id" json:"class_id"`
	Capacity     int       `db:"capacity" json:"capacity"`
	ClassTeacher *string   `db:"class_teacher" json:"class_teacher,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	Class *Class `json:"class,omitempty"`
}

// Student is an enrolled learner.
type Student struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Gender    Gender `db:"gender" json:"gender"`
	BusStopID *int64 `db:"bus_stop_id" json:"bus_stop_id,omitempty"`
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Enrollment places a student in a class for an academic year.
type Enrollment struct {
	ID             int64     `db:"id" json:"id"`
	StudentID      int64     `db:"student_id" json:"student_id"`
	ClassID        int64     `db:"class_id" json:"class_id"`
	DivisionID     *int64    `db:"division_id" json:"division_id,omitempty"`
	AcademicYearID int64     `db:"academic_year_id" json:"academic_year_id"`
	AdmissionType  string    `db:"admission_type" json:"admission_type"`
	Mode           string    `db:"mode" json:"mode"`
	AdmissionDate  time.Time `db:"admission_date" json:"admission_date"`
	Status         string    `db:"status" json:"status"`

	Student      *Student      `json:"student,omitempty"`
	Class        *Class        `json:"class,omitempty"`
	Division     *Division     `json:"division,omitempty"`
	AcademicYear *AcademicYear `json:"academic_year,omitempty"`
}

// BusStop is a pickup point on a transport route.
type BusStop struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Route string `db:"route" json:"route"`
}
