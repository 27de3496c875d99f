package dto

// DivisionRequest represents division create and update data
type DivisionRequest struct {
	Name         string  `json:"name" binding:"required,max=50"`
	ClassID      int64   `json:"class_id" binding:"required,gt=0"`
	Capacity     int     `json:"capacity" binding:"gte=0"`
	ClassTeacher *string `json:"class_teacher" binding:"omitempty,max=100"`
}

// EnrollmentFilter holds the query parameters of the enrollment listing
type EnrollmentFilter struct {
	ClassID    int64  `form:"classId" binding:"omitempty,gt=0"`
	DivisionID int64  `form:"divisionId" binding:"omitempty,gt=0"`
	Status     string `form:"status"`
}

// ClassResponse is a class with its headcount
type ClassResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	GradeLevel   int    `json:"grade_level"`
	Capacity     int    `json:"capacity"`
	StudentCount int    `json:"student_count"`
}
