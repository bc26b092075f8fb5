package grade

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Exam types
const (
	ExamQuiz       = "quiz"
	ExamAssignment = "assignment"
	ExamMidterm    = "midterm"
	ExamFinal      = "final"
	ExamProject    = "project"
)

var OrderingFields = []string{"exam_type", "marks_obtained", "max_marks", "letter", "academic_year", "term", "created_at"}

type Grade struct {
	ID            string    `json:"id" db:"id"`
	StudentID     string    `json:"student_id" db:"student_id"`
	SubjectID     string    `json:"subject_id" db:"subject_id"`
	ClassID       string    `json:"class_id" db:"class_id"`
	ExamType      string    `json:"exam_type" db:"exam_type"`
	MarksObtained float64   `json:"marks_obtained" db:"marks_obtained"`
	MaxMarks      float64   `json:"max_marks" db:"max_marks"`
	Letter        string    `json:"letter" db:"letter"`
	AcademicYear  string    `json:"academic_year" db:"academic_year"`
	Term          string    `json:"term" db:"term"`
	Remarks       string    `json:"remarks" db:"remarks"`
	GradedBy      *string   `json:"graded_by" db:"graded_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Percentage returns the marks as a percentage of the maximum.
func (g Grade) Percentage() float64 {
	if g.MaxMarks <= 0 {
		return 0
	}
	return g.MarksObtained / g.MaxMarks * 100
}

var letterBands = []struct {
	min    float64
	letter string
}{
	{90, "A+"},
	{80, "A"},
	{70, "B"},
	{60, "C"},
	{50, "D"},
}

// Letter maps a percentage to its letter grade.
func Letter(percentage float64) string {
	for _, b := range letterBands {
		if percentage >= b.min {
			return b.letter
		}
	}
	return "F"
}

// NewGrade records a mark. ClassID and AcademicYear default to the student's.
type NewGrade struct {
	StudentID     string  `json:"student_id" validate:"required,uuid"`
	SubjectID     string  `json:"subject_id" validate:"required,uuid"`
	ClassID       string  `json:"class_id" validate:"omitempty,uuid"`
	ExamType      string  `json:"exam_type" validate:"required,oneof=quiz assignment midterm final project"`
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0,ltefield=MaxMarks"`
	MaxMarks      float64 `json:"max_marks" validate:"gt=0"`
	AcademicYear  string  `json:"academic_year" validate:"omitempty,max=20"`
	Term          string  `json:"term" validate:"omitempty,max=20"`
	Remarks       string  `json:"remarks" validate:"omitempty,max=500"`
}

func (ng *NewGrade) Clean() {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.SubjectID = core.CleanString(ng.SubjectID)
	ng.ClassID = core.CleanString(ng.ClassID)
	ng.ExamType = core.CleanString(ng.ExamType, true /* lower */)
	ng.AcademicYear = core.CleanString(ng.AcademicYear)
	ng.Term = core.CleanString(ng.Term)
	ng.Remarks = core.CleanString(ng.Remarks)
}

type UpdateGrade struct {
	ExamType      string   `json:"exam_type" validate:"omitempty,oneof=quiz assignment midterm final project"`
	MarksObtained *float64 `json:"marks_obtained" validate:"omitempty,gte=0"`
	MaxMarks      *float64 `json:"max_marks" validate:"omitempty,gt=0"`
	Term          string   `json:"term" validate:"omitempty,max=20"`
	Remarks       *string  `json:"remarks" validate:"omitempty,max=500"`
}

func (ug *UpdateGrade) Clean() {
	ug.ExamType = core.CleanString(ug.ExamType, true /* lower */)
	ug.Term = core.CleanString(ug.Term)
	if ug.Remarks != nil {
		r := core.CleanString(*ug.Remarks)
		ug.Remarks = &r
	}
}

func (ug UpdateGrade) apply(g *Grade) {
	if ug.ExamType != "" {
		g.ExamType = ug.ExamType
	}
	if ug.MarksObtained != nil {
		g.MarksObtained = *ug.MarksObtained
	}
	if ug.MaxMarks != nil {
		g.MaxMarks = *ug.MaxMarks
	}
	if ug.Term != "" {
		g.Term = ug.Term
	}
	if ug.Remarks != nil {
		g.Remarks = *ug.Remarks
	}
}

type QueryFilter struct {
	StudentIDs   []string `query:"student_id"`
	SubjectID    string   `query:"subject_id"`
	ClassID      string   `query:"class_id"`
	ExamType     string   `query:"exam_type"`
	AcademicYear string   `query:"academic_year"`
	Term         string   `query:"term"`
	IDs          []string `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentIDs = core.CleanStrings(qf.StudentIDs)
	qf.SubjectID = core.CleanString(qf.SubjectID)
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.ExamType = core.CleanString(qf.ExamType, true /* lower */)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
	qf.Term = core.CleanString(qf.Term)
}
