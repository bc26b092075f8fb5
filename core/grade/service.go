package grade

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/subject"
)

var (
	ErrNotFound = core.NewNotFoundError("grade")

	errInvalidMarks = errors.New("invalid marks")
	errWrongClass   = errors.New("student not in class")
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		QueryGrades(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Grade, error)
		GetGrade(ctx context.Context, id string) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		students *student.Service
		subjects *subject.Service
		validate *validator.Validate
	}
)

func NewService(repo Repository, students *student.Service, subjects *subject.Service, validate *validator.Validate) *Service {
	return &Service{repo: repo, students: students, subjects: subjects, validate: validate}
}

func checkMarks(g Grade) error {
	if g.MaxMarks <= 0 {
		return core.NewValidationError(errInvalidMarks, core.FieldError{Field: "max_marks", Error: "must be greater than 0"})
	}
	if g.MarksObtained < 0 || g.MarksObtained > g.MaxMarks {
		return core.NewValidationError(errInvalidMarks, core.FieldError{Field: "marks_obtained", Error: "must be between 0 and max_marks"})
	}
	return nil
}

// Create records a grade given by the user gradedBy.
func (svc *Service) Create(ctx context.Context, gradedBy string, ng NewGrade) (Grade, error) {
	ng.Clean()
	if err := svc.validate.Struct(ng); err != nil {
		return Grade{}, err
	}

	s, err := svc.students.Lookup(ctx, ng.StudentID, "student_id")
	if err != nil {
		return Grade{}, err
	}
	subj, err := svc.subjects.Lookup(ctx, ng.SubjectID, "subject_id")
	if err != nil {
		return Grade{}, err
	}
	classID := ng.ClassID
	if classID == "" {
		classID = s.ClassID
	}
	if classID != s.ClassID {
		return Grade{}, core.NewValidationError(errWrongClass, core.FieldError{Field: "class_id", Error: "the student is not in this class"})
	}
	if subj.ClassID != nil && *subj.ClassID != classID {
		return Grade{}, core.NewValidationError(errWrongClass, core.FieldError{Field: "subject_id", Error: "the subject is not taught in this class"})
	}

	now := time.Now().UTC()
	g := Grade{
		StudentID:     s.ID,
		SubjectID:     subj.ID,
		ClassID:       classID,
		ExamType:      ng.ExamType,
		MarksObtained: ng.MarksObtained,
		MaxMarks:      ng.MaxMarks,
		AcademicYear:  ng.AcademicYear,
		Term:          ng.Term,
		Remarks:       ng.Remarks,
		GradedBy:      core.NullString(gradedBy),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if g.AcademicYear == "" {
		g.AcademicYear = s.AcademicYear
	}
	if err := checkMarks(g); err != nil {
		return Grade{}, err
	}
	g.Letter = Letter(g.Percentage())
	return svc.repo.CreateGrade(ctx, g)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Grade, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QueryGrades(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Grade, error) {
	return svc.repo.GetGrade(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id, gradedBy string, ug UpdateGrade) (Grade, error) {
	g, err := svc.repo.GetGrade(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	ug.Clean()
	if err := svc.validate.Struct(ug); err != nil {
		return Grade{}, err
	}
	ug.apply(&g)
	if err := checkMarks(g); err != nil {
		return Grade{}, err
	}
	g.Letter = Letter(g.Percentage())
	g.GradedBy = core.NullString(gradedBy)
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, g)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteGrade(ctx, id)
}
