package subject

import (
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/unique"
)

// Types
const (
	TypeTheory    = "theory"
	TypePractical = "practical"
	TypeElective  = "elective"
)

var OrderingFields = []string{"name", "code", "credits", "type", "created_at"}

type Subject struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description string    `json:"description" db:"description"`
	ClassID     *string   `json:"class_id" db:"class_id"`
	TeacherID   *string   `json:"teacher_id" db:"teacher_id"`
	Credits     int       `json:"credits" db:"credits"`
	Type        string    `json:"type" db:"type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (s Subject) UniqueValues() map[string]string {
	return map[string]string{"code": s.Code}
}

type NewSubject struct {
	Name        string `json:"name" validate:"required,max=100"`
	Code        string `json:"code" validate:"required,max=20,alphanum_"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	ClassID     string `json:"class_id" validate:"omitempty,uuid"`
	TeacherID   string `json:"teacher_id" validate:"omitempty,uuid"`
	Credits     int    `json:"credits" validate:"gte=0,lte=100"`
	Type        string `json:"type" validate:"omitempty,oneof=theory practical elective"`
}

func (ns *NewSubject) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = cleanCode(ns.Code)
	ns.Description = core.CleanString(ns.Description)
	ns.ClassID = core.CleanString(ns.ClassID)
	ns.TeacherID = core.CleanString(ns.TeacherID)
	ns.Type = core.CleanString(ns.Type, true /* lower */)
	if ns.Type == "" {
		ns.Type = TypeTheory
	}
}

// codes are stored upper-cased: "math" and "MATH" are the same subject.
func cleanCode(code string) string {
	return unique.FoldUpper.Apply(core.CleanString(code))
}

type UpdateSubject struct {
	Name        string  `json:"name" validate:"omitempty,max=100"`
	Code        string  `json:"code" validate:"omitempty,max=20,alphanum_"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ClassID     *string `json:"class_id"`
	TeacherID   *string `json:"teacher_id"`
	Credits     *int    `json:"credits" validate:"omitempty,gte=0,lte=100"`
	Type        string  `json:"type" validate:"omitempty,oneof=theory practical elective"`
}

func (us *UpdateSubject) Clean() {
	us.Name = core.CleanString(us.Name)
	us.Code = cleanCode(us.Code)
	if us.Description != nil {
		d := core.CleanString(*us.Description)
		us.Description = &d
	}
	if us.ClassID != nil {
		id := core.CleanString(*us.ClassID)
		us.ClassID = &id
	}
	if us.TeacherID != nil {
		id := core.CleanString(*us.TeacherID)
		us.TeacherID = &id
	}
	us.Type = core.CleanString(us.Type, true /* lower */)
}

func (us UpdateSubject) apply(s *Subject) {
	if us.Name != "" {
		s.Name = us.Name
	}
	if us.Code != "" {
		s.Code = us.Code
	}
	if us.Description != nil {
		s.Description = *us.Description
	}
	if us.ClassID != nil {
		s.ClassID = core.NullString(*us.ClassID)
	}
	if us.TeacherID != nil {
		s.TeacherID = core.NullString(*us.TeacherID)
	}
	if us.Credits != nil {
		s.Credits = *us.Credits
	}
	if us.Type != "" {
		s.Type = us.Type
	}
}

type QueryFilter struct {
	Search    string   `query:"search"` // name or code
	ClassID   string   `query:"class_id"`
	TeacherID string   `query:"teacher_id"`
	Type      string   `query:"type"`
	IDs       []string `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
}
