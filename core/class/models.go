package class

import (
	"time"

	"github.com/trezcool/shule/core"
)

var OrderingFields = []string{"name", "academic_year", "capacity", "room", "created_at"}

type Class struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	AcademicYear   string    `json:"academic_year" db:"academic_year"`
	Sections       []string  `json:"sections" db:"sections"`
	ClassTeacherID *string   `json:"class_teacher_id" db:"class_teacher_id"`
	Capacity       int       `json:"capacity" db:"capacity"`
	Room           string    `json:"room" db:"room"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (c Class) UniqueValues() map[string]string {
	return map[string]string{"name": c.Name, "academic_year": c.AcademicYear}
}

// HasSection reports whether section is one of the class's sections.
// A class declaring no sections accepts only the empty section.
func (c Class) HasSection(section string) bool {
	if len(c.Sections) == 0 {
		return section == ""
	}
	return core.ContainsString(c.Sections, section)
}

type NewClass struct {
	Name           string   `json:"name" validate:"required,max=100"`
	AcademicYear   string   `json:"academic_year" validate:"required,max=20"`
	Sections       []string `json:"sections" validate:"omitempty,unique,dive,max=20"`
	ClassTeacherID string   `json:"class_teacher_id" validate:"omitempty,uuid"`
	Capacity       int      `json:"capacity" validate:"gte=0,lte=1000"`
	Room           string   `json:"room" validate:"omitempty,max=50"`
}

func (nc *NewClass) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.AcademicYear = core.CleanString(nc.AcademicYear)
	nc.Sections = core.CleanStrings(nc.Sections)
	nc.ClassTeacherID = core.CleanString(nc.ClassTeacherID)
	nc.Room = core.CleanString(nc.Room)
}

type UpdateClass struct {
	Name           string   `json:"name" validate:"omitempty,max=100"`
	AcademicYear   string   `json:"academic_year" validate:"omitempty,max=20"`
	Sections       []string `json:"sections" validate:"omitempty,unique,dive,max=20"`
	ClassTeacherID *string  `json:"class_teacher_id" validate:"omitempty"`
	Capacity       *int     `json:"capacity" validate:"omitempty,gte=0,lte=1000"`
	Room           string   `json:"room" validate:"omitempty,max=50"`
}

func (uc *UpdateClass) Clean() {
	uc.Name = core.CleanString(uc.Name)
	uc.AcademicYear = core.CleanString(uc.AcademicYear)
	if uc.Sections != nil {
		uc.Sections = core.CleanStrings(uc.Sections)
	}
	if uc.ClassTeacherID != nil {
		id := core.CleanString(*uc.ClassTeacherID)
		uc.ClassTeacherID = &id
	}
	uc.Room = core.CleanString(uc.Room)
}

func (uc UpdateClass) apply(c *Class) {
	if uc.Name != "" {
		c.Name = uc.Name
	}
	if uc.AcademicYear != "" {
		c.AcademicYear = uc.AcademicYear
	}
	if uc.Sections != nil {
		c.Sections = uc.Sections
	}
	if uc.ClassTeacherID != nil {
		c.ClassTeacherID = core.NullString(*uc.ClassTeacherID) // "" unassigns
	}
	if uc.Capacity != nil {
		c.Capacity = *uc.Capacity
	}
	if uc.Room != "" {
		c.Room = uc.Room
	}
}

type QueryFilter struct {
	Search         string   `query:"search"`
	AcademicYear   string   `query:"academic_year"`
	ClassTeacherID string   `query:"class_teacher_id"`
	IDs            []string `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
	qf.ClassTeacherID = core.CleanString(qf.ClassTeacherID)
}
