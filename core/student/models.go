package student

import (
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

var OrderingFields = []string{"admission_number", "roll_number", "section", "academic_year", "admission_date", "created_at"}

type Student struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	AdmissionNumber string     `json:"admission_number" db:"admission_number"`
	RollNumber      string     `json:"roll_number" db:"roll_number"`
	ClassID         string     `json:"class_id" db:"class_id"`
	Section         string     `json:"section" db:"section"`
	AcademicYear    string     `json:"academic_year" db:"academic_year"`
	DateOfBirth     *time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender          string     `json:"gender" db:"gender"`
	BloodGroup      string     `json:"blood_group" db:"blood_group"`
	ParentID        *string    `json:"parent_id" db:"parent_id"`
	AdmissionDate   time.Time  `json:"admission_date" db:"admission_date"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	User            *user.User `json:"user,omitempty" db:"-"`
}

func (s Student) UniqueValues() map[string]string {
	return map[string]string{
		"admission_number": s.AdmissionNumber,
		"roll_number":      s.RollNumber,
		"class_id":         s.ClassID,
		"section":          s.Section,
		"academic_year":    s.AcademicYear,
	}
}

// NewStudent holds the student's account (role forced to student) and profile.
// AcademicYear defaults to the class's.
type NewStudent struct {
	user.NewUser
	RollNumber    string     `json:"roll_number" validate:"omitempty,max=20"`
	ClassID       string     `json:"class_id" validate:"required,uuid"`
	Section       string     `json:"section" validate:"omitempty,max=20"`
	AcademicYear  string     `json:"academic_year" validate:"omitempty,max=20"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Gender        string     `json:"gender" validate:"omitempty,oneof=male female other"`
	BloodGroup    string     `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	ParentID      string     `json:"parent_id" validate:"omitempty,uuid"`
	AdmissionDate time.Time  `json:"admission_date"`
}

func (ns *NewStudent) Clean() {
	ns.NewUser.Clean()
	ns.Role = user.RoleStudent
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.ClassID = core.CleanString(ns.ClassID)
	ns.Section = core.CleanString(ns.Section)
	ns.AcademicYear = core.CleanString(ns.AcademicYear)
	ns.Gender = core.CleanString(ns.Gender, true /* lower */)
	ns.BloodGroup = core.CleanString(ns.BloodGroup)
	ns.ParentID = core.CleanString(ns.ParentID)
}

// UpdateStudent holds the account and profile changes. Empty values are left untouched;
// an empty ParentID detaches the student from their parent.
type UpdateStudent struct {
	user.UpdateUser
	RollNumber    *string    `json:"roll_number" validate:"omitempty,max=20"`
	ClassID       string     `json:"class_id" validate:"omitempty,uuid"`
	Section       *string    `json:"section" validate:"omitempty,max=20"`
	AcademicYear  string     `json:"academic_year" validate:"omitempty,max=20"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Gender        string     `json:"gender" validate:"omitempty,oneof=male female other"`
	BloodGroup    string     `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	ParentID      *string    `json:"parent_id"`
	AdmissionDate time.Time  `json:"admission_date"`
}

func (us *UpdateStudent) Clean() {
	us.UpdateUser.Clean()
	us.Role = ""
	us.RollNumber = cleanPtr(us.RollNumber)
	us.ClassID = core.CleanString(us.ClassID)
	us.Section = cleanPtr(us.Section)
	us.AcademicYear = core.CleanString(us.AcademicYear)
	us.Gender = core.CleanString(us.Gender, true /* lower */)
	us.BloodGroup = core.CleanString(us.BloodGroup)
	us.ParentID = cleanPtr(us.ParentID)
}

func cleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := core.CleanString(*s)
	return &v
}

func (us UpdateStudent) apply(s *Student) {
	if us.RollNumber != nil {
		s.RollNumber = *us.RollNumber
	}
	if us.ClassID != "" {
		s.ClassID = us.ClassID
	}
	if us.Section != nil {
		s.Section = *us.Section
	}
	if us.AcademicYear != "" {
		s.AcademicYear = us.AcademicYear
	}
	if us.DateOfBirth != nil {
		s.DateOfBirth = us.DateOfBirth
	}
	if us.Gender != "" {
		s.Gender = us.Gender
	}
	if us.BloodGroup != "" {
		s.BloodGroup = us.BloodGroup
	}
	if us.ParentID != nil {
		s.ParentID = core.NullString(*us.ParentID)
	}
	if !us.AdmissionDate.IsZero() {
		s.AdmissionDate = us.AdmissionDate
	}
}

type QueryFilter struct {
	Search       string   `query:"search"` // admission_number, roll_number, name or email
	ClassID      string   `query:"class_id"`
	Section      string   `query:"section"`
	AcademicYear string   `query:"academic_year"`
	ParentID     string   `query:"parent_id"`
	IDs          []string `query:"id"`
	UserIDs      []string `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.Section = core.CleanString(qf.Section)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
	qf.ParentID = core.CleanString(qf.ParentID)
}
