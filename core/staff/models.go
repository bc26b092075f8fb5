package staff

import (
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// Statuses
const (
	StatusActive     = "active"
	StatusOnLeave    = "on_leave"
	StatusResigned   = "resigned"
	StatusTerminated = "terminated"
)

var OrderingFields = []string{"employee_id", "designation", "department", "joining_date", "salary", "status", "created_at"}

type Staff struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	EmployeeID    string     `json:"employee_id" db:"employee_id"`
	Designation   string     `json:"designation" db:"designation"`
	Department    string     `json:"department" db:"department"`
	Qualification string     `json:"qualification" db:"qualification"`
	JoiningDate   time.Time  `json:"joining_date" db:"joining_date"`
	Salary        float64    `json:"salary" db:"salary"`
	Status        string     `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	User          *user.User `json:"user,omitempty" db:"-"`
}

func (s Staff) UniqueValues() map[string]string {
	return map[string]string{"employee_id": s.EmployeeID}
}

// NewStaff holds the staff member's account (role forced to staff) and profile.
type NewStaff struct {
	user.NewUser
	Designation   string    `json:"designation" validate:"required,max=100"`
	Department    string    `json:"department" validate:"omitempty,max=100"`
	Qualification string    `json:"qualification" validate:"omitempty,max=200"`
	JoiningDate   time.Time `json:"joining_date" validate:"required"`
	Salary        float64   `json:"salary" validate:"gte=0"`
	Status        string    `json:"status" validate:"omitempty,oneof=active on_leave resigned terminated"`
}

func (ns *NewStaff) Clean() {
	ns.NewUser.Clean()
	ns.Role = user.RoleStaff
	ns.Designation = core.CleanString(ns.Designation)
	ns.Department = core.CleanString(ns.Department)
	ns.Qualification = core.CleanString(ns.Qualification)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
	if ns.Status == "" {
		ns.Status = StatusActive
	}
}

// UpdateStaff holds the account and profile changes. Empty values are left untouched.
type UpdateStaff struct {
	user.UpdateUser
	Designation   string    `json:"designation" validate:"omitempty,max=100"`
	Department    string    `json:"department" validate:"omitempty,max=100"`
	Qualification string    `json:"qualification" validate:"omitempty,max=200"`
	JoiningDate   time.Time `json:"joining_date"`
	Salary        *float64  `json:"salary" validate:"omitempty,gte=0"`
	Status        string    `json:"status" validate:"omitempty,oneof=active on_leave resigned terminated"`
}

func (us *UpdateStaff) Clean() {
	us.UpdateUser.Clean()
	us.Role = "" // a staff account stays a staff account
	us.Designation = core.CleanString(us.Designation)
	us.Department = core.CleanString(us.Department)
	us.Qualification = core.CleanString(us.Qualification)
	us.Status = core.CleanString(us.Status, true /* lower */)
}

func (us UpdateStaff) apply(s *Staff) {
	if us.Designation != "" {
		s.Designation = us.Designation
	}
	if us.Department != "" {
		s.Department = us.Department
	}
	if us.Qualification != "" {
		s.Qualification = us.Qualification
	}
	if !us.JoiningDate.IsZero() {
		s.JoiningDate = us.JoiningDate
	}
	if us.Salary != nil {
		s.Salary = *us.Salary
	}
	if us.Status != "" {
		s.Status = us.Status
	}
}

type QueryFilter struct {
	Search     string   `query:"search"` // employee_id, name or email
	Department string   `query:"department"`
	Status     string   `query:"status"`
	IDs        []string `query:"id"`
	UserIDs    []string `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Department = core.CleanString(qf.Department)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
