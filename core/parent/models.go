package parent

import (
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// Relationships
const (
	RelationshipFather   = "father"
	RelationshipMother   = "mother"
	RelationshipGuardian = "guardian"
	RelationshipOther    = "other"
)

var OrderingFields = []string{"occupation", "relationship", "created_at"}

type Parent struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	Occupation   string     `json:"occupation" db:"occupation"`
	Relationship string     `json:"relationship" db:"relationship"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	User         *user.User `json:"user,omitempty" db:"-"`
}

type NewParent struct {
	user.NewUser
	Occupation   string `json:"occupation" validate:"omitempty,max=100"`
	Relationship string `json:"relationship" validate:"omitempty,oneof=father mother guardian other"`
}

func (np *NewParent) Clean() {
	np.NewUser.Clean()
	np.Role = user.RoleParent
	np.Occupation = core.CleanString(np.Occupation)
	np.Relationship = core.CleanString(np.Relationship, true /* lower */)
	if np.Relationship == "" {
		np.Relationship = RelationshipGuardian
	}
}

type UpdateParent struct {
	user.UpdateUser
	Occupation   string `json:"occupation" validate:"omitempty,max=100"`
	Relationship string `json:"relationship" validate:"omitempty,oneof=father mother guardian other"`
}

func (up *UpdateParent) Clean() {
	up.UpdateUser.Clean()
	up.Role = ""
	up.Occupation = core.CleanString(up.Occupation)
	up.Relationship = core.CleanString(up.Relationship, true /* lower */)
}

func (up UpdateParent) apply(p *Parent) {
	if up.Occupation != "" {
		p.Occupation = up.Occupation
	}
	if up.Relationship != "" {
		p.Relationship = up.Relationship
	}
}

type QueryFilter struct {
	Search       string   `query:"search"` // name, email or phone
	Relationship string   `query:"relationship"`
	IDs          []string `query:"id"`
	UserIDs      []string `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Relationship = core.CleanString(qf.Relationship, true /* lower */)
}
