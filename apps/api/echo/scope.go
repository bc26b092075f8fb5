package echoapi

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

// scoper works out which students a user may see: staff and admins see everyone, a parent
// their children and a student themselves.
type scoper struct {
	students *student.Service
	parents  *parent.Service
}

func newScoper(deps ServerDeps) scoper {
	return scoper{students: deps.StudentSvc, parents: deps.ParentSvc}
}

// studentIDs returns the students usr is limited to. all is true when usr is not limited.
func (s scoper) studentIDs(ctx context.Context, usr user.User) (ids []string, all bool, err error) {
	switch usr.Role {
	case user.RoleAdmin, user.RoleStaff:
		return nil, true, nil
	case user.RoleParent:
		p, err := s.parents.GetByUser(ctx, usr.ID)
		if err != nil {
			if core.IsNotFound(err) {
				return []string{}, false, nil
			}
			return nil, false, errors.Wrap(err, "finding parent profile")
		}
		children, err := s.students.Children(ctx, p.ID)
		if err != nil {
			return nil, false, errors.Wrap(err, "querying children")
		}
		ids = make([]string, 0, len(children))
		for _, c := range children {
			ids = append(ids, c.ID)
		}
		return ids, false, nil
	case user.RoleStudent:
		st, err := s.students.GetByUser(ctx, usr.ID)
		if err != nil {
			if core.IsNotFound(err) {
				return []string{}, false, nil
			}
			return nil, false, errors.Wrap(err, "finding student profile")
		}
		return []string{st.ID}, false, nil
	}
	return []string{}, false, nil
}

// canSee reports whether usr may look at the records of studentID.
func (s scoper) canSee(ctx context.Context, usr user.User, studentID string) (bool, error) {
	ids, all, err := s.studentIDs(ctx, usr)
	if err != nil || all {
		return all, err
	}
	return core.ContainsString(ids, studentID), nil
}

// restrict narrows the requested IDs to the allowed ones. No requested IDs means all allowed.
func restrict(requested, allowed []string) []string {
	if len(requested) == 0 {
		return allowed
	}
	out := make([]string, 0, len(requested))
	for _, id := range requested {
		if core.ContainsString(allowed, id) {
			out = append(out, id)
		}
	}
	return out
}
