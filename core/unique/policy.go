// Package unique holds the uniqueness policy: the single table declaring which fields of which
// records must be unique, and within which scope. Any field not listed may repeat freely: two
// unrelated people may share a name, phone number or address.
package unique

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

type Scope string

const (
	ScopeNone      Scope = "none"
	ScopeGlobal    Scope = "global"
	ScopeComposite Scope = "composite"
)

type Fold string

const (
	FoldNone  Fold = ""
	FoldLower Fold = "lower"
	FoldUpper Fold = "upper"
)

func (f Fold) Apply(s string) string {
	switch f {
	case FoldLower:
		return strings.ToLower(s)
	case FoldUpper:
		return strings.ToUpper(s)
	}
	return s
}

// Entities
const (
	EntityUser       = "user"
	EntityStaff      = "staff"
	EntityStudent    = "student"
	EntityParent     = "parent"
	EntityClass      = "class"
	EntitySubject    = "subject"
	EntityAttendance = "attendance"
	EntityTimetable  = "timetable"
)

var ErrDuplicate = errors.New("duplicate value")

// Rule declares that Field of Entity is unique, globally or within the Within fields.
type Rule struct {
	Entity     string   `json:"entity"`
	Field      string   `json:"field"`
	Scope      Scope    `json:"scope"`
	Within     []string `json:"within,omitempty"`
	Fold       Fold     `json:"fold,omitempty"`
	Generated  bool     `json:"generated"`
	Constraint string   `json:"constraint"` // name of the backing database unique index
	Note       string   `json:"note,omitempty"`
}

// Key returns the values that must be distinct across records for the rule to hold.
// The second return is false when the record does not take part (empty field value).
func (r Rule) Key(values map[string]string) ([]string, bool) {
	v := r.Fold.Apply(values[r.Field])
	if v == "" {
		return nil, false
	}
	key := make([]string, 0, 1+len(r.Within))
	key = append(key, v)
	for _, w := range r.Within {
		key = append(key, values[w])
	}
	return key, true
}

// Match returns the field => value conditions a conflicting record would satisfy.
func (r Rule) Match(values map[string]string) (map[string]string, bool) {
	key, ok := r.Key(values)
	if !ok {
		return nil, false
	}
	match := make(map[string]string, len(key))
	match[r.Field] = key[0]
	for i, w := range r.Within {
		match[w] = key[i+1]
	}
	return match, true
}

// Violation builds the error reported when the rule is broken.
func (r Rule) Violation() error {
	return core.NewValidationError(
		errors.Wrapf(ErrDuplicate, "%s.%s", r.Entity, r.Field),
		core.FieldError{Field: r.Field, Error: fmt.Sprintf("a %s with this %s already exists", r.Entity, r.Field)},
	)
}

// Checker reports whether a record of entity other than excludeID matches all the conditions.
type Checker interface {
	Exists(ctx context.Context, entity string, match map[string]string, excludeID string) (bool, error)
}

type Policy struct {
	rules        []Rule
	byEntity     map[string][]Rule
	byConstraint map[string]Rule
}

func NewPolicy(rules ...Rule) *Policy {
	p := &Policy{
		rules:        rules,
		byEntity:     make(map[string][]Rule),
		byConstraint: make(map[string]Rule),
	}
	for _, r := range rules {
		p.byEntity[r.Entity] = append(p.byEntity[r.Entity], r)
		if r.Constraint != "" {
			p.byConstraint[r.Constraint] = r
		}
	}
	return p
}

// DefaultPolicy is the school's uniqueness table.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Rule{Entity: EntityUser, Field: "email", Scope: ScopeGlobal, Fold: FoldLower,
			Constraint: "users_email_key", Note: "login credential"},
		Rule{Entity: EntityStaff, Field: "employee_id", Scope: ScopeGlobal, Generated: true,
			Constraint: "staff_employee_id_key"},
		Rule{Entity: EntityStudent, Field: "admission_number", Scope: ScopeGlobal, Generated: true,
			Constraint: "students_admission_number_key"},
		Rule{Entity: EntityStudent, Field: "roll_number", Scope: ScopeComposite,
			Within: []string{"class_id", "section", "academic_year"}, Constraint: "students_roll_number_key"},
		Rule{Entity: EntitySubject, Field: "code", Scope: ScopeGlobal, Fold: FoldUpper,
			Constraint: "subjects_code_key"},
		Rule{Entity: EntityClass, Field: "name", Scope: ScopeComposite,
			Within: []string{"academic_year"}, Constraint: "classes_name_key"},
		Rule{Entity: EntityAttendance, Field: "date", Scope: ScopeComposite,
			Within: []string{"class_id", "section"}, Constraint: "attendance_date_key", Note: "one sheet per class section and day"},
		Rule{Entity: EntityTimetable, Field: "day", Scope: ScopeComposite,
			Within: []string{"class_id", "section"}, Constraint: "timetables_day_key", Note: "one timetable per class section and weekday"},
	)
}

func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// For returns the rules of entity.
func (p *Policy) For(entity string) []Rule {
	return p.byEntity[entity]
}

// FromConstraint maps a database unique index name back to its rule.
func (p *Policy) FromConstraint(name string) (Rule, bool) {
	r, ok := p.byConstraint[name]
	return r, ok
}

// Check makes sure the record described by values (json field name => value) does not collide
// with another record of entity on any declared scope. excludeID is the record being updated.
func (p *Policy) Check(ctx context.Context, checker Checker, entity string, values map[string]string, excludeID string) error {
	for _, r := range p.byEntity[entity] {
		if r.Scope == ScopeNone {
			continue
		}
		match, ok := r.Match(values)
		if !ok {
			continue
		}
		exists, err := checker.Exists(ctx, entity, match, excludeID)
		if err != nil {
			return errors.Wrapf(err, "checking %s.%s uniqueness", r.Entity, r.Field)
		}
		if exists {
			return r.Violation()
		}
	}
	return nil
}

// Conflict reports the first rule of entity on which the two records collide.
func (p *Policy) Conflict(entity string, a, b map[string]string) (Rule, bool) {
	for _, r := range p.byEntity[entity] {
		if r.Scope == ScopeNone {
			continue
		}
		ka, ok := r.Key(a)
		if !ok {
			continue
		}
		kb, ok := r.Key(b)
		if !ok || len(ka) != len(kb) {
			continue
		}
		same := true
		for i := range ka {
			if ka[i] != kb[i] {
				same = false
				break
			}
		}
		if same {
			return r, true
		}
	}
	return Rule{}, false
}

// IsViolation reports whether err is a uniqueness violation on field.
func IsViolation(err error, field string) bool {
	if !errors.Is(err, ErrDuplicate) {
		return false
	}
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		return false
	}
	for _, f := range vErr.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
