package unique

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

// sliceChecker answers Exists from a fixed set of records.
type sliceChecker struct {
	records map[string][]map[string]string // entity => rows (rows carry their "id")
}

func (c sliceChecker) Exists(_ context.Context, entity string, match map[string]string, excludeID string) (bool, error) {
	for _, row := range c.records[entity] {
		if row["id"] == excludeID {
			continue
		}
		ok := true
		for k, v := range match {
			if row[k] != v {
				ok = false
				break
			}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func TestPolicy_Check(t *testing.T) {
	ctx := context.Background()
	p := DefaultPolicy()
	checker := sliceChecker{records: map[string][]map[string]string{
		EntityUser: {
			{"id": "u1", "email": "jane@school.test", "name": "Jane Doe", "phone": "0811111111"},
		},
		EntityStudent: {
			{"id": "s1", "admission_number": "ADM20240001", "roll_number": "7", "class_id": "c1", "section": "A", "academic_year": "2024-2025"},
		},
		EntitySubject: {
			{"id": "sub1", "code": "MATH", "name": "Mathematics"},
		},
		EntityClass: {
			{"id": "c1", "name": "Grade 1", "academic_year": "2024-2025"},
		},
	}}

	tests := []struct {
		name      string
		entity    string
		values    map[string]string
		excludeID string
		wantField string // empty: no violation
	}{
		{name: "same email other case", entity: EntityUser, values: map[string]string{"email": "JANE@school.test"}, wantField: "email"},
		{name: "same name and phone, distinct email", entity: EntityUser, values: map[string]string{"email": "jane2@school.test", "name": "Jane Doe", "phone": "0811111111"}},
		{name: "updating itself", entity: EntityUser, values: map[string]string{"email": "jane@school.test"}, excludeID: "u1"},
		{name: "same roll number same scope", entity: EntityStudent, values: map[string]string{"roll_number": "7", "class_id": "c1", "section": "A", "academic_year": "2024-2025"}, wantField: "roll_number"},
		{name: "same roll number other class", entity: EntityStudent, values: map[string]string{"roll_number": "7", "class_id": "c2", "section": "A", "academic_year": "2024-2025"}},
		{name: "same roll number other section", entity: EntityStudent, values: map[string]string{"roll_number": "7", "class_id": "c1", "section": "B", "academic_year": "2024-2025"}},
		{name: "same roll number other year", entity: EntityStudent, values: map[string]string{"roll_number": "7", "class_id": "c1", "section": "A", "academic_year": "2025-2026"}},
		{name: "no roll number", entity: EntityStudent, values: map[string]string{"class_id": "c1", "section": "A", "academic_year": "2024-2025"}},
		{name: "generated id collision", entity: EntityStudent, values: map[string]string{"admission_number": "ADM20240001"}, wantField: "admission_number"},
		{name: "subject code other case", entity: EntitySubject, values: map[string]string{"code": "math"}, wantField: "code"},
		{name: "subject same name other code", entity: EntitySubject, values: map[string]string{"code": "MATH2", "name": "Mathematics"}},
		{name: "class same name same year", entity: EntityClass, values: map[string]string{"name": "Grade 1", "academic_year": "2024-2025"}, wantField: "name"},
		{name: "class same name other year", entity: EntityClass, values: map[string]string{"name": "Grade 1", "academic_year": "2025-2026"}},
		{name: "entity without rules", entity: EntityParent, values: map[string]string{"occupation": "Teacher"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Check(ctx, checker, tt.entity, tt.values, tt.excludeID)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDuplicate))
			assert.True(t, IsViolation(err, tt.wantField))

			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
			assert.Equal(t, "a "+tt.entity+" with this "+tt.wantField+" already exists", vErr.Fields[0].Error)
		})
	}
}

func TestPolicy_Conflict(t *testing.T) {
	p := DefaultPolicy()

	r, ok := p.Conflict(EntitySubject, map[string]string{"code": "MATH"}, map[string]string{"code": "math"})
	assert.True(t, ok)
	assert.Equal(t, "code", r.Field)

	_, ok = p.Conflict(EntityStaff, map[string]string{"employee_id": "EMP20240001", "designation": "Teacher"},
		map[string]string{"employee_id": "EMP20240002", "designation": "Teacher"})
	assert.False(t, ok)

	_, ok = p.Conflict(EntityStudent, map[string]string{"roll_number": ""}, map[string]string{"roll_number": ""})
	assert.False(t, ok, "empty values never collide")
}

func TestPolicy_FromConstraint(t *testing.T) {
	p := DefaultPolicy()
	for _, r := range p.Rules() {
		got, ok := p.FromConstraint(r.Constraint)
		assert.True(t, ok, r.Constraint)
		assert.Equal(t, r.Entity+"."+r.Field, got.Entity+"."+got.Field)
	}
	_, ok := p.FromConstraint("users_pkey")
	assert.False(t, ok)
}

func TestIsViolation(t *testing.T) {
	err := Rule{Entity: EntityStaff, Field: "employee_id"}.Violation()
	assert.True(t, IsViolation(errors.Wrap(err, "creating staff"), "employee_id"))
	assert.False(t, IsViolation(err, "email"))
	assert.False(t, IsViolation(errors.New("employee_id"), "employee_id"))
}
