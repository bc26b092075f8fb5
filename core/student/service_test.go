package student_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	fields := make([]string, 0, len(vErr.Fields))
	for _, f := range vErr.Fields {
		fields = append(fields, f.Field)
	}
	return fields
}

func TestService_Create(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()
	s.SetYear(2025)

	mum := testutil.CreateParent(t, s, "Mum", "mum@test.cd")
	c := testutil.CreateClass(t, s, "Grade 1", "2024-2025", "A", "B")

	kid := testutil.CreateStudent(t, s, "Kid", "kid@test.cd", c.ID, testutil.StudentOpts{
		Section: "A", RollNumber: "01", ParentID: mum.ID,
	})
	assert.Equal(t, "ADM20250001", kid.AdmissionNumber)
	assert.Equal(t, "2024-2025", kid.AcademicYear)
	require.NotNil(t, kid.ParentID)
	assert.Equal(t, mum.ID, *kid.ParentID)
	require.NotNil(t, kid.User)
	assert.Equal(t, user.RoleStudent, kid.User.Role)
	assert.False(t, kid.AdmissionDate.IsZero())

	tests := []struct {
		name       string
		ns         student.NewStudent
		wantFields []string
	}{
		{
			name:       "roll number taken in the same class section",
			ns:         testutil.NewStudent("Twin", "twin@test.cd", c.ID, testutil.StudentOpts{Section: "A", RollNumber: "01"}),
			wantFields: []string{"roll_number"},
		},
		{
			name:       "unknown section",
			ns:         testutil.NewStudent("Lost", "lost@test.cd", c.ID, testutil.StudentOpts{Section: "Z"}),
			wantFields: []string{"section"},
		},
		{
			name: "unknown parent",
			ns: testutil.NewStudent("Orphan", "orphan@test.cd", c.ID, testutil.StudentOpts{
				Section: "A", ParentID: "0b8c5f5e-8f5a-4a43-9a0e-2f1c8e1c9d11",
			}),
			wantFields: []string{"parent_id"},
		},
		{
			name:       "unknown class",
			ns:         testutil.NewStudent("Nowhere", "nowhere@test.cd", "0b8c5f5e-8f5a-4a43-9a0e-2f1c8e1c9d11", testutil.StudentOpts{}),
			wantFields: []string{"class_id"},
		},
		{
			name:       "email taken",
			ns:         testutil.NewStudent("Kid Again", "KID@test.cd", c.ID, testutil.StudentOpts{Section: "B"}),
			wantFields: []string{"email"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Students.Create(ctx, tt.ns)
			require.Error(t, err)
			assert.Equal(t, tt.wantFields, fieldsOf(t, err))
		})
	}

	t.Run("same roll number in another section", func(t *testing.T) {
		other := testutil.CreateStudent(t, s, "Other", "other@test.cd", c.ID, testutil.StudentOpts{Section: "B", RollNumber: "01"})
		assert.Equal(t, "ADM20250002", other.AdmissionNumber)
	})

	t.Run("same roll number in another academic year", func(t *testing.T) {
		ns := testutil.NewStudent("Next Year", "nextyear@test.cd", c.ID, testutil.StudentOpts{Section: "A", RollNumber: "01"})
		ns.AcademicYear = "2025-2026"
		st, err := s.Students.Create(ctx, ns)
		require.NoError(t, err)
		assert.Equal(t, "2025-2026", st.AcademicYear)
		assert.Equal(t, "01", st.RollNumber)
	})

	t.Run("same roll number in another class", func(t *testing.T) {
		c2 := testutil.CreateClass(t, s, "Grade 2", "2024-2025", "A")
		st := testutil.CreateStudent(t, s, "Elder", "elder@test.cd", c2.ID, testutil.StudentOpts{Section: "A", RollNumber: "01"})
		assert.Equal(t, "01", st.RollNumber)
	})

	t.Run("identical details with distinct emails", func(t *testing.T) {
		dob := time.Date(2017, time.May, 2, 0, 0, 0, 0, time.UTC)
		twin := func(email string) student.NewStudent {
			ns := testutil.NewStudent("Amani Bahati", email, c.ID, testutil.StudentOpts{Section: "B"})
			ns.Phone = "0998765432"
			ns.Address = "3 Rue de la Paix, Bukavu"
			ns.DateOfBirth = &dob
			ns.BloodGroup = "O+"
			return ns
		}
		first, err := s.Students.Create(ctx, twin("amani1@test.cd"))
		require.NoError(t, err)
		second, err := s.Students.Create(ctx, twin("amani2@test.cd"))
		require.NoError(t, err)
		assert.NotEqual(t, first.AdmissionNumber, second.AdmissionNumber)
		assert.Equal(t, first.User.Name, second.User.Name)
	})

	t.Run("children", func(t *testing.T) {
		children, err := s.Students.Children(ctx, mum.ID)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, kid.ID, children[0].ID)
		assert.Equal(t, "kid@test.cd", children[0].User.Email)
	})
}

func TestService_Update(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	mum := testutil.CreateParent(t, s, "Mum", "mum@test.cd")
	c := testutil.CreateClass(t, s, "Grade 1", "2024-2025", "A", "B")
	kid := testutil.CreateStudent(t, s, "Kid", "kid@test.cd", c.ID, testutil.StudentOpts{Section: "A", RollNumber: "01", ParentID: mum.ID})
	mate := testutil.CreateStudent(t, s, "Mate", "mate@test.cd", c.ID, testutil.StudentOpts{Section: "B", RollNumber: "01"})

	t.Run("moving into a taken roll number", func(t *testing.T) {
		section := "A"
		_, err := s.Students.Update(ctx, mate.ID, student.UpdateStudent{Section: &section})
		require.Error(t, err)
		assert.True(t, unique.IsViolation(err, "roll_number"))
	})

	t.Run("moving with a new roll number", func(t *testing.T) {
		section, roll := "A", "02"
		updated, err := s.Students.Update(ctx, mate.ID, student.UpdateStudent{Section: &section, RollNumber: &roll})
		require.NoError(t, err)
		assert.Equal(t, "A", updated.Section)
		assert.Equal(t, "02", updated.RollNumber)
		assert.Equal(t, mate.AdmissionNumber, updated.AdmissionNumber)
	})

	t.Run("detaching the parent", func(t *testing.T) {
		empty := ""
		updated, err := s.Students.Update(ctx, kid.ID, student.UpdateStudent{ParentID: &empty})
		require.NoError(t, err)
		assert.Nil(t, updated.ParentID)
	})
}

func TestService_Delete(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	c := testutil.CreateClass(t, s, "Grade 1", "2024-2025", "A")
	math := testutil.CreateSubject(t, s, "Mathematics", "MATH")
	kid := testutil.CreateStudent(t, s, "Kid", "kid@test.cd", c.ID, testutil.StudentOpts{Section: "A"})

	_, err := s.Fees.Create(ctx, fee.NewFee{
		StudentID: kid.ID, FeeType: "tuition", Amount: 250, DueDate: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	_, err = s.Grades.Create(ctx, "", grade.NewGrade{
		StudentID: kid.ID, SubjectID: math.ID, ExamType: grade.ExamQuiz, MarksObtained: 8, MaxMarks: 10,
	})
	require.NoError(t, err)

	require.NoError(t, s.Students.Delete(ctx, kid.ID))

	_, err = s.Students.Get(ctx, kid.ID)
	assert.Equal(t, student.ErrNotFound, err)
	_, err = s.Users.GetByID(ctx, kid.UserID)
	assert.Equal(t, user.ErrNotFound, err)

	fees, err := s.Fees.Query(ctx, &fee.QueryFilter{StudentIDs: []string{kid.ID}}, nil)
	require.NoError(t, err)
	assert.Empty(t, fees)
	grades, err := s.Grades.Query(ctx, &grade.QueryFilter{StudentIDs: []string{kid.ID}}, nil)
	require.NoError(t, err)
	assert.Empty(t, grades)

	t.Run("class in use", func(t *testing.T) {
		testutil.CreateStudent(t, s, "Other", "other@test.cd", c.ID, testutil.StudentOpts{Section: "A"})
		assert.Error(t, s.Classes.Delete(ctx, c.ID))
	})
}
