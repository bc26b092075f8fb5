package subject_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/subject"
	"github.com/trezcool/shule/core/unique"
	testutil "github.com/trezcool/shule/tests"
)

func TestService_Create(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	math, err := s.Subjects.Create(ctx, subject.NewSubject{Name: "Mathematics", Code: " math101 "})
	require.NoError(t, err)
	assert.Equal(t, "MATH101", math.Code)
	assert.Equal(t, subject.TypeTheory, math.Type)

	_, err = s.Subjects.Create(ctx, subject.NewSubject{Name: "Maths again", Code: "Math101"})
	assert.True(t, unique.IsViolation(err, "code"))

	t.Run("unknown teacher", func(t *testing.T) {
		_, err := s.Subjects.Create(ctx, subject.NewSubject{
			Name: "Physics", Code: "PHY", TeacherID: "0b8c5f5e-8f5a-4a43-9a0e-2f1c8e1c9d11",
		})
		assert.Error(t, err)
	})

	t.Run("teacher and class", func(t *testing.T) {
		teacher := testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
		c := testutil.CreateClass(t, s, "Grade 1", "2024-2025")
		physics, err := s.Subjects.Create(ctx, subject.NewSubject{
			Name: "Physics", Code: "PHY", TeacherID: teacher.ID, ClassID: c.ID, Type: "Practical",
		})
		require.NoError(t, err)
		assert.Equal(t, teacher.ID, *physics.TeacherID)
		assert.Equal(t, c.ID, *physics.ClassID)
		assert.Equal(t, subject.TypePractical, physics.Type)

		require.NoError(t, s.Staff.Delete(ctx, teacher.ID))
		physics, err = s.Subjects.Get(ctx, physics.ID)
		require.NoError(t, err)
		assert.Nil(t, physics.TeacherID)
	})
}
