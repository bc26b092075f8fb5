package class_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/unique"
	testutil "github.com/trezcool/shule/tests"
)

func TestService_Create(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	teacher := testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
	c, err := s.Classes.Create(ctx, class.NewClass{
		Name: "Grade 1", AcademicYear: "2024-2025", Sections: []string{" A ", "B"}, ClassTeacherID: teacher.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, c.Sections)
	assert.True(t, c.HasSection("B"))
	assert.False(t, c.HasSection(""))

	tests := []struct {
		name    string
		nc      class.NewClass
		wantErr bool
	}{
		{name: "same name same year", nc: class.NewClass{Name: "Grade 1", AcademicYear: "2024-2025"}, wantErr: true},
		{name: "same name next year", nc: class.NewClass{Name: "Grade 1", AcademicYear: "2025-2026"}},
		{name: "duplicate sections", nc: class.NewClass{Name: "Grade 2", AcademicYear: "2024-2025", Sections: []string{"A", "A"}}, wantErr: true},
		{name: "unknown teacher", nc: class.NewClass{Name: "Grade 3", AcademicYear: "2024-2025", ClassTeacherID: c.ID}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Classes.Create(ctx, tt.nc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err = s.Classes.Create(ctx, class.NewClass{Name: "Grade 1", AcademicYear: "2024-2025"})
	assert.True(t, unique.IsViolation(err, "name"))
}
