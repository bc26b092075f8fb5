package grade_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/subject"
	testutil "github.com/trezcool/shule/tests"
)

func TestLetter(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, "A+"}, {90, "A+"}, {89.99, "A"}, {80, "A"}, {75, "B"}, {60, "C"}, {50, "D"}, {49.9, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, grade.Letter(tt.percentage), "Letter(%v)", tt.percentage)
	}
}

func TestService_Create(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	teacher := testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
	g1 := testutil.CreateClass(t, s, "Grade 1", "2024-2025", "A")
	g2 := testutil.CreateClass(t, s, "Grade 2", "2024-2025", "A")
	math := testutil.CreateSubject(t, s, "Mathematics", "MATH")
	french, err := s.Subjects.Create(ctx, subject.NewSubject{Name: "French", Code: "fr_2", ClassID: g2.ID})
	require.NoError(t, err)
	kid := testutil.CreateStudent(t, s, "Kid", "kid@test.cd", g1.ID, testutil.StudentOpts{Section: "A"})

	g, err := s.Grades.Create(ctx, teacher.UserID, grade.NewGrade{
		StudentID: kid.ID, SubjectID: math.ID, ExamType: "Final", MarksObtained: 45, MaxMarks: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "B", g.Letter)
	assert.Equal(t, grade.ExamFinal, g.ExamType)
	assert.Equal(t, g1.ID, g.ClassID)
	assert.Equal(t, "2024-2025", g.AcademicYear)
	require.NotNil(t, g.GradedBy)
	assert.Equal(t, teacher.UserID, *g.GradedBy)

	tests := []struct {
		name      string
		ng        grade.NewGrade
		wantField string
	}{
		{
			name:      "student of another class",
			ng:        grade.NewGrade{StudentID: kid.ID, SubjectID: math.ID, ClassID: g2.ID, ExamType: "quiz", MaxMarks: 10},
			wantField: "class_id",
		},
		{
			name:      "subject of another class",
			ng:        grade.NewGrade{StudentID: kid.ID, SubjectID: french.ID, ExamType: "quiz", MaxMarks: 10},
			wantField: "subject_id",
		},
		{
			name:      "unknown student",
			ng:        grade.NewGrade{StudentID: math.ID, SubjectID: math.ID, ExamType: "quiz", MaxMarks: 10},
			wantField: "student_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Grades.Create(ctx, "", tt.ng)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
		})
	}

	t.Run("marks above the maximum", func(t *testing.T) {
		_, err := s.Grades.Create(ctx, "", grade.NewGrade{
			StudentID: kid.ID, SubjectID: math.ID, ExamType: "quiz", MarksObtained: 11, MaxMarks: 10,
		})
		assert.Error(t, err)
	})

	t.Run("update recomputes the letter", func(t *testing.T) {
		marks := 59.0
		updated, err := s.Grades.Update(ctx, g.ID, "", grade.UpdateGrade{MarksObtained: &marks})
		require.NoError(t, err)
		assert.Equal(t, "A+", updated.Letter)
		assert.Nil(t, updated.GradedBy)

		marks = 61
		_, err = s.Grades.Update(ctx, g.ID, "", grade.UpdateGrade{MarksObtained: &marks})
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "marks_obtained", vErr.Fields[0].Field)
	})
}
