package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/unique"
	testutil "github.com/trezcool/shule/tests"
)

func day(d int) time.Time {
	return time.Date(2024, time.October, d, 9, 30, 0, 0, time.UTC)
}

func TestService(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	teacher := testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
	c := testutil.CreateClass(t, s, "Grade 1", "2024-2025", "A", "B")
	ann := testutil.CreateStudent(t, s, "Ann", "ann@test.cd", c.ID, testutil.StudentOpts{Section: "A"})
	ben := testutil.CreateStudent(t, s, "Ben", "ben@test.cd", c.ID, testutil.StudentOpts{Section: "A"})
	cid := testutil.CreateStudent(t, s, "Cid", "cid@test.cd", c.ID, testutil.StudentOpts{Section: "B"})

	monday, err := s.Attendance.Create(ctx, teacher.UserID, attendance.NewAttendance{
		ClassID: c.ID,
		Section: "A",
		Date:    day(7),
		Entries: []attendance.Entry{
			{StudentID: ann.ID, Status: "Present"},
			{StudentID: ben.ID, Status: attendance.StatusAbsent, Remarks: "sick"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.October, 7, 0, 0, 0, 0, time.UTC), monday.Date)
	assert.Equal(t, teacher.UserID, *monday.TakenBy)

	tests := []struct {
		name      string
		na        attendance.NewAttendance
		wantField string
	}{
		{
			name:      "second sheet the same day",
			na:        attendance.NewAttendance{ClassID: c.ID, Section: "A", Date: day(7), Entries: []attendance.Entry{{StudentID: ann.ID, Status: "late"}}},
			wantField: "date",
		},
		{
			name:      "student of another section",
			na:        attendance.NewAttendance{ClassID: c.ID, Section: "A", Date: day(8), Entries: []attendance.Entry{{StudentID: cid.ID, Status: "present"}}},
			wantField: "entries",
		},
		{
			name: "student twice",
			na: attendance.NewAttendance{ClassID: c.ID, Section: "A", Date: day(8), Entries: []attendance.Entry{
				{StudentID: ann.ID, Status: "present"}, {StudentID: ann.ID, Status: "late"},
			}},
			wantField: "entries",
		},
		{
			name:      "unknown section",
			na:        attendance.NewAttendance{ClassID: c.ID, Section: "Z", Date: day(8), Entries: []attendance.Entry{{StudentID: ann.ID, Status: "present"}}},
			wantField: "section",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Attendance.Create(ctx, "", tt.na)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
		})
	}
	_, err = s.Attendance.Create(ctx, "", attendance.NewAttendance{
		ClassID: c.ID, Section: "A", Date: day(7), Entries: []attendance.Entry{{StudentID: ann.ID, Status: "late"}},
	})
	assert.True(t, unique.IsViolation(err, "date"))

	_, err = s.Attendance.Create(ctx, "", attendance.NewAttendance{
		ClassID: c.ID, Section: "B", Date: day(7), Entries: []attendance.Entry{{StudentID: cid.ID, Status: "present"}},
	})
	require.NoError(t, err, "other section, same day")

	_, err = s.Attendance.Create(ctx, "", attendance.NewAttendance{
		ClassID: c.ID, Section: "A", Date: day(8), Entries: []attendance.Entry{
			{StudentID: ann.ID, Status: attendance.StatusLate}, {StudentID: ben.ID, Status: attendance.StatusPresent},
		},
	})
	require.NoError(t, err)

	t.Run("summary", func(t *testing.T) {
		sum, err := s.Attendance.Summary(ctx, ben.ID)
		require.NoError(t, err)
		assert.Equal(t, attendance.Summary{StudentID: ben.ID, Total: 2, Present: 1, Absent: 1, Percentage: 50}, sum)

		sum, err = s.Attendance.Summary(ctx, ann.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, sum.Percentage)
		assert.Equal(t, 1, sum.Late)
	})

	t.Run("update replaces the entries", func(t *testing.T) {
		updated, err := s.Attendance.Update(ctx, monday.ID, "", attendance.UpdateAttendance{Entries: []attendance.Entry{
			{StudentID: ben.ID, Status: attendance.StatusExcused},
		}})
		require.NoError(t, err)
		assert.Len(t, updated.Entries, 1)
		assert.Nil(t, updated.TakenBy)

		sum, err := s.Attendance.Summary(ctx, ann.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Total)
	})

	t.Run("sheets of a student", func(t *testing.T) {
		sheets, err := s.Attendance.Query(ctx, &attendance.QueryFilter{StudentID: ben.ID}, nil)
		require.NoError(t, err)
		assert.Len(t, sheets, 2)
	})
}
