package timetable_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/timetable"
	"github.com/trezcool/shule/core/unique"
	testutil "github.com/trezcool/shule/tests"
)

func TestService(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	teacher := testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
	c := testutil.CreateClass(t, s, "Grade 1", "2024-2025", "A", "B")
	math := testutil.CreateSubject(t, s, "Mathematics", "MATH")

	monday, err := s.Timetables.Create(ctx, timetable.NewTimetable{
		ClassID: c.ID,
		Section: "A",
		Day:     1,
		Periods: []timetable.Period{
			{Start: "09:00", End: "10:00", SubjectID: math.ID, TeacherID: teacher.ID},
			{Start: "08:00", End: "09:00", Room: " 12 "},
		},
	})
	require.NoError(t, err)
	require.Len(t, monday.Periods, 2)
	assert.Equal(t, "08:00", monday.Periods[0].Start, "periods are sorted")
	assert.Equal(t, "12", monday.Periods[0].Room)

	tests := []struct {
		name      string
		nt        timetable.NewTimetable
		wantField string
	}{
		{
			name:      "second timetable for the day",
			nt:        timetable.NewTimetable{ClassID: c.ID, Section: "A", Day: 1, Periods: []timetable.Period{{Start: "13:00", End: "14:00"}}},
			wantField: "day",
		},
		{
			name:      "ends before it starts",
			nt:        timetable.NewTimetable{ClassID: c.ID, Section: "A", Day: 2, Periods: []timetable.Period{{Start: "10:00", End: "09:00"}}},
			wantField: "periods[0]",
		},
		{
			name: "overlapping periods",
			nt: timetable.NewTimetable{ClassID: c.ID, Section: "A", Day: 2, Periods: []timetable.Period{
				{Start: "08:00", End: "09:30"}, {Start: "09:00", End: "10:00"},
			}},
			wantField: "periods[1]",
		},
		{
			name: "teacher booked in another section",
			nt: timetable.NewTimetable{ClassID: c.ID, Section: "B", Day: 1, Periods: []timetable.Period{
				{Start: "09:30", End: "10:30", TeacherID: teacher.ID},
			}},
			wantField: "periods[0]",
		},
		{
			name: "unknown subject",
			nt: timetable.NewTimetable{ClassID: c.ID, Section: "A", Day: 3, Periods: []timetable.Period{
				{Start: "08:00", End: "09:00", SubjectID: c.ID},
			}},
			wantField: "periods[0].subject_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Timetables.Create(ctx, tt.nt)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
		})
	}
	_, err = s.Timetables.Create(ctx, timetable.NewTimetable{
		ClassID: c.ID, Section: "A", Day: 1, Periods: []timetable.Period{{Start: "13:00", End: "14:00"}},
	})
	assert.True(t, unique.IsViolation(err, "day"))

	t.Run("back to back in another section", func(t *testing.T) {
		_, err := s.Timetables.Create(ctx, timetable.NewTimetable{ClassID: c.ID, Section: "B", Day: 1, Periods: []timetable.Period{
			{Start: "10:00", End: "11:00", TeacherID: teacher.ID},
		}})
		require.NoError(t, err)

		booked, err := s.Timetables.Query(ctx, &timetable.QueryFilter{TeacherID: teacher.ID}, nil)
		require.NoError(t, err)
		assert.Len(t, booked, 2)
	})

	t.Run("update keeps its own bookings", func(t *testing.T) {
		updated, err := s.Timetables.Update(ctx, monday.ID, timetable.UpdateTimetable{Periods: []timetable.Period{
			{Start: "09:00", End: "10:00", TeacherID: teacher.ID},
		}})
		require.NoError(t, err)
		assert.Len(t, updated.Periods, 1)
	})
}
