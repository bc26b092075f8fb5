package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/event"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/timetable"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

func TestService_For(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	monday := time.Date(2024, time.October, 7, 8, 0, 0, 0, time.UTC)
	s.Dashboard.NowFunc = func() time.Time { return monday }
	s.Fees.NowFunc = func() time.Time { return monday }

	admin := testutil.CreateAdmin(t, s, "Admin", "admin@test.cd")
	teacher := testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
	mum := testutil.CreateParent(t, s, "Mum", "mum@test.cd")
	c := testutil.CreateClass(t, s, "Grade 1", "2024-2025", "A", "B")
	math := testutil.CreateSubject(t, s, "Mathematics", "MATH")
	kid := testutil.CreateStudent(t, s, "Kid", "kid@test.cd", c.ID, testutil.StudentOpts{Section: "A", ParentID: mum.ID})

	_, err := s.Fees.Create(ctx, fee.NewFee{StudentID: kid.ID, FeeType: "tuition", Amount: 300, DueDate: monday.AddDate(0, 1, 0)})
	require.NoError(t, err)
	late, err := s.Fees.Create(ctx, fee.NewFee{StudentID: kid.ID, FeeType: "transport", Amount: 50, DueDate: monday.AddDate(0, 0, -7)})
	require.NoError(t, err)
	_, err = s.Fees.RecordPayment(ctx, late.ID, fee.Payment{Amount: 20, Method: "cash"})
	require.NoError(t, err)

	_, err = s.Timetables.Create(ctx, timetable.NewTimetable{ClassID: c.ID, Section: "A", Day: int(time.Monday), Periods: []timetable.Period{
		{Start: "08:00", End: "09:00", SubjectID: math.ID, TeacherID: teacher.ID},
		{Start: "09:00", End: "10:00"},
	}})
	require.NoError(t, err)
	_, err = s.Timetables.Create(ctx, timetable.NewTimetable{ClassID: c.ID, Section: "B", Day: int(time.Monday), Periods: []timetable.Period{
		{Start: "11:00", End: "12:00"},
	}})
	require.NoError(t, err)

	_, err = s.Events.Create(ctx, admin.ID, event.NewEvent{Title: "Past", StartsAt: monday.AddDate(0, 0, -3), EndsAt: monday.AddDate(0, 0, -3)})
	require.NoError(t, err)
	openDay, err := s.Events.Create(ctx, admin.ID, event.NewEvent{Title: "Open day", StartsAt: monday.AddDate(0, 0, 4), EndsAt: monday.AddDate(0, 0, 4)})
	require.NoError(t, err)
	_, err = s.Events.Create(ctx, admin.ID, event.NewEvent{
		Title: "Staff meeting", StartsAt: monday.AddDate(0, 0, 1), EndsAt: monday.AddDate(0, 0, 1), Audience: []string{user.RoleStaff},
	})
	require.NoError(t, err)
	_, err = s.Notifications.Create(ctx, admin.ID, notification.NewNotification{Title: "Hi", Message: "Welcome", Audience: []string{user.RoleParent}})
	require.NoError(t, err)

	t.Run("admin", func(t *testing.T) {
		d, err := s.Dashboard.For(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{
			"users": 4, user.RoleAdmin: 1, user.RoleStaff: 1, user.RoleParent: 1, user.RoleStudent: 1, "classes": 1, "subjects": 1,
		}, d.Counts)
		require.NotNil(t, d.Fees)
		assert.Equal(t, 350.0, d.Fees.Billed)
		assert.Equal(t, 20.0, d.Fees.Paid)
		assert.Equal(t, 330.0, d.Fees.Outstanding)
		assert.Equal(t, 1, d.Fees.Overdue)
		assert.Len(t, d.UpcomingEvents, 1)
		assert.Zero(t, d.UnreadNotifications)
	})

	t.Run("staff", func(t *testing.T) {
		d, err := s.Dashboard.For(ctx, *teacher.User)
		require.NoError(t, err)
		require.Len(t, d.Today, 1)
		assert.Equal(t, "08:00", d.Today[0].Period.Start)
		assert.Equal(t, "A", d.Today[0].Section)
		assert.Len(t, d.UpcomingEvents, 2)
	})

	t.Run("parent", func(t *testing.T) {
		d, err := s.Dashboard.For(ctx, *mum.User)
		require.NoError(t, err)
		require.Len(t, d.Children, 1)
		assert.Equal(t, kid.ID, d.Children[0].Student.ID)
		assert.Equal(t, 330.0, d.Children[0].Fees.Outstanding)
		require.Len(t, d.UpcomingEvents, 1)
		assert.Equal(t, openDay.ID, d.UpcomingEvents[0].ID)
		assert.Equal(t, 1, d.UnreadNotifications)
	})

	t.Run("student", func(t *testing.T) {
		d, err := s.Dashboard.For(ctx, *kid.User)
		require.NoError(t, err)
		require.NotNil(t, d.Student)
		assert.Equal(t, 1, d.Student.Fees.Overdue)
		assert.Len(t, d.Today, 2)
		assert.Nil(t, d.Children)
	})
}
