package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/event"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

func TestService(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, s, "Admin", "admin@test.cd")
	at := func(day, hour int) time.Time { return time.Date(2024, time.November, day, hour, 0, 0, 0, time.UTC) }

	sports, err := s.Events.Create(ctx, admin.ID, event.NewEvent{
		Title: "Sports day", StartsAt: at(8, 9), EndsAt: at(8, 16), Location: "Main field",
	})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, *sports.CreatedBy)

	meeting, err := s.Events.Create(ctx, admin.ID, event.NewEvent{
		Title: "Staff meeting", StartsAt: at(12, 15), EndsAt: at(12, 16), Audience: []string{"STAFF"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleStaff}, meeting.Audience)

	t.Run("ends before it starts", func(t *testing.T) {
		_, err := s.Events.Create(ctx, admin.ID, event.NewEvent{Title: "Oops", StartsAt: at(8, 9), EndsAt: at(8, 8)})
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "ends_at", vErr.Fields[0].Field)

		_, err = s.Events.Update(ctx, sports.ID, event.UpdateEvent{EndsAt: at(7, 9)})
		assert.ErrorAs(t, err, &vErr)
	})

	tests := []struct {
		name   string
		filter event.QueryFilter
		want   []string
	}{
		{name: "parents", filter: event.QueryFilter{Role: user.RoleParent}, want: []string{sports.ID}},
		{name: "staff", filter: event.QueryFilter{Role: user.RoleStaff}, want: []string{sports.ID, meeting.ID}},
		{name: "search location", filter: event.QueryFilter{Search: "FIELD"}, want: []string{sports.ID}},
		{name: "from", filter: event.QueryFilter{From: at(9, 0)}, want: []string{meeting.ID}},
		{name: "to", filter: event.QueryFilter{To: at(9, 0)}, want: []string{sports.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := s.Events.Query(ctx, &tt.filter, nil)
			require.NoError(t, err)
			ids := make([]string, 0, len(events))
			for _, e := range events {
				ids = append(ids, e.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}
