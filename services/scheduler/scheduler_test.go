package scheduler

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	logsvc "github.com/trezcool/shule/services/logger"
)

type fakeSweeper struct {
	calls []time.Time
	n     int
	err   error
}

func (f *fakeSweeper) MarkOverdue(_ context.Context, now time.Time) (int, error) {
	f.calls = append(f.calls, now)
	return f.n, f.err
}

func TestScheduler_SweepFees(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		sweeper *fakeSweeper
		logged  string
	}{
		{name: "marked", sweeper: &fakeSweeper{n: 2}, logged: "2 fee(s) marked overdue"},
		{name: "nothing to mark", sweeper: &fakeSweeper{}, logged: ""},
		{name: "failure", sweeper: &fakeSweeper{err: errors.New("db down")}, logged: "db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := New(core.NewTestConfig(), logsvc.NewLogger(&buf, false, false))
			s.NowFunc = func() time.Time { return now }

			s.SweepFees(tt.sweeper)

			require.Len(t, tt.sweeper.calls, 1)
			assert.Equal(t, now, tt.sweeper.calls[0])
			if tt.logged == "" {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), tt.logged)
			}
		})
	}
}

func TestScheduler_AddFeeOverdueSweep(t *testing.T) {
	s := New(core.NewTestConfig(), logsvc.NewLogger(nil, false, false))

	assert.Error(t, s.AddFeeOverdueSweep("not a spec", &fakeSweeper{}))
	assert.Equal(t, 0, s.Jobs())

	require.NoError(t, s.AddFeeOverdueSweep("@daily", &fakeSweeper{}))
	assert.Equal(t, 1, s.Jobs())

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
