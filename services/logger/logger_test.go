package logsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/user"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name   string
		log    func(l *Logger)
		level  string
		fields map[string]interface{}
	}{
		{
			name:   "plain",
			log:    func(l *Logger) { l.Info("hello") },
			level:  "info",
			fields: map[string]interface{}{"message": "hello"},
		},
		{
			name:   "error",
			log:    func(l *Logger) { l.Error("boom", errors.New("failed")) },
			level:  "error",
			fields: map[string]interface{}{"message": "boom", "error": "failed"},
		},
		{
			name: "user and extras",
			log: func(l *Logger) {
				l.Warn("careful", user.User{ID: "u1", Role: user.RoleStaff}, map[string]string{"route": "/v1/fees"})
			},
			level:  "warn",
			fields: map[string]interface{}{"user_id": "u1", "user_role": "staff", "route": "/v1/fees"},
		},
		{
			name:   "debug",
			log:    func(l *Logger) { l.Debug("details") },
			level:  "debug",
			fields: map[string]interface{}{"message": "details"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewLogger(&buf, true, false))

			var line map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
			for k, v := range tt.fields {
				assert.Equal(t, v, line[k], k)
			}
		})
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false, false)
	l.Debug("hidden")
	assert.Empty(t, buf.String())
	l.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func personOf(args []interface{}) (*rollbar.Person, bool) {
	for _, arg := range args {
		if ctx, ok := arg.(context.Context); ok {
			return rollbar.PersonFromContext(ctx)
		}
	}
	return nil, false
}

func TestRollbarLogger_prepare(t *testing.T) {
	l := &RollbarLogger{Logger: NewLogger(new(bytes.Buffer), false, false)}

	args := l.prepare("boom", []interface{}{errors.New("failed"), map[string]string{"route": "/v1/fees"}})
	require.Len(t, args, 3)
	assert.Equal(t, "boom", args[0])
	assert.Equal(t, map[string]interface{}{"route": "/v1/fees"}, args[2])
	_, ok := personOf(args)
	assert.False(t, ok)

	t.Run("each item carries its own person", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				usr := user.User{ID: fmt.Sprintf("u%d", i), Name: "User", Email: fmt.Sprintf("u%d@test.cd", i)}
				args := l.prepare("boom", []interface{}{&usr, user.User{ID: "other"}})
				p, ok := personOf(args)
				if assert.True(t, ok) {
					assert.Equal(t, usr.ID, p.Id)
					assert.Equal(t, usr.Email, p.Email)
				}
			}(i)
		}
		wg.Wait()
	})
}
