package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/ident"
	"github.com/trezcool/shule/core/user"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Stack, *bytes.Buffer) {
	s := testutil.NewStack(t)
	out := new(bytes.Buffer)

	return &commandLine{
		out: out,
		migrateFunc: func(context.Context, string, ...string) error {
			return nil
		},
		loadFunc: func() (services, error) {
			return services{users: s.Users, staff: s.Staff, students: s.Students, counter: s.Counter}, nil
		},
		nowFunc: func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) },
	}, s, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		assert.EqualError(t, err, tt.wantErrStr)
	default:
		assert.NoError(t, err)
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(int) ([]byte, error) {
		if pwd == "" {
			return nil, nil
		}
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	var ran []string
	cli.migrateFunc = func(_ context.Context, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_hostels", "sql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
	assert.Equal(t, []string{"up", "up-to", "down-to", "status", "create"}, ran)
}

func Test_commandLine_usage(t *testing.T) {
	cli, _, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "sequences: no subcommand", args: []string{"sequences"}, wantErr: errHelp},
		{name: "sequences: unknown subcommand", args: []string{"sequences", "lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, s, out := setup(t)
	ctx := context.Background()

	former := testutil.CreateUser(t, s, "Former Head", "head@test.cd", user.RoleStaff, false)

	t.Run("no args", func(t *testing.T) {
		mockPassword(testutil.Password)
		assert.Equal(t, errHelp, cli.run([]string{"admin", "adduser"}))
	})

	t.Run("no password", func(t *testing.T) {
		mockPassword("")
		err := cli.run([]string{"admin", "adduser", "-email", "new@test.cd", "-name", "New"})
		assert.Equal(t, errHelp, err)
	})

	t.Run("weak password", func(t *testing.T) {
		mockPassword("password")
		err := cli.run([]string{"admin", "adduser", "-email", "new@test.cd", "-name", "New"})
		require.Error(t, err)
		_, err = s.Users.GetByEmail(ctx, "new@test.cd")
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("create admin", func(t *testing.T) {
		mockPassword(testutil.Password)
		out.Reset()
		err := cli.run([]string{"admin", "adduser", "-email", "New@Test.cd", "-name", "New"})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "created admin new@test.cd")

		usr, err := s.Users.GetByEmail(ctx, "new@test.cd")
		require.NoError(t, err)
		assert.True(t, usr.IsAdmin())
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword(testutil.Password))
	})

	t.Run("re-activate existing user", func(t *testing.T) {
		mockPassword("lmao")
		out.Reset()
		err := cli.run([]string{"admin", "adduser", "-email", former.Email, "-name", "Head", "-role", user.RoleAdmin})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "updated admin "+former.Email)

		usr, err := s.Users.GetByID(ctx, former.ID)
		require.NoError(t, err)
		assert.Equal(t, "Head", usr.Name)
		assert.True(t, usr.IsAdmin())
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword("lmao"))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, s, _ := setup(t)

	usr := testutil.CreateUser(t, s, "User", "awe@test.cd", user.RoleParent, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lol"}},
		{name: "reset with email in any case", args: []string{"resetpassword", "-email", "AWE@test.cd"}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pwd string
			if e, ok := tt.extra.(extra); ok {
				pwd = e.pwd
			}
			mockPassword(pwd)

			err := cli.run(append([]string{"admin"}, tt.args...))
			tt.check(t, err)
			if err != nil {
				return
			}
			refreshedUsr, err := s.Users.GetByID(context.Background(), usr.ID)
			require.NoError(t, err)
			assert.NoError(t, refreshedUsr.CheckPassword(pwd), "failed to update new password")
		})
	}
}

func Test_commandLine_sequences(t *testing.T) {
	cli, s, out := setup(t)
	ctx := context.Background()

	s.SetYear(2024)
	testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
	testutil.CreateStaff(t, s, "Bursar", "bursar@test.cd")
	class := testutil.CreateClass(t, s, "Grade 1", "2023-2024", "A")
	testutil.CreateStudent(t, s, "Kid", "kid@test.cd", class.ID, testutil.StudentOpts{Section: "A"})

	t.Run("show", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "sequences", "show"}))
		assert.Equal(t, "EMP2024: 2\nADM2024: 1\n", out.String())
	})

	t.Run("show another year", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "sequences", "show", "-year", "2023"}))
		assert.Equal(t, "EMP2023: 0\nADM2023: 0\n", out.String())
	})

	t.Run("sync a fresh counter", func(t *testing.T) {
		fresh := dummydb.NewCounter(dummydb.Open(s.Policy))
		cli.loadFunc = func() (services, error) {
			return services{users: s.Users, staff: s.Staff, students: s.Students, counter: fresh}, nil
		}
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "sequences", "sync"}))
		assert.Equal(t, "synced 3 identifiers\n", out.String())

		n, err := fresh.Next(ctx, ident.KindEmployee, 2024)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
		n, err = fresh.Next(ctx, ident.KindAdmission, 2024)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})
}
