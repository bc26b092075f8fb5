package sqlxrepos_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/ident"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
)

// openTestDB connects to TEST_DATABASE_URL and migrates it up.
func openTestDB(t *testing.T) *sqlxrepos.DB {
	rawURL := os.Getenv("TEST_DATABASE_URL")
	if rawURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.OpenURL(rawURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db.DB))
	return sqlxrepos.NewDB(db, unique.DefaultPolicy())
}

func newUserService(t *testing.T, db *sqlxrepos.DB) *user.Service {
	conf := core.NewTestConfig()
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	mail := emailsvc.NewOutbox(conf, logsvc.NewLogger(io.Discard, false, false))
	return user.NewService(sqlxrepos.NewUserRepository(db), sqlxrepos.NewUniqueChecker(db), unique.DefaultPolicy(), validate, mail, conf)
}

func TestUsers(t *testing.T) {
	db := openTestDB(t)
	users := newUserService(t, db)
	ctx := context.Background()

	const pwd = "Xq7#mVp2Lz"
	email := uuid.NewString()[:8] + "@test.cd"
	usr, err := users.Create(ctx, user.NewUser{Name: "Awe", Email: email, Role: user.RoleParent, Password: pwd, PasswordConfirm: pwd})
	require.NoError(t, err)
	t.Cleanup(func() { _ = users.Delete(ctx, usr.ID) })

	got, err := users.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	assert.NoError(t, got.CheckPassword(pwd))

	_, err = users.GetByID(ctx, "not-a-uuid")
	assert.Equal(t, user.ErrNotFound, err)

	t.Run("constraint maps to the uniqueness rule", func(t *testing.T) {
		repo := sqlxrepos.NewUserRepository(db)
		dup := usr
		dup.CreatedAt, dup.UpdatedAt = time.Now().UTC(), time.Now().UTC()
		_, err := repo.CreateUser(ctx, dup)
		assert.True(t, unique.IsViolation(err, "email"))
	})

	t.Run("failed transaction leaves nothing behind", func(t *testing.T) {
		other := uuid.NewString()[:8] + "@test.cd"
		boom := errors.New("boom")
		err := db.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := users.Create(ctx, user.NewUser{Name: "Tmp", Email: other, Role: user.RoleParent, Password: pwd, PasswordConfirm: pwd}); err != nil {
				return err
			}
			return boom
		})
		assert.Equal(t, boom, err)
		_, err = users.GetByEmail(ctx, other)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestCounter(t *testing.T) {
	db := openTestDB(t)
	counter := sqlxrepos.NewCounter(db)
	ctx := context.Background()
	year := 3000 + time.Now().Nanosecond()%1000

	n, err := counter.Next(ctx, ident.KindEmployee, year)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	err = db.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := counter.Next(ctx, ident.KindEmployee, year); err != nil {
			return err
		}
		return errors.New("rolled back")
	})
	require.Error(t, err)

	require.NoError(t, counter.Seed(ctx, ident.KindEmployee, year, 7))
	require.NoError(t, counter.Seed(ctx, ident.KindEmployee, year, 3))
	cur, err := counter.Current(ctx, ident.KindEmployee, year)
	require.NoError(t, err)
	assert.EqualValues(t, 7, cur)
}
