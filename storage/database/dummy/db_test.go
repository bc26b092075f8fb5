package dummydb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/ident"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

func TestDB_WithinTx(t *testing.T) {
	db := dummydb.Open(unique.DefaultPolicy())
	users := dummydb.NewUserRepository(db)
	counter := dummydb.NewCounter(db)
	ctx := context.Background()

	now := time.Now().UTC()
	kept, err := users.CreateUser(ctx, user.User{Name: "Kept", Email: "kept@test.cd", Role: user.RoleAdmin, CreatedAt: now})
	require.NoError(t, err)

	boom := errors.New("boom")
	var created user.User
	err = db.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := counter.Next(ctx, ident.KindEmployee, 2024); err != nil {
			return err
		}
		if created, err = users.CreateUser(ctx, user.User{Name: "Tmp", Email: "tmp@test.cd", Role: user.RoleAdmin}); err != nil {
			return err
		}
		kept.Name = "Renamed"
		if _, err := users.UpdateUser(ctx, kept); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return db.WithinTx(ctx, func(ctx context.Context) error {
			if err := users.DeleteUsers(ctx, kept.ID); err != nil {
				return err
			}
			return boom
		})
	})
	assert.Equal(t, boom, err)

	_, err = users.GetUser(ctx, user.GetFilter{ID: created.ID})
	assert.Equal(t, user.ErrNotFound, err)
	got, err := users.GetUser(ctx, user.GetFilter{ID: kept.ID})
	require.NoError(t, err)
	assert.Equal(t, "Kept", got.Name)
	cur, err := counter.Current(ctx, ident.KindEmployee, 2024)
	require.NoError(t, err)
	assert.Zero(t, cur)
}

func TestDB_uniqueness(t *testing.T) {
	db := dummydb.Open(unique.DefaultPolicy())
	users := dummydb.NewUserRepository(db)
	checker := dummydb.NewUniqueChecker(db)
	ctx := context.Background()

	usr, err := users.CreateUser(ctx, user.User{Name: "A", Email: "a@test.cd", Role: user.RoleAdmin})
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, user.User{Name: "B", Email: "A@TEST.cd", Role: user.RoleAdmin})
	assert.True(t, unique.IsViolation(err, "email"))

	exists, err := checker.Exists(ctx, unique.EntityUser, map[string]string{"email": "a@test.cd"}, "")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = checker.Exists(ctx, unique.EntityUser, map[string]string{"email": "a@test.cd"}, usr.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDB_identifierCollisionRetried(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()
	s.SetYear(2024)

	first := testutil.CreateStaff(t, s, "First", "first@test.cd")

	// an identifier issued elsewhere collides with the next one: the generator skips past it
	_, err := dummydb.NewStaffRepository(s.DB).CreateStaff(ctx, staff.Staff{
		UserID: first.UserID, EmployeeID: "EMP20240002",
	})
	require.NoError(t, err)

	second := testutil.CreateStaff(t, s, "Second", "second@test.cd")
	assert.Equal(t, "EMP20240003", second.EmployeeID)

	members, err := s.Staff.Query(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, members, 3)
	_, err = s.Users.GetByEmail(ctx, "second@test.cd")
	assert.NoError(t, err)
}

func TestFeeRepository_UpdateFee(t *testing.T) {
	db := dummydb.Open(unique.DefaultPolicy())
	fees := dummydb.NewFeeRepository(db)
	ctx := context.Background()

	f, err := fees.CreateFee(ctx, fee.Fee{StudentID: "kid", FeeType: "tuition", Amount: 300, Status: fee.StatusPending})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = fees.UpdateFee(ctx, f.ID, func(f *fee.Fee) error {
		f.PaidAmount = 100
		return boom
	})
	assert.Equal(t, boom, err)
	got, err := fees.GetFee(ctx, f.ID)
	require.NoError(t, err)
	assert.Zero(t, got.PaidAmount)

	err = db.WithinTx(ctx, func(ctx context.Context) error {
		paid, err := fees.UpdateFee(ctx, f.ID, func(f *fee.Fee) error {
			f.PaidAmount = 100
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 100.0, paid.PaidAmount)
		return boom
	})
	assert.Equal(t, boom, err)
	got, err = fees.GetFee(ctx, f.ID)
	require.NoError(t, err)
	assert.Zero(t, got.PaidAmount)

	_, err = fees.UpdateFee(ctx, "nope", func(*fee.Fee) error { return nil })
	assert.Equal(t, fee.ErrNotFound, err)
}
