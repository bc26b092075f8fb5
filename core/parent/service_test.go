package parent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

func TestService_Create(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	p, err := s.Parents.Create(ctx, parent.NewParent{
		NewUser:    user.NewUser{Name: " Neema ", Email: "NEEMA@test.cd", Password: testutil.Password, PasswordConfirm: testutil.Password},
		Occupation: " Nurse ",
	})
	require.NoError(t, err)
	require.NotNil(t, p.User)
	assert.Equal(t, user.RoleParent, p.User.Role)
	assert.Equal(t, "neema@test.cd", p.User.Email)
	assert.Equal(t, "Nurse", p.Occupation)
	assert.Equal(t, parent.RelationshipGuardian, p.Relationship)
	assert.Contains(t, s.Published.Topics(), core.TopicParentCreated)
	assert.Len(t, s.Mail.Sent(), 1)

	t.Run("invalid relationship", func(t *testing.T) {
		_, err := s.Parents.Create(ctx, parent.NewParent{
			NewUser:      user.NewUser{Name: "Zawadi", Email: "zawadi@test.cd", Password: testutil.Password, PasswordConfirm: testutil.Password},
			Relationship: "uncle",
		})
		require.Error(t, err)
		_, err = s.Users.GetByEmail(ctx, "zawadi@test.cd")
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := s.Parents.Create(ctx, parent.NewParent{
			NewUser: user.NewUser{Name: "Neema bis", Email: "neema@test.cd", Password: testutil.Password, PasswordConfirm: testutil.Password},
		})
		require.Error(t, err)
		assert.True(t, unique.IsViolation(err, "email"))
	})
}

func TestService_Query(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	neema := testutil.CreateParent(t, s, "Neema", "neema@test.cd")
	testutil.CreateParent(t, s, "Jabari", "jabari@test.cd")

	parents, err := s.Parents.Query(ctx, &parent.QueryFilter{Search: "neema"}, nil)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, neema.ID, parents[0].ID)
	require.NotNil(t, parents[0].User)
	assert.Equal(t, "Neema", parents[0].User.Name)

	parents, err = s.Parents.Query(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, parents, 2)

	_, err = s.Parents.Query(ctx, nil, []core.DBOrdering{{Field: "salary"}})
	assert.Error(t, err)

	got, err := s.Parents.GetByUser(ctx, neema.UserID)
	require.NoError(t, err)
	assert.Equal(t, neema.ID, got.ID)

	ok, err := s.Parents.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_UpdateDelete(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	p := testutil.CreateParent(t, s, "Neema", "neema@test.cd")
	class := testutil.CreateClass(t, s, "Form 1", "2024-2025", "A")
	child := testutil.CreateStudent(t, s, "Baraka", "baraka@test.cd", class.ID, testutil.StudentOpts{Section: "A", RollNumber: "1", ParentID: p.ID})

	updated, err := s.Parents.Update(ctx, p.ID, parent.UpdateParent{
		UpdateUser:   user.UpdateUser{Name: "Neema W.", Role: user.RoleAdmin},
		Relationship: "Father",
	})
	require.NoError(t, err)
	assert.Equal(t, parent.RelationshipFather, updated.Relationship)
	require.NotNil(t, updated.User)
	assert.Equal(t, "Neema W.", updated.User.Name)
	assert.Equal(t, user.RoleParent, updated.User.Role)

	require.NoError(t, s.Parents.Delete(ctx, p.ID))

	_, err = s.Parents.Get(ctx, p.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = s.Users.GetByEmail(ctx, "neema@test.cd")
	assert.True(t, core.IsNotFound(err))

	kept, err := s.Students.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.ParentID)

	assert.True(t, core.IsNotFound(s.Parents.Delete(ctx, p.ID)))
}
