package lms_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/lms"
	testutil "github.com/trezcool/shule/tests"
)

func TestService(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	teacher := testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
	g1 := testutil.CreateClass(t, s, "Grade 1", "2024-2025")
	g2 := testutil.CreateClass(t, s, "Grade 2", "2024-2025")
	math := testutil.CreateSubject(t, s, "Mathematics", "MATH")
	due := time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC)

	note, err := s.Contents.Create(ctx, teacher.UserID, lms.NewContent{
		Title: "Fractions", Description: "Chapter 3 summary", ClassID: g1.ID, SubjectID: math.ID, Type: "Note",
	})
	require.NoError(t, err)
	assert.Equal(t, lms.TypeNote, note.Type)
	assert.Equal(t, teacher.UserID, *note.UploadedBy)

	homework, err := s.Contents.Create(ctx, teacher.UserID, lms.NewContent{
		Title: "Homework 3", ClassID: g2.ID, Type: lms.TypeAssignment, DueDate: &due,
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		nc        lms.NewContent
		wantField string
	}{
		{name: "video without url", nc: lms.NewContent{Title: "Video", ClassID: g1.ID, Type: lms.TypeVideo}, wantField: "url"},
		{name: "assignment without due date", nc: lms.NewContent{Title: "HW", ClassID: g1.ID, Type: lms.TypeAssignment}, wantField: "due_date"},
		{name: "unknown class", nc: lms.NewContent{Title: "Note", ClassID: math.ID, Type: lms.TypeNote}, wantField: "class_id"},
		{name: "unknown subject", nc: lms.NewContent{Title: "Note", ClassID: g1.ID, SubjectID: g1.ID, Type: lms.TypeNote}, wantField: "subject_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Contents.Create(ctx, "", tt.nc)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
		})
	}

	t.Run("query", func(t *testing.T) {
		contents, err := s.Contents.Query(ctx, &lms.QueryFilter{ClassIDs: []string{g1.ID, g2.ID}}, nil)
		require.NoError(t, err)
		assert.Len(t, contents, 2)

		contents, err = s.Contents.Query(ctx, &lms.QueryFilter{Search: "chapter"}, nil)
		require.NoError(t, err)
		require.Len(t, contents, 1)
		assert.Equal(t, note.ID, contents[0].ID)

		contents, err = s.Contents.Query(ctx, &lms.QueryFilter{Type: "assignment"}, nil)
		require.NoError(t, err)
		require.Len(t, contents, 1)
		assert.Equal(t, homework.ID, contents[0].ID)
	})

	t.Run("deleting the class removes its contents", func(t *testing.T) {
		require.NoError(t, s.Classes.Delete(ctx, g2.ID))
		_, err := s.Contents.Get(ctx, homework.ID)
		assert.Equal(t, lms.ErrNotFound, err)
	})
}
