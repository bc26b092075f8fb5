package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/lms"
)

var contentColumns = []string{
	"id", "title", "description", "class_id", "subject_id", "type", "url", "due_date", "uploaded_by",
	"created_at", "updated_at",
}

type contentRepository struct {
	db *DB
}

var _ lms.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) lms.Repository {
	return &contentRepository{db: db}
}

func contentValues(c lms.Content) map[string]interface{} {
	return map[string]interface{}{
		"title":       c.Title,
		"description": c.Description,
		"class_id":    c.ClassID,
		"subject_id":  nullable(c.SubjectID),
		"type":        c.Type,
		"url":         c.URL,
		"due_date":    c.DueDate,
		"uploaded_by": nullable(c.UploadedBy),
		"updated_at":  c.UpdatedAt,
	}
}

func (repo *contentRepository) CreateContent(ctx context.Context, c lms.Content) (lms.Content, error) {
	c.ID = newID()
	values := contentValues(c)
	values["id"] = c.ID
	values["created_at"] = c.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("lms_contents").SetMap(values), "content", nil); err != nil {
		return lms.Content{}, err
	}
	return c, nil
}

func (repo *contentRepository) QueryContents(ctx context.Context, filter *lms.QueryFilter, ordering []core.DBOrdering) ([]lms.Content, error) {
	q := psql.Select(contentColumns...).From("lms_contents")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where(searchAny(filter.Search, "title", "description"))
		}
		if len(filter.ClassIDs) > 0 {
			q = q.Where(sq.Eq{"class_id": filter.ClassIDs})
		}
		if filter.SubjectID != "" {
			q = q.Where(sq.Eq{"subject_id": filter.SubjectID})
		}
		if filter.Type != "" {
			q = q.Where(sq.Eq{"type": filter.Type})
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	contents := make([]lms.Content, 0)
	if err := repo.db.selectAll(ctx, &contents, orderBy(q, ordering), "content"); err != nil {
		return nil, err
	}
	return contents, nil
}

func (repo *contentRepository) GetContent(ctx context.Context, id string) (lms.Content, error) {
	var c lms.Content
	q := psql.Select(contentColumns...).From("lms_contents").Where(sq.Eq{"id": id})
	err := repo.db.get(ctx, &c, q, "content", lms.ErrNotFound)
	return c, err
}

func (repo *contentRepository) UpdateContent(ctx context.Context, c lms.Content) (lms.Content, error) {
	q := psql.Update("lms_contents").SetMap(contentValues(c)).Where(sq.Eq{"id": c.ID})
	if err := repo.db.exec(ctx, q, "content", lms.ErrNotFound); err != nil {
		return lms.Content{}, err
	}
	return c, nil
}

func (repo *contentRepository) DeleteContent(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("lms_contents").Where(sq.Eq{"id": id}), "content", lms.ErrNotFound)
}
