// Package lms manages the learning content shared with a class: notes, assignments, videos and links.
package lms

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/subject"
)

var (
	ErrNotFound = core.NewNotFoundError("content")

	errMissingField = errors.New("missing field")
)

type (
	Repository interface {
		CreateContent(ctx context.Context, c Content) (Content, error)
		QueryContents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Content, error)
		GetContent(ctx context.Context, id string) (Content, error)
		UpdateContent(ctx context.Context, c Content) (Content, error)
		DeleteContent(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		classes  *class.Service
		subjects *subject.Service
		validate *validator.Validate
	}
)

func NewService(repo Repository, classes *class.Service, subjects *subject.Service, validate *validator.Validate) *Service {
	return &Service{repo: repo, classes: classes, subjects: subjects, validate: validate}
}

// checkContent makes sure the fields the content's type needs are set and its subject exists.
func (svc *Service) checkContent(ctx context.Context, c Content) error {
	switch {
	case (c.Type == TypeVideo || c.Type == TypeLink) && c.URL == "":
		return core.NewValidationError(errMissingField, core.FieldError{Field: "url", Error: "this field is required"})
	case c.Type == TypeAssignment && c.DueDate == nil:
		return core.NewValidationError(errMissingField, core.FieldError{Field: "due_date", Error: "this field is required"})
	}
	if c.SubjectID != nil {
		if _, err := svc.subjects.Lookup(ctx, *c.SubjectID, "subject_id"); err != nil {
			return err
		}
	}
	return nil
}

// Create publishes content uploaded by the user uploadedBy.
func (svc *Service) Create(ctx context.Context, uploadedBy string, nc NewContent) (Content, error) {
	nc.Clean()
	if err := svc.validate.Struct(nc); err != nil {
		return Content{}, err
	}
	cls, err := svc.classes.Lookup(ctx, nc.ClassID, "class_id")
	if err != nil {
		return Content{}, err
	}

	now := time.Now().UTC()
	c := Content{
		Title:       nc.Title,
		Description: nc.Description,
		ClassID:     cls.ID,
		SubjectID:   core.NullString(nc.SubjectID),
		Type:        nc.Type,
		URL:         nc.URL,
		UploadedBy:  core.NullString(uploadedBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if nc.DueDate != nil {
		due := nc.DueDate.UTC()
		c.DueDate = &due
	}
	if err := svc.checkContent(ctx, c); err != nil {
		return Content{}, err
	}
	return svc.repo.CreateContent(ctx, c)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Content, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QueryContents(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Content, error) {
	return svc.repo.GetContent(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateContent) (Content, error) {
	c, err := svc.repo.GetContent(ctx, id)
	if err != nil {
		return Content{}, err
	}
	uc.Clean()
	if err := svc.validate.Struct(uc); err != nil {
		return Content{}, err
	}
	uc.apply(&c)
	if err := svc.checkContent(ctx, c); err != nil {
		return Content{}, err
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateContent(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteContent(ctx, id)
}
