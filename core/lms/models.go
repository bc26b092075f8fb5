package lms

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Content types
const (
	TypeNote       = "note"
	TypeAssignment = "assignment"
	TypeVideo      = "video"
	TypeLink       = "link"
)

var OrderingFields = []string{"title", "type", "due_date", "created_at"}

type Content struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	ClassID     string     `json:"class_id" db:"class_id"`
	SubjectID   *string    `json:"subject_id" db:"subject_id"`
	Type        string     `json:"type" db:"type"`
	URL         string     `json:"url" db:"url"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	UploadedBy  *string    `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type NewContent struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	ClassID     string     `json:"class_id" validate:"required,uuid"`
	SubjectID   string     `json:"subject_id" validate:"omitempty,uuid"`
	Type        string     `json:"type" validate:"required,oneof=note assignment video link"`
	URL         string     `json:"url" validate:"omitempty,url"`
	DueDate     *time.Time `json:"due_date"`
}

func (nc *NewContent) Clean() {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.ClassID = core.CleanString(nc.ClassID)
	nc.SubjectID = core.CleanString(nc.SubjectID)
	nc.Type = core.CleanString(nc.Type, true /* lower */)
	nc.URL = core.CleanString(nc.URL)
}

type UpdateContent struct {
	Title       string     `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	SubjectID   *string    `json:"subject_id"`
	URL         *string    `json:"url" validate:"omitempty,url"`
	DueDate     *time.Time `json:"due_date"`
}

func (uc *UpdateContent) Clean() {
	uc.Title = core.CleanString(uc.Title)
	for _, s := range []*string{uc.Description, uc.SubjectID, uc.URL} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
}

func (uc UpdateContent) apply(c *Content) {
	if uc.Title != "" {
		c.Title = uc.Title
	}
	if uc.Description != nil {
		c.Description = *uc.Description
	}
	if uc.SubjectID != nil {
		c.SubjectID = core.NullString(*uc.SubjectID)
	}
	if uc.URL != nil {
		c.URL = *uc.URL
	}
	if uc.DueDate != nil {
		due := uc.DueDate.UTC()
		c.DueDate = &due
	}
}

type QueryFilter struct {
	Search    string   `query:"search"` // title or description
	ClassIDs  []string `query:"class_id"`
	SubjectID string   `query:"subject_id"`
	Type      string   `query:"type"`
	IDs       []string `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassIDs = core.CleanStrings(qf.ClassIDs)
	qf.SubjectID = core.CleanString(qf.SubjectID)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
}
