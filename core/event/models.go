package event

import (
	"time"

	"github.com/trezcool/shule/core"
)

var OrderingFields = []string{"title", "starts_at", "ends_at", "created_at"}

type Event struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	StartsAt    time.Time `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time `json:"ends_at" db:"ends_at"`
	Location    string    `json:"location" db:"location"`
	Audience    []string  `json:"audience" db:"audience"` // roles; empty means everyone
	CreatedBy   *string   `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// VisibleTo reports whether users with role may see the event.
func (e Event) VisibleTo(role string) bool {
	return len(e.Audience) == 0 || core.ContainsString(e.Audience, role)
}

type NewEvent struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"omitempty,max=2000"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	Location    string    `json:"location" validate:"omitempty,max=200"`
	Audience    []string  `json:"audience" validate:"omitempty,unique,dive,oneof=admin staff parent student"`
}

func (ne *NewEvent) Clean() {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Location = core.CleanString(ne.Location)
	ne.Audience = core.CleanStrings(ne.Audience, true /* lower */)
}

type UpdateEvent struct {
	Title       string    `json:"title" validate:"omitempty,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Location    *string   `json:"location" validate:"omitempty,max=200"`
	Audience    []string  `json:"audience" validate:"omitempty,unique,dive,oneof=admin staff parent student"`
}

func (ue *UpdateEvent) Clean() {
	ue.Title = core.CleanString(ue.Title)
	if ue.Description != nil {
		d := core.CleanString(*ue.Description)
		ue.Description = &d
	}
	if ue.Location != nil {
		l := core.CleanString(*ue.Location)
		ue.Location = &l
	}
	if ue.Audience != nil {
		ue.Audience = core.CleanStrings(ue.Audience, true /* lower */)
	}
}

func (ue UpdateEvent) apply(e *Event) {
	if ue.Title != "" {
		e.Title = ue.Title
	}
	if ue.Description != nil {
		e.Description = *ue.Description
	}
	if !ue.StartsAt.IsZero() {
		e.StartsAt = ue.StartsAt.UTC()
	}
	if !ue.EndsAt.IsZero() {
		e.EndsAt = ue.EndsAt.UTC()
	}
	if ue.Location != nil {
		e.Location = *ue.Location
	}
	if ue.Audience != nil {
		e.Audience = ue.Audience
	}
}

type QueryFilter struct {
	Search string    `query:"search"` // title or location
	From   time.Time `query:"from"`   // events ending on or after
	To     time.Time `query:"to"`     // events starting on or before
	Role   string    `query:"-"`      // only events visible to role
	IDs    []string  `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}
