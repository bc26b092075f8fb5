package notification

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

var OrderingFields = []string{"title", "priority", "created_at"}

type Notification struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Message      string    `json:"message" db:"message"`
	Priority     string    `json:"priority" db:"priority"`
	Audience     []string  `json:"audience" db:"audience"`           // roles
	RecipientIDs []string  `json:"recipient_ids" db:"recipient_ids"` // users
	SendEmail    bool      `json:"send_email" db:"send_email"`
	ReadBy       []string  `json:"read_by" db:"read_by"`
	CreatedBy    *string   `json:"created_by" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsFor reports whether the notification targets the user userID having role.
func (n Notification) IsFor(userID, role string) bool {
	return core.ContainsString(n.RecipientIDs, userID) || core.ContainsString(n.Audience, role)
}

func (n Notification) IsReadBy(userID string) bool {
	return core.ContainsString(n.ReadBy, userID)
}

type NewNotification struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Message      string   `json:"message" validate:"required,max=5000"`
	Priority     string   `json:"priority" validate:"omitempty,oneof=low normal high"`
	Audience     []string `json:"audience" validate:"omitempty,unique,dive,oneof=admin staff parent student"`
	RecipientIDs []string `json:"recipient_ids" validate:"omitempty,unique,dive,uuid"`
	SendEmail    bool     `json:"send_email"`
}

func (nn *NewNotification) Clean() {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	nn.Priority = core.CleanString(nn.Priority, true /* lower */)
	if nn.Priority == "" {
		nn.Priority = PriorityNormal
	}
	nn.Audience = core.CleanStrings(nn.Audience, true /* lower */)
	nn.RecipientIDs = core.CleanStrings(nn.RecipientIDs)
}

type QueryFilter struct {
	Priority string   `query:"priority"`
	Unread   bool     `query:"unread"`
	UserID   string   `query:"-"` // only notifications targeting UserID or Role
	Role     string   `query:"-"`
	IDs      []string `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.Priority = core.CleanString(qf.Priority, true /* lower */)
}
