package core

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Transactor runs fn inside a storage transaction. Repositories called with the ctx handed to fn
// take part in that transaction; any error returned by fn rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

var errInvalidOrdering = errors.New("invalid ordering")

// CheckOrdering makes sure every ordering field is one of the allowed columns.
func CheckOrdering(ordering []DBOrdering, allowed ...string) error {
	for _, ord := range ordering {
		ok := false
		for _, fld := range allowed {
			if ord.Field == fld {
				ok = true
				break
			}
		}
		if !ok {
			return NewValidationError(errInvalidOrdering, FieldError{
				Field: "ordering",
				Error: "cannot order by " + ord.Field + "; allowed: " + strings.Join(allowed, ", "),
			})
		}
	}
	return nil
}
