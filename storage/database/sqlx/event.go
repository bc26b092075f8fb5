package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/event"
)

var eventColumns = []string{
	"id", "title", "description", "starts_at", "ends_at", "location", "audience", "created_by", "created_at", "updated_at",
}

type eventRow struct {
	event.Event
	Audience pq.StringArray `db:"audience"`
}

func (r eventRow) event() event.Event {
	e := r.Event
	e.Audience = orEmpty(r.Audience)
	return e
}

// orEmpty keeps arrays non-nil in JSON responses.
func orEmpty(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

type eventRepository struct {
	db *DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db}
}

func eventValues(e event.Event) map[string]interface{} {
	return map[string]interface{}{
		"title":       e.Title,
		"description": e.Description,
		"starts_at":   e.StartsAt,
		"ends_at":     e.EndsAt,
		"location":    e.Location,
		"audience":    pq.Array(orEmpty(e.Audience)),
		"created_by":  nullable(e.CreatedBy),
		"updated_at":  e.UpdatedAt,
	}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	e.ID = newID()
	values := eventValues(e)
	values["id"] = e.ID
	values["created_at"] = e.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("events").SetMap(values), "event", nil); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter *event.QueryFilter, ordering []core.DBOrdering) ([]event.Event, error) {
	q := psql.Select(eventColumns...).From("events")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where(searchAny(filter.Search, "title", "location"))
		}
		if !filter.From.IsZero() {
			q = q.Where(sq.GtOrEq{"ends_at": filter.From})
		}
		if !filter.To.IsZero() {
			q = q.Where(sq.LtOrEq{"starts_at": filter.To})
		}
		if filter.Role != "" {
			q = q.Where(sq.Expr("(cardinality(audience) = 0 OR ? = ANY(audience))", filter.Role))
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	var rows []eventRow
	if err := repo.db.selectAll(ctx, &rows, orderBy(q, ordering), "event"); err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.event())
	}
	return events, nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	var r eventRow
	q := psql.Select(eventColumns...).From("events").Where(sq.Eq{"id": id})
	if err := repo.db.get(ctx, &r, q, "event", event.ErrNotFound); err != nil {
		return event.Event{}, err
	}
	return r.event(), nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	q := psql.Update("events").SetMap(eventValues(e)).Where(sq.Eq{"id": e.ID})
	if err := repo.db.exec(ctx, q, "event", event.ErrNotFound); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("events").Where(sq.Eq{"id": id}), "event", event.ErrNotFound)
}
