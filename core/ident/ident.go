// Package ident issues the human readable, year-scoped sequential identifiers carried by staff
// (EMP20240001) and students (ADM20240001).
//
// The sequence of each (kind, year) lives in an explicit counter advanced by an atomic
// increment-and-return of the backing store. The identifier columns also carry a unique index:
// when an insert still collides (counter behind legacy rows), Issue raises the counter past the
// colliding identifier and retries with a fresh one.
package ident

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trezcool/shule/core"
)

type Kind string

const (
	KindEmployee  Kind = "EMP"
	KindAdmission Kind = "ADM"

	// MaxSequence is the last sequence number of a (kind, year); identifiers are fixed-width.
	MaxSequence = 9999
	seqDigits   = 4
	yearDigits  = 4
)

var (
	Kinds = []Kind{KindEmployee, KindAdmission}

	ErrSequenceExhausted = errors.New("identifier sequence exhausted")
	ErrInvalidIdentifier = errors.New("invalid identifier")

	generatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shule_identifiers_generated_total",
		Help: "Number of identifiers issued, by kind.",
	}, []string{"kind"})
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shule_identifier_retries_total",
		Help: "Number of identifier collisions retried, by kind.",
	}, []string{"kind"})
)

func (k Kind) Valid() bool {
	return k == KindEmployee || k == KindAdmission
}

// Counter is an atomic per (kind, year) sequence. Next must increment and return in a single
// store operation; when called with a ctx carrying a transaction it takes part in it.
type Counter interface {
	Next(ctx context.Context, kind Kind, year int) (int64, error)
	// Seed raises the counter to value; it never lowers it.
	Seed(ctx context.Context, kind Kind, year int, value int64) error
	Current(ctx context.Context, kind Kind, year int) (int64, error)
}

// Format renders an identifier: kind + year + zero-padded sequence.
func Format(kind Kind, year int, seq int64) (string, error) {
	if seq < 1 || seq > MaxSequence {
		return "", core.NewValidationError(errors.Wrapf(ErrSequenceExhausted,
			"%s%d has no identifiers left (max %d per year)", kind, year, MaxSequence))
	}
	return fmt.Sprintf("%s%04d%0*d", kind, year, seqDigits, seq), nil
}

// Parse splits an identifier into its kind, year and sequence number.
func Parse(id string) (Kind, int, int64, error) {
	if len(id) != 3+yearDigits+seqDigits {
		return "", 0, 0, errors.Wrap(ErrInvalidIdentifier, id)
	}
	kind := Kind(id[:3])
	if !kind.Valid() {
		return "", 0, 0, errors.Wrap(ErrInvalidIdentifier, id)
	}
	year, err := strconv.Atoi(id[3 : 3+yearDigits])
	if err != nil {
		return "", 0, 0, errors.Wrap(ErrInvalidIdentifier, id)
	}
	seq, err := strconv.ParseInt(id[3+yearDigits:], 10, 64)
	if err != nil || seq < 1 {
		return "", 0, 0, errors.Wrap(ErrInvalidIdentifier, id)
	}
	return kind, year, seq, nil
}

type Generator struct {
	counter    Counter
	tx         core.Transactor
	loc        *time.Location
	maxRetries int

	NowFunc func() time.Time // mockable
}

func NewGenerator(counter Counter, tx core.Transactor, conf *core.Config) *Generator {
	loc := conf.Timezone
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		counter:    counter,
		tx:         tx,
		loc:        loc,
		maxRetries: conf.Sequence.MaxRetries,
		NowFunc:    time.Now,
	}
}

// Year is the calendar year identifiers are currently issued for, in the school's timezone.
func (g *Generator) Year() int {
	return g.NowFunc().In(g.loc).Year()
}

// Next draws the next identifier of kind for the current year.
func (g *Generator) Next(ctx context.Context, kind Kind) (string, error) {
	year := g.Year()
	seq, err := g.counter.Next(ctx, kind, year)
	if err != nil {
		return "", errors.Wrapf(err, "advancing %s%d sequence", kind, year)
	}
	return Format(kind, year, seq)
}

// Issue draws an identifier and hands it to create, both inside one transaction.
// When create fails with an error for which collided reports true, the counter is raised past
// the colliding identifier and the whole transaction is retried, up to the configured retries.
func (g *Generator) Issue(
	ctx context.Context,
	kind Kind,
	collided func(error) bool,
	create func(ctx context.Context, id string) error,
) (string, error) {
	var id, collision string
	for attempt := 0; ; attempt++ {
		err := g.tx.WithinTx(ctx, func(ctx context.Context) error {
			if collision != "" {
				if err := g.skipPast(ctx, collision); err != nil {
					return err
				}
			}
			var err error
			if id, err = g.Next(ctx, kind); err != nil {
				return err
			}
			return create(ctx, id)
		})

		switch {
		case err == nil:
			generatedTotal.WithLabelValues(string(kind)).Inc()
			return id, nil
		case id == "" || collided == nil || !collided(err):
			return "", err
		case attempt >= g.maxRetries:
			return "", errors.Wrapf(err, "issuing %s identifier: still colliding after %d retries", kind, attempt)
		}
		retriesTotal.WithLabelValues(string(kind)).Inc()
		collision = id
	}
}

func (g *Generator) skipPast(ctx context.Context, id string) error {
	kind, year, seq, err := Parse(id)
	if err != nil {
		return err
	}
	return errors.Wrapf(g.counter.Seed(ctx, kind, year, seq), "seeding %s%d sequence", kind, year)
}

// Sync raises the counters so that they are at least at the sequence of every given identifier.
// Malformed identifiers are skipped and returned.
func Sync(ctx context.Context, counter Counter, ids []string) (skipped []string, err error) {
	highest := make(map[Kind]map[int]int64)
	for _, id := range ids {
		kind, year, seq, err := Parse(id)
		if err != nil {
			skipped = append(skipped, id)
			continue
		}
		if highest[kind] == nil {
			highest[kind] = make(map[int]int64)
		}
		if seq > highest[kind][year] {
			highest[kind][year] = seq
		}
	}
	for kind, years := range highest {
		for year, seq := range years {
			if err := counter.Seed(ctx, kind, year, seq); err != nil {
				return skipped, errors.Wrapf(err, "seeding %s%d sequence", kind, year)
			}
		}
	}
	return skipped, nil
}
