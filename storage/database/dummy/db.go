// Package dummydb is an in-memory storage backend. It honours the uniqueness policy on every
// write and undoes the writes of a failed transaction, which makes it suitable for tests and
// for running the API without Postgres.
package dummydb

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/event"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/lms"
	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/subject"
	"github.com/trezcool/shule/core/timetable"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
)

type DB struct {
	policy *unique.Policy

	users         *table[user.User]
	staff         *table[staff.Staff]
	students      *table[student.Student]
	parents       *table[parent.Parent]
	classes       *table[class.Class]
	subjects      *table[subject.Subject]
	fees          *table[fee.Fee]
	grades        *table[grade.Grade]
	attendance    *table[attendance.Attendance]
	timetables    *table[timetable.Timetable]
	events        *table[event.Event]
	notifications *table[notification.Notification]
	contents      *table[lms.Content]

	sequences *counterTable
}

func Open(policy *unique.Policy) *DB {
	return &DB{
		policy: policy,

		users:         newTable(func(u user.User) string { return u.ID }),
		staff:         newTable(func(s staff.Staff) string { return s.ID }),
		students:      newTable(func(s student.Student) string { return s.ID }),
		parents:       newTable(func(p parent.Parent) string { return p.ID }),
		classes:       newTable(func(c class.Class) string { return c.ID }),
		subjects:      newTable(func(s subject.Subject) string { return s.ID }),
		fees:          newTable(func(f fee.Fee) string { return f.ID }),
		grades:        newTable(func(g grade.Grade) string { return g.ID }),
		attendance:    newTable(func(a attendance.Attendance) string { return a.ID }),
		timetables:    newTable(func(t timetable.Timetable) string { return t.ID }),
		events:        newTable(func(e event.Event) string { return e.ID }),
		notifications: newTable(func(n notification.Notification) string { return n.ID }),
		contents:      newTable(func(c lms.Content) string { return c.ID }),

		sequences: &counterTable{values: make(map[seqKey]int64)},
	}
}

func newID() string {
	return uuid.NewString()
}

// uniqueConflict returns a conflict func reporting the rule of entity broken by a row against
// an existing row.
func uniqueConflict[T any](policy *unique.Policy, entity string, values func(T) map[string]string) func(row, existing T) error {
	return func(row, existing T) error {
		if rule, ok := policy.Conflict(entity, values(row), values(existing)); ok {
			return rule.Violation()
		}
		return nil
	}
}

// transactions

type undoFunc func()

type memTx struct {
	mu   sync.Mutex
	undo []undoFunc
}

type txKey struct{}

var _ core.Transactor = (*DB)(nil) // interface compliance check

// WithinTx runs fn, undoing every write made through its ctx when it fails. Writes are visible
// to other callers before the transaction ends. A nested call joins the outer transaction.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*memTx); ok {
		return fn(ctx)
	}

	tx := new(memTx)
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (tx *memTx) rollback() {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// record keeps undo for the transaction of ctx, if any.
func record(ctx context.Context, undo undoFunc) {
	if undo == nil {
		return
	}
	if tx, ok := ctx.Value(txKey{}).(*memTx); ok {
		tx.mu.Lock()
		tx.undo = append(tx.undo, undo)
		tx.mu.Unlock()
	}
}

// accounts returns every user, keyed by ID.
func (db *DB) accounts() map[string]user.User {
	users := db.users.list(nil)
	byID := make(map[string]user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID
}
