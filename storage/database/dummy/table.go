package dummydb

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/shule/core"
)

// table keeps rows in insertion order.
type table[T any] struct {
	sync.RWMutex
	rows []T
	id   func(T) string
}

func newTable[T any](id func(T) string) *table[T] {
	return &table[T]{id: id}
}

// list returns the rows matching keep, newest first.
func (t *table[T]) list(keep func(T) bool) []T {
	t.RLock()
	defer t.RUnlock()

	out := make([]T, 0, len(t.rows))
	for i := len(t.rows) - 1; i >= 0; i-- {
		if keep == nil || keep(t.rows[i]) {
			out = append(out, t.rows[i])
		}
	}
	return out
}

func (t *table[T]) get(id string) (T, bool) {
	t.RLock()
	defer t.RUnlock()

	for _, row := range t.rows {
		if t.id(row) == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) find(match func(T) bool) (T, bool) {
	t.RLock()
	defer t.RUnlock()

	for _, row := range t.rows {
		if match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) checkConflicts(row T, conflict func(row, existing T) error) error {
	if conflict == nil {
		return nil
	}
	id := t.id(row)
	for _, existing := range t.rows {
		if t.id(existing) == id {
			continue
		}
		if err := conflict(row, existing); err != nil {
			return err
		}
	}
	return nil
}

func (t *table[T]) insert(row T, conflict func(row, existing T) error) (undoFunc, error) {
	t.Lock()
	defer t.Unlock()

	if err := t.checkConflicts(row, conflict); err != nil {
		return nil, err
	}
	t.rows = append(t.rows, row)

	id := t.id(row)
	return func() { _, _ = t.remove(func(r T) bool { return t.id(r) == id }) }, nil
}

// update replaces the row with the same ID. The bool is false when there is none.
func (t *table[T]) update(row T, conflict func(row, existing T) error) (undoFunc, bool, error) {
	t.Lock()
	defer t.Unlock()

	id := t.id(row)
	for i, existing := range t.rows {
		if t.id(existing) != id {
			continue
		}
		if err := t.checkConflicts(row, conflict); err != nil {
			return nil, true, err
		}
		t.rows[i] = row
		return func() { t.restore(existing) }, true, nil
	}
	return nil, false, nil
}

// updateFunc changes the row with the given ID through fn, holding the lock from read to write.
// The row is left untouched when fn fails. The bool is false when there is no such row.
func (t *table[T]) updateFunc(id string, fn func(*T) error) (T, undoFunc, bool, error) {
	t.Lock()
	defer t.Unlock()

	var zero T
	for i, existing := range t.rows {
		if t.id(existing) != id {
			continue
		}
		row := existing
		if err := fn(&row); err != nil {
			return zero, nil, true, err
		}
		t.rows[i] = row
		return row, func() { t.restore(existing) }, true, nil
	}
	return zero, nil, false, nil
}

// modify applies fn to every row matching match.
func (t *table[T]) modify(match func(T) bool, fn func(*T)) undoFunc {
	t.Lock()
	defer t.Unlock()

	var previous []T
	for i := range t.rows {
		if match(t.rows[i]) {
			previous = append(previous, t.rows[i])
			fn(&t.rows[i])
		}
	}
	if len(previous) == 0 {
		return nil
	}
	return func() {
		for _, row := range previous {
			t.restore(row)
		}
	}
}

func (t *table[T]) restore(row T) {
	t.Lock()
	defer t.Unlock()

	id := t.id(row)
	for i := range t.rows {
		if t.id(t.rows[i]) == id {
			t.rows[i] = row
			return
		}
	}
	t.rows = append(t.rows, row)
}

func (t *table[T]) delete(match func(T) bool) []T {
	kept := t.rows[:0:0]
	var removed []T
	for _, row := range t.rows {
		if match(row) {
			removed = append(removed, row)
		} else {
			kept = append(kept, row)
		}
	}
	t.rows = kept
	return removed
}

// remove deletes the rows matching match, returning them.
func (t *table[T]) remove(match func(T) bool) ([]T, undoFunc) {
	t.Lock()
	defer t.Unlock()

	removed := t.delete(match)
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, func() {
		for _, row := range removed {
			t.restore(row)
		}
	}
}

func (t *table[T]) count(match func(T) bool) int {
	t.RLock()
	defer t.RUnlock()

	n := 0
	for _, row := range t.rows {
		if match(row) {
			n++
		}
	}
	return n
}

// filters

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func anyContainsFold(substr string, ss ...string) bool {
	for _, s := range ss {
		if containsFold(s, substr) {
			return true
		}
	}
	return false
}

func idIn(ids []string, id string) bool {
	return len(ids) == 0 || core.ContainsString(ids, id)
}

// ordering

// orderBy sorts rows by the fields of ordering, matched against db struct tags. Rows must
// come newest first, which stays the tie breaker.
func orderBy[T any](rows []T, ordering []core.DBOrdering) {
	if len(ordering) == 0 || len(rows) < 2 {
		return
	}
	typ := reflect.TypeOf(rows[0])
	indexes := make([]int, len(ordering))
	for i, ord := range ordering {
		indexes[i] = -1
		for f := 0; f < typ.NumField(); f++ {
			if strings.SplitN(typ.Field(f).Tag.Get("db"), ",", 2)[0] == ord.Field {
				indexes[i] = f
				break
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := reflect.ValueOf(rows[i]), reflect.ValueOf(rows[j])
		for k, ord := range ordering {
			if indexes[k] < 0 {
				continue
			}
			c := compareValues(vi.Field(indexes[k]), vj.Field(indexes[k]))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

var timeType = reflect.TypeOf(time.Time{})

// compareValues orders two values of the same type. nil pointers sort first.
func compareValues(a, b reflect.Value) int {
	if a.Kind() == reflect.Ptr {
		switch {
		case a.IsNil() && b.IsNil():
			return 0
		case a.IsNil():
			return -1
		case b.IsNil():
			return 1
		}
		return compareValues(a.Elem(), b.Elem())
	}

	if a.Type() == timeType {
		ta, tb := a.Interface().(time.Time), b.Interface().(time.Time)
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		}
		return 0
	}

	switch a.Kind() {
	case reflect.String:
		return strings.Compare(strings.ToLower(a.String()), strings.ToLower(b.String()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return compareOrdered(a.Int(), b.Int())
	case reflect.Float32, reflect.Float64:
		return compareOrdered(a.Float(), b.Float())
	case reflect.Bool:
		ab, bb := a.Bool(), b.Bool()
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		}
		return 1
	}
	return 0
}

func compareOrdered[N int64 | float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
