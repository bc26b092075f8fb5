package dummydb

import "context"

func createRow[T any](ctx context.Context, t *table[T], row T, conflict func(row, existing T) error) (T, error) {
	undo, err := t.insert(row, conflict)
	if err != nil {
		var zero T
		return zero, err
	}
	record(ctx, undo)
	return row, nil
}

func getRow[T any](t *table[T], id string, notFound error) (T, error) {
	row, ok := t.get(id)
	if !ok {
		return row, notFound
	}
	return row, nil
}

func updateRow[T any](ctx context.Context, t *table[T], row T, conflict func(row, existing T) error, notFound error) (T, error) {
	undo, ok, err := t.update(row, conflict)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		var zero T
		return zero, notFound
	}
	record(ctx, undo)
	return row, nil
}

func updateRowFunc[T any](ctx context.Context, t *table[T], id string, fn func(*T) error, notFound error) (T, error) {
	row, undo, ok, err := t.updateFunc(id, fn)
	if err != nil {
		return row, err
	}
	if !ok {
		return row, notFound
	}
	record(ctx, undo)
	return row, nil
}

func deleteRow[T any](ctx context.Context, t *table[T], id string, notFound error) error {
	removed, undo := t.remove(func(row T) bool { return t.id(row) == id })
	if len(removed) == 0 {
		return notFound
	}
	record(ctx, undo)
	return nil
}
