package core

import "fmt"

// Index is an id-keyed lookup built from a bulk fetch. A miss is an
// integrity fault: the caller asked for ids it derived from stored rows.
type Index[T any] struct {
	entity string
	items  map[int64]T
}

func NewIndex[T any](entity string, items []T, idOf func(T) int64) Index[T] {
	m := make(map[int64]T, len(items))
	for _, it := range items {
		m[idOf(it)] = it
	}
	return Index[T]{entity: entity, items: m}
}

func (ix Index[T]) Get(id int64) (T, error) {
	v, ok := ix.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %d missing from bulk lookup", ErrIntegrity, ix.entity, id)
	}
	return v, nil
}

func (ix Index[T]) Len() int { return len(ix.items) }

func CategoryID(c Category) int64 { return c.ID }
func AccountID(a Account) int64   { return a.ID }
