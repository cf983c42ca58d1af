package client

// Store is a disposable per-resource cache of the last fetched list. A load
// replaces the whole cache; mutations are expected to trigger a fresh load
// rather than patching entries in place.
type Store[T any] struct {
	items []T
	load  func() ([]T, error)
}

// NewStore creates a store backed by the given list fetch.
func NewStore[T any](load func() ([]T, error)) *Store[T] {
	return &Store[T]{load: load}
}

// Load refetches the full list, replacing any previous cache.
func (s *Store[T]) Load() ([]T, error) {
	items, err := s.load()
	if err != nil {
		return nil, err
	}
	s.items = items
	return items, nil
}

// Items returns the cached list from the last successful Load.
func (s *Store[T]) Items() []T {
	return s.items
}

// Find returns the first cached item matching the predicate, for flows
// that pre-fetch the list instead of fetching single items.
func (s *Store[T]) Find(match func(T) bool) (T, bool) {
	for _, item := range s.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
