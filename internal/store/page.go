package store

import "math"

// Window is the slice of a result sequence a paginated read returns
type Window struct {
	Offset  uint64
	Limit   uint64
	bounded bool
}

// NewWindow derives the window for page and perPage. When either is nil
// the window is unbounded and starts at 0.
func NewWindow(page, perPage *uint32) Window {
	if page == nil || perPage == nil {
		return Window{}
	}
	return Window{
		Offset:  uint64(*page) * uint64(*perPage),
		Limit:   uint64(*perPage),
		bounded: true,
	}
}

// Bounded reports whether the window has a limit
func (w Window) Bounded() bool {
	return w.bounded
}

// OutOfRange reports whether the window starts beyond any row SQLite can
// address. Such a window is always empty.
func (w Window) OutOfRange() bool {
	return w.bounded && w.Offset > math.MaxInt64
}

// Paginate returns the part of items that falls inside w. An offset past
// the end yields an empty slice.
func Paginate[T any](items []T, w Window) []T {
	if w.Offset >= uint64(len(items)) {
		return items[:0]
	}
	rest := items[w.Offset:]
	if w.bounded && w.Limit < uint64(len(rest)) {
		rest = rest[:w.Limit]
	}
	return rest
}
