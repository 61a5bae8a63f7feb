package domain

import "time"

// Window is an inclusive [From, To] timestamp range.
// The zero Window is unbounded on both sides.
type Window struct {
	From time.Time
	To   time.Time
}

// AllTime is the unbounded window used for persisted scores.
var AllTime = Window{}

// IsAllTime reports whether the window has no bounds.
func (w Window) IsAllTime() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// IsEmpty reports whether a bounded window contains no instant.
func (w Window) IsEmpty() bool {
	return !w.IsAllTime() && w.To.Before(w.From)
}
