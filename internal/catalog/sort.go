// Package catalog implements the listing policy of the home page: a
// closed set of sort/filter modes applied as a pure recompute over the
// full show list.  The underlying list is never mutated; callers get a
// fresh slice on every call.
package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/CLD-3rd/team2-frontend/internal/grid"
	"github.com/CLD-3rd/team2-frontend/internal/model"
)

// SortMode selects how the musical list is ordered or filtered.
type SortMode string

const (
	// SortNewest orders by how close the performance date is to today,
	// closest first.  This is the default mode.
	SortNewest SortMode = "newest"
	// SortMostReserved orders by taken seats, most first.  Taken seats
	// are counted against the fixed board capacity, not the show's own
	// totalSeats, to stay consistent with the "remaining/140" label.
	SortMostReserved SortMode = "most-reserved"
	// SortMyReservations filters to shows reserved by the current user
	// without reordering.
	SortMyReservations SortMode = "my-reservations"
)

// ParseSortMode validates a mode string coming from outside (CLI input,
// config).  Unknown values are rejected rather than defaulted.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case SortNewest, SortMostReserved, SortMyReservations:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Sort returns a new slice ordered according to mode.  The input is
// never modified and ties keep their original order (stable sort).
// Shows without a parseable date sort after every dated show in
// SortNewest mode.
func Sort(musicals []model.Musical, mode SortMode, now time.Time) []model.Musical {
	out := make([]model.Musical, len(musicals))
	copy(out, musicals)

	switch mode {
	case SortMostReserved:
		sort.SliceStable(out, func(i, j int) bool {
			return takenSeats(out[i]) > takenSeats(out[j])
		})
	case SortMyReservations:
		filtered := out[:0]
		for _, m := range out {
			if m.IsReserved {
				filtered = append(filtered, m)
			}
		}
		out = filtered
	case SortNewest:
		fallthrough
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return dateDistance(out[i], now) < dateDistance(out[j], now)
		})
	}
	return out
}

// takenSeats counts occupied seats against the fixed board capacity.
func takenSeats(m model.Musical) int {
	return grid.Capacity - m.RemainingSeats
}

// dateDistance is the absolute distance between the performance date
// and now.  Undated shows get the maximum distance so they sink to the
// bottom of the newest view.
func dateDistance(m model.Musical, now time.Time) time.Duration {
	d, err := m.ParseDate()
	if err != nil {
		return time.Duration(1<<63 - 1)
	}
	diff := d.Sub(now)
	if diff < 0 {
		diff = -diff
	}
	return diff
}
