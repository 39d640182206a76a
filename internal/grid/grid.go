// Package grid models the fixed seat board shown in the reservation
// dialog.  The board has 10 rows labelled A through J and 14 numbered
// columns, giving 140 physical seats regardless of how many seats the
// venue claims to have.  Everything in this package is plain data and
// logic; it never talks to the network.
package grid

import (
	"errors"
	"fmt"
	"strconv"
)

// Board dimensions.  Capacity is also the denominator used when the UI
// reports "remaining/total seats", independent of a show's own
// totalSeats value.
const (
	Rows     = 10
	Columns  = 14
	Capacity = Rows * Columns
)

// rowLabels holds the row letters in display order, top to bottom.
var rowLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

// ErrUnknownSeat is returned when a seat identifier does not name a
// seat on the board.
var ErrUnknownSeat = errors.New("unknown seat id")

// Seat is one cell of the board.  Reserved comes from server data at
// build time; Selected is client-only and transient.
type Seat struct {
	ID       string // row letter + column number, e.g. "C12"
	Row      string
	Column   int
	Reserved bool
	Selected bool
}

// SeatID formats a row label and column number into the identifier
// convention used both on the wire and in display ("J14", no separator).
func SeatID(row string, col int) string {
	return row + strconv.Itoa(col)
}

// Build produces the full board in row-major order (A1..A14, B1..B14,
// ..., J14).  A seat is marked reserved iff its identifier appears in
// reservedIDs.  The result always contains exactly Capacity seats.
func Build(reservedIDs []string) []Seat {
	reserved := make(map[string]struct{}, len(reservedIDs))
	for _, id := range reservedIDs {
		reserved[id] = struct{}{}
	}
	seats := make([]Seat, 0, Capacity)
	for _, row := range rowLabels {
		for col := 1; col <= Columns; col++ {
			id := SeatID(row, col)
			_, isReserved := reserved[id]
			seats = append(seats, Seat{
				ID:       id,
				Row:      row,
				Column:   col,
				Reserved: isReserved,
			})
		}
	}
	return seats
}

// Board tracks the seats of one show/date together with the single
// user selection.  At most one seat is selected at any time.
type Board struct {
	seats []Seat
	index map[string]int // seat ID -> position in seats
}

// NewBoard builds a board from a server-provided reserved-seat list.
// Passing nil yields a board with every seat free, which is also the
// fallback when the seat-status fetch fails.
func NewBoard(reservedIDs []string) *Board {
	seats := Build(reservedIDs)
	index := make(map[string]int, len(seats))
	for i, s := range seats {
		index[s.ID] = i
	}
	return &Board{seats: seats, index: index}
}

// Seats returns a copy of the board cells in row-major order.
func (b *Board) Seats() []Seat {
	out := make([]Seat, len(b.seats))
	copy(out, b.seats)
	return out
}

// Seat looks up a single cell by identifier.
func (b *Board) Seat(id string) (Seat, error) {
	i, ok := b.index[id]
	if !ok {
		return Seat{}, fmt.Errorf("%w: %q", ErrUnknownSeat, id)
	}
	return b.seats[i], nil
}

// Select applies one seat click.  Clicking a reserved seat is ignored.
// Clicking the currently selected seat deselects it.  Clicking any
// other free seat selects it and clears every previous selection.
// The returned error is non-nil only for identifiers that are not on
// the board at all.
func (b *Board) Select(id string) error {
	i, ok := b.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSeat, id)
	}
	if b.seats[i].Reserved {
		return nil // reserved seats are not clickable
	}
	if b.seats[i].Selected {
		b.seats[i].Selected = false
		return nil
	}
	for j := range b.seats {
		b.seats[j].Selected = b.seats[j].ID == id
	}
	return nil
}

// Selected returns the identifiers of the selected seats.  With the
// single-selection rule the slice has zero or one element, but callers
// must not rely on that cap.
func (b *Board) Selected() []string {
	var out []string
	for _, s := range b.seats {
		if s.Selected {
			out = append(out, s.ID)
		}
	}
	return out
}

// SelectedCount reports how many seats are currently selected.
func (b *Board) SelectedCount() int {
	n := 0
	for _, s := range b.seats {
		if s.Selected {
			n++
		}
	}
	return n
}

// ClearSelection removes any selection from the board.
func (b *Board) ClearSelection() {
	for i := range b.seats {
		b.seats[i].Selected = false
	}
}

// TotalPrice computes the price of the current selection.  The formula
// stays generic (count × unit price) even though selection is capped at
// one seat today.
func (b *Board) TotalPrice(unitPrice int) int {
	return b.SelectedCount() * unitPrice
}
