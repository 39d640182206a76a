// Package booking drives the seat-selection and reservation dialog as
// an explicit state machine: load seats, pick one seat, confirm,
// submit, reconcile.  The flow owns the seat board for its lifetime
// and reports results back to the page controller through a callback
// instead of sharing mutable state.
package booking

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/CLD-3rd/team2-frontend/internal/api"
	"github.com/CLD-3rd/team2-frontend/internal/grid"
	"github.com/CLD-3rd/team2-frontend/internal/model"
)

// State is the position of the reservation dialog in its lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateSeatsLoading State = "seats-loading"
	StateSeatsReady   State = "seats-ready"
	StateSeatSelected State = "seat-selected"
	StateConfirming   State = "confirming"
	StateSubmitting   State = "submitting"
	// StateFailed means the last submission was rejected.  The board
	// stays usable; selecting a seat again leaves this state.
	StateFailed State = "failed"
)

// User-facing messages.  The submit fallback is only used when the
// server did not supply its own message.
const (
	seatLoadErrorMessage  = "Failed to load seat information."
	submitFallbackMessage = "Reservation failed. Please try again."
)

// errorDismissAfter is how long a submission error stays visible.
const errorDismissAfter = 5 * time.Second

var (
	// ErrMissingDate means the show has no valid performance date, so
	// the dialog refuses to open.
	ErrMissingDate = errors.New("booking: musical has no valid date")
	// ErrNoSelection means a confirm was requested without a seat.
	ErrNoSelection = errors.New("booking: no seat selected")
	// ErrBadState means the requested action is not legal in the
	// flow's current state.
	ErrBadState = errors.New("booking: action not allowed in current state")
)

// API is the slice of the backend client the flow needs.
type API interface {
	ReservedSeats(ctx context.Context, musicalID uint64, date string) ([]string, error)
	CreateReservation(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error)
}

// Flow is one reservation dialog session.  Methods are meant to be
// called from a single event loop, mirroring browser semantics; only
// the error message is additionally touched by the dismiss timer and
// is therefore guarded separately.
type Flow struct {
	client    API
	onSuccess func(seatID string)

	state   State
	musical model.Musical
	userID  string
	board   *grid.Board

	errMu   sync.Mutex
	errMsg  string
	errSeq  int
	cancel  func() bool // stops the pending dismiss timer
	dismiss time.Duration

	// schedule is swapped out in tests for a fake clock.
	schedule func(d time.Duration, f func()) func() bool
}

// New builds a flow in the Idle state.  onSuccess is invoked with the
// reserved seat identifier after a successful submission so the caller
// can update its show list; it may be nil.
func New(client API, onSuccess func(seatID string)) *Flow {
	if client == nil {
		panic("nil API client passed to booking.New")
	}
	return &Flow{
		client:    client,
		onSuccess: onSuccess,
		state:     StateIdle,
		dismiss:   errorDismissAfter,
		schedule: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
}

// Open starts a session for one show.  A show without a valid date
// aborts before any network call: the dialog stays closed and Idle.
// A failed seat fetch still opens the dialog, with an all-free board
// and a non-blocking error message.
func (f *Flow) Open(ctx context.Context, musical model.Musical, userID string) error {
	if f.state != StateIdle {
		f.Close()
	}
	if !musical.HasDate() {
		log.Printf("booking: refusing to open dialog for musical %d: missing or invalid date %q", musical.ID, musical.Date)
		return ErrMissingDate
	}
	f.musical = musical
	f.userID = userID
	f.state = StateSeatsLoading

	reserved, err := f.client.ReservedSeats(ctx, musical.ID, musical.Date)
	if err != nil {
		log.Printf("booking: seat fetch failed for musical %d: %v", musical.ID, err)
		f.setError(seatLoadErrorMessage, false)
		f.board = grid.NewBoard(nil)
	} else {
		f.clearError()
		f.board = grid.NewBoard(reserved)
	}
	f.state = StateSeatsReady
	return nil
}

// ToggleSeat applies one seat click using the board's selection rule.
// Clicks arriving while a submission or confirmation is in progress
// are rejected; clicks after a failed submission are allowed so the
// user can retry immediately.
func (f *Flow) ToggleSeat(seatID string) error {
	switch f.state {
	case StateSeatsReady, StateSeatSelected, StateFailed:
	default:
		return ErrBadState
	}
	if err := f.board.Select(seatID); err != nil {
		return err
	}
	if f.board.SelectedCount() > 0 {
		f.state = StateSeatSelected
	} else {
		f.state = StateSeatsReady
	}
	return nil
}

// RequestConfirm moves to the confirmation step.  It requires a
// non-empty selection; the UI disables the Reserve button otherwise.
func (f *Flow) RequestConfirm() error {
	if f.state != StateSeatSelected {
		return ErrBadState
	}
	if f.board.SelectedCount() == 0 {
		return ErrNoSelection
	}
	f.state = StateConfirming
	return nil
}

// DismissConfirm backs out of the confirmation step ("No" button).
func (f *Flow) DismissConfirm() {
	if f.state == StateConfirming {
		f.state = StateSeatSelected
	}
}

// Confirm submits the reservation.  On success the caller is notified
// with the seat identifier, the board is reloaded so the seat shows as
// reserved, and the selection is cleared.  On failure the confirmation
// step closes, the server message (or a generic fallback) is shown and
// auto-dismissed after five seconds, and the selection is cleared so
// the user can retry at once.
func (f *Flow) Confirm(ctx context.Context) error {
	if f.state != StateConfirming {
		return ErrBadState
	}
	seats := f.board.Selected()
	req, err := model.NewReservationRequest(f.musical.ID, f.musical.Date, seats, f.musical.Price, f.userID)
	if err != nil {
		// Precondition failure: abort before the network call.
		f.state = StateSeatSelected
		return err
	}

	f.state = StateSubmitting
	if _, err := f.client.CreateReservation(ctx, req); err != nil {
		log.Printf("booking: reservation submit failed for musical %d: %v", f.musical.ID, err)
		f.state = StateFailed
		f.setError(submitError(err), true)
		f.board.ClearSelection()
		return err
	}

	if f.onSuccess != nil {
		f.onSuccess(seats[0])
	}
	// Reload so the just-reserved seat renders as taken.  A failed
	// reload falls back the same way Open does.
	reserved, err := f.client.ReservedSeats(ctx, f.musical.ID, f.musical.Date)
	if err != nil {
		log.Printf("booking: seat reload failed for musical %d: %v", f.musical.ID, err)
		f.setError(seatLoadErrorMessage, false)
		f.board = grid.NewBoard(nil)
	} else {
		f.board = grid.NewBoard(reserved)
	}
	f.state = StateSeatsReady
	return nil
}

// Close tears the dialog down from any state: seats, selection and any
// visible error are discarded and the flow returns to Idle.
func (f *Flow) Close() {
	f.clearError()
	f.board = nil
	f.musical = model.Musical{}
	f.userID = ""
	f.state = StateIdle
}

// State returns the current lifecycle position.
func (f *Flow) State() State { return f.state }

// Seats returns the current board cells, or nil before Open.
func (f *Flow) Seats() []grid.Seat {
	if f.board == nil {
		return nil
	}
	return f.board.Seats()
}

// SelectedSeats returns the selected seat identifiers.
func (f *Flow) SelectedSeats() []string {
	if f.board == nil {
		return nil
	}
	return f.board.Selected()
}

// TotalPrice is selected seat count × unit price.
func (f *Flow) TotalPrice() int {
	if f.board == nil {
		return 0
	}
	return f.board.TotalPrice(f.musical.Price)
}

// ErrorMessage returns the currently visible error text, or "".
func (f *Flow) ErrorMessage() string {
	f.errMu.Lock()
	defer f.errMu.Unlock()
	return f.errMsg
}

// submitError picks the user-facing text for a failed submission:
// the server-supplied message when there is one, else the fallback.
func submitError(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return submitFallbackMessage
}

// setError shows a message.  When autoDismiss is set, the message is
// cleared after the dismiss interval unless a newer message replaced
// it in the meantime.
func (f *Flow) setError(msg string, autoDismiss bool) {
	f.errMu.Lock()
	defer f.errMu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.errSeq++
	f.errMsg = msg
	if !autoDismiss {
		return
	}
	seq := f.errSeq
	f.cancel = f.schedule(f.dismiss, func() {
		f.errMu.Lock()
		defer f.errMu.Unlock()
		if f.errSeq == seq {
			f.errMsg = ""
		}
	})
}

func (f *Flow) clearError() {
	f.errMu.Lock()
	defer f.errMu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.errSeq++
	f.errMsg = ""
}
