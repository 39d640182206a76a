package booking

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLD-3rd/team2-frontend/internal/api"
	"github.com/CLD-3rd/team2-frontend/internal/grid"
	"github.com/CLD-3rd/team2-frontend/internal/model"
)

// fakeAPI implements the API interface with pluggable behavior.
type fakeAPI struct {
	reservedSeats     func(ctx context.Context, musicalID uint64, date string) ([]string, error)
	createReservation func(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error)
	seatCalls         int
	createCalls       int
	lastRequest       model.ReservationRequest
}

func (f *fakeAPI) ReservedSeats(ctx context.Context, musicalID uint64, date string) ([]string, error) {
	f.seatCalls++
	if f.reservedSeats != nil {
		return f.reservedSeats(ctx, musicalID, date)
	}
	return nil, nil
}

func (f *fakeAPI) CreateReservation(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error) {
	f.createCalls++
	f.lastRequest = req
	if f.createReservation != nil {
		return f.createReservation(ctx, req)
	}
	return &model.Reservation{ID: "res-1"}, nil
}

// fakeClock captures scheduled dismiss callbacks so tests can fire
// them deterministically.
type fakeClock struct {
	delay    time.Duration
	callback func()
	stopped  bool
}

func (c *fakeClock) install(f *Flow) {
	f.schedule = func(d time.Duration, fn func()) func() bool {
		c.delay = d
		c.callback = fn
		return func() bool { c.stopped = true; return true }
	}
}

func testMusical() model.Musical {
	return model.Musical{
		ID:             1,
		Title:          "The Phantom of the Opera",
		Date:           "2025-07-09",
		Price:          85000,
		TotalSeats:     50,
		RemainingSeats: 15,
	}
}

func TestFlow_OpenWithoutDateStaysIdle(t *testing.T) {
	client := &fakeAPI{}
	f := New(client, nil)

	m := testMusical()
	m.Date = ""
	err := f.Open(context.Background(), m, "user-1")
	assert.ErrorIs(t, err, ErrMissingDate)
	assert.Equal(t, StateIdle, f.State())
	assert.Zero(t, client.seatCalls, "no seat fetch may be issued without a date")
	assert.Nil(t, f.Seats())
}

func TestFlow_OpenLoadsReservedSeats(t *testing.T) {
	client := &fakeAPI{
		reservedSeats: func(ctx context.Context, musicalID uint64, date string) ([]string, error) {
			assert.Equal(t, uint64(1), musicalID)
			assert.Equal(t, "2025-07-09", date)
			return []string{"A5", "C12"}, nil
		},
	}
	f := New(client, nil)
	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))

	assert.Equal(t, StateSeatsReady, f.State())
	assert.Empty(t, f.ErrorMessage())

	reserved := 0
	for _, s := range f.Seats() {
		if s.Reserved {
			reserved++
		}
	}
	assert.Equal(t, 2, reserved)
}

func TestFlow_OpenSeatFetchFailureFallsBack(t *testing.T) {
	client := &fakeAPI{
		reservedSeats: func(ctx context.Context, musicalID uint64, date string) ([]string, error) {
			return nil, errors.New("connection refused")
		},
	}
	f := New(client, nil)
	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))

	// The dialog still opens with an all-free board; the error is
	// surfaced but does not block selection.
	assert.Equal(t, StateSeatsReady, f.State())
	assert.NotEmpty(t, f.ErrorMessage())
	for _, s := range f.Seats() {
		assert.False(t, s.Reserved)
	}
	require.NoError(t, f.ToggleSeat("C12"))
	assert.Equal(t, StateSeatSelected, f.State())
}

func TestFlow_SelectionAndPrice(t *testing.T) {
	f := New(&fakeAPI{}, nil)
	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))

	assert.Equal(t, 0, f.TotalPrice())
	require.NoError(t, f.ToggleSeat("C12"))
	assert.Equal(t, 85000, f.TotalPrice())
	assert.Equal(t, []string{"C12"}, f.SelectedSeats())

	// Toggling the same seat clears selection and price together.
	require.NoError(t, f.ToggleSeat("C12"))
	assert.Equal(t, 0, f.TotalPrice())
	assert.Equal(t, StateSeatsReady, f.State())
}

func TestFlow_ConfirmRequiresSelection(t *testing.T) {
	f := New(&fakeAPI{}, nil)
	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))
	assert.ErrorIs(t, f.RequestConfirm(), ErrBadState)
}

func TestFlow_SuccessfulReservation(t *testing.T) {
	var reloaded bool
	client := &fakeAPI{}
	client.reservedSeats = func(ctx context.Context, musicalID uint64, date string) ([]string, error) {
		if client.seatCalls > 1 {
			reloaded = true
			return []string{"C12"}, nil // the reload reflects the new booking
		}
		return nil, nil
	}

	var notified string
	f := New(client, func(seatID string) { notified = seatID })
	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))
	require.NoError(t, f.ToggleSeat("C12"))
	require.NoError(t, f.RequestConfirm())
	assert.Equal(t, StateConfirming, f.State())

	require.NoError(t, f.Confirm(context.Background()))

	assert.Equal(t, "C12", notified)
	assert.True(t, reloaded)
	assert.Equal(t, StateSeatsReady, f.State())
	assert.Empty(t, f.SelectedSeats())

	// The submitted body carries the derived price and the seat list.
	assert.Equal(t, []string{"C12"}, client.lastRequest.Seats)
	assert.Equal(t, 85000, client.lastRequest.TotalPrice)
	assert.Equal(t, "user-1", client.lastRequest.UserID)
	assert.Equal(t, "2025-07-09", client.lastRequest.Date)

	seat, found := findSeat(f, "C12")
	require.True(t, found)
	assert.True(t, seat.Reserved, "board reload must show C12 as taken")
}

func TestFlow_FailedReservation(t *testing.T) {
	client := &fakeAPI{
		createReservation: func(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error) {
			return nil, &api.Error{Status: http.StatusConflict, Message: "Seat already reserved. Please try again."}
		},
	}
	var notified bool
	f := New(client, func(string) { notified = true })
	clock := &fakeClock{}
	clock.install(f)

	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))
	require.NoError(t, f.ToggleSeat("C12"))
	require.NoError(t, f.RequestConfirm())

	err := f.Confirm(context.Background())
	require.Error(t, err)

	assert.False(t, notified, "the caller must not be told about a failed booking")
	assert.Equal(t, StateFailed, f.State())
	assert.Equal(t, "Seat already reserved. Please try again.", f.ErrorMessage())
	assert.Empty(t, f.SelectedSeats(), "selection resets so the user can retry")

	// The error auto-dismisses after the fixed interval.
	assert.Equal(t, 5*time.Second, clock.delay)
	clock.callback()
	assert.Empty(t, f.ErrorMessage())

	// Retry is possible immediately.
	require.NoError(t, f.ToggleSeat("C13"))
	require.NoError(t, f.RequestConfirm())
}

func TestFlow_FailedReservationGenericFallback(t *testing.T) {
	client := &fakeAPI{
		createReservation: func(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}
	f := New(client, nil)
	clock := &fakeClock{}
	clock.install(f)

	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))
	require.NoError(t, f.ToggleSeat("A1"))
	require.NoError(t, f.RequestConfirm())
	require.Error(t, f.Confirm(context.Background()))

	assert.Equal(t, "Reservation failed. Please try again.", f.ErrorMessage())
}

func TestFlow_DismissConfirmReturnsToSelection(t *testing.T) {
	f := New(&fakeAPI{}, nil)
	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))
	require.NoError(t, f.ToggleSeat("B2"))
	require.NoError(t, f.RequestConfirm())

	f.DismissConfirm()
	assert.Equal(t, StateSeatSelected, f.State())
	assert.Equal(t, []string{"B2"}, f.SelectedSeats())
}

func TestFlow_CloseResetsEverything(t *testing.T) {
	client := &fakeAPI{
		createReservation: func(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error) {
			return nil, errors.New("boom")
		},
	}
	f := New(client, nil)
	clock := &fakeClock{}
	clock.install(f)

	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))
	require.NoError(t, f.ToggleSeat("B2"))
	require.NoError(t, f.RequestConfirm())
	require.Error(t, f.Confirm(context.Background()))
	require.NotEmpty(t, f.ErrorMessage())

	f.Close()
	assert.Equal(t, StateIdle, f.State())
	assert.Nil(t, f.Seats())
	assert.Empty(t, f.ErrorMessage())
	assert.True(t, clock.stopped, "a pending dismiss timer must be stopped on close")

	// A late dismiss firing after close must not crash or resurrect state.
	if clock.callback != nil {
		clock.callback()
	}
	assert.Empty(t, f.ErrorMessage())
}

func TestFlow_ToggleRejectedWhileConfirming(t *testing.T) {
	f := New(&fakeAPI{}, nil)
	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))
	require.NoError(t, f.ToggleSeat("B2"))
	require.NoError(t, f.RequestConfirm())

	assert.ErrorIs(t, f.ToggleSeat("B3"), ErrBadState)
	assert.Equal(t, []string{"B2"}, f.SelectedSeats())
}

func TestFlow_ReopenAfterOpenResets(t *testing.T) {
	f := New(&fakeAPI{}, nil)
	require.NoError(t, f.Open(context.Background(), testMusical(), "user-1"))
	require.NoError(t, f.ToggleSeat("B2"))

	// Opening again (e.g. for another show) starts from a clean board.
	other := testMusical()
	other.ID = 2
	require.NoError(t, f.Open(context.Background(), other, "user-1"))
	assert.Empty(t, f.SelectedSeats())
	assert.Equal(t, StateSeatsReady, f.State())
}

func findSeat(f *Flow, id string) (grid.Seat, bool) {
	for _, s := range f.Seats() {
		if s.ID == id {
			return s, true
		}
	}
	return grid.Seat{}, false
}
