package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLD-3rd/team2-frontend/internal/api"
	"github.com/CLD-3rd/team2-frontend/internal/auth"
	"github.com/CLD-3rd/team2-frontend/internal/catalog"
	"github.com/CLD-3rd/team2-frontend/internal/model"
)

// fakeBackend implements the API interface with canned data and
// pluggable failures.
type fakeBackend struct {
	musicals      []model.Musical
	musicalsErr   error
	musicalsCalls int

	profile    *model.User
	profileErr error

	cancelErr   error
	cancelledID string

	reservedSeats []string
	createErr     error
	created       []model.ReservationRequest
}

func (f *fakeBackend) Musicals(ctx context.Context) ([]model.Musical, error) {
	f.musicalsCalls++
	if f.musicalsErr != nil {
		return nil, f.musicalsErr
	}
	out := make([]model.Musical, len(f.musicals))
	copy(out, f.musicals)
	return out, nil
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	return &api.LoginResponse{
		Token: liveToken(),
		User:  model.User{ID: "user-1", Nickname: "John Doe", Email: email},
	}, nil
}

func (f *fakeBackend) Profile(ctx context.Context) (*model.User, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeBackend) Logout(ctx context.Context) error { return nil }

func (f *fakeBackend) CancelReservation(ctx context.Context, id string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelledID = id
	return nil
}

func (f *fakeBackend) ReservedSeats(ctx context.Context, musicalID uint64, date string) ([]string, error) {
	return f.reservedSeats, nil
}

func (f *fakeBackend) CreateReservation(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &model.Reservation{ID: "res-1"}, nil
}

func liveToken() string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := tok.SignedString([]byte("test-secret"))
	return signed
}

func fixtures() []model.Musical {
	return []model.Musical{
		{ID: 1, Title: "Phantom", Date: "2025-07-09", Price: 85000, TotalSeats: 50, RemainingSeats: 15},
		{ID: 2, Title: "Hamilton", Date: "2025-07-10", Price: 120000, TotalSeats: 60, RemainingSeats: 3, IsReserved: true},
	}
}

// loggedInApp builds a controller with an active session and a loaded
// catalog.
func loggedInApp(t *testing.T, backend *fakeBackend) *App {
	t.Helper()
	session := auth.NewStore("")
	require.NoError(t, session.SetSession(liveToken(), "user-1"))
	a := New(backend, session)
	backend.profile = &model.User{ID: "user-1", Nickname: "John Doe"}
	a.CheckAuth(context.Background())
	require.True(t, a.LoggedIn())
	require.NoError(t, a.RefreshCatalog(context.Background()))
	return a
}

func TestCheckAuth(t *testing.T) {
	t.Run("no token stays logged out", func(t *testing.T) {
		a := New(&fakeBackend{}, auth.NewStore(""))
		a.CheckAuth(context.Background())
		assert.False(t, a.LoggedIn())
		assert.Nil(t, a.User())
	})

	t.Run("profile fetch failure drops the session", func(t *testing.T) {
		backend := &fakeBackend{profileErr: errors.New("401")}
		session := auth.NewStore("")
		require.NoError(t, session.SetSession(liveToken(), "user-1"))

		a := New(backend, session)
		a.CheckAuth(context.Background())
		assert.False(t, a.LoggedIn())
		assert.Empty(t, session.Token(), "the dead session must be cleared client-side")
	})

	t.Run("valid session restores the user", func(t *testing.T) {
		backend := &fakeBackend{profile: &model.User{ID: "user-1", Nickname: "John Doe"}}
		session := auth.NewStore("")
		require.NoError(t, session.SetSession(liveToken(), "user-1"))

		a := New(backend, session)
		a.CheckAuth(context.Background())
		assert.True(t, a.LoggedIn())
		assert.Equal(t, "John Doe", a.User().Nickname)
	})
}

func TestLoginStoresSession(t *testing.T) {
	session := auth.NewStore("")
	a := New(&fakeBackend{}, session)
	require.NoError(t, a.Login(context.Background(), "john.doe@example.com", "pw"))
	assert.True(t, a.LoggedIn())
	assert.True(t, session.Authenticated())
	assert.Equal(t, "user-1", session.UserID())
}

func TestLogoutRevertsMyReservationsMode(t *testing.T) {
	backend := &fakeBackend{musicals: fixtures()}
	a := loggedInApp(t, backend)
	require.NoError(t, a.ChangeSort(context.Background(), catalog.SortMyReservations))

	a.Logout(context.Background())
	assert.False(t, a.LoggedIn())
	assert.Equal(t, catalog.SortNewest, a.SortMode())
}

func TestChangeSortRefetchesCatalog(t *testing.T) {
	backend := &fakeBackend{musicals: fixtures()}
	a := loggedInApp(t, backend)

	before := backend.musicalsCalls
	require.NoError(t, a.ChangeSort(context.Background(), catalog.SortMostReserved))
	assert.Equal(t, before+1, backend.musicalsCalls, "every sort change re-fetches the catalog")
}

func TestChangeSortMyReservationsRequiresLogin(t *testing.T) {
	a := New(&fakeBackend{}, auth.NewStore(""))
	assert.ErrorIs(t, a.ChangeSort(context.Background(), catalog.SortMyReservations), ErrNotLoggedIn)
}

func TestRefreshCatalogDropsMalformedRecords(t *testing.T) {
	backend := &fakeBackend{musicals: append(fixtures(),
		model.Musical{ID: 9, Title: "", Price: 1000, TotalSeats: 10, RemainingSeats: 5})}
	a := loggedInApp(t, backend)
	assert.Len(t, a.Visible(), 2)
}

func TestReserveScenario(t *testing.T) {
	backend := &fakeBackend{musicals: fixtures()}
	a := loggedInApp(t, backend)

	flow, err := a.OpenReservation(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, flow.ToggleSeat("C12"))
	require.NoError(t, flow.RequestConfirm())

	// After the success callback the server hands back the new truth.
	backend.musicals[0].RemainingSeats = 14
	backend.musicals[0].IsReserved = true
	backend.reservedSeats = []string{"C12"}

	require.NoError(t, flow.Confirm(context.Background()))

	var phantom model.Musical
	for _, m := range a.Visible() {
		if m.ID == 1 {
			phantom = m
		}
	}
	assert.Equal(t, 14, phantom.RemainingSeats)
	assert.True(t, phantom.IsReserved)

	require.Len(t, backend.created, 1)
	assert.Equal(t, []string{"C12"}, backend.created[0].Seats)
	assert.Equal(t, 85000, backend.created[0].TotalPrice)
	assert.Equal(t, "user-1", backend.created[0].UserID)
}

func TestOpenReservationGuards(t *testing.T) {
	backend := &fakeBackend{musicals: fixtures()}
	a := loggedInApp(t, backend)

	_, err := a.OpenReservation(context.Background(), 99)
	assert.ErrorIs(t, err, ErrMusicalNotFound)

	_, err = a.OpenReservation(context.Background(), 2)
	assert.ErrorIs(t, err, ErrAlreadyReserved)

	loggedOut := New(backend, auth.NewStore(""))
	_, err = loggedOut.OpenReservation(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCancelScenario(t *testing.T) {
	backend := &fakeBackend{musicals: fixtures()}
	a := loggedInApp(t, backend)
	require.NoError(t, a.ChangeSort(context.Background(), catalog.SortMyReservations))
	require.Len(t, a.Visible(), 1)

	// The server reflects the cancellation on the next fetch.
	backend.musicals[1].RemainingSeats = 4
	backend.musicals[1].IsReserved = false

	require.NoError(t, a.CancelReservation(context.Background(), 2))
	assert.Equal(t, "2", backend.cancelledID)
	assert.Equal(t, "Reservation cancelled.", a.TakeNotice())
	assert.Empty(t, a.TakeNotice(), "the notice is consumed once")

	// The cancelled show drops out of the my-reservations view.
	assert.Empty(t, a.Visible())
}

func TestCancelFailureIsSilent(t *testing.T) {
	backend := &fakeBackend{musicals: fixtures(), cancelErr: errors.New("500")}
	a := loggedInApp(t, backend)

	err := a.CancelReservation(context.Background(), 2)
	assert.NoError(t, err, "cancellation failures close the dialog without surfacing an error")
	assert.Empty(t, a.TakeNotice())

	// Nothing was touched locally.
	for _, m := range a.Visible() {
		if m.ID == 2 {
			assert.True(t, m.IsReserved)
			assert.Equal(t, 3, m.RemainingSeats)
		}
	}
}

func TestCancelGuards(t *testing.T) {
	backend := &fakeBackend{musicals: fixtures()}
	a := loggedInApp(t, backend)

	assert.ErrorIs(t, a.CancelReservation(context.Background(), 1), ErrNotReserved)
	assert.ErrorIs(t, a.CancelReservation(context.Background(), 99), ErrMusicalNotFound)
}
