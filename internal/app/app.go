// Package app is the top-level page controller.  It owns the musical
// list and the session flags, and funnels every state change through a
// named action so the reconciliation rules stay auditable.  Workflows
// report back via callbacks; nothing else writes the list.
package app

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/CLD-3rd/team2-frontend/internal/api"
	"github.com/CLD-3rd/team2-frontend/internal/auth"
	"github.com/CLD-3rd/team2-frontend/internal/booking"
	"github.com/CLD-3rd/team2-frontend/internal/catalog"
	"github.com/CLD-3rd/team2-frontend/internal/model"
)

var (
	// ErrMusicalNotFound means the acted-on show is not in the list.
	ErrMusicalNotFound = errors.New("app: musical not found")
	// ErrNotReserved means a cancel was requested for a show the user
	// has not reserved.
	ErrNotReserved = errors.New("app: musical is not reserved")
	// ErrAlreadyReserved means a reserve was requested for a show the
	// user already holds; the UI offers cancellation instead.
	ErrAlreadyReserved = errors.New("app: musical already reserved")
	// ErrNotLoggedIn gates actions that need a session.
	ErrNotLoggedIn = errors.New("app: not logged in")
)

// API is everything the controller needs from the backend client.
// *api.Client satisfies it.
type API interface {
	Musicals(ctx context.Context) ([]model.Musical, error)
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Profile(ctx context.Context) (*model.User, error)
	Logout(ctx context.Context) error
	CancelReservation(ctx context.Context, id string) error
	booking.API
}

// App holds the client-side application state.
type App struct {
	client  API
	session *auth.Store
	now     func() time.Time

	user     *model.User
	loggedIn bool
	musicals []model.Musical
	sortMode catalog.SortMode
	notice   string
}

// New builds a controller starting logged out, with an empty list and
// the newest-first sort mode.
func New(client API, session *auth.Store) *App {
	if client == nil || session == nil {
		panic("nil dependency passed to app.New")
	}
	return &App{
		client:   client,
		session:  session,
		now:      time.Now,
		sortMode: catalog.SortNewest,
	}
}

// CheckAuth restores the session on page load.  A failed profile fetch
// logs the user out client-side; there is no special 401 handling.
func (a *App) CheckAuth(ctx context.Context) {
	if !a.session.Authenticated() {
		a.logoutLocal()
		return
	}
	user, err := a.client.Profile(ctx)
	if err != nil {
		log.Printf("app: profile fetch failed, dropping session: %v", err)
		a.logoutLocal()
		return
	}
	a.user = user
	a.loggedIn = true
}

// Login exchanges credentials for a session and stores the token.
func (a *App) Login(ctx context.Context, email, password string) error {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.session.SetSession(res.Token, res.User.ID); err != nil {
		return err
	}
	u := res.User
	a.user = &u
	a.loggedIn = true
	return nil
}

// Logout clears the session on both sides.  The local session is
// dropped even when the backend call fails, and an active
// my-reservations view reverts to newest.
func (a *App) Logout(ctx context.Context) {
	if err := a.client.Logout(ctx); err != nil {
		log.Printf("app: logout request failed: %v", err)
	}
	a.logoutLocal()
}

func (a *App) logoutLocal() {
	if err := a.session.Clear(); err != nil {
		log.Printf("app: clearing session failed: %v", err)
	}
	a.user = nil
	a.loggedIn = false
	if a.sortMode == catalog.SortMyReservations {
		a.sortMode = catalog.SortNewest
	}
}

// RefreshCatalog replaces the musical list with the server's current
// view.  Records that fail validation are dropped with a log line so
// one malformed row cannot poison the page.
func (a *App) RefreshCatalog(ctx context.Context) error {
	list, err := a.client.Musicals(ctx)
	if err != nil {
		log.Printf("app: catalog fetch failed: %v", err)
		return err
	}
	valid := make([]model.Musical, 0, len(list))
	for _, m := range list {
		if err := m.Validate(); err != nil {
			log.Printf("app: dropping malformed musical %d: %v", m.ID, err)
			continue
		}
		valid = append(valid, m)
	}
	a.musicals = valid
	return nil
}

// ChangeSort switches the listing mode.  The catalog is re-fetched on
// every change rather than re-sorting a cached copy, so sorting also
// refreshes reservation state.  On fetch failure the previous list
// stays visible under the new mode.
func (a *App) ChangeSort(ctx context.Context, mode catalog.SortMode) error {
	if mode == catalog.SortMyReservations && !a.loggedIn {
		return ErrNotLoggedIn
	}
	a.sortMode = mode
	return a.RefreshCatalog(ctx)
}

// Visible recomputes the rendered list from the authoritative one on
// every call; nothing is cached.
func (a *App) Visible() []model.Musical {
	return catalog.Sort(a.musicals, a.sortMode, a.now())
}

// OpenReservation starts the seat-selection flow for one show.  The
// flow's success callback feeds ApplyReservationSuccess so the list is
// reconciled without the flow touching it directly.
func (a *App) OpenReservation(ctx context.Context, musicalID uint64) (*booking.Flow, error) {
	if !a.loggedIn {
		return nil, ErrNotLoggedIn
	}
	m, ok := a.find(musicalID)
	if !ok {
		return nil, ErrMusicalNotFound
	}
	if m.IsReserved {
		return nil, ErrAlreadyReserved
	}
	flow := booking.New(a.client, func(seatID string) {
		a.ApplyReservationSuccess(context.Background(), musicalID, seatID)
	})
	if err := flow.Open(ctx, m, a.session.UserID()); err != nil {
		return nil, err
	}
	return flow, nil
}

// ApplyReservationSuccess reconciles the list after a booking went
// through: an optimistic delta first, then the authoritative re-fetch.
// When they disagree the fetched state wins.  A slow concurrent fetch
// can still overwrite the delta; that race is accepted, see DESIGN.md.
func (a *App) ApplyReservationSuccess(ctx context.Context, musicalID uint64, seatID string) {
	for i := range a.musicals {
		if a.musicals[i].ID == musicalID {
			a.musicals[i].IsReserved = true
			if a.musicals[i].RemainingSeats > 0 {
				a.musicals[i].RemainingSeats--
			}
			break
		}
	}
	log.Printf("app: seat %s reserved for musical %d", seatID, musicalID)
	if err := a.RefreshCatalog(ctx); err != nil {
		log.Printf("app: post-reservation refresh failed, keeping optimistic state: %v", err)
	}
}

// CancelReservation reverses a booking after the user confirmed the
// yes/no prompt.  Success applies the optimistic delta, leaves a
// notice and re-fetches; under my-reservations the show then drops out
// of the visible list on the next recompute.  Failures are logged
// only: the confirmation dialog closes with no user-facing error,
// matching the site's long-standing behavior.
func (a *App) CancelReservation(ctx context.Context, musicalID uint64) error {
	if !a.loggedIn {
		return ErrNotLoggedIn
	}
	m, ok := a.find(musicalID)
	if !ok {
		return ErrMusicalNotFound
	}
	if !m.IsReserved {
		return ErrNotReserved
	}
	if err := a.client.CancelReservation(ctx, strconv.FormatUint(musicalID, 10)); err != nil {
		log.Printf("app: cancellation failed for musical %d: %v", musicalID, err)
		return nil
	}
	for i := range a.musicals {
		if a.musicals[i].ID == musicalID {
			a.musicals[i].IsReserved = false
			a.musicals[i].RemainingSeats++
			break
		}
	}
	a.notice = "Reservation cancelled."
	if err := a.RefreshCatalog(ctx); err != nil {
		log.Printf("app: post-cancellation refresh failed, keeping optimistic state: %v", err)
	}
	return nil
}

// TakeNotice returns the pending confirmation notice and clears it.
func (a *App) TakeNotice() string {
	n := a.notice
	a.notice = ""
	return n
}

// User returns the session user, or nil when logged out.
func (a *App) User() *model.User { return a.user }

// LoggedIn reports whether a session is active.
func (a *App) LoggedIn() bool { return a.loggedIn }

// SortMode returns the active listing mode.
func (a *App) SortMode() catalog.SortMode { return a.sortMode }

func (a *App) find(musicalID uint64) (model.Musical, bool) {
	for _, m := range a.musicals {
		if m.ID == musicalID {
			return m, true
		}
	}
	return model.Musical{}, false
}
