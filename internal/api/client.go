// Package api is the HTTP client for the reservation backend.  It owns
// request plumbing only: URL building, JSON encoding, bearer-token
// attachment and error decoding.  Workflow decisions about what to do
// with a failure live with the callers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/CLD-3rd/team2-frontend/internal/auth"
	"github.com/CLD-3rd/team2-frontend/internal/model"
)

// Error is a non-success HTTP response.  Message carries the
// server-supplied message when the body had one, otherwise a generic
// status-derived fallback.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client talks to the backend under a fixed base URL.  The session
// store supplies the bearer token; a token is attached only when it is
// present and not expired.
type Client struct {
	base    string
	http    *http.Client
	session *auth.Store
}

// NewClient builds a client for the given API base URL (including the
// /api prefix).  The session store must be non-nil.
func NewClient(baseURL string, session *auth.Store) *Client {
	if session == nil {
		panic("nil session store passed to NewClient")
	}
	return &Client{
		base:    baseURL,
		http:    &http.Client{},
		session: session,
	}
}

// do performs one request/response cycle.  body and out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); token != "" && !auth.IsTokenExpired(token) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The backend sends {"message": "..."} on errors; tolerate
		// bodies that are empty or not JSON.
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &Error{Status: resp.StatusCode, Message: payload.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Musicals fetches the full show catalog.
func (c *Client) Musicals(ctx context.Context) ([]model.Musical, error) {
	var out []model.Musical
	if err := c.do(ctx, http.MethodGet, "/musicals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Musical fetches a single show by ID.
func (c *Client) Musical(ctx context.Context, id uint64) (*model.Musical, error) {
	var out model.Musical
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/musicals/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// reservedSeat matches the element shape of the seats endpoint:
// {"reservedSeats": [{"seatId": "C12"}, ...]}.
type reservedSeat struct {
	SeatID string `json:"seatId"`
}

// ReservedSeats fetches the reserved-seat identifiers of a show for
// one performance date (YYYY-MM-DD).
func (c *Client) ReservedSeats(ctx context.Context, musicalID uint64, date string) ([]string, error) {
	var out struct {
		ReservedSeats []reservedSeat `json:"reservedSeats"`
	}
	path := fmt.Sprintf("/musicals/%d/seats?date=%s", musicalID, url.QueryEscape(date))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out.ReservedSeats))
	for _, s := range out.ReservedSeats {
		ids = append(ids, s.SeatID)
	}
	return ids, nil
}

// CreateReservation submits a reservation.
func (c *Client) CreateReservation(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error) {
	var out model.Reservation
	if err := c.do(ctx, http.MethodPost, "/reservations", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reservation fetches a single reservation by ID.
func (c *Client) Reservation(ctx context.Context, id string) (*model.Reservation, error) {
	var out model.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservations/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelReservation deletes a reservation by ID.
func (c *Client) CancelReservation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reservations/"+url.PathEscape(id), nil, nil)
}

// Profile fetches the current session user.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend to drop the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/user/logout", nil, nil)
}

// LoginResponse is the payload of a successful login.
type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
