// Package model defines the value types exchanged with the reservation
// backend.  Field names mirror the JSON the server speaks.  Records are
// validated at the boundary so malformed data fails fast instead of
// propagating into workflow state.
package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for performance dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Validation errors for Musical records.
var (
	ErrMissingTitle   = errors.New("musical: missing title")
	ErrNegativePrice  = errors.New("musical: negative price")
	ErrNegativeSeats  = errors.New("musical: negative seat count")
	ErrSeatsExceedCap = errors.New("musical: remaining seats exceed total seats")
)

// Musical is one performance instance as served by GET /musicals.  The
// list fetched from the catalog endpoint is the single source of truth
// for RemainingSeats and IsReserved; the client never creates or
// deletes these records.
type Musical struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	TimeRange      string `json:"timeRange"` // e.g. "14:00 ~ 16:30"
	Date           string `json:"date"`      // YYYY-MM-DD, may be absent
	Description    string `json:"description"`
	PosterURL      string `json:"posterUrl"`
	Price          int    `json:"price"` // unit price per seat, KRW
	TotalSeats     int    `json:"totalSeats"`
	RemainingSeats int    `json:"remainingSeats"`
	IsReserved     bool   `json:"isReserved"` // reserved by the current user
}

// Validate checks the structural invariants of a Musical.  It does not
// require a date: shows without one are listable but not reservable.
func (m Musical) Validate() error {
	if m.Title == "" {
		return ErrMissingTitle
	}
	if m.Price < 0 {
		return ErrNegativePrice
	}
	if m.RemainingSeats < 0 || m.TotalSeats < 0 {
		return ErrNegativeSeats
	}
	if m.RemainingSeats > m.TotalSeats {
		return ErrSeatsExceedCap
	}
	if m.Date != "" {
		if _, err := time.Parse(DateLayout, m.Date); err != nil {
			return fmt.Errorf("musical: bad date %q: %w", m.Date, err)
		}
	}
	return nil
}

// HasDate reports whether the musical carries a parseable performance
// date.  Opening the reservation dialog requires this.
func (m Musical) HasDate() bool {
	if m.Date == "" {
		return false
	}
	_, err := time.Parse(DateLayout, m.Date)
	return err == nil
}

// ParseDate returns the performance date.  Callers should gate on
// HasDate first; an unparseable date yields an error.
func (m Musical) ParseDate() (time.Time, error) {
	return time.Parse(DateLayout, m.Date)
}

// SoldOut reports whether no seats remain.
func (m Musical) SoldOut() bool {
	return m.RemainingSeats == 0
}

// User is the session user returned by GET /user/me.
type User struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}
