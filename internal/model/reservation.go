package model

import "errors"

// Validation errors for reservation submissions.
var (
	ErrNoSeats       = errors.New("reservation: no seats selected")
	ErrMissingDate   = errors.New("reservation: missing date")
	ErrMissingUserID = errors.New("reservation: missing user id")
)

// ReservationRequest is the body submitted to POST /reservations.  It
// exists only transiently; nothing retains it after the call finishes.
type ReservationRequest struct {
	MusicalID  uint64   `json:"musicalId"`
	Date       string   `json:"date"` // YYYY-MM-DD
	Seats      []string `json:"seats"`
	TotalPrice int      `json:"totalPrice"`
	UserID     string   `json:"userId"`
}

// NewReservationRequest builds a validated submission.  TotalPrice is
// always derived here as len(seats) × unitPrice so the price invariant
// holds by construction and cannot be bypassed by callers.
func NewReservationRequest(musicalID uint64, date string, seats []string, unitPrice int, userID string) (ReservationRequest, error) {
	if date == "" {
		return ReservationRequest{}, ErrMissingDate
	}
	if len(seats) == 0 {
		return ReservationRequest{}, ErrNoSeats
	}
	if userID == "" {
		return ReservationRequest{}, ErrMissingUserID
	}
	if unitPrice < 0 {
		return ReservationRequest{}, ErrNegativePrice
	}
	out := ReservationRequest{
		MusicalID:  musicalID,
		Date:       date,
		Seats:      append([]string(nil), seats...),
		TotalPrice: len(seats) * unitPrice,
		UserID:     userID,
	}
	return out, nil
}

// Reservation is a confirmed booking as returned by the backend.
type Reservation struct {
	ID         string   `json:"id"`
	MusicalID  uint64   `json:"musicalId"`
	Date       string   `json:"date"`
	Seats      []string `json:"seats"`
	TotalPrice int      `json:"totalPrice"`
	UserID     string   `json:"userId"`
}
