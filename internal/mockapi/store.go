// Package mockapi is a self-contained development stand-in for the
// reservation backend.  It serves the same endpoints and fixtures the
// real site was prototyped against, keeping all state in memory, so
// the client can be exercised end to end with nothing else running.
package mockapi

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/CLD-3rd/team2-frontend/internal/model"
)

var (
	// ErrMusicalNotFound means no musical with the given ID exists.
	ErrMusicalNotFound = errors.New("mockapi: musical not found")
	// ErrReservationNotFound means no matching reservation exists.
	ErrReservationNotFound = errors.New("mockapi: reservation not found")
	// ErrSeatTaken means at least one requested seat is already booked.
	ErrSeatTaken = errors.New("mockapi: seat already reserved")
	// ErrSoldOut means the musical has no remaining seats.
	ErrSoldOut = errors.New("mockapi: sold out")
)

// reservationRecord is one stored booking.
type reservationRecord struct {
	ID         string
	MusicalID  uint64
	Date       string
	Seats      []string
	TotalPrice int
	UserID     string
}

// Store holds the mock catalog and all bookings made against it.
type Store struct {
	mu           sync.Mutex
	musicals     []model.Musical
	seats        map[string]map[string]string // musicalID:date -> seatID -> reservationID
	reservations map[string]*reservationRecord
	byUser       map[string]map[uint64]string // userID -> musicalID -> reservationID
}

// NewStore seeds the store with the original five demo musicals and
// their pre-reserved seats.
func NewStore() *Store {
	s := &Store{
		musicals:     seedMusicals(),
		seats:        make(map[string]map[string]string),
		reservations: make(map[string]*reservationRecord),
		byUser:       make(map[string]map[uint64]string),
	}
	for _, m := range s.musicals {
		day := s.seatDay(m.ID, m.Date)
		for _, id := range seedReservedSeats {
			day[id] = "" // seeded bookings belong to nobody
		}
	}
	return s
}

// seedReservedSeats mirrors the hardcoded reserved set of the original
// mock seat page.
var seedReservedSeats = []string{"A5", "A6", "B8", "C3", "C12", "F7", "F8", "G10", "H5", "I9"}

func seedMusicals() []model.Musical {
	return []model.Musical{
		{
			ID: 1, Title: "The Phantom of the Opera", TimeRange: "14:00 ~ 16:30", Date: "2025-07-09",
			Description: "A haunting tale of love, obsession, and music set in the mysterious depths of the Paris Opera House.",
			PosterURL:   "/placeholder.svg?height=200&width=150", Price: 85000, TotalSeats: 50, RemainingSeats: 15,
		},
		{
			ID: 2, Title: "Hamilton", TimeRange: "19:30 ~ 22:00", Date: "2025-07-09",
			Description: "The revolutionary musical about Alexander Hamilton, America's founding father, told through hip-hop and R&B.",
			PosterURL:   "/placeholder.svg?height=200&width=150", Price: 120000, TotalSeats: 60, RemainingSeats: 3,
		},
		{
			ID: 3, Title: "The Lion King", TimeRange: "15:00 ~ 17:30", Date: "2025-07-09",
			Description: "Disney's award-winning musical brings the African savanna to life with stunning costumes and music.",
			PosterURL:   "/placeholder.svg?height=200&width=150", Price: 95000, TotalSeats: 80, RemainingSeats: 28,
		},
		{
			ID: 4, Title: "Wicked", TimeRange: "20:00 ~ 22:45", Date: "2025-07-10",
			Description: "The untold story of the witches of Oz, exploring friendship, love, and the nature of good and evil.",
			PosterURL:   "/placeholder.svg?height=200&width=150", Price: 110000, TotalSeats: 45, RemainingSeats: 0,
		},
		{
			ID: 5, Title: "Chicago", TimeRange: "18:00 ~ 20:15", Date: "2025-07-15",
			Description: "A dazzling musical about fame, fortune, and murder in the jazz age of 1920s Chicago.",
			PosterURL:   "/placeholder.svg?height=200&width=150", Price: 75000, TotalSeats: 55, RemainingSeats: 22,
		},
	}
}

func (s *Store) seatDay(musicalID uint64, date string) map[string]string {
	key := fmt.Sprintf("%d:%s", musicalID, date)
	if s.seats[key] == nil {
		s.seats[key] = make(map[string]string)
	}
	return s.seats[key]
}

// Musicals returns the catalog with the per-user isReserved flag set.
func (s *Store) Musicals(userID string) []model.Musical {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Musical, len(s.musicals))
	copy(out, s.musicals)
	for i := range out {
		out[i].IsReserved = s.byUser[userID][out[i].ID] != ""
	}
	return out
}

// Musical returns one catalog entry.
func (s *Store) Musical(musicalID uint64, userID string) (model.Musical, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.musicals {
		if m.ID == musicalID {
			m.IsReserved = s.byUser[userID][m.ID] != ""
			return m, nil
		}
	}
	return model.Musical{}, ErrMusicalNotFound
}

// ReservedSeatIDs lists the taken seats of a musical for one date.
func (s *Store) ReservedSeatIDs(musicalID uint64, date string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.findLocked(musicalID); err != nil {
		return nil, err
	}
	day := s.seatDay(musicalID, date)
	out := make([]string, 0, len(day))
	for id := range day {
		out = append(out, id)
	}
	return out, nil
}

// Reserve books the requested seats atomically.  All seats must be
// free and the musical must have capacity left.
func (s *Store) Reserve(req model.ReservationRequest) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.findLocked(req.MusicalID)
	if err != nil {
		return nil, err
	}
	if s.musicals[idx].RemainingSeats < len(req.Seats) {
		return nil, ErrSoldOut
	}
	day := s.seatDay(req.MusicalID, req.Date)
	for _, seat := range req.Seats {
		if _, taken := day[seat]; taken {
			return nil, ErrSeatTaken
		}
	}

	rec := &reservationRecord{
		ID:         uuid.NewString(),
		MusicalID:  req.MusicalID,
		Date:       req.Date,
		Seats:      append([]string(nil), req.Seats...),
		TotalPrice: req.TotalPrice,
		UserID:     req.UserID,
	}
	for _, seat := range rec.Seats {
		day[seat] = rec.ID
	}
	s.reservations[rec.ID] = rec
	if s.byUser[req.UserID] == nil {
		s.byUser[req.UserID] = make(map[uint64]string)
	}
	s.byUser[req.UserID][req.MusicalID] = rec.ID
	s.musicals[idx].RemainingSeats -= len(rec.Seats)

	return s.toReservation(rec), nil
}

// Reservation looks up one booking by its ID.
func (s *Store) Reservation(id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return s.toReservation(rec), nil
}

// Cancel removes a booking and frees its seats.  The frontend sends
// the musical ID on the cancel path, so plain numeric IDs are resolved
// through the caller's own reservations first; anything else is
// treated as a reservation ID.
func (s *Store) Cancel(id string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recID := id
	if musicalID, err := strconv.ParseUint(id, 10, 64); err == nil {
		if byMusical := s.byUser[userID][musicalID]; byMusical != "" {
			recID = byMusical
		}
	}
	rec, ok := s.reservations[recID]
	if !ok || rec.UserID != userID {
		return ErrReservationNotFound
	}

	day := s.seatDay(rec.MusicalID, rec.Date)
	for _, seat := range rec.Seats {
		delete(day, seat)
	}
	delete(s.reservations, recID)
	delete(s.byUser[userID], rec.MusicalID)
	if idx, err := s.findLocked(rec.MusicalID); err == nil {
		s.musicals[idx].RemainingSeats += len(rec.Seats)
	}
	return nil
}

func (s *Store) findLocked(musicalID uint64) (int, error) {
	for i, m := range s.musicals {
		if m.ID == musicalID {
			return i, nil
		}
	}
	return 0, ErrMusicalNotFound
}

func (s *Store) toReservation(rec *reservationRecord) *model.Reservation {
	return &model.Reservation{
		ID:         rec.ID,
		MusicalID:  rec.MusicalID,
		Date:       rec.Date,
		Seats:      append([]string(nil), rec.Seats...),
		TotalPrice: rec.TotalPrice,
		UserID:     rec.UserID,
	}
}
