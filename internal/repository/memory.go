package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"parking-gate-service/internal/domain/parking"
)

// MemoryStore is the transient in-process store. One RWMutex guards both
// the roster and the ledger, so the two writes inside a commit are never
// observed half-applied.
type MemoryStore struct {
	mu           sync.RWMutex
	reservations []*parking.Reservation
	byID         map[string]*parking.Reservation
	records      []parking.AdmissionRecord
	nextRecordID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:         make(map[string]*parking.Reservation),
		nextRecordID: 1,
	}
}

func (s *MemoryStore) CreateReservation(_ context.Context, res *parking.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[res.ID]; ok {
		return fmt.Errorf("reservation %s already exists", res.ID)
	}

	stored := cloneReservation(res)
	s.reservations = append(s.reservations, stored)
	s.byID[stored.ID] = stored
	return nil
}

func (s *MemoryStore) FindByPlateFragment(_ context.Context, fragment string) ([]parking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []parking.Reservation
	for _, res := range s.reservations {
		for _, plate := range res.Plates {
			if strings.Contains(plate, fragment) {
				matches = append(matches, *cloneReservation(res))
				break
			}
		}
	}
	return matches, nil
}

func (s *MemoryStore) ListReservations(_ context.Context) ([]parking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]parking.Reservation, 0, len(s.reservations))
	for _, res := range s.reservations {
		out = append(out, *cloneReservation(res))
	}
	return out, nil
}

func (s *MemoryStore) GetReservation(_ context.Context, id string) (*parking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.byID[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return cloneReservation(res), nil
}

func (s *MemoryStore) CreateAdmission(_ context.Context, rec *parking.AdmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ReservationID != nil {
		res, ok := s.byID[*rec.ReservationID]
		if !ok {
			return ErrReservationNotFound
		}
		res.ParkedCarCount++
	}

	rec.ID = s.nextRecordID
	s.nextRecordID++
	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) RecordsByReservation(_ context.Context, reservationID string) ([]parking.AdmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []parking.AdmissionRecord
	// Records are stored in creation order; walk backwards for newest first.
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if rec.ReservationID != nil && *rec.ReservationID == reservationID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListAdmissions(_ context.Context) ([]parking.AdmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]parking.AdmissionRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func cloneReservation(res *parking.Reservation) *parking.Reservation {
	c := *res
	c.Plates = append([]string(nil), res.Plates...)
	return &c
}
