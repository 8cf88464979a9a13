package repository

import (
	"context"
	"errors"

	"parking-gate-service/internal/domain/parking"
)

// ErrReservationNotFound is returned by CreateAdmission when the record
// references a reservation that no longer exists. The commit inserts
// nothing in that case.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationDirectory holds the day's roster. Enumeration order is
// insertion order.
type ReservationDirectory interface {
	CreateReservation(ctx context.Context, res *parking.Reservation) error
	// FindByPlateFragment returns every reservation with at least one
	// registered plate containing fragment as a substring.
	FindByPlateFragment(ctx context.Context, fragment string) ([]parking.Reservation, error)
	ListReservations(ctx context.Context) ([]parking.Reservation, error)
	GetReservation(ctx context.Context, id string) (*parking.Reservation, error)
}

// AdmissionLedger is the append-only record of admitted vehicles.
//
// CreateAdmission assigns the record's id and entry of the ledger; when the
// record carries a reservation id it must also increment that reservation's
// parked-car count, and the two writes must become visible to readers
// together or not at all. Concurrent commits against the same reservation
// serialize so that no increment is lost.
type AdmissionLedger interface {
	CreateAdmission(ctx context.Context, rec *parking.AdmissionRecord) error
	// RecordsByReservation returns the reservation's admissions, most
	// recent first.
	RecordsByReservation(ctx context.Context, reservationID string) ([]parking.AdmissionRecord, error)
	// ListAdmissions returns every record, most recent first.
	ListAdmissions(ctx context.Context) ([]parking.AdmissionRecord, error)
}

// Store is what the admission engine is wired against; a durable backend
// can be substituted without touching the engine.
type Store interface {
	ReservationDirectory
	AdmissionLedger
}
