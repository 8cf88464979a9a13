package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"parking-gate-service/internal/domain/parking"
	"parking-gate-service/internal/repository"
)

// StatsService derives the daily totals from the roster and the ledger on
// demand. It holds no state and never caches across calls.
type StatsService struct {
	dir    repository.ReservationDirectory
	ledger repository.AdmissionLedger
	log    zerolog.Logger
}

func NewStatsService(dir repository.ReservationDirectory, ledger repository.AdmissionLedger, log zerolog.Logger) *StatsService {
	return &StatsService{
		dir:    dir,
		ledger: ledger,
		log:    log,
	}
}

func (s *StatsService) DailyStats(ctx context.Context) (*parking.DailyStats, error) {
	reservations, err := s.dir.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	records, err := s.ledger.ListAdmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}

	stats := &parking.DailyStats{
		TotalReservations: len(reservations),
		// No exit model: every admission ever recorded still counts as
		// parked.
		CurrentParked: len(records),
	}
	for _, res := range reservations {
		stats.TotalGuests += res.GuestCount
	}
	for _, rec := range records {
		stats.TotalRevenue += rec.Amount
	}
	return stats, nil
}
