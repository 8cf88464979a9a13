package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"parking-gate-service/internal/domain/parking"
	"parking-gate-service/internal/repository"
	"parking-gate-service/internal/utils"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// AdmissionConfig carries the tariff constants the engine depends on.
type AdmissionConfig struct {
	FreeParkingRatio int
	Fee              int64
	SeatFeePerTable  int64
	DepositPerTable  int64
}

// AdmissionService is the decision core: it evaluates scanned plate
// fragments against the day's roster and commits confirmed admissions to
// the ledger. The decision step is advisory; the operator confirms (or
// overrides) the fee before the commit step runs.
type AdmissionService struct {
	store repository.Store
	cfg   AdmissionConfig
	log   zerolog.Logger
}

func NewAdmissionService(store repository.Store, cfg AdmissionConfig, log zerolog.Logger) *AdmissionService {
	return &AdmissionService{
		store: store,
		cfg:   cfg,
		log:   log,
	}
}

// Evaluate runs the read-only decision step for a scanned plate fragment.
// It never mutates state; abandoning the flow after Evaluate leaves the
// directory and ledger untouched.
func (s *AdmissionService) Evaluate(ctx context.Context, fragment string) (*parking.AdmissionDecision, error) {
	normalized := utils.NormalizePlate(fragment)
	if normalized == "" {
		return nil, fmt.Errorf("%w: plate fragment is required", ErrInvalidInput)
	}

	matches, err := s.store.FindByPlateFragment(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to search reservations: %w", err)
	}

	if len(matches) == 0 {
		s.log.Debug().Str("plate", normalized).Msg("no reservation matched, walk-in")
		return &parking.AdmissionDecision{
			Classification: parking.ClassWalkIn,
			ChargeFee:      true,
			Plate:          normalized,
		}, nil
	}

	// First match wins; the match count is surfaced so the console can
	// warn the operator when a short fragment was ambiguous.
	res := matches[0]
	allowance := parking.FreeAllowance(res.GuestCount, s.cfg.FreeParkingRatio)
	current := res.ParkedCarCount

	decision := &parking.AdmissionDecision{
		Reservation:   &res,
		MatchCount:    len(matches),
		Allowance:     allowance,
		CurrentParked: current,
		Plate:         normalized,
	}
	if current < allowance {
		decision.Classification = parking.ClassFree
	} else {
		decision.Classification = parking.ClassPaid
		decision.ChargeFee = true
	}

	history, err := s.store.RecordsByReservation(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load admission history: %w", err)
	}
	for _, rec := range history {
		if rec.Plate == normalized {
			// Advisory only: a returning plate is indistinguishable from
			// a different car sharing the fragment, so it is flagged but
			// never blocked.
			decision.AlreadyAdmitted = true
			break
		}
	}

	s.log.Debug().
		Str("plate", normalized).
		Str("reservation_id", res.ID).
		Str("classification", string(decision.Classification)).
		Int("allowance", allowance).
		Int("current_parked", current).
		Int("match_count", len(matches)).
		Bool("already_admitted", decision.AlreadyAdmitted).
		Msg("evaluated admission")

	return decision, nil
}

// Admit commits one admission: one ledger record plus, for
// reservation-bound admissions, one parked-car-count increment, applied
// atomically by the store. reservationID is empty for walk-ins. chargeFee
// is the operator's final word and is not recomputed here.
func (s *AdmissionService) Admit(ctx context.Context, reservationID, plate string, chargeFee bool, operatorID string) (*parking.AdmissionRecord, error) {
	normalized := utils.NormalizePlate(plate)
	if normalized == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}

	var amount int64
	if chargeFee {
		amount = s.cfg.Fee
	}

	rec := &parking.AdmissionRecord{
		Plate:      normalized,
		EntryTime:  time.Now(),
		FeeCharged: chargeFee,
		Amount:     amount,
		HandledBy:  operatorID,
	}
	if reservationID != "" {
		rec.ReservationID = &reservationID
	}

	if err := s.store.CreateAdmission(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			// The reservation vanished between the decision and the
			// commit. Nothing was written; the caller re-runs Evaluate.
			return nil, fmt.Errorf("%w: reservation %s no longer exists", ErrNotFound, reservationID)
		}
		s.log.Error().
			Err(err).
			Str("plate", normalized).
			Str("reservation_id", reservationID).
			Msg("failed to commit admission")
		return nil, fmt.Errorf("failed to commit admission: %w", err)
	}

	s.log.Info().
		Int64("record_id", rec.ID).
		Str("plate", normalized).
		Str("reservation_id", reservationID).
		Bool("fee_charged", chargeFee).
		Int64("amount", amount).
		Str("operator", operatorID).
		Time("entry_time", rec.EntryTime).
		Msg("admitted vehicle")

	return rec, nil
}

// SearchReservations is the read-only fragment search the roster view uses.
func (s *AdmissionService) SearchReservations(ctx context.Context, fragment string) ([]parking.Reservation, error) {
	normalized := utils.NormalizePlate(fragment)
	if normalized == "" {
		return nil, fmt.Errorf("%w: plate fragment is required", ErrInvalidInput)
	}
	matches, err := s.store.FindByPlateFragment(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to search reservations: %w", err)
	}
	return matches, nil
}

func (s *AdmissionService) ListReservations(ctx context.Context) ([]parking.Reservation, error) {
	return s.store.ListReservations(ctx)
}

// HistoryForReservation returns the reservation's admissions, newest first.
func (s *AdmissionService) HistoryForReservation(ctx context.Context, reservationID string) ([]parking.AdmissionRecord, error) {
	if reservationID == "" {
		return nil, fmt.Errorf("%w: reservation id is required", ErrInvalidInput)
	}
	if _, err := s.store.GetReservation(ctx, reservationID); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, reservationID)
		}
		return nil, err
	}
	return s.store.RecordsByReservation(ctx, reservationID)
}

// RecentAdmissions returns the whole ledger, newest first. Callers
// truncate for display.
func (s *AdmissionService) RecentAdmissions(ctx context.Context) ([]parking.AdmissionRecord, error) {
	return s.store.ListAdmissions(ctx)
}

// ProvisionReservation adds one reservation to the day's roster. Plates
// are normalized the same way scanned fragments are, the id is assigned
// when absent, and the monetary roster fields are derived from the tariff.
func (s *AdmissionService) ProvisionReservation(ctx context.Context, res *parking.Reservation) (*parking.Reservation, error) {
	if res.GuestName == "" {
		return nil, fmt.Errorf("%w: guest name is required", ErrInvalidInput)
	}
	if res.GuestCount <= 0 {
		return nil, fmt.Errorf("%w: guest count must be positive", ErrInvalidInput)
	}

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CheckInDate == "" {
		res.CheckInDate = time.Now().Format("2006-01-02")
	}
	if res.TableCount <= 0 {
		// One table per four guests, same rounding as the free allowance.
		res.TableCount = parking.FreeAllowance(res.GuestCount, 4)
	}
	if res.TableType == "" {
		res.TableType = parking.TableGeneral
	}

	normalized := make([]string, 0, len(res.Plates))
	for _, plate := range res.Plates {
		if p := utils.NormalizePlate(plate); p != "" {
			normalized = append(normalized, p)
		}
	}
	res.Plates = normalized
	res.HasCar = res.HasCar || len(res.Plates) > 0
	res.ParkedCarCount = 0

	res.SeatFee = s.cfg.SeatFeePerTable * int64(res.TableCount)
	res.Deposit = s.cfg.DepositPerTable * int64(res.TableCount)
	res.TotalCost = res.SeatFee + res.Deposit

	if err := s.store.CreateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.log.Info().
		Str("reservation_id", res.ID).
		Str("guest_name", res.GuestName).
		Int("guest_count", res.GuestCount).
		Int("plates", len(res.Plates)).
		Msg("provisioned reservation")

	return res, nil
}
