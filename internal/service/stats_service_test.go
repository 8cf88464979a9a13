package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"parking-gate-service/internal/repository"
)

func TestDailyStatsEmpty(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewStatsService(store, store, zerolog.Nop())

	stats, err := svc.DailyStats(context.Background())
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.TotalReservations != 0 || stats.TotalGuests != 0 || stats.CurrentParked != 0 || stats.TotalRevenue != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}
}

func TestDailyStatsMatchesLedger(t *testing.T) {
	admissions, store := newTestService(t)
	stats := NewStatsService(store, store, zerolog.Nop())
	ctx := context.Background()

	seedReservation(t, store, "res-1", 8, "12가3456")
	seedReservation(t, store, "res-2", 3, "78나9999")

	if _, err := admissions.Admit(ctx, "res-1", "12가3456", false, "op-1"); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if _, err := admissions.Admit(ctx, "res-1", "34나5678", true, "op-1"); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if _, err := admissions.Admit(ctx, "", "33마4444", true, "op-2"); err != nil {
		t.Fatalf("Admit: %v", err)
	}

	got, err := stats.DailyStats(ctx)
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if got.TotalReservations != 2 {
		t.Errorf("total reservations = %d, want 2", got.TotalReservations)
	}
	if got.TotalGuests != 11 {
		t.Errorf("total guests = %d, want 11", got.TotalGuests)
	}

	// The ledger is the sole source of truth for parked count and revenue.
	records, _ := store.ListAdmissions(ctx)
	var revenue int64
	for _, rec := range records {
		revenue += rec.Amount
	}
	if got.CurrentParked != len(records) {
		t.Errorf("current parked = %d, want ledger size %d", got.CurrentParked, len(records))
	}
	if got.TotalRevenue != revenue {
		t.Errorf("total revenue = %d, want ledger sum %d", got.TotalRevenue, revenue)
	}
	if got.TotalRevenue != 40000 {
		t.Errorf("total revenue = %d, want 40000", got.TotalRevenue)
	}
}
