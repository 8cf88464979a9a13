package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"parking-gate-service/internal/domain/parking"
	"parking-gate-service/internal/repository"
)

var tableTypes = []parking.TableType{parking.TableGeneral, parking.TablePet, parking.TableGroup}

const plateLetters = "가나다라마바사아자차"

// SeedDemoRoster provisions a demo day roster, roughly mirroring a real
// day: parties of 2 to 12 guests, one table per four guests, most parties
// arriving by car with one registered plate per table. The first
// reservation always registers the plate 12가3456 so the gate console can
// be exercised with a known number.
func SeedDemoRoster(ctx context.Context, store repository.ReservationDirectory, cfg SeedConfig) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	today := time.Now().Format("2006-01-02")

	for i := 1; i <= cfg.Count; i++ {
		guestCount := rng.Intn(11) + 2
		tableCount := (guestCount + 3) / 4

		hasCar := rng.Float64() > 0.1
		var plates []string
		if hasCar {
			for k := 0; k < tableCount; k++ {
				plates = append(plates, randomPlate(rng))
			}
		}
		if i == 1 {
			plates = append(plates, "12가3456")
		}

		seatFee := cfg.SeatFeePerTable * int64(tableCount)
		deposit := cfg.DepositPerTable * int64(tableCount)

		res := &parking.Reservation{
			ID:          uuid.NewString(),
			GuestName:   fmt.Sprintf("김철수%d", i),
			GuestCount:  guestCount,
			Plates:      plates,
			CheckInDate: today,
			Contact:     fmt.Sprintf("010-1234-%04d", 1000+i),
			TableNumber: fmt.Sprintf("%d", i),
			TableType:   tableTypes[rng.Intn(len(tableTypes))],
			TableCount:  tableCount,
			HasCar:      hasCar,
			SeatFee:     seatFee,
			Deposit:     deposit,
			TotalCost:   seatFee + deposit,
		}
		if err := store.CreateReservation(ctx, res); err != nil {
			return fmt.Errorf("seed reservation %d: %w", i, err)
		}
	}
	return nil
}

type SeedConfig struct {
	Count           int
	SeatFeePerTable int64
	DepositPerTable int64
}

func randomPlate(rng *rand.Rand) string {
	letters := []rune(plateLetters)
	letter := letters[rng.Intn(len(letters))]
	return fmt.Sprintf("%02d%c%04d", rng.Intn(90)+10, letter, rng.Intn(9000)+1000)
}
