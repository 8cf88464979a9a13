package parking

import (
	"time"
)

// TableType is the closed set of table categories a reservation can book.
type TableType string

const (
	TableGeneral TableType = "GENERAL"
	TablePet     TableType = "PET"
	TableGroup   TableType = "GROUP"
)

// Reservation is a booked party for the current day. Everything except
// ParkedCarCount is fixed at day-start provisioning; ParkedCarCount only
// ever grows, one increment per committed admission (there is no exit
// model, so it never decreases).
type Reservation struct {
	ID             string    `json:"id"`
	GuestName      string    `json:"guest_name"`
	GuestCount     int       `json:"guest_count"`
	Plates         []string  `json:"plates"`
	CheckInDate    string    `json:"check_in_date"`
	ParkedCarCount int       `json:"parked_car_count"`
	Contact        string    `json:"contact,omitempty"`
	TableNumber    string    `json:"table_number"`
	TableType      TableType `json:"table_type"`
	TableCount     int       `json:"table_count"`
	HasCar         bool      `json:"has_car"`
	SeatFee        int64     `json:"seat_fee"`
	Deposit        int64     `json:"deposit"`
	TotalCost      int64     `json:"total_cost"`
}

// AdmissionRecord is one immutable ledger entry: a plate was admitted at a
// point in time. ReservationID is nil for walk-ins. IDs are issued by the
// store and strictly ordered by creation.
type AdmissionRecord struct {
	ID            int64     `json:"id"`
	ReservationID *string   `json:"reservation_id"`
	Plate         string    `json:"plate"`
	EntryTime     time.Time `json:"entry_time"`
	FeeCharged    bool      `json:"fee_charged"`
	Amount        int64     `json:"amount"`
	HandledBy     string    `json:"handled_by,omitempty"`
}

// Classification is the terminal outcome of the decision step.
type Classification string

const (
	ClassFree   Classification = "FREE"
	ClassPaid   Classification = "PAID"
	ClassWalkIn Classification = "WALK_IN"
)

// AdmissionDecision is the advisory result of evaluating a scanned plate
// fragment. It carries everything the gate operator needs to confirm or
// override the recommendation; committing is a separate step.
type AdmissionDecision struct {
	Classification  Classification `json:"classification"`
	Reservation     *Reservation   `json:"reservation,omitempty"`
	MatchCount      int            `json:"match_count"`
	Allowance       int            `json:"allowance"`
	CurrentParked   int            `json:"current_parked"`
	ChargeFee       bool           `json:"charge_fee"`
	AlreadyAdmitted bool           `json:"already_admitted"`
	Plate           string         `json:"plate"`
}

// DailyStats is a projection over the roster and the ledger, recomputed on
// every request and never stored.
type DailyStats struct {
	TotalReservations int   `json:"total_reservations"`
	TotalGuests       int   `json:"total_guests"`
	CurrentParked     int   `json:"current_parked"`
	TotalRevenue      int64 `json:"total_revenue"`
}

// FreeAllowance returns how many cars a party of guestCount may park free
// of charge: one free car per ratio guests, rounded up.
func FreeAllowance(guestCount, ratio int) int {
	if guestCount <= 0 || ratio <= 0 {
		return 0
	}
	return (guestCount + ratio - 1) / ratio
}
