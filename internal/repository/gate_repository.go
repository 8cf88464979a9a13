package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"parking-gate-service/internal/domain/parking"
)

// GateRepository is the postgres-backed store.
type GateRepository struct {
	db *gorm.DB
}

func NewGateRepository(db *gorm.DB) *GateRepository {
	return &GateRepository{db: db}
}

type reservationRow struct {
	ID             string `gorm:"primaryKey"`
	GuestName      string `gorm:"not null"`
	GuestCount     int    `gorm:"not null"`
	Plates         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CheckInDate    string `gorm:"not null"`
	ParkedCarCount int    `gorm:"not null"`
	Contact        *string
	TableNumber    string
	TableType      string
	TableCount     int
	HasCar         bool
	SeatFee        int64
	Deposit        int64
	TotalCost      int64
	Seq            int64 `gorm:"autoIncrement"`
	CreatedAt      time.Time
}

func (reservationRow) TableName() string { return "reservations" }

type admissionRow struct {
	ID            int64 `gorm:"primaryKey"`
	ReservationID *string
	Plate         string    `gorm:"not null"`
	EntryTime     time.Time `gorm:"not null"`
	FeeCharged    bool      `gorm:"not null"`
	Amount        int64     `gorm:"not null"`
	HandledBy     *string
	CreatedAt     time.Time
}

func (admissionRow) TableName() string { return "admission_records" }

func (r *GateRepository) CreateReservation(ctx context.Context, res *parking.Reservation) error {
	row := reservationRow{
		ID:             res.ID,
		GuestName:      res.GuestName,
		GuestCount:     res.GuestCount,
		Plates:         datatypes.NewJSONSlice(res.Plates),
		CheckInDate:    res.CheckInDate,
		ParkedCarCount: res.ParkedCarCount,
		TableNumber:    res.TableNumber,
		TableType:      string(res.TableType),
		TableCount:     res.TableCount,
		HasCar:         res.HasCar,
		SeatFee:        res.SeatFee,
		Deposit:        res.Deposit,
		TotalCost:      res.TotalCost,
		CreatedAt:      time.Now(),
	}
	if res.Contact != "" {
		row.Contact = &res.Contact
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *GateRepository) FindByPlateFragment(ctx context.Context, fragment string) ([]parking.Reservation, error) {
	var rows []reservationRow
	// jsonb_array_elements_text unnests the registered plates so a plain
	// LIKE can match the fragment anywhere inside a plate.
	err := r.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM jsonb_array_elements_text(plates) AS p WHERE p LIKE ?)", "%"+fragment+"%").
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toReservations(rows), nil
}

func (r *GateRepository) ListReservations(ctx context.Context) ([]parking.Reservation, error) {
	var rows []reservationRow
	err := r.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toReservations(rows), nil
}

func (r *GateRepository) GetReservation(ctx context.Context, id string) (*parking.Reservation, error) {
	var row reservationRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	res := toReservation(row)
	return &res, nil
}

// CreateAdmission inserts the ledger row and, for reservation-bound
// admissions, increments the parked-car count in the same transaction.
func (r *GateRepository) CreateAdmission(ctx context.Context, rec *parking.AdmissionRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rec.ReservationID != nil {
			result := tx.Model(&reservationRow{}).
				Where("id = ?", *rec.ReservationID).
				UpdateColumn("parked_car_count", gorm.Expr("parked_car_count + 1"))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrReservationNotFound
			}
		}

		row := admissionRow{
			ReservationID: rec.ReservationID,
			Plate:         rec.Plate,
			EntryTime:     rec.EntryTime,
			FeeCharged:    rec.FeeCharged,
			Amount:        rec.Amount,
			CreatedAt:     time.Now(),
		}
		if rec.HandledBy != "" {
			row.HandledBy = &rec.HandledBy
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		rec.ID = row.ID
		return nil
	})
}

func (r *GateRepository) RecordsByReservation(ctx context.Context, reservationID string) ([]parking.AdmissionRecord, error) {
	var rows []admissionRow
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("entry_time DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

func (r *GateRepository) ListAdmissions(ctx context.Context) ([]parking.AdmissionRecord, error) {
	var rows []admissionRow
	err := r.db.WithContext(ctx).
		Order("entry_time DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

func toReservation(row reservationRow) parking.Reservation {
	res := parking.Reservation{
		ID:             row.ID,
		GuestName:      row.GuestName,
		GuestCount:     row.GuestCount,
		Plates:         append([]string(nil), row.Plates...),
		CheckInDate:    row.CheckInDate,
		ParkedCarCount: row.ParkedCarCount,
		TableNumber:    row.TableNumber,
		TableType:      parking.TableType(row.TableType),
		TableCount:     row.TableCount,
		HasCar:         row.HasCar,
		SeatFee:        row.SeatFee,
		Deposit:        row.Deposit,
		TotalCost:      row.TotalCost,
	}
	if row.Contact != nil {
		res.Contact = *row.Contact
	}
	return res
}

func toReservations(rows []reservationRow) []parking.Reservation {
	out := make([]parking.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, toReservation(row))
	}
	return out
}

func toRecords(rows []admissionRow) []parking.AdmissionRecord {
	out := make([]parking.AdmissionRecord, 0, len(rows))
	for _, row := range rows {
		rec := parking.AdmissionRecord{
			ID:            row.ID,
			ReservationID: row.ReservationID,
			Plate:         row.Plate,
			EntryTime:     row.EntryTime,
			FeeCharged:    row.FeeCharged,
			Amount:        row.Amount,
		}
		if row.HandledBy != nil {
			rec.HandledBy = *row.HandledBy
		}
		out = append(out, rec)
	}
	return out
}
