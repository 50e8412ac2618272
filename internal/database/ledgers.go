package database

import (
	"context"
	"property-backoffice/internal/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerKey is the natural key shared by rent and payment logs
type LedgerKey struct {
	PropertyID uint
	Month      int
	Year       int
}

func (k LedgerKey) validate() error {
	if k.PropertyID == 0 {
		return invalid("property_id", "is required")
	}
	if k.Month == 0 {
		return invalid("month", "is required")
	}
	if k.Month < 1 || k.Month > 12 {
		return invalid("month", "must be between 1 and 12")
	}
	if k.Year == 0 {
		return invalid("year", "is required")
	}
	if k.Year < 1900 || k.Year > 2200 {
		return invalid("year", "is out of range")
	}
	return nil
}

// RentLogInput is a partial rent log write. Nil fields are not touched on merge.
type RentLogInput struct {
	LedgerKey
	RentAmount  *float64
	CheckNumber *string
	Notes       *string
	DepositDate *time.Time
}

// PaymentLogInput is a partial payment log write. Nil fields are not touched on merge.
type PaymentLogInput struct {
	LedgerKey
	PaymentAmount *float64
	CheckNumber   *string
	Notes         *string
	PaymentDate   *time.Time
}

// UpsertRentLog creates the rent log for the key or merges the supplied fields
// into the existing one. An amount or check number without a deposit date stamps
// today's date. The bool result reports whether a new row was created.
func (gdb *GormDB) UpsertRentLog(ctx context.Context, in RentLogInput) (*models.RentLog, bool, error) {
	if err := in.validate(); err != nil {
		return nil, false, err
	}

	row := models.RentLog{PropertyID: in.PropertyID, Month: in.Month, Year: in.Year}
	var columns []string
	if in.RentAmount != nil {
		row.RentAmount = in.RentAmount
		columns = append(columns, "rent_amount")
	}
	if in.CheckNumber != nil {
		row.CheckNumber = *in.CheckNumber
		columns = append(columns, "check_number")
	}
	if in.Notes != nil {
		row.Notes = *in.Notes
		columns = append(columns, "notes")
	}
	switch {
	case in.DepositDate != nil:
		row.DepositDate = in.DepositDate
		columns = append(columns, "deposit_date")
	case in.RentAmount != nil || in.CheckNumber != nil:
		today := gdb.today()
		row.DepositDate = &today
		columns = append(columns, "deposit_date")
	}

	return upsertLedger(ctx, gdb.db, in.LedgerKey, &row, columns)
}

// UpsertPaymentLog is UpsertRentLog for loan payments
func (gdb *GormDB) UpsertPaymentLog(ctx context.Context, in PaymentLogInput) (*models.PaymentLog, bool, error) {
	if err := in.validate(); err != nil {
		return nil, false, err
	}

	row := models.PaymentLog{PropertyID: in.PropertyID, Month: in.Month, Year: in.Year}
	var columns []string
	if in.PaymentAmount != nil {
		row.PaymentAmount = in.PaymentAmount
		columns = append(columns, "payment_amount")
	}
	if in.CheckNumber != nil {
		row.CheckNumber = *in.CheckNumber
		columns = append(columns, "check_number")
	}
	if in.Notes != nil {
		row.Notes = *in.Notes
		columns = append(columns, "notes")
	}
	switch {
	case in.PaymentDate != nil:
		row.PaymentDate = in.PaymentDate
		columns = append(columns, "payment_date")
	case in.PaymentAmount != nil || in.CheckNumber != nil:
		today := gdb.today()
		row.PaymentDate = &today
		columns = append(columns, "payment_date")
	}

	return upsertLedger(ctx, gdb.db, in.LedgerKey, &row, columns)
}

// upsertLedger inserts row or, when the (property_id, month, year) unique index
// already holds a row, assigns only the listed columns. The stored row is re-read
// so callers see merged values.
func upsertLedger[T any](ctx context.Context, db *gorm.DB, key LedgerKey, row *T, columns []string) (*T, bool, error) {
	var stored T
	created := false

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProperty(tx, key.PropertyID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(new(T)).
			Where("property_id = ? AND month = ? AND year = ?", key.PropertyID, key.Month, key.Year).
			Count(&existing).Error; err != nil {
			return err
		}
		created = existing == 0

		onConflict := clause.OnConflict{
			Columns: []clause.Column{{Name: "property_id"}, {Name: "month"}, {Name: "year"}},
		}
		if len(columns) == 0 {
			onConflict.DoNothing = true
		} else {
			onConflict.DoUpdates = clause.AssignmentColumns(append(columns, "updated_at"))
		}
		if err := tx.Clauses(onConflict).Create(row).Error; err != nil {
			return err
		}

		return tx.Where("property_id = ? AND month = ? AND year = ?", key.PropertyID, key.Month, key.Year).
			First(&stored).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

// ListRentLogs returns rent logs of a property, optionally for one year
func (gdb *GormDB) ListRentLogs(ctx context.Context, propertyID uint, year *int) ([]models.RentLog, error) {
	logs := make([]models.RentLog, 0)
	err := ledgerQuery(gdb.db.WithContext(ctx), propertyID, year).Find(&logs).Error
	return logs, err
}

// ListPaymentLogs returns payment logs of a property, optionally for one year
func (gdb *GormDB) ListPaymentLogs(ctx context.Context, propertyID uint, year *int) ([]models.PaymentLog, error) {
	logs := make([]models.PaymentLog, 0)
	err := ledgerQuery(gdb.db.WithContext(ctx), propertyID, year).Find(&logs).Error
	return logs, err
}

func ledgerQuery(db *gorm.DB, propertyID uint, year *int) *gorm.DB {
	query := db.Where("property_id = ?", propertyID)
	if year != nil {
		query = query.Where("year = ?", *year)
	}
	return query.Order("year ASC").Order("month ASC")
}
