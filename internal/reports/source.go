package reports

import (
	"context"
	"property-backoffice/internal/database"
	"property-backoffice/internal/models"
)

// DBSource reads report data straight from the store
type DBSource struct {
	DB *database.GormDB
}

func (s DBSource) ListAllProperties(ctx context.Context) ([]models.Property, error) {
	return s.DB.ListProperties(ctx, database.PropertyFilter{})
}

func (s DBSource) RentLogsForYear(ctx context.Context, propertyID uint, year int) ([]models.RentLog, error) {
	return s.DB.ListRentLogs(ctx, propertyID, &year)
}

func (s DBSource) PaymentLogsForYear(ctx context.Context, propertyID uint, year int) ([]models.PaymentLog, error) {
	return s.DB.ListPaymentLogs(ctx, propertyID, &year)
}

func (s DBSource) TransactionsFor(ctx context.Context, propertyID uint) ([]models.Transaction, error) {
	return s.DB.ListTransactions(ctx, propertyID)
}
