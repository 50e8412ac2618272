package database

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// pqUniqueViolation is the SQLSTATE for unique_violation
const pqUniqueViolation = "23505"

// postgresDialector opens PostgreSQL through the lib/pq database/sql driver
func postgresDialector(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	})
}

// isPQUniqueViolation reports whether err is a lib/pq unique constraint failure.
// gorm's error translation only knows pgx errors, so these arrive untranslated.
func isPQUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}
