package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassification(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}
	serialization := &pgconn.PgError{Code: "40001"}

	if !IsForeignKeyViolation(fk) {
		t.Fatalf("23503 should classify as FK violation")
	}
	if !IsForeignKeyViolation(fmt.Errorf("insert detail: %w", fk)) {
		t.Fatalf("wrapped FK violation should classify")
	}
	if IsForeignKeyViolation(serialization) {
		t.Fatalf("40001 is not an FK violation")
	}

	if !IsSerializationFailure(serialization) {
		t.Fatalf("40001 should classify as serialization failure")
	}
	if !IsSerializationFailure(fmt.Errorf("commit: %w", serialization)) {
		t.Fatalf("wrapped serialization failure should classify")
	}
	if IsSerializationFailure(errors.New("db down")) {
		t.Fatalf("plain errors must not classify")
	}
}
