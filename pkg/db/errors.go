package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation reports whether the provided error references a unique
// violation. When constraintName is provided, the helper looks for the
// constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}
	msg := err.Error()
	if constraintName == "" {
		return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, sqliteUniquePrefix)
	}
	if strings.Contains(msg, constraintName) {
		return true
	}
	// sqlite names the columns instead: "UNIQUE constraint failed: customers.phone"
	// matches the <table>_<column>_key naming used by the migrations.
	if idx := strings.Index(msg, sqliteUniquePrefix); idx >= 0 {
		column := strings.TrimSpace(msg[idx+len(sqliteUniquePrefix):])
		return strings.ReplaceAll(column, ".", "_")+"_key" == constraintName
	}
	return false
}

const sqliteUniquePrefix = "UNIQUE constraint failed:"

// IsForeignKeyViolation reports whether err is a referential integrity failure.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether err came from a CHECK constraint.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCheckViolation
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}
