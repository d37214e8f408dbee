package lib

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Auth errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrRevokedToken       = errors.New("revoked token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SQLState extracts the SQLSTATE code from either supported driver.
func SQLState(err error) (string, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, true
	}
	var bunErr pgdriver.Error
	if errors.As(err, &bunErr) {
		return bunErr.Field('C'), true
	}
	return "", false
}

// MapDBError maps driver errors onto the package sentinels.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	switch code, _ := SQLState(err); code {
	case "23505": // unique_violation
		return ErrConflict
	case "P0002": // no_data_found
		return ErrNotFound
	}
	return err
}

// IsNotFound reports a missing row, through any wrapping
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
