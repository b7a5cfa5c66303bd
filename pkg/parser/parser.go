// Package parser converts identifiers received at the HTTP edge into the
// types stored in postgres.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var ErrInvalidID = errors.New("invalid id")

func PgUUIDFromString(id string) (pgtype.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return pgtype.UUID{Bytes: u, Valid: true}, nil
}

// PgUUIDToString formats a stored uuid. NULL uuids are an error.
func PgUUIDToString(id pgtype.UUID) (string, error) {
	if !id.Valid {
		return "", fmt.Errorf("%w: null uuid", ErrInvalidID)
	}
	return uuid.UUID(id.Bytes).String(), nil
}

// PositiveInt32 parses serial primary keys.
func PositiveInt32(id string) (int32, error) {
	n, err := strconv.ParseInt(id, 10, 32)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return int32(n), nil
}
