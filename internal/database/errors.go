package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errorMap = map[string]string{
	//UniqueViolation
	"23505": "já está em uso",
	//NotNullViolation
	"23502": "não pode ser nulo",
	//ForeignKeyViolation
	"23503": "referencia um registro inexistente",
	//CheckViolation
	"23514": "possui um valor invalido",
}

// GetError turns a constraint violation into a validation error naming the
// offending column.
func GetError(err *pgconn.PgError, constraint string) *rest.ApiErr {
	columnName := columnOf(err, constraint)
	if message, ok := errorMap[err.Code]; ok {
		fmtMsg := fmt.Sprintf("%s %s", columnName, message)
		cause := rest.Causes{
			Field:   columnName,
			Message: fmtMsg,
		}
		return rest.NewBadRequestValidationError(fmtMsg, []rest.Causes{cause})
	}
	if IsUnavailable(err) {
		return rest.NewServiceUnavailableError("banco de dados indisponivel")
	}
	return rest.NewInternalServerError("erro ao inserir dados")
}

// columnOf prefers the column reported by the server and otherwise decodes
// constraint names of the form table_column_suffix.
func columnOf(err *pgconn.PgError, constraint string) string {
	if err.ColumnName != "" {
		return err.ColumnName
	}
	name := constraint
	for _, suffix := range []string{"_fkey", "_key", "_check", "_pkey"} {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	if err.TableName != "" && strings.HasPrefix(name, err.TableName+"_") {
		return strings.TrimPrefix(name, err.TableName+"_")
	}
	parts := strings.Split(constraint, "_")
	if len(parts) >= 3 {
		return parts[1]
	}
	return ""
}

// IsUnavailable reports whether err means the database could not be reached
// or is refusing work, as opposed to rejecting the statement itself.
func IsUnavailable(err error) bool {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection_exception
			return true
		case strings.HasPrefix(pgErr.Code, "53"): // insufficient_resources
			return true
		case strings.HasPrefix(pgErr.Code, "57P"): // operator intervention
			return true
		}
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}
