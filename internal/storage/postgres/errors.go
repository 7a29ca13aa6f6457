package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

// storageFailure классифицирует ошибку драйвера в диагностический код
// делегата. Классификация одношаговая: код SQLSTATE смотрится один раз,
// повторных попыток и ретраев здесь нет.
func storageFailure(op string, err error) *domain.StorageError {
	return domain.NewStorageError(classifyCode(err), op, err)
}

// notFound помечает отсутствие затронутой строки.
func notFound(format string, args ...any) *domain.StorageError {
	return domain.NewStorageError(domain.CodeNotFound, fmt.Sprintf(format, args...), nil)
}

func classifyCode(err error) domain.DiagnosticCode {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CodeNotFound
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return domain.CodeConnection
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return domain.CodeUniqueViolation
		case strings.HasPrefix(pgErr.Code, "22"), // data exception
			strings.HasPrefix(pgErr.Code, "23"), // integrity constraint
			strings.HasPrefix(pgErr.Code, "42"): // syntax or access rule
			return domain.CodeInvalid
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			strings.HasPrefix(pgErr.Code, "53"), // insufficient resources
			strings.HasPrefix(pgErr.Code, "57"): // operator intervention
			return domain.CodeConnection
		default:
			return domain.CodeOther
		}
	}

	return domain.CodeOther
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
