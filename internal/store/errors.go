package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with a unique index,
// e.g. a duplicate username, email, follow pair or vote pair.
var ErrConflict = errors.New("already exists")

const uniqueViolationCode = "23505"

// conflictOr maps Postgres unique-violation errors to ErrConflict and
// passes everything else through. Unique indexes are the only
// concurrency guard in the system, so the losing insert of a duplicate
// race surfaces here.
func conflictOr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return ErrConflict
	}
	return err
}
