package repositories

import (
	"errors"

	"mandi/internal/errs"

	"gorm.io/gorm"
)

// ErrStatusChanged is returned by a guarded status update when the stored status no
// longer matches the expected one.
var ErrStatusChanged = errors.New("order status changed concurrently")

// storeErr classifies a driver error. Duplicate keys become conflicts, anything else is opaque.
func storeErr(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict("%s: duplicate record", op)
	}
	return errs.Store(op, err)
}
