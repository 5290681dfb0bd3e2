package repository

import (
	"errors"

	"gorm.io/gorm"
)

// found turns gorm's not-found error into a nil record.
func found[T any](rec *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// errIsDuplicate reports a unique index violation. It relies on the
// connection being opened with TranslateError.
func errIsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
