package services

import (
	"errors"

	"gorm.io/gorm"

	"subtracker/internal/database"
	apperrors "subtracker/internal/errors"
)

// lookupError maps a missing row to notFound and anything else to an internal error.
func lookupError(err error, notFound *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// writeError translates a constraint violation raised by the database into the
// matching AppError. Unclassified errors become internal errors.
func writeError(err error) error {
	v := database.ClassifyError(err)
	if v == nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	switch v.Kind {
	case database.ViolationForeignKey:
		return apperrors.Wrap(apperrors.ErrInvalidReference, v)
	case database.ViolationNotNull, database.ViolationCheck:
		return apperrors.Wrap(apperrors.ErrInvalidInput, v)
	default:
		return apperrors.Wrap(apperrors.ErrConstraintViolation, v)
	}
}

// deleteError translates a failed delete. A foreign key violation means other
// rows still reference the record; nothing cascades.
func deleteError(err error, inUse *apperrors.AppError) error {
	if database.IsViolation(err, database.ViolationForeignKey) {
		return apperrors.Wrap(inUse, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
