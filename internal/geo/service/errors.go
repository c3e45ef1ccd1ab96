package service

import (
	"context"
	"errors"
	"strings"

	"geoatlas/internal/geo/domain"
	pkgerrors "geoatlas/pkg/errors"
	pkgrepo "geoatlas/pkg/repository"
)

// translate maps repository and domain failures onto error codes.
// notFound is the code reported when a staged update or delete matched no row.
// Cancellation is checked before store faults so the two stay distinct.
func translate(err error, notFound pkgerrors.ErrorCode) error {
	if err == nil {
		return nil
	}
	var coded *pkgerrors.Error
	if errors.As(err, &coded) {
		return err
	}

	var validation *domain.ValidationError
	var argument *pkgrepo.ArgumentError
	switch {
	case errors.As(err, &validation):
		return pkgerrors.ValidationError(validation.Field, validation.Reason)
	case errors.As(err, &argument):
		return pkgerrors.ValidationError(argument.Param, argument.Reason)
	case errors.Is(err, context.Canceled):
		return pkgerrors.Wrap(err, pkgerrors.RequestCanceled).WithMessage(pkgerrors.RequestCanceled.Message())
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.Wrap(err, pkgerrors.Timeout).WithMessage(pkgerrors.Timeout.Message())
	case pkgrepo.IsNotFoundError(err):
		return pkgerrors.Wrap(err, notFound).WithMessage(notFound.Message())
	case pkgrepo.IsConflictError(err):
		return pkgerrors.Wrap(err, pkgerrors.DataIntegrityError).WithMessage("write conflicts with stored data")
	case errors.Is(err, pkgrepo.ErrAmbiguousName):
		return pkgerrors.Wrap(err, pkgerrors.AmbiguousName).WithMessage(pkgerrors.AmbiguousName.Message())
	case errors.Is(err, pkgrepo.ErrTransactionFailed):
		return pkgerrors.Wrap(err, pkgerrors.TransactionFailed).WithMessage(pkgerrors.TransactionFailed.Message())
	default:
		return pkgerrors.Wrap(err, pkgerrors.DatabaseError).WithMessage(pkgerrors.DatabaseError.Message())
	}
}

func requireID(field string, id int64) error {
	if id <= 0 {
		return pkgerrors.ValidationError(field, "must be positive")
	}
	return nil
}

func requireName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.ValidationError(field, "must not be empty")
	}
	return name, nil
}

func notFoundCode(kind domain.Kind) pkgerrors.ErrorCode {
	switch kind {
	case domain.KindContinent:
		return pkgerrors.ContinentNotFound
	case domain.KindCountry:
		return pkgerrors.CountryNotFound
	case domain.KindProvince:
		return pkgerrors.ProvinceNotFound
	case domain.KindCity:
		return pkgerrors.CityNotFound
	default:
		return pkgerrors.NotFound
	}
}
