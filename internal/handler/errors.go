package handler

import (
	"errors"

	"cambiacartas-api/internal/repository"
	"cambiacartas-api/internal/service"
	"cambiacartas-api/pkg/apierror"

	"github.com/go-playground/validator/v10"
)

// validate is the shared request validator.
var validate = validator.New()

// serviceError maps service and repository errors onto API errors.
// Unknown errors pass through for response.Error to treat as internal.
func serviceError(err error) error {
	var ambiguous *service.AmbiguousError
	if errors.As(err, &ambiguous) {
		return apierror.Ambiguous(ambiguous.Error()).WithData(ambiguous.Candidates)
	}

	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return apierror.InvalidInput(err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return apierror.NotFound("record not found")
	default:
		return err
	}
}

// validationError converts validator failures into a field-level API error.
func validationError(err error) *apierror.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierror.InvalidInput(err.Error())
	}

	details := make([]apierror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apierror.FieldError{
			Field:   fe.Field(),
			Message: "failed validation: " + fe.Tag(),
		})
	}
	return apierror.InvalidInput("request validation failed", details...)
}
