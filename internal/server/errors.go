package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/cv-renderer/internal/acquire"
	"github.com/jonathan/cv-renderer/internal/normalize"
	"github.com/jonathan/cv-renderer/internal/render"
	"github.com/jonathan/cv-renderer/internal/schemas"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
// Bad template sources and malformed CV data are client errors; failures
// inside the merge engine are server errors.
func HTTPStatus(err error) int {
	var invalidInput *normalize.InvalidInputError
	var acquisition *acquire.Error
	var validation *schemas.ValidationError
	var rendering *render.Error

	switch {
	case errors.As(err, &invalidInput),
		errors.As(err, &acquisition),
		errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &rendering):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
