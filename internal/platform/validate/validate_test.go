// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package validate

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
)

func TestValidatorAccumulatesFieldErrors(t *testing.T) {
	validator := &Validator{}
	validator.Required("username", "").
		MaxLen("bio", "this is fine", 500).
		MinLen("password", "short", 8)

	err := validator.Err()
	require.Error(t, err)

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
	assert.Len(t, appError.Details, 2)
}

func TestValidatorPassesCleanInput(t *testing.T) {
	validator := &Validator{}
	validator.Required("username", "amara").
		Email("email", "amara@gov.example").
		Range("page", 3, 1, 100).
		OneOf("preference", "digest", "all", "digest", "none")

	assert.NoError(t, validator.Err())
	assert.False(t, validator.HasErrors())
}

func TestEmailValidation(t *testing.T) {
	valid := &Validator{}
	valid.Email("email", "person@ministry.gov")
	assert.NoError(t, valid.Err())

	invalid := &Validator{}
	invalid.Email("email", "not-an-email")
	assert.Error(t, invalid.Err())
}

func TestOneOfRejectsUnknownValue(t *testing.T) {
	validator := &Validator{}
	validator.OneOf("preference", "hourly", "all", "digest", "none")
	assert.Error(t, validator.Err())
}

func TestRequiredErrorShape(t *testing.T) {
	err := RequiredError("community", "Query parameter is required")
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "community", err.Details[0].Field)
}
