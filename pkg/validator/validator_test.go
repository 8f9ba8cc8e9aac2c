package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vanisarees/storefront/pkg/errors"
)

type testItem struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required,max=10"`
	Price int64  `json:"price" validate:"gte=0"`
	Note  string `validate:"max=3"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(testItem{ID: "p1", Name: "Saree", Price: 100}))
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	err := Validate(testItem{Name: "Saree", Price: -1})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["id"])
	assert.Equal(t, "must be greater than or equal to 0", fields["price"])
	assert.NotContains(t, fields, "ID")
}

func TestValidate_MaxLengthMessage(t *testing.T) {
	err := Validate(testItem{ID: "p1", Name: "Banarasi Silk", Note: "long"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at most 10 characters", valErr.Fields()["name"])
	// Untagged fields fall back to the Go name.
	assert.Contains(t, valErr.Fields(), "Note")
	assert.Contains(t, valErr.Error(), "field 'name'")
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"p1","name":"Saree","price":10}`))

	var got testItem
	require.NoError(t, DecodeAndValidate(req, &got))
	assert.Equal(t, "p1", got.ID)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))

	var got testItem
	err := DecodeAndValidate(req, &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDecodeAndValidate_Invalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Saree"}`))

	var got testItem
	var valErr *ValidationError
	assert.ErrorAs(t, DecodeAndValidate(req, &got), &valErr)
}
