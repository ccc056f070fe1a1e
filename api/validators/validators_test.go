package validators

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderBody struct {
	OrderType string `json:"orderType" validate:"required,oneof=Dine-In Parcel"`
	Quantity  *int   `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	var body orderBody
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"orderType":"Parcel","quantity":2}`))
	require.NoError(t, DecodeJSONBody(r, &body))
	assert.Equal(t, "Parcel", body.OrderType)
	assert.Equal(t, 2, *body.Quantity)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var body orderBody
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"orderType":"Parcel","extra":true}`))
	err := DecodeJSONBody(r, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyFormatsFieldErrors(t *testing.T) {
	var body orderBody
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"orderType":"Delivery","quantity":0}`))
	err := DecodeJSONBody(r, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details := typed.Details().(map[string]string)
	assert.Equal(t, "must be one of [Dine-In Parcel]", details["orderType"])
	assert.Equal(t, "must be at least 1", details["quantity"])
}

func TestDecodeJSONBodyAcceptsEmptyBody(t *testing.T) {
	var body struct {
		Page int `json:"page"`
	}
	r := httptest.NewRequest("POST", "/", strings.NewReader(""))
	require.NoError(t, DecodeJSONBody(r, &body))
}

func TestParseUUID(t *testing.T) {
	_, err := ParseUUID("not-a-uuid", "id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseUUID("00000000-0000-0000-0000-000000000000", "id")
	assert.Error(t, err)
	id, err := ParseUUID(" 3f1c1f2e-8c43-4b0e-9a51-2f7d9b1f0c11 ", "id")
	require.NoError(t, err)
	assert.Equal(t, "3f1c1f2e-8c43-4b0e-9a51-2f7d9b1f0c11", id.String())
}

func TestPathUUID(t *testing.T) {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("id", "3f1c1f2e-8c43-4b0e-9a51-2f7d9b1f0c11")
	r := httptest.NewRequest("POST", "/order/delete/3f1c1f2e-8c43-4b0e-9a51-2f7d9b1f0c11", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))

	id, err := PathUUID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, "3f1c1f2e-8c43-4b0e-9a51-2f7d9b1f0c11", id.String())

	_, err = PathUUID(httptest.NewRequest("POST", "/", nil), "id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = BearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	for _, raw := range []string{"", "Bearer ", "bearer a b"} {
		_, err := BearerToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "brunch", SanitizeString("  brunch  ", 0))
	assert.Equal(t, "bru", SanitizeString("brunch", 3))
}
