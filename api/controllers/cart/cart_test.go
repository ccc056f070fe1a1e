package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counterline/counterline-backend/api/middleware"
	cartsvc "github.com/counterline/counterline-backend/internal/cart"
)

type stubCart struct {
	cartsvc.Service

	userID   uuid.UUID
	cartID   uuid.UUID
	itemID   uuid.UUID
	quantity int
	err      error
}

func (s *stubCart) AddOrIncrement(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	s.userID, s.itemID, s.quantity = userID, itemID, quantity
	if s.err != nil {
		return nil, s.err
	}
	return &cartsvc.CartDTO{ID: uuid.New(), UserID: userID, Items: []cartsvc.CartLineDTO{{ItemID: itemID, Quantity: quantity}}}, nil
}

func (s *stubCart) SetQuantity(ctx context.Context, userID, cartID, itemID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	s.userID, s.cartID, s.itemID, s.quantity = userID, cartID, itemID, quantity
	if s.err != nil {
		return nil, s.err
	}
	return &cartsvc.CartDTO{ID: cartID}, nil
}

func (s *stubCart) ViewEnriched(ctx context.Context, userID uuid.UUID) (*cartsvc.EnrichedCart, error) {
	return cartsvc.EmptyCart(), s.err
}

func asUser(req *http.Request, id uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), id.String())
	return req.WithContext(middleware.WithRole(ctx, "user"))
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	svc := &stubCart{}
	userID, itemID := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/create", strings.NewReader(`{"itemId":"`+itemID.String()+`"}`))
	rec := httptest.NewRecorder()
	Add(svc, nil).ServeHTTP(rec, asUser(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.quantity)
	assert.Equal(t, userID, svc.userID)
	assert.Equal(t, itemID, svc.itemID)
}

func TestAddSurfacesInvalidQuantity(t *testing.T) {
	svc := &stubCart{err: cartsvc.ErrInvalidQuantity}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"itemId":"`+uuid.NewString()+`","quantity":0}`))
	rec := httptest.NewRecorder()
	Add(svc, nil).ServeHTTP(rec, asUser(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.quantity)
}

func TestAddRejectsMalformedItemID(t *testing.T) {
	svc := &stubCart{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"itemId":"abc"}`))
	rec := httptest.NewRecorder()
	Add(svc, nil).ServeHTTP(rec, asUser(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, uuid.Nil, svc.userID)
}

func TestSetQuantityUsesPathCart(t *testing.T) {
	svc := &stubCart{}
	cartID, itemID := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/update/"+cartID.String(),
		strings.NewReader(`{"itemId":"`+itemID.String()+`","quantity":4}`))
	rc := chi.NewRouteContext()
	rc.URLParams.Add("id", cartID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()
	SetQuantity(svc, nil).ServeHTTP(rec, asUser(req, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cartID, svc.cartID)
	assert.Equal(t, 4, svc.quantity)
}

func TestSetQuantityMapsMissingCart(t *testing.T) {
	svc := &stubCart{err: cartsvc.ErrCartNotFound}
	cartID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"itemId":"`+uuid.NewString()+`","quantity":2}`))
	rc := chi.NewRouteContext()
	rc.URLParams.Add("id", cartID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()
	SetQuantity(svc, nil).ServeHTTP(rec, asUser(req, uuid.New()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewReturnsEmptySentinel(t *testing.T) {
	rec := httptest.NewRecorder()
	View(&stubCart{}, nil).ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPost, "/", nil), uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data cartsvc.EnrichedCart `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Nil(t, env.Data.CartID)
	assert.Empty(t, env.Data.Items)
	assert.True(t, env.Data.CartTotal.Equal(decimal.Zero))
	assert.Equal(t, 0, env.Data.TotalItems)
}

func TestViewRequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	View(&stubCart{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
