package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counterline/counterline-backend/api/middleware"
	clientsvc "github.com/counterline/counterline-backend/internal/clients"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
)

type stubClients struct {
	clientsvc.Service

	registered clientsvc.RegisterInput
	feeFor     uuid.UUID
	fee        decimal.Decimal
	err        error
}

func (s *stubClients) Register(ctx context.Context, input clientsvc.RegisterInput) (*clientsvc.ClientDTO, error) {
	s.registered = input
	if s.err != nil {
		return nil, s.err
	}
	return &clientsvc.ClientDTO{ID: uuid.New(), BusinessName: input.BusinessName, UserName: input.UserName}, nil
}

func (s *stubClients) Login(ctx context.Context, userName, password string) (*clientsvc.LoginResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &clientsvc.LoginResult{Token: "jwt", Client: clientsvc.ClientDTO{UserName: userName}}, nil
}

func (s *stubClients) UpdateConvenienceFee(ctx context.Context, clientID uuid.UUID, fee decimal.Decimal) (*clientsvc.ClientDTO, error) {
	s.feeFor, s.fee = clientID, fee
	if s.err != nil {
		return nil, s.err
	}
	return &clientsvc.ClientDTO{ID: clientID, ConvenienceFee: fee}, nil
}

func (s *stubClients) PublicInfo(ctx context.Context) (*clientsvc.PublicInfoDTO, error) {
	return &clientsvc.PublicInfoDTO{BusinessName: "Udupi Corner", IsActive: true}, s.err
}

func TestRegisterDefaultsFeeToZero(t *testing.T) {
	svc := &stubClients{}
	body := `{"businessName":"Udupi Corner","userName":"owner","password":"s3cret","pin":4321}`
	rec := httptest.NewRecorder()
	Register(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 4321, svc.registered.Pin)
	assert.True(t, svc.registered.ConvenienceFee.IsZero())
	assert.NotContains(t, rec.Body.String(), "s3cret")
}

func TestRegisterRejectsShortPin(t *testing.T) {
	svc := &stubClients{}
	body := `{"businessName":"Udupi Corner","userName":"owner","password":"s3cret","pin":123}`
	rec := httptest.NewRecorder()
	Register(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.registered.UserName)
}

func TestRegisterSingletonConflict(t *testing.T) {
	svc := &stubClients{err: clientsvc.ErrClientRegistered}
	body := `{"businessName":"Second","userName":"other","password":"pw","pin":1234,"convenienceFee":"5"}`
	rec := httptest.NewRecorder()
	Register(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginUnauthorized(t *testing.T) {
	svc := &stubClients{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	rec := httptest.NewRecorder()
	Login(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userName":"owner","password":"bad"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateConvenienceFeeUsesCaller(t *testing.T) {
	svc := &stubClients{}
	clientID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"convenienceFee":7.5}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), clientID.String()))
	rec := httptest.NewRecorder()
	UpdateConvenienceFee(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, clientID, svc.feeFor)
	assert.True(t, svc.fee.Equal(decimal.RequireFromString("7.5")))
}

func TestPublicInfo(t *testing.T) {
	rec := httptest.NewRecorder()
	PublicInfo(&stubClients{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"businessName":"Udupi Corner"`)
}
