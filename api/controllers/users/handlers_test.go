package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usersvc "github.com/counterline/counterline-backend/internal/users"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
)

type stubUsers struct {
	usersvc.Service

	phone string
	code  string
	err   error
}

func (s *stubUsers) SendOTP(ctx context.Context, phoneNo string) (*usersvc.OTPResult, error) {
	s.phone = phoneNo
	if s.err != nil {
		return nil, s.err
	}
	return &usersvc.OTPResult{PhoneNo: phoneNo, ExpiresIn: 120}, nil
}

func (s *stubUsers) VerifyOTP(ctx context.Context, phoneNo, code string) (*usersvc.VerifyResult, error) {
	s.phone, s.code = phoneNo, code
	if s.err != nil {
		return nil, s.err
	}
	return &usersvc.VerifyResult{Token: "jwt"}, nil
}

func TestSendOTP(t *testing.T) {
	svc := &stubUsers{}
	rec := httptest.NewRecorder()
	SendOTP(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phoneNo":"+919876543210"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "+919876543210", svc.phone)
	assert.Contains(t, rec.Body.String(), `"expiresIn":120`)
	assert.NotContains(t, rec.Body.String(), `"otp"`)
}

func TestSendOTPCooldown(t *testing.T) {
	svc := &stubUsers{err: pkgerrors.New(pkgerrors.CodeRateLimit, "please wait 20 seconds before requesting otp again").
		WithDetails(map[string]any{"retryAfterSeconds": 20})}
	rec := httptest.NewRecorder()
	SendOTP(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phoneNo":"+919876543210"}`)))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"retryAfterSeconds":20`)
}

func TestVerifyOTPRequiresCode(t *testing.T) {
	svc := &stubUsers{}
	rec := httptest.NewRecorder()
	VerifyOTP(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phoneNo":"+919876543210"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.phone)
}

func TestVerifyOTPReturnsToken(t *testing.T) {
	svc := &stubUsers{}
	rec := httptest.NewRecorder()
	VerifyOTP(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phoneNo":"+919876543210","otp":"123456"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123456", svc.code)
	assert.Contains(t, rec.Body.String(), `"token":"jwt"`)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc := &stubUsers{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired otp")}
	rec := httptest.NewRecorder()
	VerifyOTP(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phoneNo":"+919876543210","otp":"000000"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
