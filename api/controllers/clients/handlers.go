package clients

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/counterline/counterline-backend/api/middleware"
	"github.com/counterline/counterline-backend/api/responses"
	"github.com/counterline/counterline-backend/api/validators"
	clientsvc "github.com/counterline/counterline-backend/internal/clients"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/counterline/counterline-backend/pkg/logger"
)

type registerRequest struct {
	BusinessName   string           `json:"businessName" validate:"required,max=160"`
	UserName       string           `json:"userName" validate:"required,max=64"`
	Password       string           `json:"password" validate:"required,max=128"`
	Pin            int              `json:"pin" validate:"required,gte=1000,lte=9999"`
	ConvenienceFee *decimal.Decimal `json:"convenienceFee"`
}

type loginRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type feeRequest struct {
	ConvenienceFee *decimal.Decimal `json:"convenienceFee" validate:"required"`
}

// Register creates the single business account.
func Register(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fee := decimal.Zero
		if payload.ConvenienceFee != nil {
			fee = *payload.ConvenienceFee
		}

		client, err := svc.Register(r.Context(), clientsvc.RegisterInput{
			BusinessName:   validators.SanitizeString(payload.BusinessName, 160),
			UserName:       validators.SanitizeString(payload.UserName, 64),
			Password:       payload.Password,
			Pin:            payload.Pin,
			ConvenienceFee: fee,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "client registered", client)
	}
}

func Login(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.UserName, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "login successful", result)
	}
}

// ToggleActive opens or closes the business for the authenticated client.
func ToggleActive(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		clientID, err := middleware.SubjectFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.ToggleActive(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "client status updated", client)
	}
}

func UpdateConvenienceFee(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		clientID, err := middleware.SubjectFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload feeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.UpdateConvenienceFee(r.Context(), clientID, *payload.ConvenienceFee)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "convenience fee updated", client)
	}
}

// PublicInfo is the user-facing business card.
func PublicInfo(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		info, err := svc.PublicInfo(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "client fetched", info)
	}
}
