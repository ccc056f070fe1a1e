package auth

import (
	"context"
	"net/http"

	"github.com/counterline/counterline-backend/api/middleware"
	"github.com/counterline/counterline-backend/api/responses"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/counterline/counterline-backend/pkg/logger"
)

type sessionRevoker interface {
	Logout(ctx context.Context, accessID string) error
}

// Logout revokes the session behind the presented token, for users and the client alike.
func Logout(svc sessionRevoker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if err := svc.Logout(r.Context(), middleware.AccessIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "logged out", nil)
	}
}
