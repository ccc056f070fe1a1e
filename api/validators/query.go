package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
)

// ParseUUID parses an identifier taken from the path or body.
func ParseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field).WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

// PathUUID reads and parses a chi URL parameter.
func PathUUID(r *http.Request, param string) (uuid.UUID, error) {
	return ParseUUID(chi.URLParam(r, param), param)
}
