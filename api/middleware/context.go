package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/counterline/counterline-backend/internal/audit"
	"github.com/counterline/counterline-backend/pkg/enums"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
)

type contextKey string

const (
	ctxSubjectID contextKey = "subject_id"
	ctxRole      contextKey = "actor_role"
	ctxAccessID  contextKey = "access_id"
)

// UserIDFromContext returns the authenticated subject (user or client) id.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSubjectID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the jti of the token that authenticated the request.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext resolves the caller into an audit actor. ok is false when
// the request carries no valid subject.
func ActorFromContext(ctx context.Context) (audit.Actor, bool) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return audit.System, false
	}
	return audit.Actor{ID: id, Role: enums.Role(RoleFromContext(ctx))}, true
}

// SubjectFromContext returns the authenticated subject id or an Unauthorized error.
func SubjectFromContext(ctx context.Context) (uuid.UUID, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor.ID, nil
}

// WithUserID injects the subject identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSubjectID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithAccessID injects the access token id into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
