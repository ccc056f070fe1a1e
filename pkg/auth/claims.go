package auth

import (
	"github.com/counterline/counterline-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	SubjectID uuid.UUID
	Role      enums.Role
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to users and the client.
type AccessTokenClaims struct {
	SubjectID uuid.UUID  `json:"sub_id"`
	Role      enums.Role `json:"role"`
	jwt.RegisteredClaims
}
