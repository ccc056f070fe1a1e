package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/counterline/counterline-backend/pkg/db/models"
)

// UserDTO is the transport shape of an end user.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	PhoneNo     string     `json:"phoneNo"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// OTPResult is returned by send and resend. Code is only set when codes are
// exposed in responses.
type OTPResult struct {
	PhoneNo   string  `json:"phoneNo"`
	ExpiresIn int     `json:"expiresIn"`
	OTP       *string `json:"otp,omitempty"`
}

// VerifyResult carries the access token minted after a successful OTP check.
type VerifyResult struct {
	Token string   `json:"token"`
	User  *UserDTO `json:"user"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		PhoneNo:     u.PhoneNo,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
