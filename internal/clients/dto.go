package clients

import (
	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientDTO is the owner-facing view of the business account. PIN and password hash never leave the service.
type ClientDTO struct {
	ID             uuid.UUID       `json:"id"`
	BusinessName   string          `json:"businessName"`
	UserName       string          `json:"userName"`
	ConvenienceFee decimal.Decimal `json:"convenienceFee"`
	IsActive       bool            `json:"isActive"`
}

// PublicInfoDTO is what end users see about the business.
type PublicInfoDTO struct {
	BusinessName string `json:"businessName"`
	IsActive     bool   `json:"isActive"`
}

// LoginResult carries the minted token and the authenticated client.
type LoginResult struct {
	Token  string    `json:"token"`
	Client ClientDTO `json:"client"`
}

// FeeConfig is the business configuration read once per order placement.
type FeeConfig struct {
	ClientID       uuid.UUID
	BusinessName   string
	ConvenienceFee decimal.Decimal
}

func FromModel(c *models.Client) ClientDTO {
	return ClientDTO{
		ID:             c.ID,
		BusinessName:   c.BusinessName,
		UserName:       c.UserName,
		ConvenienceFee: c.ConvenienceFee,
		IsActive:       c.IsActive,
	}
}
