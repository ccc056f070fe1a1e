package banners

import (
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/google/uuid"
)

type BannerDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileURL     string    `json:"fileUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewBannerDTO(b models.Banner) BannerDTO {
	return BannerDTO{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		FileURL:     b.FileURL,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
