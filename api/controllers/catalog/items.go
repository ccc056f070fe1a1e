package catalog

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/counterline/counterline-backend/api/responses"
	"github.com/counterline/counterline-backend/api/validators"
	catalogsvc "github.com/counterline/counterline-backend/internal/catalog"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/counterline/counterline-backend/pkg/logger"
)

type createItemRequest struct {
	CategoryID        string           `json:"categoryId" validate:"required"`
	ItemName          string           `json:"itemName" validate:"required,max=160"`
	ItemPrice         *decimal.Decimal `json:"itemPrice" validate:"required"`
	Image             string           `json:"image" validate:"required"`
	Description       string           `json:"description" validate:"max=2000"`
	ParcelFeePerPiece *decimal.Decimal `json:"parcelFeePerPiece" validate:"required"`
}

func (p createItemRequest) toInput() (catalogsvc.CreateItemInput, error) {
	categoryID, err := validators.ParseUUID(p.CategoryID, "categoryId")
	if err != nil {
		return catalogsvc.CreateItemInput{}, err
	}
	return catalogsvc.CreateItemInput{
		CategoryID:        categoryID,
		ItemName:          validators.SanitizeString(p.ItemName, 160),
		ItemPrice:         *p.ItemPrice,
		Image:             p.Image,
		Description:       p.Description,
		ParcelFeePerPiece: *p.ParcelFeePerPiece,
	}, nil
}

type updateItemRequest struct {
	CategoryID        *string          `json:"categoryId"`
	ItemName          *string          `json:"itemName" validate:"omitempty,max=160"`
	ItemPrice         *decimal.Decimal `json:"itemPrice"`
	Image             *string          `json:"image"`
	Description       *string          `json:"description" validate:"omitempty,max=2000"`
	ParcelFeePerPiece *decimal.Decimal `json:"parcelFeePerPiece"`
	IsAvailable       *bool            `json:"isAvailable"`
	IsPublished       *bool            `json:"isPublished"`
}

func (p updateItemRequest) toInput() (catalogsvc.UpdateItemInput, error) {
	input := catalogsvc.UpdateItemInput{
		ItemName:          p.ItemName,
		ItemPrice:         p.ItemPrice,
		Image:             p.Image,
		Description:       p.Description,
		ParcelFeePerPiece: p.ParcelFeePerPiece,
		IsAvailable:       p.IsAvailable,
		IsPublished:       p.IsPublished,
	}
	if p.CategoryID != nil {
		categoryID, err := validators.ParseUUID(*p.CategoryID, "categoryId")
		if err != nil {
			return catalogsvc.UpdateItemInput{}, err
		}
		input.CategoryID = &categoryID
	}
	return input, nil
}

type itemIDRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}

type categoryIDRequest struct {
	CategoryID string `json:"categoryId" validate:"required"`
}

func CreateItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "item created", item)
	}
}

func UpdateItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "item updated", item)
	}
}

func DeleteItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "item deleted", map[string]any{"id": id})
	}
}

func TogglePublished(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return toggleHandler(logg, svc, "item visibility updated", func(r *http.Request, id uuid.UUID) (*catalogsvc.ToggleResult, error) {
		return svc.TogglePublished(r.Context(), id)
	})
}

func ToggleAvailable(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return toggleHandler(logg, svc, "item availability updated", func(r *http.Request, id uuid.UUID) (*catalogsvc.ToggleResult, error) {
		return svc.ToggleAvailable(r.Context(), id)
	})
}

func toggleHandler(logg *logger.Logger, svc catalogsvc.Service, message string, flip func(*http.Request, uuid.UUID) (*catalogsvc.ToggleResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload itemIDRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUID(payload.ItemID, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := flip(r, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, message, result)
	}
}

// ListGrouped is the client's menu view: active categories with the current page of items.
func ListGrouped(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload listRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		grouped, err := svc.ListGrouped(r.Context(), payload.Params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "items fetched", grouped)
	}
}

// ListByCategory returns the published items of one category.
func ListByCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload categoryIDRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseUUID(payload.CategoryID, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByCategory(r.Context(), categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "items fetched", items)
	}
}
