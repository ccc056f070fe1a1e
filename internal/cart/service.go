package cart

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity = pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	ErrItemReference   = pkgerrors.New(pkgerrors.CodeInvalidReference, "item does not exist")
	ErrCartNotFound    = pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	ErrItemNotInCart   = pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
)

// Service exposes the cart aggregator.
type Service interface {
	AddOrIncrement(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	SetQuantity(ctx context.Context, userID, cartID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
	SoftDelete(ctx context.Context, userID, cartID uuid.UUID) error
	ViewEnriched(ctx context.Context, userID uuid.UUID) (*EnrichedCart, error)
}

type service struct {
	repo  CartRepository
	tx    txRunner
	items itemResolver
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, items itemResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if items == nil {
		return nil, fmt.Errorf("item resolver required")
	}
	return &service{repo: repo, tx: tx, items: items}, nil
}

// AddOrIncrement puts quantity units of the item into the user's active cart,
// creating the cart when the user has none.
func (s *service) AddOrIncrement(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "itemId is required")
	}
	if _, err := s.items.FindPublishedItem(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemReference
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}

	var cartID uuid.UUID
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		cart, err := txRepo.EnsureActive(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: ensure active cart")
		}
		cartID = cart.ID
		if err := txRepo.UpsertLine(ctx, cart.ID, itemID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert cart line")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add to cart")
	}

	return s.load(ctx, cartID, userID)
}

// SetQuantity overwrites the quantity of an item already in the user's active cart.
func (s *service) SetQuantity(ctx context.Context, userID, cartID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	rows, err := s.repo.SetLineQuantity(ctx, userID, cartID, itemID, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart line")
	}
	if rows == 0 {
		cart, err := s.repo.FindByIDAndUser(ctx, cartID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCartNotFound
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
		}
		if cart.IsDeleted || cart.IsPurchased {
			return nil, ErrCartNotFound
		}
		return nil, ErrItemNotInCart
	}
	return s.load(ctx, cartID, userID)
}

// RemoveItem drops the item line from the user's active cart.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load active cart")
	}
	rows, err := s.repo.DeleteLine(ctx, cart.ID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart line")
	}
	if rows == 0 {
		return nil, ErrItemNotInCart
	}
	return s.load(ctx, cart.ID, userID)
}

func (s *service) SoftDelete(ctx context.Context, userID, cartID uuid.UUID) error {
	rows, err := s.repo.SoftDelete(ctx, cartID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart")
	}
	if rows == 0 {
		return ErrCartNotFound
	}
	return nil
}

// ViewEnriched returns the priced active cart, or the empty sentinel when there is none.
func (s *service) ViewEnriched(ctx context.Context, userID uuid.UUID) (*EnrichedCart, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmptyCart(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load active cart")
	}
	lines, err := s.repo.Lines(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart lines")
	}
	return Enrich(cart.ID, lines), nil
}

func (s *service) load(ctx context.Context, cartID, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByIDAndUser(ctx, cartID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	return NewCartDTO(cart), nil
}
