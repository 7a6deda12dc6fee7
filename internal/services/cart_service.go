package services

import (
	"database/sql"
	"errors"

	"techhub/internal/domain"
	"techhub/internal/repos"
	"techhub/internal/validate"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Add applies a signed quantity delta and returns the resulting cart.
func (s *CartService) Add(sessionID string, productID int64, delta int) (domain.Cart, error) {
	if !validate.Delta(delta) {
		return domain.Cart{}, ErrInvalidQuantity
	}
	if _, err := s.Prods.Get(productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, ErrProductNotFound
		}
		return domain.Cart{}, err
	}
	if err := s.Carts.AddDelta(sessionID, productID, delta); err != nil {
		return domain.Cart{}, err
	}
	return s.View(sessionID)
}

func (s *CartService) View(sessionID string) (domain.Cart, error) {
	items, err := s.Carts.Items(sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.NewCart(items), nil
}
