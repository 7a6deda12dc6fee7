package services

import (
	"techhub/internal/domain"
	"techhub/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// Search returns one zero-based page of products matching q and category.
func (s *CatalogService) Search(q string, category domain.Category, page, limit int) (domain.ProductPage, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = 10
	}
	offset := page * limit
	products, err := s.Prods.Search(q, category, limit, offset)
	if err != nil {
		return domain.ProductPage{}, err
	}
	total, err := s.Prods.Count(q, category)
	if err != nil {
		return domain.ProductPage{}, err
	}
	more := offset+limit < total
	return domain.ProductPage{Products: products, Total: total, HasMore: &more}, nil
}
