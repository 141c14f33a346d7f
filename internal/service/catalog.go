package service

import (
	"context"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/repository"
)

type catalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) CatalogService {
	return &catalogService{products: products}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListActive(ctx)
}
