package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categoryRepo.ListWithCounts(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}
