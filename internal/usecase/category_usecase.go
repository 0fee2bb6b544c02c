package usecase

import (
	"tablon/internal/entity"
	"tablon/internal/repo/persistent"
)

type CategoryUseCase interface {
	FindAll() ([]*entity.Category, error)
	FindByID(id uint) (*entity.Category, error)
}

type categoryUseCase struct {
	categoryRepo persistent.CategoryRepository
}

func NewCategoryUseCase(categoryRepo persistent.CategoryRepository) CategoryUseCase {
	return &categoryUseCase{categoryRepo: categoryRepo}
}

func (uc *categoryUseCase) FindAll() ([]*entity.Category, error) {
	return uc.categoryRepo.FindAll()
}

func (uc *categoryUseCase) FindByID(id uint) (*entity.Category, error) {
	return uc.categoryRepo.FindByID(id)
}
