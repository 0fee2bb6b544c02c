package persistent

import (
	"errors"

	"tablon/internal/entity"
	"tablon/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindByID(id uint) (*entity.Category, error)
	FindAll() ([]*entity.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindByID(id uint) (*entity.Category, error) {
	var categoryModel model.CategoryModel
	if err := r.db.First(&categoryModel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrCategoryNotFound
		}
		return nil, err
	}
	return ToCategoryEntity(&categoryModel), nil
}

func (r *categoryRepository) FindAll() ([]*entity.Category, error) {
	var categoryModels []model.CategoryModel
	if err := r.db.Order("name ASC").Find(&categoryModels).Error; err != nil {
		return nil, err
	}
	categories := make([]*entity.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = ToCategoryEntity(&categoryModels[i])
	}
	return categories, nil
}
