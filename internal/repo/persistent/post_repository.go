package persistent

import (
	"errors"
	"time"

	"tablon/internal/entity"
	"tablon/internal/model"

	"gorm.io/gorm"
)

type PostRepository interface {
	// Transaction runs fn inside a single relational transaction; every
	// repo call given the fn's tx commits or rolls back together.
	Transaction(fn func(tx *gorm.DB) error) error
	Create(tx *gorm.DB, post *entity.Post) error
	FindAll(status *entity.PostStatus) ([]*entity.Post, error)
	FindLatest(limit int) ([]*entity.Post, error)
	FindPinned() ([]*entity.Post, error)
	FindByUser(userID uint) ([]*entity.Post, error)
	FindByCategory(categoryID uint) ([]*entity.Post, error)
	FindByID(id uint) (*entity.Post, error)
	// Update applies a partial patch; fields absent from patch stay
	// untouched.
	Update(id uint, patch map[string]interface{}) error
	UpdatePin(tx *gorm.DB, id uint, pinned bool) error
	UpdateStatus(id uint, status entity.PostStatus, comments *string, publishDate *time.Time) error
	Delete(tx *gorm.DB, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *postRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *postRepository) Create(tx *gorm.DB, post *entity.Post) error {
	postModel := ToPostModel(post)
	postModel.Assets = nil
	if err := r.conn(tx).Create(postModel).Error; err != nil {
		return err
	}
	*post = *ToPostEntity(postModel)
	return nil
}

// cardQuery shapes listings the way post cards consume them: category and
// assets preloaded, newest publish date first.
func (r *postRepository) cardQuery() *gorm.DB {
	return r.db.Preload("Category").Preload("Assets").
		Order("publish_date DESC NULLS LAST, created_at DESC")
}

func (r *postRepository) findModels(query *gorm.DB) ([]*entity.Post, error) {
	var postModels []model.PostModel
	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}
	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) FindAll(status *entity.PostStatus) ([]*entity.Post, error) {
	query := r.cardQuery()
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	return r.findModels(query)
}

func (r *postRepository) FindLatest(limit int) ([]*entity.Post, error) {
	query := r.db.Preload("Assets").
		Where("status = ?", string(entity.StatusApproved)).
		Order("publish_date DESC").
		Limit(limit)
	return r.findModels(query)
}

func (r *postRepository) FindPinned() ([]*entity.Post, error) {
	query := r.cardQuery().
		Where("status = ?", string(entity.StatusApproved)).
		Where("is_pinned = ?", true).
		Where("type IN ?", []string{
			string(entity.TypeInternalConvocatory),
			string(entity.TypeExternalConvocatory),
		})
	return r.findModels(query)
}

func (r *postRepository) FindByUser(userID uint) ([]*entity.Post, error) {
	return r.findModels(r.cardQuery().Where("user_id = ?", userID))
}

func (r *postRepository) FindByCategory(categoryID uint) ([]*entity.Post, error) {
	query := r.cardQuery().
		Where("status = ?", string(entity.StatusApproved)).
		Where("category_id = ?", categoryID)
	return r.findModels(query)
}

func (r *postRepository) FindByID(id uint) (*entity.Post, error) {
	var postModel model.PostModel
	err := r.db.Preload("Category").Preload("User").Preload("Assets").First(&postModel, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) Update(id uint, patch map[string]interface{}) error {
	return r.db.Model(&model.PostModel{}).Where("id = ?", id).Updates(patch).Error
}

func (r *postRepository) UpdatePin(tx *gorm.DB, id uint, pinned bool) error {
	return r.conn(tx).Model(&model.PostModel{}).Where("id = ?", id).
		Update("is_pinned", pinned).Error
}

func (r *postRepository) UpdateStatus(id uint, status entity.PostStatus, comments *string, publishDate *time.Time) error {
	patch := map[string]interface{}{
		"status":       string(status),
		"publish_date": publishDate,
	}
	if comments != nil {
		patch["comments"] = *comments
	} else {
		patch["comments"] = ""
	}
	return r.db.Model(&model.PostModel{}).Where("id = ?", id).Updates(patch).Error
}

func (r *postRepository) Delete(tx *gorm.DB, id uint) error {
	return r.conn(tx).Unscoped().Delete(&model.PostModel{}, id).Error
}
