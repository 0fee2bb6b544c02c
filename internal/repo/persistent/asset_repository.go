package persistent

import (
	"errors"

	"tablon/internal/entity"
	"tablon/internal/model"

	"gorm.io/gorm"
)

// AssetRepository reads and writes asset rows. Methods taking a tx join
// the caller's transaction scope when it is non nil; the dedupe and
// idempotence reads must run on the same scope as the writes so rows
// inserted earlier in a batch are visible to later lookups.
type AssetRepository interface {
	Create(tx *gorm.DB, asset *entity.Asset) error
	FindByID(tx *gorm.DB, id uint) (*entity.Asset, error)
	// FindByHash returns any asset carrying the digest, regardless of the
	// owning post; used as the dedupe lookup.
	FindByHash(tx *gorm.DB, hash string) (*entity.Asset, error)
	// FindByNamePostCover looks up the (name, post, cover flag) triple that
	// acts as the idempotence key for asset creation.
	FindByNamePostCover(tx *gorm.DB, name string, postID uint, isCover bool) (*entity.Asset, error)
	FindCoverForPost(postID uint) (*entity.Asset, error)
	FindByPost(postID uint) ([]*entity.Asset, error)
	Delete(tx *gorm.DB, id uint) error
	// CountByName reports how many asset rows still reference a storage
	// path; physical deletion is safe only at zero.
	CountByName(tx *gorm.DB, name string) (int64, error)
}

type assetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *assetRepository) Create(tx *gorm.DB, asset *entity.Asset) error {
	assetModel := ToAssetModel(asset)
	if err := r.conn(tx).Create(assetModel).Error; err != nil {
		return err
	}
	*asset = *ToAssetEntity(assetModel)
	return nil
}

func (r *assetRepository) FindByID(tx *gorm.DB, id uint) (*entity.Asset, error) {
	var assetModel model.AssetModel
	if err := r.conn(tx).First(&assetModel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrAssetNotFound
		}
		return nil, err
	}
	return ToAssetEntity(&assetModel), nil
}

func (r *assetRepository) FindByHash(tx *gorm.DB, hash string) (*entity.Asset, error) {
	var assetModel model.AssetModel
	err := r.conn(tx).Where("hash = ?", hash).First(&assetModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ToAssetEntity(&assetModel), nil
}

func (r *assetRepository) FindByNamePostCover(tx *gorm.DB, name string, postID uint, isCover bool) (*entity.Asset, error) {
	var assetModel model.AssetModel
	err := r.conn(tx).Where("name = ? AND post_id = ? AND is_cover_image = ?", name, postID, isCover).
		First(&assetModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ToAssetEntity(&assetModel), nil
}

func (r *assetRepository) FindCoverForPost(postID uint) (*entity.Asset, error) {
	var assetModel model.AssetModel
	err := r.db.Where("post_id = ? AND is_cover_image = ?", postID, true).First(&assetModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ToAssetEntity(&assetModel), nil
}

func (r *assetRepository) FindByPost(postID uint) ([]*entity.Asset, error) {
	var assetModels []model.AssetModel
	if err := r.db.Where("post_id = ?", postID).Find(&assetModels).Error; err != nil {
		return nil, err
	}
	assets := make([]*entity.Asset, len(assetModels))
	for i := range assetModels {
		assets[i] = ToAssetEntity(&assetModels[i])
	}
	return assets, nil
}

func (r *assetRepository) Delete(tx *gorm.DB, id uint) error {
	return r.conn(tx).Unscoped().Delete(&model.AssetModel{}, id).Error
}

func (r *assetRepository) CountByName(tx *gorm.DB, name string) (int64, error) {
	var count int64
	err := r.conn(tx).Model(&model.AssetModel{}).Where("name = ?", name).Count(&count).Error
	return count, err
}
