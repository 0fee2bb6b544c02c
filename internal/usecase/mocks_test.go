package usecase

import (
	"time"

	"tablon/internal/entity"
	"tablon/internal/repo/persistent"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockPostRepository is a mock implementation of persistent.PostRepository.
type MockPostRepository struct {
	mock.Mock
}

// Transaction executes fn against a nil tx so transactional flows can be
// exercised without a database; failures still propagate to the caller.
func (m *MockPostRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *MockPostRepository) Create(tx *gorm.DB, post *entity.Post) error {
	args := m.Called(tx, post)
	return args.Error(0)
}

func (m *MockPostRepository) FindAll(status *entity.PostStatus) ([]*entity.Post, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) FindLatest(limit int) ([]*entity.Post, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) FindPinned() ([]*entity.Post, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) FindByUser(userID uint) ([]*entity.Post, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) FindByCategory(categoryID uint) ([]*entity.Post, error) {
	args := m.Called(categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) FindByID(id uint) (*entity.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) Update(id uint, patch map[string]interface{}) error {
	args := m.Called(id, patch)
	return args.Error(0)
}

func (m *MockPostRepository) UpdatePin(tx *gorm.DB, id uint, pinned bool) error {
	args := m.Called(tx, id, pinned)
	return args.Error(0)
}

func (m *MockPostRepository) UpdateStatus(id uint, status entity.PostStatus, comments *string, publishDate *time.Time) error {
	args := m.Called(id, status, comments, publishDate)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(tx *gorm.DB, id uint) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

var _ persistent.PostRepository = (*MockPostRepository)(nil)

// MockCategoryRepository is a mock implementation of persistent.CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(id uint) (*entity.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll() ([]*entity.Category, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Category), args.Error(1)
}

var _ persistent.CategoryRepository = (*MockCategoryRepository)(nil)

// MockAssetRepository is a mock implementation of persistent.AssetRepository.
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) Create(tx *gorm.DB, asset *entity.Asset) error {
	args := m.Called(tx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) FindByID(tx *gorm.DB, id uint) (*entity.Asset, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByHash(tx *gorm.DB, hash string) (*entity.Asset, error) {
	args := m.Called(tx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByNamePostCover(tx *gorm.DB, name string, postID uint, isCover bool) (*entity.Asset, error) {
	args := m.Called(tx, name, postID, isCover)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindCoverForPost(postID uint) (*entity.Asset, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByPost(postID uint) ([]*entity.Asset, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Asset), args.Error(1)
}

func (m *MockAssetRepository) Delete(tx *gorm.DB, id uint) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

func (m *MockAssetRepository) CountByName(tx *gorm.DB, name string) (int64, error) {
	args := m.Called(tx, name)
	return args.Get(0).(int64), args.Error(1)
}

var _ persistent.AssetRepository = (*MockAssetRepository)(nil)

// MockAssetUseCase is a mock implementation of AssetUseCase for post
// workflow tests.
type MockAssetUseCase struct {
	mock.Mock
}

func (m *MockAssetUseCase) CreateAsset(tx *gorm.DB, postID uint, source entity.AssetSource, isCover bool) (*entity.Asset, string, error) {
	args := m.Called(tx, postID, source, isCover)
	var asset *entity.Asset
	if args.Get(0) != nil {
		asset = args.Get(0).(*entity.Asset)
	}
	return asset, args.String(1), args.Error(2)
}

func (m *MockAssetUseCase) CreateAssets(tx *gorm.DB, postID uint, sources []entity.AssetSource) ([]*entity.Asset, []string, error) {
	args := m.Called(tx, postID, sources)
	var assets []*entity.Asset
	if args.Get(0) != nil {
		assets = args.Get(0).([]*entity.Asset)
	}
	var written []string
	if args.Get(1) != nil {
		written = args.Get(1).([]string)
	}
	return assets, written, args.Error(2)
}

func (m *MockAssetUseCase) ValidateBatch(sources []entity.AssetSource) error {
	args := m.Called(sources)
	return args.Error(0)
}

func (m *MockAssetUseCase) DeleteAsset(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockAssetUseCase) DeleteAssetRow(tx *gorm.DB, id uint) (string, error) {
	args := m.Called(tx, id)
	return args.String(0), args.Error(1)
}

func (m *MockAssetUseCase) FindCover(postID uint) (*entity.Asset, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Asset), args.Error(1)
}

func (m *MockAssetUseCase) FindByPost(postID uint) ([]*entity.Asset, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Asset), args.Error(1)
}

var _ AssetUseCase = (*MockAssetUseCase)(nil)
