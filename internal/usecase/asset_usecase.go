package usecase

import (
	"fmt"
	"path/filepath"
	"time"

	"tablon/internal/entity"
	"tablon/internal/repo/persistent"
	"tablon/internal/storage"
	"tablon/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Batch upload limits enforced before any file reaches disk.
const (
	MaxImagesPerBatch = 10
	MaxPDFsPerBatch   = 5
	MaxImageSize      = 5 * 1024 * 1024
	MaxPDFSize        = 3 * 1024 * 1024
)

type AssetUseCase interface {
	// CreateAsset creates one asset from a link or uploaded file. When tx
	// is non nil the row insert joins the caller's transaction. The second
	// return value is the physical path written by this call, empty when
	// deduplication spared the write; callers use it for compensating
	// cleanup when their transaction rolls back.
	CreateAsset(tx *gorm.DB, postID uint, source entity.AssetSource, isCover bool) (*entity.Asset, string, error)
	// CreateAssets validates batch limits up front and then creates every
	// source. It returns all physical paths written so far even on error.
	CreateAssets(tx *gorm.DB, postID uint, sources []entity.AssetSource) ([]*entity.Asset, []string, error)
	// ValidateBatch checks the batch limits without writing anything, so
	// callers can reject a request before mutating existing state.
	ValidateBatch(sources []entity.AssetSource) error
	// DeleteAsset removes the row and, when no other row references the
	// same stored path, the physical file.
	DeleteAsset(id uint) error
	// DeleteAssetRow removes only the row, inside the caller's transaction.
	// It returns the stored path that becomes unreferenced once the
	// transaction commits, empty when the file is still shared or the
	// asset is a link; the caller removes the file after a successful
	// commit so a rollback leaves the file reachable.
	DeleteAssetRow(tx *gorm.DB, id uint) (string, error)
	FindCover(postID uint) (*entity.Asset, error)
	FindByPost(postID uint) ([]*entity.Asset, error)
}

type assetUseCase struct {
	assetRepo persistent.AssetRepository
	store     *storage.Store
	logger    *logger.Logger
}

func NewAssetUseCase(assetRepo persistent.AssetRepository, store *storage.Store, log *logger.Logger) AssetUseCase {
	return &assetUseCase{
		assetRepo: assetRepo,
		store:     store,
		logger:    log,
	}
}

func (uc *assetUseCase) CreateAsset(tx *gorm.DB, postID uint, source entity.AssetSource, isCover bool) (*entity.Asset, string, error) {
	switch {
	case source.IsLink():
		asset, err := uc.createLink(tx, postID, source.Link)
		return asset, "", err
	case source.IsFile():
		return uc.createFile(tx, postID, source.File, isCover)
	default:
		return nil, "", entity.ErrEmptyAssetSource
	}
}

func (uc *assetUseCase) CreateAssets(tx *gorm.DB, postID uint, sources []entity.AssetSource) ([]*entity.Asset, []string, error) {
	if err := uc.ValidateBatch(sources); err != nil {
		return nil, nil, err
	}

	var (
		assets  []*entity.Asset
		written []string
	)
	for _, source := range sources {
		asset, path, err := uc.CreateAsset(tx, postID, source, false)
		if path != "" {
			written = append(written, path)
		}
		if err != nil {
			return nil, written, err
		}
		assets = append(assets, asset)
	}
	return assets, written, nil
}

func (uc *assetUseCase) DeleteAsset(id uint) error {
	orphaned, err := uc.DeleteAssetRow(nil, id)
	if err != nil {
		return err
	}
	if orphaned == "" {
		return nil
	}

	if err := uc.store.Remove(orphaned); err != nil {
		return err
	}
	uc.logger.Info("removed asset file %s (last reference, asset %d)", orphaned, id)
	return nil
}

func (uc *assetUseCase) DeleteAssetRow(tx *gorm.DB, id uint) (string, error) {
	asset, err := uc.assetRepo.FindByID(tx, id)
	if err != nil {
		return "", err
	}

	if err := uc.assetRepo.Delete(tx, id); err != nil {
		return "", fmt.Errorf("failed to delete asset %d: %w", id, err)
	}

	if asset.Type == entity.AssetLink {
		return "", nil
	}

	remaining, err := uc.assetRepo.CountByName(tx, asset.Name)
	if err != nil {
		return "", fmt.Errorf("failed to count references for %s: %w", asset.Name, err)
	}
	if remaining > 0 {
		// Another post still shares the same stored content.
		return "", nil
	}
	return asset.Name, nil
}

func (uc *assetUseCase) FindCover(postID uint) (*entity.Asset, error) {
	return uc.assetRepo.FindCoverForPost(postID)
}

func (uc *assetUseCase) FindByPost(postID uint) ([]*entity.Asset, error) {
	return uc.assetRepo.FindByPost(postID)
}

func (uc *assetUseCase) createLink(tx *gorm.DB, postID uint, url string) (*entity.Asset, error) {
	existing, err := uc.assetRepo.FindByNamePostCover(tx, url, postID, false)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Idempotent re-submission of the same link for the same post.
		return existing, nil
	}

	asset := &entity.Asset{
		PostID: postID,
		Name:   url,
		Type:   entity.AssetLink,
	}
	if err := uc.assetRepo.Create(tx, asset); err != nil {
		return nil, fmt.Errorf("failed to create link asset: %w", err)
	}
	return asset, nil
}

func (uc *assetUseCase) createFile(tx *gorm.DB, postID uint, file *entity.UploadedFile, isCover bool) (*entity.Asset, string, error) {
	if isCover && !file.IsImage() {
		return nil, "", entity.ErrCoverNotImage
	}

	digest := storage.Hash(file.Data)

	existing, err := uc.assetRepo.FindByHash(tx, digest)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		// Identical content already lives on disk under existing.Name.
		duplicate, err := uc.assetRepo.FindByNamePostCover(tx, existing.Name, postID, isCover)
		if err != nil {
			return nil, "", err
		}
		if duplicate != nil {
			return duplicate, "", nil
		}

		asset := &entity.Asset{
			PostID:       postID,
			Name:         existing.Name,
			Type:         existing.Type,
			IsCoverImage: isCover,
			Hash:         digest,
		}
		if err := uc.assetRepo.Create(tx, asset); err != nil {
			return nil, "", fmt.Errorf("failed to create deduplicated asset: %w", err)
		}
		uc.logger.Info("deduplicated asset for post %d, reusing %s", postID, existing.Name)
		return asset, "", nil
	}

	assetType, folder, err := classifyMime(file.MimeType)
	if err != nil {
		return nil, "", err
	}

	name := synthesizeName(file, digest, assetType)
	path, err := uc.store.Save(file.Data, folder, name)
	if err != nil {
		return nil, "", err
	}

	asset := &entity.Asset{
		PostID:       postID,
		Name:         path,
		Type:         assetType,
		IsCoverImage: isCover,
		Hash:         digest,
	}
	if err := uc.assetRepo.Create(tx, asset); err != nil {
		return nil, path, fmt.Errorf("failed to create file asset: %w", err)
	}
	return asset, path, nil
}

func (uc *assetUseCase) ValidateBatch(sources []entity.AssetSource) error {
	var images, pdfs []*entity.UploadedFile
	for _, source := range sources {
		if !source.IsFile() {
			continue
		}
		switch {
		case source.File.IsImage():
			images = append(images, source.File)
		case source.File.IsPDF():
			pdfs = append(pdfs, source.File)
		}
	}

	if len(images) > MaxImagesPerBatch {
		return &entity.LimitError{
			Kind:    "images",
			Limit:   MaxImagesPerBatch,
			Message: fmt.Sprintf("too many images: at most %d allowed per batch", MaxImagesPerBatch),
		}
	}
	if len(pdfs) > MaxPDFsPerBatch {
		return &entity.LimitError{
			Kind:    "documents",
			Limit:   MaxPDFsPerBatch,
			Message: fmt.Sprintf("too many documents: at most %d allowed per batch", MaxPDFsPerBatch),
		}
	}
	for _, img := range images {
		if size(img) > MaxImageSize {
			return &entity.LimitError{
				Kind:    "images",
				Limit:   MaxImageSize,
				Size:    true,
				Message: fmt.Sprintf("image %s exceeds the %d MiB limit", img.OriginalName, MaxImageSize/(1024*1024)),
			}
		}
	}
	for _, pdf := range pdfs {
		if size(pdf) > MaxPDFSize {
			return &entity.LimitError{
				Kind:    "documents",
				Limit:   MaxPDFSize,
				Size:    true,
				Message: fmt.Sprintf("document %s exceeds the %d MiB limit", pdf.OriginalName, MaxPDFSize/(1024*1024)),
			}
		}
	}
	return nil
}

func size(f *entity.UploadedFile) int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Data))
}

func classifyMime(mimeType string) (entity.AssetType, string, error) {
	switch {
	case len(mimeType) > 6 && mimeType[:6] == "image/":
		return entity.AssetImage, storage.ImagesFolder, nil
	case mimeType == "application/pdf":
		return entity.AssetPDF, storage.PDFsFolder, nil
	default:
		return "", "", fmt.Errorf("%w: %s", entity.ErrUnsupportedFileType, mimeType)
	}
}

// synthesizeName derives a collision resistant file name. Images get a
// truncated digest plus timestamp so repeated uploads of different content
// with the same original name never clash; documents keep their original
// filename for recognizable download links.
func synthesizeName(file *entity.UploadedFile, digest string, assetType entity.AssetType) string {
	ext := filepath.Ext(file.OriginalName)
	if assetType == entity.AssetImage {
		return fmt.Sprintf("%s_%d%s", digest[:12], time.Now().Unix(), ext)
	}
	if base := filepath.Base(file.OriginalName); base != "." && base != "/" && base != "" {
		return base
	}
	return uuid.New().String() + ext
}
