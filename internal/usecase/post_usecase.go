package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tablon/internal/entity"
	"tablon/internal/repo/persistent"
	"tablon/internal/storage"
	"tablon/pkg/cache"
	"tablon/pkg/logger"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const (
	cacheKeyLatest = "cache:posts:latest"
	cacheKeyPinned = "cache:posts:pinned"
	cachePrefix    = "cache:posts:"
)

// Roles allowed to list posts that are not yet approved.
var moderationRoles = map[string]bool{
	"admin":     true,
	"moderator": true,
}

var sanitizer = bluemonday.UGCPolicy()

// Ack is the acknowledgement returned by mutating operations; callers
// re-fetch when they need the materialized post.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type CreatePostInput struct {
	CategoryID  uint
	Title       string
	Description string
	Summary     string
	EventDate   *time.Time
	Type        entity.PostType
	Tags        string
	// Links is the comma separated list of external URLs to attach.
	Links string
}

// UpdatePostInput carries a partial patch; nil fields stay untouched.
type UpdatePostInput struct {
	CategoryID  *uint
	Title       *string
	Description *string
	Summary     *string
	EventDate   *time.Time
	Type        *entity.PostType
	Tags        *string
}

type PostUseCase interface {
	FindAll(role string, status *entity.PostStatus) ([]*entity.Post, error)
	FindLatest(limit int) ([]*entity.Post, error)
	FindPinned() ([]*entity.Post, error)
	FindByUser(userID uint) ([]*entity.Post, error)
	FindByCategory(categoryID uint) ([]*entity.Post, error)
	FindByID(id uint) (*entity.Post, error)
	// Create persists the post and all of its assets as one atomic unit.
	Create(input CreatePostInput, userID uint, files []*entity.UploadedFile, cover *entity.UploadedFile) (Ack, error)
	// CreatePostAssets attaches additional assets to an existing post and
	// returns the created asset names. A new cover replaces the old one.
	CreatePostAssets(postID uint, links string, files []*entity.UploadedFile, cover *entity.UploadedFile) ([]string, error)
	Update(input UpdatePostInput, postID uint) (Ack, error)
	UpdateStatus(postID uint, status entity.PostStatus, comments *string) (Ack, error)
	UpdatePin(postID uint) (Ack, error)
	Remove(postID uint) (Ack, error)
}

type postUseCase struct {
	postRepo     persistent.PostRepository
	categoryRepo persistent.CategoryRepository
	assets       AssetUseCase
	store        *storage.Store
	cache        *cache.Cache
	logger       *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	categoryRepo persistent.CategoryRepository,
	assets AssetUseCase,
	store *storage.Store,
	listCache *cache.Cache,
	log *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		assets:       assets,
		store:        store,
		cache:        listCache,
		logger:       log,
	}
}

func (uc *postUseCase) FindAll(role string, status *entity.PostStatus) ([]*entity.Post, error) {
	if (status == nil || *status != entity.StatusApproved) && !moderationRoles[role] {
		return nil, entity.ErrStatusForbidden
	}
	return uc.postRepo.FindAll(status)
}

func (uc *postUseCase) FindLatest(limit int) ([]*entity.Post, error) {
	if limit <= 0 {
		limit = 5
	}

	ctx := context.Background()
	key := fmt.Sprintf("%s:%d", cacheKeyLatest, limit)
	var cached []*entity.Post
	if uc.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	posts, err := uc.postRepo.FindLatest(limit)
	if err != nil {
		return nil, err
	}
	uc.cache.SetJSON(ctx, key, posts)
	return posts, nil
}

func (uc *postUseCase) FindPinned() ([]*entity.Post, error) {
	ctx := context.Background()
	var cached []*entity.Post
	if uc.cache.GetJSON(ctx, cacheKeyPinned, &cached) {
		return cached, nil
	}

	posts, err := uc.postRepo.FindPinned()
	if err != nil {
		return nil, err
	}
	uc.cache.SetJSON(ctx, cacheKeyPinned, posts)
	return posts, nil
}

func (uc *postUseCase) FindByUser(userID uint) ([]*entity.Post, error) {
	return uc.postRepo.FindByUser(userID)
}

func (uc *postUseCase) FindByCategory(categoryID uint) ([]*entity.Post, error) {
	return uc.postRepo.FindByCategory(categoryID)
}

func (uc *postUseCase) FindByID(id uint) (*entity.Post, error) {
	return uc.postRepo.FindByID(id)
}

func (uc *postUseCase) Create(input CreatePostInput, userID uint, files []*entity.UploadedFile, cover *entity.UploadedFile) (Ack, error) {
	if !input.Type.Valid() {
		return Ack{}, entity.ErrInvalidPostType
	}

	category, err := uc.categoryRepo.FindByID(input.CategoryID)
	if err != nil {
		return Ack{}, err
	}

	// Paths written to disk inside the transaction. The filesystem has no
	// transactional semantics, so a rollback is followed by a compensating
	// best effort delete of these.
	var written []string

	err = uc.postRepo.Transaction(func(tx *gorm.DB) error {
		post := &entity.Post{
			CategoryID:  category.ID,
			UserID:      userID,
			Title:       sanitizer.Sanitize(strings.TrimSpace(input.Title)),
			Description: sanitizer.Sanitize(input.Description),
			Summary:     sanitizer.Sanitize(strings.TrimSpace(input.Summary)),
			EventDate:   input.EventDate,
			Status:      entity.StatusPending,
			Type:        input.Type,
			Tags:        sanitizer.Sanitize(input.Tags),
		}
		if err := uc.postRepo.Create(tx, post); err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}

		sources := buildSources(input.Links, files)
		if len(sources) > 0 {
			_, paths, err := uc.assets.CreateAssets(tx, post.ID, sources)
			written = append(written, paths...)
			if err != nil {
				return err
			}
		}

		if cover != nil {
			_, path, err := uc.assets.CreateAsset(tx, post.ID, entity.FileSource(cover), true)
			if path != "" {
				written = append(written, path)
			}
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		uc.cleanupFiles(written)
		return Ack{}, err
	}

	uc.invalidateListings()
	return Ack{Status: "Success", Message: "Post successfully created"}, nil
}

func (uc *postUseCase) CreatePostAssets(postID uint, links string, files []*entity.UploadedFile, cover *entity.UploadedFile) ([]string, error) {
	if _, err := uc.postRepo.FindByID(postID); err != nil {
		return nil, err
	}

	// Reject the whole request before the current cover is touched, so a
	// failed batch leaves the post exactly as it was.
	sources := buildSources(links, files)
	if err := uc.assets.ValidateBatch(sources); err != nil {
		return nil, err
	}
	if cover != nil && !cover.IsImage() {
		return nil, entity.ErrCoverNotImage
	}

	var existingCover *entity.Asset
	if cover != nil {
		var err error
		existingCover, err = uc.assets.FindCover(postID)
		if err != nil {
			return nil, err
		}
	}

	var (
		names    []string
		written  []string
		orphaned string
	)
	err := uc.postRepo.Transaction(func(tx *gorm.DB) error {
		// Exactly one cover may exist per post. The old row goes inside the
		// transaction; its file is removed only after a successful commit,
		// so a rollback restores the row with the file still on disk.
		if existingCover != nil {
			path, err := uc.assets.DeleteAssetRow(tx, existingCover.ID)
			if err != nil {
				return err
			}
			orphaned = path
		}

		if len(sources) > 0 {
			created, paths, err := uc.assets.CreateAssets(tx, postID, sources)
			written = append(written, paths...)
			if err != nil {
				return err
			}
			for _, asset := range created {
				names = append(names, asset.Name)
			}
		}

		if cover != nil {
			asset, path, err := uc.assets.CreateAsset(tx, postID, entity.FileSource(cover), true)
			if path != "" {
				written = append(written, path)
			}
			if err != nil {
				return err
			}
			names = append(names, asset.Name)
		}
		return nil
	})
	if err != nil {
		uc.cleanupFiles(written)
		return nil, err
	}

	if orphaned != "" {
		uc.cleanupFiles([]string{orphaned})
	}

	uc.invalidateListings()
	return names, nil
}

func (uc *postUseCase) Update(input UpdatePostInput, postID uint) (Ack, error) {
	if _, err := uc.postRepo.FindByID(postID); err != nil {
		return Ack{}, err
	}

	patch := map[string]interface{}{}
	if input.CategoryID != nil {
		category, err := uc.categoryRepo.FindByID(*input.CategoryID)
		if err != nil {
			return Ack{}, err
		}
		patch["category_id"] = category.ID
	}
	if input.Title != nil {
		patch["title"] = sanitizer.Sanitize(strings.TrimSpace(*input.Title))
	}
	if input.Description != nil {
		patch["description"] = sanitizer.Sanitize(*input.Description)
	}
	if input.Summary != nil {
		patch["summary"] = sanitizer.Sanitize(strings.TrimSpace(*input.Summary))
	}
	if input.EventDate != nil {
		patch["event_date"] = *input.EventDate
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return Ack{}, entity.ErrInvalidPostType
		}
		patch["type"] = string(*input.Type)
	}
	if input.Tags != nil {
		patch["tags"] = sanitizer.Sanitize(*input.Tags)
	}

	if len(patch) > 0 {
		if err := uc.postRepo.Update(postID, patch); err != nil {
			return Ack{}, fmt.Errorf("failed to update post %d: %w", postID, err)
		}
	}

	uc.invalidateListings()
	return Ack{Status: "Success", Message: "Post successfully updated"}, nil
}

func (uc *postUseCase) UpdateStatus(postID uint, status entity.PostStatus, comments *string) (Ack, error) {
	if !status.Valid() {
		return Ack{}, entity.ErrInvalidStatus
	}
	if _, err := uc.postRepo.FindByID(postID); err != nil {
		return Ack{}, err
	}

	// Entering Approved stamps the publish date; any other status clears
	// it, keeping status and publishDate coupled.
	var publishDate *time.Time
	if status == entity.StatusApproved {
		now := time.Now()
		publishDate = &now
	}

	if err := uc.postRepo.UpdateStatus(postID, status, comments, publishDate); err != nil {
		return Ack{}, fmt.Errorf("failed to update status of post %d: %w", postID, err)
	}

	uc.invalidateListings()
	uc.logger.Info("post %d moved to status %s", postID, status)
	return Ack{Status: "Success", Message: "Post status successfully updated"}, nil
}

func (uc *postUseCase) UpdatePin(postID uint) (Ack, error) {
	post, err := uc.postRepo.FindByID(postID)
	if err != nil {
		return Ack{}, err
	}
	if !post.Type.IsConvocatory() {
		return Ack{}, entity.ErrCannotPinNonConvocatory
	}

	isPinning := !post.IsPinned

	err = uc.postRepo.Transaction(func(tx *gorm.DB) error {
		if isPinning {
			pinned, err := uc.postRepo.FindPinned()
			if err != nil {
				return err
			}
			// At most one pinned post per convocatory type.
			for _, other := range pinned {
				if other.Type == post.Type && other.ID != post.ID {
					if err := uc.postRepo.UpdatePin(tx, other.ID, false); err != nil {
						return err
					}
				}
			}
		}
		return uc.postRepo.UpdatePin(tx, post.ID, isPinning)
	})
	if err != nil {
		return Ack{}, fmt.Errorf("failed to update pin of post %d: %w", postID, err)
	}

	uc.invalidateListings()
	return Ack{Status: "Success", Message: "Post pin successfully updated"}, nil
}

func (uc *postUseCase) Remove(postID uint) (Ack, error) {
	post, err := uc.postRepo.FindByID(postID)
	if err != nil {
		return Ack{}, err
	}

	// Assets go first through the safe delete path so removal never leaves
	// dangling rows nor deletes a file still shared with another post.
	for i := range post.Assets {
		if err := uc.assets.DeleteAsset(post.Assets[i].ID); err != nil {
			return Ack{}, err
		}
	}

	if err := uc.postRepo.Delete(nil, postID); err != nil {
		return Ack{}, fmt.Errorf("failed to delete post %d: %w", postID, err)
	}

	uc.invalidateListings()
	uc.logger.Info("post %d removed with %d assets", postID, len(post.Assets))
	return Ack{Status: "Success", Message: "Post successfully removed"}, nil
}

func (uc *postUseCase) cleanupFiles(paths []string) {
	for _, path := range paths {
		if err := uc.store.Remove(path); err != nil {
			uc.logger.Warn("failed to clean up orphaned file %s: %v", path, err)
		}
	}
}

func (uc *postUseCase) invalidateListings() {
	uc.cache.InvalidatePrefix(context.Background(), cachePrefix)
}

func buildSources(links string, files []*entity.UploadedFile) []entity.AssetSource {
	var sources []entity.AssetSource
	if links != "" {
		for _, link := range strings.Split(links, ",") {
			if link = strings.TrimSpace(link); link != "" {
				sources = append(sources, entity.LinkSource(link))
			}
		}
	}
	for _, file := range files {
		sources = append(sources, entity.FileSource(file))
	}
	return sources
}
