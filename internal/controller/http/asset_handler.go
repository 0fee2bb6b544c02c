package http

import (
	"errors"
	"net/http"

	"tablon/internal/entity"
	"tablon/internal/usecase"
	"tablon/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AssetHandler struct {
	assetUseCase usecase.AssetUseCase
	logger       *logger.Logger
}

func NewAssetHandler(assetUseCase usecase.AssetUseCase, logger *logger.Logger) *AssetHandler {
	return &AssetHandler{
		assetUseCase: assetUseCase,
		logger:       logger,
	}
}

// GetPostCover godoc
// @Summary      Get the cover image of a post
// @Tags         assets
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200  {object}  entity.Asset
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/cover [get]
func (h *AssetHandler) GetPostCover(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	cover, err := h.assetUseCase.FindCover(postID)
	if err != nil {
		h.logger.Error("Failed to fetch cover for post %d: %v", postID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cover"})
		return
	}
	if cover == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post has no cover image"})
		return
	}

	c.JSON(http.StatusOK, cover)
}

// GetPostAssets godoc
// @Summary      List the assets of a post
// @Tags         assets
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200  {array}   entity.Asset
// @Failure      400  {object}  map[string]string
// @Router       /posts/{id}/assets [get]
func (h *AssetHandler) GetPostAssets(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	assets, err := h.assetUseCase.FindByPost(postID)
	if err != nil {
		h.logger.Error("Failed to fetch assets for post %d: %v", postID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assets"})
		return
	}

	c.JSON(http.StatusOK, assets)
}

// DeleteAsset godoc
// @Summary      Delete an asset
// @Description  Delete an asset row. The stored file is removed only when no other asset references the same name.
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Asset ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.assetUseCase.DeleteAsset(id); err != nil {
		if errors.Is(err, entity.ErrAssetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to delete asset %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete asset"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted successfully"})
}
