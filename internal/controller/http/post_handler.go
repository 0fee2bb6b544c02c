package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"tablon/internal/entity"
	"tablon/internal/usecase"
	"tablon/pkg/logger"
	"tablon/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	CategoryID  uint   `form:"category_id" binding:"required"`
	Title       string `form:"title" binding:"required"`
	Description string `form:"description"`
	Summary     string `form:"summary"`
	EventDate   string `form:"event_date"`
	Type        string `form:"type" binding:"required"`
	Tags        string `form:"tags"`
	Links       string `form:"links"`
}

type UpdatePostRequest struct {
	CategoryID  *uint   `json:"category_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Summary     *string `json:"summary"`
	EventDate   *string `json:"event_date"`
	Type        *string `json:"type"`
	Tags        *string `json:"tags"`
}

type UpdateStatusRequest struct {
	Status   string  `json:"status" binding:"required"`
	Comments *string `json:"comments"`
}

// CreatePost godoc
// @Summary      Create a new post
// @Description  Create a post with its attachments in a single transaction. Files go in the multipart form, external links as a comma separated list.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        category_id formData int true "Category ID"
// @Param        title formData string true "Post title"
// @Param        description formData string false "Post description (HTML is sanitized)"
// @Param        summary formData string false "Short summary"
// @Param        event_date formData string false "Event date (RFC 3339 or YYYY-MM-DD)"
// @Param        type formData string true "Post type" Enums(event, external_convocatory, internal_convocatory, project, research)
// @Param        tags formData string false "Comma separated tags"
// @Param        links formData string false "Comma separated external URLs"
// @Param        files formData file false "Attachment files (images and PDFs)"
// @Param        cover formData file false "Cover image"
// @Success      201  {object}  usecase.Ack
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventDate, err := parseEventDate(req.EventDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_date, expected RFC 3339 or YYYY-MM-DD"})
		return
	}

	files, cover, err := h.readUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := usecase.CreatePostInput{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Summary:     req.Summary,
		EventDate:   eventDate,
		Type:        entity.PostType(req.Type),
		Tags:        req.Tags,
		Links:       req.Links,
	}

	ack, err := h.postUseCase.Create(input, userID, files, cover)
	if err != nil {
		h.respondError(c, err, "Failed to create post")
		return
	}

	c.JSON(http.StatusCreated, ack)
}

// GetPost godoc
// @Summary      Get post by ID
// @Tags         posts
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := h.postUseCase.FindByID(id)
	if err != nil {
		h.respondError(c, err, "Failed to fetch post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListPosts godoc
// @Summary      List posts
// @Description  List posts filtered by moderation status. Anonymous callers only see approved posts; pending and rejected listings require a moderation role.
// @Tags         posts
// @Produce      json
// @Param        status query string false "Moderation status" Enums(pending, approved, rejected)
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	role := c.GetString(middleware.ContextRole)

	status := entity.StatusApproved
	if raw := c.Query("status"); raw != "" {
		status = entity.PostStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}

	posts, err := h.postUseCase.FindAll(role, &status)
	if err != nil {
		h.respondError(c, err, "Failed to list posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// GetLatestPosts godoc
// @Summary      Get latest published posts
// @Tags         posts
// @Produce      json
// @Param        limit query int false "Number of posts to return (default 5, max 50)"
// @Success      200  {object}  map[string]interface{}
// @Router       /posts/latest [get]
func (h *PostHandler) GetLatestPosts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	posts, err := h.postUseCase.FindLatest(limit)
	if err != nil {
		h.respondError(c, err, "Failed to fetch latest posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// GetPinnedPosts godoc
// @Summary      Get pinned convocatories
// @Tags         posts
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /posts/pinned [get]
func (h *PostHandler) GetPinnedPosts(c *gin.Context) {
	posts, err := h.postUseCase.FindPinned()
	if err != nil {
		h.respondError(c, err, "Failed to fetch pinned posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// GetUserPosts godoc
// @Summary      Get posts by author
// @Tags         posts
// @Produce      json
// @Param        user_id path int true "User ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /posts/user/{user_id} [get]
func (h *PostHandler) GetUserPosts(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	posts, err := h.postUseCase.FindByUser(userID)
	if err != nil {
		h.respondError(c, err, "Failed to fetch user posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// GetCategoryPosts godoc
// @Summary      Get posts by category
// @Tags         posts
// @Produce      json
// @Param        category_id path int true "Category ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /posts/category/{category_id} [get]
func (h *PostHandler) GetCategoryPosts(c *gin.Context) {
	categoryID, ok := pathID(c, "category_id")
	if !ok {
		return
	}

	posts, err := h.postUseCase.FindByCategory(categoryID)
	if err != nil {
		h.respondError(c, err, "Failed to fetch category posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// UpdatePost godoc
// @Summary      Update post
// @Description  Partially update a post. Only the provided fields change.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Param        request body UpdatePostRequest true "Fields to update"
// @Success      200  {object}  usecase.Ack
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := usecase.UpdatePostInput{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Summary:     req.Summary,
		Tags:        req.Tags,
	}
	if req.EventDate != nil {
		eventDate, err := parseEventDate(*req.EventDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_date, expected RFC 3339 or YYYY-MM-DD"})
			return
		}
		input.EventDate = eventDate
	}
	if req.Type != nil {
		postType := entity.PostType(*req.Type)
		input.Type = &postType
	}

	ack, err := h.postUseCase.Update(input, id)
	if err != nil {
		h.respondError(c, err, "Failed to update post")
		return
	}

	c.JSON(http.StatusOK, ack)
}

// AddPostAssets godoc
// @Summary      Attach assets to a post
// @Description  Attach more files and links to an existing post. Uploading a cover replaces the current one.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Param        links formData string false "Comma separated external URLs"
// @Param        files formData file false "Attachment files (images and PDFs)"
// @Param        cover formData file false "Cover image"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/assets [post]
func (h *PostHandler) AddPostAssets(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	files, cover, err := h.readUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	links := c.PostForm("links")
	if links == "" && len(files) == 0 && cover == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no assets provided"})
		return
	}

	names, err := h.postUseCase.CreatePostAssets(id, links, files, cover)
	if err != nil {
		h.respondError(c, err, "Failed to attach assets")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"assets": names, "count": len(names)})
}

// UpdatePostStatus godoc
// @Summary      Moderate a post
// @Description  Move a post between pending, approved and rejected. Approving stamps the publish date; any other status clears it. Requires a moderation role.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Param        request body UpdateStatusRequest true "New status and optional moderator comments"
// @Success      200  {object}  usecase.Ack
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/status [patch]
func (h *PostHandler) UpdatePostStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ack, err := h.postUseCase.UpdateStatus(id, entity.PostStatus(req.Status), req.Comments)
	if err != nil {
		h.respondError(c, err, "Failed to update post status")
		return
	}

	c.JSON(http.StatusOK, ack)
}

// TogglePin godoc
// @Summary      Toggle the pin of a convocatory
// @Description  Pin or unpin a convocatory post. Pinning unpins the current holder of the same convocatory type.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Success      200  {object}  usecase.Ack
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/pin [patch]
func (h *PostHandler) TogglePin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ack, err := h.postUseCase.UpdatePin(id)
	if err != nil {
		h.respondError(c, err, "Failed to update pin")
		return
	}

	c.JSON(http.StatusOK, ack)
}

// DeletePost godoc
// @Summary      Delete post
// @Description  Delete a post together with its assets. Stored files are removed only when no other post references them.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Success      200  {object}  usecase.Ack
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ack, err := h.postUseCase.Remove(id)
	if err != nil {
		h.respondError(c, err, "Failed to delete post")
		return
	}

	c.JSON(http.StatusOK, ack)
}

// readUploads pulls the attachment files and the optional cover out of the
// multipart form. Contents are read into memory up front so the use case
// layer can hash them before anything touches disk.
func (h *PostHandler) readUploads(c *gin.Context) ([]*entity.UploadedFile, *entity.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var files []*entity.UploadedFile
	for _, header := range form.File["files"] {
		file, err := readUpload(header, "files")
		if err != nil {
			return nil, nil, err
		}
		files = append(files, file)
	}

	var cover *entity.UploadedFile
	if headers := form.File["cover"]; len(headers) > 0 {
		cover, err = readUpload(headers[0], "cover")
		if err != nil {
			return nil, nil, err
		}
	}

	return files, cover, nil
}

func readUpload(header *multipart.FileHeader, fieldName string) (*entity.UploadedFile, error) {
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	return &entity.UploadedFile{
		Data:         data,
		MimeType:     header.Header.Get("Content-Type"),
		OriginalName: header.Filename,
		FieldName:    fieldName,
		Size:         header.Size,
	}, nil
}

func parseEventDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, errors.New("unrecognized date format")
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError maps domain errors onto HTTP statuses.
func (h *PostHandler) respondError(c *gin.Context, err error, fallback string) {
	var limitErr *entity.LimitError

	switch {
	case errors.Is(err, entity.ErrPostNotFound),
		errors.Is(err, entity.ErrAssetNotFound),
		errors.Is(err, entity.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrStatusForbidden),
		errors.Is(err, entity.ErrCannotPinNonConvocatory):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &limitErr),
		errors.Is(err, entity.ErrUnsupportedFileType),
		errors.Is(err, entity.ErrCoverNotImage),
		errors.Is(err, entity.ErrEmptyAssetSource),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, entity.ErrInvalidPostType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
