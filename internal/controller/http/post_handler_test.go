package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"tablon/internal/entity"
	"tablon/internal/usecase"
	"tablon/pkg/logger"
	"tablon/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPostUseCase is a mock implementation of usecase.PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) FindAll(role string, status *entity.PostStatus) ([]*entity.Post, error) {
	args := m.Called(role, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) FindLatest(limit int) ([]*entity.Post, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) FindPinned() ([]*entity.Post, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) FindByUser(userID uint) ([]*entity.Post, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) FindByCategory(categoryID uint) ([]*entity.Post, error) {
	args := m.Called(categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) FindByID(id uint) (*entity.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) Create(input usecase.CreatePostInput, userID uint, files []*entity.UploadedFile, cover *entity.UploadedFile) (usecase.Ack, error) {
	args := m.Called(input, userID, files, cover)
	return args.Get(0).(usecase.Ack), args.Error(1)
}

func (m *MockPostUseCase) CreatePostAssets(postID uint, links string, files []*entity.UploadedFile, cover *entity.UploadedFile) ([]string, error) {
	args := m.Called(postID, links, files, cover)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPostUseCase) Update(input usecase.UpdatePostInput, postID uint) (usecase.Ack, error) {
	args := m.Called(input, postID)
	return args.Get(0).(usecase.Ack), args.Error(1)
}

func (m *MockPostUseCase) UpdateStatus(postID uint, status entity.PostStatus, comments *string) (usecase.Ack, error) {
	args := m.Called(postID, status, comments)
	return args.Get(0).(usecase.Ack), args.Error(1)
}

func (m *MockPostUseCase) UpdatePin(postID uint) (usecase.Ack, error) {
	args := m.Called(postID)
	return args.Get(0).(usecase.Ack), args.Error(1)
}

func (m *MockPostUseCase) Remove(postID uint) (usecase.Ack, error) {
	args := m.Called(postID)
	return args.Get(0).(usecase.Ack), args.Error(1)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func successAck(message string) usecase.Ack {
	return usecase.Ack{Status: "Success", Message: message}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	for field, data := range files {
		part, err := writer.CreateFormFile(field, field+".png")
		assert.NoError(t, err)
		_, err = part.Write(data)
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreatePost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uint(9))
		handler.CreatePost(c)
	})

	mockUseCase.On("Create",
		mock.MatchedBy(func(input usecase.CreatePostInput) bool {
			return input.CategoryID == 1 && input.Title == "Research week" && input.Type == entity.TypeEvent
		}),
		uint(9),
		mock.MatchedBy(func(files []*entity.UploadedFile) bool { return len(files) == 1 }),
		(*entity.UploadedFile)(nil),
	).Return(successAck("Post successfully created"), nil)

	body, contentType := multipartBody(t,
		map[string]string{
			"category_id": "1",
			"title":       "Research week",
			"type":        "event",
			"links":       "https://example.org",
		},
		map[string][]byte{"files": []byte("imagedata")},
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestCreatePost_MissingTitle(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", handler.CreatePost)

	body, contentType := multipartBody(t, map[string]string{"category_id": "1", "type": "event"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePost_InvalidType(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", handler.CreatePost)

	mockUseCase.On("Create", mock.Anything, uint(0), mock.Anything, (*entity.UploadedFile)(nil)).
		Return(usecase.Ack{}, entity.ErrInvalidPostType)

	body, contentType := multipartBody(t,
		map[string]string{"category_id": "1", "title": "x", "type": "newsletter"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePost_CategoryNotFound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", handler.CreatePost)

	mockUseCase.On("Create", mock.Anything, uint(0), mock.Anything, (*entity.UploadedFile)(nil)).
		Return(usecase.Ack{}, entity.ErrCategoryNotFound)

	body, contentType := multipartBody(t,
		map[string]string{"category_id": "42", "title": "x", "type": "event"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePost_TooManyImages(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", handler.CreatePost)

	limitErr := &entity.LimitError{Kind: "images", Limit: 10, Message: "too many images in one batch"}
	mockUseCase.On("Create", mock.Anything, uint(0), mock.Anything, (*entity.UploadedFile)(nil)).
		Return(usecase.Ack{}, limitErr)

	body, contentType := multipartBody(t,
		map[string]string{"category_id": "1", "title": "x", "type": "event"},
		map[string][]byte{"files": []byte("img")},
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "too many images in one batch", response["error"])
}

func TestGetPost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/:id", handler.GetPost)

	mockUseCase.On("FindByID", uint(7)).Return(&entity.Post{ID: 7, Title: "Open call"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/7", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response entity.Post
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Open call", response.Title)
}

func TestGetPost_NotFound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/:id", handler.GetPost)

	mockUseCase.On("FindByID", uint(404)).Return(nil, entity.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/404", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPost_BadID(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/:id", handler.GetPost)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/abc", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "FindByID", mock.Anything)
}

func TestListPosts_DefaultsToApproved(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListPosts)

	approved := entity.StatusApproved
	mockUseCase.On("FindAll", "", &approved).Return([]*entity.Post{{ID: 1}, {ID: 2}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["count"])
	mockUseCase.AssertExpectations(t)
}

func TestListPosts_PendingWithoutRole(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListPosts)

	pending := entity.StatusPending
	mockUseCase.On("FindAll", "", &pending).Return(nil, entity.ErrStatusForbidden)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts?status=pending", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListPosts_PendingAsModerator(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", func(c *gin.Context) {
		c.Set(middleware.ContextRole, "moderator")
		handler.ListPosts(c)
	})

	pending := entity.StatusPending
	mockUseCase.On("FindAll", "moderator", &pending).Return([]*entity.Post{{ID: 3}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts?status=pending", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestGetLatestPosts_LimitPassedThrough(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/latest", handler.GetLatestPosts)

	mockUseCase.On("FindLatest", 3).Return([]*entity.Post{{ID: 1}, {ID: 2}, {ID: 3}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/latest?limit=3", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestUpdatePost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PUT("/posts/:id", handler.UpdatePost)

	title := "New title"
	mockUseCase.On("Update",
		mock.MatchedBy(func(input usecase.UpdatePostInput) bool {
			return input.Title != nil && *input.Title == title && input.Description == nil
		}),
		uint(7),
	).Return(successAck("Post successfully updated"), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/posts/7", bytes.NewBufferString(`{"title":"New title"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestUpdatePostStatus_Approve(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PATCH("/posts/:id/status", handler.UpdatePostStatus)

	comments := "looks good"
	mockUseCase.On("UpdateStatus", uint(7), entity.StatusApproved, &comments).
		Return(successAck("Post status successfully updated"), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/posts/7/status",
		bytes.NewBufferString(`{"status":"approved","comments":"looks good"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestUpdatePostStatus_Invalid(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PATCH("/posts/:id/status", handler.UpdatePostStatus)

	mockUseCase.On("UpdateStatus", uint(7), entity.PostStatus("archived"), (*string)(nil)).
		Return(usecase.Ack{}, entity.ErrInvalidStatus)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/posts/7/status", bytes.NewBufferString(`{"status":"archived"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTogglePin_NonConvocatory(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PATCH("/posts/:id/pin", handler.TogglePin)

	mockUseCase.On("UpdatePin", uint(7)).Return(usecase.Ack{}, entity.ErrCannotPinNonConvocatory)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/posts/7/pin", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAddPostAssets_NoAssets(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/assets", handler.AddPostAssets)

	body, contentType := multipartBody(t, map[string]string{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/7/assets", body)
	req.Header.Set("Content-Type", contentType)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "CreatePostAssets", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPostAssets_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/assets", handler.AddPostAssets)

	mockUseCase.On("CreatePostAssets", uint(7), "https://example.org", mock.Anything,
		mock.MatchedBy(func(cover *entity.UploadedFile) bool { return cover != nil })).
		Return([]string{"images/abc123_1_cover.png"}, nil)

	body, contentType := multipartBody(t,
		map[string]string{"links": "https://example.org"},
		map[string][]byte{"cover": []byte("coverdata")},
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/7/assets", body)
	req.Header.Set("Content-Type", contentType)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestDeletePost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", handler.DeletePost)

	mockUseCase.On("Remove", uint(7)).Return(successAck("Post successfully removed"), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/7", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestDeletePost_NotFound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", handler.DeletePost)

	mockUseCase.On("Remove", uint(404)).Return(usecase.Ack{}, entity.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/404", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewPostHandler(t *testing.T) {
	handler := NewPostHandler(new(MockPostUseCase), logger.New())
	assert.NotNil(t, handler)
}
