package persistent

import (
	"tablon/internal/entity"
	"tablon/internal/model"
)

func ToPostModel(post *entity.Post) *model.PostModel {
	m := &model.PostModel{
		ID:          post.ID,
		CategoryID:  post.CategoryID,
		UserID:      post.UserID,
		Title:       post.Title,
		Description: post.Description,
		Summary:     post.Summary,
		PublishDate: post.PublishDate,
		EventDate:   post.EventDate,
		Status:      string(post.Status),
		Type:        string(post.Type),
		IsPinned:    post.IsPinned,
		Tags:        post.Tags,
		Comments:    post.Comments,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
	for i := range post.Assets {
		m.Assets = append(m.Assets, *ToAssetModel(&post.Assets[i]))
	}
	return m
}

func ToPostEntity(m *model.PostModel) *entity.Post {
	post := &entity.Post{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Summary:     m.Summary,
		PublishDate: m.PublishDate,
		EventDate:   m.EventDate,
		Status:      entity.PostStatus(m.Status),
		Type:        entity.PostType(m.Type),
		IsPinned:    m.IsPinned,
		Tags:        m.Tags,
		Comments:    m.Comments,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Category != nil {
		post.Category = &entity.Category{ID: m.Category.ID, Name: m.Category.Name}
	}
	if m.User != nil {
		post.User = ToUserEntity(m.User)
	}
	for i := range m.Assets {
		post.Assets = append(post.Assets, *ToAssetEntity(&m.Assets[i]))
	}
	return post
}

func ToAssetModel(asset *entity.Asset) *model.AssetModel {
	m := &model.AssetModel{
		ID:           asset.ID,
		PostID:       asset.PostID,
		Name:         asset.Name,
		Type:         string(asset.Type),
		IsCoverImage: asset.IsCoverImage,
		CreatedAt:    asset.CreatedAt,
	}
	if asset.Hash != "" {
		hash := asset.Hash
		m.Hash = &hash
	}
	return m
}

func ToAssetEntity(m *model.AssetModel) *entity.Asset {
	asset := &entity.Asset{
		ID:           m.ID,
		PostID:       m.PostID,
		Name:         m.Name,
		Type:         entity.AssetType(m.Type),
		IsCoverImage: m.IsCoverImage,
		CreatedAt:    m.CreatedAt,
	}
	if m.Hash != nil {
		asset.Hash = *m.Hash
	}
	return asset
}

func ToCategoryEntity(m *model.CategoryModel) *entity.Category {
	return &entity.Category{ID: m.ID, Name: m.Name}
}

func ToUserEntity(m *model.UserModel) *entity.User {
	return &entity.User{
		ID:       m.ID,
		Username: m.Username,
		Email:    m.Email,
		Role:     m.Role,
	}
}
