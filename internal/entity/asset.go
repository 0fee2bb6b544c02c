package entity

import "time"

type AssetType string

const (
	AssetPDF   AssetType = "pdf"
	AssetLink  AssetType = "link"
	AssetImage AssetType = "image"
)

// Asset is a stored file reference or external link attached to a post.
// For links Name holds the literal URL and Hash is empty; for files Name is
// the generated storage path and Hash the content digest used for dedupe.
type Asset struct {
	ID           uint      `json:"id"`
	PostID       uint      `json:"post_id"`
	Name         string    `json:"name"`
	Type         AssetType `json:"type"`
	IsCoverImage bool      `json:"is_cover_image"`
	Hash         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UploadedFile is the boundary layer's representation of a raw multipart
// upload, already read into memory.
type UploadedFile struct {
	Data         []byte
	MimeType     string
	OriginalName string
	FieldName    string
	Size         int64
}

func (f *UploadedFile) IsImage() bool {
	return len(f.MimeType) > 6 && f.MimeType[:6] == "image/"
}

func (f *UploadedFile) IsPDF() bool {
	return f.MimeType == "application/pdf"
}

// AssetSource is the tagged link-or-file union consumed by asset creation.
// Exactly one of Link or File is set.
type AssetSource struct {
	Link string
	File *UploadedFile
}

func LinkSource(url string) AssetSource {
	return AssetSource{Link: url}
}

func FileSource(f *UploadedFile) AssetSource {
	return AssetSource{File: f}
}

func (s AssetSource) IsLink() bool { return s.File == nil && s.Link != "" }
func (s AssetSource) IsFile() bool { return s.File != nil }
