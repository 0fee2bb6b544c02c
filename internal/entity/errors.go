package entity

import "errors"

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCannotPinNonConvocatory is returned when a pin toggle is attempted
	// on a post type without a spotlight slot.
	ErrCannotPinNonConvocatory = errors.New("cannot pin a non convocatory post")

	// ErrStatusForbidden is returned when a caller without a moderation role
	// requests non approved listings.
	ErrStatusForbidden = errors.New("insufficient permissions to view unapproved posts")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrCoverNotImage       = errors.New("cover image must be an image file")
	ErrEmptyAssetSource    = errors.New("asset source must be a link or a file")
	ErrInvalidStatus       = errors.New("invalid post status")
	ErrInvalidPostType     = errors.New("invalid post type")
)

// LimitError reports a violated batch upload limit, naming the offending
// file category so the boundary layer can surface a precise message.
type LimitError struct {
	Kind    string // "images" or "documents"
	Limit   int    // max count, or max bytes when Size is true
	Size    bool
	Message string
}

func (e *LimitError) Error() string { return e.Message }
