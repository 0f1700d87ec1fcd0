package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MediaStore keeps uploaded media and returns the public URL of each file.
type MediaStore interface {
	Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".mp4": true, ".webm": true, ".mov": true,
}

// ObjectName returns a collision free name for an upload, keeping a known
// media extension of the original name.
func ObjectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		ext = ""
	}
	return uuid.NewString() + ext
}

// IsAllowed reports whether a file name carries a supported media extension.
func IsAllowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}
