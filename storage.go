package imagegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Storage is an interface for persisting generated images.
// Implementations can wrap existing storage clients (GCS, S3, etc.).
type Storage interface {
	// SaveFile saves image data to storage and returns a URL or path for it.
	// The path should include the full object path (e.g., "images/output.png").
	// The contentType is typically the image's MIME type (e.g., "image/png").
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// StorageResult contains information about a saved image.
type StorageResult struct {
	// URL is where the image can be accessed
	URL string

	// Path is the storage path/key where the image was saved
	Path string

	// Size is the number of bytes saved
	Size int
}

// DirStorage saves images below a local directory.
type DirStorage struct {
	Root string
}

// NewDirStorage returns a DirStorage rooted at root.
func NewDirStorage(root string) *DirStorage {
	return &DirStorage{Root: root}
}

// SaveFile writes data to Root/path, creating parent directories as needed.
func (s *DirStorage) SaveFile(ctx context.Context, data []byte, path string, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(s.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", full, err)
	}
	return full, nil
}

// SaveDataURL decodes a data URL and saves the image at basePath plus an
// extension derived from its media type.
func SaveDataURL(ctx context.Context, storage Storage, url string, basePath string) (StorageResult, error) {
	if storage == nil {
		return StorageResult{}, ErrStorageNotConfigured
	}

	mimeType, data, err := DecodeDataURL(url)
	if err != nil {
		return StorageResult{}, err
	}

	path := basePath + "." + extensionFromMIME(mimeType)
	saved, err := storage.SaveFile(ctx, data, path, mimeType)
	if err != nil {
		return StorageResult{}, err
	}

	return StorageResult{
		URL:  saved,
		Path: path,
		Size: len(data),
	}, nil
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
