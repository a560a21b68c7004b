// Package storage persists uploaded images on disk and serves them back under
// /uploads.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Image describes a stored upload.
type Image struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ImageStore saves, lists and deletes uploaded images.
type ImageStore interface {
	SaveDataURL(ctx context.Context, dataURL string) (string, error)
	List(ctx context.Context) ([]Image, error)
	Delete(ctx context.Context, name string) error
	Clear(ctx context.Context) error
}

var (
	ErrNotImage    = errors.New("not an image data URL")
	ErrTooLarge    = errors.New("image exceeds size limit")
	ErrBadFilename = errors.New("invalid file name")
)

var dataURLRe = regexp.MustCompile(`^data:image/(png|jpe?g|gif|webp|svg\+xml);base64,`)

// LocalStorage keeps images in a flat directory; filenames are UUIDs so an
// upload can never clobber another.
type LocalStorage struct {
	basePath string
	maxSize  int64
}

func NewLocalStorage(basePath string, maxSize int64) *LocalStorage {
	return &LocalStorage{basePath: basePath, maxSize: maxSize}
}

// SaveDataURL decodes a base64 image data URL and writes it to disk,
// returning the public /uploads URL.
func (s *LocalStorage) SaveDataURL(_ context.Context, dataURL string) (string, error) {
	m := dataURLRe.FindString(dataURL)
	if m == "" {
		return "", ErrNotImage
	}

	ext := extensionFor(strings.TrimSuffix(strings.TrimPrefix(m, "data:image/"), ";base64,"))
	data, err := base64.StdEncoding.DecodeString(dataURL[len(m):])
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.basePath, name), data, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return "/uploads/" + name, nil
}

// List returns every stored image, newest first.
func (s *LocalStorage) List(_ context.Context) ([]Image, error) {
	entries, err := os.ReadDir(s.basePath)
	if os.IsNotExist(err) {
		return []Image{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	images := make([]Image, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		images = append(images, Image{
			Name:       e.Name(),
			URL:        "/uploads/" + e.Name(),
			Size:       info.Size(),
			UploadedAt: info.ModTime(),
		})
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].UploadedAt.After(images[j].UploadedAt)
	})
	return images, nil
}

// Delete removes one image by name. The name must be a bare filename; path
// traversal is refused.
func (s *LocalStorage) Delete(_ context.Context, name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrBadFilename
	}
	if err := os.Remove(filepath.Join(s.basePath, name)); err != nil {
		if os.IsNotExist(err) {
			return os.ErrNotExist
		}
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// Clear removes every stored image. Used by the destructive reset; individual
// failures are skipped since the reset must not fail on a missing file.
func (s *LocalStorage) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.basePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read upload dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_ = os.Remove(filepath.Join(s.basePath, e.Name()))
	}
	return nil
}

// BasePath returns the directory images are stored in.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "jpeg", "jpg":
		return ".jpg"
	case "gif":
		return ".gif"
	case "webp":
		return ".webp"
	case "svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}
