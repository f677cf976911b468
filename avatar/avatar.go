// Package avatar stores uploaded profile images on disk. Images are resized
// and re-encoded as JPEG before being written.
package avatar

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/rollcall-app/rollcall/config"
	"github.com/rollcall-app/rollcall/database"
)

// URLPrefix is the route prefix under which stored avatars are served.
const URLPrefix = "/uploads"

type Storage struct {
	dir       string
	maxWidth  int
	maxHeight int
	quality   int
}

// NewStorage creates the upload directory if needed and returns a Storage.
func NewStorage(cfg *config.UploadsConfig) (*Storage, error) {
	s := &Storage{
		dir:       "./data/uploads",
		maxWidth:  512,
		maxHeight: 512,
		quality:   85,
	}
	if cfg != nil {
		if cfg.Dir != "" {
			s.dir = cfg.Dir
		}
		if cfg.MaxWidth > 0 {
			s.maxWidth = cfg.MaxWidth
		}
		if cfg.MaxHeight > 0 {
			s.maxHeight = cfg.MaxHeight
		}
		if cfg.Quality > 0 {
			s.quality = cfg.Quality
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return s, nil
}

// Dir returns the directory avatars are stored in.
func (s *Storage) Dir() string {
	return s.dir
}

// Save decodes the uploaded image, scales it down to fit the configured
// bounds and writes it under a random filename. The returned Avatar holds the
// filename and the URL it is served from.
func (s *Storage) Save(fh *multipart.FileHeader) (*database.Avatar, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode uploaded image: %w", err)
	}

	if img.Bounds().Dx() > s.maxWidth || img.Bounds().Dy() > s.maxHeight {
		img = imaging.Fit(img, s.maxWidth, s.maxHeight, imaging.Lanczos)
	}

	filename := uuid.New().String() + ".jpg"
	path := filepath.Join(s.dir, filename)
	if err := imaging.Save(img, path, imaging.JPEGQuality(s.quality)); err != nil {
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	log.Debug("stored avatar", "filename", filename, "size", fh.Size)

	return &database.Avatar{
		URL:      URLPrefix + "/" + filename,
		Filename: filename,
	}, nil
}

// Remove deletes a stored avatar file. Removing a file that is already gone
// is not an error.
func (s *Storage) Remove(filename string) error {
	// refuse anything that could escape the upload directory
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return fmt.Errorf("invalid avatar filename: %q", filename)
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove avatar %s: %w", filename, err)
	}
	return nil
}
