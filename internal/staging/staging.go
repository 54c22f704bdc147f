// Package staging turns inline data-URL images into files that a clipboard
// can reference by URI.
//
// Each staged image gets its own file, image-<uuid>.png, in the images
// directory under the cache dir, so concurrent writes never share a path.
// Stale files are removed by Sweep.
package staging

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"go.klb.dev/capclip/internal/payload"
)

const (
	filePrefix = "image-"
	fileExt    = ".png"

	// DefaultTTL is how long a staged file is kept before Sweep removes it.
	DefaultTTL = 24 * time.Hour
)

// Stager writes decoded images into a directory.
type Stager struct {
	dir     string
	newName func() string
	now     func() time.Time
}

// New returns a Stager that writes into <cacheDir>/images.
func New(cacheDir string) *Stager {
	return &Stager{
		dir:     filepath.Join(cacheDir, "images"),
		newName: func() string { return filePrefix + uuid.NewString() + fileExt },
		now:     time.Now,
	}
}

// DefaultCacheDir returns the per-user cache directory for capclip, falling
// back to the system temp dir when the user cache dir is unknown.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "capclip")
	}
	return filepath.Join(os.TempDir(), "capclip")
}

// Dir returns the directory staged files are written to.
func (s *Stager) Dir() string { return s.dir }

// StageDataURL decodes a data:image/...;base64,... string and stages it.
func (s *Stager) StageDataURL(content string) (*url.URL, error) {
	img, err := DecodeDataURL(content)
	if err != nil {
		return nil, err
	}
	return s.Stage(img)
}

// DecodeDataURL decodes the base64 body of a data URL into an image. Every
// format registered with the image package is accepted (PNG, JPEG, GIF, BMP,
// TIFF, WebP).
func DecodeDataURL(content string) (image.Image, error) {
	raw, err := payload.DecodeBase64(payload.DataURLBody(content))
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Stage encodes img as PNG into a new file, makes it readable by other
// processes and returns its file:// URI.
func (s *Stager) Stage(img image.Image) (*url.URL, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	path := filepath.Join(s.dir, s.newName())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close staged file: %w", err)
	}
	if err := grantRead(path); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	slog.Debug("image staged", "path", path, "bounds", img.Bounds().Size())
	return fileURL(path), nil
}

// grantRead lets readers outside this process open the staged file.
func grantRead(path string) error {
	if err := os.Chmod(path, 0o644); err != nil {
		return fmt.Errorf("grant read: %w", err)
	}
	return nil
}

// Sweep removes staged files whose modification time is older than ttl and
// returns how many were removed. A missing directory is not an error.
func (s *Stager) Sweep(ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	cutoff := s.now().Add(-ttl)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			slog.Warn("staged file not removed", "file", name, "err", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func fileURL(path string) *url.URL {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return &url.URL{Scheme: "file", Path: p}
}
