package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Jvargast/newsletter-fisuc/models"
)

const (
	// MaxUploadBytes caps a single image upload.
	MaxUploadBytes = 5 << 20

	// randomNameBytes gives 16 hex chars of entropy per filename, enough
	// that collisions are not a correctness concern.
	randomNameBytes = 8
)

// Input errors: the caller can fix the file and retry.
var (
	ErrNotAnImage  = errors.New("file is not a supported image type")
	ErrTooLarge    = fmt.Errorf("file exceeds the %d byte upload limit", MaxUploadBytes)
	ErrInvalidName = errors.New("invalid asset name")
)

// allowedImageMIMEs mirrors the image types the admin client may upload.
var allowedImageMIMEs = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

// MediaStore owns the uploaded-image directory. Filenames are random hex
// with the original extension kept, so concurrent uploads cannot collide and
// names are not guessable. Files persist until explicitly deleted.
type MediaStore struct {
	dir string
}

// NewMediaStore creates the store, making the upload directory if needed.
func NewMediaStore(dir string) (*MediaStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &MediaStore{dir: dir}, nil
}

// Dir returns the directory assets are stored under.
func (s *MediaStore) Dir() string {
	return s.dir
}

// Save persists one uploaded image under a randomized name and returns that
// name. Content is sniffed, not trusted from headers: non-image content and
// oversized files are rejected with input errors.
func (s *MediaStore) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("missing upload")
	}
	if fh.Size > MaxUploadBytes {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > MaxUploadBytes {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(content)
	if !isAllowedImage(mtype) {
		return "", ErrNotAnImage
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = mtype.Extension()
	}

	name, err := randomName(ext)
	if err != nil {
		return "", fmt.Errorf("failed to generate asset name: %w", err)
	}

	dest := filepath.Join(s.dir, name)
	if err := os.WriteFile(dest, content, 0644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	log.Printf("INFO (MediaStore): Saved upload %s (%d bytes, %s)", name, len(content), mtype.String())
	return name, nil
}

// List returns all stored assets. os.ReadDir already sorts by name.
func (s *MediaStore) List() ([]models.Asset, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	assets := make([]models.Asset, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		assets = append(assets, models.Asset{
			Name: e.Name(),
			Path: filepath.Join(s.dir, e.Name()),
		})
	}
	return assets, nil
}

// Delete removes a stored asset immediately and unconditionally. Editions
// still referencing the file keep their now-dangling URL.
func (s *MediaStore) Delete(name string) error {
	p, err := s.safePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", name, err)
	}
	log.Printf("INFO (MediaStore): Deleted asset %s", name)
	return nil
}

// Resolve reports the on-disk path for an asset name, if the file exists.
func (s *MediaStore) Resolve(name string) (string, bool) {
	p, err := s.safePath(name)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", false
	}
	return p, true
}

// safePath rejects names that would escape the upload directory.
func (s *MediaStore) safePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

func isAllowedImage(mtype *mimetype.MIME) bool {
	for _, allowed := range allowedImageMIMEs {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}

func randomName(ext string) (string, error) {
	buf := make([]byte, randomNameBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf) + ext, nil
}
