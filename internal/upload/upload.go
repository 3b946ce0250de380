// Package upload stores image files under the public assets directory.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the url path the upload directory is served under.
const PublicPrefix = "/assets/imgs"

var (
	ErrFileTooLarge     = errors.New("file is too large")
	ErrUnsupportedType  = errors.New("only jpeg, png, webp and gif images are accepted")
	unsafeSubdirPattern = regexp.MustCompile(`[^a-z0-9_-]`)
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// createFile opens a new file that must not exist yet.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// File is a stored upload.
type File struct {
	FileName string
	URL      string
}

// Store writes files below a root directory.
type Store struct {
	root    string
	maxSize int64
}

func NewStore(root string, maxSize int64) *Store {
	return &Store{root: root, maxSize: maxSize}
}

// Root is the directory served as PublicPrefix.
func (s *Store) Root() string {
	return s.root
}

// SanitizeSubdir lowercases every path segment and replaces anything outside
// [a-z0-9_-] with an underscore, so user input cannot leave the root.
func SanitizeSubdir(subdir string) string {
	var parts []string
	for _, part := range strings.Split(subdir, "/") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		parts = append(parts, unsafeSubdirPattern.ReplaceAllString(part, "_"))
	}
	if len(parts) == 0 {
		return "uncategorized"
	}
	return strings.Join(parts, "/")
}

// Save copies one multipart file into root/subdir under a random name.
func (s *Store) Save(subdir string, fh *multipart.FileHeader) (*File, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, fh.Filename, s.maxSize)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	ext, err := sniffExtension(src, fh.Filename)
	if err != nil {
		return nil, err
	}

	subdir = SanitizeSubdir(subdir)
	dir := filepath.Join(s.root, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	target := filepath.Join(dir, name)
	dst, err := createFile(target)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &File{
		FileName: name,
		URL:      path.Join(PublicPrefix, subdir, name),
	}, nil
}

// Remove deletes a file previously returned by Save.
func (s *Store) Remove(f *File) error {
	rel, ok := strings.CutPrefix(f.URL, PublicPrefix+"/")
	if !ok || strings.Contains(rel, "..") {
		return fmt.Errorf("not a stored file: %s", f.URL)
	}
	return os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
}

// sniffExtension checks the content type from the first bytes rather than
// trusting the client header, then rewinds the reader.
func sniffExtension(file multipart.File, original string) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	fallback, ok := allowedTypes[http.DetectContentType(buf[:n])]
	if !ok {
		return "", ErrUnsupportedType
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(original))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return ext, nil
	}
	return fallback, nil
}
