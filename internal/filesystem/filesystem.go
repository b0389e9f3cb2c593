// Package filesystem provides file system operations for the vault and the blog.
package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/quartz-migrate/internal/frontmatter"
	"github.com/taigrr/quartz-migrate/internal/pathfilter"
	"github.com/taigrr/quartz-migrate/internal/types"
)

// Service provides file system operations rooted at a vault directory.
type Service struct {
	vaultPath          string
	pathFilter         *pathfilter.PathFilter
	frontmatterHandler *frontmatter.Handler
}

// New creates a new Service.
func New(vaultPath string, pf *pathfilter.PathFilter, fh *frontmatter.Handler) *Service {
	absPath, err := filepath.Abs(vaultPath)
	if err != nil {
		absPath = vaultPath
	}
	if pf == nil {
		pf = pathfilter.New(nil)
	}
	if fh == nil {
		fh = frontmatter.New()
	}
	return &Service{
		vaultPath:          absPath,
		pathFilter:         pf,
		frontmatterHandler: fh,
	}
}

// ResolvePath resolves a path relative to the vault and validates it.
// Absolute paths are accepted when they point inside the vault.
func (s *Service) ResolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(s.vaultPath, path)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}

	relPath, err := filepath.Rel(s.vaultPath, absPath)
	if err != nil {
		return "", err
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal not allowed: %s", path)
	}

	return absPath, nil
}

// ListNotes recursively lists every allowed note under the vault, as
// absolute paths, visiting directories in listing order.
// Any unreadable directory fails the whole listing.
func (s *Service) ListNotes() ([]string, error) {
	var notes []string
	if err := s.walk(s.vaultPath, "", &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *Service) walk(dirPath, relDir string, notes *[]string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("directory not found: %s", dirPath)
		}
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("permission denied: %s", dirPath)
		}
		return fmt.Errorf("failed to list directory: %s - %w", dirPath, err)
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())
		relPath := entry.Name()
		if relDir != "" {
			relPath = relDir + "/" + entry.Name()
		}

		if entry.IsDir() {
			if !s.pathFilter.IsAllowedDir(relPath) {
				continue
			}
			if err := s.walk(fullPath, relPath, notes); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() && s.pathFilter.IsAllowed(relPath) {
			*notes = append(*notes, fullPath)
		}
	}

	return nil
}

// ReadNote reads and parses a note.
func (s *Service) ReadNote(path string) (types.SourceDocument, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return types.SourceDocument{}, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.SourceDocument{}, fmt.Errorf("file not found: %s", path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return types.SourceDocument{}, fmt.Errorf("permission denied: %s", path)
		}
		return types.SourceDocument{}, fmt.Errorf("failed to read file: %s - %w", path, err)
	}

	return s.frontmatterHandler.Parse(fullPath, string(content))
}

// WriteFile writes content to an absolute path, creating parent directories.
// The write is not atomic; a failure may leave a truncated file behind.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %s - %w", path, err)
	}

	return nil
}

// ListAssets returns the names of the regular files directly inside dir.
// A missing directory yields no names and no error.
func ListAssets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list images: %s - %w", dir, err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// CopyAssets copies the named files from srcDir into dstDir byte-for-byte,
// creating dstDir if needed and overwriting existing files.
// The first failure aborts the remaining copies.
func CopyAssets(srcDir, dstDir string, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	for i, name := range names {
		if err := copyFile(filepath.Join(srcDir, name), filepath.Join(dstDir, name)); err != nil {
			return i, err
		}
	}
	return len(names), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open image: %s - %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create image: %s - %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy image: %s - %w", src, err)
	}

	return out.Close()
}

// GetVaultPath returns the vault path.
func (s *Service) GetVaultPath() string {
	return s.vaultPath
}
