package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes files below Root and hands out URL paths under URLPrefix,
// which the router serves statically.
type LocalStore struct {
	Root      string
	URLPrefix string
}

func NewLocalStore(root, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", root, err)
	}
	return &LocalStore{Root: root, URLPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, r io.Reader, name string) (string, error) {
	rel, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", rel, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to close %s: %w", rel, err)
	}

	return s.URLPrefix + "/" + rel, nil
}

func (s *LocalStore) Delete(ctx context.Context, locator string) error {
	if !strings.HasPrefix(locator, s.URLPrefix+"/") {
		return ErrInvalidLocator
	}
	rel, err := cleanName(strings.TrimPrefix(locator, s.URLPrefix+"/"))
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel))); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", rel, err)
	}
	return nil
}

// cleanName rejects names that would escape the store root.
func cleanName(name string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.Contains(name, "..") {
		return "", ErrInvalidLocator
	}
	return clean, nil
}
