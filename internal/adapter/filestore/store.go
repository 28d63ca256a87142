// Package filestore keeps per-tenant asset directories on local disk.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// Compile-time check: Store implements domain.AssetStore.
var _ domain.AssetStore = (*Store)(nil)

// Store lays out assets as root/<tenant id>/...
type Store struct {
	root string
}

// New creates a store rooted at root.
func New(root string) *Store {
	return &Store{root: root}
}

// Dir returns the asset directory of a tenant.
func (s *Store) Dir(tenantID string) string {
	return filepath.Join(s.root, tenantID)
}

// Copy copies every asset of fromTenantID into the directory of toTenantID
// and returns the number of files copied. A source without assets copies
// nothing. The destination must not already hold any of the copied files.
func (s *Store) Copy(ctx context.Context, fromTenantID, toTenantID string) (int, error) {
	if !filepath.IsLocal(fromTenantID) || !filepath.IsLocal(toTenantID) {
		return 0, fmt.Errorf("invalid tenant asset directory %q -> %q", fromTenantID, toTenantID)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	src := os.DirFS(s.Dir(fromTenantID))
	n, err := countFiles(src)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scanning assets of %s: %w", fromTenantID, err)
	}

	if err := os.CopyFS(s.Dir(toTenantID), src); err != nil {
		return 0, fmt.Errorf("copying assets to %s: %w", toTenantID, err)
	}
	return n, nil
}

func countFiles(fsys fs.FS) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, ".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n, err
}
