package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// prunableExt lists the artefact types removed by Prune.
var prunableExt = map[string]bool{
	".pdf":  true,
	".json": true,
	".png":  true,
	".html": true,
}

// Artefacts manages per-company directories of downloaded and rendered files.
type Artefacts struct {
	Base string
}

// Dir returns the company directory, creating it when missing.
func (a Artefacts) Dir(company string) (string, error) {
	slug := domain.CompanySlug(company)
	if slug == "" {
		return "", fmt.Errorf("%w: company %q has no usable characters", domain.ErrInvalidInput, company)
	}
	dir := filepath.Join(a.Base, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating company directory: %w", err)
	}
	return dir, nil
}

// PathFor returns a path for filename inside the company directory.
func (a Artefacts) PathFor(company, filename string) (string, error) {
	clean := filepath.Base(filename)
	if clean == "." || clean == string(filepath.Separator) || clean != filename {
		return "", fmt.Errorf("%w: invalid file name %q", domain.ErrInvalidInput, filename)
	}
	dir, err := a.Dir(company)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, clean), nil
}

// LatestModTime returns the newest modification time of any file in the
// company directory. A missing directory yields the zero time.
func (a Artefacts) LatestModTime(company string) (time.Time, error) {
	var latest time.Time
	err := a.walk(company, func(_ string, info fs.FileInfo) error {
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return latest, err
}

// PruneFiles deletes prunable files last modified before olderThan.
func (a Artefacts) PruneFiles(company string, olderThan time.Time) (int, error) {
	removed := 0
	err := a.walk(company, func(path string, info fs.FileInfo) error {
		if !info.ModTime().Before(olderThan) || !prunableExt[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		removed++
		return nil
	})
	return removed, err
}

func (a Artefacts) walk(company string, fn func(path string, info fs.FileInfo) error) error {
	dir := filepath.Join(a.Base, domain.CompanySlug(company))
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished mid-walk
		}
		return fn(path, info)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
