package imagestore

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

const contentDir = "OEBPS/"

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".svg"}

// IsImageFile reports whether name has a known image extension.
func IsImageFile(name string) bool {
	return slices.Contains(imageExts, strings.ToLower(filepath.Ext(name)))
}

// Resolve maps an href found in a chapter to an existing file below the
// root. Relative hrefs are first resolved against chapter; the packaging
// directory prefix is then tried both added and removed.
func (s *Store) Resolve(href, chapter string) (string, error) {
	for _, candidate := range s.candidates(href, chapter) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, href)
}

func (s *Store) candidates(href, chapter string) []string {
	clean := strings.TrimLeft(filepath.ToSlash(href), "/")
	var rel []string

	if chapter != "" && strings.HasPrefix(clean, "../") {
		resolved := path.Join(path.Dir(filepath.ToSlash(chapter)), clean)
		rel = append(rel, resolved)
		if rest, ok := strings.CutPrefix(resolved, contentDir); ok {
			rel = append(rel, rest)
		}
	}

	rel = append(rel, clean)

	switch {
	case strings.HasPrefix(clean, contentDir):
		rel = append(rel, strings.TrimPrefix(clean, contentDir))
	case strings.HasPrefix(clean, "../"):
		rest := strings.TrimPrefix(clean, "../")
		rel = append(rel, contentDir+rest, rest)
	default:
		rel = append(rel, contentDir+clean)
	}

	paths := make([]string, 0, len(rel))
	for _, r := range rel {
		p, ok := s.join(r)
		if ok && !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	return paths
}

// join returns rel below the root, or false if it would escape it.
func (s *Store) join(rel string) (string, bool) {
	if rel == "" {
		return "", false
	}
	p := filepath.Join(s.root, filepath.FromSlash(rel))
	if p != s.root && !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", false
	}
	return p, true
}

// List returns the hrefs of every image below the root, sorted.
func (s *Store) List() ([]string, error) {
	var hrefs []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsImageFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		hrefs = append(hrefs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(hrefs)
	return hrefs, nil
}
