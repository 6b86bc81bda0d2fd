package photo

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/photo-bracket/photo-bracket/bracket"
)

// DefaultExtensions are the file extensions Scan accepts when none are given.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// ScanOptions controls which files Scan picks up.
type ScanOptions struct {
	Extensions []string // lower-case, with leading dot; DefaultExtensions if empty
	Recursive  bool     // descend into subdirectories
}

// Scan collects photos from roots. A root may be a directory or a single
// file. Results are sorted by path, which keeps burst shots in capture order,
// and photos reachable through more than one root appear once.
func Scan(roots []string, opts ScanOptions) ([]*Photo, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	accept := make(map[string]bool, len(exts))
	for _, e := range exts {
		accept[strings.ToLower(e)] = true
	}

	seen := make(map[string]*Photo)
	add := func(path string) error {
		if !accept[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		p, err := New(path)
		if err != nil {
			return err
		}
		seen[p.Key()] = p
		return nil
	}

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && !opts.Recursive {
					logrus.Debugf("scan: skipping subdirectory %s", path)
					return filepath.SkipDir
				}
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}

	photos := make([]*Photo, 0, len(seen))
	for _, p := range seen {
		photos = append(photos, p)
	}
	sort.Slice(photos, func(i, j int) bool { return bracket.Less(photos[i], photos[j]) })
	logrus.Infof("scan: found %d photos in %d roots", len(photos), len(roots))
	return photos, nil
}
