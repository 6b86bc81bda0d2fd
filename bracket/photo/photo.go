// Package photo implements bracket.Item for image files on disk.
//
// A Photo is identified by its canonical path. Decoding is lazy: Load reads
// and decodes the file once and keeps the result until Flush.
package photo

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/dustin/go-humanize"

	"github.com/photo-bracket/photo-bracket/bracket"
)


// Info describes a photo without holding its pixels.
type Info struct {
	Width  int
	Height int
	Format string // decoder name, e.g. "jpeg"
	Bytes  int64  // file size
}

func (i Info) String() string {
	return fmt.Sprintf("%dx%d %s, %s", i.Width, i.Height, i.Format, humanize.Bytes(uint64(i.Bytes)))
}

// Photo is a handle to one image file.
// Safe for concurrent use: decoding state is guarded, the path is immutable.
type Photo struct {
	path string

	mu   sync.Mutex
	img  image.Image
	info *Info
}

// New returns a Photo for path. The path is made absolute and symlinks are
// resolved when the file exists; a missing file still yields a Photo whose
// Load fails.
func New(path string) (*Photo, error) {
	canonical, err := Canonical(path)
	if err != nil {
		return nil, err
	}
	return &Photo{path: canonical}, nil
}

// Canonical returns the identity used for path: absolute, cleaned, and with
// symlinks resolved if the file exists.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return filepath.Clean(abs), nil
		}
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return resolved, nil
}

// Resolve is a session resolver that maps a stored key back to a Photo.
func Resolve(key string) (bracket.Item, error) {
	return New(key)
}

// Key returns the canonical path.
func (p *Photo) Key() string {
	return p.path
}

// Path returns the canonical path.
func (p *Photo) Path() string {
	return p.path
}

// Name returns the file name without its directory.
func (p *Photo) Name() string {
	return filepath.Base(p.path)
}

func (p *Photo) String() string {
	return p.path
}

// Load decodes the file if it is not already decoded.
func (p *Photo) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.img != nil {
		return nil
	}
	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", p.path, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", p.path, err)
	}
	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", p.path, err)
	}
	b := img.Bounds()
	p.img = img
	p.info = &Info{Width: b.Dx(), Height: b.Dy(), Format: format, Bytes: st.Size()}
	return nil
}

// Flush drops the decoded pixels. The cheap Info is kept.
func (p *Photo) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.img = nil
}

// Loaded reports whether the pixels are currently decoded.
func (p *Photo) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.img != nil
}

// Describe returns size and format, reading only the image header when the
// photo is not decoded. The result is cached across Flush.
func (p *Photo) Describe() (Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.info != nil {
		return *p.info, nil
	}
	f, err := os.Open(p.path)
	if err != nil {
		return Info{}, fmt.Errorf("opening %s: %w", p.path, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("stat %s: %w", p.path, err)
	}
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("reading header of %s: %w", p.path, err)
	}
	p.info = &Info{Width: cfg.Width, Height: cfg.Height, Format: format, Bytes: st.Size()}
	return *p.info, nil
}

// Items converts photos to bracket items.
func Items(photos []*Photo) []bracket.Item {
	items := make([]bracket.Item, len(photos))
	for i, p := range photos {
		items[i] = p
	}
	return items
}
