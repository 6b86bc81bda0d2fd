package photo

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-bracket/photo-bracket/bracket"
)

var _ bracket.Item = (*Photo)(nil)

// writePNG writes a w x h PNG to path.
func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestPhoto_LoadAndFlush(t *testing.T) {
	// GIVEN a 4x3 PNG
	path := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, path, 4, 3)
	p, err := New(path)
	require.NoError(t, err)

	// WHEN it is loaded
	require.NoError(t, p.Load())

	// THEN pixels and info are available
	assert.True(t, p.Loaded())
	info, err := p.Describe()
	require.NoError(t, err)
	assert.Equal(t, Info{Width: 4, Height: 3, Format: "png", Bytes: info.Bytes}, info)
	assert.Greater(t, info.Bytes, int64(0))

	// WHEN it is flushed (twice)
	p.Flush()
	p.Flush()

	// THEN pixels are gone but it can be reloaded
	assert.False(t, p.Loaded())
	require.NoError(t, p.Load())
	assert.True(t, p.Loaded())
}

func TestPhoto_Load_MissingFile(t *testing.T) {
	p, err := New(filepath.Join(t.TempDir(), "gone.jpg"))
	require.NoError(t, err, "a missing file still has an identity")
	assert.Error(t, p.Load())
	assert.False(t, p.Loaded())
}

func TestPhoto_Load_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(path, []byte("not a picture"), 0o644))
	p, err := New(path)
	require.NoError(t, err)
	assert.Error(t, p.Load())
	_, err = p.Describe()
	assert.Error(t, err)
}

func TestPhoto_Describe_WithoutDecoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.png")
	writePNG(t, path, 10, 20)
	p, err := New(path)
	require.NoError(t, err)

	info, err := p.Describe()
	require.NoError(t, err)
	assert.Equal(t, 10, info.Width)
	assert.Equal(t, 20, info.Height)
	assert.False(t, p.Loaded())
	assert.Contains(t, info.String(), "10x20 png")
}

func TestPhoto_Key_IsCanonical(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.png")
	writePNG(t, path, 1, 1)

	abs, err := New(path)
	require.NoError(t, err)
	dotted, err := New(filepath.Join(dir, ".", "sub", "..", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, abs.Key(), dotted.Key())

	link := filepath.Join(dir, "link.png")
	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	linked, err := New(link)
	require.NoError(t, err)
	assert.Equal(t, abs.Key(), linked.Key())
	assert.Equal(t, "c.png", linked.Name())
}

func TestPhoto_ConcurrentLoadFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.png")
	writePNG(t, path, 8, 8)
	p, err := New(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Load())
		}()
		go func() {
			defer wg.Done()
			p.Flush()
		}()
	}
	wg.Wait()
	require.NoError(t, p.Load())
	assert.True(t, p.Loaded())
}
