// Package imagestore loads the images extracted from a document: it resolves
// hrefs against the extraction root, probes dimensions and produces bitmaps
// scaled for display.
package imagestore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/llehouerou/folio/internal/cellsize"
	"github.com/llehouerou/folio/internal/imageloader"
	"github.com/llehouerou/folio/internal/logging"
)

var (
	// ErrNotFound is returned when an href resolves to no file.
	ErrNotFound = errors.New("image not found")
	// ErrUnsupported is returned for formats that cannot be rasterized.
	ErrUnsupported = errors.New("unsupported image format")
)

// SVG images are scalable and have no intrinsic raster size; they are
// reported at this size so layout can reserve space for them.
const (
	svgWidth  = 800
	svgHeight = 600
)

// Store reads images below a root directory. It is safe for concurrent use.
type Store struct {
	root  string
	cache *Cache
	sizes *SizeIndex
}

// Option configures a Store.
type Option func(*Store)

// WithCache stores resized bitmaps in c.
func WithCache(c *Cache) Option {
	return func(s *Store) { s.cache = c }
}

// WithSizeIndex remembers probed dimensions in ix.
func WithSizeIndex(ix *SizeIndex) Option {
	return func(s *Store) { s.sizes = ix }
}

// New returns a store rooted at root.
func New(root string, opts ...Option) *Store {
	s := &Store{root: filepath.Clean(root)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory images are resolved against.
func (s *Store) Root() string { return s.root }

// Size returns the pixel dimensions of the image at href without decoding
// its pixels.
func (s *Store) Size(href, chapter string) (width, height int, err error) {
	path, err := s.Resolve(href, chapter)
	if err != nil {
		return 0, 0, err
	}
	if isSVG(path) {
		return svgWidth, svgHeight, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	mtime := info.ModTime().UnixNano()
	if w, h, ok := s.sizes.Lookup(path, mtime); ok {
		return w, h, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s header: %w", href, err)
	}

	if err := s.sizes.Put(path, mtime, cfg.Width, cfg.Height); err != nil {
		logging.Logger().Debug("could not index image size", "src", href, "err", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Load decodes the image at href.
func (s *Store) Load(href, chapter string) (image.Image, error) {
	path, err := s.Resolve(href, chapter)
	if err != nil {
		return nil, err
	}
	return decodeFile(path)
}

func decodeFile(path string) (image.Image, error) {
	if isSVG(path) {
		return nil, fmt.Errorf("%w: svg", ErrUnsupported)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// LoadAndResize decodes src and scales it to rows terminal rows, keeping
// its aspect ratio. The width in cells is rounded up.
func (s *Store) LoadAndResize(src string, rows int, cell cellsize.Size) (imageloader.Resized, error) {
	if rows <= 0 || !cell.Valid() {
		return imageloader.Resized{}, fmt.Errorf("invalid target size %d rows at %dx%d px", rows, cell.Width, cell.Height)
	}

	path, err := s.Resolve(src, "")
	if err != nil {
		return imageloader.Resized{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return imageloader.Resized{}, err
	}
	key := cacheKey(path, info.ModTime().UnixNano(), rows, cell)

	if data := s.cache.Get(key); data != nil {
		if img, err := png.Decode(bytes.NewReader(data)); err == nil {
			return resized(img, rows, cell), nil
		}
	}

	img, err := decodeFile(path)
	if err != nil {
		return imageloader.Resized{}, err
	}

	b := img.Bounds()
	if b.Empty() {
		return imageloader.Resized{}, fmt.Errorf("decode %s: empty image", src)
	}

	height := rows * cell.Height
	width := max(1, int(float64(b.Dx())*float64(height)/float64(b.Dy())))
	logging.Logger().Debug("resizing image",
		"src", src, "from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "to", fmt.Sprintf("%dx%d", width, height))

	scaled := resize.Resize(uint(width), uint(height), img, resize.Lanczos3) //nolint:gosec // positive by construction

	if s.cache != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, scaled); err == nil {
			if err := s.cache.Put(key, buf.Bytes()); err != nil {
				logging.Logger().Debug("could not cache resized image", "src", src, "err", err)
			}
		}
	}

	return resized(scaled, rows, cell), nil
}

func resized(img image.Image, rows int, cell cellsize.Size) imageloader.Resized {
	return imageloader.Resized{
		Image:       img,
		WidthCells:  cellsize.PixelsToCells(img.Bounds().Dx(), cell.Width),
		HeightCells: rows,
	}
}

func isSVG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".svg")
}
