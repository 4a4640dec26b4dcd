// Package rastercache implements the asynchronous raster source the
// image-stamp brush polls. EnsureLoading schedules a decode in the
// background; TryGet never blocks. Decode failures are remembered so a
// bad key does not retrigger work on every stroke.
package rastercache

import (
	"bytes"
	"image"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/mapforge/smfedit/pkg/brush"

	// Stamp sources arrive as PNG, JPEG or BMP files.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// LoadFunc fetches the raw bytes for a key. The default reads the key
// as a file path; hosts with asset stores or uploads supply their own.
type LoadFunc func(key string) ([]byte, error)

type state int

const (
	stateLoading state = iota
	stateReady
	stateFailed
)

type entry struct {
	state  state
	raster *brush.Raster
	err    error
}

// Cache is a concurrency-safe raster cache keyed by source descriptor.
type Cache struct {
	log  *zap.Logger
	load LoadFunc

	mu      sync.Mutex
	entries map[string]*entry
}

var _ brush.RasterCache = (*Cache)(nil)

// New creates a cache. A nil logger disables logging; a nil load
// function reads keys as file paths.
func New(log *zap.Logger, load LoadFunc) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	if load == nil {
		load = os.ReadFile
	}
	return &Cache{
		log:     log,
		load:    load,
		entries: make(map[string]*entry),
	}
}

// EnsureLoading schedules a decode for the key unless one is already
// in flight, resolved, or failed. It returns immediately.
func (c *Cache) EnsureLoading(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = &entry{state: stateLoading}
	go c.resolve(key)
}

// TryGet is a non-blocking poll for a resolved raster.
func (c *Cache) TryGet(key string) (*brush.Raster, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.state != stateReady {
		return nil, false
	}
	return e.raster, true
}

// Err returns the decode error for a failed key, if any.
func (c *Cache) Err(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.err
	}
	return nil
}

func (c *Cache) resolve(key string) {
	raster, err := c.decode(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[key]
	if err != nil {
		e.state = stateFailed
		e.err = err
		c.log.Warn("stamp raster failed to load", zap.String("key", key), zap.Error(err))
		return
	}
	e.state = stateReady
	e.raster = raster
	c.log.Debug("stamp raster loaded", zap.String("key", key),
		zap.Int("width", raster.W), zap.Int("height", raster.H))
}

func (c *Cache) decode(key string) (*brush.Raster, error) {
	data, err := c.load(key)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// FromImage reduces an image to a grayscale luminance raster in [0, 1].
func FromImage(img image.Image) *brush.Raster {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	r := &brush.Raster{W: w, H: h, Lum: make([]float32, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cr, cg, cb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Rec. 601 luma on 16-bit channels.
			lum := 0.299*float32(cr) + 0.587*float32(cg) + 0.114*float32(cb)
			r.Lum[y*w+x] = lum / 65535
		}
	}
	return r
}
