package drift

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
)

// AssetKey identifies one cache entry: a bitmap source plus the target pixel
// size it was fitted to.
type AssetKey struct {
	Source string
	Size   int
}

func (k AssetKey) flightID() string {
	return fmt.Sprintf("%s\x00%d", k.Source, k.Size)
}

// AssetCache is a de-duplicating asynchronous loader and store for decoded
// bitmaps. Loads run off the render path; the render path only ever observes
// the key→bitmap map. A second request for a key already in flight does not
// start a second decode — both requesters observe the same eventual entry.
//
// The cache is an explicit component with its own lifecycle: construct one
// per Field (or share one deliberately) and Clear it on teardown.
type AssetCache struct {
	mu       sync.Mutex
	entries  map[AssetKey]*ebiten.Image
	inflight map[AssetKey]int // pending requester count per key
	gen      uint64
	group    singleflight.Group
}

// NewAssetCache creates an empty cache.
func NewAssetCache() *AssetCache {
	return &AssetCache{
		entries:  make(map[AssetKey]*ebiten.Image),
		inflight: make(map[AssetKey]int),
	}
}

// Get returns the cached bitmap for key, or (nil, false) while absent or
// still loading.
func (c *AssetCache) Get(key AssetKey) (*ebiten.Image, bool) {
	c.mu.Lock()
	img, ok := c.entries[key]
	c.mu.Unlock()
	return img, ok
}

// Loading reports whether a load for key is currently in flight.
func (c *AssetCache) Loading(key AssetKey) bool {
	c.mu.Lock()
	n := c.inflight[key]
	c.mu.Unlock()
	return n > 0
}

// EnsureLoaded begins loading key's bitmap unless it is already cached or in
// flight. produce supplies the decoded source image; it runs on a background
// goroutine and may block. The result is fitted to the key's target size
// before being published (aspect preserved: the longer dimension becomes
// Size). Failures are logged and leave the entry absent; callers keep
// drawing their fallback and may retry by calling EnsureLoaded again.
func (c *AssetCache) EnsureLoaded(key AssetKey, produce func() (image.Image, error)) {
	if produce == nil {
		return
	}
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return
	}
	gen := c.gen
	c.inflight[key]++
	c.mu.Unlock()

	go c.load(key, gen, produce)
}

var errNoImage = errors.New("loader returned no image")

func (c *AssetCache) load(key AssetKey, gen uint64, produce func() (image.Image, error)) {
	// Concurrent requests for the same key converge here: only the first
	// runs produce, the rest block in Do and share its result.
	v, err, _ := c.group.Do(key.flightID(), func() (any, error) {
		src, err := produce()
		if err != nil {
			return nil, err
		}
		if src == nil {
			return nil, errNoImage
		}
		return fitToBox(src, key.Size), nil
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	// Stale flights belong to a discarded inflight map; only current-
	// generation flights own a pending count.
	if gen == c.gen {
		if n := c.inflight[key]; n > 1 {
			c.inflight[key] = n - 1
		} else {
			delete(c.inflight, key)
		}
	}
	if err != nil {
		log.Printf("drift: asset %q (size %d) load failed: %v", key.Source, key.Size, err)
		return
	}
	// A load that races Clear publishes nothing; the caller re-triggers.
	if gen == c.gen {
		c.entries[key] = v.(*ebiten.Image)
	}
}

// Clear drops all entries and in-flight flags. Previously-loaded keys read
// as absent afterward; callers re-trigger loads on demand.
func (c *AssetCache) Clear() {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[AssetKey]*ebiten.Image)
	for key := range c.inflight {
		c.group.Forget(key.flightID())
	}
	c.inflight = make(map[AssetKey]int)
	c.mu.Unlock()
}

// fitToBox scales src so its longer dimension equals box pixels, preserving
// aspect ratio. Sources already at the target size (e.g. rasterized custom
// content) upload directly.
func fitToBox(src image.Image, box int) *ebiten.Image {
	if box < 1 {
		box = 1
	}
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw < 1 || sh < 1 {
		return ebiten.NewImage(1, 1)
	}

	var dw, dh int
	if sw >= sh {
		dw = box
		dh = (sh*box + sw/2) / sw
	} else {
		dh = box
		dw = (sw*box + sh/2) / sh
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	if dw == sw && dh == sh {
		return ebiten.NewImageFromImage(src)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, xdraw.Over, nil)
	return ebiten.NewImageFromImage(dst)
}
