package drift

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func solidSource(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func waitForEntry(t *testing.T, c *AssetCache, key AssetKey) *ebiten.Image {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if img, ok := c.Get(key); ok {
			return img
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("entry %v never appeared", key)
	return nil
}

func TestAssetCacheLoadsAndStores(t *testing.T) {
	c := NewAssetCache()
	key := AssetKey{Source: "image:snow.png", Size: 16}

	c.EnsureLoaded(key, func() (image.Image, error) {
		return solidSource(32, 32), nil
	})
	img := waitForEntry(t, c, key)

	b := img.Bounds()
	if b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("stored size = %dx%d, want 16x16", b.Dx(), b.Dy())
	}
	if c.Loading(key) {
		t.Error("Loading = true after completion")
	}
}

func TestAssetCacheDeduplicatesInflight(t *testing.T) {
	c := NewAssetCache()
	key := AssetKey{Source: "image:snow.png", Size: 8}

	var calls atomic.Int32
	gate := make(chan struct{})
	produce := func() (image.Image, error) {
		calls.Add(1)
		<-gate
		return solidSource(8, 8), nil
	}

	c.EnsureLoaded(key, produce)
	c.EnsureLoaded(key, produce)
	c.EnsureLoaded(key, produce)
	close(gate)

	waitForEntry(t, c, key)
	if got := calls.Load(); got != 1 {
		t.Errorf("produce called %d times, want 1", got)
	}
}

func TestAssetCacheConcurrentRequestsShareOneDecode(t *testing.T) {
	c := NewAssetCache()
	key := AssetKey{Source: "image:snow.png", Size: 8}

	var calls atomic.Int32
	gate := make(chan struct{})
	produce := func() (image.Image, error) {
		calls.Add(1)
		<-gate
		return solidSource(8, 8), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.EnsureLoaded(key, produce)
		}()
	}
	wg.Wait()
	close(gate)

	waitForEntry(t, c, key)
	if got := calls.Load(); got != 1 {
		t.Errorf("produce called %d times for 20 concurrent requests, want 1", got)
	}

	deadline := time.Now().Add(time.Second)
	for c.Loading(key) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if c.Loading(key) {
		t.Error("Loading = true after all requests completed")
	}
}

func TestAssetCacheDistinctSizesLoadSeparately(t *testing.T) {
	c := NewAssetCache()
	var calls atomic.Int32
	produce := func() (image.Image, error) {
		calls.Add(1)
		return solidSource(64, 64), nil
	}

	small := AssetKey{Source: "image:snow.png", Size: 8}
	large := AssetKey{Source: "image:snow.png", Size: 32}
	c.EnsureLoaded(small, produce)
	c.EnsureLoaded(large, produce)

	a := waitForEntry(t, c, small)
	b := waitForEntry(t, c, large)
	if a.Bounds().Dx() != 8 || b.Bounds().Dx() != 32 {
		t.Errorf("sizes = %d and %d, want 8 and 32", a.Bounds().Dx(), b.Bounds().Dx())
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("produce called %d times, want 2", got)
	}
}

func TestAssetCacheEnsureLoadedNoopWhenCached(t *testing.T) {
	c := NewAssetCache()
	key := AssetKey{Source: "image:snow.png", Size: 8}

	var calls atomic.Int32
	produce := func() (image.Image, error) {
		calls.Add(1)
		return solidSource(8, 8), nil
	}
	c.EnsureLoaded(key, produce)
	waitForEntry(t, c, key)

	c.EnsureLoaded(key, produce)
	time.Sleep(10 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("produce called %d times after cached, want 1", got)
	}
}

func TestAssetCacheFailureLeavesEntryAbsent(t *testing.T) {
	c := NewAssetCache()
	key := AssetKey{Source: "image:missing.png", Size: 8}

	done := make(chan struct{})
	c.EnsureLoaded(key, func() (image.Image, error) {
		defer close(done)
		return nil, errors.New("no such file")
	})
	<-done

	deadline := time.Now().Add(time.Second)
	for c.Loading(key) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if _, ok := c.Get(key); ok {
		t.Error("failed load populated the cache")
	}
	if c.Loading(key) {
		t.Error("failed load left the in-flight flag set")
	}

	// Failure is not sticky: a retry may succeed.
	c.EnsureLoaded(key, func() (image.Image, error) {
		return solidSource(8, 8), nil
	})
	waitForEntry(t, c, key)
}

func TestAssetCacheNilImageTreatedAsFailure(t *testing.T) {
	c := NewAssetCache()
	key := AssetKey{Source: "image:empty.png", Size: 8}

	// A loader may return neither an image nor an error; the cache must not
	// panic and must leave the entry absent.
	done := make(chan struct{})
	c.EnsureLoaded(key, func() (image.Image, error) {
		defer close(done)
		return nil, nil
	})
	<-done

	deadline := time.Now().Add(time.Second)
	for c.Loading(key) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if _, ok := c.Get(key); ok {
		t.Error("nil-image load populated the cache")
	}
	if c.Loading(key) {
		t.Error("nil-image load left the in-flight flag set")
	}

	// Retry with a working loader succeeds.
	c.EnsureLoaded(key, func() (image.Image, error) {
		return solidSource(8, 8), nil
	})
	waitForEntry(t, c, key)
}

func TestAssetCacheClear(t *testing.T) {
	c := NewAssetCache()
	key := AssetKey{Source: "image:snow.png", Size: 8}

	c.EnsureLoaded(key, func() (image.Image, error) {
		return solidSource(8, 8), nil
	})
	waitForEntry(t, c, key)

	c.Clear()
	if _, ok := c.Get(key); ok {
		t.Error("entry survived Clear")
	}
}

func TestAssetCacheClearDropsInflightResult(t *testing.T) {
	c := NewAssetCache()
	key := AssetKey{Source: "image:snow.png", Size: 8}

	gate := make(chan struct{})
	c.EnsureLoaded(key, func() (image.Image, error) {
		<-gate
		return solidSource(8, 8), nil
	})

	c.Clear()
	close(gate)

	// The stale load must not repopulate the cleared cache.
	time.Sleep(50 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Error("load racing Clear repopulated the cache")
	}
}

func TestFitToBoxAspect(t *testing.T) {
	cases := []struct {
		srcW, srcH, box, wantW, wantH int
	}{
		{32, 32, 16, 16, 16},
		{64, 32, 16, 16, 8},
		{32, 64, 16, 8, 16},
		{16, 16, 16, 16, 16},
		{3, 100, 10, 1, 10},
	}
	for _, tc := range cases {
		got := fitToBox(solidSource(tc.srcW, tc.srcH), tc.box)
		b := got.Bounds()
		if b.Dx() != tc.wantW || b.Dy() != tc.wantH {
			t.Errorf("fitToBox(%dx%d, %d) = %dx%d, want %dx%d",
				tc.srcW, tc.srcH, tc.box, b.Dx(), b.Dy(), tc.wantW, tc.wantH)
		}
	}
}
