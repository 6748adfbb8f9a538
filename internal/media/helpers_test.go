package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/angelmondragon/storefronts/pkg/config"
	"github.com/angelmondragon/storefronts/pkg/logger"
)

func testPNG(t testing.TB, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func shade(i int) color.Color {
	return color.RGBA{R: uint8(20 * i), G: uint8(255 - 20*i), B: 90, A: 255}
}

func testMediaConfig() config.MediaConfig {
	return config.MediaConfig{
		MaxUploadMB:   1,
		HeroWidth:     32,
		HeroHeight:    18,
		GalleryWidth:  24,
		GalleryHeight: 18,
		ImageQuality:  80,
	}
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakeStore) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fakeFetcher struct {
	photos map[string][]byte
	calls  []string
}

func (f *fakeFetcher) PhotoBytes(_ context.Context, name string, _ int) ([]byte, string, error) {
	f.calls = append(f.calls, name)
	data, ok := f.photos[name]
	if !ok {
		return nil, "", fmt.Errorf("photo %s unavailable", name)
	}
	return data, "image/png", nil
}

func photoSources(fetcher *fakeFetcher, names ...string) []Source {
	out := make([]Source, 0, len(names))
	for _, name := range names {
		out = append(out, PlacePhotoSource{Fetcher: fetcher, Name: name, MaxWidth: 1920})
	}
	return out
}

func newTestPipeline(t *testing.T, store ObjectStore) *Pipeline {
	t.Helper()
	p, err := NewPipeline(NewTransformer(testMediaConfig()), store, 0, logger.Nop())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p
}
