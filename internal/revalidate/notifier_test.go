package revalidate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/multierr"
)

type stubCache struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *stubCache) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, keys...)
	return s.err
}

func (s *stubCache) PageCacheKey(prefix, path string) string {
	return "sf:" + prefix + ":" + strings.Trim(path, "/")
}

type stubPublisher struct {
	mu     sync.Mutex
	topic  string
	data   []byte
	attrs  map[string]string
	err    error
	called int
}

func (s *stubPublisher) Publish(_ context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.called++
	s.topic, s.data, s.attrs = topic, data, attrs
	return "msg-1", s.err
}

func TestNotifyContentChangedInvalidatesAndPublishes(t *testing.T) {
	cache := &stubCache{}
	pub := &stubPublisher{}
	n := NewNotifier(cache, pub, Config{PagePrefix: "page", Topic: "content"}, nil)
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	if err := n.NotifyContentChanged(context.Background(), "plomeria-nunez", "plomero", "monterrey"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	want := []string{"sf:page:plomeria-nunez", "sf:page:plomero", "sf:page:plomero/monterrey"}
	if strings.Join(cache.keys, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected keys %v", cache.keys)
	}
	if pub.topic != "content" || pub.attrs["event"] != EventContentChanged {
		t.Fatalf("unexpected publish %s %v", pub.topic, pub.attrs)
	}
	var evt ContentChanged
	if err := json.Unmarshal(pub.data, &evt); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if evt.StorefrontSlug != "plomeria-nunez" || len(evt.Paths) != 3 || evt.CitySlug != "monterrey" {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestNotifyContentChangedCombinesFailures(t *testing.T) {
	cache := &stubCache{err: errors.New("redis down")}
	pub := &stubPublisher{err: errors.New("pubsub down")}
	n := NewNotifier(cache, pub, Config{PagePrefix: "page", Topic: "content"}, nil)

	err := n.NotifyContentChanged(context.Background(), "a", "", "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(multierr.Errors(err)) != 2 {
		t.Fatalf("expected both failures, got %v", err)
	}
	if pub.called != 1 {
		t.Fatalf("publish must run even when the cache fails")
	}
}

func TestNotifyContentChangedWithoutTargets(t *testing.T) {
	n := NewNotifier(nil, nil, Config{}, nil)
	if err := n.NotifyContentChanged(context.Background(), "a", "b", "c"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if err := n.NotifyContentChanged(context.Background(), " ", "", ""); err == nil {
		t.Fatalf("expected validation error for blank slug")
	}
}

func TestNotifyAsyncSurvivesCallerCancel(t *testing.T) {
	cache := &stubCache{}
	n := NewNotifier(cache, nil, Config{PagePrefix: "page"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	n.NotifyAsync(ctx, "a", "", "")
	cancel()
	n.Wait()
	if len(cache.keys) != 1 {
		t.Fatalf("expected background invalidation, got %v", cache.keys)
	}
}
