package revalidate

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/logger"
)

// EventContentChanged is the event type published after a storefront changes.
const EventContentChanged = "storefront.content_changed"

// PageCache drops rendered pages from the shared cache.
type PageCache interface {
	Del(ctx context.Context, keys ...string) error
	PageCacheKey(prefix, path string) string
}

// Publisher emits change events.
type Publisher interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
}

// Config tunes the notifier.
type Config struct {
	PagePrefix string
	Topic      string
	Timeout    time.Duration
}

// ContentChanged is the published payload.
type ContentChanged struct {
	Event          string    `json:"event"`
	StorefrontSlug string    `json:"storefront_slug"`
	CategorySlug   string    `json:"category_slug,omitempty"`
	CitySlug       string    `json:"city_slug,omitempty"`
	Paths          []string  `json:"paths"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Notifier invalidates cached pages and announces content changes. Either
// collaborator may be nil.
type Notifier struct {
	cache     PageCache
	publisher Publisher
	cfg       Config
	logg      *logger.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewNotifier wires the invalidation targets.
func NewNotifier(cache PageCache, pub Publisher, cfg Config, logg *logger.Logger) *Notifier {
	if logg == nil {
		logg = logger.Nop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Notifier{cache: cache, publisher: pub, cfg: cfg, logg: logg, now: time.Now}
}

// Paths lists the public pages showing a storefront.
func Paths(storefrontSlug, categorySlug, citySlug string) []string {
	paths := []string{"/" + storefrontSlug}
	if categorySlug != "" {
		paths = append(paths, "/"+categorySlug)
		if citySlug != "" {
			paths = append(paths, "/"+categorySlug+"/"+citySlug)
		}
	}
	return paths
}

// NotifyContentChanged drops the cached pages and publishes the change
// event. Failures of both targets are combined.
func (n *Notifier) NotifyContentChanged(ctx context.Context, storefrontSlug, categorySlug, citySlug string) error {
	if strings.TrimSpace(storefrontSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "storefront slug is required")
	}
	paths := Paths(storefrontSlug, categorySlug, citySlug)

	var err error
	if n.cache != nil {
		keys := make([]string, 0, len(paths))
		for _, p := range paths {
			keys = append(keys, n.cache.PageCacheKey(n.cfg.PagePrefix, p))
		}
		if delErr := n.cache.Del(ctx, keys...); delErr != nil {
			err = multierr.Append(err, pkgerrors.Wrap(pkgerrors.CodeDependency, delErr, "invalidate page cache"))
		}
	}
	if n.publisher != nil && n.cfg.Topic != "" {
		payload, marshalErr := json.Marshal(ContentChanged{
			Event:          EventContentChanged,
			StorefrontSlug: storefrontSlug,
			CategorySlug:   categorySlug,
			CitySlug:       citySlug,
			Paths:          paths,
			OccurredAt:     n.now().UTC(),
		})
		if marshalErr != nil {
			return multierr.Append(err, marshalErr)
		}
		attrs := map[string]string{"event": EventContentChanged, "storefront_slug": storefrontSlug}
		if _, pubErr := n.publisher.Publish(ctx, n.cfg.Topic, payload, attrs); pubErr != nil {
			err = multierr.Append(err, pkgerrors.Wrap(pkgerrors.CodeDependency, pubErr, "publish content change"))
		}
	}
	return err
}

// NotifyAsync runs NotifyContentChanged in the background, detached from
// the caller's cancellation and bounded by the configured timeout. Errors
// are logged.
func (n *Notifier) NotifyAsync(ctx context.Context, storefrontSlug, categorySlug, citySlug string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.cfg.Timeout)
		defer cancel()
		if err := n.NotifyContentChanged(bg, storefrontSlug, categorySlug, citySlug); err != nil {
			for _, e := range multierr.Errors(err) {
				n.logg.WarnErr(n.logg.WithField(bg, "storefront_slug", storefrontSlug), "revalidate.notify_failed", e)
			}
			return
		}
		n.logg.Info(n.logg.WithField(bg, "storefront_slug", storefrontSlug), "revalidate.notified")
	}()
}

// Wait blocks until background notifications finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
