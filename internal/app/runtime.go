// Package app wires the storefront pipeline from configuration. The api
// server and the operator CLI share it.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefronts/internal/content"
	"github.com/angelmondragon/storefronts/internal/media"
	"github.com/angelmondragon/storefronts/internal/regeneration"
	"github.com/angelmondragon/storefronts/internal/revalidate"
	"github.com/angelmondragon/storefronts/internal/storefronts"
	"github.com/angelmondragon/storefronts/pkg/config"
	"github.com/angelmondragon/storefronts/pkg/copywriter"
	"github.com/angelmondragon/storefronts/pkg/db"
	"github.com/angelmondragon/storefronts/pkg/logger"
	"github.com/angelmondragon/storefronts/pkg/metrics"
	"github.com/angelmondragon/storefronts/pkg/migrate"
	"github.com/angelmondragon/storefronts/pkg/places"
	"github.com/angelmondragon/storefronts/pkg/pubsub"
	"github.com/angelmondragon/storefronts/pkg/redis"
	"github.com/angelmondragon/storefronts/pkg/storage/gcs"
)

// Runtime holds the long-lived clients and services of a process.
type Runtime struct {
	DB           *db.Client
	Redis        *redis.Client
	GCS          *gcs.Client
	PubSub       *pubsub.Client
	Registry     *prometheus.Registry
	Storefronts  storefronts.Service
	Images       *media.Service
	Notifier     *revalidate.Notifier
	Orchestrator *regeneration.Orchestrator
}

// New connects every dependency. Redis and Pub/Sub are optional: without
// Redis the run lock is process-local and no page cache is invalidated.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (_ *Runtime, err error) {
	rt := &Runtime{Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()
	rt.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if rt.DB, err = db.New(ctx, cfg.DB, cfg.FeatureFlags, logg); err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	if err = migrate.MaybeRunDev(ctx, cfg, logg, rt.DB); err != nil {
		return nil, fmt.Errorf("dev migrations: %w", err)
	}

	if cfg.Redis.Enabled() {
		if rt.Redis, err = redis.New(ctx, cfg.Redis, logg); err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
	} else {
		logg.Warn(ctx, "redis not configured; using process-local regeneration lock")
	}

	if rt.GCS, err = gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg); err != nil {
		return nil, fmt.Errorf("bootstrap gcs: %w", err)
	}

	if cfg.PubSub.ContentChangedTopic != "" {
		if rt.PubSub, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg); err != nil {
			return nil, fmt.Errorf("bootstrap pubsub: %w", err)
		}
	}

	directory, err := places.NewClient(cfg.Places.APIKey,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithLanguage(cfg.Places.LanguageCode),
		places.WithTimeout(cfg.Places.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("bootstrap places: %w", err)
	}

	var generator content.Generator
	if cfg.FeatureFlags.DisableContent || cfg.Copywriter.APIKey == "" {
		logg.Warn(ctx, "copy generation disabled; storefronts use template copy")
	} else {
		cw, cwErr := copywriter.NewClient(cfg.Copywriter, cfg.Places.LanguageCode)
		if cwErr != nil {
			return nil, fmt.Errorf("bootstrap copywriter: %w", cwErr)
		}
		generator = cw
	}

	pipeline, err := media.NewPipeline(media.NewTransformer(cfg.Media), rt.GCS, cfg.Media.StageTimeout, logg)
	if err != nil {
		return nil, err
	}
	if rt.Images, err = media.NewService(rt.DB.DB(), pipeline, rt.GCS, cfg.Media.MaxUploadBytes(), logg); err != nil {
		return nil, err
	}
	if rt.Storefronts, err = storefronts.NewService(storefronts.NewRepository(rt.DB.DB())); err != nil {
		return nil, err
	}

	var (
		cache     revalidate.PageCache
		publisher revalidate.Publisher
		locker    regeneration.Locker = regeneration.NewLocalLocker()
	)
	if rt.Redis != nil {
		cache = rt.Redis
		if locker, err = regeneration.NewRedisLocker(rt.Redis, cfg.Regeneration.LockTTL); err != nil {
			return nil, err
		}
	}
	if rt.PubSub != nil {
		publisher = rt.PubSub
	}
	rt.Notifier = revalidate.NewNotifier(cache, publisher, revalidate.Config{
		PagePrefix: cfg.Cache.PageKeyPrefix,
		Topic:      cfg.PubSub.ContentChangedTopic,
		Timeout:    cfg.Regeneration.NotifyTimeout,
	}, logg)

	rt.Orchestrator, err = regeneration.NewOrchestrator(regeneration.Deps{
		DB:          rt.DB.DB(),
		Directory:   directory,
		Photos:      directory,
		Synthesizer: content.NewSynthesizer(generator, logg),
		Images:      rt.Images,
		Notifier:    rt.Notifier,
		Locker:      locker,
		Metrics:     metrics.NewRegenerationMetrics(rt.Registry),
		Logger:      logg,
	}, regeneration.Config{
		MaxPhotos:               cfg.Media.MaxPhotos,
		PhotoMaxWidth:           cfg.Media.HeroWidth,
		FullSyncMaxTestimonials: cfg.Regeneration.FullSyncMaxTestimonials,
	})
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// Close waits for pending notifications and releases every client.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	if r.Notifier != nil {
		r.Notifier.Wait()
	}
	var err error
	if r.PubSub != nil {
		err = multierr.Append(err, r.PubSub.Close())
	}
	if r.GCS != nil {
		err = multierr.Append(err, r.GCS.Close())
	}
	if r.Redis != nil {
		err = multierr.Append(err, r.Redis.Close())
	}
	if r.DB != nil {
		err = multierr.Append(err, r.DB.Close())
	}
	return err
}
