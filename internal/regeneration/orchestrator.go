package regeneration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/internal/content"
	"github.com/angelmondragon/storefronts/internal/media"
	"github.com/angelmondragon/storefronts/internal/reviews"
	"github.com/angelmondragon/storefronts/internal/services"
	"github.com/angelmondragon/storefronts/internal/slugs"
	"github.com/angelmondragon/storefronts/internal/storefronts"
	"github.com/angelmondragon/storefronts/internal/testimonials"
	"github.com/angelmondragon/storefronts/pkg/db"
	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/logger"
	"github.com/angelmondragon/storefronts/pkg/metrics"
	"github.com/angelmondragon/storefronts/pkg/places"
)

// Directory fetches business records.
type Directory interface {
	GetPlaceDetails(ctx context.Context, placeID string) (*places.PlaceDetails, error)
}

// CopySynthesizer produces marketing copy; it never fails.
type CopySynthesizer interface {
	Synthesize(ctx context.Context, p content.Profile) content.MarketingCopy
}

// ImageSyncer replaces the directory images of a storefront.
type ImageSyncer interface {
	SyncExternal(ctx context.Context, storefrontID uuid.UUID, sources []media.Source) (media.SyncResult, error)
}

// ChangeNotifier announces public content changes in the background.
type ChangeNotifier interface {
	NotifyAsync(ctx context.Context, storefrontSlug, categorySlug, citySlug string)
}

// Config tunes a run.
type Config struct {
	MaxPhotos               int
	PhotoMaxWidth           int
	FullSyncMaxTestimonials int
}

// Deps are the orchestrator collaborators. Notifier and Metrics are optional.
type Deps struct {
	DB          *gorm.DB
	Directory   Directory
	Photos      media.PhotoFetcher
	Synthesizer CopySynthesizer
	Images      ImageSyncer
	Notifier    ChangeNotifier
	Locker      Locker
	Metrics     *metrics.RegenerationMetrics
	Logger      *logger.Logger
}

// StageError records a stage that failed without aborting the run.
type StageError struct {
	Stage   enums.RegenerationStage `json:"stage"`
	Message string                  `json:"message"`
}

// Summary reports the outcome of a run.
type Summary struct {
	StorefrontID        uuid.UUID               `json:"storefront_id"`
	Slug                string                  `json:"slug"`
	Stage               enums.RegenerationStage `json:"stage"`
	ServicesCreated     int                     `json:"services_created"`
	TestimonialsCreated int                     `json:"testimonials_created"`
	ImagesCreated       int                     `json:"images_created"`
	ImagesFailed        int                     `json:"images_failed"`
	ContentSource       enums.ContentSource     `json:"content_source"`
	StageErrors         []StageError            `json:"stage_errors,omitempty"`
	Duration            time.Duration           `json:"duration"`
}

// ProvisionInput creates a storefront from a directory record.
type ProvisionInput struct {
	PlaceID        string
	OwnerID        *uuid.UUID
	Differentiator *string
	ServiceAreas   []string
	WhatsApp       *string
	Activate       bool
}

// Orchestrator runs regeneration and provisioning.
type Orchestrator struct {
	db           *gorm.DB
	storefronts  *storefronts.Repository
	services     *services.Repository
	testimonials *testimonials.Repository
	directory    Directory
	photos       media.PhotoFetcher
	synth        CopySynthesizer
	images       ImageSyncer
	notifier     ChangeNotifier
	locker       Locker
	metrics      *metrics.RegenerationMetrics
	cfg          Config
	logg         *logger.Logger
	now          func() time.Time
}

// NewOrchestrator validates and wires the collaborators.
func NewOrchestrator(deps Deps, cfg Config) (*Orchestrator, error) {
	switch {
	case deps.DB == nil:
		return nil, fmt.Errorf("database required")
	case deps.Directory == nil:
		return nil, fmt.Errorf("directory client required")
	case deps.Photos == nil:
		return nil, fmt.Errorf("photo fetcher required")
	case deps.Synthesizer == nil:
		return nil, fmt.Errorf("content synthesizer required")
	case deps.Images == nil:
		return nil, fmt.Errorf("image syncer required")
	}
	if deps.Locker == nil {
		deps.Locker = NewLocalLocker()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if cfg.MaxPhotos <= 0 {
		cfg.MaxPhotos = 10
	}
	return &Orchestrator{
		db:           deps.DB,
		storefronts:  storefronts.NewRepository(deps.DB),
		services:     services.NewRepository(deps.DB),
		testimonials: testimonials.NewRepository(deps.DB),
		directory:    deps.Directory,
		photos:       deps.Photos,
		synth:        deps.Synthesizer,
		images:       deps.Images,
		notifier:     deps.Notifier,
		locker:       deps.Locker,
		metrics:      deps.Metrics,
		cfg:          cfg,
		logg:         deps.Logger,
		now:          time.Now,
	}, nil
}

// Regenerate re-synchronizes an existing storefront with its directory
// record. Only a failed fetch fails the run; later stage errors are
// collected in the summary. Testimonials are not capped.
func (o *Orchestrator) Regenerate(ctx context.Context, storefrontID uuid.UUID) (*Summary, error) {
	start := o.now()
	unlock, err := o.locker.TryLock(ctx, storefrontID)
	if err != nil {
		return nil, err
	}
	defer o.release(ctx, unlock)
	ctx = o.runContext(ctx, storefrontID)

	sf, err := o.storefronts.FindByID(ctx, storefrontID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "storefront not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load storefront")
	}

	m := newMachine()
	summary := &Summary{StorefrontID: sf.ID, Slug: sf.Slug, Stage: m.stage}
	o.logg.Info(ctx, "regeneration.stage.fetching")

	snap, err := o.fetch(ctx, sf)
	if err != nil {
		o.fail(ctx, m, summary, start, err)
		return summary, err
	}
	o.run(ctx, m, sf, snap, 0, summary)
	o.finish(ctx, m, summary, start)
	return summary, nil
}

// Provision creates a storefront from a directory place id and runs the
// full sync with the testimonial cap applied.
func (o *Orchestrator) Provision(ctx context.Context, in ProvisionInput) (*Summary, error) {
	start := o.now()
	placeID := strings.TrimSpace(in.PlaceID)
	if placeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "place id is required")
	}

	details, err := o.directory.GetPlaceDetails(ctx, placeID)
	if err != nil {
		o.metrics.ObserveRun(enums.StageFailed.String(), o.now().Sub(start))
		return nil, err
	}
	snap := storefronts.SnapshotFromPlace(details)
	if snap.Core.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "directory record has no business name")
	}

	sf := snap.Core.NewStorefront()
	sf.ExternalDirectoryID = &placeID
	sf.OwnerID = in.OwnerID
	sf.Differentiator = in.Differentiator
	sf.WhatsApp = in.WhatsApp
	sf.ServiceAreas = in.ServiceAreas
	sf.IsActive = in.Activate

	err = db.WithTx(o.db.WithContext(ctx), func(tx *gorm.DB) error {
		existing, err := o.storefronts.FindByExternalID(tx, placeID)
		if err != nil {
			return err
		}
		if existing != nil {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "place %s is already linked to storefront %s", placeID, existing.Slug)
		}
		slug, err := slugs.Allocate(ctx, tx, slugs.StorefrontScope(), sf.Name, nil)
		if err != nil {
			return err
		}
		sf.Slug = slug
		return o.storefronts.Create(tx, sf)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "storefront already exists")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create storefront")
	}

	unlock, err := o.locker.TryLock(ctx, sf.ID)
	if err != nil {
		return nil, err
	}
	defer o.release(ctx, unlock)
	ctx = o.runContext(ctx, sf.ID)
	o.logg.Info(o.logg.WithField(ctx, "slug", sf.Slug), "regeneration.provisioned")

	m := newMachine()
	summary := &Summary{StorefrontID: sf.ID, Slug: sf.Slug, Stage: m.stage}
	o.run(ctx, m, sf, snap, o.cfg.FullSyncMaxTestimonials, summary)
	o.finish(ctx, m, summary, start)
	return summary, nil
}

func (o *Orchestrator) runContext(ctx context.Context, storefrontID uuid.UUID) context.Context {
	ctx = o.logg.WithStorefrontID(ctx, storefrontID.String())
	return o.logg.WithRunID(ctx, uuid.NewString())
}

func (o *Orchestrator) release(ctx context.Context, unlock Unlock) {
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		o.logg.WarnErr(ctx, "regeneration.unlock_failed", err)
	}
}

func (o *Orchestrator) fetch(ctx context.Context, sf *models.Storefront) (storefronts.Snapshot, error) {
	if sf.ExternalDirectoryID == nil || strings.TrimSpace(*sf.ExternalDirectoryID) == "" {
		return storefronts.Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "storefront is not linked to a directory record")
	}
	details, err := o.directory.GetPlaceDetails(ctx, *sf.ExternalDirectoryID)
	if err != nil {
		return storefronts.Snapshot{}, err
	}
	snap := storefronts.SnapshotFromPlace(details)
	if snap.Core.Name == "" {
		snap.Core.Name = sf.Name
	}
	return snap, nil
}

// run executes every stage after Fetching. A stage error is recorded and
// the run continues.
func (o *Orchestrator) run(ctx context.Context, m *machine, sf *models.Storefront, snap storefronts.Snapshot, maxTestimonials int, summary *Summary) {
	mc := o.synth.Synthesize(ctx, snap.Profile(sf))
	summary.ContentSource = mc.Source

	o.stage(ctx, m, summary, enums.StageImagesSyncing, func() error {
		res, err := o.images.SyncExternal(ctx, sf.ID, o.photoSources(snap))
		summary.ImagesCreated = res.Created
		summary.ImagesFailed = len(res.Failures)
		o.metrics.AddImages("created", res.Created)
		o.metrics.AddImages("failed", len(res.Failures))
		return err
	})

	core := snap.Core
	core.ApplyCopy(mc)
	o.stage(ctx, m, summary, enums.StageCoreFieldsUpdating, func() error {
		return o.storefronts.UpdateCoreFields(o.db.WithContext(ctx), sf.ID, core)
	})

	o.stage(ctx, m, summary, enums.StageTestimonialsSyncing, func() error {
		curated := reviews.Curate(snap.Reviews, maxTestimonials)
		return db.WithTx(o.db.WithContext(ctx), func(tx *gorm.DB) error {
			created, err := o.testimonials.Replace(tx, sf.ID, curated)
			summary.TestimonialsCreated = created
			return err
		})
	})

	o.stage(ctx, m, summary, enums.StageServicesSyncing, func() error {
		return db.WithTx(o.db.WithContext(ctx), func(tx *gorm.DB) error {
			rows, err := o.services.Replace(ctx, tx, sf.ID, mc.Services)
			summary.ServicesCreated = len(rows)
			return err
		})
	})

	o.stage(ctx, m, summary, enums.StageRevalidating, func() error {
		if !sf.IsActive || o.notifier == nil {
			return nil
		}
		o.notifier.NotifyAsync(ctx, sf.Slug, core.CategorySlug(), core.CitySlug())
		return nil
	})
}

func (o *Orchestrator) stage(ctx context.Context, m *machine, summary *Summary, stage enums.RegenerationStage, fn func() error) {
	if err := m.advance(stage); err != nil {
		o.recordStageError(ctx, summary, stage, err)
		return
	}
	summary.Stage = stage
	o.logg.Info(ctx, "regeneration.stage."+stage.String())
	if err := fn(); err != nil {
		o.recordStageError(ctx, summary, stage, err)
	}
}

func (o *Orchestrator) recordStageError(ctx context.Context, summary *Summary, stage enums.RegenerationStage, err error) {
	summary.StageErrors = append(summary.StageErrors, StageError{Stage: stage, Message: err.Error()})
	o.metrics.IncStageFailure(stage.String())
	o.logg.Error(o.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "regeneration.stage_failed."+stage.String(), err)
}

func (o *Orchestrator) photoSources(snap storefronts.Snapshot) []media.Source {
	photos := snap.Photos
	if len(photos) > o.cfg.MaxPhotos {
		photos = photos[:o.cfg.MaxPhotos]
	}
	sources := make([]media.Source, 0, len(photos))
	for _, p := range photos {
		sources = append(sources, media.PlacePhotoSource{
			Fetcher:  o.photos,
			Name:     p.Name,
			MaxWidth: o.cfg.PhotoMaxWidth,
			Alt:      snap.Core.Name,
		})
	}
	return sources
}

func (o *Orchestrator) fail(ctx context.Context, m *machine, summary *Summary, start time.Time, err error) {
	_ = m.advance(enums.StageFailed)
	summary.Stage = enums.StageFailed
	summary.StageErrors = append(summary.StageErrors, StageError{Stage: enums.StageFetching, Message: err.Error()})
	summary.Duration = o.now().Sub(start)
	o.metrics.IncStageFailure(enums.StageFetching.String())
	o.metrics.ObserveRun(enums.StageFailed.String(), summary.Duration)
	o.logg.Error(ctx, "regeneration.failed", err)
}

func (o *Orchestrator) finish(ctx context.Context, m *machine, summary *Summary, start time.Time) {
	if err := m.advance(enums.StageDone); err != nil {
		o.logg.Error(ctx, "regeneration.finish", err)
	}
	summary.Stage = enums.StageDone
	if err := o.storefronts.MarkSynced(ctx, summary.StorefrontID, o.now().UTC()); err != nil {
		o.logg.WarnErr(ctx, "regeneration.mark_synced_failed", err)
	}
	summary.Duration = o.now().Sub(start)

	outcome := "done"
	if len(summary.StageErrors) > 0 {
		outcome = "partial"
	}
	o.metrics.ObserveRun(outcome, summary.Duration)
	o.logg.Info(o.logg.WithFields(ctx, map[string]any{
		"outcome":              outcome,
		"services_created":     summary.ServicesCreated,
		"testimonials_created": summary.TestimonialsCreated,
		"images_created":       summary.ImagesCreated,
		"images_failed":        summary.ImagesFailed,
		"content_source":       summary.ContentSource,
		"duration_ms":          summary.Duration.Milliseconds(),
	}), "regeneration.done")
}
