package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/logger"
)

// ObjectStore persists rendered images.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// PersistedImage describes a stored rendition.
type PersistedImage struct {
	URL        string
	StorageKey string
	Width      int
	Height     int
	Role       enums.ImageRole
}

// ImageFailure records one source that could not be ingested.
type ImageFailure struct {
	Index int
	Ref   string
	Err   error
}

// FailurePolicy decides whether a batch keeps going after a failed image.
type FailurePolicy interface {
	Continue(failure ImageFailure) bool
}

// ContinueOnFailure skips failed images. It is the production default.
type ContinueOnFailure struct{}

func (ContinueOnFailure) Continue(ImageFailure) bool { return true }

// AbortOnFailure stops the batch at the first failure.
type AbortOnFailure struct{}

func (AbortOnFailure) Continue(ImageFailure) bool { return false }

// ErrBatchAborted is returned when the failure policy stops a batch.
var ErrBatchAborted = errors.New("image batch aborted")

// BatchOptions tunes IngestBatch.
type BatchOptions struct {
	// GalleryOnly keeps an existing hero; every success becomes gallery.
	GalleryOnly bool
	// MaxGalleryOrder is the highest order already used by kept images.
	MaxGalleryOrder int
	Policy          FailurePolicy
}

// BatchResult holds unsaved rows for the successful images plus failures.
type BatchResult struct {
	Images   []models.StoreImage
	Failures []ImageFailure
}

// Hero returns the staged hero, if any.
func (r BatchResult) Hero() *models.StoreImage {
	for i := range r.Images {
		if r.Images[i].Role == enums.ImageRoleHero {
			return &r.Images[i]
		}
	}
	return nil
}

// Pipeline fetches, transforms and stores images.
type Pipeline struct {
	transformer  *Transformer
	store        ObjectStore
	stageTimeout time.Duration
	logg         *logger.Logger
}

// NewPipeline wires the pipeline; stageTimeout bounds a whole batch.
func NewPipeline(transformer *Transformer, store ObjectStore, stageTimeout time.Duration, logg *logger.Logger) (*Pipeline, error) {
	if transformer == nil {
		return nil, fmt.Errorf("image transformer required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Pipeline{transformer: transformer, store: store, stageTimeout: stageTimeout, logg: logg}, nil
}

// Ingest runs one source through fetch, transform and upload.
func (p *Pipeline) Ingest(ctx context.Context, source Source, role enums.ImageRole, storefrontID uuid.UUID) (*PersistedImage, error) {
	if !role.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid image role %q", role)
	}
	data, err := source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	rendition, err := p.transformer.Transform(data, role)
	if err != nil {
		return nil, err
	}
	key := StorageKey(storefrontID, role, rendition.Hash)
	url, err := p.store.Put(ctx, key, rendition.Data, outputContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}
	return &PersistedImage{
		URL:        url,
		StorageKey: key,
		Width:      rendition.Width,
		Height:     rendition.Height,
		Role:       role,
	}, nil
}

// IngestBatch processes sources in order. The first success becomes the
// hero at order 0 unless GalleryOnly is set; later successes take gallery
// orders after MaxGalleryOrder. Nothing is written to the database.
func (p *Pipeline) IngestBatch(ctx context.Context, storefrontID uuid.UUID, sources []Source, opts BatchOptions) (BatchResult, error) {
	policy := opts.Policy
	if policy == nil {
		policy = ContinueOnFailure{}
	}
	if p.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.stageTimeout)
		defer cancel()
	}

	result := BatchResult{}
	heroTaken := opts.GalleryOnly
	nextOrder := opts.MaxGalleryOrder + 1

	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(sources); j++ {
				result.Failures = append(result.Failures, ImageFailure{Index: j, Ref: refString(sources[j]), Err: err})
			}
			p.logg.Warn(p.logg.WithFields(ctx, map[string]any{"skipped": len(sources) - i}), "media.batch_deadline_exceeded")
			break
		}

		role := enums.ImageRoleGallery
		if !heroTaken {
			role = enums.ImageRoleHero
		}

		img, err := p.Ingest(ctx, source, role, storefrontID)
		if err != nil {
			failure := ImageFailure{Index: i, Ref: refString(source), Err: err}
			result.Failures = append(result.Failures, failure)
			p.logg.WarnErr(p.logg.WithFields(ctx, map[string]any{"index": i, "photo_ref": failure.Ref, "role": role}),
				"media.image_failed", err)
			if !policy.Continue(failure) {
				return result, fmt.Errorf("%w at index %d: %w", ErrBatchAborted, i, err)
			}
			continue
		}

		row := models.StoreImage{
			StorefrontID:     storefrontID,
			URL:              img.URL,
			StorageKey:       img.StorageKey,
			AltText:          source.AltText(),
			Role:             role,
			Width:            img.Width,
			Height:           img.Height,
			ExternalPhotoRef: source.ExternalRef(),
		}
		if role == enums.ImageRoleHero {
			heroTaken = true
			row.Order = 0
		} else {
			row.Order = nextOrder
			nextOrder++
		}
		result.Images = append(result.Images, row)
	}
	return result, nil
}

func refString(s Source) string {
	if ref := s.ExternalRef(); ref != nil {
		return *ref
	}
	return "upload"
}
