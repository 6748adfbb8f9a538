package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/pkg/db"
	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/logger"
)

// SyncResult summarises an external image sync.
type SyncResult struct {
	Created  int
	Failures []ImageFailure
	CoverURL *string
	// KeptExisting is set when every source failed and the cover kept its
	// previous value.
	KeptExisting bool
}

// Service manages storefront images.
type Service struct {
	db        *gorm.DB
	repo      *Repository
	pipeline  *Pipeline
	store     ObjectStore
	maxUpload int64
	logg      *logger.Logger
}

// NewService wires image management.
func NewService(conn *gorm.DB, pipeline *Pipeline, store ObjectStore, maxUpload int64, logg *logger.Logger) (*Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("database required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("image pipeline required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		db:        conn,
		repo:      NewRepository(conn),
		pipeline:  pipeline,
		store:     store,
		maxUpload: maxUpload,
		logg:      logg,
	}, nil
}

// List returns the storefront images, hero first.
func (s *Service) List(ctx context.Context, storefrontID uuid.UUID) ([]models.StoreImage, error) {
	images, err := s.repo.ListByStorefront(ctx, storefrontID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list images")
	}
	return images, nil
}

// Get loads one image.
func (s *Service) Get(ctx context.Context, imageID uuid.UUID) (*models.StoreImage, error) {
	img, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return nil, notFoundOr(err, "image not found", "load image")
	}
	return img, nil
}

// UploadImage stores an operator upload. It becomes the hero when the
// storefront has none, otherwise the next gallery image.
func (s *Service) UploadImage(ctx context.Context, storefrontID uuid.UUID, data []byte, alt string) (*models.StoreImage, error) {
	conn := s.db.WithContext(ctx)
	if _, err := s.repo.CoverURL(conn, storefrontID); err != nil {
		return nil, notFoundOr(err, "storefront not found", "load storefront")
	}
	hero, err := s.repo.CurrentHero(conn, storefrontID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load hero")
	}
	role := enums.ImageRoleGallery
	if hero == nil {
		role = enums.ImageRoleHero
	}

	persisted, err := s.pipeline.Ingest(ctx, UploadSource{Data: data, Alt: alt, MaxBytes: s.maxUpload}, role, storefrontID)
	if err != nil {
		return nil, err
	}

	img := &models.StoreImage{
		StorefrontID: storefrontID,
		URL:          persisted.URL,
		StorageKey:   persisted.StorageKey,
		AltText:      alt,
		Width:        persisted.Width,
		Height:       persisted.Height,
	}
	err = db.WithTx(conn, func(tx *gorm.DB) error {
		current, err := s.repo.CurrentHero(tx, storefrontID)
		if err != nil {
			return err
		}
		if current == nil {
			img.Role = enums.ImageRoleHero
			img.Order = 0
		} else {
			max, err := s.repo.MaxGalleryOrder(tx, storefrontID)
			if err != nil {
				return err
			}
			img.Role = enums.ImageRoleGallery
			img.Order = max + 1
		}
		if err := s.repo.Create(tx, img); err != nil {
			return err
		}
		if img.Role == enums.ImageRoleHero {
			return s.repo.SetCover(tx, storefrontID, &img.URL)
		}
		return nil
	})
	if err != nil {
		s.cleanupObjects(ctx, []string{persisted.StorageKey})
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save uploaded image")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"storefront_id": storefrontID.String(),
		"image_id":      img.ID.String(),
		"role":          img.Role,
	}), "media.image_uploaded")
	return img, nil
}

// PromoteToHero makes imageID the hero. The previous hero moves to the end
// of the gallery and the storefront cover follows the new hero.
func (s *Service) PromoteToHero(ctx context.Context, imageID uuid.UUID) (*models.StoreImage, error) {
	var promoted *models.StoreImage
	err := db.WithTx(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		target, err := s.repo.GetWithTx(tx, imageID)
		if err != nil {
			return err
		}
		if target.Role == enums.ImageRoleHero {
			promoted = target
			return nil
		}
		current, err := s.repo.CurrentHero(tx, target.StorefrontID)
		if err != nil {
			return err
		}
		if current != nil {
			max, err := s.repo.MaxGalleryOrder(tx, target.StorefrontID)
			if err != nil {
				return err
			}
			if err := s.repo.SetRole(tx, current.ID, enums.ImageRoleGallery, max+1); err != nil {
				return err
			}
		}
		if err := s.repo.SetRole(tx, target.ID, enums.ImageRoleHero, 0); err != nil {
			return err
		}
		if err := s.repo.SetCover(tx, target.StorefrontID, &target.URL); err != nil {
			return err
		}
		target.Role = enums.ImageRoleHero
		target.Order = 0
		promoted = target
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "image not found", "promote image")
	}
	return promoted, nil
}

// DeleteImage removes an image. Deleting the hero promotes the first
// gallery image, or clears the cover when none remain. The stored object
// is removed after commit when no other row shares it.
func (s *Service) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
	var key string
	err := db.WithTx(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		img, err := s.repo.GetWithTx(tx, imageID)
		if err != nil {
			return err
		}
		key = img.StorageKey
		if err := s.repo.Delete(tx, img.ID); err != nil {
			return err
		}
		if img.Role != enums.ImageRoleHero {
			return nil
		}
		next, err := s.repo.LowestGallery(tx, img.StorefrontID)
		if err != nil {
			return err
		}
		if next == nil {
			return s.repo.SetCover(tx, img.StorefrontID, nil)
		}
		if err := s.repo.SetRole(tx, next.ID, enums.ImageRoleHero, 0); err != nil {
			return err
		}
		return s.repo.SetCover(tx, img.StorefrontID, &next.URL)
	})
	if err != nil {
		return notFoundOr(err, "image not found", "delete image")
	}
	s.cleanupObjects(ctx, []string{key})
	return nil
}

// SyncExternal replaces the directory-ingested images of a storefront.
// New photos are processed first; the swap then happens in one
// transaction. Operator images keep their rows and order. Directory rows
// are always removed; when every source fails the cover keeps its previous
// value and the object behind it is not deleted.
func (s *Service) SyncExternal(ctx context.Context, storefrontID uuid.UUID, sources []Source) (SyncResult, error) {
	conn := s.db.WithContext(ctx)
	previousCover, err := s.repo.CoverURL(conn, storefrontID)
	if err != nil {
		return SyncResult{}, notFoundOr(err, "storefront not found", "load storefront")
	}
	operatorHero, err := s.repo.OperatorHero(conn, storefrontID)
	if err != nil {
		return SyncResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load operator hero")
	}
	maxOrder, err := s.repo.MaxOperatorGalleryOrder(conn, storefrontID)
	if err != nil {
		return SyncResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load gallery order")
	}

	var (
		batch     BatchResult
		allFailed bool
	)
	if len(sources) > 0 {
		batch, err = s.pipeline.IngestBatch(ctx, storefrontID, sources, BatchOptions{
			GalleryOnly:     operatorHero != nil,
			MaxGalleryOrder: maxOrder,
		})
		if err != nil {
			return SyncResult{Failures: batch.Failures}, err
		}
		if len(batch.Images) == 0 {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"storefront_id": storefrontID.String(),
				"failed":        len(batch.Failures),
			}), "media.sync_all_failed")
			allFailed = true
		}
	}

	var cover *string
	switch {
	case allFailed:
		cover = previousCover
	case batch.Hero() != nil:
		url := batch.Hero().URL
		cover = &url
	case operatorHero != nil:
		url := operatorHero.URL
		cover = &url
	}

	staged := batch.Images
	var removedKeys []string
	err = db.WithTx(conn, func(tx *gorm.DB) error {
		keys, err := s.repo.DeleteExternal(tx, storefrontID)
		if err != nil {
			return err
		}
		removedKeys = keys
		for i := range staged {
			if err := s.repo.Create(tx, &staged[i]); err != nil {
				return err
			}
		}
		return s.repo.SetCover(tx, storefrontID, cover)
	})
	if err != nil {
		orphans := make([]string, 0, len(staged))
		for _, img := range staged {
			orphans = append(orphans, img.StorageKey)
		}
		s.cleanupObjects(ctx, orphans)
		return SyncResult{Failures: batch.Failures}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "swap external images")
	}
	if allFailed && cover != nil {
		removedKeys = withoutCoverKey(removedKeys, *cover)
	}
	s.cleanupObjects(ctx, removedKeys)

	return SyncResult{Created: len(staged), Failures: batch.Failures, CoverURL: cover, KeptExisting: allFailed}, nil
}

// withoutCoverKey drops the key whose object still backs the cover URL.
func withoutCoverKey(keys []string, coverURL string) []string {
	out := keys[:0]
	for _, key := range keys {
		if key != "" && strings.HasSuffix(coverURL, "/"+key) {
			continue
		}
		out = append(out, key)
	}
	return out
}

// cleanupObjects deletes stored objects no row references any more.
// Failures only log: a leftover object is harmless.
func (s *Service) cleanupObjects(ctx context.Context, keys []string) {
	orphans, err := s.repo.UnreferencedKeys(ctx, keys)
	if err != nil {
		s.logg.WarnErr(ctx, "media.cleanup_lookup_failed", err)
		return
	}
	for _, key := range orphans {
		if err := s.store.DeleteObject(ctx, key); err != nil {
			s.logg.WarnErr(s.logg.WithField(ctx, "storage_key", key), "media.cleanup_failed", err)
		}
	}
}

func notFoundOr(err error, notFound, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}
