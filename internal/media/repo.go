package media

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/enums"
)

// Repository persists store images. Methods taking a *gorm.DB run on the
// caller's transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to image operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStorefront returns the hero first, then gallery images by order.
func (r *Repository) ListByStorefront(ctx context.Context, storefrontID uuid.UUID) ([]models.StoreImage, error) {
	var images []models.StoreImage
	err := r.db.WithContext(ctx).
		Where("storefront_id = ?", storefrontID).
		Order("CASE WHEN role = 'hero' THEN 0 ELSE 1 END").
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&images).Error
	return images, err
}

// Get loads an image by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.StoreImage, error) {
	return r.GetWithTx(r.db.WithContext(ctx), id)
}

// GetWithTx loads an image by id on tx.
func (r *Repository) GetWithTx(tx *gorm.DB, id uuid.UUID) (*models.StoreImage, error) {
	var img models.StoreImage
	if err := tx.Where("id = ?", id).First(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// CurrentHero returns the hero image or nil when the storefront has none.
func (r *Repository) CurrentHero(tx *gorm.DB, storefrontID uuid.UUID) (*models.StoreImage, error) {
	var img models.StoreImage
	err := tx.Where("storefront_id = ? AND role = ?", storefrontID, enums.ImageRoleHero).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// OperatorHero returns the hero when it was uploaded by an operator.
func (r *Repository) OperatorHero(tx *gorm.DB, storefrontID uuid.UUID) (*models.StoreImage, error) {
	hero, err := r.CurrentHero(tx, storefrontID)
	if err != nil || hero == nil || hero.IsExternal() {
		return nil, err
	}
	return hero, nil
}

// MaxGalleryOrder returns the highest gallery order, or 0 without gallery images.
func (r *Repository) MaxGalleryOrder(tx *gorm.DB, storefrontID uuid.UUID) (int, error) {
	return maxOrder(tx.Where("storefront_id = ? AND role = ?", storefrontID, enums.ImageRoleGallery))
}

// MaxOperatorGalleryOrder ignores directory-ingested rows, which a sync
// is about to replace.
func (r *Repository) MaxOperatorGalleryOrder(tx *gorm.DB, storefrontID uuid.UUID) (int, error) {
	return maxOrder(tx.Where("storefront_id = ? AND role = ? AND external_photo_ref IS NULL", storefrontID, enums.ImageRoleGallery))
}

func maxOrder(scoped *gorm.DB) (int, error) {
	var max int64
	row := scoped.Model(&models.StoreImage{}).Select("COALESCE(MAX(sort_order), 0)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return int(max), nil
}

// LowestGallery returns the first gallery image by order, or nil.
func (r *Repository) LowestGallery(tx *gorm.DB, storefrontID uuid.UUID) (*models.StoreImage, error) {
	var img models.StoreImage
	err := tx.Where("storefront_id = ? AND role = ?", storefrontID, enums.ImageRoleGallery).
		Order("sort_order ASC").
		Order("created_at ASC").
		First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Create inserts an image row.
func (r *Repository) Create(tx *gorm.DB, img *models.StoreImage) error {
	return tx.Create(img).Error
}

// SetRole moves an image to role at order.
func (r *Repository) SetRole(tx *gorm.DB, id uuid.UUID, role enums.ImageRole, order int) error {
	return tx.Model(&models.StoreImage{}).
		Where("id = ?", id).
		Updates(map[string]any{"role": role, "sort_order": order}).Error
}

// Delete removes one image row.
func (r *Repository) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&models.StoreImage{}).Error
}

// DeleteExternal removes every directory-ingested image of the storefront
// and returns the storage keys they pointed at.
func (r *Repository) DeleteExternal(tx *gorm.DB, storefrontID uuid.UUID) ([]string, error) {
	var keys []string
	scoped := func() *gorm.DB {
		return tx.Model(&models.StoreImage{}).Where("storefront_id = ? AND external_photo_ref IS NOT NULL", storefrontID)
	}
	if err := scoped().Pluck("storage_key", &keys).Error; err != nil {
		return nil, err
	}
	if err := scoped().Delete(&models.StoreImage{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// SetCover updates the storefront cover_url; nil clears it.
func (r *Repository) SetCover(tx *gorm.DB, storefrontID uuid.UUID, url *string) error {
	res := tx.Model(&models.Storefront{}).Where("id = ?", storefrontID).Update("cover_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CoverURL reads the storefront cover_url.
func (r *Repository) CoverURL(tx *gorm.DB, storefrontID uuid.UUID) (*string, error) {
	var sf models.Storefront
	if err := tx.Select("id", "cover_url").Where("id = ?", storefrontID).First(&sf).Error; err != nil {
		return nil, err
	}
	return sf.CoverURL, nil
}

// UnreferencedKeys filters keys down to those no image row still uses.
func (r *Repository) UnreferencedKeys(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var used []string
	if err := r.db.WithContext(ctx).Model(&models.StoreImage{}).
		Where("storage_key IN ?", keys).
		Distinct().
		Pluck("storage_key", &used).Error; err != nil {
		return nil, err
	}
	inUse := make(map[string]struct{}, len(used))
	for _, k := range used {
		inUse[k] = struct{}{}
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := inUse[k]; ok {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}
