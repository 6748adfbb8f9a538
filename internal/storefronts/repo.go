package storefronts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/pagination"
)

// coreColumns is the set of columns a directory sync may overwrite.
// Identity, ownership, activation, operator fields and the slug are absent
// on purpose.
var coreColumns = []string{
	"name",
	"category",
	"category_slug",
	"address",
	"city",
	"city_slug",
	"region",
	"postal_code",
	"latitude",
	"longitude",
	"phone",
	"hero_title",
	"hero_subtitle",
	"description",
	"seo_title",
	"seo_description",
	"faqs",
	"external_rating",
	"external_review_count",
	"opening_hours",
}

// CoreColumns returns a copy of the sync allow-list.
func CoreColumns() []string {
	return append([]string(nil), coreColumns...)
}

// Repository handles storefront persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to storefront operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a storefront on tx.
func (r *Repository) Create(tx *gorm.DB, sf *models.Storefront) error {
	return tx.Create(sf).Error
}

// FindByID loads a storefront.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Storefront, error) {
	var sf models.Storefront
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sf).Error; err != nil {
		return nil, err
	}
	return &sf, nil
}

// FindBySlug loads a storefront by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Storefront, error) {
	var sf models.Storefront
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&sf).Error; err != nil {
		return nil, err
	}
	return &sf, nil
}

// FindByExternalID returns the storefront linked to a directory id, or nil.
func (r *Repository) FindByExternalID(tx *gorm.DB, externalID string) (*models.Storefront, error) {
	var sf models.Storefront
	err := tx.Where("external_directory_id = ?", externalID).First(&sf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sf, nil
}

// List pages storefronts newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params) (pagination.Page[models.Storefront], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.Storefront]{}, err
	}
	q := r.db.WithContext(ctx).Model(&models.Storefront{})
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Storefront
	if err := q.Order("created_at DESC").Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Storefront]{}, err
	}
	return pagination.NewPage(rows, params.Limit, func(sf models.Storefront) pagination.Cursor {
		return pagination.Cursor{CreatedAt: sf.CreatedAt, ID: sf.ID}
	}), nil
}

// UpdateCoreFields writes only the sync allow-list in a single UPDATE.
func (r *Repository) UpdateCoreFields(tx *gorm.DB, id uuid.UUID, fields CoreFields) error {
	values := fields.model()
	res := tx.Model(&models.Storefront{}).Where("id = ?", id).Select(coreColumns).Updates(&values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkSynced stamps last_synced_at.
func (r *Repository) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Storefront{}).Where("id = ?", id).Update("last_synced_at", at).Error
}
