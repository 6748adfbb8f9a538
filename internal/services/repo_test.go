package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/internal/content"
	"github.com/angelmondragon/storefronts/pkg/db"
	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/testsupport"
)

func TestReplaceRecreatesWithUniqueSlugs(t *testing.T) {
	conn := testsupport.OpenSQLite(t, models.All()...)
	repo := NewRepository(conn)
	ctx := context.Background()

	sf := &models.Storefront{Slug: "limpieza", Name: "Limpieza"}
	other := &models.Storefront{Slug: "otra", Name: "Otra"}
	require.NoError(t, conn.Create(sf).Error)
	require.NoError(t, conn.Create(other).Error)

	run := func(sfModel *models.Storefront, entries []content.ServiceCopy) []models.StorefrontService {
		var out []models.StorefrontService
		require.NoError(t, db.WithTx(conn.WithContext(ctx), func(tx *gorm.DB) error {
			var err error
			out, err = repo.Replace(ctx, tx, sfModel.ID, entries)
			return err
		}))
		return out
	}

	first := run(sf, []content.ServiceCopy{{Name: "Limpieza"}, {Name: "Limpieza"}, {Name: "Drenaje"}})
	require.Len(t, first, 3)
	require.Equal(t, "limpieza", first[0].Slug)
	require.Equal(t, "limpieza-1", first[1].Slug)
	require.Equal(t, "drenaje", first[2].Slug)
	require.Equal(t, 1, first[0].Position)
	require.Equal(t, 3, first[2].Position)

	run(other, []content.ServiceCopy{{Name: "Limpieza"}})

	second := run(sf, []content.ServiceCopy{{Name: "Limpieza"}, {Name: "Pintura"}})
	require.Equal(t, "limpieza", second[0].Slug)

	listed, err := repo.ListByStorefront(ctx, sf.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "pintura", listed[1].Slug)

	otherListed, err := repo.ListByStorefront(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, otherListed, 1)
	require.Equal(t, "limpieza", otherListed[0].Slug)
}
