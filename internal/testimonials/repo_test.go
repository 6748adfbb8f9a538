package testimonials

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefronts/internal/reviews"
	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/testsupport"
)

func TestReplaceDropsEveryPriorTestimonial(t *testing.T) {
	conn := testsupport.OpenSQLite(t, models.All()...)
	repo := NewRepository(conn)
	ctx := context.Background()

	sf := &models.Storefront{Slug: "a", Name: "A"}
	require.NoError(t, conn.Create(sf).Error)
	manual := &models.Testimonial{ID: uuid.New(), StorefrontID: sf.ID, AuthorName: "Owner", Body: "Hand picked", Rating: 5, Position: 99}
	require.NoError(t, conn.Create(manual).Error)
	other := &models.Storefront{Slug: "b", Name: "B"}
	require.NoError(t, conn.Create(other).Error)
	foreign := &models.Testimonial{ID: uuid.New(), StorefrontID: other.ID, AuthorName: "Eve", Body: "Elsewhere", Rating: 5}
	require.NoError(t, conn.Create(foreign).Error)

	curated := reviews.Curate([]reviews.Review{
		{AuthorName: "Ana", Rating: 5, Text: "Excellent", AuthorPhotoURL: "https://img.test/ana.jpg"},
		{AuthorName: "Luis", Rating: 4},
		{AuthorName: "Eva", Rating: 3, Text: "Meh"},
	}, 0)
	require.Len(t, curated, 2)

	created, err := repo.Replace(conn, sf.ID, curated)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	created, err = repo.Replace(conn, sf.ID, curated)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	rows, err := repo.ListByStorefront(ctx, sf.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Ana", rows[0].AuthorName)
	require.NotNil(t, rows[0].AuthorImageURL)
	require.Equal(t, "Rated 4 stars", rows[1].Body)
	require.Nil(t, rows[1].AuthorImageURL)
	require.Equal(t, curated[0].ID(sf.ID), rows[0].ID)
	for _, row := range rows {
		require.NotEqual(t, manual.ID, row.ID)
		require.True(t, row.IsExternalReview)
	}

	others, err := repo.ListByStorefront(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
}

func TestReplaceSkipsDuplicateIDs(t *testing.T) {
	conn := testsupport.OpenSQLite(t, models.All()...)
	repo := NewRepository(conn)

	sf := &models.Storefront{Slug: "a", Name: "A"}
	require.NoError(t, conn.Create(sf).Error)

	entry := reviews.CuratedTestimonial{AuthorName: "Ana", Body: "Great", Rating: 5, ContentHash: reviews.ContentHash("Ana", "Great")}
	created, err := repo.Replace(conn, sf.ID, []reviews.CuratedTestimonial{entry, entry})
	require.NoError(t, err)
	require.Equal(t, 1, created)
}
