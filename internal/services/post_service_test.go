package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vwmedia/siteutil/internal/database/testutil"
	"github.com/vwmedia/siteutil/internal/models"
)

type countingBuilder struct {
	calls int
}

func (b *countingBuilder) Build(context.Context) (int, error) {
	b.calls++
	return 0, nil
}

func TestPostServiceCreateUpdateDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	builder := &countingBuilder{}
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	svc, err := NewPostService(db, WithSitemapBuilder(builder), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, PostInput{Title: "Hello, World!"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "hello-world", created.Slug)
	require.Equal(t, models.PostTypePost, created.Type)
	require.Equal(t, models.PostStatusDraft, created.Status)
	require.True(t, fixed.Equal(created.ModifiedAt))
	require.Equal(t, 1, builder.calls)

	updated, err := svc.Update(ctx, created.ID, PostInput{Title: "Hello", Slug: "hello", Status: models.PostStatusPublished})
	require.NoError(t, err)
	require.True(t, updated.Published())
	require.Equal(t, 2, builder.calls)

	published, err := svc.List(ctx, models.PostStatusPublished)
	require.NoError(t, err)
	require.Len(t, published, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.Equal(t, 3, builder.calls)

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrPostNotFound)
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrPostNotFound)
}

func TestPostServiceRejectsDuplicateSlug(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewPostService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, PostInput{Title: "About", Slug: "about", Type: models.PostTypePage})
	require.NoError(t, err)

	_, err = svc.Create(ctx, PostInput{Title: "About us", Slug: "about"})
	require.ErrorIs(t, err, ErrPostSlugTaken)

	_, err = svc.Create(ctx, PostInput{Title: "  "})
	require.ErrorIs(t, err, ErrPostInvalid)
	require.ErrorContains(t, err, "title is required")
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "hello-world", slugify("  Hello,   World! "))
	require.Equal(t, "", slugify("!!!"))
}
