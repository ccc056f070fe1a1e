package banners

import (
	"context"
	"testing"

	"github.com/counterline/counterline-backend/pkg/db/dbtest"
	"github.com/counterline/counterline-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.NewSQLite(t)))
	require.NoError(t, err)
	return svc
}

func create(t *testing.T, svc Service, title string) *BannerDTO {
	t.Helper()
	banner, err := svc.Create(context.Background(), CreateInput{
		Title:       title,
		Description: title + " description",
		FileURL:     "https://cdn.example.com/" + title + ".png",
	})
	require.NoError(t, err)
	return banner
}

func strPtr(v string) *string { return &v }

func TestCreateRequiresAllFields(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), CreateInput{Title: "Diwali", FileURL: "x.png"})
	require.Error(t, err)
}

func TestUpdateIsPartialAndRejectsRemoved(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	banner := create(t, svc, "Monsoon")

	updated, err := svc.Update(ctx, banner.ID, UpdateInput{Title: strPtr("Monsoon Specials"), Description: strPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Monsoon Specials", updated.Title)
	assert.Equal(t, "Monsoon description", updated.Description)
	assert.Equal(t, banner.FileURL, updated.FileURL)

	require.NoError(t, svc.Remove(ctx, banner.ID))
	_, err = svc.Update(ctx, banner.ID, UpdateInput{Title: strPtr("again")})
	assert.ErrorIs(t, err, ErrBannerRemoved)

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{Title: strPtr("ghost")})
	assert.ErrorIs(t, err, ErrBannerNotFound)
}

func TestRemoveAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	kept := create(t, svc, "Breakfast")
	removed := create(t, svc, "Lunch")
	deleted := create(t, svc, "Dinner")

	require.NoError(t, svc.Remove(ctx, removed.ID))
	assert.ErrorIs(t, svc.Remove(ctx, removed.ID), ErrBannerNotFound)
	require.NoError(t, svc.Delete(ctx, deleted.ID))
	assert.ErrorIs(t, svc.Delete(ctx, deleted.ID), ErrBannerNotFound)

	active, err := svc.FetchActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept.ID, active[0].ID)
}

func TestListSearchesTitleCaseInsensitively(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	create(t, svc, "Weekend Brunch")
	create(t, svc, "brunch combo")
	create(t, svc, "Chai Time")
	create(t, svc, "100%_off")

	page, err := svc.List(ctx, "BRUNCH", pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.List, 1)

	all, err := svc.List(ctx, "", pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.Total)

	literal, err := svc.List(ctx, "%_", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, literal.List, 1)
	assert.Equal(t, "100%_off", literal.List[0].Title)

	none, err := svc.List(ctx, "pizza", pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, none.List)
	assert.NotNil(t, none.List)
}
