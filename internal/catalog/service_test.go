package catalog

import (
	"context"
	"testing"

	"github.com/counterline/counterline-backend/pkg/db"
	"github.com/counterline/counterline-backend/pkg/db/dbtest"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/counterline/counterline-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *Repository, *gorm.DB) {
	t.Helper()
	conn := dbtest.NewSQLite(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo, conn
}

func mustCreateItem(t *testing.T, svc Service, categoryID uuid.UUID, name, price string) *ItemDTO {
	t.Helper()
	item, err := svc.CreateItem(context.Background(), CreateItemInput{
		CategoryID:        categoryID,
		ItemName:          name,
		ItemPrice:         decimal.RequireFromString(price),
		Image:             "https://cdn.example.com/" + name + ".png",
		ParcelFeePerPiece: decimal.RequireFromString("2"),
	})
	require.NoError(t, err)
	return item
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestCategoryLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, "   ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	created, err := svc.CreateCategory(ctx, " Snacks ")
	require.NoError(t, err)
	assert.Equal(t, "Snacks", created.CategoryName)

	renamed, err := svc.UpdateCategory(ctx, created.ID, "Savouries")
	require.NoError(t, err)
	assert.Equal(t, "Savouries", renamed.CategoryName)

	require.NoError(t, svc.DeleteCategory(ctx, created.ID))

	err = svc.DeleteCategory(ctx, created.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.UpdateCategory(ctx, created.ID, "Back")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestListCategoriesSkipsDeletedAndPages(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"Drinks", "Mains", "Desserts"} {
		c, err := svc.CreateCategory(ctx, name)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	require.NoError(t, svc.DeleteCategory(ctx, ids[1]))

	page, err := svc.ListCategories(ctx, pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.List, 1)
	assert.Equal(t, "Desserts", page.List[0].CategoryName)

	page, err = svc.ListCategories(ctx, pagination.Params{Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "Drinks", page.List[0].CategoryName)
}

func TestCreateItemRejectsMissingOrDeletedCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, CreateItemInput{
		CategoryID: uuid.New(),
		ItemName:   "Tea",
		ItemPrice:  decimal.RequireFromString("10"),
		Image:      "tea.png",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidReference))

	category, err := svc.CreateCategory(ctx, "Drinks")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(ctx, category.ID))

	_, err = svc.CreateItem(ctx, CreateItemInput{
		CategoryID: category.ID,
		ItemName:   "Tea",
		ItemPrice:  decimal.RequireFromString("10"),
		Image:      "tea.png",
	})
	assert.ErrorIs(t, err, ErrCategoryReference)
}

func TestCreateItemValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	category, err := svc.CreateCategory(ctx, "Drinks")
	require.NoError(t, err)

	cases := map[string]CreateItemInput{
		"missing name":  {CategoryID: category.ID, Image: "x.png"},
		"missing image": {CategoryID: category.ID, ItemName: "Tea"},
		"negative price": {
			CategoryID: category.ID, ItemName: "Tea", Image: "x.png",
			ItemPrice: decimal.RequireFromString("-1"),
		},
		"negative parcel fee": {
			CategoryID: category.ID, ItemName: "Tea", Image: "x.png",
			ParcelFeePerPiece: decimal.RequireFromString("-0.5"),
		},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateItem(ctx, input)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestUpdateItemPatchesOnlyProvidedFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	category, err := svc.CreateCategory(ctx, "Drinks")
	require.NoError(t, err)
	item := mustCreateItem(t, svc, category.ID, "tea", "10")

	price := decimal.RequireFromString("12.5")
	updated, err := svc.UpdateItem(ctx, item.ID, UpdateItemInput{ItemPrice: &price})
	require.NoError(t, err)
	assert.True(t, updated.ItemPrice.Equal(price))
	assert.Equal(t, "tea", updated.ItemName)
	assert.True(t, updated.ParcelFeePerPiece.Equal(decimal.NewFromInt(2)))

	missing := uuid.New()
	_, err = svc.UpdateItem(ctx, item.ID, UpdateItemInput{CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryReference)

	_, err = svc.UpdateItem(ctx, uuid.New(), UpdateItemInput{ItemPrice: &price})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestTogglePublishedHidesItemFromUserListing(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	category, err := svc.CreateCategory(ctx, "Drinks")
	require.NoError(t, err)
	tea := mustCreateItem(t, svc, category.ID, "tea", "10")
	mustCreateItem(t, svc, category.ID, "coffee", "15")

	result, err := svc.TogglePublished(ctx, tea.ID)
	require.NoError(t, err)
	require.NotNil(t, result.IsPublished)
	assert.False(t, *result.IsPublished)

	listed, err := svc.ListByCategory(ctx, category.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "coffee", listed[0].ItemName)

	_, err = repo.FindPublishedItem(ctx, tea.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	result, err = svc.TogglePublished(ctx, tea.ID)
	require.NoError(t, err)
	assert.True(t, *result.IsPublished)

	avail, err := svc.ToggleAvailable(ctx, tea.ID)
	require.NoError(t, err)
	require.NotNil(t, avail.IsAvailable)
	assert.False(t, *avail.IsAvailable)
	assert.Nil(t, avail.IsPublished)

	_, err = svc.TogglePublished(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDeleteItemIsHard(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	category, err := svc.CreateCategory(ctx, "Drinks")
	require.NoError(t, err)
	item := mustCreateItem(t, svc, category.ID, "tea", "10")

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	_, err = svc.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, svc.DeleteItem(ctx, item.ID), ErrItemNotFound)
}

func TestListGroupedKeepsEveryActiveCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	drinks, err := svc.CreateCategory(ctx, "Drinks")
	require.NoError(t, err)
	empty, err := svc.CreateCategory(ctx, "Specials")
	require.NoError(t, err)

	mustCreateItem(t, svc, drinks.ID, "tea", "10")
	mustCreateItem(t, svc, drinks.ID, "coffee", "15")
	mustCreateItem(t, svc, drinks.ID, "juice", "20")

	grouped, err := svc.ListGrouped(ctx, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, grouped.Categories, 2)
	assert.Equal(t, drinks.ID, grouped.Categories[0].CategoryID)
	assert.Len(t, grouped.Categories[0].Items, 2)
	assert.Equal(t, empty.ID, grouped.Categories[1].CategoryID)
	assert.NotNil(t, grouped.Categories[1].Items)
	assert.Empty(t, grouped.Categories[1].Items)

	assert.Equal(t, GroupedPagination{Total: 3, Page: 1, PageSize: 2, TotalPages: 2}, grouped.Pagination)
}

const seedYAML = `
client:
  businessName: Corner Canteen
  userName: owner
  password: hunter22
  pin: 4321
  convenienceFee: "5.00"
categories:
  - name: Drinks
    items:
      - name: Tea
        price: 12.50
        parcelFeePerPiece: "1.5"
        image: https://cdn.example.com/tea.png
      - name: Lassi
        price: "40"
        image: https://cdn.example.com/lassi.png
        unpublished: true
  - name: Snacks
    items:
      - name: Samosa
        price: "15"
        parcelFeePerPiece: "2"
        image: https://cdn.example.com/samosa.png
`

func TestApplySeedIsIdempotent(t *testing.T) {
	svc, repo, conn := newTestService(t)
	ctx := context.Background()

	seed, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.NotNil(t, seed.Client)
	assert.Equal(t, 4321, seed.Client.Pin)

	runner := db.FromConn(conn)
	report, err := ApplySeed(ctx, runner, repo, seed)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{CategoriesCreated: 2, ItemsCreated: 3}, report)

	report, err = ApplySeed(ctx, runner, repo, seed)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{ItemsSkipped: 3}, report)

	drinks, err := repo.FindActiveCategoryByName(ctx, "Drinks")
	require.NoError(t, err)
	listed, err := svc.ListByCategory(ctx, drinks.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Tea", listed[0].ItemName)
	assert.True(t, listed[0].ItemPrice.Equal(decimal.RequireFromString("12.5")))
}

func TestParseSeedReportsAllProblems(t *testing.T) {
	_, err := ParseSeed([]byte(`
categories:
  - name: ""
    items:
      - name: Tea
        price: abc
        image: ""
`))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "categories[0]: name is required")
	assert.Contains(t, msg, "categories[0].items[0]: image is required")
	assert.Contains(t, msg, "categories[0].items[0]: price")
}
