package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemRepo_RoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	docRepo := NewSQLiteDocumentRepo(db)
	repo := NewSQLiteLineItemRepo(db)

	doc := testutil.NewTestDocument("Basement")
	require.NoError(t, docRepo.Create(ctx, doc))

	li := testutil.NewTestLineItem(doc.ID, 0, "Wire outlets",
		testutil.WithDescription("12 outlets on new circuits"),
		testutil.WithQuantity(12, "ea"),
		testutil.WithPhase(domain.PhaseElectrical),
		testutil.WithDurationDays(1.5),
		testutil.WithDependsOn("Frame walls", "Pull permit"),
	)
	require.NoError(t, repo.Create(ctx, li))

	items, err := repo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, "Wire outlets", got.Name)
	assert.Equal(t, "12 outlets on new circuits", got.Description)
	assert.Equal(t, 12.0, got.Quantity)
	assert.Equal(t, "ea", got.Unit)
	require.NotNil(t, got.Phase)
	assert.Equal(t, domain.PhaseElectrical, *got.Phase)
	require.NotNil(t, got.DurationDays)
	assert.Equal(t, 1.5, *got.DurationDays)
	assert.Equal(t, []string{"Frame walls", "Pull permit"}, got.DependsOn)
}

func TestLineItemRepo_OptionalFieldsStayNil(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	docRepo := NewSQLiteDocumentRepo(db)
	repo := NewSQLiteLineItemRepo(db)

	doc := testutil.NewTestDocument("Porch")
	require.NoError(t, docRepo.Create(ctx, doc))
	require.NoError(t, repo.Create(ctx, testutil.NewTestLineItem(doc.ID, 0, "Paint railing")))

	items, err := repo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Phase)
	assert.Nil(t, items[0].DurationDays)
	assert.NotNil(t, items[0].DependsOn)
	assert.Empty(t, items[0].DependsOn)
}

func TestLineItemRepo_ListOrdersByPosition(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	docRepo := NewSQLiteDocumentRepo(db)
	repo := NewSQLiteLineItemRepo(db)

	doc := testutil.NewTestDocument("Addition")
	require.NoError(t, docRepo.Create(ctx, doc))

	items := testutil.NewTestLineItems(doc.ID, "Pour footing", "Frame walls", "Roof")
	// Insert out of order.
	require.NoError(t, repo.CreateBatch(ctx, []*domain.LineItem{items[2], items[0], items[1]}))

	got, err := repo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Pour footing", got[0].Name)
	assert.Equal(t, "Frame walls", got[1].Name)
	assert.Equal(t, "Roof", got[2].Name)
}

func TestLineItemRepo_DuplicatePositionRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	docRepo := NewSQLiteDocumentRepo(db)
	repo := NewSQLiteLineItemRepo(db)

	doc := testutil.NewTestDocument("Shed")
	require.NoError(t, docRepo.Create(ctx, doc))
	require.NoError(t, repo.Create(ctx, testutil.NewTestLineItem(doc.ID, 0, "A")))
	assert.Error(t, repo.Create(ctx, testutil.NewTestLineItem(doc.ID, 0, "B")))
}

func TestLineItemRepo_RequiresExistingDocument(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteLineItemRepo(db)

	err := repo.Create(context.Background(), testutil.NewTestLineItem("missing-doc", 0, "Orphan"))
	assert.Error(t, err, "foreign key should reject orphan line items")
}

func TestLineItemRepo_DeleteByDocument(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	docRepo := NewSQLiteDocumentRepo(db)
	repo := NewSQLiteLineItemRepo(db)

	doc := testutil.NewTestDocument("Fence")
	require.NoError(t, docRepo.Create(ctx, doc))
	require.NoError(t, repo.CreateBatch(ctx, testutil.NewTestLineItems(doc.ID, "Set posts", "Hang panels")))

	require.NoError(t, repo.DeleteByDocument(ctx, doc.ID))
	items, err := repo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
