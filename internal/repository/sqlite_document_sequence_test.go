package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSequence_StartsAtOnePerKind(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteDocumentSequenceRepo(db)
	ctx := context.Background()

	for _, want := range []int{1, 2, 3} {
		got, err := repo.NextShortSeq(ctx, domain.KindEstimate)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := repo.NextShortSeq(ctx, domain.KindWorkOrder)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "kinds allocate independently")
}

func TestDocumentSequence_SeedsFromExistingDocuments(t *testing.T) {
	db := testutil.NewTestDB(t)
	docRepo := NewSQLiteDocumentRepo(db)
	repo := NewSQLiteDocumentSequenceRepo(db)
	ctx := context.Background()

	require.NoError(t, docRepo.Create(ctx, testutil.NewTestDocument("Old",
		testutil.WithKind(domain.KindInvoice), testutil.WithShortID("INV0017"))))

	got, err := repo.NextShortSeq(ctx, domain.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, 18, got)
	assert.Equal(t, "INV0018", domain.FormatShortID(domain.KindInvoice, got))
}

func TestDocumentSequence_AdvancePastSkipsTakenNumbers(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteDocumentSequenceRepo(db)
	ctx := context.Background()

	got, err := repo.NextShortSeq(ctx, domain.KindEstimate)
	require.NoError(t, err)
	require.Equal(t, 1, got)

	require.NoError(t, repo.AdvancePast(ctx, domain.KindEstimate, 2))
	got, err = repo.NextShortSeq(ctx, domain.KindEstimate)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	// A lower explicit number fills a gap without rewinding the counter.
	require.NoError(t, repo.AdvancePast(ctx, domain.KindEstimate, 1))
	got, err = repo.NextShortSeq(ctx, domain.KindEstimate)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestDocumentSequence_AdvancePastOnFreshCounter(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteDocumentSequenceRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.AdvancePast(ctx, domain.KindWorkOrder, 40))
	got, err := repo.NextShortSeq(ctx, domain.KindWorkOrder)
	require.NoError(t, err)
	assert.Equal(t, 41, got)
}
