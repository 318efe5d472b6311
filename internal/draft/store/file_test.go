package store

import (
	"context"
	"testing"

	"github.com/bistroplan/bistroplan/internal/draft"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	d := draft.New("Harborside Cafe")
	d.FinancialData.Revenue.FoodSales = 500000
	d.Vendors = []draft.Vendor{{ID: "v1", Name: "Sal", Company: "Sal's Produce"}}

	require.NoError(t, fs.SaveDraft(ctx, "user-1", "bistroplan", d))

	got, err := fs.LoadDrafts(ctx, "user-1", "bistroplan")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, d.ID, got[0].ID)
	require.Equal(t, 500000.0, got[0].FinancialData.Revenue.FoodSales)
	require.Len(t, got[0].Vendors, 1)
}

func TestFileStoreSaveIsUpsert(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	d := draft.New("plan")
	require.NoError(t, fs.SaveDraft(ctx, "u", "a", d))
	d.Name = "renamed"
	require.NoError(t, fs.SaveDraft(ctx, "u", "a", d))

	got, err := fs.LoadDrafts(ctx, "u", "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "renamed", got[0].Name)
}

func TestFileStoreDelete(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	d1, d2 := draft.New("a"), draft.New("b")
	require.NoError(t, fs.SaveDraft(ctx, "u", "a", d1))
	require.NoError(t, fs.SaveDraft(ctx, "u", "a", d2))

	require.NoError(t, fs.DeleteDraft(ctx, "u", "a", d1.ID))
	got, err := fs.LoadDrafts(ctx, "u", "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, d2.ID, got[0].ID)

	require.ErrorIs(t, fs.DeleteDraft(ctx, "u", "a", d1.ID), ErrNotFound)
}

func TestFileStoreIndexRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// empty until written
	idx, err := fs.LoadDraftsIndex(ctx, "u", "a")
	require.NoError(t, err)
	require.Empty(t, idx)

	d := draft.New("a")
	require.NoError(t, fs.SaveDraftsIndex(ctx, "u", "a", []draft.Summary{d.Summarize()}))
	idx, err = fs.LoadDraftsIndex(ctx, "u", "a")
	require.NoError(t, err)
	require.Len(t, idx, 1)
	require.Equal(t, d.ID, idx[0].ID)
}

func TestFileStoreIsolatesUsers(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.SaveDraft(ctx, "alice", "app", draft.New("a")))

	got, err := fs.LoadDrafts(ctx, "bob", "app")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSanitizeKeepsIdsFilesystemSafe(t *testing.T) {
	require.Equal(t, "a-b_c-1", sanitize("a/b_c:1"))
	require.Equal(t, "plain-Id-42", sanitize("plain Id 42"))
}
