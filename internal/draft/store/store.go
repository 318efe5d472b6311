package store

import (
	"context"
	"errors"

	"github.com/bistroplan/bistroplan/internal/draft"
)

var (
	ErrNotFound = errors.New("draft not found in store")
)

// Store is the document-store contract the draft service persists through.
// All operations are scoped by (userID, appID). Implementations may be backed
// by a networked document database or by local on-device storage; callers
// never know which backing is in effect.
//
// SaveDraft is an idempotent upsert of the latest full snapshot, so
// out-of-order completion of two writes for the same draft cannot corrupt
// stored data. The drafts index is a derived listing cache rebuilt from the
// in-memory draft list on every persisted mutation, never a second source of
// truth.
type Store interface {
	LoadDrafts(ctx context.Context, userID, appID string) ([]*draft.Draft, error)
	SaveDraft(ctx context.Context, userID, appID string, d *draft.Draft) error
	DeleteDraft(ctx context.Context, userID, appID, draftID string) error
	SaveDraftsIndex(ctx context.Context, userID, appID string, index []draft.Summary) error
	LoadDraftsIndex(ctx context.Context, userID, appID string) ([]draft.Summary, error)
}
