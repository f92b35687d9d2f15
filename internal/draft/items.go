package draft

import (
	"context"
	"sync"
)

// itemSync performs line item CRUD against the remote draft. Mutating
// calls are serialized per session through the mutex so overlapping
// add/remove responses can never interleave; the returned collection is
// always the server's, replacing the local one wholesale.
type itemSync struct {
	mu  sync.Mutex
	api SalesAPI
}

func newItemSync(api SalesAPI) *itemSync {
	return &itemSync{api: api}
}

// add requests a new empty line item and returns the full updated
// server-side collection.
func (s *itemSync) add(ctx context.Context, kind Kind, saleID string) ([]LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.api.AddLineItem(ctx, kind, saleID)
}

// remove requests removal of the given items and returns the full updated
// server-side collection. All-or-nothing: on error the caller keeps its
// local collection untouched.
func (s *itemSync) remove(ctx context.Context, kind Kind, saleID string, itemIDs []string) ([]LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.api.RemoveLineItems(ctx, kind, saleID, itemIDs)
}

// save persists an explicit line item save. Field edits accumulate in the
// local optimistic buffer and are only sent here, never per keystroke.
func (s *itemSync) save(ctx context.Context, kind Kind, itemID string, patch LineItemPatch) (*LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.api.UpdateLineItem(ctx, kind, itemID, patch)
}
