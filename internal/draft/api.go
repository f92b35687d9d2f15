package draft

import (
	"context"
	"errors"
)

// SalesAPI is the engine's view of the authoritative sales service. The
// concrete client lives in internal/salesapi; the engine only consumes it.
// Implementations must honor context cancellation and return errors that
// satisfy the classification helpers below.
type SalesAPI interface {
	CreateSale(ctx context.Context, kind Kind, customerID int64) (*CreateSaleResult, error)
	GetSale(ctx context.Context, kind Kind, saleID string) (*SaleDetail, error)
	AddLineItem(ctx context.Context, kind Kind, saleID string) ([]LineItem, error)
	UpdateLineItem(ctx context.Context, kind Kind, itemID string, patch LineItemPatch) (*LineItem, error)
	RemoveLineItems(ctx context.Context, kind Kind, saleID string, itemIDs []string) ([]LineItem, error)
	SetSaleDetail(ctx context.Context, kind Kind, saleID string, update SaleDetailUpdate) error
	GetSummary(ctx context.Context, kind Kind, saleID string) (*Summary, error)
	SetStatus(ctx context.Context, kind Kind, id int64, status Status) error
	CreateDocument(ctx context.Context, saleID string, isPublic bool) (string, error)
	AddDocumentRevision(ctx context.Context, documentID, content string) error
	GetDocument(ctx context.Context, documentID string) (string, error)
}

// CustomerDirectory resolves customer snapshots and saved address books.
// Backed by the local customers module.
type CustomerDirectory interface {
	GetCustomer(ctx context.Context, id int64) (*CustomerRef, error)
	ListSavedAddresses(ctx context.Context, customerID int64) ([]SavedAddress, error)
}

// Notifier publishes post-submit notifications. Backed by the asynq job queue.
type Notifier interface {
	SaleSubmitted(ctx context.Context, kind Kind, saleID, customerName string) error
}

// IsCanceled reports whether err is a silent canceled-request outcome.
// Canceled requests are never surfaced as user-visible errors.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsUnreachable reports whether err is a transport-level connectivity
// failure, as opposed to a server rejection. Connectivity loss feeds the
// autosave engine's offline state instead of its error state.
func IsUnreachable(err error) bool {
	var u interface{ Unreachable() bool }
	return errors.As(err, &u) && u.Unreachable()
}
