package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLineItemReplacesCollectionWholesale(t *testing.T) {
	api := newFakeAPI()
	s := newTestSession(t, KindQuote, api, &fakeDirectory{}, nil)
	require.NoError(t, s.SelectCustomer(context.Background(), 7))

	api.mu.Lock()
	api.items = []LineItem{{ID: "li-1"}, {ID: "li-2"}}
	api.mu.Unlock()

	items, err := s.AddLineItem(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	// The server's collection wins, even if it differs from what a local
	// append would have produced.
	api.mu.Lock()
	api.items = []LineItem{{ID: "li-9"}}
	api.mu.Unlock()

	items, err = s.AddLineItem(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "li-9", items[0].ID)
	assert.Equal(t, "li-9", s.Snapshot().LineItems[0].ID)
}

func TestAddLineItemRequiresRemoteDraft(t *testing.T) {
	api := newFakeAPI()
	s := newTestSession(t, KindQuote, api, &fakeDirectory{}, nil)

	_, err := s.AddLineItem(context.Background())
	assert.ErrorIs(t, err, ErrNoRemoteID)
}

func TestRemoveLineItemsFailureKeepsCollection(t *testing.T) {
	api := newFakeAPI()
	api.items = []LineItem{{ID: "li-1"}, {ID: "li-2"}}
	s := newTestSession(t, KindQuote, api, &fakeDirectory{}, nil)
	require.NoError(t, s.SelectCustomer(context.Background(), 7))

	_, err := s.AddLineItem(context.Background())
	require.NoError(t, err)

	api.mu.Lock()
	api.removeErr = errors.New("conflict")
	api.mu.Unlock()

	_, err = s.RemoveLineItems(context.Background(), []string{"li-1"})
	require.Error(t, err)
	assert.Len(t, s.Snapshot().LineItems, 2)

	api.mu.Lock()
	api.removeErr = nil
	api.mu.Unlock()

	items, err := s.RemoveLineItems(context.Background(), []string{"li-1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "li-2", items[0].ID)
}

func TestUpdateLineItemAccumulatesUntilSave(t *testing.T) {
	api := newFakeAPI()
	api.items = []LineItem{{ID: "li-1", Quantity: 1}}
	s := newTestSession(t, KindQuote, api, &fakeDirectory{}, nil)
	require.NoError(t, s.SelectCustomer(context.Background(), 7))
	_, err := s.AddLineItem(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.UpdateLineItem("li-1", LineItemPatch{Quantity: intptr(5)}))
	require.NoError(t, s.UpdateLineItem("li-1", LineItemPatch{CustomerUnitPrice: f64ptr(9.5)}))

	// Edits are local until the explicit save.
	api.mu.Lock()
	saved := api.savedPatch
	api.mu.Unlock()
	assert.Nil(t, saved)
	assert.Equal(t, 5, s.Snapshot().LineItems[0].Quantity)

	require.NoError(t, s.SaveLineItem(context.Background(), "li-1"))

	api.mu.Lock()
	saved = api.savedPatch
	api.mu.Unlock()
	require.NotNil(t, saved)
	require.NotNil(t, saved.Quantity)
	assert.Equal(t, 5, *saved.Quantity)
	require.NotNil(t, saved.CustomerUnitPrice)
	assert.Equal(t, 9.5, *saved.CustomerUnitPrice)

	// Nothing pending; a second save is a no-op.
	api.mu.Lock()
	api.savedPatch = nil
	api.mu.Unlock()
	require.NoError(t, s.SaveLineItem(context.Background(), "li-1"))
	api.mu.Lock()
	saved = api.savedPatch
	api.mu.Unlock()
	assert.Nil(t, saved)
}

func TestSaveLineItemFailureKeepsPendingPatch(t *testing.T) {
	api := newFakeAPI()
	api.items = []LineItem{{ID: "li-1"}}
	s := newTestSession(t, KindQuote, api, &fakeDirectory{}, nil)
	require.NoError(t, s.SelectCustomer(context.Background(), 7))
	_, err := s.AddLineItem(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.UpdateLineItem("li-1", LineItemPatch{Quantity: intptr(3)}))

	api.mu.Lock()
	api.updateErr = errors.New("timeout")
	api.mu.Unlock()
	require.Error(t, s.SaveLineItem(context.Background(), "li-1"))

	// The retry still carries the accumulated patch.
	api.mu.Lock()
	api.updateErr = nil
	api.mu.Unlock()
	require.NoError(t, s.SaveLineItem(context.Background(), "li-1"))

	api.mu.Lock()
	saved := api.savedPatch
	api.mu.Unlock()
	require.NotNil(t, saved)
	require.NotNil(t, saved.Quantity)
	assert.Equal(t, 3, *saved.Quantity)
}

func TestUpdateLineItemUnknownID(t *testing.T) {
	api := newFakeAPI()
	s := newTestSession(t, KindQuote, api, &fakeDirectory{}, nil)

	err := s.UpdateLineItem("nope", LineItemPatch{Quantity: intptr(1)})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestQuantityEditSchedulesSummaryRefresh(t *testing.T) {
	api := newFakeAPI()
	api.items = []LineItem{{ID: "li-1"}}
	api.summary = Summary{Profit: 42}
	s := newTestSession(t, KindQuote, api, &fakeDirectory{}, nil)
	require.NoError(t, s.SelectCustomer(context.Background(), 7))
	_, err := s.AddLineItem(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.UpdateLineItem("li-1", LineItemPatch{Quantity: intptr(4)}))

	require.Eventually(t, func() bool {
		view := s.Snapshot()
		return view.Summary != nil && view.Summary.Profit == 42
	}, time.Second, 5*time.Millisecond)
}

func TestArtworkEditDoesNotRefreshSummary(t *testing.T) {
	patch := LineItemPatch{ArtworkText: strptr("front print")}
	assert.False(t, patch.AffectsTotals())

	patch = LineItemPatch{SupplierSetupPrice: f64ptr(10)}
	assert.True(t, patch.AffectsTotals())
}
