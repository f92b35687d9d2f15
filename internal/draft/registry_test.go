package draft

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, api *fakeAPI) (*Registry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	r := NewRegistry(RegistryParams{
		API:       api,
		Directory: &fakeDirectory{},
		Logger:    testLogger(),
		Config:    testSessionConfig(),
		Redis:     rdb,
		IdleTTL:   time.Hour,
	})
	return r, mr
}

func TestRegistryOpenGetClose(t *testing.T) {
	api := newFakeAPI()
	r, mr := newTestRegistry(t, api)
	ctx := context.Background()

	s, err := r.Open(ctx, KindQuote)
	require.NoError(t, err)

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	assert.True(t, mr.Exists(SessionKeyPrefix+s.ID.String()))

	r.Close(ctx, s.ID)
	_, err = r.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.False(t, mr.Exists(SessionKeyPrefix+s.ID.String()))
}

func TestRegistryRejectsUnknownKind(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestRegistry(t, api)

	_, err := r.Open(context.Background(), Kind("invoice"))
	assert.Error(t, err)
}

func TestRegistryOpenExistingLoadsSale(t *testing.T) {
	api := newFakeAPI()
	api.sale = &SaleDetail{SaleID: "S-77", ID: 77, Status: OrderStatusPending}
	r, _ := newTestRegistry(t, api)

	s, err := r.OpenExisting(context.Background(), KindOrder, "S-77")
	require.NoError(t, err)
	assert.Equal(t, "S-77", s.Snapshot().RemoteID)
}

func TestRegistryOpenExistingFailureClosesSession(t *testing.T) {
	api := newFakeAPI()
	api.getSaleErr = errors.New("not found upstream")
	r, _ := newTestRegistry(t, api)

	_, err := r.OpenExisting(context.Background(), KindOrder, "S-404")
	require.Error(t, err)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Empty(t, r.sessions)
}

func TestRegistryTouchRecordsRemoteID(t *testing.T) {
	api := newFakeAPI()
	r, mr := newTestRegistry(t, api)
	ctx := context.Background()

	s, err := r.Open(ctx, KindQuote)
	require.NoError(t, err)
	require.NoError(t, s.SelectCustomer(ctx, 7))
	r.Touch(ctx, s)

	raw, err := mr.Get(SessionKeyPrefix + s.ID.String())
	require.NoError(t, err)
	var marker ActivityMarker
	require.NoError(t, json.Unmarshal([]byte(raw), &marker))
	assert.Equal(t, KindQuote, marker.Kind)
	assert.Equal(t, "S-100", marker.SaleID)
	assert.False(t, marker.LastActivity.IsZero())
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestRegistry(t, api)
	ctx := context.Background()

	idle, err := r.Open(ctx, KindQuote)
	require.NoError(t, err)
	fresh, err := r.Open(ctx, KindQuote)
	require.NoError(t, err)

	idle.mu.Lock()
	idle.lastActivity = time.Now().Add(-2 * time.Hour)
	idle.mu.Unlock()

	r.evictIdle(ctx)

	_, err = r.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
}
