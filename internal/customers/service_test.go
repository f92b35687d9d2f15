package customers

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	customers     map[int64]*Customer
	nextID        int64
	addresses     map[int64][]Address
	nextAddressID int64

	listAddrCalls int

	txError     error
	getError    error
	createError error
	updateError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		customers: make(map[int64]*Customer),
		addresses: make(map[int64][]Address),
		nextID:    1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Customer, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	c, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range m.customers {
		if req.IsActive != nil && c.IsActive != *req.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, customer Customer) (int64, error) {
	if m.createError != nil {
		return 0, m.createError
	}
	id := m.nextID
	m.nextID++
	customer.ID = id
	m.customers[id] = &customer
	return id, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if m.updateError != nil {
		return m.updateError
	}
	c, ok := m.customers[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["is_active"]; ok {
		c.IsActive = v.(bool)
	}
	return nil
}

func (m *mockRepository) ListAddresses(ctx context.Context, customerID int64) ([]Address, error) {
	m.listAddrCalls++
	return append([]Address(nil), m.addresses[customerID]...), nil
}

func (m *mockRepository) CreateAddress(ctx context.Context, address Address) (int64, error) {
	m.nextAddressID++
	address.ID = m.nextAddressID
	m.addresses[address.CustomerID] = append(m.addresses[address.CustomerID], address)
	return address.ID, nil
}

func (m *mockRepository) ClearPrimary(ctx context.Context, customerID int64, addrType AddressType) error {
	book := m.addresses[customerID]
	for i := range book {
		if book[i].Type == addrType {
			book[i].IsPrimary = false
		}
	}
	return nil
}

func (m *mockRepository) DeleteAddress(ctx context.Context, customerID, addressID int64) error {
	book := m.addresses[customerID]
	for i := range book {
		if book[i].ID == addressID {
			m.addresses[customerID] = append(book[:i], book[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := newMockRepository()
	return NewService(repo, NewAddressBookCache(rdb)), repo
}

func str(s string) *string { return &s }

// ============================================================================
// TESTS
// ============================================================================

func TestCreateCustomer(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: str("hello@acme.test"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", c.Name)
	assert.True(t, c.IsActive)
	require.NotNil(t, c.Email)
	assert.Equal(t, "hello@acme.test", *c.Email)
}

func TestUpdateCustomerAppliesOnlySetFields(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Acme Corp"})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(context.Background(), created.ID, UpdateCustomerRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.False(t, updated.IsActive)

	_, err = svc.Update(context.Background(), 999, UpdateCustomerRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAddressesUsesCache(t *testing.T) {
	svc, repo := newTestService(t)
	created, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	_, err = svc.AddAddress(context.Background(), created.ID, CreateAddressRequest{
		Type:  AddressTypeBilling,
		Line1: str("1 Main St"),
	})
	require.NoError(t, err)

	book, err := svc.ListAddresses(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, book, 1)
	first := repo.listAddrCalls

	// Second read comes from the cache.
	book, err = svc.ListAddresses(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, book, 1)
	assert.Equal(t, first, repo.listAddrCalls)
}

func TestAddPrimaryAddressDemotesPrevious(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Acme Corp"})
	require.NoError(t, err)

	_, err = svc.AddAddress(context.Background(), created.ID, CreateAddressRequest{
		Type:      AddressTypeShipping,
		IsPrimary: true,
		Line1:     str("Old Warehouse"),
	})
	require.NoError(t, err)
	_, err = svc.AddAddress(context.Background(), created.ID, CreateAddressRequest{
		Type:      AddressTypeShipping,
		IsPrimary: true,
		Line1:     str("New Warehouse"),
	})
	require.NoError(t, err)

	book, err := svc.ListAddresses(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, book, 2)

	var primaries int
	for _, a := range book {
		if a.IsPrimary {
			primaries++
			assert.Equal(t, "New Warehouse", *a.Line1)
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestAddAddressInvalidatesCache(t *testing.T) {
	svc, repo := newTestService(t)
	created, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Acme Corp"})
	require.NoError(t, err)

	_, err = svc.ListAddresses(context.Background(), created.ID)
	require.NoError(t, err)
	calls := repo.listAddrCalls

	_, err = svc.AddAddress(context.Background(), created.ID, CreateAddressRequest{
		Type:  AddressTypeBilling,
		Line1: str("1 Main St"),
	})
	require.NoError(t, err)

	book, err := svc.ListAddresses(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, book, 1)
	assert.Equal(t, calls+1, repo.listAddrCalls)
}

func TestAddAddressForUnknownCustomer(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddAddress(context.Background(), 404, CreateAddressRequest{Type: AddressTypeBilling})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAddressInvalidatesCache(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	addr, err := svc.AddAddress(context.Background(), created.ID, CreateAddressRequest{
		Type:  AddressTypeBilling,
		Line1: str("1 Main St"),
	})
	require.NoError(t, err)

	_, err = svc.ListAddresses(context.Background(), created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAddress(context.Background(), created.ID, addr.ID))

	book, err := svc.ListAddresses(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, book)
}
