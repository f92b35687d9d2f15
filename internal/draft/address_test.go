package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultForPrefersPrimaryOfType(t *testing.T) {
	r := addressResolver{book: []SavedAddress{
		{ID: 1, Type: AddressTypeBilling},
		{ID: 2, Type: AddressTypeShipping},
		{ID: 3, Type: AddressTypeShipping, IsPrimary: true},
	}}

	def := r.defaultFor(AddressTypeShipping)
	require.NotNil(t, def)
	assert.Equal(t, int64(3), def.ID)
}

func TestDefaultForFallsBackToAnyOfType(t *testing.T) {
	r := addressResolver{book: []SavedAddress{
		{ID: 1, Type: AddressTypeBilling},
		{ID: 2, Type: AddressTypeShipping},
	}}

	def := r.defaultFor(AddressTypeShipping)
	require.NotNil(t, def)
	assert.Equal(t, int64(2), def.ID)
}

func TestDefaultForFallsBackToFirstEntry(t *testing.T) {
	r := addressResolver{book: []SavedAddress{
		{ID: 5, Type: AddressTypeBilling},
	}}

	def := r.defaultFor(AddressTypeShipping)
	require.NotNil(t, def)
	assert.Equal(t, int64(5), def.ID)

	empty := addressResolver{}
	assert.Nil(t, empty.defaultFor(AddressTypeShipping))
}

func TestApplyDefaultsFillsOnlyEmptySlots(t *testing.T) {
	r := addressResolver{book: []SavedAddress{
		{ID: 1, Type: AddressTypeBilling, IsPrimary: true, Address: Address{Line1: strptr("1 Billing Way")}},
		{ID: 2, Type: AddressTypeShipping, IsPrimary: true, Address: Address{Line1: strptr("2 Shipping Rd")}},
	}}

	billing := Address{Line1: strptr("already typed")}
	var shipping Address
	r.applyDefaults(&billing, &shipping)

	assert.Equal(t, "already typed", *billing.Line1)
	require.NotNil(t, shipping.Line1)
	assert.Equal(t, "2 Shipping Rd", *shipping.Line1)
}

func TestApplyDefaultsCopiesBookEntries(t *testing.T) {
	book := []SavedAddress{
		{ID: 1, Type: AddressTypeBilling, IsPrimary: true, Address: Address{Line1: strptr("1 Billing Way")}},
	}
	r := addressResolver{book: book}

	var billing, shipping Address
	r.applyDefaults(&billing, &shipping)

	*billing.Line1 = "mutated"
	assert.Equal(t, "1 Billing Way", *book[0].Address.Line1)
}

func TestAddressIsEmpty(t *testing.T) {
	assert.True(t, Address{}.IsEmpty())
	assert.True(t, Address{Line1: strptr("")}.IsEmpty())
	assert.True(t, Address{City: strptr("   ")}.IsEmpty())
	assert.False(t, Address{Country: strptr("US")}.IsEmpty())
}

func TestAddressCloneIsDeep(t *testing.T) {
	orig := Address{Line1: strptr("1 Main St"), City: strptr("Austin")}
	cp := orig.Clone()

	*cp.Line1 = "changed"
	assert.Equal(t, "1 Main St", *orig.Line1)
}
