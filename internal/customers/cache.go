package customers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const addressBookTTL = 5 * time.Minute

// AddressBookCache keeps saved address books in redis. The draft wizard
// reads the book on every customer selection; a short TTL keeps that cheap
// without risking stale primaries after edits (writes invalidate).
type AddressBookCache struct {
	rdb *redis.Client
}

func NewAddressBookCache(rdb *redis.Client) *AddressBookCache {
	return &AddressBookCache{rdb: rdb}
}

func addressBookKey(customerID int64) string {
	return fmt.Sprintf("customers:addrbook:%d", customerID)
}

func (c *AddressBookCache) Get(ctx context.Context, customerID int64) ([]Address, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, addressBookKey(customerID)).Bytes()
	if err != nil {
		return nil, false
	}
	var out []Address
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (c *AddressBookCache) Set(ctx context.Context, customerID int64, book []Address) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(book)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, addressBookKey(customerID), data, addressBookTTL).Err()
}

func (c *AddressBookCache) Invalidate(ctx context.Context, customerID int64) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, addressBookKey(customerID)).Err()
}
