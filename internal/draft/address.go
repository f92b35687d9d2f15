package draft

// addressResolver maps a customer's saved address book onto the draft's
// billing/shipping slots. Defaults only ever fill fields that are still
// empty; addresses the user already edited in this session are never
// overwritten.
type addressResolver struct {
	book []SavedAddress
}

// setBook replaces the resolver's saved address book.
func (r *addressResolver) setBook(book []SavedAddress) {
	r.book = book
}

// defaultFor picks the default saved address for the given slot: the
// primary-flagged address of that type, else any address of that type,
// else the first entry of the book.
func (r *addressResolver) defaultFor(t AddressType) *SavedAddress {
	var fallback *SavedAddress
	for i := range r.book {
		a := &r.book[i]
		if a.Type != t {
			continue
		}
		if a.IsPrimary {
			return a
		}
		if fallback == nil {
			fallback = a
		}
	}
	if fallback != nil {
		return fallback
	}
	if len(r.book) > 0 {
		return &r.book[0]
	}
	return nil
}

// applyDefaults fills the billing and shipping slots from the book,
// touching only slots that are currently empty.
func (r *addressResolver) applyDefaults(billing, shipping *Address) {
	if billing.IsEmpty() {
		if def := r.defaultFor(AddressTypeBilling); def != nil {
			*billing = def.Address.Clone()
		}
	}
	if shipping.IsEmpty() {
		if def := r.defaultFor(AddressTypeShipping); def != nil {
			*shipping = def.Address.Clone()
		}
	}
}
