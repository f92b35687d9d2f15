package customers

import (
	"context"
	"fmt"

	"github.com/salesdesk-erp/salesdesk/internal/draft"
)

// Directory adapts the customers service to the draft engine's
// CustomerDirectory interface.
type Directory struct {
	service *Service
}

func NewDirectory(service *Service) *Directory {
	return &Directory{service: service}
}

func (d *Directory) GetCustomer(ctx context.Context, id int64) (*draft.CustomerRef, error) {
	c, err := d.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := &draft.CustomerRef{ID: c.ID, Name: c.Name}
	if c.Email != nil {
		ref.Email = *c.Email
	}
	if c.Company != nil {
		ref.Company = *c.Company
	}
	return ref, nil
}

func (d *Directory) ListSavedAddresses(ctx context.Context, customerID int64) ([]draft.SavedAddress, error) {
	book, err := d.service.ListAddresses(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("address book: %w", err)
	}
	out := make([]draft.SavedAddress, 0, len(book))
	for _, a := range book {
		out = append(out, draft.SavedAddress{
			ID:        a.ID,
			Type:      draft.AddressType(a.Type),
			Label:     a.Label,
			IsPrimary: a.IsPrimary,
			Address: draft.Address{
				Line1:      a.Line1,
				Line2:      a.Line2,
				City:       a.City,
				State:      a.State,
				PostalCode: a.PostalCode,
				Country:    a.Country,
			},
		})
	}
	return out, nil
}
