package customers

import (
	"context"
	"fmt"
)

type Service struct {
	repo  Repository
	cache *AddressBookCache
}

func NewService(repo Repository, cache *AddressBookCache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	customer := Customer{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		IsActive: true,
		Notes:    req.Notes,
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		id, err = repo.Create(ctx, customer)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// ListAddresses returns a customer's saved address book, cache first.
func (s *Service) ListAddresses(ctx context.Context, customerID int64) ([]Address, error) {
	if book, ok := s.cache.Get(ctx, customerID); ok {
		return book, nil
	}
	book, err := s.repo.ListAddresses(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	s.cache.Set(ctx, customerID, book)
	return book, nil
}

// AddAddress saves an address book entry. Setting a new primary demotes
// the previous primary of the same type within the same transaction.
func (s *Service) AddAddress(ctx context.Context, customerID int64, req CreateAddressRequest) (*Address, error) {
	if _, err := s.repo.Get(ctx, customerID); err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	address := Address{
		CustomerID: customerID,
		Type:       req.Type,
		Label:      req.Label,
		IsPrimary:  req.IsPrimary,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if req.IsPrimary {
			if err := repo.ClearPrimary(ctx, customerID, req.Type); err != nil {
				return err
			}
		}
		var err error
		id, err = repo.CreateAddress(ctx, address)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add address: %w", err)
	}

	s.cache.Invalidate(ctx, customerID)
	address.ID = id
	return &address, nil
}

func (s *Service) DeleteAddress(ctx context.Context, customerID, addressID int64) error {
	if err := s.repo.DeleteAddress(ctx, customerID, addressID); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	s.cache.Invalidate(ctx, customerID)
	return nil
}
