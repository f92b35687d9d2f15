package customers

import "time"

type Customer struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Company   *string   `json:"company,omitempty" db:"company"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AddressType labels which draft slot a saved address is meant for.
type AddressType string

const (
	AddressTypeBilling  AddressType = "billing"
	AddressTypeShipping AddressType = "shipping"
)

type Address struct {
	ID         int64       `json:"id" db:"id"`
	CustomerID int64       `json:"customer_id" db:"customer_id"`
	Type       AddressType `json:"type" db:"type"`
	Label      string      `json:"label" db:"label"`
	IsPrimary  bool        `json:"is_primary" db:"is_primary"`
	Line1      *string     `json:"line1,omitempty" db:"line1"`
	Line2      *string     `json:"line2,omitempty" db:"line2"`
	City       *string     `json:"city,omitempty" db:"city"`
	State      *string     `json:"state,omitempty" db:"state"`
	PostalCode *string     `json:"postal_code,omitempty" db:"postal_code"`
	Country    *string     `json:"country,omitempty" db:"country"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}
