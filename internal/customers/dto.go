package customers

type CreateCustomerRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Notes   *string `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=200"`
	IsActive *bool   `json:"is_active,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type ListCustomersRequest struct {
	IsActive *bool   `json:"is_active,omitempty"`
	Search   *string `json:"search,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}

type CreateAddressRequest struct {
	Type       AddressType `json:"type" validate:"required,oneof=billing shipping"`
	Label      string      `json:"label" validate:"max=100"`
	IsPrimary  bool        `json:"is_primary"`
	Line1      *string     `json:"line1,omitempty" validate:"omitempty,max=200"`
	Line2      *string     `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       *string     `json:"city,omitempty" validate:"omitempty,max=100"`
	State      *string     `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode *string     `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country    *string     `json:"country,omitempty" validate:"omitempty,len=2"`
}
