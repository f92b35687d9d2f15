package draft

// OpenSessionRequest starts an editing session. SaleID switches the
// session into edit mode for an existing sale.
type OpenSessionRequest struct {
	Kind   Kind   `json:"kind" validate:"required,oneof=quote order"`
	SaleID string `json:"sale_id,omitempty"`
}

// SelectCustomerRequest picks the draft's customer.
type SelectCustomerRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
}

// RemoveItemsRequest names the line items to remove.
type RemoveItemsRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,required"`
}

// SetAddressesRequest replaces address slots. Nil fields are untouched.
type SetAddressesRequest struct {
	Billing       *Address `json:"billing,omitempty"`
	Shipping      *Address `json:"shipping,omitempty"`
	SameAsBilling *bool    `json:"same_as_billing,omitempty"`
}

// SelectSavedAddressRequest copies a saved address into a slot.
type SelectSavedAddressRequest struct {
	SavedID int64       `json:"saved_id" validate:"required,gt=0"`
	Type    AddressType `json:"type" validate:"required,oneof=billing shipping"`
}

// SetDetailsRequest merges keys into a detail bag.
type SetDetailsRequest struct {
	Details map[string]string `json:"details" validate:"required"`
}

// SetStatusRequest changes the draft status.
type SetStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// NotesChangeRequest carries an edit of the notes document content.
type NotesChangeRequest struct {
	Content string `json:"content"`
}

// ConnectivityRequest reports the client's connectivity state.
type ConnectivityRequest struct {
	Online bool `json:"online"`
}

// ItemsResponse returns the server-confirmed line item collection.
type ItemsResponse struct {
	LineItems []LineItem `json:"line_items"`
}

// StepResponse reports the step cursor after a navigation attempt.
type StepResponse struct {
	Step Step `json:"step"`
}
