package draft

// SessionView is a read-only snapshot of a session for the wizard UI.
type SessionView struct {
	ID              string            `json:"id"`
	Kind            Kind              `json:"kind"`
	RemoteID        string            `json:"remote_id,omitempty"`
	LocalID         int64             `json:"local_id,omitempty"`
	Editing         bool              `json:"editing"`
	Customer        *CustomerRef      `json:"customer,omitempty"`
	Billing         Address           `json:"billing"`
	Shipping        Address           `json:"shipping"`
	SameAsBilling   bool              `json:"same_as_billing"`
	AddressBook     []SavedAddress    `json:"address_book,omitempty"`
	LineItems       []LineItem        `json:"line_items"`
	Summary         *SummaryView      `json:"summary,omitempty"`
	Status          Status            `json:"status"`
	Statuses        []Status          `json:"statuses"`
	Step            Step              `json:"step"`
	StepsComplete   map[Step]bool     `json:"steps_complete"`
	CheckoutDetails map[string]string `json:"checkout_details"`
	ShippingDetails map[string]string `json:"shipping_details"`
	Notes           NotesStatus       `json:"notes"`
}

// Snapshot builds a consistent view of the session under one lock
// acquisition.
func (s *Session) Snapshot() SessionView {
	notes := s.notes.Status()

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]LineItem, len(s.lineItems))
	copy(items, s.lineItems)

	book := make([]SavedAddress, len(s.resolver.book))
	copy(book, s.resolver.book)

	v := SessionView{
		ID:              s.ID.String(),
		Kind:            s.Kind,
		RemoteID:        s.remoteID,
		LocalID:         s.localID,
		Editing:         s.editing,
		Customer:        s.customer,
		Billing:         s.billing.Clone(),
		Shipping:        s.shipping.Clone(),
		SameAsBilling:   s.sameAsBilling,
		AddressBook:     book,
		LineItems:       items,
		Status:          s.status,
		Statuses:        s.Kind.Statuses(),
		Step:            WizardSteps[s.stepIdx],
		CheckoutDetails: copyBag(s.checkoutDetails),
		ShippingDetails: copyBag(s.shippingDetails),
		Notes:           notes,
	}
	if s.summary != nil {
		sv := newSummaryView(*s.summary)
		v.Summary = &sv
	}
	v.StepsComplete = map[Step]bool{
		StepCustomer: s.customer != nil && (s.remoteID != "" || s.editing),
		StepItems:    len(s.lineItems) > 0,
		StepShipping: !s.shipping.IsEmpty(),
		StepReview:   false,
	}
	return v
}

func copyBag(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
