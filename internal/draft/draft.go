// Package draft hosts the sale draft synchronization engine: per-session
// state that keeps an in-progress quote or order consistent with the
// authoritative upstream sales service while the editing wizard is open.
package draft

import "strings"

// Kind discriminates the two sale specializations. It determines which
// upstream endpoints and which status vocabulary apply and never changes
// after a session is opened.
type Kind string

const (
	KindQuote Kind = "quote"
	KindOrder Kind = "order"
)

// Valid reports whether k is a known sale kind.
func (k Kind) Valid() bool {
	return k == KindQuote || k == KindOrder
}

// Status is a sale status value. Quotes and orders carry distinct
// vocabularies; validity is always checked against the kind.
type Status string

const (
	QuoteStatusDraft     Status = "DRAFT"
	QuoteStatusSubmitted Status = "SUBMITTED"
	QuoteStatusApproved  Status = "APPROVED"
	QuoteStatusRejected  Status = "REJECTED"
	QuoteStatusConverted Status = "CONVERTED"

	OrderStatusPending   Status = "PENDING"
	OrderStatusConfirmed Status = "CONFIRMED"
	OrderStatusFulfilled Status = "FULFILLED"
	OrderStatusCancelled Status = "CANCELLED"
)

// Statuses returns the status vocabulary for the kind.
func (k Kind) Statuses() []Status {
	switch k {
	case KindQuote:
		return []Status{QuoteStatusDraft, QuoteStatusSubmitted, QuoteStatusApproved, QuoteStatusRejected, QuoteStatusConverted}
	case KindOrder:
		return []Status{OrderStatusPending, OrderStatusConfirmed, OrderStatusFulfilled, OrderStatusCancelled}
	}
	return nil
}

// ValidStatus reports whether s belongs to the kind's vocabulary.
func (k Kind) ValidStatus(s Status) bool {
	for _, known := range k.Statuses() {
		if known == s {
			return true
		}
	}
	return false
}

// DefaultStatus is the status a freshly created sale starts in.
func (k Kind) DefaultStatus() Status {
	if k == KindOrder {
		return OrderStatusPending
	}
	return QuoteStatusDraft
}

// Step is one position of the wizard's linear step cursor.
type Step string

const (
	StepCustomer Step = "customer-address"
	StepItems    Step = "line-items"
	StepShipping Step = "shipping-checkout"
	StepReview   Step = "review-notes"
)

// WizardSteps is the fixed ordered step list shared by both kinds.
var WizardSteps = []Step{StepCustomer, StepItems, StepShipping, StepReview}

// Address is a billing or shipping address. Fields are pointers so the
// engine can distinguish "never entered" from "entered as empty"; the
// fill-only-if-empty defaulting depends on that distinction.
type Address struct {
	Line1      *string `json:"line1,omitempty"`
	Line2      *string `json:"line2,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
}

// IsEmpty reports whether no field has been set to a non-blank value.
func (a Address) IsEmpty() bool {
	for _, f := range []*string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if f != nil && strings.TrimSpace(*f) != "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Aliasing shipping to billing copies values;
// later edits to billing must not leak into a previously aliased shipping.
func (a Address) Clone() Address {
	cp := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := *s
		return &v
	}
	return Address{
		Line1:      cp(a.Line1),
		Line2:      cp(a.Line2),
		City:       cp(a.City),
		State:      cp(a.State),
		PostalCode: cp(a.PostalCode),
		Country:    cp(a.Country),
	}
}

// AddressType labels a saved address slot.
type AddressType string

const (
	AddressTypeBilling  AddressType = "billing"
	AddressTypeShipping AddressType = "shipping"
)

// SavedAddress is one entry of a customer's saved address book.
type SavedAddress struct {
	ID        int64       `json:"id"`
	Type      AddressType `json:"type"`
	Label     string      `json:"label"`
	IsPrimary bool        `json:"is_primary"`
	Address   Address     `json:"address"`
}

// CustomerRef is the customer snapshot captured at selection time.
type CustomerRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// LineItem is one product entry within a sale. Identity is assigned by the
// upstream service on add; the local collection is always replaced wholesale
// by the latest server response after add/remove.
type LineItem struct {
	ID                 string  `json:"id"`
	ProductID          *string `json:"product_id,omitempty"`
	VariantID          *string `json:"variant_id,omitempty"`
	MethodID           *string `json:"method_id,omitempty"`
	ColorID            *string `json:"color_id,omitempty"`
	Quantity           int     `json:"quantity"`
	CustomerUnitPrice  float64 `json:"customer_unit_price"`
	CustomerSetupPrice float64 `json:"customer_setup_price"`
	SupplierUnitPrice  float64 `json:"supplier_unit_price"`
	SupplierSetupPrice float64 `json:"supplier_setup_price"`
	ArtworkText        *string `json:"artwork_text,omitempty"`
	ArtworkNotes       *string `json:"artwork_notes,omitempty"`
	ImageURL           *string `json:"image_url,omitempty"`
}

// LineItemPatch is a partial update applied optimistically to the local
// buffer and persisted by an explicit save action.
type LineItemPatch struct {
	ProductID          *string  `json:"product_id,omitempty"`
	VariantID          *string  `json:"variant_id,omitempty"`
	MethodID           *string  `json:"method_id,omitempty"`
	ColorID            *string  `json:"color_id,omitempty"`
	Quantity           *int     `json:"quantity,omitempty"`
	CustomerUnitPrice  *float64 `json:"customer_unit_price,omitempty"`
	CustomerSetupPrice *float64 `json:"customer_setup_price,omitempty"`
	SupplierUnitPrice  *float64 `json:"supplier_unit_price,omitempty"`
	SupplierSetupPrice *float64 `json:"supplier_setup_price,omitempty"`
	ArtworkText        *string  `json:"artwork_text,omitempty"`
	ArtworkNotes       *string  `json:"artwork_notes,omitempty"`
	ImageURL           *string  `json:"image_url,omitempty"`
}

// ApplyTo writes the set fields of the patch onto item.
func (p LineItemPatch) ApplyTo(item *LineItem) {
	if p.ProductID != nil {
		item.ProductID = p.ProductID
	}
	if p.VariantID != nil {
		item.VariantID = p.VariantID
	}
	if p.MethodID != nil {
		item.MethodID = p.MethodID
	}
	if p.ColorID != nil {
		item.ColorID = p.ColorID
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.CustomerUnitPrice != nil {
		item.CustomerUnitPrice = *p.CustomerUnitPrice
	}
	if p.CustomerSetupPrice != nil {
		item.CustomerSetupPrice = *p.CustomerSetupPrice
	}
	if p.SupplierUnitPrice != nil {
		item.SupplierUnitPrice = *p.SupplierUnitPrice
	}
	if p.SupplierSetupPrice != nil {
		item.SupplierSetupPrice = *p.SupplierSetupPrice
	}
	if p.ArtworkText != nil {
		item.ArtworkText = p.ArtworkText
	}
	if p.ArtworkNotes != nil {
		item.ArtworkNotes = p.ArtworkNotes
	}
	if p.ImageURL != nil {
		item.ImageURL = p.ImageURL
	}
}

// merge overlays the set fields of q onto p, accumulating edits between
// explicit saves.
func (p *LineItemPatch) merge(q LineItemPatch) {
	if q.ProductID != nil {
		p.ProductID = q.ProductID
	}
	if q.VariantID != nil {
		p.VariantID = q.VariantID
	}
	if q.MethodID != nil {
		p.MethodID = q.MethodID
	}
	if q.ColorID != nil {
		p.ColorID = q.ColorID
	}
	if q.Quantity != nil {
		p.Quantity = q.Quantity
	}
	if q.CustomerUnitPrice != nil {
		p.CustomerUnitPrice = q.CustomerUnitPrice
	}
	if q.CustomerSetupPrice != nil {
		p.CustomerSetupPrice = q.CustomerSetupPrice
	}
	if q.SupplierUnitPrice != nil {
		p.SupplierUnitPrice = q.SupplierUnitPrice
	}
	if q.SupplierSetupPrice != nil {
		p.SupplierSetupPrice = q.SupplierSetupPrice
	}
	if q.ArtworkText != nil {
		p.ArtworkText = q.ArtworkText
	}
	if q.ArtworkNotes != nil {
		p.ArtworkNotes = q.ArtworkNotes
	}
	if q.ImageURL != nil {
		p.ImageURL = q.ImageURL
	}
}

// AffectsTotals reports whether the patch touches a quantity or price field
// and therefore warrants a summary refresh.
func (p LineItemPatch) AffectsTotals() bool {
	return p.Quantity != nil ||
		p.CustomerUnitPrice != nil || p.CustomerSetupPrice != nil ||
		p.SupplierUnitPrice != nil || p.SupplierSetupPrice != nil
}

// PartySummary holds one side's aggregate amounts.
type PartySummary struct {
	Subtotal    float64 `json:"subtotal"`
	ItemsTotal  float64 `json:"items_total"`
	SetupCharge float64 `json:"setup_charge"`
	Total       float64 `json:"total"`
}

// Summary is the server-computed financial aggregate. It is never
// recomputed locally for authoritative display.
type Summary struct {
	Customer PartySummary `json:"customer"`
	Supplier PartySummary `json:"supplier"`
	Profit   float64      `json:"profit"`
}

// CreateSaleResult is the upstream response to lazy draft creation.
type CreateSaleResult struct {
	SaleID string `json:"sale_id"`
	ID     int64  `json:"id"`
}

// SaleDetail is the full remote snapshot fetched when editing an existing sale.
type SaleDetail struct {
	SaleID          string            `json:"sale_id"`
	ID              int64             `json:"id"`
	Customer        *CustomerRef      `json:"customer,omitempty"`
	Billing         Address           `json:"billing"`
	Shipping        Address           `json:"shipping"`
	Items           []LineItem        `json:"items"`
	Status          Status            `json:"status"`
	CheckoutDetails map[string]string `json:"checkout_details,omitempty"`
	ShippingDetails map[string]string `json:"shipping_details,omitempty"`
	NotesDocumentID string            `json:"notes_document_id,omitempty"`
}

// SaleDetailUpdate carries address, detail-bag and document-link changes
// pushed to the upstream sale record. Nil fields are left untouched.
type SaleDetailUpdate struct {
	Billing         *Address          `json:"billing,omitempty"`
	Shipping        *Address          `json:"shipping,omitempty"`
	CheckoutDetails map[string]string `json:"checkout_details,omitempty"`
	ShippingDetails map[string]string `json:"shipping_details,omitempty"`
	NotesDocumentID *string           `json:"notes_document_id,omitempty"`
}
