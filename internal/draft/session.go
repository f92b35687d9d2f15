package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors surfaced by the controller. Validation failures block
// synchronously and never issue a network call.
var (
	ErrNoCustomer       = errors.New("no customer selected")
	ErrNoRemoteID       = errors.New("draft has not been created yet")
	ErrCreationInFlight = errors.New("draft creation in progress, wait for it to finish")
	ErrUnknownStatus    = errors.New("status not valid for this sale kind")
	ErrItemNotFound     = errors.New("line item not found")
)

// SessionConfig carries the tunable settle windows for a session's
// autosave paths.
type SessionConfig struct {
	// ShortWindow debounces metadata form autosave (addresses, checkout and
	// shipping detail bags).
	ShortWindow time.Duration
	// LongWindow debounces long-form rich text notes autosave.
	LongWindow time.Duration
	// SummaryWindow batches summary refreshes caused by rapid field edits.
	SummaryWindow time.Duration
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.ShortWindow <= 0 {
		c.ShortWindow = time.Second
	}
	if c.LongWindow <= 0 {
		c.LongWindow = 3 * time.Second
	}
	if c.SummaryWindow <= 0 {
		c.SummaryWindow = 300 * time.Millisecond
	}
	return c
}

// Session owns one sale draft for the lifetime of an editing wizard. All
// draft state (remote id, line items, summary) is owned exclusively by the
// session; the synchronizer and calculator return new values that the
// session applies under its lock. The lock is never held across a network
// round trip.
type Session struct {
	ID   uuid.UUID
	Kind Kind

	ctx       context.Context
	api       SalesAPI
	directory CustomerDirectory
	notifier  Notifier
	logger    *slog.Logger

	items      *itemSync
	calc       *summaryCalc
	notes      *notesEngine
	detailDeb  *debouncer
	summaryDeb *debouncer

	mu           sync.Mutex
	editing      bool
	loadedSaleID string
	creating     bool
	loading      bool

	remoteID string
	localID  int64

	customer *CustomerRef
	resolver addressResolver

	billing        Address
	shipping       Address
	sameAsBilling  bool
	addressesDirty bool
	detailGen      uint64

	lineItems      []LineItem
	pendingPatches map[string]LineItemPatch

	summary *Summary

	status       Status
	loadedStatus Status

	checkoutDetails map[string]string
	shippingDetails map[string]string

	stepIdx      int
	lastActivity time.Time
}

func newSession(ctx context.Context, kind Kind, api SalesAPI, directory CustomerDirectory, notifier Notifier, logger *slog.Logger, cfg SessionConfig) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		ID:              uuid.New(),
		Kind:            kind,
		ctx:             ctx,
		api:             api,
		directory:       directory,
		notifier:        notifier,
		logger:          logger,
		items:           newItemSync(api),
		calc:            newSummaryCalc(api),
		pendingPatches:  make(map[string]LineItemPatch),
		checkoutDetails: make(map[string]string),
		shippingDetails: make(map[string]string),
		status:          kind.DefaultStatus(),
		loadedStatus:    kind.DefaultStatus(),
		lastActivity:    time.Now(),
	}
	s.notes = newNotesEngine(ctx, api, logger, cfg.LongWindow)
	s.notes.onDocumentCreated = s.linkNotesDocument
	s.detailDeb = newDebouncer(cfg.ShortWindow, s.flushDetail)
	s.summaryDeb = newDebouncer(cfg.SummaryWindow, s.refreshSummaryAsync)
	return s
}

// SelectCustomer records the customer and, for a new draft, triggers the
// exactly-once lazy remote creation. Repeated calls while creation is in
// flight are rejected with ErrCreationInFlight; once a remote id exists it
// is never reassigned.
func (s *Session) SelectCustomer(ctx context.Context, customerID int64) error {
	cust, err := s.directory.GetCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}
	book, err := s.directory.ListSavedAddresses(ctx, customerID)
	if err != nil {
		// The draft can proceed without defaults; the user types addresses.
		s.logger.Warn("load address book failed", slog.Int64("customer_id", customerID), slog.Any("error", err))
		book = nil
	}

	s.mu.Lock()
	s.touchLocked()
	s.customer = cust
	s.resolver.setBook(book)
	s.resolver.applyDefaults(&s.billing, &s.shipping)
	if s.remoteID != "" || s.editing {
		s.markDetailDirtyLocked()
		s.mu.Unlock()
		s.detailDeb.Schedule()
		return nil
	}
	if s.creating {
		s.mu.Unlock()
		return ErrCreationInFlight
	}
	s.creating = true
	s.mu.Unlock()

	res, err := s.api.CreateSale(ctx, s.Kind, cust.ID)

	s.mu.Lock()
	s.creating = false
	if err != nil {
		// Creation remains attemptable on the next qualifying action.
		s.mu.Unlock()
		return fmt.Errorf("create draft: %w", err)
	}
	if s.remoteID == "" {
		s.remoteID = res.SaleID
		s.localID = res.ID
	}
	saleID := s.remoteID
	needPush := !s.billing.IsEmpty() || !s.shipping.IsEmpty()
	if needPush {
		s.markDetailDirtyLocked()
	}
	s.mu.Unlock()

	s.notes.bind(saleID, "")
	if needPush {
		// Addresses already entered locally belong to the same logical step
		// as creation.
		if err := s.flushDetailCtx(ctx); err != nil && !IsCanceled(err) {
			s.logger.Warn("push addresses after creation failed", slog.String("sale_id", saleID), slog.Any("error", err))
		}
	}
	return nil
}

// Load populates the session from an existing sale for edit mode. A second
// call with the same identifier is a no-op.
func (s *Session) Load(ctx context.Context, saleID string) error {
	s.mu.Lock()
	if s.loadedSaleID == saleID {
		s.mu.Unlock()
		return nil
	}
	if s.loading {
		s.mu.Unlock()
		return ErrCreationInFlight
	}
	s.loading = true
	s.mu.Unlock()

	detail, err := s.api.GetSale(ctx, s.Kind, saleID)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return fmt.Errorf("load sale: %w", err)
	}

	var book []SavedAddress
	if detail.Customer != nil {
		book, err = s.directory.ListSavedAddresses(ctx, detail.Customer.ID)
		if err != nil {
			s.logger.Warn("load address book failed", slog.Int64("customer_id", detail.Customer.ID), slog.Any("error", err))
			book = nil
		}
	}

	s.mu.Lock()
	s.touchLocked()
	s.loading = false
	s.editing = true
	s.loadedSaleID = saleID
	s.remoteID = detail.SaleID
	s.localID = detail.ID
	s.customer = detail.Customer
	s.billing = detail.Billing
	s.shipping = detail.Shipping
	s.lineItems = detail.Items
	s.status = detail.Status
	s.loadedStatus = detail.Status
	if detail.CheckoutDetails != nil {
		s.checkoutDetails = detail.CheckoutDetails
	}
	if detail.ShippingDetails != nil {
		s.shippingDetails = detail.ShippingDetails
	}
	s.resolver.setBook(book)
	s.resolver.applyDefaults(&s.billing, &s.shipping)
	s.addressesDirty = false
	docID := detail.NotesDocumentID
	s.mu.Unlock()

	s.notes.bind(detail.SaleID, docID)

	if sum, err := s.calc.refresh(ctx, s.Kind, detail.SaleID); err == nil && sum != nil {
		s.mu.Lock()
		s.summary = sum
		s.mu.Unlock()
	} else if err != nil && !IsCanceled(err) {
		s.logger.Warn("initial summary fetch failed", slog.String("sale_id", detail.SaleID), slog.Any("error", err))
	}
	return nil
}

// CurrentStep returns the wizard step under the cursor.
func (s *Session) CurrentStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WizardSteps[s.stepIdx]
}

// AdvanceStep moves the cursor forward. Leaving the first step of a new
// draft requires the remote id to exist; until then the call is a no-op
// with a wait signal.
func (s *Session) AdvanceStep() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if s.stepIdx == 0 && !s.editing && s.remoteID == "" {
		if s.creating {
			return WizardSteps[s.stepIdx], ErrCreationInFlight
		}
		return WizardSteps[s.stepIdx], ErrNoRemoteID
	}
	if s.stepIdx < len(WizardSteps)-1 {
		s.stepIdx++
	}
	return WizardSteps[s.stepIdx], nil
}

// RetreatStep moves the cursor back; at the first step it stays put.
func (s *Session) RetreatStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if s.stepIdx > 0 {
		s.stepIdx--
	}
	return WizardSteps[s.stepIdx]
}

// IsStepComplete is a pure predicate over draft state, used for UI gating
// only; it never blocks mutation paths.
func (s *Session) IsStepComplete(step Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch step {
	case StepCustomer:
		return s.customer != nil && (s.remoteID != "" || s.editing)
	case StepItems:
		return len(s.lineItems) > 0
	case StepShipping:
		return !s.shipping.IsEmpty()
	case StepReview:
		return false
	}
	return false
}

// AddLineItem requests a new empty item; the local collection becomes
// exactly what the server returned.
func (s *Session) AddLineItem(ctx context.Context) ([]LineItem, error) {
	s.mu.Lock()
	s.touchLocked()
	saleID := s.remoteID
	s.mu.Unlock()
	if saleID == "" {
		return nil, ErrNoRemoteID
	}

	items, err := s.items.add(ctx, s.Kind, saleID)
	if err != nil {
		return nil, fmt.Errorf("add line item: %w", err)
	}
	s.mu.Lock()
	s.lineItems = items
	s.mu.Unlock()
	go s.refreshSummaryAsync()
	return items, nil
}

// RemoveLineItems requests removal; all-or-nothing, local collection kept
// untouched on failure.
func (s *Session) RemoveLineItems(ctx context.Context, itemIDs []string) ([]LineItem, error) {
	s.mu.Lock()
	s.touchLocked()
	saleID := s.remoteID
	s.mu.Unlock()
	if saleID == "" {
		return nil, ErrNoRemoteID
	}

	items, err := s.items.remove(ctx, s.Kind, saleID, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("remove line items: %w", err)
	}
	s.mu.Lock()
	s.lineItems = items
	for _, id := range itemIDs {
		delete(s.pendingPatches, id)
	}
	s.mu.Unlock()
	go s.refreshSummaryAsync()
	return items, nil
}

// UpdateLineItem applies the patch to the local optimistic buffer. Nothing
// is persisted here; SaveLineItem sends the accumulated patch. Quantity and
// price edits schedule a batched summary refresh.
func (s *Session) UpdateLineItem(itemID string, patch LineItemPatch) error {
	s.mu.Lock()
	s.touchLocked()
	idx := -1
	for i := range s.lineItems {
		if s.lineItems[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	patch.ApplyTo(&s.lineItems[idx])
	merged := s.pendingPatches[itemID]
	merged.merge(patch)
	s.pendingPatches[itemID] = merged
	affects := patch.AffectsTotals()
	s.mu.Unlock()

	if affects {
		s.summaryDeb.Schedule()
	}
	return nil
}

// SaveLineItem persists the accumulated patch for one item. On failure the
// optimistic buffer is kept so the user can retry without re-typing.
func (s *Session) SaveLineItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	s.touchLocked()
	patch, ok := s.pendingPatches[itemID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	updated, err := s.items.save(ctx, s.Kind, itemID, patch)
	if err != nil {
		return fmt.Errorf("save line item: %w", err)
	}

	s.mu.Lock()
	delete(s.pendingPatches, itemID)
	if updated != nil {
		for i := range s.lineItems {
			if s.lineItems[i].ID == itemID {
				s.lineItems[i] = *updated
				break
			}
		}
	}
	s.mu.Unlock()
	go s.refreshSummaryAsync()
	return nil
}

// SetBillingAddress replaces the billing slot and schedules a push.
func (s *Session) SetBillingAddress(addr Address) {
	s.mu.Lock()
	s.touchLocked()
	s.billing = addr
	if s.sameAsBilling {
		// The alias is a copy taken when the flag was enabled, not a live
		// reference; editing billing afterwards leaves shipping alone.
		s.sameAsBilling = false
	}
	s.markDetailDirtyLocked()
	live := s.remoteID != ""
	s.mu.Unlock()
	if live {
		s.detailDeb.Schedule()
	}
}

// SetShippingAddress replaces the shipping slot and schedules a push.
func (s *Session) SetShippingAddress(addr Address) {
	s.mu.Lock()
	s.touchLocked()
	s.shipping = addr
	s.sameAsBilling = false
	s.markDetailDirtyLocked()
	live := s.remoteID != ""
	s.mu.Unlock()
	if live {
		s.detailDeb.Schedule()
	}
}

// SetShippingSameAsBilling copies the current billing value into the
// shipping slot when enabled. Disabling just releases the flag.
func (s *Session) SetShippingSameAsBilling(same bool) {
	s.mu.Lock()
	s.touchLocked()
	s.sameAsBilling = same
	if same {
		s.shipping = s.billing.Clone()
		s.markDetailDirtyLocked()
	}
	live := same && s.remoteID != ""
	s.mu.Unlock()
	if live {
		s.detailDeb.Schedule()
	}
}

// SelectSavedAddress copies a saved address book entry into the given slot.
func (s *Session) SelectSavedAddress(savedID int64, t AddressType) error {
	s.mu.Lock()
	s.touchLocked()
	var found *SavedAddress
	for i := range s.resolver.book {
		if s.resolver.book[i].ID == savedID {
			found = &s.resolver.book[i]
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return fmt.Errorf("saved address %d: %w", savedID, ErrItemNotFound)
	}
	if t == AddressTypeShipping {
		s.shipping = found.Address.Clone()
		s.sameAsBilling = false
	} else {
		s.billing = found.Address.Clone()
	}
	s.markDetailDirtyLocked()
	live := s.remoteID != ""
	s.mu.Unlock()
	if live {
		s.detailDeb.Schedule()
	}
	return nil
}

// SetCheckoutDetails merges the given keys into the checkout detail bag.
func (s *Session) SetCheckoutDetails(kv map[string]string) {
	s.setDetails(s.checkoutDetails, kv)
}

// SetShippingDetails merges the given keys into the shipping detail bag.
// Shipping cost changes also refresh the summary.
func (s *Session) SetShippingDetails(kv map[string]string) {
	s.setDetails(s.shippingDetails, kv)
	if _, ok := kv["cost"]; ok {
		s.summaryDeb.Schedule()
	}
}

func (s *Session) setDetails(bag map[string]string, kv map[string]string) {
	s.mu.Lock()
	s.touchLocked()
	for k, v := range kv {
		bag[k] = v
	}
	s.markDetailDirtyLocked()
	live := s.remoteID != ""
	s.mu.Unlock()
	if live {
		s.detailDeb.Schedule()
	}
}

// ChangeStatus applies the status optimistically and pushes it upstream.
// A rejected update reverts the visible status to its pre-change value.
func (s *Session) ChangeStatus(ctx context.Context, status Status) error {
	if !s.Kind.ValidStatus(status) {
		return ErrUnknownStatus
	}
	s.mu.Lock()
	s.touchLocked()
	prev := s.status
	if prev == status {
		s.mu.Unlock()
		return nil
	}
	s.status = status
	localID := s.localID
	live := s.remoteID != ""
	s.mu.Unlock()

	if !live {
		// Not created yet; Submit pushes the final status.
		return nil
	}
	if err := s.api.SetStatus(ctx, s.Kind, localID, status); err != nil {
		s.mu.Lock()
		s.status = prev
		s.mu.Unlock()
		return fmt.Errorf("set status: %w", err)
	}
	s.mu.Lock()
	s.loadedStatus = status
	s.mu.Unlock()
	return nil
}

// RefreshSummary fetches the authoritative summary and applies it. The
// session is the single writer of the cached summary.
func (s *Session) RefreshSummary(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	saleID := s.remoteID
	s.mu.Unlock()

	sum, err := s.calc.refresh(ctx, s.Kind, saleID)
	if err != nil {
		return nil, fmt.Errorf("refresh summary: %w", err)
	}
	if sum != nil {
		s.mu.Lock()
		s.summary = sum
		s.mu.Unlock()
	}
	return sum, nil
}

func (s *Session) refreshSummaryAsync() {
	if _, err := s.RefreshSummary(s.ctx); err != nil && !IsCanceled(err) {
		s.logger.Warn("summary refresh failed", slog.String("session_id", s.ID.String()), slog.Any("error", err))
	}
}

// NotesChange forwards a rich text edit to the autosave engine.
func (s *Session) NotesChange(content string) {
	s.mu.Lock()
	s.touchLocked()
	s.mu.Unlock()
	s.notes.OnContentChange(content)
}

// NotesForceSave requests an immediate manual save.
func (s *Session) NotesForceSave() {
	s.notes.ForceSave()
}

// NotesStatus reports the autosave indicator.
func (s *Session) NotesStatus() NotesStatus {
	return s.notes.Status()
}

// SetOnline reflects connectivity changes reported by the client or
// detected from transport failures.
func (s *Session) SetOnline(online bool) {
	s.notes.SetOnline(online)
}

// Submit validates the draft and finalizes it: the status is pushed if it
// differs from the loaded value, pending address changes are flushed, and
// the submit notification is enqueued. Validation failures block before
// any network call.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	s.touchLocked()
	if s.customer == nil {
		s.mu.Unlock()
		return ErrNoCustomer
	}
	if s.remoteID == "" {
		s.mu.Unlock()
		return ErrNoRemoteID
	}
	status := s.status
	prev := s.loadedStatus
	localID := s.localID
	saleID := s.remoteID
	customerName := s.customer.Name
	dirty := s.addressesDirty
	s.mu.Unlock()

	if status != prev {
		if err := s.api.SetStatus(ctx, s.Kind, localID, status); err != nil {
			s.mu.Lock()
			s.status = prev
			s.mu.Unlock()
			return fmt.Errorf("set status: %w", err)
		}
		s.mu.Lock()
		s.loadedStatus = status
		s.mu.Unlock()
	}

	if dirty {
		if err := s.flushDetailCtx(ctx); err != nil {
			return fmt.Errorf("push sale detail: %w", err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.SaleSubmitted(ctx, s.Kind, saleID, customerName); err != nil {
			// The submit itself succeeded; notification failure is not fatal.
			s.logger.Warn("submit notification enqueue failed", slog.String("sale_id", saleID), slog.Any("error", err))
		}
	}
	return nil
}

// linkNotesDocument records the lazily created notes document on the sale.
func (s *Session) linkNotesDocument(documentID string) {
	s.mu.Lock()
	saleID := s.remoteID
	s.mu.Unlock()
	if saleID == "" {
		return
	}
	update := SaleDetailUpdate{NotesDocumentID: &documentID}
	if err := s.api.SetSaleDetail(s.ctx, s.Kind, saleID, update); err != nil && !IsCanceled(err) {
		s.logger.Warn("link notes document failed", slog.String("sale_id", saleID), slog.Any("error", err))
	}
}

// flushDetail is the short-window debounce callback for address and
// detail-bag autosave.
func (s *Session) flushDetail() {
	if err := s.flushDetailCtx(s.ctx); err != nil && !IsCanceled(err) {
		s.logger.Warn("sale detail autosave failed", slog.String("session_id", s.ID.String()), slog.Any("error", err))
	}
}

func (s *Session) flushDetailCtx(ctx context.Context) error {
	s.mu.Lock()
	saleID := s.remoteID
	if saleID == "" || !s.addressesDirty {
		s.mu.Unlock()
		return nil
	}
	gen := s.detailGen
	billing := s.billing.Clone()
	shipping := s.shipping.Clone()
	checkout := make(map[string]string, len(s.checkoutDetails))
	for k, v := range s.checkoutDetails {
		checkout[k] = v
	}
	shippingBag := make(map[string]string, len(s.shippingDetails))
	for k, v := range s.shippingDetails {
		shippingBag[k] = v
	}
	s.mu.Unlock()

	update := SaleDetailUpdate{
		Billing:         &billing,
		Shipping:        &shipping,
		CheckoutDetails: checkout,
		ShippingDetails: shippingBag,
	}
	if err := s.api.SetSaleDetail(ctx, s.Kind, saleID, update); err != nil {
		return err
	}
	s.mu.Lock()
	// An edit made while the request was in flight bumped the generation;
	// its snapshot was not part of this push, so the dirty bit must survive.
	if s.detailGen == gen {
		s.addressesDirty = false
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) touchLocked() {
	s.lastActivity = time.Now()
}

// markDetailDirtyLocked flags the addresses and detail bags for a push and
// bumps the generation so an in-flight flush cannot clear the dirty bit
// over an edit made during its round trip.
func (s *Session) markDetailDirtyLocked() {
	s.addressesDirty = true
	s.detailGen++
}

// LastActivity reports when the session was last used.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) stop() {
	s.notes.stop()
	s.detailDeb.CancelPending()
	s.summaryDeb.CancelPending()
}
