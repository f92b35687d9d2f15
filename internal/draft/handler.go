package draft

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/salesdesk-erp/salesdesk/internal/platform/httpx"
)

var validate = validator.New()

// Handler exposes the editing wizard's JSON API over the session registry.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
}

// NewHandler constructs the draft handler.
func NewHandler(logger *slog.Logger, registry *Registry) *Handler {
	return &Handler{logger: logger, registry: registry}
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	var (
		sess *Session
		err  error
	)
	if req.SaleID != "" {
		sess, err = h.registry.OpenExisting(r.Context(), req.Kind, req.SaleID)
	} else {
		sess, err = h.registry.Open(r.Context(), req.Kind)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sess.Snapshot())
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Session ID", err.Error())
		return
	}
	h.registry.Close(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := sess.SelectCustomer(r.Context(), req.CustomerID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.registry.Touch(r.Context(), sess)
	httpx.JSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) AdvanceStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	step, err := sess.AdvanceStep()
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, StepResponse{Step: step})
}

func (h *Handler) RetreatStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, StepResponse{Step: sess.RetreatStep()})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	items, err := sess.AddLineItem(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemsResponse{LineItems: items})
}

func (h *Handler) RemoveItems(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req RemoveItemsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	items, err := sess.RemoveLineItems(r.Context(), req.ItemIDs)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemsResponse{LineItems: items})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch LineItemPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := sess.UpdateLineItem(chi.URLParam(r, "itemID"), patch); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SaveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.SaveLineItem(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetAddresses(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SetAddressesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if req.Billing != nil {
		sess.SetBillingAddress(*req.Billing)
	}
	if req.Shipping != nil {
		sess.SetShippingAddress(*req.Shipping)
	}
	if req.SameAsBilling != nil {
		sess.SetShippingSameAsBilling(*req.SameAsBilling)
	}
	httpx.JSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) SelectSavedAddress(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectSavedAddressRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := sess.SelectSavedAddress(req.SavedID, req.Type); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) SetCheckoutDetails(w http.ResponseWriter, r *http.Request) {
	h.setDetails(w, r, func(sess *Session, kv map[string]string) { sess.SetCheckoutDetails(kv) })
}

func (h *Handler) SetShippingDetails(w http.ResponseWriter, r *http.Request) {
	h.setDetails(w, r, func(sess *Session, kv map[string]string) { sess.SetShippingDetails(kv) })
}

func (h *Handler) setDetails(w http.ResponseWriter, r *http.Request, apply func(*Session, map[string]string)) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SetDetailsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	apply(sess, req.Details)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := sess.ChangeStatus(r.Context(), req.Status); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sum, err := sess.RefreshSummary(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if sum == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.JSON(w, http.StatusOK, newSummaryView(*sum))
}

func (h *Handler) NotesChange(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req NotesChangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	sess.NotesChange(req.Content)
	httpx.JSON(w, http.StatusOK, sess.NotesStatus())
}

func (h *Handler) NotesForceSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.NotesForceSave()
	httpx.JSON(w, http.StatusOK, sess.NotesStatus())
}

func (h *Handler) NotesStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, sess.NotesStatus())
}

func (h *Handler) SetConnectivity(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ConnectivityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	sess.SetOnline(req.Online)
	httpx.JSON(w, http.StatusOK, sess.NotesStatus())
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Submit(r.Context()); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.registry.Touch(r.Context(), sess)
	httpx.JSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Session ID", err.Error())
		return nil, false
	}
	sess, err := h.registry.Get(id)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return nil, false
	}
	return sess, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsCanceled(err):
		// The client went away; nothing useful to report.
		return
	case errors.Is(err, ErrCreationInFlight):
		httpx.Problem(w, http.StatusConflict, "Please Wait", err.Error())
	case errors.Is(err, ErrNoCustomer), errors.Is(err, ErrNoRemoteID), errors.Is(err, ErrUnknownStatus):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrSessionNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case IsUnreachable(err):
		httpx.Problem(w, http.StatusBadGateway, "Upstream Unreachable", "the sales service is not reachable")
	default:
		h.logger.Error("draft operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Error", err.Error())
	}
}
