// Package salesapi implements the typed JSON-over-HTTP client for the
// authoritative sales service. The draft engine consumes it through the
// draft.SalesAPI interface; this package owns paths, wire shapes and error
// classification, nothing else.
package salesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/salesdesk-erp/salesdesk/internal/draft"
)

// Doer issues HTTP requests. *http.Client satisfies it; tests substitute
// their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the sales service.
type Client struct {
	baseURL string
	doer    Doer
}

// New constructs a client. A nil doer falls back to an http.Client with
// the given timeout.
func New(baseURL string, doer Doer, timeout time.Duration) *Client {
	if doer == nil {
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), doer: doer}
}

func kindPath(kind draft.Kind) string {
	if kind == draft.KindOrder {
		return "orders"
	}
	return "quotes"
}

type createSaleRequest struct {
	CustomerID int64 `json:"customer_id"`
}

// CreateSale lazily creates the remote draft for the selected customer.
func (c *Client) CreateSale(ctx context.Context, kind draft.Kind, customerID int64) (*draft.CreateSaleResult, error) {
	var out draft.CreateSaleResult
	path := "/" + kindPath(kind)
	if err := c.do(ctx, http.MethodPost, path, createSaleRequest{CustomerID: customerID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type saleDetailResponse struct {
	SaleID          string             `json:"sale_id"`
	ID              int64              `json:"id"`
	Customer        *draft.CustomerRef `json:"customer,omitempty"`
	Billing         draft.Address      `json:"billing"`
	Shipping        draft.Address      `json:"shipping"`
	LineItems       []draft.LineItem   `json:"line_items"`
	Status          draft.Status       `json:"status"`
	CheckoutDetails map[string]string  `json:"checkout_details"`
	ShippingDetails map[string]string  `json:"shipping_details"`
	NotesDocumentID string             `json:"notes_document_id"`
}

// GetSale fetches the full remote snapshot for edit mode.
func (c *Client) GetSale(ctx context.Context, kind draft.Kind, saleID string) (*draft.SaleDetail, error) {
	var out saleDetailResponse
	path := fmt.Sprintf("/%s/%s", kindPath(kind), saleID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &draft.SaleDetail{
		SaleID:          out.SaleID,
		ID:              out.ID,
		Customer:        out.Customer,
		Billing:         out.Billing,
		Shipping:        out.Shipping,
		Items:           out.LineItems,
		Status:          out.Status,
		CheckoutDetails: out.CheckoutDetails,
		ShippingDetails: out.ShippingDetails,
		NotesDocumentID: out.NotesDocumentID,
	}, nil
}

type lineItemsResponse struct {
	LineItems []draft.LineItem `json:"line_items"`
}

// AddLineItem requests a new empty line item; the response carries the
// full updated collection.
func (c *Client) AddLineItem(ctx context.Context, kind draft.Kind, saleID string) ([]draft.LineItem, error) {
	var out lineItemsResponse
	path := fmt.Sprintf("/%s/%s/line-items", kindPath(kind), saleID)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return out.LineItems, nil
}

type updateLineItemRequest struct {
	General draft.LineItemPatch `json:"general"`
}

type updateLineItemResponse struct {
	LineItem *draft.LineItem `json:"line_item"`
}

// UpdateLineItem persists an explicit line item save.
func (c *Client) UpdateLineItem(ctx context.Context, kind draft.Kind, itemID string, patch draft.LineItemPatch) (*draft.LineItem, error) {
	var out updateLineItemResponse
	path := fmt.Sprintf("/%s/line-items/%s", kindPath(kind), itemID)
	if err := c.do(ctx, http.MethodPatch, path, updateLineItemRequest{General: patch}, &out); err != nil {
		return nil, err
	}
	return out.LineItem, nil
}

type removeLineItemsRequest struct {
	LineItemIDs []string `json:"line_item_ids"`
}

// RemoveLineItems removes the given items; the response carries the full
// updated collection.
func (c *Client) RemoveLineItems(ctx context.Context, kind draft.Kind, saleID string, itemIDs []string) ([]draft.LineItem, error) {
	var out lineItemsResponse
	path := fmt.Sprintf("/%s/%s/line-items/remove", kindPath(kind), saleID)
	if err := c.do(ctx, http.MethodPost, path, removeLineItemsRequest{LineItemIDs: itemIDs}, &out); err != nil {
		return nil, err
	}
	return out.LineItems, nil
}

// SetSaleDetail pushes address, detail-bag and document-link changes.
func (c *Client) SetSaleDetail(ctx context.Context, kind draft.Kind, saleID string, update draft.SaleDetailUpdate) error {
	path := fmt.Sprintf("/%s/%s/detail", kindPath(kind), saleID)
	return c.do(ctx, http.MethodPut, path, update, nil)
}

type summaryResponse struct {
	CustomerSummary      draft.PartySummary `json:"customer_summary"`
	TotalSupplierSummary draft.PartySummary `json:"total_supplier_summary"`
	Profit               float64            `json:"profit"`
}

// GetSummary fetches the authoritative financial summary.
func (c *Client) GetSummary(ctx context.Context, kind draft.Kind, saleID string) (*draft.Summary, error) {
	var out summaryResponse
	path := fmt.Sprintf("/%s/%s/summary", kindPath(kind), saleID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &draft.Summary{
		Customer: out.CustomerSummary,
		Supplier: out.TotalSupplierSummary,
		Profit:   out.Profit,
	}, nil
}

type setStatusRequest struct {
	ID     int64        `json:"id"`
	Status draft.Status `json:"status"`
}

// SetStatus updates the sale status using the kind-specific vocabulary.
func (c *Client) SetStatus(ctx context.Context, kind draft.Kind, id int64, status draft.Status) error {
	path := "/" + kindPath(kind) + "/status"
	return c.do(ctx, http.MethodPost, path, setStatusRequest{ID: id, Status: status}, nil)
}

type createDocumentRequest struct {
	IsPublic bool   `json:"is_public"`
	SaleID   string `json:"sale_id"`
}

type createDocumentResponse struct {
	ID string `json:"id"`
}

// CreateDocument creates the notes document attached to a sale.
func (c *Client) CreateDocument(ctx context.Context, saleID string, isPublic bool) (string, error) {
	var out createDocumentResponse
	if err := c.do(ctx, http.MethodPost, "/documents", createDocumentRequest{IsPublic: isPublic, SaleID: saleID}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

type addRevisionRequest struct {
	Content string `json:"content"`
}

// AddDocumentRevision appends a revision with the given content.
func (c *Client) AddDocumentRevision(ctx context.Context, documentID, content string) error {
	path := fmt.Sprintf("/documents/%s/revisions", documentID)
	return c.do(ctx, http.MethodPost, path, addRevisionRequest{Content: content}, nil)
}

type documentResponse struct {
	Content string `json:"content"`
}

// GetDocument reads the document's current content.
func (c *Client) GetDocument(ctx context.Context, documentID string) (string, error) {
	var out documentResponse
	if err := c.do(ctx, http.MethodGet, "/documents/"+documentID, nil, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Title   string `json:"title"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("salesapi: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("salesapi: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			// Canceled requests are a silent outcome, never an offline signal.
			return fmt.Errorf("salesapi: %s %s: %w", method, path, context.Canceled)
		}
		return &transportError{err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			switch {
			case eb.Message != "":
				apiErr.Message = eb.Message
			case eb.Detail != "":
				apiErr.Message = eb.Detail
			case eb.Title != "":
				apiErr.Message = eb.Title
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("salesapi: decode response: %w", err)
	}
	return nil
}
