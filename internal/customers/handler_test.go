package customers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, svc)
	router := chi.NewRouter()
	h.MountRoutes(router)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCustomerCRUDOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/customers", CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: str("hello@acme.test"),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, "/customers/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/customers/1", UpdateCustomerRequest{Name: str("Acme Corporation")})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Acme Corporation", updated.Name)

	rec = doJSON(t, router, http.MethodGet, "/customers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
}

func TestCustomerValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/customers", CreateCustomerRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/customers", CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: str("not-an-email"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/customers/0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/customers/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddressBookOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/customers", CreateCustomerRequest{Name: "Acme Corp"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/customers/1/addresses", CreateAddressRequest{
		Type:      AddressTypeShipping,
		Label:     "Warehouse",
		IsPrimary: true,
		Line1:     str("7 Dock St"),
		Country:   str("US"),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var addr Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addr))
	require.NotZero(t, addr.ID)

	// Country must be ISO alpha-2.
	rec = doJSON(t, router, http.MethodPost, "/customers/1/addresses", CreateAddressRequest{
		Type:    AddressTypeBilling,
		Country: str("USA"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/customers/1/addresses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var book []Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	require.Len(t, book, 1)

	rec = doJSON(t, router, http.MethodDelete, "/customers/1/addresses/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/customers/1/addresses/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
