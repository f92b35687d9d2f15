package draft

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, api *fakeAPI) http.Handler {
	t.Helper()
	registry, _ := newTestRegistry(t, api)
	h := NewHandler(testLogger(), registry)
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

func TestHandlerWizardFlow(t *testing.T) {
	api := newFakeAPI()
	api.items = []LineItem{{ID: "li-1"}}
	router := newTestHandler(t, api)

	// Open a fresh quote session.
	rec := doJSON(t, router, http.MethodPost, "/drafts", OpenSessionRequest{Kind: KindQuote})
	require.Equal(t, http.StatusCreated, rec.Code)
	var view SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotEmpty(t, view.ID)
	base := "/drafts/" + view.ID

	// Leaving the first step before creation is rejected.
	rec = doJSON(t, router, http.MethodPost, base+"/step/advance", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Selecting the customer creates the remote draft.
	rec = doJSON(t, router, http.MethodPost, base+"/customer", SelectCustomerRequest{CustomerID: 7})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "S-100", view.RemoteID)

	rec = doJSON(t, router, http.MethodPost, base+"/step/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var step StepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	assert.Equal(t, StepItems, step.Step)

	rec = doJSON(t, router, http.MethodPost, base+"/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items ItemsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items.LineItems, 1)

	rec = doJSON(t, router, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerOpenRejectsUnknownKind(t *testing.T) {
	api := newFakeAPI()
	router := newTestHandler(t, api)

	rec := doJSON(t, router, http.MethodPost, "/drafts", map[string]string{"kind": "invoice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUnknownSession(t *testing.T) {
	api := newFakeAPI()
	router := newTestHandler(t, api)

	rec := doJSON(t, router, http.MethodGet, "/drafts/0b3a7f0e-7b1a-4a86-b574-6df37e63a2a1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/drafts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreationInFlightConflict(t *testing.T) {
	api := newFakeAPI()
	api.createGate = make(chan struct{})
	router := newTestHandler(t, api)

	rec := doJSON(t, router, http.MethodPost, "/drafts", OpenSessionRequest{Kind: KindQuote})
	require.Equal(t, http.StatusCreated, rec.Code)
	var view SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	base := "/drafts/" + view.ID

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- doJSON(t, router, http.MethodPost, base+"/customer", SelectCustomerRequest{CustomerID: 7})
	}()

	require.Eventually(t, func() bool {
		return api.createCount() == 1
	}, time.Second, 5*time.Millisecond)

	rec = doJSON(t, router, http.MethodPost, base+"/customer", SelectCustomerRequest{CustomerID: 7})
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(api.createGate)
	assert.Equal(t, http.StatusOK, (<-done).Code)
}

func TestHandlerNotesStatusEndpoint(t *testing.T) {
	api := newFakeAPI()
	router := newTestHandler(t, api)

	rec := doJSON(t, router, http.MethodPost, "/drafts", OpenSessionRequest{Kind: KindOrder})
	require.Equal(t, http.StatusCreated, rec.Code)
	var view SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	base := "/drafts/" + view.ID

	rec = doJSON(t, router, http.MethodGet, base+"/notes/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status NotesStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "idle", status.State)
	assert.False(t, status.Offline)
}

func TestHandlerConnectivityEndpoint(t *testing.T) {
	api := newFakeAPI()
	router := newTestHandler(t, api)

	rec := doJSON(t, router, http.MethodPost, "/drafts", OpenSessionRequest{Kind: KindQuote})
	require.Equal(t, http.StatusCreated, rec.Code)
	var view SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	base := "/drafts/" + view.ID

	rec = doJSON(t, router, http.MethodPost, base+"/connectivity", ConnectivityRequest{Online: false})
	require.Equal(t, http.StatusOK, rec.Code)
	var status NotesStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Offline)

	rec = doJSON(t, router, http.MethodPost, base+"/connectivity", ConnectivityRequest{Online: true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Offline)
}
