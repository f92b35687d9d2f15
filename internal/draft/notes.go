package draft

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// SaveState is the persistence state of the notes document.
type SaveState int

const (
	SaveIdle SaveState = iota
	SaveSaving
	SaveSaved
	SaveError
)

func (s SaveState) String() string {
	switch s {
	case SaveSaving:
		return "saving"
	case SaveSaved:
		return "saved"
	case SaveError:
		return "error"
	default:
		return "idle"
	}
}

// NotesStatus is the autosave indicator exposed to the UI. Offline is
// orthogonal to the save state: connectivity loss is a quiet condition,
// not an error toast.
type NotesStatus struct {
	State   string `json:"state"`
	Offline bool   `json:"offline"`
	Dirty   bool   `json:"dirty"`
	Error   string `json:"error,omitempty"`
}

// Markers the rich text editor emits for a document with no real content.
// Creating a remote document for these would litter the server with empty
// revisions.
var emptyDocumentMarkers = map[string]struct{}{
	"":                  {},
	"[]":                {},
	`{"blocks":[]}`:     {},
	`[{"insert":"\n"}]`: {},
}

func isTrivialContent(content string) bool {
	_, ok := emptyDocumentMarkers[strings.TrimSpace(content)]
	return ok
}

// notesEngine is the debounced, connectivity-aware autosave state machine
// for a draft's rich text notes document. One instance per session; at most
// one outstanding save request at a time, with re-arming instead of
// concurrent fires.
type notesEngine struct {
	mu     sync.Mutex
	ctx    context.Context
	api    SalesAPI
	logger *slog.Logger
	deb    *debouncer

	// onDocumentCreated links the freshly created document to the sale
	// record. Invoked outside the engine lock.
	onDocumentCreated func(documentID string)

	saleID   string
	docID    string
	loaded   bool
	loading  bool
	creating bool
	saving   bool
	offline  bool

	content string // editable value, updated on every change
	acked   string // last successfully acknowledged value
	state   SaveState
	lastErr error
}

func newNotesEngine(ctx context.Context, api SalesAPI, logger *slog.Logger, settle time.Duration) *notesEngine {
	e := &notesEngine{
		ctx:    ctx,
		api:    api,
		logger: logger,
	}
	e.deb = newDebouncer(settle, e.flush)
	return e
}

// bind attaches the engine to a live remote draft. Called once the sale
// exists upstream: with an empty docID for fresh drafts, or with the
// existing document id when editing a loaded sale.
func (e *notesEngine) bind(saleID, docID string) {
	e.mu.Lock()
	e.saleID = saleID
	e.docID = docID
	if docID == "" {
		// Nothing to load; edits become actionable immediately.
		e.loaded = true
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	go e.loadDocument()
}

// loadDocument performs the one-time initial content load. Until it
// completes, content changes are ignored so an empty editor can never
// clobber server content.
func (e *notesEngine) loadDocument() {
	e.mu.Lock()
	if e.loaded || e.loading || e.docID == "" {
		e.mu.Unlock()
		return
	}
	e.loading = true
	docID := e.docID
	e.mu.Unlock()

	content, err := e.api.GetDocument(e.ctx, docID)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false
	switch {
	case err == nil:
		e.content = content
		e.acked = content
		e.loaded = true
		e.state = SaveIdle
	case IsCanceled(err):
	case IsUnreachable(err):
		e.offline = true
	default:
		e.state = SaveError
		e.lastErr = err
		e.logger.Error("notes document load failed", slog.String("document_id", docID), slog.Any("error", err))
	}
}

// OnContentChange records an edit. The editable value always updates for
// display; persistence is debounced, and everything is ignored until the
// initial load has finished.
func (e *notesEngine) OnContentChange(content string) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return
	}
	e.content = content

	if e.docID == "" {
		// Lazy document creation: exactly one per draft lifetime, and only
		// once there is something worth keeping. While offline the attempt
		// is deferred; the reconnect path picks it up.
		if e.saleID == "" || e.creating || e.offline || isTrivialContent(content) {
			e.mu.Unlock()
			return
		}
		e.creating = true
		e.mu.Unlock()
		go e.createDocument()
		return
	}
	e.mu.Unlock()
	e.deb.Schedule()
}

func (e *notesEngine) createDocument() {
	e.mu.Lock()
	saleID := e.saleID
	e.mu.Unlock()

	docID, err := e.api.CreateDocument(e.ctx, saleID, false)

	e.mu.Lock()
	e.creating = false
	if err != nil {
		switch {
		case IsCanceled(err):
		case IsUnreachable(err):
			e.offline = true
		default:
			e.state = SaveError
			e.lastErr = err
			e.logger.Error("notes document creation failed", slog.String("sale_id", saleID), slog.Any("error", err))
		}
		e.mu.Unlock()
		return
	}
	e.docID = docID
	notify := e.onDocumentCreated
	e.mu.Unlock()

	if notify != nil {
		notify(docID)
	}
	// Persist whatever content accumulated while the creation call was out.
	e.deb.Schedule()
}

// flush is the debounce callback: save the current content if it actually
// changed and we are online, with at most one save in flight.
func (e *notesEngine) flush() {
	e.mu.Lock()
	if !e.loaded || e.docID == "" {
		e.mu.Unlock()
		return
	}
	content := e.content
	if content == e.acked {
		e.mu.Unlock()
		return
	}
	if e.offline {
		// Deferred; the reconnect path retries automatically.
		e.mu.Unlock()
		return
	}
	if e.saving {
		// Re-coalesce through the timer rather than firing concurrently.
		e.mu.Unlock()
		e.deb.Schedule()
		return
	}
	e.saving = true
	e.state = SaveSaving
	docID := e.docID
	e.mu.Unlock()

	err := e.api.AddDocumentRevision(e.ctx, docID, content)

	e.mu.Lock()
	e.saving = false
	switch {
	case err == nil:
		e.acked = content
		e.state = SaveSaved
		if e.content != e.acked {
			e.mu.Unlock()
			e.deb.Schedule()
			return
		}
	case IsCanceled(err):
		e.state = SaveIdle
	case IsUnreachable(err):
		e.offline = true
		e.state = SaveIdle
	default:
		e.state = SaveError
		e.lastErr = err
		e.logger.Error("notes save failed", slog.String("document_id", docID), slog.Any("error", err))
	}
	e.mu.Unlock()
}

// ForceSave bypasses the settle window for an explicit manual save. The
// unchanged-content and connectivity guards still apply.
func (e *notesEngine) ForceSave() {
	e.deb.Flush()
}

// SetOnline flips the connectivity state. Coming back online retries the
// initial load if it never completed, finishes a deferred lazy creation,
// and saves automatically when content differs from the last acknowledged
// value.
func (e *notesEngine) SetOnline(online bool) {
	e.mu.Lock()
	e.offline = !online
	if !online {
		e.mu.Unlock()
		return
	}
	needLoad := !e.loaded && e.docID != "" && !e.loading
	needCreate := e.loaded && e.docID == "" && e.saleID != "" && !e.creating && !isTrivialContent(e.content)
	dirty := e.loaded && e.docID != "" && e.content != e.acked
	if needCreate {
		e.creating = true
	}
	e.mu.Unlock()

	if needLoad {
		go e.loadDocument()
	}
	if needCreate {
		go e.createDocument()
	}
	if dirty {
		e.deb.Flush()
	}
}

// Status snapshots the autosave indicator.
func (e *notesEngine) Status() NotesStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := NotesStatus{
		State:   e.state.String(),
		Offline: e.offline,
		Dirty:   e.loaded && e.content != e.acked,
	}
	if e.state == SaveError && e.lastErr != nil {
		st.Error = e.lastErr.Error()
	}
	return st
}

func (e *notesEngine) stop() {
	e.deb.CancelPending()
}
