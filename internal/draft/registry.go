package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionKeyPrefix namespaces the redis activity markers kept per editing
// session. Markers let operators and the background reap job observe
// sessions that outlived their process.
const SessionKeyPrefix = "draft:session:"

// ErrSessionNotFound indicates an unknown or already closed session id.
var ErrSessionNotFound = errors.New("editing session not found")

// ActivityMarker is the redis-persisted trace of an editing session.
type ActivityMarker struct {
	Kind         Kind      `json:"kind"`
	SaleID       string    `json:"sale_id,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

// Registry owns the live editing sessions of this process. Sessions are
// in-memory; closing one cancels its in-flight requests.
type Registry struct {
	api       SalesAPI
	directory CustomerDirectory
	notifier  Notifier
	logger    *slog.Logger
	cfg       SessionConfig
	rdb       *redis.Client
	idleTTL   time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
}

type sessionEntry struct {
	session *Session
	cancel  context.CancelFunc
}

// RegistryParams groups the registry's dependencies. Redis is optional;
// without it no activity markers are written.
type RegistryParams struct {
	API       SalesAPI
	Directory CustomerDirectory
	Notifier  Notifier
	Logger    *slog.Logger
	Config    SessionConfig
	Redis     *redis.Client
	IdleTTL   time.Duration
}

// NewRegistry constructs the session registry.
func NewRegistry(p RegistryParams) *Registry {
	idle := p.IdleTTL
	if idle <= 0 {
		idle = 4 * time.Hour
	}
	return &Registry{
		api:       p.API,
		directory: p.Directory,
		notifier:  p.Notifier,
		logger:    p.Logger,
		cfg:       p.Config,
		rdb:       p.Redis,
		idleTTL:   idle,
		sessions:  make(map[uuid.UUID]*sessionEntry),
	}
}

// Open starts a session for a brand new draft of the given kind. No remote
// resource exists until the first customer selection.
func (r *Registry) Open(ctx context.Context, kind Kind) (*Session, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("open session: unknown kind %q", kind)
	}
	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := newSession(sessCtx, kind, r.api, r.directory, r.notifier, r.logger, r.cfg)

	r.mu.Lock()
	r.sessions[s.ID] = &sessionEntry{session: s, cancel: cancel}
	r.mu.Unlock()

	r.Touch(ctx, s)
	return s, nil
}

// OpenExisting starts a session in edit mode and loads the remote sale.
func (r *Registry) OpenExisting(ctx context.Context, kind Kind, saleID string) (*Session, error) {
	s, err := r.Open(ctx, kind)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx, saleID); err != nil {
		r.Close(ctx, s.ID)
		return nil, err
	}
	return s, nil
}

// Get looks up a live session.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry.session, nil
}

// Close tears a session down: pending timers stop, in-flight requests are
// canceled (a silent outcome, not an error), and the activity marker is
// removed.
func (r *Registry) Close(ctx context.Context, id uuid.UUID) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	entry.session.stop()
	entry.cancel()
	if r.rdb != nil {
		if err := r.rdb.Del(ctx, SessionKeyPrefix+id.String()).Err(); err != nil {
			r.logger.Warn("delete session marker failed", slog.String("session_id", id.String()), slog.Any("error", err))
		}
	}
}

// Touch refreshes the session's redis activity marker. Markers carry no
// TTL on purpose: one orphaned by a crashed process is exactly what the
// reap job exists to find.
func (r *Registry) Touch(ctx context.Context, s *Session) {
	if r.rdb == nil {
		return
	}
	marker := ActivityMarker{Kind: s.Kind, LastActivity: time.Now()}
	s.mu.Lock()
	marker.SaleID = s.remoteID
	s.mu.Unlock()
	data, err := json.Marshal(marker)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, SessionKeyPrefix+s.ID.String(), data, 0).Err(); err != nil {
		r.logger.Warn("write session marker failed", slog.String("session_id", s.ID.String()), slog.Any("error", err))
	}
}

// RunJanitor evicts idle in-memory sessions until ctx is canceled.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evictIdle(ctx)
		}
	}
}

func (r *Registry) evictIdle(ctx context.Context) {
	cutoff := time.Now().Add(-r.idleTTL)
	r.mu.Lock()
	var stale []uuid.UUID
	for id, entry := range r.sessions {
		if entry.session.LastActivity().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()
	for _, id := range stale {
		r.logger.Info("evicting idle editing session", slog.String("session_id", id.String()))
		r.Close(ctx, id)
	}
}
