package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/salesdesk-erp/salesdesk/internal/draft"
)

// Reaper removes editing session markers whose owning process stopped
// touching them. Live sessions are evicted in-process by the registry
// janitor; markers orphaned by a crash or deploy are only ever cleaned
// here.
type Reaper struct {
	rdb     *redis.Client
	idleTTL time.Duration
	logger  *slog.Logger
}

// NewReaper constructs the sweep job.
func NewReaper(rdb *redis.Client, idleTTL time.Duration, logger *slog.Logger) *Reaper {
	if idleTTL <= 0 {
		idleTTL = 4 * time.Hour
	}
	return &Reaper{rdb: rdb, idleTTL: idleTTL, logger: logger}
}

// Handle processes TaskDraftsReap tasks.
func (r *Reaper) Handle(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().Add(-r.idleTTL)
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, draft.SessionKeyPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		for _, key := range keys {
			data, err := r.rdb.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			var marker draft.ActivityMarker
			if err := json.Unmarshal(data, &marker); err != nil {
				// Unparseable markers are garbage either way.
				_ = r.rdb.Del(ctx, key).Err()
				removed++
				continue
			}
			if marker.LastActivity.Before(cutoff) {
				if err := r.rdb.Del(ctx, key).Err(); err == nil {
					removed++
				}
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if removed > 0 {
		r.logger.Info("reaped stale editing sessions", slog.Int("count", removed))
	}
	return nil
}
