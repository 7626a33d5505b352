package notify

import (
	"context"
	"time"

	"github.com/EnuliForge/kwikorder/pkg/redis"
)

// Tracker answers "did anything change since T" for surfaces that poll
// instead of subscribing. Markers expire; a missing marker means no
// change within the TTL window.
type Tracker struct {
	store markerStore
}

// NewTracker builds a tracker over the shared redis client.
func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{store: client}
}

// OrderChangedSince reports whether the order's change marker is newer
// than since.
func (t *Tracker) OrderChangedSince(ctx context.Context, orderCode string, since time.Time) (bool, error) {
	return t.changedSince(ctx, t.store.ChangedOrderKey(orderCode), since)
}

// TableChangedSince reports whether the table's change marker is newer
// than since.
func (t *Tracker) TableChangedSince(ctx context.Context, tableNumber int, since time.Time) (bool, error) {
	return t.changedSince(ctx, t.store.ChangedTableKey(tableNumber), since)
}

func (t *Tracker) changedSince(ctx context.Context, key string, since time.Time) (bool, error) {
	raw, err := t.store.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return false, nil
		}
		return false, err
	}
	changedAt, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// A corrupt marker is treated as changed so pollers refresh.
		return true, nil
	}
	return changedAt.After(since), nil
}
