package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/EnuliForge/kwikorder/pkg/logger"
)

type stubMarkerStore struct {
	published map[string][]string
	values    map[string]string
	ttls      map[string]time.Duration
	getErr    error
}

func newStubMarkerStore() *stubMarkerStore {
	return &stubMarkerStore{
		published: make(map[string][]string),
		values:    make(map[string]string),
		ttls:      make(map[string]time.Duration),
	}
}

func (s *stubMarkerStore) Publish(ctx context.Context, channel string, payload any) error {
	s.published[channel] = append(s.published[channel], string(payload.([]byte)))
	return nil
}

func (s *stubMarkerStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return nil
}

func (s *stubMarkerStore) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	if value, ok := s.values[key]; ok {
		return value, nil
	}
	return "", goredis.Nil
}

func (s *stubMarkerStore) ChangedOrderKey(code string) string {
	return "kwik:changed:order:" + code
}

func (s *stubMarkerStore) ChangedTableKey(table int) string {
	return fmt.Sprintf("kwik:changed:table:%d", table)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "notify-test", Output: io.Discard})
}

func TestOrderChangedPublishesAndMarks(t *testing.T) {
	store := newStubMarkerStore()
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pub := &redisPublisher{
		store:     store,
		channel:   "order-changes",
		markerTTL: 24 * time.Hour,
		logg:      testLogger(),
		now:       func() time.Time { return at },
	}

	pub.OrderChanged(context.Background(), "K-9001", 12)

	messages := store.published["order-changes"]
	if len(messages) != 1 {
		t.Fatalf("expected one published event got %d", len(messages))
	}
	var event ChangeEvent
	if err := json.Unmarshal([]byte(messages[0]), &event); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if event.OrderCode != "K-9001" || event.TableNumber != 12 {
		t.Fatalf("unexpected event %+v", event)
	}

	orderKey := store.ChangedOrderKey("K-9001")
	tableKey := store.ChangedTableKey(12)
	if store.values[orderKey] == "" || store.values[tableKey] == "" {
		t.Fatalf("expected markers for order and table, got %+v", store.values)
	}
	if store.ttls[orderKey] != 24*time.Hour {
		t.Fatalf("unexpected marker ttl %v", store.ttls[orderKey])
	}
}

func TestTrackerChangedSince(t *testing.T) {
	store := newStubMarkerStore()
	tracker := &Tracker{store: store}
	ctx := context.Background()

	marked := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.values[store.ChangedOrderKey("K-9002")] = marked.Format(time.RFC3339Nano)

	changed, err := tracker.OrderChangedSince(ctx, "K-9002", marked.Add(-time.Minute))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !changed {
		t.Fatalf("expected change detected")
	}

	changed, err = tracker.OrderChangedSince(ctx, "K-9002", marked.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if changed {
		t.Fatalf("expected no change after marker time")
	}
}

func TestTrackerMissingMarkerMeansNoChange(t *testing.T) {
	store := newStubMarkerStore()
	tracker := &Tracker{store: store}

	changed, err := tracker.TableChangedSince(context.Background(), 9, time.Now())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if changed {
		t.Fatalf("missing marker must read as unchanged")
	}
}

func TestTrackerCorruptMarkerReportsChanged(t *testing.T) {
	store := newStubMarkerStore()
	tracker := &Tracker{store: store}

	store.values[store.ChangedTableKey(4)] = "not-a-timestamp"

	changed, err := tracker.TableChangedSince(context.Background(), 4, time.Now())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !changed {
		t.Fatalf("corrupt marker should force a refresh")
	}
}
