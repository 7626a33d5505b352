package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/EnuliForge/kwikorder/pkg/config"
	"github.com/EnuliForge/kwikorder/pkg/logger"
	"github.com/EnuliForge/kwikorder/pkg/redis"
)

// Publisher broadcasts order state changes to polling and subscribed
// surfaces. Delivery is best-effort; a failed broadcast never fails the
// transaction that produced it.
type Publisher interface {
	OrderChanged(ctx context.Context, orderCode string, tableNumber int)
}

// ChangeEvent is the payload published on the change channel.
type ChangeEvent struct {
	OrderCode   string    `json:"order_code"`
	TableNumber int       `json:"table_number"`
	ChangedAt   time.Time `json:"changed_at"`
}

type markerStore interface {
	Publish(ctx context.Context, channel string, payload any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	ChangedOrderKey(code string) string
	ChangedTableKey(table int) string
}

type redisPublisher struct {
	store     markerStore
	channel   string
	markerTTL time.Duration
	logg      *logger.Logger
	now       func() time.Time
}

// NewRedisPublisher builds the redis-backed change publisher.
func NewRedisPublisher(client *redis.Client, cfg config.NotifyConfig, logg *logger.Logger) Publisher {
	return &redisPublisher{
		store:     client,
		channel:   cfg.Channel,
		markerTTL: cfg.MarkerTTL,
		logg:      logg,
		now:       time.Now,
	}
}

func (p *redisPublisher) OrderChanged(ctx context.Context, orderCode string, tableNumber int) {
	now := p.now().UTC()
	payload, err := json.Marshal(ChangeEvent{
		OrderCode:   orderCode,
		TableNumber: tableNumber,
		ChangedAt:   now,
	})
	if err != nil {
		p.logg.Error(ctx, "encoding change event", err)
		return
	}

	if err := p.store.Publish(ctx, p.channel, payload); err != nil {
		p.logg.Error(ctx, "publishing change event", err)
	}

	marker := now.Format(time.RFC3339Nano)
	if err := p.store.Set(ctx, p.store.ChangedOrderKey(orderCode), marker, p.markerTTL); err != nil {
		p.logg.Error(ctx, "writing order change marker", err)
	}
	if err := p.store.Set(ctx, p.store.ChangedTableKey(tableNumber), marker, p.markerTTL); err != nil {
		p.logg.Error(ctx, "writing table change marker", err)
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event. Used when
// redis is not configured, and in tests.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) OrderChanged(ctx context.Context, orderCode string, tableNumber int) {}
