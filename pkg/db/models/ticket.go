package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/EnuliForge/kwikorder/pkg/enums"
)

// Ticket is the per-stream preparation unit of an order. At most one
// ticket exists per (order, stream) pair; a ticket never moves between
// orders.
type Ticket struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID          `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_tickets_order_stream"`
	Stream      enums.Stream       `gorm:"column:stream;type:text;not null;uniqueIndex:idx_tickets_order_stream"`
	Status      enums.TicketStatus `gorm:"column:status;type:text;not null;default:'received'"`
	ReadyAt     *time.Time         `gorm:"column:ready_at"`
	DeliveredAt *time.Time         `gorm:"column:delivered_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
