package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/EnuliForge/kwikorder/pkg/enums"
)

// OrderLineItem captures one ordered item at placement time. Line items
// are read-only after placement; they determine which streams get tickets.
type OrderLineItem struct {
	ID             uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID    `gorm:"column:order_id;type:uuid;not null;index"`
	Stream         enums.Stream `gorm:"column:stream;type:text;not null"`
	Name           string       `gorm:"column:name;not null"`
	Qty            int          `gorm:"column:qty;not null"`
	UnitPriceCents int          `gorm:"column:unit_price_cents;not null"`
	Notes          *string      `gorm:"column:notes"`
	CreatedAt      time.Time    `gorm:"column:created_at;autoCreateTime"`
}
