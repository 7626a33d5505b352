package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is one placed order for a table. Orders are append-only history:
// they close, they are never deleted.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	TableNumber int       `gorm:"column:table_number;not null"`

	// ResolutionRequired caches "at least one non-resolved issue exists".
	// Written only by the lifecycle engine, in the same transaction as the
	// issue change that affects it.
	ResolutionRequired  bool            `gorm:"column:resolution_required;not null;default:false"`
	CustomerConfirmedAt *time.Time      `gorm:"column:customer_confirmed_at"`
	ClosedAt            *time.Time      `gorm:"column:closed_at"`
	Tickets             []Ticket        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Issues              []Issue         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	LineItems           []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
