package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/EnuliForge/kwikorder/pkg/enums"
)

// Issue is a reported problem scoped to a ticket, a stream, or the whole
// order. TicketID and Stream are nullable at the storage layer; writes go
// through lifecycle.IssueScope so the ticket/stream/order-wide variants
// stay mutually exclusive.
type Issue struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	TicketID    *uuid.UUID        `gorm:"column:ticket_id;type:uuid"`
	Stream      *enums.Stream     `gorm:"column:stream;type:text"`
	Status      enums.IssueStatus `gorm:"column:status;type:text;not null;default:'open'"`
	Type        enums.IssueType   `gorm:"column:type;type:text;not null"`
	Description *string           `gorm:"column:description"`
	AdminNote   *string           `gorm:"column:admin_note"`
	ResolvedBy  *enums.ResolvedBy `gorm:"column:resolved_by;type:text"`
	ResolvedAt  *time.Time        `gorm:"column:resolved_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
