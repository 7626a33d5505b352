package views

import (
	"time"

	"github.com/google/uuid"

	"github.com/EnuliForge/kwikorder/pkg/db/models"
	"github.com/EnuliForge/kwikorder/pkg/enums"
)

// TableStatus is the aggregate color/label view of one table.
type TableStatus struct {
	TableNumber  int              `json:"table_number"`
	Color        enums.TableColor `json:"color"`
	Label        string           `json:"label"`
	ActiveOrders int              `json:"active_orders"`
	Flagged      bool             `json:"flagged"`
}

// IssueQueueEntry is one unresolved issue in the runner work queue.
type IssueQueueEntry struct {
	IssueID     uuid.UUID         `gorm:"column:issue_id" json:"issue_id"`
	OrderCode   string            `gorm:"column:order_code" json:"order_code"`
	TableNumber int               `gorm:"column:table_number" json:"table_number"`
	TicketID    *uuid.UUID        `gorm:"column:ticket_id" json:"ticket_id,omitempty"`
	Stream      *enums.Stream     `gorm:"column:stream" json:"stream,omitempty"`
	Status      enums.IssueStatus `gorm:"column:status" json:"status"`
	Type        enums.IssueType   `gorm:"column:type" json:"type"`
	CreatedAt   time.Time         `gorm:"column:created_at" json:"created_at"`
}

// DeliveryQueueEntry is one ready-to-deliver ticket in the runner work queue.
type DeliveryQueueEntry struct {
	TicketID    uuid.UUID    `gorm:"column:ticket_id" json:"ticket_id"`
	OrderCode   string       `gorm:"column:order_code" json:"order_code"`
	TableNumber int          `gorm:"column:table_number" json:"table_number"`
	Stream      enums.Stream `gorm:"column:stream" json:"stream"`
	ReadyAt     *time.Time   `gorm:"column:ready_at" json:"ready_at"`
}

// RunnerQueue is the full runner view: issues first, then deliveries.
type RunnerQueue struct {
	Issues     []IssueQueueEntry    `json:"issues"`
	Deliveries []DeliveryQueueEntry `json:"deliveries"`
}

// KitchenTicket is one ticket on a preparation queue, with the line
// items the station has to prepare.
type KitchenTicket struct {
	TicketID    uuid.UUID              `gorm:"column:ticket_id" json:"ticket_id"`
	OrderCode   string                 `gorm:"column:order_code" json:"order_code"`
	TableNumber int                    `gorm:"column:table_number" json:"table_number"`
	Stream      enums.Stream           `gorm:"column:stream" json:"stream"`
	Status      enums.TicketStatus     `gorm:"column:status" json:"status"`
	CreatedAt   time.Time              `gorm:"column:created_at" json:"created_at"`
	Items       []models.OrderLineItem `gorm:"-" json:"items"`
}

// OrderDetailTicket is the customer-facing projection of one ticket.
type OrderDetailTicket struct {
	ID          uuid.UUID          `json:"id"`
	Stream      enums.Stream       `json:"stream"`
	Status      enums.TicketStatus `json:"status"`
	ReadyAt     *time.Time         `json:"ready_at,omitempty"`
	DeliveredAt *time.Time         `json:"delivered_at,omitempty"`

	// AwaitingFixConfirmation is true when a runner has acknowledged an
	// issue in this ticket's scope and the customer has not confirmed.
	AwaitingFixConfirmation bool `json:"awaiting_fix_confirmation"`
}

// OrderDetail is the customer-facing projection of one order.
type OrderDetail struct {
	Code                string                 `json:"code"`
	TableNumber         int                    `json:"table_number"`
	ResolutionRequired  bool                   `json:"resolution_required"`
	CustomerConfirmedAt *time.Time             `json:"customer_confirmed_at,omitempty"`
	ClosedAt            *time.Time             `json:"closed_at,omitempty"`
	CanConfirmDelivery  bool                   `json:"can_confirm_delivery"`
	Tickets             []OrderDetailTicket    `json:"tickets"`
	Issues              []models.Issue         `json:"issues"`
	LineItems           []models.OrderLineItem `json:"line_items"`
}
