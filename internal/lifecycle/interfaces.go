package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EnuliForge/kwikorder/pkg/db/models"
	"github.com/EnuliForge/kwikorder/pkg/enums"
)

// Repository defines persistence operations for the lifecycle tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	CreateTickets(ctx context.Context, tickets []models.Ticket) error
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error

	FindOrderByCode(ctx context.Context, code string) (*models.Order, error)
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	FindTicketsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Ticket, error)
	FindTicketByOrderAndStream(ctx context.Context, orderID uuid.UUID, stream enums.Stream) (*models.Ticket, error)

	// UpdateTicketStatusCAS writes the new status conditioned on the row
	// still holding the status the caller read. Returns the number of
	// rows touched: zero means another actor won the race.
	UpdateTicketStatusCAS(ctx context.Context, ticketID uuid.UUID, from, to enums.TicketStatus, stamps map[string]any) (int64, error)

	CreateIssue(ctx context.Context, issue *models.Issue) error
	FindIssuesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Issue, error)
	UpdateIssues(ctx context.Context, ids []uuid.UUID, updates map[string]any) (int64, error)
	CountUnresolvedIssues(ctx context.Context, orderID uuid.UUID) (int64, error)

	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
}

// ActorContext identifies which surface triggered a mutation. It has no
// lifecycle effect; it feeds logs and metrics.
type ActorContext struct {
	Role string
}

// AdvanceTicketInput carries a requested ticket status change.
type AdvanceTicketInput struct {
	TicketID uuid.UUID
	Target   enums.TicketStatus
	Actor    ActorContext
}

// CreateIssueInput carries a customer-reported problem.
type CreateIssueInput struct {
	OrderCode   string
	Scope       IssueScope
	Type        enums.IssueType
	Description *string
}

// AcknowledgeInput carries a runner acknowledgement for a scope.
type AcknowledgeInput struct {
	OrderCode string
	Scope     IssueScope
	Actor     ActorContext
}

// ResolveInput carries an issue resolution for a scope.
type ResolveInput struct {
	OrderCode  string
	Scope      IssueScope
	ResolvedBy enums.ResolvedBy
	Note       *string
}

// ConfirmDeliveryInput carries the customer's delivery confirmation.
type ConfirmDeliveryInput struct {
	OrderCode string
}

// PlaceOrderInput carries a new order with its line items.
type PlaceOrderInput struct {
	TableNumber int
	Items       []PlaceOrderItem
}

// PlaceOrderItem is one line of a placed order.
type PlaceOrderItem struct {
	Stream         enums.Stream
	Name           string
	Qty            int
	UnitPriceCents int
	Notes          *string
}

// Clock abstracts time for deterministic tests.
type Clock func() time.Time
