package views

import (
	"context"
	stdErrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/EnuliForge/kwikorder/pkg/db/models"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
)

// Repository provides the read-side queries behind the aggregate views.
// Everything here is a snapshot read; no view query writes.
type Repository interface {
	ActiveOrders(ctx context.Context, tableNumber int) ([]models.Order, error)
	ActiveTables(ctx context.Context) ([]int, error)
	RecentlyClosedCount(ctx context.Context, tableNumber int, since time.Time) (int64, error)
	RecentlyClosedTables(ctx context.Context, since time.Time) ([]int, error)
	UnresolvedIssueEntries(ctx context.Context) ([]IssueQueueEntry, error)
	ReadyTicketEntries(ctx context.Context) ([]DeliveryQueueEntry, error)
	StreamTickets(ctx context.Context, stream enums.Stream) ([]KitchenTicket, error)
	OrderWithRelations(ctx context.Context, code string) (*models.Order, error)
}

type gormRepository struct {
	conn *gorm.DB
}

// NewRepository builds the gorm-backed views repository.
func NewRepository(conn *gorm.DB) Repository {
	return &gormRepository{conn: conn}
}

func (r *gormRepository) ActiveOrders(ctx context.Context, tableNumber int) ([]models.Order, error) {
	var orders []models.Order
	err := r.conn.WithContext(ctx).
		Where("table_number = ? AND closed_at IS NULL", tableNumber).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormRepository) ActiveTables(ctx context.Context) ([]int, error) {
	var tables []int
	err := r.conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("closed_at IS NULL").
		Distinct("table_number").
		Pluck("table_number", &tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *gormRepository) RecentlyClosedCount(ctx context.Context, tableNumber int, since time.Time) (int64, error) {
	var count int64
	err := r.conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("table_number = ? AND closed_at IS NOT NULL AND closed_at >= ?", tableNumber, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *gormRepository) RecentlyClosedTables(ctx context.Context, since time.Time) ([]int, error) {
	var tables []int
	err := r.conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("closed_at IS NOT NULL AND closed_at >= ?", since).
		Distinct("table_number").
		Pluck("table_number", &tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *gormRepository) UnresolvedIssueEntries(ctx context.Context) ([]IssueQueueEntry, error) {
	var entries []IssueQueueEntry
	err := r.conn.WithContext(ctx).
		Table("issues").
		Select("issues.id AS issue_id, orders.code AS order_code, orders.table_number AS table_number, issues.ticket_id, issues.stream, issues.status, issues.type, issues.created_at").
		Joins("JOIN orders ON orders.id = issues.order_id").
		Where("issues.status <> ? AND orders.closed_at IS NULL", enums.IssueStatusResolved).
		Order("issues.created_at DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *gormRepository) ReadyTicketEntries(ctx context.Context) ([]DeliveryQueueEntry, error) {
	var entries []DeliveryQueueEntry
	err := r.conn.WithContext(ctx).
		Table("tickets").
		Select("tickets.id AS ticket_id, orders.code AS order_code, orders.table_number AS table_number, tickets.stream, tickets.ready_at").
		Joins("JOIN orders ON orders.id = tickets.order_id").
		Where("tickets.status = ?", enums.TicketStatusReady).
		Order("tickets.ready_at ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *gormRepository) StreamTickets(ctx context.Context, stream enums.Stream) ([]KitchenTicket, error) {
	var tickets []KitchenTicket
	err := r.conn.WithContext(ctx).
		Table("tickets").
		Select("tickets.id AS ticket_id, orders.code AS order_code, orders.table_number AS table_number, tickets.stream, tickets.status, tickets.created_at").
		Joins("JOIN orders ON orders.id = tickets.order_id").
		Where("tickets.stream = ? AND tickets.status IN ?", stream, []enums.TicketStatus{enums.TicketStatusReceived, enums.TicketStatusPreparing}).
		Order("tickets.created_at ASC").
		Scan(&tickets).Error
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return tickets, nil
	}

	codes := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		codes = append(codes, ticket.OrderCode)
	}
	type lineItemRow struct {
		models.OrderLineItem
		OrderCode string `gorm:"column:order_code"`
	}
	var rows []lineItemRow
	err = r.conn.WithContext(ctx).
		Table("order_line_items").
		Select("order_line_items.*, orders.code AS order_code").
		Joins("JOIN orders ON orders.id = order_line_items.order_id").
		Where("orders.code IN ? AND order_line_items.stream = ?", codes, stream).
		Order("order_line_items.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byCode := make(map[string][]models.OrderLineItem, len(codes))
	for _, row := range rows {
		byCode[row.OrderCode] = append(byCode[row.OrderCode], row.OrderLineItem)
	}
	for i := range tickets {
		tickets[i].Items = byCode[tickets[i].OrderCode]
	}
	return tickets, nil
}

func (r *gormRepository) OrderWithRelations(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := r.conn.WithContext(ctx).
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("tickets.created_at ASC") }).
		Preload("Issues", func(db *gorm.DB) *gorm.DB { return db.Order("issues.created_at DESC") }).
		Preload("LineItems").
		Where("code = ?", code).
		First(&order).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}
