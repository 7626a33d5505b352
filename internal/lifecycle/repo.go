package lifecycle

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EnuliForge/kwikorder/pkg/db/models"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
)

type gormRepository struct {
	conn *gorm.DB
}

// NewRepository builds the gorm-backed lifecycle repository.
func NewRepository(conn *gorm.DB) Repository {
	return &gormRepository{conn: conn}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{conn: tx}
}

func (r *gormRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.conn.WithContext(ctx).Create(order).Error
}

func (r *gormRepository) CreateTickets(ctx context.Context, tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	return r.conn.WithContext(ctx).Create(&tickets).Error
}

func (r *gormRepository) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.conn.WithContext(ctx).Create(&items).Error
}

func (r *gormRepository) FindOrderByCode(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := r.conn.WithContext(ctx).Where("code = ?", code).First(&order).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.conn.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) FindTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.conn.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *gormRepository) FindTicketsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.conn.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *gormRepository) FindTicketByOrderAndStream(ctx context.Context, orderID uuid.UUID, stream enums.Stream) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.conn.WithContext(ctx).
		Where("order_id = ? AND stream = ?", orderID, stream).
		First(&ticket).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no ticket for stream")
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *gormRepository) UpdateTicketStatusCAS(ctx context.Context, ticketID uuid.UUID, from, to enums.TicketStatus, stamps map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for column, value := range stamps {
		updates[column] = value
	}
	result := r.conn.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND status = ?", ticketID, from).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) CreateIssue(ctx context.Context, issue *models.Issue) error {
	return r.conn.WithContext(ctx).Create(issue).Error
}

func (r *gormRepository) FindIssuesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Issue, error) {
	var issues []models.Issue
	err := r.conn.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&issues).Error
	if err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *gormRepository) UpdateIssues(ctx context.Context, ids []uuid.UUID, updates map[string]any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.conn.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id IN ?", ids).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) CountUnresolvedIssues(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn.WithContext(ctx).
		Model(&models.Issue{}).
		Where("order_id = ? AND status <> ?", orderID, enums.IssueStatusResolved).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *gormRepository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}
