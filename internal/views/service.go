package views

import (
	"context"
	"sort"
	"time"

	"github.com/EnuliForge/kwikorder/pkg/config"
	"github.com/EnuliForge/kwikorder/pkg/db/models"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
)

// Service derives the aggregate read views. Everything is recomputed
// per query from current rows; nothing here caches or writes.
type Service interface {
	TableBoard(ctx context.Context) ([]TableStatus, error)
	TableStatus(ctx context.Context, tableNumber int) (*TableStatus, error)
	RunnerQueue(ctx context.Context) (*RunnerQueue, error)
	KitchenQueue(ctx context.Context, stream enums.Stream) ([]KitchenTicket, error)
	OrderDetail(ctx context.Context, code string) (*OrderDetail, error)
}

type service struct {
	repo     Repository
	lookback time.Duration
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the views service with the configured closed-order
// lookback window.
func NewService(repo Repository, cfg config.ViewsConfig, logg *logger.Logger) Service {
	return &service{
		repo:     repo,
		lookback: cfg.ClosedLookback,
		logg:     logg,
		now:      time.Now,
	}
}

func (s *service) TableBoard(ctx context.Context) ([]TableStatus, error) {
	since := s.now().UTC().Add(-s.lookback)

	active, err := s.repo.ActiveTables(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.RecentlyClosedTables(ctx, since)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var tables []int
	for _, table := range append(active, recent...) {
		if seen[table] {
			continue
		}
		seen[table] = true
		tables = append(tables, table)
	}
	sort.Ints(tables)

	board := make([]TableStatus, 0, len(tables))
	for _, table := range tables {
		status, err := s.TableStatus(ctx, table)
		if err != nil {
			return nil, err
		}
		board = append(board, *status)
	}
	return board, nil
}

func (s *service) TableStatus(ctx context.Context, tableNumber int) (*TableStatus, error) {
	if tableNumber < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table number must be at least 1")
	}

	orders, err := s.repo.ActiveOrders(ctx, tableNumber)
	if err != nil {
		return nil, err
	}
	since := s.now().UTC().Add(-s.lookback)
	recentClosed, err := s.repo.RecentlyClosedCount(ctx, tableNumber, since)
	if err != nil {
		return nil, err
	}

	flagged := false
	for _, order := range orders {
		if order.ResolutionRequired {
			flagged = true
			break
		}
	}

	color := colorFor(len(orders), flagged, recentClosed)
	return &TableStatus{
		TableNumber:  tableNumber,
		Color:        color,
		Label:        color.Label(),
		ActiveOrders: len(orders),
		Flagged:      flagged,
	}, nil
}

// colorFor implements the precedence: red beats everything once any
// active order is flagged; purple and orange only apply to unflagged
// active sets; green and white cover the no-active cases.
func colorFor(activeCount int, anyFlagged bool, recentClosed int64) enums.TableColor {
	switch {
	case activeCount == 0 && recentClosed == 0:
		return enums.TableColorWhite
	case activeCount == 0:
		return enums.TableColorGreen
	case anyFlagged:
		return enums.TableColorRed
	case activeCount >= 2:
		return enums.TableColorPurple
	default:
		return enums.TableColorOrange
	}
}

func (s *service) RunnerQueue(ctx context.Context) (*RunnerQueue, error) {
	issues, err := s.repo.UnresolvedIssueEntries(ctx)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.repo.ReadyTicketEntries(ctx)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []IssueQueueEntry{}
	}
	if deliveries == nil {
		deliveries = []DeliveryQueueEntry{}
	}
	return &RunnerQueue{Issues: issues, Deliveries: deliveries}, nil
}

func (s *service) KitchenQueue(ctx context.Context, stream enums.Stream) ([]KitchenTicket, error) {
	if !stream.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown stream").
			WithDetails(map[string]any{"stream": string(stream)})
	}
	tickets, err := s.repo.StreamTickets(ctx, stream)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []KitchenTicket{}
	}
	return tickets, nil
}

func (s *service) OrderDetail(ctx context.Context, code string) (*OrderDetail, error) {
	order, err := s.repo.OrderWithRelations(ctx, code)
	if err != nil {
		return nil, err
	}

	detail := &OrderDetail{
		Code:                order.Code,
		TableNumber:         order.TableNumber,
		ResolutionRequired:  order.ResolutionRequired,
		CustomerConfirmedAt: order.CustomerConfirmedAt,
		ClosedAt:            order.ClosedAt,
		Issues:              order.Issues,
		LineItems:           order.LineItems,
	}

	allFinished := len(order.Tickets) > 0
	for _, ticket := range order.Tickets {
		detail.Tickets = append(detail.Tickets, OrderDetailTicket{
			ID:                      ticket.ID,
			Stream:                  ticket.Stream,
			Status:                  ticket.Status,
			ReadyAt:                 ticket.ReadyAt,
			DeliveredAt:             ticket.DeliveredAt,
			AwaitingFixConfirmation: awaitingFix(order.Issues, ticket),
		})
		if !ticket.Status.IsTerminalSuccess() {
			allFinished = false
		}
	}
	detail.CanConfirmDelivery = allFinished && order.CustomerConfirmedAt == nil && order.ClosedAt == nil

	return detail, nil
}

// awaitingFix reports whether any acknowledged, still-unconfirmed issue
// covers the given ticket: pinned to it, tagged with its stream, or
// order-wide.
func awaitingFix(issues []models.Issue, ticket models.Ticket) bool {
	for _, issue := range issues {
		if issue.Status != enums.IssueStatusRunnerAck && issue.Status != enums.IssueStatusClientAck {
			continue
		}
		switch {
		case issue.TicketID != nil:
			if *issue.TicketID == ticket.ID {
				return true
			}
		case issue.Stream != nil:
			if *issue.Stream == ticket.Stream {
				return true
			}
		default:
			return true
		}
	}
	return false
}
