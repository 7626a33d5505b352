package views

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/EnuliForge/kwikorder/pkg/config"
	"github.com/EnuliForge/kwikorder/pkg/db/models"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
)

type stubViewsRepo struct {
	activeOrders  map[int][]models.Order
	activeTables  []int
	recentCounts  map[int]int64
	recentTables  []int
	issueEntries  []IssueQueueEntry
	readyEntries  []DeliveryQueueEntry
	streamTickets []KitchenTicket
	order         *models.Order
}

func (s *stubViewsRepo) ActiveOrders(ctx context.Context, tableNumber int) ([]models.Order, error) {
	return s.activeOrders[tableNumber], nil
}

func (s *stubViewsRepo) ActiveTables(ctx context.Context) ([]int, error) {
	return s.activeTables, nil
}

func (s *stubViewsRepo) RecentlyClosedCount(ctx context.Context, tableNumber int, since time.Time) (int64, error) {
	return s.recentCounts[tableNumber], nil
}

func (s *stubViewsRepo) RecentlyClosedTables(ctx context.Context, since time.Time) ([]int, error) {
	return s.recentTables, nil
}

func (s *stubViewsRepo) UnresolvedIssueEntries(ctx context.Context) ([]IssueQueueEntry, error) {
	return s.issueEntries, nil
}

func (s *stubViewsRepo) ReadyTicketEntries(ctx context.Context) ([]DeliveryQueueEntry, error) {
	return s.readyEntries, nil
}

func (s *stubViewsRepo) StreamTickets(ctx context.Context, stream enums.Stream) ([]KitchenTicket, error) {
	return s.streamTickets, nil
}

func (s *stubViewsRepo) OrderWithRelations(ctx context.Context, code string) (*models.Order, error) {
	if s.order != nil && s.order.Code == code {
		return s.order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func newTestViews(repo Repository) Service {
	logg := logger.New(logger.Options{ServiceName: "views-test", Output: io.Discard})
	return NewService(repo, config.ViewsConfig{ClosedLookback: 2 * time.Hour}, logg)
}

func TestColorPrecedence(t *testing.T) {
	cases := []struct {
		name         string
		active       int
		flagged      bool
		recentClosed int64
		want         enums.TableColor
	}{
		{"empty table", 0, false, 0, enums.TableColorWhite},
		{"recently closed only", 0, false, 2, enums.TableColorGreen},
		{"single active", 1, false, 0, enums.TableColorOrange},
		{"single active with recent closed", 1, false, 1, enums.TableColorOrange},
		{"multiple active", 2, false, 0, enums.TableColorPurple},
		{"flagged beats single", 1, true, 0, enums.TableColorRed},
		{"flagged beats multiple", 3, true, 1, enums.TableColorRed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := colorFor(tc.active, tc.flagged, tc.recentClosed); got != tc.want {
				t.Fatalf("colorFor(%d, %v, %d) = %s, want %s", tc.active, tc.flagged, tc.recentClosed, got, tc.want)
			}
		})
	}
}

func TestTableStatusFlagsRed(t *testing.T) {
	repo := &stubViewsRepo{
		activeOrders: map[int][]models.Order{
			5: {
				{ID: uuid.New(), Code: "A", TableNumber: 5},
				{ID: uuid.New(), Code: "B", TableNumber: 5, ResolutionRequired: true},
			},
		},
		recentCounts: map[int]int64{},
	}
	svc := newTestViews(repo)

	status, err := svc.TableStatus(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if status.Color != enums.TableColorRed || !status.Flagged {
		t.Fatalf("expected red flagged got %+v", status)
	}
	if status.Label != enums.TableColorRed.Label() {
		t.Fatalf("label mismatch %q", status.Label)
	}
}

func TestTableStatusRejectsBadTable(t *testing.T) {
	svc := newTestViews(&stubViewsRepo{})
	_, err := svc.TableStatus(context.Background(), 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestTableBoardMergesActiveAndRecent(t *testing.T) {
	repo := &stubViewsRepo{
		activeTables: []int{3, 1},
		recentTables: []int{3, 8},
		activeOrders: map[int][]models.Order{
			1: {{ID: uuid.New(), TableNumber: 1}},
			3: {{ID: uuid.New(), TableNumber: 3}, {ID: uuid.New(), TableNumber: 3}},
		},
		recentCounts: map[int]int64{8: 1},
	}
	svc := newTestViews(repo)

	board, err := svc.TableBoard(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("expected three tables got %d", len(board))
	}
	if board[0].TableNumber != 1 || board[1].TableNumber != 3 || board[2].TableNumber != 8 {
		t.Fatalf("board not sorted by table: %+v", board)
	}
	if board[1].Color != enums.TableColorPurple {
		t.Fatalf("expected purple for two active orders got %s", board[1].Color)
	}
	if board[2].Color != enums.TableColorGreen {
		t.Fatalf("expected green for recent-closed-only table got %s", board[2].Color)
	}
}

func TestRunnerQueueNeverNil(t *testing.T) {
	svc := newTestViews(&stubViewsRepo{})
	queue, err := svc.RunnerQueue(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if queue.Issues == nil || queue.Deliveries == nil {
		t.Fatalf("queue slices must be non-nil for JSON encoding")
	}
}

func TestKitchenQueueRejectsUnknownStream(t *testing.T) {
	svc := newTestViews(&stubViewsRepo{})
	_, err := svc.KitchenQueue(context.Background(), "dessert")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestOrderDetailAwaitingFix(t *testing.T) {
	orderID := uuid.New()
	foodTicket := models.Ticket{ID: uuid.New(), OrderID: orderID, Stream: enums.StreamFood, Status: enums.TicketStatusDelivered}
	drinksTicket := models.Ticket{ID: uuid.New(), OrderID: orderID, Stream: enums.StreamDrinks, Status: enums.TicketStatusDelivered}
	repo := &stubViewsRepo{
		order: &models.Order{
			ID:                 orderID,
			Code:               "K-7001",
			TableNumber:        9,
			ResolutionRequired: true,
			Tickets:            []models.Ticket{foodTicket, drinksTicket},
			Issues: []models.Issue{
				{ID: uuid.New(), OrderID: orderID, TicketID: &foodTicket.ID, Status: enums.IssueStatusRunnerAck, Type: enums.IssueTypeCold},
			},
		},
	}
	svc := newTestViews(repo)

	detail, err := svc.OrderDetail(context.Background(), "K-7001")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(detail.Tickets) != 2 {
		t.Fatalf("expected two tickets got %d", len(detail.Tickets))
	}
	if !detail.Tickets[0].AwaitingFixConfirmation {
		t.Fatalf("food ticket should await fix confirmation")
	}
	if detail.Tickets[1].AwaitingFixConfirmation {
		t.Fatalf("drinks ticket has no acknowledged issue")
	}
	if !detail.CanConfirmDelivery {
		t.Fatalf("all tickets delivered and unconfirmed, expected confirmable")
	}
}

func TestOrderDetailOrderWideIssueCoversAllTickets(t *testing.T) {
	orderID := uuid.New()
	repo := &stubViewsRepo{
		order: &models.Order{
			ID:          orderID,
			Code:        "K-7002",
			TableNumber: 2,
			Tickets: []models.Ticket{
				{ID: uuid.New(), OrderID: orderID, Stream: enums.StreamFood, Status: enums.TicketStatusDelivered},
				{ID: uuid.New(), OrderID: orderID, Stream: enums.StreamDrinks, Status: enums.TicketStatusPreparing},
			},
			Issues: []models.Issue{
				{ID: uuid.New(), OrderID: orderID, Status: enums.IssueStatusRunnerAck, Type: enums.IssueTypeOther},
			},
		},
	}
	svc := newTestViews(repo)

	detail, err := svc.OrderDetail(context.Background(), "K-7002")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	for _, ticket := range detail.Tickets {
		if !ticket.AwaitingFixConfirmation {
			t.Fatalf("order-wide acknowledgement must cover ticket %s", ticket.ID)
		}
	}
	if detail.CanConfirmDelivery {
		t.Fatalf("drinks ticket still preparing, must not be confirmable")
	}
}

func TestOrderDetailNotFound(t *testing.T) {
	svc := newTestViews(&stubViewsRepo{})
	_, err := svc.OrderDetail(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}
