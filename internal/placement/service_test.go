package placement

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EnuliForge/kwikorder/internal/lifecycle"
	"github.com/EnuliForge/kwikorder/pkg/db/models"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
)

type stubPlacementRepo struct {
	orders      []*models.Order
	tickets     []models.Ticket
	items       []models.OrderLineItem
	createOrder func(ctx context.Context, order *models.Order) error
}

func (s *stubPlacementRepo) WithTx(tx *gorm.DB) lifecycle.Repository {
	return s
}

func (s *stubPlacementRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	if s.createOrder != nil {
		if err := s.createOrder(ctx, order); err != nil {
			return err
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders = append(s.orders, order)
	return nil
}

func (s *stubPlacementRepo) CreateTickets(ctx context.Context, tickets []models.Ticket) error {
	s.tickets = append(s.tickets, tickets...)
	return nil
}

func (s *stubPlacementRepo) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubPlacementRepo) FindOrderByCode(ctx context.Context, code string) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubPlacementRepo) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubPlacementRepo) FindTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	panic("not implemented")
}

func (s *stubPlacementRepo) FindTicketsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Ticket, error) {
	panic("not implemented")
}

func (s *stubPlacementRepo) FindTicketByOrderAndStream(ctx context.Context, orderID uuid.UUID, stream enums.Stream) (*models.Ticket, error) {
	panic("not implemented")
}

func (s *stubPlacementRepo) UpdateTicketStatusCAS(ctx context.Context, ticketID uuid.UUID, from, to enums.TicketStatus, stamps map[string]any) (int64, error) {
	panic("not implemented")
}

func (s *stubPlacementRepo) CreateIssue(ctx context.Context, issue *models.Issue) error {
	panic("not implemented")
}

func (s *stubPlacementRepo) FindIssuesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Issue, error) {
	panic("not implemented")
}

func (s *stubPlacementRepo) UpdateIssues(ctx context.Context, ids []uuid.UUID, updates map[string]any) (int64, error) {
	panic("not implemented")
}

func (s *stubPlacementRepo) CountUnresolvedIssues(ctx context.Context, orderID uuid.UUID) (int64, error) {
	panic("not implemented")
}

func (s *stubPlacementRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestPlacement(repo lifecycle.Repository) *service {
	logg := logger.New(logger.Options{ServiceName: "placement-test", Output: io.Discard})
	return NewService(repo, stubTxRunner{}, logg).(*service)
}

func TestPlaceOrderCreatesTicketPerStream(t *testing.T) {
	repo := &stubPlacementRepo{}
	svc := newTestPlacement(repo)
	notes := "no ice"

	order, err := svc.PlaceOrder(context.Background(), lifecycle.PlaceOrderInput{
		TableNumber: 6,
		Items: []lifecycle.PlaceOrderItem{
			{Stream: enums.StreamFood, Name: "Burger", Qty: 1, UnitPriceCents: 1250},
			{Stream: enums.StreamFood, Name: "Fries", Qty: 2, UnitPriceCents: 450},
			{Stream: enums.StreamDrinks, Name: "Cola", Qty: 1, UnitPriceCents: 300, Notes: &notes},
		},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(order.Code) != codeLength {
		t.Fatalf("unexpected code %q", order.Code)
	}
	if len(repo.tickets) != 2 {
		t.Fatalf("expected one ticket per stream got %d", len(repo.tickets))
	}
	for _, ticket := range repo.tickets {
		if ticket.Status != enums.TicketStatusReceived {
			t.Fatalf("expected received got %s", ticket.Status)
		}
		if ticket.OrderID != order.ID {
			t.Fatalf("ticket not linked to order")
		}
	}
	if len(repo.items) != 3 {
		t.Fatalf("expected three line items got %d", len(repo.items))
	}
}

func TestPlaceOrderSingleStream(t *testing.T) {
	repo := &stubPlacementRepo{}
	svc := newTestPlacement(repo)

	_, err := svc.PlaceOrder(context.Background(), lifecycle.PlaceOrderInput{
		TableNumber: 2,
		Items: []lifecycle.PlaceOrderItem{
			{Stream: enums.StreamDrinks, Name: "Espresso", Qty: 1, UnitPriceCents: 280},
		},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.tickets) != 1 || repo.tickets[0].Stream != enums.StreamDrinks {
		t.Fatalf("expected single drinks ticket got %+v", repo.tickets)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	svc := newTestPlacement(&stubPlacementRepo{})
	cases := []struct {
		name  string
		input lifecycle.PlaceOrderInput
	}{
		{"zero table", lifecycle.PlaceOrderInput{TableNumber: 0, Items: []lifecycle.PlaceOrderItem{{Stream: enums.StreamFood, Name: "x", Qty: 1}}}},
		{"no items", lifecycle.PlaceOrderInput{TableNumber: 1}},
		{"bad stream", lifecycle.PlaceOrderInput{TableNumber: 1, Items: []lifecycle.PlaceOrderItem{{Stream: "dessert", Name: "x", Qty: 1}}}},
		{"empty name", lifecycle.PlaceOrderInput{TableNumber: 1, Items: []lifecycle.PlaceOrderItem{{Stream: enums.StreamFood, Qty: 1}}}},
		{"zero qty", lifecycle.PlaceOrderInput{TableNumber: 1, Items: []lifecycle.PlaceOrderItem{{Stream: enums.StreamFood, Name: "x"}}}},
		{"negative price", lifecycle.PlaceOrderInput{TableNumber: 1, Items: []lifecycle.PlaceOrderItem{{Stream: enums.StreamFood, Name: "x", Qty: 1, UnitPriceCents: -1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error got %v", err)
			}
		})
	}
}

func TestPlaceOrderRetriesOnCodeCollision(t *testing.T) {
	calls := 0
	repo := &stubPlacementRepo{}
	repo.createOrder = func(ctx context.Context, order *models.Order) error {
		calls++
		if calls == 1 {
			return errors.New(`duplicate key value violates unique constraint "idx_orders_code"`)
		}
		return nil
	}
	svc := newTestPlacement(repo)
	codes := []string{"AAAAAA", "BBBBBB"}
	svc.genCode = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	order, err := svc.PlaceOrder(context.Background(), lifecycle.PlaceOrderInput{
		TableNumber: 3,
		Items: []lifecycle.PlaceOrderItem{
			{Stream: enums.StreamFood, Name: "Soup", Qty: 1, UnitPriceCents: 600},
		},
	})
	if err != nil {
		t.Fatalf("expected retry to succeed got %v", err)
	}
	if order.Code != "BBBBBB" {
		t.Fatalf("expected regenerated code got %s", order.Code)
	}
	if calls != 2 {
		t.Fatalf("expected two create attempts got %d", calls)
	}
}

func TestPlaceOrderGivesUpAfterCollisions(t *testing.T) {
	repo := &stubPlacementRepo{}
	repo.createOrder = func(ctx context.Context, order *models.Order) error {
		return errors.New("UNIQUE constraint failed: orders.code")
	}
	svc := newTestPlacement(repo)

	_, err := svc.PlaceOrder(context.Background(), lifecycle.PlaceOrderInput{
		TableNumber: 3,
		Items: []lifecycle.PlaceOrderItem{
			{Stream: enums.StreamFood, Name: "Soup", Qty: 1, UnitPriceCents: 600},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error got %v", err)
	}
}
