package placement

import (
	"context"
	"crypto/rand"
	"fmt"

	"gorm.io/gorm"

	"github.com/EnuliForge/kwikorder/internal/lifecycle"
	"github.com/EnuliForge/kwikorder/pkg/db"
	"github.com/EnuliForge/kwikorder/pkg/db/models"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
)

// Service places new orders: one order row, one ticket per distinct
// stream in the items, and the line items themselves, all in a single
// transaction.
type Service interface {
	PlaceOrder(ctx context.Context, input lifecycle.PlaceOrderInput) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    lifecycle.Repository
	tx      txRunner
	logg    *logger.Logger
	genCode func() (string, error)
}

// NewService wires the placement service.
func NewService(repo lifecycle.Repository, tx txRunner, logg *logger.Logger) Service {
	return &service{
		repo:    repo,
		tx:      tx,
		logg:    logg,
		genCode: generateOrderCode,
	}
}

// Order codes avoid ambiguous characters so staff can read them back to
// customers over noise.
const (
	codeAlphabet  = "23456789ABCDEFGHJKMNPQRSTVWXYZ"
	codeLength    = 6
	placeAttempts = 3
)

func generateOrderCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

func (s *service) PlaceOrder(ctx context.Context, input lifecycle.PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	var placed *models.Order
	var lastErr error
	for attempt := 0; attempt < placeAttempts; attempt++ {
		code, err := s.genCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order code")
		}

		lastErr = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			order := &models.Order{
				Code:        code,
				TableNumber: input.TableNumber,
			}
			if err := repo.CreateOrder(ctx, order); err != nil {
				return err
			}

			tickets := make([]models.Ticket, 0, 2)
			for _, stream := range distinctStreams(input.Items) {
				tickets = append(tickets, models.Ticket{
					OrderID: order.ID,
					Stream:  stream,
					Status:  enums.TicketStatusReceived,
				})
			}
			if err := repo.CreateTickets(ctx, tickets); err != nil {
				return err
			}

			items := make([]models.OrderLineItem, 0, len(input.Items))
			for _, item := range input.Items {
				items = append(items, models.OrderLineItem{
					OrderID:        order.ID,
					Stream:         item.Stream,
					Name:           item.Name,
					Qty:            item.Qty,
					UnitPriceCents: item.UnitPriceCents,
					Notes:          item.Notes,
				})
			}
			if err := repo.CreateLineItems(ctx, items); err != nil {
				return err
			}

			order.Tickets = tickets
			order.LineItems = items
			placed = order
			return nil
		})
		if lastErr == nil {
			ctx = s.logg.WithOrderCode(ctx, placed.Code)
			s.logg.Info(ctx, fmt.Sprintf("order placed for table %d with %d tickets", placed.TableNumber, len(placed.Tickets)))
			return placed, nil
		}
		if !db.IsUniqueViolation(lastErr, "") {
			return nil, lastErr
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "could not allocate a unique order code")
}

func validatePlaceOrder(input lifecycle.PlaceOrderInput) error {
	if input.TableNumber < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "table number must be at least 1").
			WithDetails(map[string]any{"table_number": input.TableNumber})
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	for i, item := range input.Items {
		if !item.Stream.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown stream").
				WithDetails(map[string]any{"index": i, "stream": string(item.Stream)})
		}
		if item.Name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item name is required").
				WithDetails(map[string]any{"index": i})
		}
		if item.Qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item qty must be at least 1").
				WithDetails(map[string]any{"index": i, "qty": item.Qty})
		}
		if item.UnitPriceCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative").
				WithDetails(map[string]any{"index": i})
		}
	}
	return nil
}

func distinctStreams(items []lifecycle.PlaceOrderItem) []enums.Stream {
	seen := make(map[enums.Stream]bool, 2)
	var out []enums.Stream
	for _, item := range items {
		if seen[item.Stream] {
			continue
		}
		seen[item.Stream] = true
		out = append(out, item.Stream)
	}
	return out
}
