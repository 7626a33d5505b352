package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EnuliForge/kwikorder/pkg/db/models"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
	"github.com/EnuliForge/kwikorder/pkg/metrics"
)

// Service is the lifecycle engine. It is the only writer of order,
// ticket, and issue status fields; every operation runs as one
// transaction and re-evaluates order closing whenever a closing
// precondition may have changed.
type Service interface {
	AdvanceTicket(ctx context.Context, input AdvanceTicketInput) (*models.Ticket, error)
	CreateIssue(ctx context.Context, input CreateIssueInput) (*models.Issue, error)
	RunnerAcknowledge(ctx context.Context, input AcknowledgeInput) (*AckResult, error)
	ResolveIssues(ctx context.Context, input ResolveInput) (*ResolveResult, error)
	ConfirmDelivery(ctx context.Context, input ConfirmDeliveryInput) (*models.Order, error)
}

// AckResult reports what a runner acknowledgement did.
type AckResult struct {
	Acknowledged int  `json:"acknowledged"`
	Created      bool `json:"created"`
}

// ResolveResult reports what a resolution did.
type ResolveResult struct {
	Resolved    int  `json:"resolved"`
	OrderClosed bool `json:"order_closed"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type changePublisher interface {
	OrderChanged(ctx context.Context, orderCode string, tableNumber int)
}

type service struct {
	repo    Repository
	tx      txRunner
	notify  changePublisher
	metrics *metrics.LifecycleMetrics
	logg    *logger.Logger
	now     Clock
}

// NewService wires the lifecycle engine. notify and lifecycleMetrics may
// be nil; now defaults to time.Now.
func NewService(repo Repository, tx txRunner, notify changePublisher, lifecycleMetrics *metrics.LifecycleMetrics, logg *logger.Logger, now Clock) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    repo,
		tx:      tx,
		notify:  notify,
		metrics: lifecycleMetrics,
		logg:    logg,
		now:     now,
	}
}

// errTicketRace signals a lost compare-and-set inside a transaction. It
// never leaves the service; the caller either retries or maps it to a
// conflict error.
var errTicketRace = pkgerrors.New(pkgerrors.CodeConflict, "ticket changed concurrently")

const advanceRetries = 1

func (s *service) AdvanceTicket(ctx context.Context, input AdvanceTicketInput) (*models.Ticket, error) {
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown target status").
			WithDetails(map[string]any{"target": string(input.Target)})
	}

	var (
		ticket *models.Ticket
		order  *models.Order
		closed bool
	)

	attempt := func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			closed = false

			current, err := repo.FindTicket(ctx, input.TicketID)
			if err != nil {
				return err
			}
			if err := ValidateTicketTransition(current.Status, input.Target); err != nil {
				return err
			}

			now := s.now().UTC()
			stamps := map[string]any{"updated_at": now}
			switch input.Target {
			case enums.TicketStatusReady:
				stamps["ready_at"] = now
			case enums.TicketStatusDelivered:
				stamps["delivered_at"] = now
			}

			affected, err := repo.UpdateTicketStatusCAS(ctx, current.ID, current.Status, input.Target, stamps)
			if err != nil {
				return err
			}
			if affected == 0 {
				return errTicketRace
			}

			current.Status = input.Target
			current.UpdatedAt = now
			if input.Target == enums.TicketStatusReady {
				current.ReadyAt = &now
			}
			if input.Target == enums.TicketStatusDelivered {
				current.DeliveredAt = &now
			}

			order, err = repo.FindOrderByID(ctx, current.OrderID)
			if err != nil {
				return err
			}

			if input.Target.IsTerminalSuccess() {
				closed, err = s.evaluateClose(ctx, repo, order, now)
				if err != nil {
					return err
				}
			}

			ticket = current
			return nil
		})
	}

	var err error
	for i := 0; i <= advanceRetries; i++ {
		err = attempt()
		if err == nil || pkgerrors.As(err) != errTicketRace {
			break
		}
		s.metrics.ObserveConflict()
	}
	if err != nil {
		if pkgerrors.As(err) == errTicketRace {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "ticket was updated by another actor").
				WithDetails(map[string]any{"ticket_id": input.TicketID})
		}
		return nil, err
	}

	ctx = s.logg.WithOrderCode(ctx, order.Code)
	ctx = s.logg.WithActorRole(ctx, input.Actor.Role)
	s.logg.Info(ctx, "ticket advanced to "+input.Target.String())

	s.metrics.ObserveTicketTransition(ticket.Stream.String(), input.Target.String())
	if closed {
		s.metrics.ObserveOrderClosed()
	}
	s.publishChange(ctx, order)
	return ticket, nil
}

func (s *service) CreateIssue(ctx context.Context, input CreateIssueInput) (*models.Issue, error) {
	if input.Scope.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "issue scope is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown issue type").
			WithDetails(map[string]any{"type": string(input.Type)})
	}

	var (
		issue *models.Issue
		order *models.Order
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.FindOrderByCode(ctx, input.OrderCode)
		if err != nil {
			return err
		}
		if order.ClosedAt != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already closed")
		}

		record := models.Issue{
			OrderID:     order.ID,
			Status:      enums.IssueStatusOpen,
			Type:        input.Type,
			Description: input.Description,
		}

		if ticketID, ok := input.Scope.TicketID(); ok {
			ticket, err := repo.FindTicket(ctx, ticketID)
			if err != nil {
				return err
			}
			if ticket.OrderID != order.ID {
				return pkgerrors.New(pkgerrors.CodeValidation, "ticket does not belong to order")
			}
			if !ticket.Status.IsTerminalSuccess() {
				return pkgerrors.New(pkgerrors.CodeTooEarly, "issues can only be reported after delivery").
					WithDetails(map[string]any{"ticket_status": ticket.Status.String()})
			}
			if !input.Type.AllowedForStream(ticket.Stream) {
				return pkgerrors.New(pkgerrors.CodeValidation, "issue type not allowed for stream").
					WithDetails(map[string]any{"type": string(input.Type), "stream": ticket.Stream.String()})
			}
			record.TicketID = &ticket.ID
		} else if stream, ok := input.Scope.Stream(); ok {
			if !stream.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown stream").
					WithDetails(map[string]any{"stream": string(stream)})
			}
			ticket, err := repo.FindTicketByOrderAndStream(ctx, order.ID, stream)
			if err != nil {
				return err
			}
			if !ticket.Status.IsTerminalSuccess() {
				return pkgerrors.New(pkgerrors.CodeTooEarly, "issues can only be reported after delivery").
					WithDetails(map[string]any{"ticket_status": ticket.Status.String()})
			}
			if !input.Type.AllowedForStream(stream) {
				return pkgerrors.New(pkgerrors.CodeValidation, "issue type not allowed for stream").
					WithDetails(map[string]any{"type": string(input.Type), "stream": stream.String()})
			}
			record.Stream = &stream
		} else {
			tickets, err := repo.FindTicketsByOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			anyDelivered := false
			for _, ticket := range tickets {
				if ticket.Status.IsTerminalSuccess() {
					anyDelivered = true
					break
				}
			}
			if !anyDelivered {
				return pkgerrors.New(pkgerrors.CodeTooEarly, "issues can only be reported after delivery")
			}
		}

		if err := repo.CreateIssue(ctx, &record); err != nil {
			return err
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"resolution_required": true,
			"updated_at":          s.now().UTC(),
		}); err != nil {
			return err
		}

		issue = &record
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderCode(ctx, order.Code)
	s.logg.Info(ctx, "issue opened: "+input.Type.String()+" ("+input.Scope.String()+")")

	s.metrics.ObserveIssueOpened(input.Type.String())
	s.publishChange(ctx, order)
	return issue, nil
}

func (s *service) RunnerAcknowledge(ctx context.Context, input AcknowledgeInput) (*AckResult, error) {
	if input.Scope.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scope is required")
	}

	var (
		result AckResult
		order  *models.Order
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.FindOrderByCode(ctx, input.OrderCode)
		if err != nil {
			return err
		}
		if order.ClosedAt != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already closed")
		}

		matching, _, err := s.matchScope(ctx, repo, order, input.Scope)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		var openIDs []uuid.UUID
		for _, issue := range matching {
			if issue.Status != enums.IssueStatusOpen {
				continue
			}
			if err := ValidateIssueTransition(issue.Status, enums.IssueStatusRunnerAck); err != nil {
				return err
			}
			openIDs = append(openIDs, issue.ID)
		}

		count, err := repo.UpdateIssues(ctx, openIDs, map[string]any{
			"status":     enums.IssueStatusRunnerAck,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		result.Acknowledged = int(count)

		if len(matching) == 0 {
			record := models.Issue{
				OrderID: order.ID,
				Status:  enums.IssueStatusRunnerAck,
				Type:    enums.IssueTypeOther,
			}
			if ticketID, ok := input.Scope.TicketID(); ok {
				record.TicketID = &ticketID
			}
			if stream, ok := input.Scope.Stream(); ok {
				record.Stream = &stream
			}
			if err := repo.CreateIssue(ctx, &record); err != nil {
				return err
			}
			result.Acknowledged = 1
			result.Created = true
		}

		return repo.UpdateOrder(ctx, order.ID, map[string]any{
			"resolution_required": true,
			"updated_at":          now,
		})
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderCode(ctx, order.Code)
	ctx = s.logg.WithActorRole(ctx, input.Actor.Role)
	s.logg.Info(ctx, "runner acknowledged "+input.Scope.String())

	s.publishChange(ctx, order)
	return &result, nil
}

func (s *service) ResolveIssues(ctx context.Context, input ResolveInput) (*ResolveResult, error) {
	if input.Scope.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scope is required")
	}
	if !input.ResolvedBy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown resolved_by").
			WithDetails(map[string]any{"resolved_by": string(input.ResolvedBy)})
	}

	var (
		result ResolveResult
		order  *models.Order
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		result = ResolveResult{}

		var err error
		order, err = repo.FindOrderByCode(ctx, input.OrderCode)
		if err != nil {
			return err
		}

		matching, _, err := s.matchScope(ctx, repo, order, input.Scope)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		var ids []uuid.UUID
		for _, issue := range matching {
			if err := ValidateIssueTransition(issue.Status, enums.IssueStatusResolved); err != nil {
				return err
			}
			ids = append(ids, issue.ID)
		}

		updates := map[string]any{
			"status":      enums.IssueStatusResolved,
			"resolved_by": input.ResolvedBy,
			"resolved_at": now,
			"updated_at":  now,
		}
		if input.Note != nil {
			updates["admin_note"] = *input.Note
		}
		count, err := repo.UpdateIssues(ctx, ids, updates)
		if err != nil {
			return err
		}
		result.Resolved = int(count)

		remaining, err := repo.CountUnresolvedIssues(ctx, order.ID)
		if err != nil {
			return err
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"resolution_required": remaining > 0,
			"updated_at":          now,
		}); err != nil {
			return err
		}

		if remaining == 0 {
			closed, err := s.evaluateClose(ctx, repo, order, now)
			if err != nil {
				return err
			}
			result.OrderClosed = closed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderCode(ctx, order.Code)
	s.logg.Info(ctx, "issues resolved by "+input.ResolvedBy.String()+" ("+input.Scope.String()+")")

	s.metrics.ObserveIssuesResolved(input.ResolvedBy.String(), result.Resolved)
	if result.OrderClosed {
		s.metrics.ObserveOrderClosed()
	}
	s.publishChange(ctx, order)
	return &result, nil
}

func (s *service) ConfirmDelivery(ctx context.Context, input ConfirmDeliveryInput) (*models.Order, error) {
	var order *models.Order
	closed := false

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.FindOrderByCode(ctx, input.OrderCode)
		if err != nil {
			return err
		}
		if order.ClosedAt != nil {
			return nil
		}

		now := s.now().UTC()
		if order.CustomerConfirmedAt == nil {
			if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
				"customer_confirmed_at": now,
				"updated_at":            now,
			}); err != nil {
				return err
			}
			order.CustomerConfirmedAt = &now
		}

		closed, err = s.evaluateClose(ctx, repo, order, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderCode(ctx, order.Code)
	s.logg.Info(ctx, "customer confirmed delivery")

	if closed {
		s.metrics.ObserveOrderClosed()
	}
	s.publishChange(ctx, order)
	return order, nil
}

// matchScope returns the non-resolved issues the scope covers. A stream
// scope covers stream-tagged issues of that stream plus issues pinned to
// that stream's ticket; an order-wide scope covers everything.
func (s *service) matchScope(ctx context.Context, repo Repository, order *models.Order, scope IssueScope) ([]models.Issue, *uuid.UUID, error) {
	issues, err := repo.FindIssuesByOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	var streamTicketID *uuid.UUID
	if stream, ok := scope.Stream(); ok {
		ticket, err := repo.FindTicketByOrderAndStream(ctx, order.ID, stream)
		if err != nil {
			return nil, nil, err
		}
		streamTicketID = &ticket.ID
	}
	if ticketID, ok := scope.TicketID(); ok {
		ticket, err := repo.FindTicket(ctx, ticketID)
		if err != nil {
			return nil, nil, err
		}
		if ticket.OrderID != order.ID {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket does not belong to order")
		}
	}

	var matching []models.Issue
	for _, issue := range issues {
		if issue.Status.IsResolved() {
			continue
		}
		switch {
		case scope.IsOrderWide():
			matching = append(matching, issue)
		default:
			if ticketID, ok := scope.TicketID(); ok {
				if issue.TicketID != nil && *issue.TicketID == ticketID {
					matching = append(matching, issue)
				}
				continue
			}
			if stream, ok := scope.Stream(); ok {
				if issue.Stream != nil && *issue.Stream == stream {
					matching = append(matching, issue)
					continue
				}
				if streamTicketID != nil && issue.TicketID != nil && *issue.TicketID == *streamTicketID {
					matching = append(matching, issue)
				}
			}
		}
	}
	return matching, streamTicketID, nil
}

// evaluateClose closes the order iff every ticket reached a terminal
// success state, no non-resolved issue remains, and the customer has
// confirmed delivery. Closing an already-closed order is a no-op. On
// close, delivered tickets are promoted to completed.
func (s *service) evaluateClose(ctx context.Context, repo Repository, order *models.Order, now time.Time) (bool, error) {
	if order.ClosedAt != nil {
		return false, nil
	}
	if order.CustomerConfirmedAt == nil {
		return false, nil
	}

	tickets, err := repo.FindTicketsByOrder(ctx, order.ID)
	if err != nil {
		return false, err
	}
	if len(tickets) == 0 {
		return false, nil
	}
	for _, ticket := range tickets {
		if !ticket.Status.IsTerminalSuccess() {
			return false, nil
		}
	}

	unresolved, err := repo.CountUnresolvedIssues(ctx, order.ID)
	if err != nil {
		return false, err
	}
	if unresolved > 0 {
		return false, nil
	}

	if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
		"closed_at":  now,
		"updated_at": now,
	}); err != nil {
		return false, err
	}
	order.ClosedAt = &now

	for _, ticket := range tickets {
		if ticket.Status != enums.TicketStatusDelivered {
			continue
		}
		if _, err := repo.UpdateTicketStatusCAS(ctx, ticket.ID, enums.TicketStatusDelivered, enums.TicketStatusCompleted, map[string]any{"updated_at": now}); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *service) publishChange(ctx context.Context, order *models.Order) {
	if s.notify == nil || order == nil {
		return
	}
	s.notify.OrderChanged(ctx, order.Code, order.TableNumber)
}
