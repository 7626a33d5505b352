package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/EnuliForge/kwikorder/api/responses"
	"github.com/EnuliForge/kwikorder/api/validators"
	"github.com/EnuliForge/kwikorder/internal/lifecycle"
	"github.com/EnuliForge/kwikorder/internal/notify"
	"github.com/EnuliForge/kwikorder/internal/placement"
	"github.com/EnuliForge/kwikorder/internal/views"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
)

type placeOrderItemRequest struct {
	Stream         string  `json:"stream" validate:"required,oneof=food drinks"`
	Name           string  `json:"name" validate:"required,max=200"`
	Qty            int     `json:"qty" validate:"required,min=1"`
	UnitPriceCents int     `json:"unit_price_cents" validate:"min=0"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type placeOrderRequest struct {
	TableNumber int                     `json:"table_number" validate:"required,min=1"`
	Items       []placeOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PlaceOrder creates a new order with one ticket per ordered stream.
func PlaceOrder(svc placement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req placeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := lifecycle.PlaceOrderInput{TableNumber: req.TableNumber}
		for _, item := range req.Items {
			input.Items = append(input.Items, lifecycle.PlaceOrderItem{
				Stream:         enums.Stream(item.Stream),
				Name:           item.Name,
				Qty:            item.Qty,
				UnitPriceCents: item.UnitPriceCents,
				Notes:          item.Notes,
			})
		}

		order, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderDetail returns the customer-facing projection of one order.
func OrderDetail(svc views.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.OrderDetail(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type createIssueRequest struct {
	scopePayload
	Type        string  `json:"type" validate:"required"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// CreateIssue records a customer-reported problem against a delivered
// ticket, a stream, or the whole order.
func CreateIssue(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createIssueRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope, err := parseScope(req.scopePayload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		issueType, err := enums.ParseIssueType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown issue type").
				WithDetails(map[string]any{"type": req.Type}))
			return
		}

		issue, err := svc.CreateIssue(r.Context(), lifecycle.CreateIssueInput{
			OrderCode:   chi.URLParam(r, "code"),
			Scope:       scope,
			Type:        issueType,
			Description: req.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, issue)
	}
}

// ConfirmDelivery records the customer's explicit delivery confirmation
// and closes the order when the other closing conditions already hold.
func ConfirmDelivery(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.ConfirmDelivery(r.Context(), lifecycle.ConfirmDeliveryInput{
			OrderCode: chi.URLParam(r, "code"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type confirmFixRequest struct {
	scopePayload
}

// ConfirmFix resolves acknowledged issues on the customer's behalf.
func ConfirmFix(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmFixRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope, err := parseScope(req.scopePayload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResolveIssues(r.Context(), lifecycle.ResolveInput{
			OrderCode:  chi.URLParam(r, "code"),
			Scope:      scope,
			ResolvedBy: enums.ResolvedByCustomer,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// OrderChanged answers whether the order changed since the supplied
// timestamp, for clients that poll instead of subscribing.
func OrderChanged(tracker *notify.Tracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, err := validators.ParseQueryTime(r, "since")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if since.IsZero() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "since query parameter is required"))
			return
		}

		changed, err := tracker.OrderChangedSince(r.Context(), chi.URLParam(r, "code"), since)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading change marker"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"changed":    changed,
			"checked_at": time.Now().UTC(),
		})
	}
}
