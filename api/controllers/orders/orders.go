package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shipdesk-backend/api/middleware"
	"github.com/angelmondragon/shipdesk-backend/api/responses"
	"github.com/angelmondragon/shipdesk-backend/api/validators"
	internalorders "github.com/angelmondragon/shipdesk-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/pagination"
	"github.com/angelmondragon/shipdesk-backend/pkg/visibility"
)

// Service is the order orchestration surface the HTTP layer drives.
type Service interface {
	Create(ctx context.Context, actor visibility.Actor, in internalorders.CreateOrderInput) (*internalorders.CreateResult, error)
	Delete(ctx context.Context, actor visibility.Actor, ids []int64) (*internalorders.DeleteResult, error)
	List(ctx context.Context, actor visibility.Actor, params pagination.Params) (*internalorders.OrderList, error)
	Detail(ctx context.Context, actor visibility.Actor, orderID int64) (*internalorders.OrderDetail, error)
}

const maxCursorLength = 128

type bulkDeleteRequest struct {
	OrderIDs []json.RawMessage `json:"orderIds" validate:"required"`
}

// Create books and persists a new order for the caller's tenant.
func Create(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOrError(w, r, svc, logg)
		if !ok {
			return
		}

		var input internalorders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// BulkDelete removes every listed order visible to the caller, or none.
func BulkDelete(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOrError(w, r, svc, logg)
		if !ok {
			return
		}

		var req bulkDeleteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ids, err := internalorders.ParseOrderIDs(req.OrderIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Delete(r.Context(), actor, ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// List returns a cursor page of orders visible to the caller.
func List(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOrError(w, r, svc, logg)
		if !ok {
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: validators.SanitizeString(r.URL.Query().Get("cursor"), maxCursorLength),
		}

		list, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns a single order when it is inside the caller's scope.
func Detail(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOrError(w, r, svc, logg)
		if !ok {
			return
		}

		rawOrderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if rawOrderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}
		orderID, err := strconv.ParseInt(rawOrderID, 10, 64)
		if err != nil || orderID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id").
				WithDetails(map[string]any{"field": "orderId"}))
			return
		}

		detail, err := svc.Detail(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func actorOrError(w http.ResponseWriter, r *http.Request, svc Service, logg *logger.Logger) (visibility.Actor, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
		return visibility.Actor{}, false
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
		return visibility.Actor{}, false
	}
	return actor, true
}
