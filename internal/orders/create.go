package orders

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	analyticspayloads "github.com/angelmondragon/shipdesk-backend/internal/analytics/payloads"
	"github.com/angelmondragon/shipdesk-backend/internal/courier"
	"github.com/angelmondragon/shipdesk-backend/internal/webhooks"
	delhivery "github.com/angelmondragon/shipdesk-backend/pkg/courier"
	"github.com/angelmondragon/shipdesk-backend/pkg/db"
	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
	"github.com/angelmondragon/shipdesk-backend/pkg/metrics"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shipdesk-backend/pkg/types"
	"github.com/angelmondragon/shipdesk-backend/pkg/validation"
	"github.com/angelmondragon/shipdesk-backend/pkg/visibility"
)

const referenceAttempts = 3

// Create validates the draft, books the courier when required, persists the
// order and charges the tenant. Only validation, the credit gate, booking and
// persistence can fail the call; debit, analytics and webhooks are best-effort.
func (s *Service) Create(ctx context.Context, actor visibility.Actor, in CreateOrderInput) (*CreateResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	scope, err := visibility.ForActor(actor)
	if err != nil {
		return nil, err
	}
	ctx = s.withActor(ctx, scope)

	if err := s.checkCourier(ctx, in.CourierService); err != nil {
		return nil, err
	}
	if err := s.checkCredits(ctx, scope.ClientID); err != nil {
		return nil, err
	}

	client, err := s.tenants.Settings(ctx, scope.ClientID)
	if err != nil {
		return nil, dependency(err, "load client settings")
	}

	draft := s.buildDraft(ctx, scope, in)
	userReference := IsUserSupplied(in.ReferenceNumber)
	draft.ReferenceNumber = s.reference(client, draft.Mobile, in.ReferenceNumber)
	if userReference {
		taken, err := s.repo.ReferenceExists(ctx, scope.ClientID, draft.ReferenceNumber)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, referenceConflict(draft.ReferenceNumber)
		}
	}

	booking, err := s.book(ctx, &draft, in)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, &draft, client, in.ReferenceNumber, userReference); err != nil {
		if booking != nil {
			s.cancelOrphanBooking(ctx, draft, booking)
		}
		return nil, err
	}
	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, draft.ID)
	}

	s.debit(ctx, draft)
	s.recordAnalytics(ctx, scope, draft)

	stored, err := s.repo.FindByID(ctx, scope.ClientID, draft.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload created order")
	}

	if s.webhooks != nil {
		s.webhooks.Dispatch(ctx, scope.ClientID, webhooks.EventOrderCreated, OrderCreatedPayload{
			Event:  webhooks.EventOrderCreated,
			Order:  DetailFromModel(*stored),
			Client: webhookClientFromModel(client),
		})
	}

	return &CreateResult{
		Success: true,
		Order: CreatedOrder{
			ID:              stored.ID,
			OrderNumber:     stored.OrderNumber(),
			ReferenceNumber: stored.ReferenceNumber,
			TrackingID:      stored.TrackingID,
			CourierStatus:   stored.TrackingStatus,
		},
	}, nil
}

// checkCourier rejects courier names missing from the catalogue or switched
// off. An empty catalogue accepts any name.
func (s *Service) checkCourier(ctx context.Context, name string) error {
	services, err := s.tenants.CourierServices(ctx)
	if err != nil {
		return dependency(err, "load courier services")
	}
	if len(services) == 0 {
		return nil
	}
	name = strings.TrimSpace(name)
	for _, svc := range services {
		if strings.EqualFold(svc.Name, name) || strings.EqualFold(svc.Code, name) {
			if !svc.Active {
				return fieldError(pkgerrors.ReasonInvalidField, "courierService", "courier service "+svc.Name+" is not active")
			}
			return nil
		}
	}
	return fieldError(pkgerrors.ReasonInvalidField, "courierService", "unknown courier service")
}

func (s *Service) checkCredits(ctx context.Context, clientID int64) error {
	cost, err := s.credits.OrderCreditCost(ctx, clientID)
	if err != nil {
		return dependency(err, "resolve order credit cost")
	}
	ok, err := s.credits.HasSufficientCredits(ctx, clientID, cost)
	if err != nil {
		return dependency(err, "check credit balance")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInsufficientCredits, "insufficient credits to create order").
			WithDetails(map[string]any{
				"reason":   pkgerrors.ReasonInsufficientCredits,
				"required": cost,
			})
	}
	return nil
}

func (s *Service) buildDraft(ctx context.Context, scope visibility.Scope, in CreateOrderInput) models.Order {
	draft := models.Order{
		ClientID:       scope.ClientID,
		Name:           strings.TrimSpace(in.Name),
		Mobile:         validation.NormalizeMobile(in.Mobile),
		Address:        strings.TrimSpace(in.Address),
		City:           strings.TrimSpace(in.City),
		State:          strings.TrimSpace(in.State),
		Country:        strings.TrimSpace(in.Country),
		Pincode:        strings.TrimSpace(in.Pincode),
		CourierService: strings.TrimSpace(in.CourierService),
		PickupLocation: strings.TrimSpace(in.PickupLocation),
		Weight:         *in.Weight,
		PackageValue:   *in.PackageValue,
		TotalItems:     *in.TotalItems,
		IsCOD:          in.IsCOD,
		ResellerName:   trimmedOrNil(in.ResellerName),
		TrackingStatus: enums.TrackingStatusPending,
		CreatedBy:      scope.ActorID,
		Products:       types.ProductLines(in.Products),
	}
	if in.IsCOD && in.CODAmount != nil {
		draft.CODAmount = decimal.NewNullDecimal(*in.CODAmount)
	}
	if in.ResellerMobile != nil {
		if mobile := validation.NormalizeMobile(*in.ResellerMobile); mobile != "" {
			draft.ResellerMobile = &mobile
		}
	}
	if group := s.subGroup(ctx, scope); group != "" {
		draft.SubGroup = &group
	}
	return draft
}

// subGroup attributes child-user orders to the actor's sub-group. Lookup
// failures leave the order unattributed.
func (s *Service) subGroup(ctx context.Context, scope visibility.Scope) string {
	if scope.Role != enums.UserRoleChildUser {
		return ""
	}
	if s.users == nil {
		return scope.SubGroup
	}
	group, err := s.users.SubGroup(ctx, scope.ActorID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "sub-group lookup failed, order left unattributed")
		}
		return ""
	}
	return group
}

func (s *Service) reference(client *models.Client, mobile, userSupplied string) string {
	return s.references.Generate(mobile, userSupplied, client.ReferencePrefixEnabled, client.ReferencePrefix)
}

// book calls the courier gateway for gateway-managed couriers. A failed booking
// aborts creation before anything is stored.
func (s *Service) book(ctx context.Context, draft *models.Order, in CreateOrderInput) (*courier.Booking, error) {
	manualTracking := strings.TrimSpace(in.TrackingID)
	gateway := courier.IsGatewayCourier(draft.CourierService)
	if gateway && manualTracking != "" {
		return nil, fieldError(pkgerrors.ReasonInvalidField, "trackingId", "trackingId is assigned by the courier for "+courier.GatewayName+" orders")
	}
	if !gateway || in.SkipTracking {
		s.metrics.CourierBooking(metrics.OutcomeSkipped)
		if manualTracking != "" {
			draft.TrackingID = &manualTracking
			draft.TrackingStatus = enums.TrackingStatusManual
		}
		return nil, nil
	}

	attempted := s.now().UTC()
	booking, err := s.gateway.CreateOrder(ctx, *draft)
	if err != nil {
		s.metrics.CourierBooking(metrics.OutcomeFailure)
		if s.logg != nil {
			s.logg.Error(ctx, "courier booking failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeCourierBooking, err, "courier booking failed").
			WithDetails(map[string]any{
				"reason":   pkgerrors.ReasonCourierBooking,
				"upstream": delhivery.UpstreamDetail(err),
			})
	}
	s.metrics.CourierBooking(metrics.OutcomeSuccess)

	waybill := booking.Waybill
	draft.TrackingID = &waybill
	draft.DelhiveryWaybillNumber = &waybill
	draft.DelhiveryOrderID = stringOrNil(booking.OrderID)
	draft.DelhiveryAPIStatus = stringOrNil(booking.Status)
	draft.TrackingStatus = enums.TrackingStatusManifested
	draft.LastCourierAttempt = &attempted
	return booking, nil
}

// persist inserts the draft, regenerating auto references on a unique
// collision. A collision on a caller-supplied reference is a conflict.
func (s *Service) persist(ctx context.Context, draft *models.Order, client *models.Client, userSupplied string, userReference bool) error {
	for attempt := 1; ; attempt++ {
		err := s.repo.Create(ctx, draft)
		if err == nil {
			return nil
		}
		draft.ID = 0
		if !db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
		}
		if userReference {
			return referenceConflict(draft.ReferenceNumber)
		}
		if attempt >= referenceAttempts {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate a unique reference number")
		}
		draft.ReferenceNumber = s.reference(client, draft.Mobile, userSupplied)
	}
}

func referenceConflict(reference string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "reference number already used").
		WithDetails(map[string]any{"referenceNumber": reference})
}

// cancelOrphanBooking releases a shipment whose order could not be stored.
func (s *Service) cancelOrphanBooking(ctx context.Context, draft models.Order, booking *courier.Booking) {
	_, err := s.gateway.CancelOrder(ctx, booking.Waybill, draft.PickupLocation, draft.ClientID)
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "waybill", booking.Waybill), "cancel orphaned booking", err)
	}
}

// debit charges the tenant after the order exists. Failures are queued for
// reconciliation and never undo the order.
func (s *Service) debit(ctx context.Context, order models.Order) {
	err := s.credits.DeductOrderCredits(ctx, order.ClientID, order.CreatedBy, order.ID)
	if err == nil {
		s.metrics.CreditDebit(metrics.OutcomeSuccess)
		return
	}
	s.metrics.CreditDebit(metrics.OutcomeOwed)
	if s.logg != nil {
		s.logg.Error(ctx, "credit debit failed after order creation", err)
	}
	cost, costErr := s.credits.OrderCreditCost(ctx, order.ClientID)
	if costErr != nil {
		cost = 0
	}
	owed := outbox.CreditDebitOwed{
		ClientID: order.ClientID,
		UserID:   order.CreatedBy,
		OrderID:  order.ID,
		Amount:   cost,
		Reason:   err.Error(),
	}
	if recErr := s.credits.RecordDebitOwed(ctx, owed); recErr != nil && s.logg != nil {
		s.logg.Error(ctx, "record owed credit debit", recErr)
	}
}

func (s *Service) recordAnalytics(ctx context.Context, scope visibility.Scope, order models.Order) {
	if s.analytics == nil {
		return
	}
	pattern := enums.OrderPatternSingle
	if len(order.Products) > 0 {
		pattern = enums.OrderPatternCatalog
	}
	s.analytics.RecordOrderCreated(ctx, analyticspayloads.OrderCreatedEvent{
		OrderID:         order.ID,
		ClientID:        order.ClientID,
		UserID:          scope.ActorID,
		ActorRole:       string(scope.Role),
		Pattern:         pattern,
		ReferenceNumber: order.ReferenceNumber,
		CourierService:  order.CourierService,
		TrackingID:      order.Tracking(),
		TotalItems:      order.TotalItems,
		PackageValue:    order.PackageValue.StringFixed(2),
		IsCOD:           order.IsCOD,
	})
}

func (s *Service) withActor(ctx context.Context, scope visibility.Scope) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithClientID(ctx, scope.ClientID)
	return s.logg.WithActorRole(ctx, string(scope.Role))
}

func dependency(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	return stringOrNil(*v)
}

func stringOrNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
