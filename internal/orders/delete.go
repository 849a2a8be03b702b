package orders

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipdesk-backend/internal/courier"
	"github.com/angelmondragon/shipdesk-backend/internal/inventory"
	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
	"github.com/angelmondragon/shipdesk-backend/pkg/metrics"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shipdesk-backend/pkg/visibility"
)

const compensationConcurrency = 4

// Delete removes every requested order visible to the actor, or none of them.
// Courier cancellation and inventory restoration are attempted per order and
// reported, but never block the delete.
func (s *Service) Delete(ctx context.Context, actor visibility.Actor, ids []int64) (*DeleteResult, error) {
	ids, err := normalizeIDs(ids)
	if err != nil {
		return nil, err
	}
	scope, err := visibility.ForActor(actor)
	if err != nil {
		return nil, err
	}
	ctx = s.withActor(ctx, scope)

	rows, err := s.repo.FindByIDsScoped(ctx, scope, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(ids) {
		return nil, s.missingOrders(ctx, scope, ids, rows)
	}

	cancellations, restorations := s.compensate(ctx, rows)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).DeleteByIDs(ctx, scope.ClientID, ids)
		if err != nil {
			return err
		}
		if affected != int64(len(rows)) {
			return pkgerrors.New(pkgerrors.CodeInternal, "order delete affected an unexpected number of rows").
				WithDetails(map[string]any{"expected": len(rows), "affected": affected})
		}
		actorRef := &outbox.ActorRef{UserID: scope.ActorID, ClientID: scope.ClientID, Role: string(scope.Role)}
		for _, row := range rows {
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderDeleted,
				AggregateType: enums.AggregateOrder,
				AggregateID:   strconv.FormatInt(row.ID, 10),
				Actor:         actorRef,
				Data: outbox.OrderDeleted{
					OrderID:         row.ID,
					ClientID:        row.ClientID,
					ReferenceNumber: row.ReferenceNumber,
					TrackingID:      row.Tracking(),
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete orders")
	}

	deleted := make([]DeletedOrder, 0, len(rows))
	for _, row := range rows {
		deleted = append(deleted, DeletedOrder{ID: row.ID, Name: row.Name, Mobile: row.Mobile, TrackingID: row.TrackingID})
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i].ID < deleted[j].ID })

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "deleted_count", len(deleted)), "orders deleted")
	}
	return &DeleteResult{
		Success:               true,
		DeletedCount:          len(deleted),
		DeletedOrders:         deleted,
		CourierCancellations:  cancellations,
		InventoryRestorations: restorations,
	}, nil
}

// missingOrders decides between FORBIDDEN and NOT_FOUND when the scoped fetch
// came back short. Only restricted actors can see FORBIDDEN, and only for ids
// that exist inside their own tenant.
func (s *Service) missingOrders(ctx context.Context, scope visibility.Scope, ids []int64, rows []models.Order) error {
	found := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		found[row.ID] = struct{}{}
	}
	missing := make([]int64, 0, len(ids)-len(rows))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if scope.Restricted {
		count, err := s.repo.CountInTenant(ctx, scope.ClientID, missing)
		if err != nil {
			return err
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeForbidden, "one or more orders are not permitted")
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "one or more orders were not found").
		WithDetails(map[string]any{"orderIds": missing})
}

// compensate fans the per-order courier and inventory calls out with bounded
// concurrency and waits for every attempt.
func (s *Service) compensate(ctx context.Context, rows []models.Order) ([]CourierCancellation, []inventory.Outcome) {
	cancels := make([]*CourierCancellation, len(rows))
	restores := make([]*inventory.Outcome, len(rows))
	errs := make([]error, len(rows))

	var g errgroup.Group
	g.SetLimit(compensationConcurrency)
	for i, row := range rows {
		g.Go(func() error {
			var cancelErr, restoreErr error
			cancels[i], cancelErr = s.cancelGuarded(ctx, row)
			restores[i], restoreErr = s.restoreGuarded(ctx, row)
			errs[i] = multierr.Append(cancelErr, restoreErr)
			return nil
		})
	}
	_ = g.Wait()

	cancellations := make([]CourierCancellation, 0, len(rows))
	restorations := make([]inventory.Outcome, 0, len(rows))
	for i := range rows {
		if cancels[i] != nil {
			cancellations = append(cancellations, *cancels[i])
		}
		if restores[i] != nil {
			restorations = append(restorations, *restores[i])
		}
	}
	sort.Slice(cancellations, func(i, j int) bool { return cancellations[i].OrderID < cancellations[j].OrderID })
	sort.Slice(restorations, func(i, j int) bool { return restorations[i].OrderID < restorations[j].OrderID })

	if combined := multierr.Combine(errs...); combined != nil && s.logg != nil {
		ctx = s.logg.WithField(ctx, "failed_compensations", len(multierr.Errors(combined)))
		s.logg.Warn(s.logg.WithField(ctx, "error", combined.Error()), "order deletion compensations incomplete")
	}
	return cancellations, restorations
}

// A panicking gateway or catalog client is recorded as a failed outcome; it
// runs on a worker goroutine where no request recoverer can catch it.
func (s *Service) cancelGuarded(ctx context.Context, order models.Order) (outcome *CourierCancellation, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.Compensation(metrics.CompensationCourierCancel, metrics.OutcomeFailure)
			outcome = &CourierCancellation{OrderID: order.ID, Waybill: order.Tracking(), Message: fmt.Sprintf("panic: %v", r)}
			err = fmt.Errorf("cancel order %d: panic: %v", order.ID, r)
		}
	}()
	return s.cancelShipment(ctx, order)
}

func (s *Service) restoreGuarded(ctx context.Context, order models.Order) (outcome *inventory.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.Compensation(metrics.CompensationInventoryRestore, metrics.OutcomeFailure)
			outcome = &inventory.Outcome{OrderID: order.ID, Error: fmt.Sprintf("panic: %v", r)}
			err = fmt.Errorf("restore order %d: panic: %v", order.ID, r)
		}
	}()
	return s.restoreInventory(ctx, order)
}

func (s *Service) cancelShipment(ctx context.Context, order models.Order) (*CourierCancellation, error) {
	waybill := order.Tracking()
	if !courier.IsGatewayCourier(order.CourierService) || waybill == "" {
		return nil, nil
	}
	outcome := &CourierCancellation{OrderID: order.ID, Waybill: waybill}
	result, err := s.gateway.CancelOrder(ctx, waybill, order.PickupLocation, order.ClientID)
	if err != nil {
		s.metrics.Compensation(metrics.CompensationCourierCancel, metrics.OutcomeFailure)
		outcome.Message = err.Error()
		return outcome, fmt.Errorf("cancel order %d: %w", order.ID, err)
	}
	s.metrics.Compensation(metrics.CompensationCourierCancel, metrics.OutcomeSuccess)
	outcome.Success = true
	if result != nil {
		outcome.Message = result.Message
	}
	return outcome, nil
}

func (s *Service) restoreInventory(ctx context.Context, order models.Order) (*inventory.Outcome, error) {
	if len(order.Products) == 0 {
		return nil, nil
	}
	outcome := s.inventory.Restore(ctx, order)
	if !outcome.Success {
		s.metrics.Compensation(metrics.CompensationInventoryRestore, metrics.OutcomeFailure)
		return &outcome, fmt.Errorf("restore order %d: %s", order.ID, outcome.Error)
	}
	s.metrics.Compensation(metrics.CompensationInventoryRestore, metrics.OutcomeSuccess)
	return &outcome, nil
}
