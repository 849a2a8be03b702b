package router

import (
	"context"
	"fmt"
	"strconv"

	analyticspayloads "github.com/angelmondragon/shipdesk-backend/internal/analytics/payloads"
	"github.com/angelmondragon/shipdesk-backend/internal/analytics/types"
	analyticswriter "github.com/angelmondragon/shipdesk-backend/internal/analytics/writer"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
)

type orderCreatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderCreatedHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderCreatedHandler{writer: writer, logg: logg}
}

func (h *orderCreatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*analyticspayloads.OrderCreatedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for order_created")
	}

	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
		"client_id":  event.ClientID,
		"pattern":    event.Pattern,
	})

	row, err := buildOrderCreatedRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build order event row", err)
		return err
	}
	if err := h.writer.InsertOrderEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert order event row", err)
		return err
	}

	h.logg.Info(logCtx, "order_created handler inserted order event row")
	return nil
}

func buildOrderCreatedRow(envelope types.Envelope, event *analyticspayloads.OrderCreatedEvent) (types.OrderEventRow, error) {
	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return types.OrderEventRow{}, fmt.Errorf("encode payload json: %w", err)
	}
	return types.OrderEventRow{
		EventID:        envelope.EventID,
		EventType:      string(envelope.EventType),
		OccurredAt:     envelope.OccurredAt,
		OrderID:        strconv.FormatInt(event.OrderID, 10),
		ClientID:       event.ClientID,
		ActorUserID:    int64Ptr(event.UserID),
		ActorRole:      stringPtr(event.ActorRole),
		Pattern:        stringPtr(string(event.Pattern)),
		CourierService: stringPtr(event.CourierService),
		TrackingID:     stringPtr(event.TrackingID),
		Payload:        payloadJSON,
	}, nil
}
