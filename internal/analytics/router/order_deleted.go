package router

import (
	"context"
	"fmt"
	"strconv"

	"github.com/angelmondragon/shipdesk-backend/internal/analytics/types"
	analyticswriter "github.com/angelmondragon/shipdesk-backend/internal/analytics/writer"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
)

type orderDeletedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderDeletedHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderDeletedHandler{writer: writer, logg: logg}
}

func (h *orderDeletedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outbox.OrderDeleted)
	if !ok {
		return fmt.Errorf("invalid payload for order_deleted")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
		"client_id":  event.ClientID,
	})

	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return fmt.Errorf("encode payload json: %w", err)
	}
	row := types.OrderEventRow{
		EventID:    envelope.EventID,
		EventType:  string(envelope.EventType),
		OccurredAt: envelope.OccurredAt,
		OrderID:    strconv.FormatInt(event.OrderID, 10),
		ClientID:   event.ClientID,
		TrackingID: stringPtr(event.TrackingID),
		Payload:    payloadJSON,
	}
	if envelope.Actor != nil {
		row.ActorUserID = int64Ptr(envelope.Actor.UserID)
		row.ActorRole = stringPtr(envelope.Actor.Role)
	}

	if err := h.writer.InsertOrderEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert order event row", err)
		return err
	}
	h.logg.Info(logCtx, "order_deleted handler inserted order event row")
	return nil
}
