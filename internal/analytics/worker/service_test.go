package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/shipdesk-backend/internal/analytics/router"
	"github.com/angelmondragon/shipdesk-backend/internal/analytics/types"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
	"github.com/google/uuid"
)

func TestBuildEnvelopeCarriesActor(t *testing.T) {
	svc := newTestService(t)
	payload := outbox.PayloadEnvelope{
		EventID: "evt-actor",
		Actor:   &outbox.ActorRef{UserID: 4, ClientID: 2, Role: "client_user"},
		Data:    json.RawMessage(`{"orderId":1}`),
	}
	msg := buildMessage(payload, map[string]string{
		"event_type":     "order_deleted",
		"aggregate_type": "order",
		"aggregate_id":   "1",
		"created_at":     "2026-03-01T10:00:00Z",
	})

	env, err := svc.buildEnvelope(msg)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if env.Actor == nil || env.Actor.UserID != 4 {
		t.Fatalf("expected actor to be carried, got %+v", env.Actor)
	}
	if !env.OccurredAt.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected created_at fallback, got %v", env.OccurredAt)
	}
}

func TestBuildEnvelopeRejectsUnknownEventType(t *testing.T) {
	svc := newTestService(t)
	msg := buildMessage(outbox.PayloadEnvelope{EventID: "evt"}, map[string]string{
		"event_type":     "order_paid",
		"aggregate_type": "order",
		"aggregate_id":   "1",
	})
	if _, err := svc.buildEnvelope(msg); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestBuildEnvelope(t *testing.T) {
	svc := newTestService(t)
	payload := outbox.PayloadEnvelope{
		EventID:    "evt-1",
		OccurredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Data:       json.RawMessage(`{"order_id":"ord-1"}`),
	}
	msg := buildMessage(payload, map[string]string{
		"event_type":     "order_created",
		"aggregate_type": "order",
		"aggregate_id":   "ord-1",
	})

	env, err := svc.buildEnvelope(msg)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if env.EventType != enums.AnalyticsEventOrderCreated {
		t.Fatalf("unexpected event type %v", env.EventType)
	}
	if env.AggregateType != enums.AggregateOrder {
		t.Fatalf("unexpected aggregate type %v", env.AggregateType)
	}
	if env.AggregateID != "ord-1" {
		t.Fatalf("unexpected aggregate id %s", env.AggregateID)
	}
	if env.EventID != "evt-1" {
		t.Fatalf("unexpected event id %s", env.EventID)
	}
	if env.OccurredAt != payload.OccurredAt {
		t.Fatalf("unexpected occurred at %v", env.OccurredAt)
	}
}

func TestProcessAlreadyProcessed(t *testing.T) {
	manager := &stubManager{checkResult: true}
	handler := &stubHandler{}
	svc := newTestServiceWithDeps(t, handler, manager)

	msg := buildAnalyticsMessage(t)
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatalf("expected ack, got nack")
	}
	if handler.called {
		t.Fatal("handler should not be invoked when already processed")
	}
	if len(manager.checked) != 1 {
		t.Fatalf("expected check once, got %d", len(manager.checked))
	}
}

func TestProcessHandlerErrorRetries(t *testing.T) {
	manager := &stubManager{}
	handler := &stubHandler{err: errors.New("boom")}
	svc := newTestServiceWithDeps(t, handler, manager)

	msg := buildAnalyticsMessage(t)
	res := svc.process(context.Background(), msg)
	if !res.nack {
		t.Fatalf("expected nack on handler error")
	}
	if !handler.called {
		t.Fatal("handler should be invoked")
	}
	if len(manager.released) != 1 {
		t.Fatalf("expected idempotency release on failure")
	}
}

func TestProcessInvalidEnvelope(t *testing.T) {
	manager := &stubManager{}
	handler := &stubHandler{}
	svc := newTestServiceWithDeps(t, handler, manager)

	msg := &gcppubsub.Message{Data: []byte("invalid json")}
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatalf("invalid envelope should ack")
	}
	if handler.called {
		t.Fatal("handler should not be invoked")
	}
	if len(manager.checked) != 0 {
		t.Fatalf("idempotency manager should not be touched")
	}
}

func TestProcessUnsupportedEvent(t *testing.T) {
	manager := &stubManager{}
	handler := &stubHandler{err: router.ErrUnsupportedEventType}
	svc := newTestServiceWithDeps(t, handler, manager)

	msg := buildAnalyticsMessage(t)
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatalf("unsupported event should ack")
	}
	if len(manager.released) != 0 {
		t.Fatalf("idempotency release should not run")
	}
}

func buildAnalyticsMessage(t *testing.T) *gcppubsub.Message {
	payload := outbox.PayloadEnvelope{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"foo":"bar"}`),
	}
	return buildMessage(payload, map[string]string{
		"event_type":     "order_created",
		"aggregate_type": "order",
		"aggregate_id":   "abc-123",
	})
}

func buildMessage(payload outbox.PayloadEnvelope, attrs map[string]string) *gcppubsub.Message {
	data, _ := json.Marshal(payload)
	return &gcppubsub.Message{
		ID:         "msg-1",
		Data:       data,
		Attributes: attrs,
	}
}

func newTestService(t *testing.T) *Service {
	return newTestServiceWithDeps(t, &stubHandler{}, &stubManager{})
}

func newTestServiceWithDeps(t *testing.T, handler Handler, manager *stubManager) *Service {
	t.Helper()
	return &Service{
		handler: handler,
		manager: manager,
		logg:    logger.New(logger.Options{ServiceName: "analytics-test", Output: io.Discard}),
	}
}

type stubHandler struct {
	called   bool
	envelope types.Envelope
	err      error
}

func (h *stubHandler) Handle(ctx context.Context, envelope types.Envelope) error {
	h.called = true
	h.envelope = envelope
	return h.err
}

type stubManager struct {
	checkResult bool
	checkErr    error
	releaseErr  error
	checked     []string
	released    []string
}

func (s *stubManager) CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	s.checked = append(s.checked, eventID)
	return s.checkResult, s.checkErr
}

func (s *stubManager) Release(ctx context.Context, consumer, eventID string) error {
	s.released = append(s.released, eventID)
	return s.releaseErr
}

func TestProcessIdempotencyErrorNacks(t *testing.T) {
	manager := &stubManager{checkErr: errors.New("redis down")}
	handler := &stubHandler{}
	svc := newTestServiceWithDeps(t, handler, manager)

	res := svc.process(context.Background(), buildAnalyticsMessage(t))
	if !res.nack {
		t.Fatal("expected nack when idempotency store fails")
	}
	if handler.called {
		t.Fatal("handler should not run without an idempotency decision")
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(nil, &stubHandler{}, &stubManager{}, logger.New(logger.Options{Output: io.Discard})); err == nil {
		t.Fatal("expected error without subscription")
	}
}
