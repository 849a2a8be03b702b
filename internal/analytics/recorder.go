package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	analyticspayloads "github.com/angelmondragon/shipdesk-backend/internal/analytics/payloads"
	"github.com/angelmondragon/shipdesk-backend/internal/analytics/types"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
)

const publishTimeout = 15 * time.Second

// Recorder captures order telemetry without blocking the caller.
type Recorder interface {
	RecordOrderCreated(ctx context.Context, event analyticspayloads.OrderCreatedEvent)
}

// NoopRecorder drops every event; used when analytics publishing is disabled.
type NoopRecorder struct{}

func (NoopRecorder) RecordOrderCreated(context.Context, analyticspayloads.OrderCreatedEvent) {}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type gcpPublisher struct {
	pub *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.pub.Publish(ctx, msg)
}

// PubSubRecorder publishes analytics envelopes to the analytics topic.
type PubSubRecorder struct {
	pub  publisher
	logg *logger.Logger
	now  func() time.Time

	wg sync.WaitGroup
}

// NewPubSubRecorder wraps a Pub/Sub publisher.
func NewPubSubRecorder(pub *gcppubsub.Publisher, logg *logger.Logger) (*PubSubRecorder, error) {
	if pub == nil {
		return nil, errors.New("analytics publisher required")
	}
	return newPubSubRecorder(gcpPublisher{pub: pub}, logg), nil
}

func newPubSubRecorder(pub publisher, logg *logger.Logger) *PubSubRecorder {
	return &PubSubRecorder{pub: pub, logg: logg, now: time.Now}
}

// RecordOrderCreated publishes in the background; failures are only logged.
func (r *PubSubRecorder) RecordOrderCreated(ctx context.Context, event analyticspayloads.OrderCreatedEvent) {
	msg, err := r.buildMessage(event)
	if err != nil {
		r.logError(ctx, "encode analytics event failed", err)
		return
	}
	detached := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		publishCtx, cancel := context.WithTimeout(detached, publishTimeout)
		defer cancel()
		result := r.pub.Publish(publishCtx, msg)
		if result == nil {
			r.logError(detached, "analytics publish returned no result", errors.New("nil publish result"))
			return
		}
		if _, err := result.Get(publishCtx); err != nil {
			r.logError(detached, "analytics publish failed", err)
		}
	}()
}

// Wait blocks until in-flight publishes settle.
func (r *PubSubRecorder) Wait() {
	r.wg.Wait()
}

func (r *PubSubRecorder) buildMessage(event analyticspayloads.OrderCreatedEvent) (*gcppubsub.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	occurred := r.now().UTC()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: occurred,
		Actor:      &outbox.ActorRef{UserID: event.UserID, ClientID: event.ClientID, Role: event.ActorRole},
		Data:       data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}
	return &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			types.AttrEventID:       envelope.EventID,
			types.AttrEventType:     string(enums.AnalyticsEventOrderCreated),
			types.AttrAggregateType: string(enums.AggregateOrder),
			types.AttrAggregateID:   strconv.FormatInt(event.OrderID, 10),
			types.AttrCreatedAt:     occurred.Format(time.RFC3339Nano),
		},
	}, nil
}

func (r *PubSubRecorder) logError(ctx context.Context, msg string, err error) {
	if r.logg != nil {
		r.logg.Error(ctx, msg, err)
	}
}
