package broker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Ranker/internal/hermes"
	"github.com/MikeSquared-Agency/Ranker/internal/metrics"
	"github.com/MikeSquared-Agency/Ranker/internal/ranking"
)

// Transport names used in metrics labels and events.
const (
	TransportHTTP = "http"
	TransportNATS = "nats"
)

const shuttingDown = "ranker shutting down"

// Broker runs payloads from any transport through validation and ranking,
// and reports each outcome to metrics and hermes.
type Broker struct {
	ranker  *ranking.Ranker
	hermes  hermes.Client
	metrics *metrics.Metrics
	subject string
	logger  *slog.Logger

	stopped atomic.Bool
}

// New creates a Broker. h and m may be nil; subject is the NATS request
// subject served by Start.
func New(r *ranking.Ranker, h hermes.Client, m *metrics.Metrics, subject string, logger *slog.Logger) *Broker {
	if subject == "" {
		subject = hermes.SubjectRankRequest
	}
	return &Broker{
		ranker:  r,
		hermes:  h,
		metrics: m,
		subject: subject,
		logger:  logger,
	}
}

// Start subscribes to the request subject. Without a hermes client it does
// nothing.
func (b *Broker) Start(ctx context.Context) error {
	if b.hermes == nil {
		return nil
	}
	if err := b.hermes.Reply(b.subject, b.handleRequest); err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "serving rank requests", "subject", b.subject)
	return nil
}

// Stop makes the NATS transport answer every further request with an error.
// HTTP is stopped by its server.
func (b *Broker) Stop() {
	b.stopped.Store(true)
}

// Rank decodes, validates and ranks payload. A nil payload means the
// transport received no data at all, which is reported as such; an empty but
// present payload is invalid JSON. requestID is the transport's correlation
// id and is only carried in event payloads; event subjects use a fresh UUID.
// Failures are always *ranking.ValidationError.
func (b *Broker) Rank(ctx context.Context, transport, requestID string, payload []byte) ([]ranking.Record, error) {
	start := time.Now()
	o := outcome{id: uuid.NewString(), requestID: requestID, transport: transport}

	req, err := parse(payload)
	if err != nil {
		b.reportRejected(ctx, o, err, time.Since(start))
		return nil, err
	}

	out := b.ranker.RankRequest(req)
	b.reportRanked(ctx, o, req, time.Since(start))
	return out, nil
}

// outcome identifies one ranking attempt in logs and events.
type outcome struct {
	id        string
	requestID string
	transport string
}

func parse(payload []byte) (*ranking.Request, error) {
	if payload == nil {
		return nil, ranking.ErrNoData()
	}
	raw, err := ranking.Decode(payload)
	if err != nil {
		return nil, err
	}
	return ranking.Validate(raw)
}

func (b *Broker) handleRequest(_ string, data []byte) interface{} {
	if b.stopped.Load() {
		return ErrorBody(shuttingDown)
	}
	if len(data) == 0 {
		data = nil
	}
	out, err := b.Rank(context.Background(), TransportNATS, "", data)
	if err != nil {
		return ErrorBody(Message(err))
	}
	return out
}

// ErrorBody is the wire shape of every failure.
func ErrorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// Message returns the caller-facing text of err.
func Message(err error) string {
	var ve *ranking.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return "internal error"
}

func (b *Broker) reportRanked(ctx context.Context, o outcome, req *ranking.Request, d time.Duration) {
	b.metrics.ObserveRanked(o.transport, len(req.Records), d)
	b.logger.DebugContext(ctx, "rank request completed",
		"id", o.id,
		"request_id", o.requestID,
		"transport", o.transport,
		"records", len(req.Records),
	)
	b.publish(hermes.SubjectRankCompleted(o.id), hermes.RankCompletedEvent{
		ID:          o.id,
		RequestID:   o.requestID,
		Transport:   o.transport,
		RecordCount: len(req.Records),
		Weights:     hermes.Weights{D: req.Weights.Day, P: req.Weights.Price, R: req.Weights.Rank},
		DurationMs:  float64(d.Microseconds()) / 1000.0,
		Timestamp:   time.Now().UTC(),
	})
}

func (b *Broker) reportRejected(ctx context.Context, o outcome, err error, d time.Duration) {
	code := "unknown"
	var ve *ranking.ValidationError
	if errors.As(err, &ve) {
		code = ve.Code
	}
	b.metrics.ObserveRejected(o.transport, code, d)
	b.logger.InfoContext(ctx, "rank request rejected",
		"id", o.id,
		"request_id", o.requestID,
		"transport", o.transport,
		"code", code,
		"error", err,
	)
	b.publish(hermes.SubjectRankRejected(o.id), hermes.RankRejectedEvent{
		ID:        o.id,
		RequestID: o.requestID,
		Transport: o.transport,
		Error:     Message(err),
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

func (b *Broker) publish(subject string, ev interface{}) {
	if b.hermes == nil {
		return
	}
	if err := b.hermes.Publish(subject, ev); err != nil {
		b.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
