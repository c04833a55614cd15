package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/gradient-edu/gradient-api/internal/observability"
)

// GradingTask is one unit of background grading work. Round carries the
// submission's grading round at scheduling time so the worker can detect and
// discard passes superseded by a later re-grade.
type GradingTask struct {
	SubmissionID uint   `json:"submission_id"`
	Round        int    `json:"round"`
	Strictness   string `json:"strictness"`
}

// GradingDispatcher hands grading tasks off for background execution. Dispatch
// must never block the triggering request on the grading work itself.
type GradingDispatcher interface {
	Dispatch(ctx context.Context, task GradingTask) error
}

// GradingProcessor consumes grading tasks; implemented by GradingService.
type GradingProcessor interface {
	Process(ctx context.Context, task GradingTask)
}

// ChannelDispatcher queues grading tasks on an in-process buffered channel.
// Suited to single-binary deployments and tests.
type ChannelDispatcher struct {
	tasks     chan GradingTask
	processor GradingProcessor
	logger    zerolog.Logger
}

// NewChannelDispatcher builds an in-process dispatcher with the given queue size.
func NewChannelDispatcher(size int, processor GradingProcessor, logger zerolog.Logger) *ChannelDispatcher {
	if size <= 0 {
		size = 64
	}
	return &ChannelDispatcher{
		tasks:     make(chan GradingTask, size),
		processor: processor,
		logger:    logger.With().Str("component", "grading_dispatcher").Logger(),
	}
}

// Dispatch enqueues the task without waiting for the pass to run. A full queue
// is reported as an error; the caller logs it and a human can re-grade later.
func (d *ChannelDispatcher) Dispatch(_ context.Context, task GradingTask) error {
	select {
	case d.tasks <- task:
		observability.GradingQueueDepth().Inc()
		return nil
	default:
		observability.GradingDispatchErrors().Inc()
		d.logger.Warn().Uint("submission_id", task.SubmissionID).Msg("grading queue full, task rejected")
		return fmt.Errorf("grading queue full")
	}
}

// Start consumes tasks until the context is cancelled. Each pass owns its own
// transaction boundary inside the processor.
func (d *ChannelDispatcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case task := <-d.tasks:
				observability.GradingQueueDepth().Dec()
				d.processor.Process(ctx, task)
			}
		}
	}()
}

// NATSDispatcher publishes grading tasks to a NATS subject so any worker
// instance can pick them up.
type NATSDispatcher struct {
	conn      *nats.Conn
	subject   string
	processor GradingProcessor
	logger    zerolog.Logger
}

// NewNATSDispatcher builds a NATS-backed dispatcher.
func NewNATSDispatcher(conn *nats.Conn, subject string, processor GradingProcessor, logger zerolog.Logger) *NATSDispatcher {
	if subject == "" {
		subject = "gradient.grading.tasks"
	}
	return &NATSDispatcher{
		conn:      conn,
		subject:   subject,
		processor: processor,
		logger:    logger.With().Str("component", "grading_nats_dispatcher").Logger(),
	}
}

// Dispatch publishes the task; delivery is at-most-once by design, matching
// the no-automatic-retry policy of the grading workflow.
func (d *NATSDispatcher) Dispatch(_ context.Context, task GradingTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal grading task: %w", err)
	}
	if err := d.conn.Publish(d.subject, payload); err != nil {
		observability.GradingDispatchErrors().Inc()
		return fmt.Errorf("publish grading task: %w", err)
	}
	return nil
}

// Start subscribes to the grading subject and processes incoming tasks.
func (d *NATSDispatcher) Start(ctx context.Context) error {
	sub, err := d.conn.Subscribe(d.subject, func(msg *nats.Msg) {
		var task GradingTask
		if err := json.Unmarshal(msg.Data, &task); err != nil {
			d.logger.Error().Err(err).Msg("malformed grading task discarded")
			return
		}
		d.processor.Process(ctx, task)
	})
	if err != nil {
		return fmt.Errorf("subscribe grading subject: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			d.logger.Warn().Err(err).Msg("failed to unsubscribe grading worker")
		}
	}()

	return nil
}
