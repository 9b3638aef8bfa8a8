package mq

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/invoker/internal/domain"
)

// RunEvent — payload событий run.started и run.finished.
type RunEvent struct {
	RunID      uuid.UUID        `json:"run_id"`
	Source     string           `json:"source,omitempty"`
	Status     domain.RunStatus `json:"status"`
	Total      int              `json:"total"`
	Executed   int              `json:"executed"`
	DurationMs int64            `json:"duration_ms,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// CommandEvent — payload события command.finished.
// Результат вызова в событие не попадает.
type CommandEvent struct {
	RunID      uuid.UUID              `json:"run_id"`
	Index      int                    `json:"index"`
	ObjectType string                 `json:"object_type"`
	Method     string                 `json:"method"`
	ResultsID  string                 `json:"results_id,omitempty"`
	Status     domain.ExecutionStatus `json:"status"`
	Stage      string                 `json:"stage,omitempty"`
	DurationMs int64                  `json:"duration_ms"`
	Error      string                 `json:"error,omitempty"`
}

// EventSink публикует события run в ExchangeEvents.
// Подписывается на оркестратор как наблюдатель.
type EventSink struct {
	publisher *Publisher
}

// NewEventSink создаёт EventSink поверх Publisher.
func NewEventSink(p *Publisher) *EventSink {
	return &EventSink{publisher: p}
}

// RunStarted публикует run.started.
func (s *EventSink) RunStarted(ctx context.Context, run *domain.Run) error {
	msg := NewMessage(MessageTypeRunStarted, runEvent(run))
	return s.publisher.Publish(ctx, ExchangeEvents, RoutingKeyRunStarted, msg)
}

// CommandFinished публикует command.finished.
func (s *EventSink) CommandFinished(ctx context.Context, run *domain.Run, exec *domain.Execution) error {
	msg := NewMessage(MessageTypeCommandFinished, CommandEvent{
		RunID:      run.ID,
		Index:      exec.Index,
		ObjectType: exec.ObjectType,
		Method:     exec.Method,
		ResultsID:  exec.ResultsID,
		Status:     exec.Status,
		Stage:      exec.Stage,
		DurationMs: exec.Duration().Milliseconds(),
		Error:      exec.Error,
	})
	return s.publisher.Publish(ctx, ExchangeEvents, RoutingKeyCommandFinished, msg)
}

// RunFinished публикует run.finished.
func (s *EventSink) RunFinished(ctx context.Context, run *domain.Run) error {
	msg := NewMessage(MessageTypeRunFinished, runEvent(run))
	return s.publisher.Publish(ctx, ExchangeEvents, RoutingKeyRunFinished, msg)
}

func runEvent(run *domain.Run) RunEvent {
	return RunEvent{
		RunID:      run.ID,
		Source:     run.Source,
		Status:     run.Status,
		Total:      run.Total,
		Executed:   len(run.Executions),
		DurationMs: run.Duration().Round(time.Millisecond).Milliseconds(),
		Error:      run.Error,
	}
}
