package fields

import "time"

// EngineEventKind names what an EngineLogEvent describes.
type EngineEventKind string

const (
	EventResolveStarted   EngineEventKind = "resolve.started"
	EventResolveCommitted EngineEventKind = "resolve.committed"
	EventResolveDiscarded EngineEventKind = "resolve.discarded"
	EventResolveFailed    EngineEventKind = "resolve.failed"
	EventEditCommitted    EngineEventKind = "edit.committed"
	EventEditDelegated    EngineEventKind = "edit.delegated"
	EventEditFailed       EngineEventKind = "edit.failed"
	EventDataResolved     EngineEventKind = "data.resolved"
	EventDataFailed       EngineEventKind = "data.failed"
	EventActivityFailed   EngineEventKind = "activity.failed"
)

// EngineLogEvent describes one resolution or edit step.
type EngineLogEvent struct {
	Kind       EngineEventKind
	EntityID   string
	EntityType string
	Seq        uint64
	Field      string
	Fields     int
	Duration   time.Duration
	Err        error
}

// EngineLogger records engine and dispatcher events.
type EngineLogger interface {
	LogEngineEvent(EngineLogEvent)
}

// EngineLoggerFunc adapts a function to EngineLogger.
type EngineLoggerFunc func(EngineLogEvent)

// LogEngineEvent implements EngineLogger.
func (f EngineLoggerFunc) LogEngineEvent(event EngineLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEngineLogger struct{}

func (noopEngineLogger) LogEngineEvent(EngineLogEvent) {}

func loggerOrNoop(logger EngineLogger) EngineLogger {
	if logger == nil {
		return noopEngineLogger{}
	}
	return logger
}

// EvaluatorLogEvent describes one rule evaluation.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Field    string
	EntityID string
	Result   bool
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records rule evaluations.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}
