package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	contextKeyWideEvent contextKey = "wide_event"
	contextKeyTraceID   contextKey = "trace_id"
)

// WideEvent is one structured log line per HTTP request. Handlers and
// middleware add to it as the request moves through the system and the
// logging middleware emits it once at the end.
type WideEvent struct {
	TraceID   string    `json:"trace_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`

	HTTPMethod     string `json:"http_method,omitempty"`
	HTTPPath       string `json:"http_path,omitempty"`
	HTTPRoute      string `json:"http_route,omitempty"`
	HTTPStatusCode int    `json:"http_status_code,omitempty"`
	HTTPDurationMs int64  `json:"http_duration_ms,omitempty"`

	UserID    string `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`

	ProjectID     string `json:"project_id,omitempty"`
	ProjectStatus string `json:"project_status,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	DocumentID    string `json:"document_id,omitempty"`
	Documents     int    `json:"documents,omitempty"`

	CallbackStatus string `json:"callback_status,omitempty"`
	Applied        int    `json:"applied,omitempty"`
	Failed         int    `json:"failed,omitempty"`
	Notification   string `json:"notification,omitempty"`

	Error          string `json:"error,omitempty"`
	ErrorStage     string `json:"error_stage,omitempty"`
	PanicRecovered bool   `json:"panic_recovered,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func NewWideEvent(eventType string) *WideEvent {
	return &WideEvent{
		TraceID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
		Metadata:  make(map[string]interface{}),
	}
}

func WithContext(ctx context.Context, event *WideEvent) context.Context {
	ctx = context.WithValue(ctx, contextKeyWideEvent, event)
	ctx = context.WithValue(ctx, contextKeyTraceID, event.TraceID)
	return ctx
}

func FromContext(ctx context.Context) *WideEvent {
	if event, ok := ctx.Value(contextKeyWideEvent).(*WideEvent); ok {
		return event
	}
	return nil
}

func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(contextKeyTraceID).(string); ok {
		return traceID
	}
	return ""
}

func EnrichHTTP(ctx context.Context, method, path string) {
	if event := FromContext(ctx); event != nil {
		event.HTTPMethod = method
		event.HTTPPath = path
	}
}

func EnrichRoute(ctx context.Context, route string) {
	if event := FromContext(ctx); event != nil {
		event.HTTPRoute = route
	}
}

func EnrichHTTPStatus(ctx context.Context, statusCode int) {
	if event := FromContext(ctx); event != nil {
		event.HTTPStatusCode = statusCode
	}
}

func EnrichHTTPDuration(ctx context.Context, duration time.Duration) {
	if event := FromContext(ctx); event != nil {
		event.HTTPDurationMs = duration.Milliseconds()
	}
}

func EnrichUser(ctx context.Context, userID, email string) {
	if event := FromContext(ctx); event != nil {
		event.UserID = userID
		event.UserEmail = email
	}
}

func EnrichProject(ctx context.Context, projectID, status string) {
	if event := FromContext(ctx); event != nil {
		event.ProjectID = projectID
		if status != "" {
			event.ProjectStatus = status
		}
	}
}

func EnrichBatch(ctx context.Context, requestID string, documents int) {
	if event := FromContext(ctx); event != nil {
		event.RequestID = requestID
		event.Documents = documents
	}
}

func EnrichDocument(ctx context.Context, documentID string) {
	if event := FromContext(ctx); event != nil {
		event.DocumentID = documentID
	}
}

func EnrichCallback(ctx context.Context, status string, applied, failed int) {
	if event := FromContext(ctx); event != nil {
		event.CallbackStatus = status
		event.Applied = applied
		event.Failed = failed
	}
}

func EnrichNotification(ctx context.Context, outcome string) {
	if event := FromContext(ctx); event != nil {
		event.Notification = outcome
	}
}

func EnrichError(ctx context.Context, err error, stage string) {
	if event := FromContext(ctx); event != nil {
		if err != nil {
			event.Error = err.Error()
			event.ErrorStage = stage
		}
	}
}

func EnrichPanic(ctx context.Context) {
	if event := FromContext(ctx); event != nil {
		event.PanicRecovered = true
	}
}

func EnrichMetadata(ctx context.Context, key string, value interface{}) {
	if event := FromContext(ctx); event != nil {
		event.Metadata[key] = value
	}
}

// Emit writes the event through logger at info level, or error level when
// the request failed or panicked.
func Emit(ctx context.Context, logger *slog.Logger) {
	event := FromContext(ctx)
	if event == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{
		slog.String("trace_id", event.TraceID),
		slog.String("event_type", event.EventType),
		slog.Time("timestamp", event.Timestamp),
	}

	addString := func(key, value string) {
		if value != "" {
			attrs = append(attrs, slog.String(key, value))
		}
	}
	addInt := func(key string, value int) {
		if value != 0 {
			attrs = append(attrs, slog.Int(key, value))
		}
	}

	addString("http_method", event.HTTPMethod)
	addString("http_path", event.HTTPPath)
	addString("http_route", event.HTTPRoute)
	addInt("http_status_code", event.HTTPStatusCode)
	if event.HTTPDurationMs != 0 {
		attrs = append(attrs, slog.Int64("http_duration_ms", event.HTTPDurationMs))
	}

	addString("user_id", event.UserID)
	addString("user_email", event.UserEmail)

	addString("project_id", event.ProjectID)
	addString("project_status", event.ProjectStatus)
	addString("request_id", event.RequestID)
	addString("document_id", event.DocumentID)
	addInt("documents", event.Documents)

	addString("callback_status", event.CallbackStatus)
	addInt("applied", event.Applied)
	addInt("failed", event.Failed)
	addString("notification", event.Notification)

	addString("error", event.Error)
	addString("error_stage", event.ErrorStage)
	if event.PanicRecovered {
		attrs = append(attrs, slog.Bool("panic_recovered", true))
	}

	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	level := slog.LevelInfo
	if event.Error != "" || event.PanicRecovered || event.HTTPStatusCode >= 500 {
		level = slog.LevelError
	}

	logger.LogAttrs(ctx, level, "wide_event", attrs...)
}
