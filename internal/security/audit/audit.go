package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger records mutating registry actions in a uniform audit format
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// LogAction writes one audit entry
func (al *Logger) LogAction(ctx context.Context, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("status", status),
		slog.String("details", details),
		slog.Time("timestamp", time.Now()),
	)
}

// LogBorrow records a borrow attempt
func (al *Logger) LogBorrow(ctx context.Context, toolID, status, details string) {
	al.LogAction(ctx, "borrow", "tool", toolID, status, details)
}

// LogReturn records a return attempt
func (al *Logger) LogReturn(ctx context.Context, transactionID, status, details string) {
	al.LogAction(ctx, "return", "transaction", transactionID, status, details)
}

// LogDeletion records a delete attempt on any entity
func (al *Logger) LogDeletion(ctx context.Context, resource, resourceID, status, details string) {
	al.LogAction(ctx, "delete", resource, resourceID, status, details)
}
