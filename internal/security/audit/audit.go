package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger writes the operator audit trail. Every remote-mutating admin action
// is recorded with who did it and to which account.
type Logger struct {
	logger *slog.Logger
}

// NewLogger wraps a structured logger for audit output.
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// LogAction records one audited action.
func (al *Logger) LogAction(ctx context.Context, operatorID, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("operator_id", operatorID),
		slog.String("status", status),
		slog.String("details", details),
		slog.Time("timestamp", time.Now()),
	)
}

// LogStatusChange records a company lifecycle transition.
func (al *Logger) LogStatusChange(ctx context.Context, operatorID, companyID, from, to string) {
	al.LogAction(ctx, operatorID, "status_change", "company", companyID, "applied", from+" -> "+to)
}

// LogRoleChange records a role change on a company account.
func (al *Logger) LogRoleChange(ctx context.Context, operatorID, companyID, role string) {
	al.LogAction(ctx, operatorID, "role_change", "company", companyID, "applied", role)
}

// LogPasswordReset records an operator password reset. The password itself is
// never logged.
func (al *Logger) LogPasswordReset(ctx context.Context, operatorID, companyID string) {
	al.LogAction(ctx, operatorID, "password_reset", "company", companyID, "applied", "")
}

// LogDenied records a rejected access attempt.
func (al *Logger) LogDenied(ctx context.Context, operatorID, reason string) {
	al.LogAction(ctx, operatorID, "access_denied", "api", "", "denied", reason)
}
