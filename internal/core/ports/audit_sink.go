package ports

import (
	"context"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// AuditSink persists session events to the audit trail.
type AuditSink interface {
	InsertSessionEvent(ctx context.Context, event *domain.SessionEvent) error
}
