package contracts

import (
	"context"

	"praxis-service/internal/app/models"
)

// AuditService is a write-only sink. Record is best-effort: implementations
// log publish failures and never return them to the caller.
type AuditService interface {
	Record(ctx context.Context, record models.AuditRecord)
}
