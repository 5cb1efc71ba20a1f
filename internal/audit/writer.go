package audit

import (
	"context"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/models"
)

// Writer persists one audit record. The capture middleware holds two
// implementations — the repository-backed primary writer and a raw-insert
// fallback — and tries them in order. Implementations must be safe for
// concurrent use: capture continuations for overlapping requests share one
// writer.
type Writer interface {
	Write(ctx context.Context, entry *models.AuditLog) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(ctx context.Context, entry *models.AuditLog) error

func (f WriterFunc) Write(ctx context.Context, entry *models.AuditLog) error {
	return f(ctx, entry)
}
