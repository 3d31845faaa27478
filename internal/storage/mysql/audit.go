package mysql

import (
	"context"
	"encoding/json"

	"github.com/greator25/Ievolve-mvp1.0/internal/adapters/observability"
	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// AuditSink is the insert-only audit_log writer.
type AuditSink struct{ r *Repo }

func NewAuditSink(r *Repo) *AuditSink { return &AuditSink{r: r} }

func (s *AuditSink) Append(ctx context.Context, e domain.AuditEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		observability.ObserveAudit("mysql", "error")
		return err
	}
	_, err = s.r.ex.ExecContext(ctx, insertAuditSQL,
		e.EntryID, e.UserID, e.ActionType, e.TargetEntity, e.TargetID, string(details))
	if err != nil {
		observability.ObserveAudit("mysql", "error")
		return err
	}
	observability.ObserveAudit("mysql", "ok")
	return nil
}
