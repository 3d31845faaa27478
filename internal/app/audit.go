package app

import (
	"context"
	"errors"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// MultiSink fans one audit entry out to several sinks (MySQL always,
// Kafka when brokers are configured). Every sink gets the entry even if
// an earlier one failed.
type MultiSink []domain.AuditSink

func (m MultiSink) Append(ctx context.Context, e domain.AuditEntry) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
