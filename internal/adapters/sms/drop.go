package sms

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// Drop is the notifier used when no gateway is configured. Messages are
// logged and counted as failed so callers can see nothing went out.
type Drop struct{}

func (Drop) Send(_ context.Context, batch []domain.Message) (domain.DeliveryReport, error) {
	if len(batch) > 0 {
		log.Warn().Int("count", len(batch)).Msg("sms gateway not configured; dropping messages")
	}
	return domain.DeliveryReport{Failed: len(batch)}, nil
}
