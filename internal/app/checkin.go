package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// CheckinService drives the pending -> checked_in -> checked_out
// transitions over lists of participants. Missing and not-owned ids are
// skipped, not failed; the per-item outcomes make the skips visible.
type CheckinService struct {
	participants domain.ParticipantRepository
	notifier     domain.Notifier
	audit        domain.AuditSink
	now          func() time.Time
}

func NewCheckinService(participants domain.ParticipantRepository, notifier domain.Notifier, audit domain.AuditSink) *CheckinService {
	return &CheckinService{participants: participants, notifier: notifier, audit: audit, now: time.Now}
}

type ItemOutcome string

const (
	OutcomeUpdated         ItemOutcome = "updated"
	OutcomeSkippedNotFound ItemOutcome = "skipped_not_found"
	OutcomeSkippedNotOwned ItemOutcome = "skipped_not_owned"
	OutcomeSkippedDate     ItemOutcome = "skipped_date"
)

type ItemResult struct {
	ParticipantID string      `json:"participantId"`
	Outcome       ItemOutcome `json:"outcome"`
}

type BulkResult struct {
	Updated       []domain.Participant  `json:"updated"`
	Items         []ItemResult          `json:"items"`
	Notifications domain.DeliveryReport `json:"notifications"`
}

// CheckIn marks participants checked in. With actingCoachID set, only that
// coach's players (and the coach's own record) are touched.
func (s *CheckinService) CheckIn(ctx context.Context, ids []string, actingCoachID, userID string) (BulkResult, error) {
	res := BulkResult{}
	for _, id := range ids {
		p, outcome, err := s.resolve(ctx, id, actingCoachID)
		if err != nil {
			return BulkResult{}, err
		}
		if outcome != OutcomeUpdated {
			res.Items = append(res.Items, ItemResult{ParticipantID: id, Outcome: outcome})
			continue
		}
		now := s.now()
		p.CheckinStatus = domain.CheckedIn
		p.CheckinTime = &now
		if err := s.participants.UpdateCheckinState(ctx, p); err != nil {
			return BulkResult{}, err
		}
		res.Updated = append(res.Updated, p)
		res.Items = append(res.Items, ItemResult{ParticipantID: id, Outcome: OutcomeUpdated})
	}
	s.appendAudit(ctx, userID, domain.ActionCheckin, ids, len(res.Updated))
	return res, nil
}

// CheckOut marks participants checked out. A newCheckoutDate past the
// participant's booked end date skips that participant.
func (s *CheckinService) CheckOut(ctx context.Context, ids []string, newCheckoutDate *time.Time, actingCoachID, userID string) (BulkResult, error) {
	res := BulkResult{}
	for _, id := range ids {
		p, outcome, err := s.resolve(ctx, id, actingCoachID)
		if err != nil {
			return BulkResult{}, err
		}
		if outcome == OutcomeUpdated && newCheckoutDate != nil &&
			domain.Day(*newCheckoutDate).After(domain.Day(p.BookingEndDate)) {
			outcome = OutcomeSkippedDate
		}
		if outcome != OutcomeUpdated {
			res.Items = append(res.Items, ItemResult{ParticipantID: id, Outcome: outcome})
			continue
		}
		now := s.now()
		p.CheckinStatus = domain.CheckedOut
		p.CheckoutTime = &now
		if newCheckoutDate != nil {
			d := domain.Day(*newCheckoutDate)
			p.ActualCheckoutDate = &d
		}
		if err := s.participants.UpdateCheckinState(ctx, p); err != nil {
			return BulkResult{}, err
		}
		res.Updated = append(res.Updated, p)
		res.Items = append(res.Items, ItemResult{ParticipantID: id, Outcome: OutcomeUpdated})
	}
	s.appendAudit(ctx, userID, domain.ActionCheckout, ids, len(res.Updated))
	return res, nil
}

// EarlyCheckout moves the actual checkout date without touching the
// check-in status, then notifies each affected participant (and, for
// players, their coach). Delivery is the Notifier's problem.
func (s *CheckinService) EarlyCheckout(ctx context.Context, ids []string, newCheckoutDate time.Time, userID string) (BulkResult, error) {
	res := BulkResult{}
	day := domain.Day(newCheckoutDate)
	var batch []domain.Message

	for _, id := range ids {
		p, outcome, err := s.resolve(ctx, id, "")
		if err != nil {
			return BulkResult{}, err
		}
		if outcome == OutcomeUpdated && day.After(domain.Day(p.BookingEndDate)) {
			outcome = OutcomeSkippedDate
		}
		if outcome != OutcomeUpdated {
			res.Items = append(res.Items, ItemResult{ParticipantID: id, Outcome: outcome})
			continue
		}
		p.ActualCheckoutDate = &day
		if err := s.participants.UpdateCheckinState(ctx, p); err != nil {
			return BulkResult{}, err
		}
		res.Updated = append(res.Updated, p)
		res.Items = append(res.Items, ItemResult{ParticipantID: id, Outcome: OutcomeUpdated})
		batch = append(batch, s.checkoutMessages(ctx, p, day)...)
	}

	if len(batch) > 0 && s.notifier != nil {
		rep, err := s.notifier.Send(ctx, batch)
		if err != nil {
			log.Error().Err(err).Int("batch", len(batch)).Msg("notification dispatch failed")
		}
		res.Notifications = rep
	}
	s.appendAudit(ctx, userID, domain.ActionEarlyCheckout, ids, len(res.Updated))
	return res, nil
}

// resolve loads a participant and applies the coach ownership rule.
func (s *CheckinService) resolve(ctx context.Context, id, actingCoachID string) (domain.Participant, ItemOutcome, error) {
	p, err := s.participants.GetParticipant(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Participant{}, OutcomeSkippedNotFound, nil
	}
	if err != nil {
		return domain.Participant{}, "", err
	}
	if actingCoachID != "" && !p.OwnedBy(actingCoachID) {
		return domain.Participant{}, OutcomeSkippedNotOwned, nil
	}
	return p, OutcomeUpdated, nil
}

func (s *CheckinService) checkoutMessages(ctx context.Context, p domain.Participant, day time.Time) []domain.Message {
	var out []domain.Message
	date := day.Format(domain.DateLayout)
	if p.Mobile != "" {
		out = append(out, domain.Message{
			To:   p.Mobile,
			Body: fmt.Sprintf("Hi %s, your checkout at %s has been moved to %s. Booking ref %s.", p.Name, p.HotelName, date, p.BookingReference),
		})
	}
	if p.Role == domain.RolePlayer && p.CoachID != "" {
		coach, err := s.participants.GetParticipant(ctx, p.CoachID)
		if err == nil && coach.Mobile != "" {
			out = append(out, domain.Message{
				To:   coach.Mobile,
				Body: fmt.Sprintf("Player %s (%s) now checks out of %s on %s.", p.Name, p.ParticipantID, p.HotelName, date),
			})
		}
	}
	return out
}

func (s *CheckinService) appendAudit(ctx context.Context, userID, action string, requested []string, affected int) {
	if s.audit == nil {
		return
	}
	e := domain.AuditEntry{
		EntryID:      uuid.NewString(),
		UserID:       userID,
		ActionType:   action,
		TargetEntity: "participant",
		Details: map[string]any{
			"participantIds": requested,
			"affected":       affected,
		},
		Timestamp: s.now(),
	}
	if err := s.audit.Append(ctx, e); err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit append failed")
	}
}
