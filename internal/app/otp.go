package app

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// OTPService issues and verifies one-time login codes for coach accounts.
// Codes live in an injected expiring store, never in process memory, so
// the backend can be swapped for any distributed store.
type OTPService struct {
	store    domain.ExpiringStore
	notifier domain.Notifier
	users    domain.ParticipantRepository
	ttl      time.Duration
}

func NewOTPService(store domain.ExpiringStore, notifier domain.Notifier, users domain.ParticipantRepository, ttl time.Duration) *OTPService {
	return &OTPService{store: store, notifier: notifier, users: users, ttl: ttl}
}

func otpKey(coachID string) string { return "otp:" + coachID }

// Issue generates a 6-digit code for the coach and sends it to the mobile
// number on the coach account.
func (s *OTPService) Issue(ctx context.Context, coachID string) error {
	u, err := s.users.GetCoachUser(ctx, coachID)
	if err != nil {
		return err
	}
	code, err := sixDigits()
	if err != nil {
		return err
	}
	if err := s.store.SetTTL(ctx, otpKey(coachID), code, s.ttl); err != nil {
		return err
	}
	if s.notifier == nil || u.Mobile == "" {
		log.Warn().Str("coach", coachID).Msg("otp issued but no delivery channel")
		return nil
	}
	rep, err := s.notifier.Send(ctx, []domain.Message{{
		To:   u.Mobile,
		Body: fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes())),
	}})
	if err != nil {
		return err
	}
	if rep.Failed > 0 {
		return fmt.Errorf("otp delivery failed for %s", coachID)
	}
	return nil
}

// Verify checks the submitted code. A successful match consumes the code.
func (s *OTPService) Verify(ctx context.Context, coachID, code string) (bool, error) {
	stored, ok, err := s.store.GetString(ctx, otpKey(coachID))
	if err != nil {
		return false, err
	}
	if !ok || stored != code {
		return false, nil
	}
	_ = s.store.Del(ctx, otpKey(coachID))
	return true, nil
}

func sixDigits() (string, error) {
	n, err := crand.Int(crand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
