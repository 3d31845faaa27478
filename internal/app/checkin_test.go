package app_test

import (
	"context"
	"strings"
	"testing"

	"github.com/greator25/Ievolve-mvp1.0/internal/app"
	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

func seedParticipants(f *fakeParticipants) {
	f.add(domain.Participant{
		ParticipantID: "COA_001", Name: "Ravi Kumar", Role: domain.RoleCoach,
		Mobile: "+911111111111", HotelID: "HTL001", HotelName: "Grand Palace",
		BookingStartDate: d("2025-09-01"), BookingEndDate: d("2025-09-10"),
		BookingReference: "BR-1",
	})
	f.add(domain.Participant{
		ParticipantID: "PLY_001", Name: "Arjun", Role: domain.RolePlayer, CoachID: "COA_001",
		Mobile: "+912222222222", HotelID: "HTL001", HotelName: "Grand Palace",
		BookingStartDate: d("2025-09-01"), BookingEndDate: d("2025-09-10"),
		BookingReference: "BR-2",
	})
	f.add(domain.Participant{
		ParticipantID: "PLY_002", Name: "Other Teams Player", Role: domain.RolePlayer, CoachID: "COA_002",
		Mobile: "+913333333333", HotelID: "HTL001", HotelName: "Grand Palace",
		BookingStartDate: d("2025-09-01"), BookingEndDate: d("2025-09-10"),
		BookingReference: "BR-3",
	})
}

func TestCheckIn_AdminFlow(t *testing.T) {
	f := newFakeParticipants()
	seedParticipants(f)
	audit := &recordingAudit{}
	svc := app.NewCheckinService(f, nil, audit)

	res, err := svc.CheckIn(context.Background(), []string{"PLY_001", "GHOST", "PLY_002"}, "", "admin")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Updated) != 2 {
		t.Fatalf("expected 2 updated, got %d", len(res.Updated))
	}
	outcomes := map[string]app.ItemOutcome{}
	for _, it := range res.Items {
		outcomes[it.ParticipantID] = it.Outcome
	}
	if outcomes["GHOST"] != app.OutcomeSkippedNotFound {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}

	p, _ := f.GetParticipant(context.Background(), "PLY_001")
	if p.CheckinStatus != domain.CheckedIn || p.CheckinTime == nil {
		t.Fatalf("unexpected state: %+v", p)
	}
	entries := audit.byAction(domain.ActionCheckin)
	if len(entries) != 1 || entries[0].Details["affected"] != 2 {
		t.Fatalf("unexpected audit: %+v", entries)
	}
}

func TestCheckIn_CoachOwnership(t *testing.T) {
	f := newFakeParticipants()
	seedParticipants(f)
	svc := app.NewCheckinService(f, nil, &recordingAudit{})

	// a coach may check in their players and themselves, nobody else
	res, err := svc.CheckIn(context.Background(), []string{"PLY_001", "PLY_002", "COA_001"}, "COA_001", "COA_001")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Updated) != 2 {
		t.Fatalf("expected 2 updated, got %+v", res.Items)
	}
	for _, it := range res.Items {
		if it.ParticipantID == "PLY_002" && it.Outcome != app.OutcomeSkippedNotOwned {
			t.Fatalf("expected PLY_002 skipped_not_owned, got %s", it.Outcome)
		}
	}
	other, _ := f.GetParticipant(context.Background(), "PLY_002")
	if other.CheckinStatus != domain.CheckinPending {
		t.Fatalf("foreign player must stay pending: %+v", other)
	}
}

func TestCheckOut_DateGuard(t *testing.T) {
	f := newFakeParticipants()
	seedParticipants(f)
	svc := app.NewCheckinService(f, nil, &recordingAudit{})

	// one day past the booked end date: excluded, status untouched
	late := d("2025-09-11")
	res, err := svc.CheckOut(context.Background(), []string{"PLY_001"}, &late, "", "admin")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Updated) != 0 {
		t.Fatalf("expected no updates, got %+v", res.Updated)
	}
	if res.Items[0].Outcome != app.OutcomeSkippedDate {
		t.Fatalf("unexpected outcome: %+v", res.Items)
	}
	p, _ := f.GetParticipant(context.Background(), "PLY_001")
	if p.CheckinStatus != domain.CheckinPending {
		t.Fatalf("status changed despite skip: %+v", p)
	}

	// exactly the end date is fine
	onTime := d("2025-09-10")
	res, err = svc.CheckOut(context.Background(), []string{"PLY_001"}, &onTime, "", "admin")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Updated) != 1 {
		t.Fatalf("expected 1 update, got %+v", res.Items)
	}
	p, _ = f.GetParticipant(context.Background(), "PLY_001")
	if p.CheckinStatus != domain.CheckedOut || p.CheckoutTime == nil {
		t.Fatalf("unexpected state: %+v", p)
	}
	if p.ActualCheckoutDate == nil || !p.ActualCheckoutDate.Equal(onTime) {
		t.Fatalf("actual checkout date not set: %+v", p.ActualCheckoutDate)
	}
}

func TestEarlyCheckout_NotifiesPlayerAndCoach(t *testing.T) {
	f := newFakeParticipants()
	seedParticipants(f)
	notifier := &recordingNotifier{}
	audit := &recordingAudit{}
	svc := app.NewCheckinService(f, notifier, audit)

	res, err := svc.EarlyCheckout(context.Background(), []string{"PLY_001"}, d("2025-09-05"), "admin")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Updated) != 1 {
		t.Fatalf("expected 1 update, got %+v", res.Items)
	}

	// status untouched, only the actual checkout date moves
	p, _ := f.GetParticipant(context.Background(), "PLY_001")
	if p.CheckinStatus != domain.CheckinPending {
		t.Fatalf("early checkout must not change status: %+v", p)
	}
	if p.ActualCheckoutDate == nil || !p.ActualCheckoutDate.Equal(d("2025-09-05")) {
		t.Fatalf("actual checkout date not moved: %+v", p.ActualCheckoutDate)
	}

	// the player and their coach each get a message
	if len(notifier.batches) != 1 || len(notifier.batches[0]) != 2 {
		t.Fatalf("unexpected batches: %+v", notifier.batches)
	}
	tos := []string{notifier.batches[0][0].To, notifier.batches[0][1].To}
	if tos[0] != "+912222222222" || tos[1] != "+911111111111" {
		t.Fatalf("unexpected recipients: %v", tos)
	}
	if !strings.Contains(notifier.batches[0][0].Body, "2025-09-05") {
		t.Fatalf("message lacks the new date: %q", notifier.batches[0][0].Body)
	}
	if res.Notifications.Sent != 2 {
		t.Fatalf("unexpected delivery report: %+v", res.Notifications)
	}
	if len(audit.byAction(domain.ActionEarlyCheckout)) != 1 {
		t.Fatal("expected an early_checkout audit entry")
	}
}

func TestEarlyCheckout_CoachGetsOneMessage(t *testing.T) {
	f := newFakeParticipants()
	seedParticipants(f)
	notifier := &recordingNotifier{}
	svc := app.NewCheckinService(f, notifier, &recordingAudit{})

	_, err := svc.EarlyCheckout(context.Background(), []string{"COA_001"}, d("2025-09-06"), "admin")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(notifier.batches) != 1 || len(notifier.batches[0]) != 1 {
		t.Fatalf("coach record must produce exactly one message: %+v", notifier.batches)
	}
}
