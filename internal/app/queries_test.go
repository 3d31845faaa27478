package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/greator25/Ievolve-mvp1.0/internal/app"
	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

func TestListHotels_StatusFilter(t *testing.T) {
	f := newFakeHotels()
	seedHotel(f) // HTL001: Sep 1-15, Sep 20-30, Oct 5-12

	q := app.NewQueryService(f, newFakeParticipants(), newFakeCache(), 10*time.Minute)

	out, err := q.ListHotels(context.Background(), domain.HotelsQuery{HotelID: "HTL001"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(out))
	}

	// pinned to a date inside SEP-A's window: one active, two upcoming
	active, err := q.ListHotels(context.Background(), domain.HotelsQuery{
		HotelID: "HTL001", Status: domain.StatusActive, On: d("2025-09-05"),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(active) != 1 || active[0].InstanceCode != "SEP-A" {
		t.Fatalf("unexpected active set: %+v", active)
	}
	upcoming, _ := q.ListHotels(context.Background(), domain.HotelsQuery{
		HotelID: "HTL001", Status: domain.StatusUpcoming, On: d("2025-09-05"),
	})
	if len(upcoming) != 2 {
		t.Fatalf("expected 2 upcoming, got %+v", upcoming)
	}
}

func TestGetHotel_CacheMissThenHit(t *testing.T) {
	f := newFakeHotels()
	a, _, _ := seedHotel(f)
	cache := newFakeCache()
	q := app.NewQueryService(f, newFakeParticipants(), cache, 10*time.Minute)

	h, err := q.GetHotel(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h.InstanceCode != "SEP-A" {
		t.Fatalf("unexpected hotel: %+v", h)
	}

	// Mutate repo to ensure second read indeed comes from cache
	mutated := f.byID[a.ID]
	mutated.HotelName = "SHOULD NOT SEE THIS"
	f.byID[a.ID] = mutated

	h2, err := q.GetHotel(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h2.HotelName != "Grand Palace" {
		t.Fatalf("expected cached name, got %s", h2.HotelName)
	}
}

func TestGetHotel_NotFound(t *testing.T) {
	q := app.NewQueryService(newFakeHotels(), newFakeParticipants(), newFakeCache(), time.Minute)
	if _, err := q.GetHotel(context.Background(), 12345); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
