package domain_test

import (
	"testing"
	"time"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

func d(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStatusOn(t *testing.T) {
	h := domain.HotelInstance{StartDate: d("2025-01-01"), EndDate: d("2025-01-10")}

	cases := []struct {
		on   string
		want domain.HotelStatus
	}{
		{"2024-12-31", domain.StatusUpcoming},
		{"2025-01-01", domain.StatusActive},
		{"2025-01-05", domain.StatusActive},
		{"2025-01-10", domain.StatusActive},
		{"2025-01-11", domain.StatusExpired},
	}
	for _, c := range cases {
		if got := h.StatusOn(d(c.on)); got != c.want {
			t.Errorf("StatusOn(%s) = %s, want %s", c.on, got, c.want)
		}
	}
}

func TestStatusOn_TruncatesTime(t *testing.T) {
	h := domain.HotelInstance{StartDate: d("2025-01-01"), EndDate: d("2025-01-10")}
	// late evening on the end date is still active
	on := time.Date(2025, 1, 10, 23, 30, 0, 0, time.UTC)
	if got := h.StatusOn(on); got != domain.StatusActive {
		t.Fatalf("expected active at end-date evening, got %s", got)
	}
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		s1, e1, s2, e2 string
		want           bool
	}{
		{"2025-09-01", "2025-09-15", "2025-09-20", "2025-09-30", false},
		{"2025-09-01", "2025-09-21", "2025-09-20", "2025-09-30", true},
		{"2025-09-01", "2025-09-19", "2025-09-20", "2025-09-30", false},
		// touching boundary counts as overlap
		{"2025-09-01", "2025-09-20", "2025-09-20", "2025-09-30", true},
		// containment
		{"2025-09-05", "2025-09-10", "2025-09-01", "2025-09-30", true},
	}
	for _, c := range cases {
		got := domain.RangesOverlap(d(c.s1), d(c.e1), d(c.s2), d(c.e2))
		if got != c.want {
			t.Errorf("RangesOverlap(%s..%s, %s..%s) = %v, want %v", c.s1, c.e1, c.s2, c.e2, got, c.want)
		}
	}
}

func TestStayNights(t *testing.T) {
	if n := domain.StayNights(d("2025-09-01"), d("2025-09-03")); n != 2 {
		t.Fatalf("expected 2 nights, got %d", n)
	}
	if n := domain.StayNights(d("2025-09-01"), d("2025-09-04")); n != 3 {
		t.Fatalf("expected 3 nights, got %d", n)
	}
}

func TestPatchFieldsRoundTrip(t *testing.T) {
	name := "Grand Palace"
	start := d("2025-09-01")
	p := domain.HotelPatch{HotelName: &name, StartDate: &start}
	fields := p.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(fields), fields)
	}
	if fields["hotelName"] != "Grand Palace" {
		t.Fatalf("unexpected hotelName: %v", fields["hotelName"])
	}
	if !fields["startDate"].(time.Time).Equal(start) {
		t.Fatalf("unexpected startDate: %v", fields["startDate"])
	}
}

func TestFieldScopesCoverPatchFields(t *testing.T) {
	// every field a patch can carry must be classified
	all := []string{
		"hotelName", "location", "district", "address", "pincode",
		"startDate", "endDate", "totalRooms", "occupiedRooms", "availableRooms",
	}
	for _, f := range all {
		if _, ok := domain.FieldScopes[f]; !ok {
			t.Errorf("field %s has no scope classification", f)
		}
	}
}
