package app

import (
	"context"
	"time"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// Resolver answers "which instances of this hotel clash with a candidate
// date range". Pure query; the repository it wraps decides the isolation
// (pass a tx-scoped repo to make check-then-write atomic).
type Resolver struct {
	hotels domain.HotelRepository
}

func NewResolver(hotels domain.HotelRepository) *Resolver {
	return &Resolver{hotels: hotels}
}

// FindOverlaps returns every instance of hotelID whose range overlaps
// [start, end], skipping excludeInstanceCode (set when editing an existing
// instance so it does not conflict with itself; empty for new instances).
func (r *Resolver) FindOverlaps(ctx context.Context, hotelID string, start, end time.Time, excludeInstanceCode string) ([]domain.HotelInstance, error) {
	instances, err := r.hotels.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	var out []domain.HotelInstance
	for _, h := range instances {
		if excludeInstanceCode != "" && h.InstanceCode == excludeInstanceCode {
			continue
		}
		if domain.RangesOverlap(start, end, h.StartDate, h.EndDate) {
			out = append(out, h)
		}
	}
	return out, nil
}
