package app

import (
	"context"
	"fmt"
	"time"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// HotelView is an instance plus its derived status.
type HotelView struct {
	domain.HotelInstance
	Status domain.HotelStatus `json:"status"`
}

type QueryService struct {
	hotels       domain.HotelRepository
	participants domain.ParticipantRepository
	cache        domain.Cache
	cacheTTL     time.Duration
	now          func() time.Time
}

func NewQueryService(hotels domain.HotelRepository, participants domain.ParticipantRepository, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{hotels: hotels, participants: participants, cache: cache, cacheTTL: ttl, now: time.Now}
}

func (s *QueryService) GetHotel(ctx context.Context, id int64) (HotelView, error) {
	key := fmt.Sprintf("hotel:id:%d", id)
	var hv HotelView
	if ok, _ := s.cache.Get(ctx, key, &hv); ok {
		// status is date-derived, never trust the cached value
		hv.Status = hv.StatusOn(s.now())
		return hv, nil
	}
	h, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		return HotelView{}, err
	}
	hv = HotelView{HotelInstance: h, Status: h.StatusOn(s.now())}
	_ = s.cache.Set(ctx, key, hv, int(s.cacheTTL.Seconds()))
	return hv, nil
}

func (s *QueryService) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]HotelView, error) {
	key := listKey(q.HotelID, q.Status)
	cacheable := q.Limit == 0 && q.On.IsZero()
	var out []HotelView
	if cacheable {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	instances, err := s.hotels.List(ctx, domain.HotelsQuery{HotelID: q.HotelID, Limit: q.Limit})
	if err != nil {
		return nil, err
	}
	now := q.On
	if now.IsZero() {
		now = s.now()
	}
	for _, h := range instances {
		hv := HotelView{HotelInstance: h, Status: h.StatusOn(now)}
		if q.Status != "" && hv.Status != q.Status {
			continue
		}
		out = append(out, hv)
	}
	if cacheable {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *QueryService) GetParticipant(ctx context.Context, participantID string) (domain.Participant, error) {
	return s.participants.GetParticipant(ctx, participantID)
}

func (s *QueryService) ListParticipants(ctx context.Context, q domain.ParticipantsQuery) ([]domain.Participant, error) {
	return s.participants.ListParticipants(ctx, q)
}

func listKey(hotelID string, status domain.HotelStatus) string {
	return fmt.Sprintf("hotels:%s:%s", hotelID, status)
}
