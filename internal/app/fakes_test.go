package app_test

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// ---- in-memory hotel repository ----

type fakeHotels struct {
	seq  int64
	byID map[int64]domain.HotelInstance
}

func newFakeHotels() *fakeHotels {
	return &fakeHotels{byID: map[int64]domain.HotelInstance{}}
}

func (f *fakeHotels) add(h domain.HotelInstance) domain.HotelInstance {
	created, err := f.Create(context.Background(), h)
	if err != nil {
		panic(err)
	}
	return created
}

func (f *fakeHotels) Create(ctx context.Context, h domain.HotelInstance) (domain.HotelInstance, error) {
	for _, ex := range f.byID {
		if ex.HotelID == h.HotelID && ex.InstanceCode == h.InstanceCode {
			return domain.HotelInstance{}, &domain.DuplicateInstanceError{HotelID: h.HotelID, InstanceCode: h.InstanceCode}
		}
	}
	f.seq++
	h.ID = f.seq
	h.StartDate = domain.Day(h.StartDate)
	h.EndDate = domain.Day(h.EndDate)
	f.byID[h.ID] = h
	return h, nil
}

func (f *fakeHotels) Get(ctx context.Context, hotelID, instanceCode string) (domain.HotelInstance, error) {
	for _, h := range f.byID {
		if h.HotelID == hotelID && h.InstanceCode == instanceCode {
			return h, nil
		}
	}
	return domain.HotelInstance{}, domain.ErrNotFound
}

func (f *fakeHotels) GetByID(ctx context.Context, id int64) (domain.HotelInstance, error) {
	h, ok := f.byID[id]
	if !ok {
		return domain.HotelInstance{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeHotels) List(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelInstance, error) {
	var out []domain.HotelInstance
	for _, h := range f.byID {
		if q.HotelID != "" && h.HotelID != q.HotelID {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeHotels) ListByHotel(ctx context.Context, hotelID string) ([]domain.HotelInstance, error) {
	return f.List(ctx, domain.HotelsQuery{HotelID: hotelID})
}

func (f *fakeHotels) UpdateFields(ctx context.Context, id int64, fields map[string]any) (domain.HotelInstance, error) {
	h, ok := f.byID[id]
	if !ok {
		return domain.HotelInstance{}, domain.ErrNotFound
	}
	applyFields(&h, fields)
	f.byID[id] = h
	return h, nil
}

func (f *fakeHotels) UpdateAllInstancesOfHotel(ctx context.Context, hotelID string, fields map[string]any) ([]domain.HotelInstance, error) {
	var out []domain.HotelInstance
	for id, h := range f.byID {
		if h.HotelID != hotelID {
			continue
		}
		applyFields(&h, fields)
		f.byID[id] = h
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeHotels) InTx(ctx context.Context, fn func(domain.HotelRepository) error) error {
	return fn(f)
}

func applyFields(h *domain.HotelInstance, fields map[string]any) {
	for name, v := range fields {
		switch name {
		case "hotelName":
			h.HotelName = v.(string)
		case "location":
			h.Location = v.(string)
		case "district":
			h.District = v.(string)
		case "address":
			h.Address = v.(string)
		case "pincode":
			h.Pincode = v.(string)
		case "startDate":
			h.StartDate = v.(time.Time)
		case "endDate":
			h.EndDate = v.(time.Time)
		case "totalRooms":
			h.TotalRooms = v.(int)
		case "occupiedRooms":
			h.OccupiedRooms = v.(int)
		case "availableRooms":
			h.AvailableRooms = v.(int)
		}
	}
}

// ---- in-memory participant repository ----

type fakeParticipants struct {
	seq    int64
	byPID  map[string]domain.Participant
	coaches map[string]domain.CoachUser
}

func newFakeParticipants() *fakeParticipants {
	return &fakeParticipants{byPID: map[string]domain.Participant{}, coaches: map[string]domain.CoachUser{}}
}

func (f *fakeParticipants) add(p domain.Participant) domain.Participant {
	created, err := f.CreateParticipant(context.Background(), p)
	if err != nil {
		panic(err)
	}
	return created
}

func (f *fakeParticipants) CreateParticipant(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	if _, ok := f.byPID[p.ParticipantID]; ok {
		return domain.Participant{}, &domain.DuplicateInstanceError{InstanceCode: p.ParticipantID}
	}
	f.seq++
	p.ID = f.seq
	if p.CheckinStatus == "" {
		p.CheckinStatus = domain.CheckinPending
	}
	f.byPID[p.ParticipantID] = p
	return p, nil
}

func (f *fakeParticipants) GetParticipant(ctx context.Context, participantID string) (domain.Participant, error) {
	p, ok := f.byPID[participantID]
	if !ok {
		return domain.Participant{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeParticipants) ListParticipants(ctx context.Context, q domain.ParticipantsQuery) ([]domain.Participant, error) {
	var out []domain.Participant
	for _, p := range f.byPID {
		if q.Role != "" && p.Role != q.Role {
			continue
		}
		if q.CoachID != "" && p.CoachID != q.CoachID {
			continue
		}
		if q.HotelID != "" && p.HotelID != q.HotelID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

func (f *fakeParticipants) UpdateCheckinState(ctx context.Context, p domain.Participant) error {
	stored, ok := f.byPID[p.ParticipantID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.CheckinStatus = p.CheckinStatus
	stored.CheckinTime = p.CheckinTime
	stored.CheckoutTime = p.CheckoutTime
	stored.ActualCheckoutDate = p.ActualCheckoutDate
	f.byPID[p.ParticipantID] = stored
	return nil
}

func (f *fakeParticipants) DeleteParticipant(ctx context.Context, participantID string) error {
	if _, ok := f.byPID[participantID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byPID, participantID)
	return nil
}

func (f *fakeParticipants) EnsureCoachUser(ctx context.Context, u domain.CoachUser) error {
	if _, ok := f.coaches[u.CoachID]; !ok {
		f.coaches[u.CoachID] = u
	}
	return nil
}

func (f *fakeParticipants) GetCoachUser(ctx context.Context, coachID string) (domain.CoachUser, error) {
	u, ok := f.coaches[coachID]
	if !ok {
		return domain.CoachUser{}, domain.ErrNotFound
	}
	return u, nil
}

// ---- boundary fakes ----

type recordingAudit struct{ entries []domain.AuditEntry }

func (a *recordingAudit) Append(ctx context.Context, e domain.AuditEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

func (a *recordingAudit) byAction(action string) []domain.AuditEntry {
	var out []domain.AuditEntry
	for _, e := range a.entries {
		if e.ActionType == action {
			out = append(out, e)
		}
	}
	return out
}

type fakeCache struct{ m map[string][]byte }

func newFakeCache() *fakeCache { return &fakeCache{m: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, _ := json.Marshal(v)
	c.m[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.m, key)
	return nil
}

type recordingNotifier struct{ batches [][]domain.Message }

func (n *recordingNotifier) Send(ctx context.Context, batch []domain.Message) (domain.DeliveryReport, error) {
	n.batches = append(n.batches, batch)
	return domain.DeliveryReport{Sent: len(batch)}, nil
}

type fakeStore struct{ m map[string]string }

func newFakeStore() *fakeStore { return &fakeStore{m: map[string]string{}} }

func (s *fakeStore) SetTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.m[key] = value
	return nil
}

func (s *fakeStore) GetString(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *fakeStore) Del(ctx context.Context, key string) error {
	delete(s.m, key)
	return nil
}

// ---- helpers shared across the app tests ----

func d(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }
