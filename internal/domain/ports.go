package domain

import (
	"context"
	"time"
)

type HotelRepository interface {
	// Write paths
	Create(ctx context.Context, h HotelInstance) (HotelInstance, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) (HotelInstance, error)
	UpdateAllInstancesOfHotel(ctx context.Context, hotelID string, fields map[string]any) ([]HotelInstance, error)

	// Read paths
	Get(ctx context.Context, hotelID, instanceCode string) (HotelInstance, error)
	GetByID(ctx context.Context, id int64) (HotelInstance, error)
	List(ctx context.Context, q HotelsQuery) ([]HotelInstance, error)
	ListByHotel(ctx context.Context, hotelID string) ([]HotelInstance, error)

	// InTx runs fn against a transaction-scoped repository. The update
	// reconciler's check-then-write depends on this being one unit.
	InTx(ctx context.Context, fn func(HotelRepository) error) error
}

// ParticipantRepository method names carry the entity so a single storage
// type can satisfy this and HotelRepository together.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, p Participant) (Participant, error)
	GetParticipant(ctx context.Context, participantID string) (Participant, error)
	ListParticipants(ctx context.Context, q ParticipantsQuery) ([]Participant, error)
	// UpdateCheckinState persists status, timestamps and actual checkout date.
	UpdateCheckinState(ctx context.Context, p Participant) error
	DeleteParticipant(ctx context.Context, participantID string) error

	EnsureCoachUser(ctx context.Context, u CoachUser) error
	GetCoachUser(ctx context.Context, coachID string) (CoachUser, error)
}

// AuditSink is persist-and-forget: implementations may fail, callers only log.
type AuditSink interface {
	Append(ctx context.Context, e AuditEntry) error
}

// Message is an outbound notification payload. Delivery lives behind
// Notifier; the core only builds message text.
type Message struct {
	To   string `json:"to"`
	Body string `json:"message"`
}

type DeliveryReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type Notifier interface {
	Send(ctx context.Context, batch []Message) (DeliveryReport, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ExpiringStore is a plain key-value store with TTL semantics (OTP codes).
// Backed by redis here; the abstraction keeps it swappable for any
// distributed store.
type ExpiringStore interface {
	SetTTL(ctx context.Context, key, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, key string) error
}

// Queries

type HotelsQuery struct {
	HotelID string
	Status  HotelStatus // derived filter, applied above storage
	On      time.Time   // reference date for Status; zero means now
	Limit   int
}

type ParticipantsQuery struct {
	Role    Role
	CoachID string
	HotelID string
	Limit   int
}
