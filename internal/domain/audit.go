package domain

import "time"

// AuditEntry is the append-only record produced by every mutating
// operation. Persistence is a collaborator concern: sinks never fail the
// operation that emitted the entry.
type AuditEntry struct {
	EntryID      string         `json:"entryId"`
	UserID       string         `json:"userId"`
	ActionType   string         `json:"actionType"`
	TargetEntity string         `json:"targetEntity"`
	TargetID     string         `json:"targetId,omitempty"`
	Details      map[string]any `json:"details"`
	Timestamp    time.Time      `json:"timestamp"`
}

const (
	ActionHotelPropertyUpdate = "hotel_property_update"
	ActionHotelInstanceUpdate = "hotel_instance_update"
	ActionHotelUpload         = "hotel_upload"
	ActionParticipantUpload   = "participant_upload"
	ActionCheckin             = "checkin"
	ActionCheckout            = "checkout"
	ActionEarlyCheckout       = "early_checkout"
)
