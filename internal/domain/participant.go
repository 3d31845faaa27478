package domain

import "time"

type Role string

const (
	RoleCoach    Role = "coach"
	RoleOfficial Role = "official"
	RolePlayer   Role = "player"
)

type CheckinStatus string

const (
	CheckinPending CheckinStatus = "pending"
	CheckedIn      CheckinStatus = "checked_in"
	CheckedOut     CheckinStatus = "checked_out"
)

// Participant is a coach, official or player with an accommodation booking.
// ParticipantID is the human-readable natural key ("COA_001"); players
// reference their owning coach through CoachID.
type Participant struct {
	ID                 int64         `json:"id"`
	ParticipantID      string        `json:"participantId"`
	Name               string        `json:"name"`
	Role               Role          `json:"role"`
	CoachID            string        `json:"coachId,omitempty"` // empty for coaches/officials
	Mobile             string        `json:"mobile,omitempty"`
	HotelID            string        `json:"hotelId"`
	HotelName          string        `json:"hotelName"`
	BookingStartDate   time.Time     `json:"bookingStartDate"`
	BookingEndDate     time.Time     `json:"bookingEndDate"`
	BookingReference   string        `json:"bookingReference"`
	CheckinStatus      CheckinStatus `json:"checkinStatus"`
	CheckinTime        *time.Time    `json:"checkinTime,omitempty"`
	CheckoutTime       *time.Time    `json:"checkoutTime,omitempty"`
	ActualCheckoutDate *time.Time    `json:"actualCheckoutDate,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// OwnedBy reports whether coachID may act on this participant: either the
// participant belongs to that coach or it is the coach's own record.
func (p Participant) OwnedBy(coachID string) bool {
	return p.CoachID == coachID || p.ParticipantID == coachID
}

// CoachUser is the login account auto-created for COACH upload rows.
type CoachUser struct {
	ID        int64
	CoachID   string
	Name      string
	Mobile    string
	CreatedAt time.Time
}
