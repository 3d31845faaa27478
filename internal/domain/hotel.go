package domain

import "time"

// HotelInstance is one bookable time window of a physical hotel property.
// Several instances can share a HotelID; each carries its own dates and
// room counts while the property-wide attributes must stay identical
// across the group.
type HotelInstance struct {
	ID             int64     `json:"id"`
	HotelID        string    `json:"hotelId"`
	InstanceCode   string    `json:"instanceCode"`
	HotelName      string    `json:"hotelName"`
	Location       string    `json:"location"`
	District       string    `json:"district"`
	Address        string    `json:"address"`
	Pincode        string    `json:"pincode"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	TotalRooms     int       `json:"totalRooms"`
	OccupiedRooms  int       `json:"occupiedRooms"`
	AvailableRooms int       `json:"availableRooms"`
	CreatedAt      time.Time `json:"createdAt"`
}

// InstanceRef is the slice of an instance carried inside a DateConflictError
// so callers can render what clashed.
type InstanceRef struct {
	ID           int64     `json:"id"`
	InstanceCode string    `json:"instanceCode"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
}

func (h HotelInstance) Ref() InstanceRef {
	return InstanceRef{ID: h.ID, InstanceCode: h.InstanceCode, StartDate: h.StartDate, EndDate: h.EndDate}
}

// FieldScope classifies a patch field as shared across all instances of a
// hotel or owned by a single instance.
type FieldScope int

const (
	PropertyWide FieldScope = iota
	InstanceSpecific
)

// FieldScopes is the declarative classification table consulted by the
// update reconciler. hotelName stays instance-specific; see DESIGN.md.
var FieldScopes = map[string]FieldScope{
	"address":  PropertyWide,
	"location": PropertyWide,
	"pincode":  PropertyWide,
	"district": PropertyWide,

	"hotelName":      InstanceSpecific,
	"startDate":      InstanceSpecific,
	"endDate":        InstanceSpecific,
	"totalRooms":     InstanceSpecific,
	"occupiedRooms":  InstanceSpecific,
	"availableRooms": InstanceSpecific,
}

// HotelStatus is derived from the instance dates, never stored.
type HotelStatus string

const (
	StatusUpcoming HotelStatus = "upcoming"
	StatusActive   HotelStatus = "active"
	StatusExpired  HotelStatus = "expired"
)

// StatusOn derives the instance status for a given moment. Comparison is
// date-only: both sides are truncated to midnight.
func (h HotelInstance) StatusOn(now time.Time) HotelStatus {
	today := Day(now)
	switch {
	case today.Before(Day(h.StartDate)):
		return StatusUpcoming
	case today.After(Day(h.EndDate)):
		return StatusExpired
	default:
		return StatusActive
	}
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RangesOverlap reports whether [s1,e1] and [s2,e2] overlap. Boundaries are
// inclusive: an instance ending the day another starts counts as a clash.
func RangesOverlap(s1, e1, s2, e2 time.Time) bool {
	return !Day(s1).After(Day(e2)) && !Day(s2).After(Day(e1))
}

// StayNights is the whole-day span of a booking, rounded up.
func StayNights(start, end time.Time) int {
	d := Day(end).Sub(Day(start))
	n := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		n++
	}
	return n
}

const DateLayout = "2006-01-02"

// ParseDate parses a date-only value (2006-01-02) into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// HotelPatch is an incoming partial update for one instance. Nil means
// "leave the field alone".
type HotelPatch struct {
	HotelName      *string
	Location       *string
	District       *string
	Address        *string
	Pincode        *string
	StartDate      *time.Time
	EndDate        *time.Time
	TotalRooms     *int
	OccupiedRooms  *int
	AvailableRooms *int
}

// Fields flattens the patch into field-name keyed values, using the same
// names FieldScopes is keyed by. Dates are normalized to midnight UTC.
func (p HotelPatch) Fields() map[string]any {
	out := map[string]any{}
	if p.HotelName != nil {
		out["hotelName"] = *p.HotelName
	}
	if p.Location != nil {
		out["location"] = *p.Location
	}
	if p.District != nil {
		out["district"] = *p.District
	}
	if p.Address != nil {
		out["address"] = *p.Address
	}
	if p.Pincode != nil {
		out["pincode"] = *p.Pincode
	}
	if p.StartDate != nil {
		out["startDate"] = Day(*p.StartDate)
	}
	if p.EndDate != nil {
		out["endDate"] = Day(*p.EndDate)
	}
	if p.TotalRooms != nil {
		out["totalRooms"] = *p.TotalRooms
	}
	if p.OccupiedRooms != nil {
		out["occupiedRooms"] = *p.OccupiedRooms
	}
	if p.AvailableRooms != nil {
		out["availableRooms"] = *p.AvailableRooms
	}
	return out
}

// FieldValue returns the instance's current value for a patch field name.
func (h HotelInstance) FieldValue(name string) any {
	switch name {
	case "hotelName":
		return h.HotelName
	case "location":
		return h.Location
	case "district":
		return h.District
	case "address":
		return h.Address
	case "pincode":
		return h.Pincode
	case "startDate":
		return Day(h.StartDate)
	case "endDate":
		return Day(h.EndDate)
	case "totalRooms":
		return h.TotalRooms
	case "occupiedRooms":
		return h.OccupiedRooms
	case "availableRooms":
		return h.AvailableRooms
	default:
		return nil
	}
}
