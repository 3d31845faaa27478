package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/greator25/Ievolve-mvp1.0/internal/adapters/observability"
	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// UploadService ingests pipe-separated sheets: hotel inventory,
// coach/official bookings, player bookings. Rows are independent; an error
// on one row is collected and processing continues.
type UploadService struct {
	hotels       domain.HotelRepository
	participants domain.ParticipantRepository
	audit        domain.AuditSink
	now          func() time.Time
	newRef       func() string
}

func NewUploadService(hotels domain.HotelRepository, participants domain.ParticipantRepository, audit domain.AuditSink) *UploadService {
	return &UploadService{
		hotels:       hotels,
		participants: participants,
		audit:        audit,
		now:          time.Now,
		newRef:       uuid.NewString,
	}
}

type UploadResult struct {
	Success  bool     `json:"success"`
	Created  int      `json:"created"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

const MinStayNights = 3

var hotelHeaders = []string{
	"hotelId", "instanceCode", "hotelName", "location", "district",
	"address", "pincode", "startDate", "endDate", "totalRooms",
}

var coachHeaders = []string{
	"participantId", "name", "role", "mobile", "hotelId",
	"bookingStartDate", "bookingEndDate",
}

var playerHeaders = []string{
	"participantId", "name", "coachId", "mobile", "hotelId",
	"bookingStartDate", "bookingEndDate",
}

// ImportHotels loads the hotel inventory sheet. A bad header set fails the
// whole upload; everything after that is per-row.
func (s *UploadService) ImportHotels(ctx context.Context, content, userID string) UploadResult {
	sheet, err := parsePSV(content, hotelHeaders)
	if err != nil {
		return UploadResult{Errors: []string{err.Error()}}
	}

	res := UploadResult{}
	resolver := NewResolver(s.hotels)
	for i, row := range sheet.rows {
		line := i + 2 // 1-based, after the header
		hotelID, code := row["hotelId"], row["instanceCode"]
		if hotelID == "" || code == "" {
			res.fail("hotels", fmt.Sprintf("row %d: hotelId and instanceCode are required", line))
			continue
		}
		if _, err := s.hotels.Get(ctx, hotelID, code); err == nil {
			res.warn("hotels", fmt.Sprintf("row %d: instance %s/%s already exists, skipped", line, hotelID, code))
			continue
		} else if err != domain.ErrNotFound {
			res.fail("hotels", fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		start, end, err := parseRange(row["startDate"], row["endDate"])
		if err != nil {
			res.fail("hotels", fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		overlaps, err := resolver.FindOverlaps(ctx, hotelID, start, end, "")
		if err != nil {
			res.fail("hotels", fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		if len(overlaps) > 0 {
			res.fail("hotels", fmt.Sprintf("row %d: dates %s..%s overlap existing instance %s of hotel %s",
				line, row["startDate"], row["endDate"], overlaps[0].InstanceCode, hotelID))
			continue
		}

		total, err := atoiField(row, "totalRooms")
		if err != nil {
			res.fail("hotels", fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		occupied, _ := strconv.Atoi(row["occupiedRooms"]) // optional column
		inst := domain.HotelInstance{
			HotelID:        hotelID,
			InstanceCode:   code,
			HotelName:      row["hotelName"],
			Location:       row["location"],
			District:       row["district"],
			Address:        row["address"],
			Pincode:        row["pincode"],
			StartDate:      start,
			EndDate:        end,
			TotalRooms:     total,
			OccupiedRooms:  occupied,
			AvailableRooms: total - occupied,
		}
		if _, err := s.hotels.Create(ctx, inst); err != nil {
			res.fail("hotels", fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		res.Created++
		observability.ObserveUploadRow("hotels", "created")
	}
	res.Success = len(res.Errors) == 0
	s.appendAudit(ctx, userID, domain.ActionHotelUpload, "hotel", res, len(sheet.rows))
	return res
}

// ImportCoaches loads the coach/official sheet. COACH rows also get a
// login account if one is missing.
func (s *UploadService) ImportCoaches(ctx context.Context, content, userID string) UploadResult {
	sheet, err := parsePSV(content, coachHeaders)
	if err != nil {
		return UploadResult{Errors: []string{err.Error()}}
	}

	res := UploadResult{}
	for i, row := range sheet.rows {
		line := i + 2
		role, ok := parseStaffRole(row["role"])
		if !ok {
			res.fail("coaches", fmt.Sprintf("row %d: role must be COACH or OFFICIAL, got %q", line, row["role"]))
			continue
		}
		p, failMsg := s.buildBooking(ctx, row, role)
		if failMsg != "" {
			res.fail("coaches", fmt.Sprintf("row %d: %s", line, failMsg))
			continue
		}
		if s.exists(ctx, p.ParticipantID) {
			res.warn("coaches", fmt.Sprintf("row %d: participant %s already exists, skipped", line, p.ParticipantID))
			continue
		}
		if _, err := s.participants.CreateParticipant(ctx, p); err != nil {
			res.fail("coaches", fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		if role == domain.RoleCoach {
			u := domain.CoachUser{CoachID: p.ParticipantID, Name: p.Name, Mobile: p.Mobile}
			if err := s.participants.EnsureCoachUser(ctx, u); err != nil {
				res.warn("coaches", fmt.Sprintf("row %d: coach account for %s not created: %v", line, p.ParticipantID, err))
			}
		}
		res.Created++
		observability.ObserveUploadRow("coaches", "created")
	}
	res.Success = len(res.Errors) == 0
	s.appendAudit(ctx, userID, domain.ActionParticipantUpload, "coach", res, len(sheet.rows))
	return res
}

// ImportPlayers loads the players sheet. Every row must reference an
// existing coach and hotel.
func (s *UploadService) ImportPlayers(ctx context.Context, content, userID string) UploadResult {
	sheet, err := parsePSV(content, playerHeaders)
	if err != nil {
		return UploadResult{Errors: []string{err.Error()}}
	}

	res := UploadResult{}
	for i, row := range sheet.rows {
		line := i + 2
		coachID := row["coachId"]
		if coachID == "" {
			res.fail("players", fmt.Sprintf("row %d: coachId is required", line))
			continue
		}
		if _, err := s.participants.GetParticipant(ctx, coachID); err != nil {
			res.fail("players", fmt.Sprintf("row %d: coach %s not found", line, coachID))
			continue
		}
		p, failMsg := s.buildBooking(ctx, row, domain.RolePlayer)
		if failMsg != "" {
			res.fail("players", fmt.Sprintf("row %d: %s", line, failMsg))
			continue
		}
		p.CoachID = coachID
		if s.exists(ctx, p.ParticipantID) {
			res.warn("players", fmt.Sprintf("row %d: participant %s already exists, skipped", line, p.ParticipantID))
			continue
		}
		if _, err := s.participants.CreateParticipant(ctx, p); err != nil {
			res.fail("players", fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		res.Created++
		observability.ObserveUploadRow("players", "created")
	}
	res.Success = len(res.Errors) == 0
	s.appendAudit(ctx, userID, domain.ActionParticipantUpload, "player", res, len(sheet.rows))
	return res
}

// buildBooking validates the shared booking columns of a participant row.
// A non-empty return message is the row-level rejection reason.
func (s *UploadService) buildBooking(ctx context.Context, row map[string]string, role domain.Role) (domain.Participant, string) {
	pid := row["participantId"]
	if pid == "" {
		return domain.Participant{}, "participantId is required"
	}
	hotelID := row["hotelId"]
	if hotelID == "" {
		return domain.Participant{}, "hotelId is required"
	}
	instances, err := s.hotels.ListByHotel(ctx, hotelID)
	if err != nil {
		return domain.Participant{}, err.Error()
	}
	if len(instances) == 0 {
		return domain.Participant{}, fmt.Sprintf("hotel %s not found in inventory", hotelID)
	}
	start, end, err := parseRange(row["bookingStartDate"], row["bookingEndDate"])
	if err != nil {
		return domain.Participant{}, err.Error()
	}
	if domain.StayNights(start, end) < MinStayNights {
		return domain.Participant{}, fmt.Sprintf("booking %s..%s is shorter than the %d-day minimum stay",
			row["bookingStartDate"], row["bookingEndDate"], MinStayNights)
	}
	return domain.Participant{
		ParticipantID:    pid,
		Name:             row["name"],
		Role:             role,
		Mobile:           row["mobile"],
		HotelID:          hotelID,
		HotelName:        instances[0].HotelName,
		BookingStartDate: start,
		BookingEndDate:   end,
		BookingReference: s.newRef(),
		CheckinStatus:    domain.CheckinPending,
	}, ""
}

func (s *UploadService) exists(ctx context.Context, participantID string) bool {
	_, err := s.participants.GetParticipant(ctx, participantID)
	return err == nil
}

func (s *UploadService) appendAudit(ctx context.Context, userID, action, sheet string, res UploadResult, rows int) {
	if s.audit == nil {
		return
	}
	e := domain.AuditEntry{
		EntryID:      uuid.NewString(),
		UserID:       userID,
		ActionType:   action,
		TargetEntity: sheet,
		Details: map[string]any{
			"rows":     rows,
			"created":  res.Created,
			"errors":   len(res.Errors),
			"warnings": len(res.Warnings),
		},
		Timestamp: s.now(),
	}
	if err := s.audit.Append(ctx, e); err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit append failed")
	}
}

func (r *UploadResult) fail(sheet, msg string) {
	r.Errors = append(r.Errors, msg)
	observability.ObserveUploadRow(sheet, "error")
}

func (r *UploadResult) warn(sheet, msg string) {
	r.Warnings = append(r.Warnings, msg)
	observability.ObserveUploadRow(sheet, "warning")
}

func parseStaffRole(s string) (domain.Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COACH":
		return domain.RoleCoach, true
	case "OFFICIAL":
		return domain.RoleOfficial, true
	default:
		return "", false
	}
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := domain.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad start date %q", startStr)
	}
	end, err := domain.ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad end date %q", endStr)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is not after start date %s", endStr, startStr)
	}
	return start, end, nil
}

func atoiField(row map[string]string, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(row[name]))
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", name, row[name])
	}
	return n, nil
}

// ---- pipe-separated parsing ----

type psvSheet struct {
	header []string
	rows   []map[string]string
}

// parsePSV splits pipe-separated content, requiring the first row to carry
// every name in required. Extra columns are kept and addressable by name.
func parsePSV(content string, required []string) (psvSheet, error) {
	lines := splitLines(content)
	if len(lines) == 0 {
		return psvSheet{}, domain.Invalid("upload is empty")
	}
	header := splitRow(lines[0])
	have := map[string]int{}
	for i, h := range header {
		have[h] = i
	}
	var missing []string
	for _, req := range required {
		if _, ok := have[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return psvSheet{}, domain.Invalid("missing required headers: %s", strings.Join(missing, ", "))
	}

	sheet := psvSheet{header: header}
	for _, line := range lines[1:] {
		cells := splitRow(line)
		row := map[string]string{}
		for name, idx := range have {
			if idx < len(cells) {
				row[name] = cells[idx]
			}
		}
		sheet.rows = append(sheet.rows, row)
	}
	return sheet, nil
}

func splitLines(content string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func splitRow(line string) []string {
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}
