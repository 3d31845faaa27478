package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/greator25/Ievolve-mvp1.0/internal/app"
	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// uploads are pipe-separated text; a whole tournament roster fits well
// under this.
const maxUploadBytes = 8 << 20

type Handlers struct {
	Hotels  *app.HotelService
	Q       *app.QueryService
	Uploads *app.UploadService
	Checkin *app.CheckinService
	OTP     *app.OTPService

	validate *validator.Validate
}

func NewHandlers(hotels *app.HotelService, q *app.QueryService, uploads *app.UploadService, checkin *app.CheckinService, otp *app.OTPService) *Handlers {
	return &Handlers{
		Hotels:   hotels,
		Q:        q,
		Uploads:  uploads,
		Checkin:  checkin,
		OTP:      otp,
		validate: validator.New(),
	}
}

type problem struct {
	Type      string               `json:"type"`
	Title     string               `json:"title"`
	Status    int                  `json:"status"`
	Detail    string               `json:"detail,omitempty"`
	Conflicts []domain.InstanceRef `json:"conflicts,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/hotels", h.listHotels)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Patch("/v1/hotels/{id}", h.patchHotel)

	s.mux.Post("/v1/uploads/hotels", h.uploadHotels)
	s.mux.Post("/v1/uploads/coaches", h.uploadCoaches)
	s.mux.Post("/v1/uploads/players", h.uploadPlayers)

	s.mux.Get("/v1/participants", h.listParticipants)
	s.mux.Get("/v1/participants/{id}", h.getParticipant)
	s.mux.Post("/v1/participants/checkin", h.checkIn)
	s.mux.Post("/v1/participants/checkout", h.checkOut)
	s.mux.Post("/v1/participants/early-checkout", h.earlyCheckout)

	s.mux.Post("/v1/auth/otp/issue", h.issueOTP)
	s.mux.Post("/v1/auth/otp/verify", h.verifyOTP)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemConflicts(w, status, title, detail, nil)
}

func writeProblemConflicts(w http.ResponseWriter, status int, title, detail string, conflicts []domain.InstanceRef) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Conflicts: conflicts}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps domain errors to problem responses.
func writeError(w http.ResponseWriter, err error) {
	var conflict *domain.DateConflictError
	var dup *domain.DuplicateInstanceError
	var invalid *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &conflict):
		writeProblemConflicts(w, http.StatusConflict, "Date Conflict", err.Error(), conflict.Conflicts)
	case errors.As(err, &dup):
		writeProblem(w, http.StatusConflict, "Duplicate Instance", err.Error())
	case errors.As(err, &invalid):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// decode unmarshals and validates a JSON request body.
func (h *Handlers) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("malformed request body: %v", err)
	}
	if err := h.validate.Struct(v); err != nil {
		return domain.Invalid("%v", err)
	}
	return nil
}

// userID identifies who performed a mutation, for the audit trail.
// Authentication proper lives at the gateway; the header is trusted here.
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-Id"); id != "" {
		return id
	}
	return "system"
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- hotels ----

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	view, err := h.Q.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, view)
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	q := domain.HotelsQuery{
		HotelID: r.URL.Query().Get("hotelId"),
		Status:  domain.HotelStatus(r.URL.Query().Get("status")),
	}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 500 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		q.Limit = l
	}
	switch q.Status {
	case "", domain.StatusUpcoming, domain.StatusActive, domain.StatusExpired:
	default:
		writeProblem(w, http.StatusBadRequest, "Invalid status", "status must be upcoming, active or expired")
		return
	}
	views, err := h.Q.ListHotels(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, views)
}

type patchHotelRequest struct {
	HotelName      *string `json:"hotelName"`
	Location       *string `json:"location"`
	District       *string `json:"district"`
	Address        *string `json:"address"`
	Pincode        *string `json:"pincode" validate:"omitempty,numeric"`
	StartDate      *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate        *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	TotalRooms     *int    `json:"totalRooms" validate:"omitempty,gte=0"`
	OccupiedRooms  *int    `json:"occupiedRooms" validate:"omitempty,gte=0"`
	AvailableRooms *int    `json:"availableRooms" validate:"omitempty,gte=0"`
}

func (req patchHotelRequest) patch() (domain.HotelPatch, error) {
	p := domain.HotelPatch{
		HotelName:      req.HotelName,
		Location:       req.Location,
		District:       req.District,
		Address:        req.Address,
		Pincode:        req.Pincode,
		TotalRooms:     req.TotalRooms,
		OccupiedRooms:  req.OccupiedRooms,
		AvailableRooms: req.AvailableRooms,
	}
	if req.StartDate != nil {
		t, err := domain.ParseDate(*req.StartDate)
		if err != nil {
			return p, domain.Invalid("startDate: %v", err)
		}
		p.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := domain.ParseDate(*req.EndDate)
		if err != nil {
			return p, domain.Invalid("endDate: %v", err)
		}
		p.EndDate = &t
	}
	return p, nil
}

func (h *Handlers) patchHotel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var req patchHotelRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Hotels.Update(r.Context(), id, patch, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ---- uploads ----

func (h *Handlers) uploadHotels(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.Uploads.ImportHotels)
}

func (h *Handlers) uploadCoaches(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.Uploads.ImportCoaches)
}

func (h *Handlers) uploadPlayers(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.Uploads.ImportPlayers)
}

func (h *Handlers) upload(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, content, userID string) app.UploadResult) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Unreadable Body", err.Error())
		return
	}
	if len(body) == 0 {
		writeProblem(w, http.StatusBadRequest, "Empty Upload", "request body must contain pipe-separated rows")
		return
	}
	res := run(r.Context(), string(body), userID(r))
	writeJSON(w, http.StatusOK, res)
}

// ---- participants ----

func (h *Handlers) getParticipant(w http.ResponseWriter, r *http.Request) {
	p, err := h.Q.GetParticipant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, p)
}

func (h *Handlers) listParticipants(w http.ResponseWriter, r *http.Request) {
	q := domain.ParticipantsQuery{
		Role:    domain.Role(r.URL.Query().Get("role")),
		CoachID: r.URL.Query().Get("coachId"),
		HotelID: r.URL.Query().Get("hotelId"),
	}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 1000 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 1000")
			return
		}
		q.Limit = l
	}
	out, err := h.Q.ListParticipants(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

type checkinRequest struct {
	ParticipantIDs []string `json:"participantIds" validate:"required,min=1,dive,required"`
	CoachID        string   `json:"coachId"`
}

func (h *Handlers) checkIn(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Checkin.CheckIn(r.Context(), req.ParticipantIDs, req.CoachID, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type checkoutRequest struct {
	ParticipantIDs  []string `json:"participantIds" validate:"required,min=1,dive,required"`
	CoachID         string   `json:"coachId"`
	NewCheckoutDate string   `json:"newCheckoutDate" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handlers) checkOut(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var newDate *time.Time
	if req.NewCheckoutDate != "" {
		t, err := domain.ParseDate(req.NewCheckoutDate)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Validation Failed", "newCheckoutDate: "+err.Error())
			return
		}
		newDate = &t
	}
	res, err := h.Checkin.CheckOut(r.Context(), req.ParticipantIDs, newDate, req.CoachID, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type earlyCheckoutRequest struct {
	ParticipantIDs  []string `json:"participantIds" validate:"required,min=1,dive,required"`
	NewCheckoutDate string   `json:"newCheckoutDate" validate:"required,datetime=2006-01-02"`
}

func (h *Handlers) earlyCheckout(w http.ResponseWriter, r *http.Request) {
	var req earlyCheckoutRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	day, err := domain.ParseDate(req.NewCheckoutDate)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "newCheckoutDate: "+err.Error())
		return
	}
	res, err := h.Checkin.EarlyCheckout(r.Context(), req.ParticipantIDs, day, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ---- OTP auth ----

type otpIssueRequest struct {
	CoachID string `json:"coachId" validate:"required"`
}

func (h *Handlers) issueOTP(w http.ResponseWriter, r *http.Request) {
	var req otpIssueRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.OTP.Issue(r.Context(), req.CoachID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type otpVerifyRequest struct {
	CoachID string `json:"coachId" validate:"required"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
}

func (h *Handlers) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ok, err := h.OTP.Verify(r.Context(), req.CoachID, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": ok})
}
