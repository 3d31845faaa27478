package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

func (r *Repo) CreateParticipant(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	_, err := r.ex.ExecContext(ctx, insertParticipantSQL,
		p.ParticipantID, p.Name, string(p.Role), p.CoachID, p.Mobile, p.HotelID, p.HotelName,
		domain.Day(p.BookingStartDate), domain.Day(p.BookingEndDate), p.BookingReference,
	)
	if err != nil {
		if isDuplicate(err) {
			return domain.Participant{}, &domain.DuplicateInstanceError{HotelID: p.HotelID, InstanceCode: p.ParticipantID}
		}
		return domain.Participant{}, err
	}
	return r.GetParticipant(ctx, p.ParticipantID)
}

func (r *Repo) GetParticipant(ctx context.Context, participantID string) (domain.Participant, error) {
	row := r.ex.QueryRowContext(ctx, selectParticipantCols+"WHERE participant_id = ?", participantID)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Participant{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repo) ListParticipants(ctx context.Context, q domain.ParticipantsQuery) ([]domain.Participant, error) {
	sqlStr := selectParticipantCols + "WHERE 1=1"
	var args []any
	if q.Role != "" {
		sqlStr += " AND role = ?"
		args = append(args, string(q.Role))
	}
	if q.CoachID != "" {
		sqlStr += " AND coach_id = ?"
		args = append(args, q.CoachID)
	}
	if q.HotelID != "" {
		sqlStr += " AND hotel_id = ?"
		args = append(args, q.HotelID)
	}
	sqlStr += " ORDER BY participant_id"
	if q.Limit > 0 {
		sqlStr += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.ex.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateCheckinState(ctx context.Context, p domain.Participant) error {
	var checkout any
	if p.ActualCheckoutDate != nil {
		checkout = domain.Day(*p.ActualCheckoutDate)
	}
	res, err := r.ex.ExecContext(ctx, updateCheckinStateSQL,
		string(p.CheckinStatus), nullTime(p.CheckinTime), nullTime(p.CheckoutTime), checkout, p.ParticipantID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// distinguish missing participant from a no-op write
		if _, gerr := r.GetParticipant(ctx, p.ParticipantID); gerr != nil {
			return gerr
		}
	}
	return nil
}

func (r *Repo) DeleteParticipant(ctx context.Context, participantID string) error {
	res, err := r.ex.ExecContext(ctx, "DELETE FROM participants WHERE participant_id = ?", participantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) EnsureCoachUser(ctx context.Context, u domain.CoachUser) error {
	_, err := r.ex.ExecContext(ctx, insertCoachUserSQL, u.CoachID, u.Name, u.Mobile)
	return err
}

func (r *Repo) GetCoachUser(ctx context.Context, coachID string) (domain.CoachUser, error) {
	row := r.ex.QueryRowContext(ctx,
		"SELECT id, coach_id, name, mobile, created_at FROM coach_users WHERE coach_id = ?", coachID)
	var u domain.CoachUser
	err := row.Scan(&u.ID, &u.CoachID, &u.Name, &u.Mobile, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CoachUser{}, domain.ErrNotFound
	}
	return u, err
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func scanParticipant(s rowScanner) (domain.Participant, error) {
	var p domain.Participant
	var role, status string
	var checkin, checkout, actual sql.NullTime
	err := s.Scan(
		&p.ID, &p.ParticipantID, &p.Name, &role, &p.CoachID, &p.Mobile, &p.HotelID, &p.HotelName,
		&p.BookingStartDate, &p.BookingEndDate, &p.BookingReference,
		&status, &checkin, &checkout, &actual, &p.CreatedAt,
	)
	if err != nil {
		return domain.Participant{}, err
	}
	p.Role = domain.Role(role)
	p.CheckinStatus = domain.CheckinStatus(status)
	if checkin.Valid {
		t := checkin.Time
		p.CheckinTime = &t
	}
	if checkout.Valid {
		t := checkout.Time
		p.CheckoutTime = &t
	}
	if actual.Valid {
		t := actual.Time
		p.ActualCheckoutDate = &t
	}
	return p, nil
}
