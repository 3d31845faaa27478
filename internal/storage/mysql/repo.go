package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo implements the hotel and participant repositories over raw SQL.
// Inside InTx the same type runs against the transaction.
type Repo struct {
	db *sql.DB // nil when tx-scoped
	ex executor
}

func New(db *sql.DB) *Repo { return &Repo{db: db, ex: db} }

func (r *Repo) InTx(ctx context.Context, fn func(domain.HotelRepository) error) error {
	if r.db == nil {
		// already transactional; nested calls share the outer tx
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Repo{ex: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ApplySchema creates the tables. Used by tests and first boot.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

const mysqlErrDuplicate = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicate
}

// ---- hotel instances ----

func (r *Repo) Create(ctx context.Context, h domain.HotelInstance) (domain.HotelInstance, error) {
	res, err := r.ex.ExecContext(ctx, insertInstanceSQL,
		h.HotelID, h.InstanceCode, h.HotelName, h.Location, h.District, h.Address, h.Pincode,
		domain.Day(h.StartDate), domain.Day(h.EndDate), h.TotalRooms, h.OccupiedRooms, h.AvailableRooms,
	)
	if err != nil {
		if isDuplicate(err) {
			return domain.HotelInstance{}, &domain.DuplicateInstanceError{HotelID: h.HotelID, InstanceCode: h.InstanceCode}
		}
		return domain.HotelInstance{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.HotelInstance{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) Get(ctx context.Context, hotelID, instanceCode string) (domain.HotelInstance, error) {
	row := r.ex.QueryRowContext(ctx, selectInstanceCols+"WHERE hotel_id = ? AND instance_code = ?", hotelID, instanceCode)
	return scanInstance(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (domain.HotelInstance, error) {
	row := r.ex.QueryRowContext(ctx, selectInstanceCols+"WHERE id = ?", id)
	return scanInstance(row)
}

func (r *Repo) List(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelInstance, error) {
	sqlStr := selectInstanceCols
	var args []any
	if q.HotelID != "" {
		sqlStr += "WHERE hotel_id = ? "
		args = append(args, q.HotelID)
	}
	sqlStr += "ORDER BY hotel_id, start_date"
	if q.Limit > 0 {
		sqlStr += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return r.queryInstances(ctx, sqlStr, args...)
}

func (r *Repo) ListByHotel(ctx context.Context, hotelID string) ([]domain.HotelInstance, error) {
	return r.queryInstances(ctx, selectInstanceCols+"WHERE hotel_id = ? ORDER BY start_date", hotelID)
}

func (r *Repo) UpdateFields(ctx context.Context, id int64, fields map[string]any) (domain.HotelInstance, error) {
	set, args, err := buildSet(fields)
	if err != nil {
		return domain.HotelInstance{}, err
	}
	args = append(args, id)
	res, err := r.ex.ExecContext(ctx, "UPDATE hotel_instances SET "+set+" WHERE id = ?", args...)
	if err != nil {
		return domain.HotelInstance{}, err
	}
	// MySQL reports 0 affected rows for a no-op update too, so existence
	// is decided by the re-read, not RowsAffected.
	_ = res
	return r.GetByID(ctx, id)
}

func (r *Repo) UpdateAllInstancesOfHotel(ctx context.Context, hotelID string, fields map[string]any) ([]domain.HotelInstance, error) {
	set, args, err := buildSet(fields)
	if err != nil {
		return nil, err
	}
	args = append(args, hotelID)
	if _, err := r.ex.ExecContext(ctx, "UPDATE hotel_instances SET "+set+" WHERE hotel_id = ?", args...); err != nil {
		return nil, err
	}
	return r.ListByHotel(ctx, hotelID)
}

// buildSet renders "col = ?, col = ?" from whitelisted field names in a
// stable order.
func buildSet(fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, domain.Invalid("no fields to update")
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := hotelColumns[name]; !ok {
			return "", nil, domain.Invalid("unknown field %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		parts = append(parts, hotelColumns[name]+" = ?")
		args = append(args, fields[name])
	}
	return strings.Join(parts, ", "), args, nil
}

func (r *Repo) queryInstances(ctx context.Context, sqlStr string, args ...any) ([]domain.HotelInstance, error) {
	rows, err := r.ex.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelInstance
	for rows.Next() {
		h, err := scanInstanceRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanInto(s rowScanner) (domain.HotelInstance, error) {
	var h domain.HotelInstance
	err := s.Scan(
		&h.ID, &h.HotelID, &h.InstanceCode, &h.HotelName, &h.Location, &h.District,
		&h.Address, &h.Pincode, &h.StartDate, &h.EndDate,
		&h.TotalRooms, &h.OccupiedRooms, &h.AvailableRooms, &h.CreatedAt,
	)
	return h, err
}

func scanInstance(row *sql.Row) (domain.HotelInstance, error) {
	h, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HotelInstance{}, domain.ErrNotFound
	}
	return h, err
}

func scanInstanceRows(rows *sql.Rows) (domain.HotelInstance, error) {
	return scanInto(rows)
}
