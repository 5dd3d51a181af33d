package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
)

// Fields maps the shared list filters onto the bookings query.
var Fields = listing.FieldMap{
	StatusColumn:  "b.status",
	SearchColumns: []string{"b.postcode", "b.address", "p.name"},
	DateColumn:    "b.created_at",
	SortColumns: map[string]string{
		"created_at":      "b.created_at",
		"collection_time": "b.collection_time",
		"postcode":        "b.postcode",
		"status":          "b.status",
	},
	DefaultSort: "created_at",
}

// BookingRepository defines the data access contract for bookings.
type BookingRepository interface {
	// List returns every valid booking matching the filters.
	List(ctx context.Context, f listing.Filters) ([]Booking, error)

	FindByID(ctx context.Context, id string) (*Booking, error)

	// UpdateStatus sets one booking's status.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// UpdateStatusBulk sets the status of every booking in ids in one
	// transaction and returns the previous status of each updated booking.
	UpdateStatusBulk(ctx context.Context, ids []string, status Status) (map[string]Status, error)

	// CountByStatus returns the number of bookings in each status.
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type bookingRepository struct {
	db         *sql.DB
	translator *listing.Translator
}

// NewBookingRepository creates a new repository backed by the given DB pool.
func NewBookingRepository(db *sql.DB, translator *listing.Translator) BookingRepository {
	return &bookingRepository{db: db, translator: translator}
}

const bookingSelect = `SELECT b.id, b.user_id, COALESCE(p.name, ''), COALESCE(p.email, ''),
	b.postcode, b.address, b.geolocation, b.status, b.collection_time, b.quote,
	b.created_at, b.updated_at
	FROM bookings b
	LEFT JOIN profiles p ON p.id = b.user_id`

func (r *bookingRepository) List(ctx context.Context, f listing.Filters) ([]Booking, error) {
	where, args := r.translator.Where(r.translator.Translate(f))
	query := bookingSelect + ` ` + where + ` ` + r.translator.OrderBy(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		row, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		b, err := row.coerce()
		if err != nil {
			slog.Warn("skipping invalid booking row", slog.Any("error", err))
			continue
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bookings: %w", err)
	}
	return out, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*Booking, error) {
	row, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("booking not found")
	}
	if err != nil {
		return nil, err
	}

	b, err := row.coerce()
	if err != nil {
		slog.Warn("invalid booking row", slog.Any("error", err))
		return nil, apperror.NewNotFound("booking not found")
	}
	return b, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = NOW() WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating booking status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("booking not found")
	}
	return nil
}

func (r *bookingRepository) UpdateStatusBulk(ctx context.Context, ids []string, status Status) (map[string]Status, error) {
	if len(ids) == 0 {
		return map[string]Status{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning bulk update: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, status FROM bookings WHERE id IN (`+placeholders+`) FOR UPDATE`, args...)
	if err != nil {
		return nil, fmt.Errorf("locking bookings: %w", err)
	}
	previous := make(map[string]Status, len(ids))
	for rows.Next() {
		var id, st string
		if err := rows.Scan(&id, &st); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning locked booking: %w", err)
		}
		previous[id] = Status(st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locked bookings: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = NOW() WHERE id IN (`+placeholders+`)`,
		append([]any{string(status)}, args...)...); err != nil {
		return nil, fmt.Errorf("bulk updating booking status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing bulk update: %w", err)
	}
	return previous, nil
}

func (r *bookingRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting bookings: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scanning booking count: %w", err)
		}
		if Status(st).Valid() {
			counts[Status(st)] = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating booking counts: %w", err)
	}
	return counts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanBooking reads one row selected with bookingSelect.
func scanBooking(s scanner) (*bookingRow, error) {
	var row bookingRow
	var userID, geo sql.NullString
	var collection sql.NullTime
	var quote []byte

	err := s.Scan(
		&row.ID, &userID, &row.CustomerName, &row.CustomerEmail,
		&row.Postcode, &row.Address, &geo, &row.rawStatus, &collection, &quote,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning booking: %w", err)
	}

	if userID.Valid {
		row.UserID = &userID.String
	}
	if geo.Valid {
		row.Geolocation = &geo.String
	}
	if collection.Valid {
		t := collection.Time
		row.CollectionTime = &t
	}
	row.rawQuote = quote
	return &row, nil
}
