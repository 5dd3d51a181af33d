package quotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
)

// Fields maps the shared list filters onto the quotes table.
var Fields = listing.FieldMap{
	StatusColumn:  "status",
	SearchColumns: []string{"quote_number", "postcode"},
	DateColumn:    "created_at",
	SortColumns: map[string]string{
		"created_at": "created_at",
		"amount":     "amount",
		"postcode":   "postcode",
		"status":     "status",
	},
	DefaultSort: "created_at",
}

// QuoteRepository defines the data access contract for quotes.
type QuoteRepository interface {
	Create(ctx context.Context, q *Quote) error
	FindByID(ctx context.Context, id string) (*Quote, error)
	UpdateStatus(ctx context.Context, id string, status Status) error

	// List returns every quote matching the filters. Rows with an unknown
	// status are skipped.
	List(ctx context.Context, f listing.Filters) ([]Quote, error)
}

type quoteRepository struct {
	db         *sql.DB
	translator *listing.Translator
}

// NewQuoteRepository creates a new repository backed by the given DB pool.
func NewQuoteRepository(db *sql.DB, translator *listing.Translator) QuoteRepository {
	return &quoteRepository{db: db, translator: translator}
}

const quoteSelect = `SELECT id, quote_number, booking_id, customer_id, status, postcode,
	volume, amount, currency, breakdown, created_by, created_at, updated_at
	FROM quotes`

func (r *quoteRepository) Create(ctx context.Context, q *Quote) error {
	var breakdown any
	if len(q.Breakdown) > 0 {
		breakdown = []byte(q.Breakdown)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quotes (id, quote_number, booking_id, customer_id, status, postcode,
		volume, amount, currency, breakdown, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.QuoteNumber, q.BookingID, q.CustomerID, string(q.Status), q.Postcode,
		q.Volume, q.Amount, q.Currency, breakdown, q.CreatedBy, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting quote: %w", err)
	}
	return nil
}

func (r *quoteRepository) FindByID(ctx context.Context, id string) (*Quote, error) {
	q, err := scanQuote(r.db.QueryRowContext(ctx, quoteSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("quote not found")
	}
	if err != nil {
		return nil, err
	}
	if !q.Status.Valid() {
		slog.Warn("invalid quote row", slog.String("quote_id", q.ID), slog.String("status", string(q.Status)))
		return nil, apperror.NewNotFound("quote not found")
	}
	return q, nil
}

func (r *quoteRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET status = ?, updated_at = NOW() WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating quote status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("quote not found")
	}
	return nil
}

func (r *quoteRepository) List(ctx context.Context, f listing.Filters) ([]Quote, error) {
	where, args := r.translator.Where(r.translator.Translate(f))
	rows, err := r.db.QueryContext(ctx, quoteSelect+` `+where+` `+r.translator.OrderBy(f), args...)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	defer rows.Close()

	out := []Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		if !q.Status.Valid() {
			slog.Warn("skipping invalid quote row", slog.String("quote_id", q.ID), slog.String("status", string(q.Status)))
			continue
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotes: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(s scanner) (*Quote, error) {
	var q Quote
	var bookingID, customerID sql.NullString
	var status string
	var breakdown []byte

	err := s.Scan(&q.ID, &q.QuoteNumber, &bookingID, &customerID, &status, &q.Postcode,
		&q.Volume, &q.Amount, &q.Currency, &breakdown, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning quote: %w", err)
	}

	q.Status = Status(status)
	if bookingID.Valid {
		q.BookingID = &bookingID.String
	}
	if customerID.Valid {
		q.CustomerID = &customerID.String
	}
	if len(breakdown) > 0 {
		q.Breakdown = breakdown
	}
	return &q, nil
}
