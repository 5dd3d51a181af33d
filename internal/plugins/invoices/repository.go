package invoices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
)

// StatusUnpaid is a filter-only value matching every invoice not yet paid.
const StatusUnpaid = "unpaid"

// Fields maps the shared list filters onto the invoices table. Pending and
// sent exclude invoices past their due date, which match overdue instead.
var Fields = listing.FieldMap{
	StatusClauses: map[string]string{
		string(StatusDraft):   "status = 'draft'",
		string(StatusPending): "status = 'pending' AND due_date >= CURRENT_DATE",
		string(StatusSent):    "status = 'sent' AND due_date >= CURRENT_DATE",
		string(StatusOverdue): "status = 'overdue' OR (status IN ('pending', 'sent') AND due_date < CURRENT_DATE)",
		string(StatusPaid):    "status = 'paid'",
		StatusUnpaid:          "status <> 'paid'",
	},
	SearchColumns: []string{"invoice_number", "customer_name", "customer_email"},
	DateColumn:    "issue_date",
	SortColumns: map[string]string{
		"created_at":     "created_at",
		"issue_date":     "issue_date",
		"due_date":       "due_date",
		"total_amount":   "total_amount",
		"invoice_number": "invoice_number",
	},
	DefaultSort: "created_at",
}

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// InvoiceRepository defines the data access contract for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id string) (*Invoice, error)
	UpdateStatus(ctx context.Context, id string, status Status, paidAt *time.Time) error

	// List returns every invoice matching the filters. Rows with an unknown
	// status are skipped.
	List(ctx context.Context, f listing.Filters) ([]Invoice, error)
}

type invoiceRepository struct {
	db         *sql.DB
	translator *listing.Translator
}

// NewInvoiceRepository creates a new repository backed by the given DB pool.
func NewInvoiceRepository(db *sql.DB, translator *listing.Translator) InvoiceRepository {
	return &invoiceRepository{db: db, translator: translator}
}

const invoiceSelect = `SELECT id, invoice_number, booking_id, customer_name, customer_email,
	billing_address, total_amount, currency, status, issue_date, due_date, paid_at,
	created_at, updated_at
	FROM invoices`

func (r *invoiceRepository) Create(ctx context.Context, inv *Invoice) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (id, invoice_number, booking_id, customer_name, customer_email,
		billing_address, total_amount, currency, status, issue_date, due_date, paid_at,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.InvoiceNumber, inv.BookingID, inv.CustomerName, inv.CustomerEmail,
		inv.BillingAddress, inv.TotalAmount, inv.Currency, string(inv.Status),
		inv.IssueDate.Format(time.DateOnly), inv.DueDate.Format(time.DateOnly), inv.PaidAt,
		inv.CreatedAt, inv.UpdatedAt,
	)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return apperror.NewConflict("this booking has already been invoiced")
	}
	if err != nil {
		return fmt.Errorf("inserting invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id string) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, invoiceSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("invoice not found")
	}
	if err != nil {
		return nil, err
	}
	if !inv.Status.Valid() {
		slog.Warn("invalid invoice row", slog.String("invoice_id", inv.ID), slog.String("status", string(inv.Status)))
		return nil, apperror.NewNotFound("invoice not found")
	}
	return inv, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id string, status Status, paidAt *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?, paid_at = ?, updated_at = NOW() WHERE id = ?`,
		string(status), paidAt, id)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, f listing.Filters) ([]Invoice, error) {
	where, args := r.translator.Where(r.translator.Translate(f))
	rows, err := r.db.QueryContext(ctx, invoiceSelect+` `+where+` `+r.translator.OrderBy(f), args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	out := []Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		if !inv.Status.Valid() {
			slog.Warn("skipping invalid invoice row", slog.String("invoice_id", inv.ID), slog.String("status", string(inv.Status)))
			continue
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(s scanner) (*Invoice, error) {
	var inv Invoice
	var bookingID sql.NullString
	var paidAt sql.NullTime
	var status string

	err := s.Scan(&inv.ID, &inv.InvoiceNumber, &bookingID, &inv.CustomerName, &inv.CustomerEmail,
		&inv.BillingAddress, &inv.TotalAmount, &inv.Currency, &status, &inv.IssueDate, &inv.DueDate, &paidAt,
		&inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}

	inv.Status = Status(status)
	if bookingID.Valid {
		inv.BookingID = &bookingID.String
	}
	if paidAt.Valid {
		inv.PaidAt = &paidAt.Time
	}
	return &inv, nil
}
