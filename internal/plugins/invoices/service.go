package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/plugins/bookings"
)

// defaultTerms is the payment window when a request names no due date.
const defaultTerms = 14 * 24 * time.Hour

// BookingSource loads the booking an invoice is issued for.
type BookingSource interface {
	GetByID(ctx context.Context, id string) (*bookings.Booking, error)
}

// InvoiceService handles business logic for invoices. Invoices returned by
// it carry their effective status.
type InvoiceService interface {
	Create(ctx context.Context, actor audit.Actor, req CreateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)

	// UpdateStatus moves an invoice forward. Overdue follows from the due
	// date and cannot be set, and paid invoices never change.
	UpdateStatus(ctx context.Context, actor audit.Actor, id string, req StatusUpdateRequest) (*Invoice, error)

	List(ctx context.Context, st *listing.ViewState) (listing.Page[Invoice], error)
}

type invoiceService struct {
	repo     InvoiceRepository
	bookings BookingSource
	audit    audit.AuditService
	now      func() time.Time
}

// NewInvoiceService creates an invoice service. auditSvc may be nil.
func NewInvoiceService(repo InvoiceRepository, source BookingSource, auditSvc audit.AuditService) InvoiceService {
	return &invoiceService{repo: repo, bookings: source, audit: auditSvc, now: time.Now}
}

func (s *invoiceService) Create(ctx context.Context, actor audit.Actor, req CreateInvoiceRequest) (*Invoice, error) {
	bookingID := strings.TrimSpace(req.BookingID)
	if bookingID == "" {
		return nil, apperror.NewValidation("booking ID is required")
	}

	now := s.now()
	issue := dateOf(now)
	due := issue.Add(defaultTerms)
	if raw := strings.TrimSpace(req.DueDate); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, apperror.NewValidation("due date must be YYYY-MM-DD")
		}
		if d.Before(issue) {
			return nil, apperror.NewValidation("due date cannot be before the issue date")
		}
		due = d
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != bookings.StatusConfirmed && b.Status != bookings.StatusCompleted {
		return nil, apperror.NewConflict("only confirmed or completed bookings can be invoiced")
	}
	if b.Price() <= 0 {
		return nil, apperror.NewConflict("booking has no quoted price to invoice")
	}

	inv := &Invoice{
		ID:             uuid.NewString(),
		InvoiceNumber:  bookings.InvoiceNumber(b),
		BookingID:      &b.ID,
		CustomerName:   b.CustomerName,
		CustomerEmail:  b.CustomerEmail,
		BillingAddress: strings.TrimSpace(b.Address + "\n" + b.Postcode),
		TotalAmount:    b.Price(),
		Currency:       "GBP",
		Status:         StatusDraft,
		IssueDate:      issue,
		DueDate:        due,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionInvoiceCreated,
		EntityType: audit.EntityInvoice,
		EntityID:   inv.ID,
		New: map[string]any{
			"invoice_number": inv.InvoiceNumber,
			"booking_id":     b.ID,
			"total_amount":   inv.TotalAmount,
			"due_date":       inv.DueDate.Format(time.DateOnly),
		},
	})

	slog.Info("invoice created",
		slog.String("invoice_id", inv.ID),
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("booking_id", b.ID),
	)
	return inv, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id string) (*Invoice, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.NewBadRequest("invoice ID is required")
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Status = inv.EffectiveStatus(s.now())
	return inv, nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, actor audit.Actor, id string, req StatusUpdateRequest) (*Invoice, error) {
	status := Status(strings.TrimSpace(req.Status))
	switch status {
	case StatusPending, StatusSent, StatusPaid:
	case StatusDraft, StatusOverdue:
		return nil, apperror.NewValidation("invoices cannot be set to " + string(status))
	default:
		return nil, apperror.NewValidation("unknown invoice status: " + req.Status)
	}

	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == status {
		return inv, nil
	}
	if inv.Status == StatusPaid {
		return nil, apperror.NewConflict("invoice is paid and can no longer change")
	}
	if status.rank() < inv.Status.rank() {
		return nil, apperror.NewConflict(fmt.Sprintf("invoice is %s and cannot go back to %s", inv.Status, status))
	}

	var paidAt *time.Time
	if status == StatusPaid {
		t := s.now().UTC()
		paidAt = &t
	}
	if err := s.repo.UpdateStatus(ctx, id, status, paidAt); err != nil {
		return nil, apperror.NewInternal(err)
	}
	prev := inv.Status
	inv.Status = status
	inv.PaidAt = paidAt
	inv.Status = inv.EffectiveStatus(s.now())

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionInvoiceStatusChanged,
		EntityType: audit.EntityInvoice,
		EntityID:   id,
		Previous:   map[string]any{"status": string(prev)},
		New:        map[string]any{"status": string(status)},
		Reason:     req.Reason,
	})
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, st *listing.ViewState) (listing.Page[Invoice], error) {
	items, err := s.repo.List(ctx, st.Filters)
	if err != nil {
		return listing.Page[Invoice]{}, apperror.NewInternal(fmt.Errorf("listing invoices: %w", err))
	}
	now := s.now()
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(now)
	}
	return listing.PaginateView(items, st), nil
}

// dateOf drops the clock part of t, keeping its calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
