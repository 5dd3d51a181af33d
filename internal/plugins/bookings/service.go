package bookings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/plugins/audit"
)

// maxBulkIDs bounds one bulk status update.
const maxBulkIDs = listing.MaxPerPage

// BookingService handles business logic for bookings.
type BookingService interface {
	// List returns one page of bookings for st, clamping st to the last
	// page when the result set has shrunk.
	List(ctx context.Context, st *listing.ViewState) (listing.Page[Booking], error)

	GetByID(ctx context.Context, id string) (*Booking, error)

	// UpdateStatus changes one booking's status and records it in the
	// audit log.
	UpdateStatus(ctx context.Context, actor audit.Actor, id string, req StatusUpdateRequest) (*Booking, error)

	// BulkUpdateStatus changes the status of every booking in ids and
	// returns how many were updated.
	BulkUpdateStatus(ctx context.Context, actor audit.Actor, req BulkStatusRequest) (int, error)

	Stats(ctx context.Context) (*Stats, error)

	// Invoice renders the booking's invoice as a PDF.
	Invoice(ctx context.Context, id string) ([]byte, string, error)
}

type bookingService struct {
	repo  BookingRepository
	audit audit.AuditService
}

// NewBookingService creates a booking service. auditSvc may be nil.
func NewBookingService(repo BookingRepository, auditSvc audit.AuditService) BookingService {
	return &bookingService{repo: repo, audit: auditSvc}
}

func (s *bookingService) List(ctx context.Context, st *listing.ViewState) (listing.Page[Booking], error) {
	items, err := s.repo.List(ctx, st.Filters)
	if err != nil {
		return listing.Page[Booking]{}, apperror.NewInternal(fmt.Errorf("listing bookings: %w", err))
	}
	return listing.PaginateView(items, st), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.NewBadRequest("booking ID is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *bookingService) UpdateStatus(ctx context.Context, actor audit.Actor, id string, req StatusUpdateRequest) (*Booking, error) {
	status := Status(strings.TrimSpace(req.Status))
	if !status.Valid() {
		return nil, apperror.NewValidation("unknown booking status: " + req.Status)
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == status {
		return b, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	prev := b.Status
	b.Status = status

	s.record(ctx, actor, audit.ActionBookingStatusChanged, id, prev, status, req.Reason)

	slog.Info("booking status changed",
		slog.String("booking_id", id),
		slog.String("from", string(prev)),
		slog.String("to", string(status)),
	)
	return b, nil
}

func (s *bookingService) BulkUpdateStatus(ctx context.Context, actor audit.Actor, req BulkStatusRequest) (int, error) {
	status := Status(strings.TrimSpace(req.Status))
	if !status.Valid() {
		return 0, apperror.NewValidation("unknown booking status: " + req.Status)
	}

	ids := dedupe(req.IDs)
	if len(ids) == 0 {
		return 0, apperror.NewBadRequest("no bookings selected")
	}
	if len(ids) > maxBulkIDs {
		return 0, apperror.NewBadRequest(fmt.Sprintf("at most %d bookings can be updated at once", maxBulkIDs))
	}

	previous, err := s.repo.UpdateStatusBulk(ctx, ids, status)
	if err != nil {
		return 0, apperror.NewInternal(err)
	}

	for _, id := range ids {
		prev, ok := previous[id]
		if !ok || prev == status {
			continue
		}
		s.record(ctx, actor, audit.ActionBookingBulkStatus, id, prev, status, req.Reason)
	}

	slog.Info("bulk booking status change",
		slog.Int("count", len(previous)),
		slog.String("to", string(status)),
	)
	return len(previous), nil
}

func (s *bookingService) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	stats := &Stats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *bookingService) Invoice(ctx context.Context, id string) ([]byte, string, error) {
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if b.Quote == nil {
		return nil, "", apperror.NewConflict("booking has no quote to invoice")
	}

	pdf, err := renderInvoice(b)
	if err != nil {
		return nil, "", apperror.NewInternal(err)
	}
	return pdf, invoiceFilename(b), nil
}

func (s *bookingService) record(ctx context.Context, actor audit.Actor, action, id string, prev, next Status, reason string) {
	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     action,
		EntityType: audit.EntityBooking,
		EntityID:   id,
		Previous:   map[string]any{"status": string(prev)},
		New:        map[string]any{"status": string(next)},
		Reason:     reason,
	})
}

// dedupe trims ids, drops blanks and repeats, keeping first occurrence order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
