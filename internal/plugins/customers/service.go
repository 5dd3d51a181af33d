package customers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/plugins/audit"
)

// maxExportIDs bounds one CSV export.
const maxExportIDs = 1000

// CustomerService handles business logic for customers.
type CustomerService interface {
	// List returns one page of customers for st, clamping st to the last
	// page when the result set has shrunk.
	List(ctx context.Context, st *listing.ViewState) (listing.Page[Customer], error)

	GetByID(ctx context.Context, id string) (*Customer, error)

	Stats(ctx context.Context) (*Stats, error)

	// Export renders the listed customers as CSV and records the export in
	// the audit log.
	Export(ctx context.Context, actor audit.Actor, ids []string) ([]byte, error)
}

type customerService struct {
	repo  CustomerRepository
	audit audit.AuditService
	now   func() time.Time
}

// NewCustomerService creates a customer service. auditSvc may be nil.
func NewCustomerService(repo CustomerRepository, auditSvc audit.AuditService) CustomerService {
	return &customerService{repo: repo, audit: auditSvc, now: time.Now}
}

func (s *customerService) List(ctx context.Context, st *listing.ViewState) (listing.Page[Customer], error) {
	items, err := s.repo.List(ctx, st.Filters)
	if err != nil {
		return listing.Page[Customer]{}, apperror.NewInternal(fmt.Errorf("listing customers: %w", err))
	}
	return listing.PaginateView(items, st), nil
}

func (s *customerService) GetByID(ctx context.Context, id string) (*Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.NewBadRequest("customer ID is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *customerService) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return stats, nil
}

func (s *customerService) Export(ctx context.Context, actor audit.Actor, ids []string) ([]byte, error) {
	if len(ids) == 0 {
		return nil, apperror.NewBadRequest("no customers selected")
	}
	if len(ids) > maxExportIDs {
		return nil, apperror.NewBadRequest(fmt.Sprintf("at most %d customers can be exported at once", maxExportIDs))
	}

	items, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	out, err := writeCSV(items, s.now())
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	exported := make([]string, len(items))
	for i, c := range items {
		exported[i] = c.ID
	}
	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionCustomersExported,
		EntityType: audit.EntityCustomer,
		New:        map[string]any{"count": len(items), "ids": exported},
	})

	slog.Info("customers exported",
		slog.String("admin_user_id", actor.UserID),
		slog.Int("count", len(items)),
	)
	return out, nil
}
