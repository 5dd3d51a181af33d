package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
)

// maxEntityHistoryEntries caps the history returned for a single entity.
const maxEntityHistoryEntries = 100

// AuditService handles business logic for the audit log.
type AuditService interface {
	// Log records an audit entry. Callers treat failures as non-fatal:
	// an audit write never blocks the primary operation.
	Log(ctx context.Context, entry *AuditEntry) error

	// List returns one page of the filtered log. st is clamped to the
	// last page when the result set has shrunk.
	List(ctx context.Context, st *listing.ViewState) (listing.Page[AuditEntry], error)

	// Recent returns the newest entries for the dashboard.
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)

	// EntityHistory returns the change history of one entity.
	EntityHistory(ctx context.Context, entityType, entityID string) ([]AuditEntry, error)
}

// auditService implements AuditService.
type auditService struct {
	repo AuditRepository
}

// NewAuditService creates a new audit service with the given repository.
func NewAuditService(repo AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// Log validates and persists an audit entry.
func (s *auditService) Log(ctx context.Context, entry *AuditEntry) error {
	if entry.AdminUserID == "" {
		return apperror.NewBadRequest("admin user ID is required for audit entry")
	}
	if entry.Action == "" {
		return apperror.NewBadRequest("action is required for audit entry")
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		slog.Error("failed to write audit log entry",
			slog.String("admin_user_id", entry.AdminUserID),
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
		return apperror.NewInternal(fmt.Errorf("writing audit entry: %w", err))
	}
	return nil
}

func (s *auditService) List(ctx context.Context, st *listing.ViewState) (listing.Page[AuditEntry], error) {
	entries, err := s.repo.List(ctx, st.Filters)
	if err != nil {
		return listing.Page[AuditEntry]{}, apperror.NewInternal(fmt.Errorf("listing audit log: %w", err))
	}
	return listing.PaginateView(entries, st), nil
}

func (s *auditService) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 || limit > maxEntityHistoryEntries {
		limit = 10
	}
	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing recent activity: %w", err))
	}
	return entries, nil
}

func (s *auditService) EntityHistory(ctx context.Context, entityType, entityID string) ([]AuditEntry, error) {
	if entityType == "" || entityID == "" {
		return nil, apperror.NewBadRequest("entity type and ID are required")
	}

	entries, err := s.repo.ListByEntity(ctx, entityType, entityID, maxEntityHistoryEntries)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing entity history: %w", err))
	}
	return entries, nil
}

// Change describes one audited mutation.
type Change struct {
	Action     string
	EntityType string
	EntityID   string
	Previous   map[string]any
	New        map[string]any
	Reason     string
}

// Record logs ch for actor, logging rather than returning any failure.
// Other plugins call this after a successful mutation.
func Record(ctx context.Context, svc AuditService, actor Actor, ch Change) {
	if svc == nil {
		return
	}
	entry := &AuditEntry{
		AdminUserID:   actor.UserID,
		AdminName:     actor.Name,
		Action:        ch.Action,
		EntityType:    ch.EntityType,
		EntityID:      ch.EntityID,
		PreviousValue: ch.Previous,
		NewValue:      ch.New,
	}
	if r := strings.TrimSpace(ch.Reason); r != "" {
		entry.Reason = &r
	}
	if err := svc.Log(ctx, entry); err != nil {
		slog.Warn("audit entry dropped",
			slog.String("action", ch.Action),
			slog.String("entity_id", ch.EntityID),
			slog.Any("error", err),
		)
	}
}
