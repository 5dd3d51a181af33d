package audit

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
)

// --- Mock Repository ---

type mockAuditRepo struct {
	logFn          func(ctx context.Context, entry *AuditEntry) error
	listFn         func(ctx context.Context, f listing.Filters) ([]AuditEntry, error)
	recentFn       func(ctx context.Context, limit int) ([]AuditEntry, error)
	listByEntityFn func(ctx context.Context, entityType, entityID string, limit int) ([]AuditEntry, error)
}

func (m *mockAuditRepo) Log(ctx context.Context, entry *AuditEntry) error {
	if m.logFn != nil {
		return m.logFn(ctx, entry)
	}
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, f listing.Filters) ([]AuditEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return []AuditEntry{}, nil
}

func (m *mockAuditRepo) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return []AuditEntry{}, nil
}

func (m *mockAuditRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]AuditEntry, error) {
	if m.listByEntityFn != nil {
		return m.listByEntityFn(ctx, entityType, entityID, limit)
	}
	return []AuditEntry{}, nil
}

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d", expectedCode, appErr.Code)
	}
}

func TestLog_RequiresActorAndAction(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{})

	assertAppError(t, svc.Log(context.Background(), &AuditEntry{Action: ActionQuoteCreated}), http.StatusBadRequest)
	assertAppError(t, svc.Log(context.Background(), &AuditEntry{AdminUserID: "u1"}), http.StatusBadRequest)
}

func TestLog_RepoFailureIsInternal(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{
		logFn: func(ctx context.Context, entry *AuditEntry) error { return errors.New("db down") },
	})
	err := svc.Log(context.Background(), &AuditEntry{AdminUserID: "u1", Action: ActionQuoteCreated})
	assertAppError(t, err, http.StatusInternalServerError)
}

func TestList_PaginatesAndClamps(t *testing.T) {
	entries := make([]AuditEntry, 12)
	for i := range entries {
		entries[i] = AuditEntry{ID: int64(i + 1)}
	}
	svc := NewAuditService(&mockAuditRepo{
		listFn: func(ctx context.Context, f listing.Filters) ([]AuditEntry, error) { return entries, nil },
	})

	st := listing.NewViewState(10)
	st.Window.CurrentPage = 4
	page, err := svc.List(context.Background(), &st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Meta.CurrentPage != 2 || page.Meta.TotalPages != 2 || len(page.Items) != 2 {
		t.Errorf("unexpected page %+v", page.Meta)
	}
	if page.Items[0].ID != 11 {
		t.Errorf("expected entry 11 first on page 2, got %d", page.Items[0].ID)
	}
}

func TestRecord_SwallowsFailures(t *testing.T) {
	var logged *AuditEntry
	svc := NewAuditService(&mockAuditRepo{
		logFn: func(ctx context.Context, entry *AuditEntry) error {
			logged = entry
			return errors.New("db down")
		},
	})

	Record(context.Background(), svc, Actor{UserID: "u1", Name: "Dee"}, Change{
		Action:     ActionMediaDeleted,
		EntityType: EntityMedia,
		EntityID:   "m1",
		Previous:   map[string]any{"filename": "a.jpg"},
		Reason:     "  duplicate  ",
	})

	if logged == nil || logged.AdminName != "Dee" || logged.EntityID != "m1" {
		t.Fatalf("unexpected entry %+v", logged)
	}
	if logged.Reason == nil || *logged.Reason != "duplicate" {
		t.Errorf("expected trimmed reason, got %v", logged.Reason)
	}

	// A nil service is a no-op.
	Record(context.Background(), nil, Actor{}, Change{Action: ActionMediaDeleted})
}

func TestEntityHistory_RequiresIdentity(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{})
	_, err := svc.EntityHistory(context.Background(), "", "b1")
	assertAppError(t, err, http.StatusBadRequest)
}
