package audit

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/plusvans/admin/internal/listing"
)

var auditRowColumns = []string{
	"id", "admin_user_id", "admin_name", "action", "entity_type", "entity_id",
	"previous_value", "new_value", "reason", "created_at",
}

func newMockRepo(t *testing.T) (AuditRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return NewAuditRepository(db, listing.NewTranslator(Fields).WithClock(clock)), mock
}

func TestRepository_LogSerializesValues(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO admin_audit_log").
		WithArgs("u1", "Dee", ActionBookingStatusChanged, EntityBooking, "b1",
			[]byte(`{"status":"pending"}`), []byte(`{"status":"confirmed"}`), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))

	entry := &AuditEntry{
		AdminUserID:   "u1",
		AdminName:     "Dee",
		Action:        ActionBookingStatusChanged,
		EntityType:    EntityBooking,
		EntityID:      "b1",
		PreviousValue: map[string]any{"status": "pending"},
		NewValue:      map[string]any{"status": "confirmed"},
	}
	if err := repo.Log(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != 42 {
		t.Errorf("expected ID 42, got %d", entry.ID)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_ListAppliesFilters(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admin_audit_log WHERE entity_type = ? AND (action LIKE ? OR admin_name LIKE ? OR entity_id LIKE ?) ORDER BY action ASC")).
		WithArgs(EntityMedia, "%dee%", "%dee%", "%dee%").
		WillReturnRows(sqlmock.NewRows(auditRowColumns).
			AddRow(1, "u1", "Dee", ActionMediaDeleted, EntityMedia, "m1", `{"filename":"a.jpg"}`, nil, nil, created).
			AddRow(2, "u1", "Dee", ActionMediaUploaded, EntityMedia, "m2", nil, `not json`, "tidy up", created))

	entries, err := repo.List(context.Background(), listing.Filters{
		Status: EntityMedia, Search: "dee", SortBy: "action", SortOrder: listing.SortAsc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].PreviousValue["filename"] != "a.jpg" {
		t.Errorf("expected decoded previous value, got %v", entries[0].PreviousValue)
	}
	if entries[1].NewValue != nil {
		t.Errorf("expected invalid JSON dropped, got %v", entries[1].NewValue)
	}
	if entries[1].Reason == nil || *entries[1].Reason != "tidy up" {
		t.Errorf("expected reason, got %v", entries[1].Reason)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_ListEmptyIsNotNil(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM admin_audit_log ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(auditRowColumns))

	entries, err := repo.List(context.Background(), listing.DefaultFilters())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestRepository_ListByEntity(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("WHERE entity_type = \\? AND entity_id = \\?").
		WithArgs(EntityBooking, "b1", 100).
		WillReturnRows(sqlmock.NewRows(auditRowColumns).
			AddRow(3, "u2", "Sam", ActionBookingNoteAdded, EntityBooking, "b1", nil, nil, nil, time.Now()))

	entries, err := repo.ListByEntity(context.Background(), EntityBooking, "b1", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].AdminName != "Sam" {
		t.Errorf("unexpected entries %+v", entries)
	}
}
