package invoices

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/plusvans/admin/internal/listing"
)

var invoiceColumns = []string{
	"id", "invoice_number", "booking_id", "customer_name", "customer_email",
	"billing_address", "total_amount", "currency", "status", "issue_date", "due_date", "paid_at",
	"created_at", "updated_at",
}

func newMockRepo(t *testing.T) (InvoiceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := func() time.Time { return today }
	return NewInvoiceRepository(db, listing.NewTranslator(Fields).WithClock(clock)), mock
}

func TestRepository_ListOverdueIncludesPastDueIssued(t *testing.T) {
	repo, mock := newMockRepo(t)
	issued := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	query := regexp.QuoteMeta("FROM invoices WHERE (status = 'overdue' OR (status IN ('pending', 'sent') AND due_date < CURRENT_DATE)) ORDER BY due_date ASC")
	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows(invoiceColumns).
			AddRow("i1", "INV-202402-AAAA0001", "b1", "Ann Smith", "ann@example.com",
				"1 Road\nSW1A 1AA", 135.5, "GBP", "sent", issued, due, nil, issued, issued).
			AddRow("i2", "INV-202402-AAAA0002", nil, "Bob", "",
				"2 Road", 80.0, "GBP", "void", issued, due, nil, issued, issued))

	items, err := repo.List(context.Background(), listing.Filters{
		Status: string(StatusOverdue), SortBy: "due_date", SortOrder: listing.SortAsc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected the invalid row to be skipped, got %d", len(items))
	}
	inv := items[0]
	if inv.BookingID == nil || *inv.BookingID != "b1" || inv.PaidAt != nil || !inv.DueDate.Equal(due) {
		t.Errorf("unexpected invoice %+v", inv)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_ListUnpaidSearch(t *testing.T) {
	repo, mock := newMockRepo(t)

	query := regexp.QuoteMeta("FROM invoices WHERE (status <> 'paid') AND (invoice_number LIKE ? OR customer_name LIKE ? OR customer_email LIKE ?) ORDER BY created_at DESC")
	mock.ExpectQuery(query).
		WithArgs("%ann%", "%ann%", "%ann%").
		WillReturnRows(sqlmock.NewRows(invoiceColumns))

	if _, err := repo.List(context.Background(), listing.Filters{Status: StatusUnpaid, Search: "ann"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_CreateStoresCalendarDates(t *testing.T) {
	repo, mock := newMockRepo(t)
	bookingID := "b1"

	mock.ExpectExec("INSERT INTO invoices").
		WithArgs("i1", "INV-1", &bookingID, "Ann Smith", "", "1 Road", 135.5, "GBP", "draft",
			"2024-03-15", "2024-03-29", nil, today, today).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &Invoice{
		ID: "i1", InvoiceNumber: "INV-1", BookingID: &bookingID, CustomerName: "Ann Smith",
		BillingAddress: "1 Road", TotalAmount: 135.5, Currency: "GBP", Status: StatusDraft,
		IssueDate: dateOf(today), DueDate: dateOf(today).AddDate(0, 0, 14),
		CreatedAt: today, UpdatedAt: today,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_CreateDuplicateBookingIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO invoices").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'b1' for key 'uq_invoices_booking'"})

	err := repo.Create(context.Background(), &Invoice{ID: "i1", Status: StatusDraft, IssueDate: today, DueDate: today})
	assertAppError(t, err, http.StatusConflict)
}

func TestRepository_FindByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE id = ?")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(invoiceColumns))

	_, err := repo.FindByID(context.Background(), "nope")
	assertAppError(t, err, http.StatusNotFound)
}

func TestRepository_UpdateStatusSetsPaidAt(t *testing.T) {
	repo, mock := newMockRepo(t)
	paid := today

	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET status = ?, paid_at = ?")).
		WithArgs("paid", &paid, "i1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateStatus(context.Background(), "i1", StatusPaid, &paid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
