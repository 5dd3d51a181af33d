package pricing

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/plusvans/admin/internal/listing"
)

var ruleColumns = []string{
	"id", "rule_name", "rule_type", "condition_type", "condition_values",
	"calculation_method", "base_amount", "percentage_rate", "min_amount", "max_amount",
	"priority", "description", "applies_to", "is_active", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (RuleRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return NewRuleRepository(db, listing.NewTranslator(Fields).WithClock(clock)), mock
}

func TestRepository_ListActiveByPriority(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	query := regexp.QuoteMeta("FROM pricing_rules WHERE (is_active = 1) AND (rule_name LIKE ? OR description LIKE ?) ORDER BY priority ASC, rule_name ASC")
	mock.ExpectQuery(query).
		WithArgs("%stairs%", "%stairs%").
		WillReturnRows(sqlmock.NewRows(ruleColumns).
			AddRow("r1", "Stairs", "surcharge", "access_difficulty", []byte(`{"floors":3}`),
				"fixed", 20.0, nil, nil, 60.0, 50, "Third floor and up", "labor", true, created, created).
			AddRow("r2", "Stairs weekend", "modifier", "day_of_week", nil,
				"percentage", nil, 15.0, nil, nil, 60, "", "total", true, created, created))

	items, err := repo.List(context.Background(), listing.Filters{
		Status: StatusActive, Search: "stairs", SortBy: "priority", SortOrder: listing.SortAsc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(items))
	}
	first := items[0]
	if first.BaseAmount == nil || *first.BaseAmount != 20 || first.PercentageRate != nil {
		t.Errorf("unexpected amounts on %+v", first)
	}
	if first.MaxAmount == nil || *first.MaxAmount != 60 || string(first.ConditionValues) != `{"floors":3}` {
		t.Errorf("unexpected limits on %+v", first)
	}
	if items[1].ConditionValues != nil || items[1].Amount() != "15%" {
		t.Errorf("unexpected second rule %+v", items[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_ListUnknownStatusMatchesNothing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM pricing_rules WHERE 1 = 0 ORDER BY priority DESC, rule_name ASC")).
		WillReturnRows(sqlmock.NewRows(ruleColumns))

	items, err := repo.List(context.Background(), listing.Filters{Status: "archived", SortBy: "priority"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no rules, got %d", len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_CreateDuplicateNameIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	base := 15.0

	mock.ExpectExec("INSERT INTO pricing_rules").
		WithArgs("r1", "Congestion", "surcharge", "postcode", nil,
			"fixed", &base, nil, nil, nil, 100, "", "total", true, now, now).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Congestion'"})

	err := repo.Create(context.Background(), &Rule{
		ID: "r1", Name: "Congestion", RuleType: RuleSurcharge, ConditionType: ConditionPostcode,
		CalculationMethod: MethodFixed, BaseAmount: &base, Priority: 100, AppliesTo: AppliesTotal,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	assertAppError(t, err, http.StatusConflict)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_FindByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM pricing_rules WHERE id = ?")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(ruleColumns))

	_, err := repo.FindByID(context.Background(), "nope")
	assertAppError(t, err, http.StatusNotFound)
}

func TestRepository_DeleteMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM pricing_rules WHERE id = ?")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "gone")
	assertAppError(t, err, http.StatusNotFound)
}

func TestRepository_SetActiveUnchangedRowIsNotAnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pricing_rules SET is_active = ?")).
		WithArgs(false, "r1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetActive(context.Background(), "r1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRepository_SetActiveWrapsDriverErrors(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE pricing_rules").WillReturnError(errors.New("connection reset"))

	if err := repo.SetActive(context.Background(), "r1", true); err == nil {
		t.Fatal("expected an error")
	}
}
