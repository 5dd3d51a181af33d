package customers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
)

var (
	activeClause   = fmt.Sprintf("EXISTS (SELECT 1 FROM bookings ab WHERE ab.user_id = p.id AND ab.created_at >= NOW() - INTERVAL %d DAY)", ActiveWindowDays)
	inactiveClause = "NOT " + activeClause
)

// Fields maps the shared list filters onto the customer query. Status is
// derived from booking activity rather than stored.
var Fields = listing.FieldMap{
	StatusClauses: map[string]string{
		StatusActive:   activeClause,
		StatusInactive: inactiveClause,
	},
	SearchColumns: []string{"p.name", "p.email", "p.phone"},
	DateColumn:    "p.created_at",
	SortColumns: map[string]string{
		"created_at":        "p.created_at",
		"name":              "p.name",
		"total_bookings":    "total_bookings",
		"total_spent":       "total_spent",
		"last_booking_date": "last_booking_date",
	},
	DefaultSort: "created_at",
}

// CustomerRepository defines the data access contract for customers.
type CustomerRepository interface {
	// List returns every customer matching the filters with their booking
	// aggregates.
	List(ctx context.Context, f listing.Filters) ([]Customer, error)

	FindByID(ctx context.Context, id string) (*Customer, error)

	// FindByIDs returns the listed customers, ordered by name.
	FindByIDs(ctx context.Context, ids []string) ([]Customer, error)

	Stats(ctx context.Context) (*Stats, error)
}

type customerRepository struct {
	db         *sql.DB
	translator *listing.Translator
}

// NewCustomerRepository creates a new repository backed by the given DB pool.
func NewCustomerRepository(db *sql.DB, translator *listing.Translator) CustomerRepository {
	return &customerRepository{db: db, translator: translator}
}

// customerSelect aggregates bookings per profile. Spend counts completed
// bookings only.
const customerSelect = `SELECT p.id, p.name, p.email, p.phone, p.role, p.created_at,
	COUNT(b.id) AS total_bookings,
	COALESCE(SUM(CASE WHEN b.status = 'completed'
		THEN CAST(JSON_VALUE(b.quote, '$.breakdown.price_components.total') AS DECIMAL(10,2))
		END), 0) AS total_spent,
	MAX(b.created_at) AS last_booking_date
	FROM profiles p
	LEFT JOIN bookings b ON b.user_id = p.id`

const customerGroup = `GROUP BY p.id, p.name, p.email, p.phone, p.role, p.created_at`

const customerRole = "p.role = 'customer'"

func (r *customerRepository) List(ctx context.Context, f listing.Filters) ([]Customer, error) {
	preds, args := r.translator.Predicates(r.translator.Translate(f))
	preds = append([]string{customerRole}, preds...)

	query := customerSelect + ` ` + listing.JoinWhere(preds) + ` ` + customerGroup + ` ` + r.translator.OrderBy(f)
	return r.query(ctx, query, args...)
}

func (r *customerRepository) FindByID(ctx context.Context, id string) (*Customer, error) {
	items, err := r.query(ctx, customerSelect+` WHERE `+customerRole+` AND p.id = ? `+customerGroup, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.NewNotFound("customer not found")
	}
	return &items[0], nil
}

func (r *customerRepository) FindByIDs(ctx context.Context, ids []string) ([]Customer, error) {
	if len(ids) == 0 {
		return []Customer{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.query(ctx,
		customerSelect+` WHERE `+customerRole+` AND p.id IN (`+placeholders+`) `+customerGroup+` ORDER BY p.name ASC`,
		args...)
}

func (r *customerRepository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN `+activeClause+` THEN 1 ELSE 0 END), 0)
		FROM profiles p WHERE `+customerRole,
	).Scan(&s.Total, &s.Active)
	if err != nil {
		return nil, fmt.Errorf("counting customers: %w", err)
	}
	return &s, nil
}

func (r *customerRepository) query(ctx context.Context, query string, args ...any) ([]Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	out := []Customer{}
	for rows.Next() {
		var c Customer
		var phone sql.NullString
		var last sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.Role, &c.CreatedAt,
			&c.TotalBookings, &c.TotalSpent, &last); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		if phone.Valid {
			c.Phone = &phone.String
		}
		if last.Valid {
			t := last.Time
			c.LastBookingDate = &t
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}
	return out, nil
}
