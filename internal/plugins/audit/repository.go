package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/plusvans/admin/internal/listing"
)

// Fields maps the shared list filters onto admin_audit_log. The status
// filter selects an entity type.
var Fields = listing.FieldMap{
	StatusColumn:  "entity_type",
	SearchColumns: []string{"action", "admin_name", "entity_id"},
	DateColumn:    "created_at",
	SortColumns: map[string]string{
		"created_at": "created_at",
		"action":     "action",
	},
	DefaultSort: "created_at",
}

// AuditRepository defines the data access contract for audit log operations.
type AuditRepository interface {
	// Log inserts a new audit entry.
	Log(ctx context.Context, entry *AuditEntry) error

	// List returns every entry matching the filters, ordered as requested.
	List(ctx context.Context, f listing.Filters) ([]AuditEntry, error)

	// Recent returns the latest entries, most recent first.
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)

	// ListByEntity returns the latest entries for one entity.
	ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]AuditEntry, error)
}

// auditRepository implements AuditRepository with MariaDB queries.
type auditRepository struct {
	db         *sql.DB
	translator *listing.Translator
}

// NewAuditRepository creates a new repository backed by the given DB pool.
func NewAuditRepository(db *sql.DB, translator *listing.Translator) AuditRepository {
	return &auditRepository{db: db, translator: translator}
}

const auditColumns = `id, admin_user_id, admin_name, action, entity_type, entity_id,
	previous_value, new_value, reason, created_at`

// Log inserts a new audit entry. Value maps are serialized to JSON; nil maps
// are stored as SQL NULL.
func (r *auditRepository) Log(ctx context.Context, entry *AuditEntry) error {
	prev, err := marshalValue(entry.PreviousValue)
	if err != nil {
		return fmt.Errorf("marshaling previous value: %w", err)
	}
	next, err := marshalValue(entry.NewValue)
	if err != nil {
		return fmt.Errorf("marshaling new value: %w", err)
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_audit_log
		 (admin_user_id, admin_name, action, entity_type, entity_id, previous_value, new_value, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.AdminUserID, entry.AdminName, entry.Action,
		entry.EntityType, entry.EntityID, prev, next, entry.Reason, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting audit entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// List returns all entries matching f.
func (r *auditRepository) List(ctx context.Context, f listing.Filters) ([]AuditEntry, error) {
	where, args := r.translator.Where(r.translator.Translate(f))
	query := `SELECT ` + auditColumns + ` FROM admin_audit_log ` + where + ` ` + r.translator.OrderBy(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	return scanAuditRows(rows)
}

// Recent returns the newest entries.
func (r *auditRepository) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM admin_audit_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent audit entries: %w", err)
	}
	defer rows.Close()

	return scanAuditRows(rows)
}

// ListByEntity returns the newest entries for one entity.
func (r *auditRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM admin_audit_log
		 WHERE entity_type = ? AND entity_id = ?
		 ORDER BY created_at DESC LIMIT ?`, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing entity audit entries: %w", err)
	}
	defer rows.Close()

	return scanAuditRows(rows)
}

func marshalValue(v map[string]any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// scanAuditRows scans rows selected with auditColumns. Unparseable JSON
// values are dropped with a warning rather than failing the whole feed.
func scanAuditRows(rows *sql.Rows) ([]AuditEntry, error) {
	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		var prev, next, reason sql.NullString
		if err := rows.Scan(
			&e.ID, &e.AdminUserID, &e.AdminName, &e.Action,
			&e.EntityType, &e.EntityID, &prev, &next, &reason, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		e.PreviousValue = unmarshalValue(e.ID, prev)
		e.NewValue = unmarshalValue(e.ID, next)
		if reason.Valid {
			e.Reason = &reason.String
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit rows: %w", err)
	}
	return entries, nil
}

func unmarshalValue(id int64, raw sql.NullString) map[string]any {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		slog.Warn("invalid audit value JSON", slog.Int64("audit_id", id), slog.Any("error", err))
		return nil
	}
	return v
}
