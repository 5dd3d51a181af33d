package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/plusvans/admin/internal/apperror"
)

// NoteRepository defines the data access contract for booking notes.
type NoteRepository interface {
	Create(ctx context.Context, note *Note) error
	FindByID(ctx context.Context, id string) (*Note, error)
	Update(ctx context.Context, note *Note) error
	Delete(ctx context.Context, id string) error

	// ListByBooking returns a booking's notes, oldest first.
	ListByBooking(ctx context.Context, bookingID string) ([]Note, error)
}

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db}
}

const noteColumns = `id, booking_id, author_id, author_name, body, body_html, created_at`

func (r *noteRepository) Create(ctx context.Context, note *Note) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO booking_notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.BookingID, note.AuthorID, note.AuthorName,
		note.Body, note.BodyHTML, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	return nil
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (*Note, error) {
	var n Note
	err := r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM booking_notes WHERE id = ?`, id,
	).Scan(&n.ID, &n.BookingID, &n.AuthorID, &n.AuthorName, &n.Body, &n.BodyHTML, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("note not found")
	}
	if err != nil {
		return nil, fmt.Errorf("finding note: %w", err)
	}
	return &n, nil
}

func (r *noteRepository) Update(ctx context.Context, note *Note) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE booking_notes SET body = ?, body_html = ? WHERE id = ?`,
		note.Body, note.BodyHTML, note.ID,
	)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM booking_notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperror.NewNotFound("note not found")
	}
	return nil
}

func (r *noteRepository) ListByBooking(ctx context.Context, bookingID string) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM booking_notes WHERE booking_id = ? ORDER BY created_at ASC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.BookingID, &n.AuthorID, &n.AuthorName, &n.Body, &n.BodyHTML, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}
