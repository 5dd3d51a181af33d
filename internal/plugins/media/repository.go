package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
)

// Fields maps the shared list filters onto the media query. The status
// value selects one of the content filters.
var Fields = listing.FieldMap{
	StatusClauses: map[string]string{
		FilterAccessRestricted:    "m.access_restricted = TRUE",
		FilterDismantlingRequired: "m.dismantling_required = TRUE",
		FilterRecent:              fmt.Sprintf("m.created_at >= NOW() - INTERVAL %d DAY", RecentDays),
	},
	SearchColumns: []string{"m.waste_location", "m.original_name", "m.booking_id"},
	DateColumn:    "m.created_at",
	SortColumns: map[string]string{
		"created_at":     "m.created_at",
		"waste_location": "m.waste_location",
		"file_size":      "m.file_size",
	},
	DefaultSort: "created_at",
}

// MediaRepository defines the data access contract for media file operations.
type MediaRepository interface {
	Create(ctx context.Context, file *MediaFile) error
	FindByID(ctx context.Context, id string) (*MediaFile, error)
	Delete(ctx context.Context, id string) error

	// List returns every upload matching the filters.
	List(ctx context.Context, f listing.Filters) ([]MediaFile, error)

	ListByBooking(ctx context.Context, bookingID string) ([]MediaFile, error)

	// BookingExists reports whether a booking with id exists.
	BookingExists(ctx context.Context, id string) (bool, error)

	Stats(ctx context.Context) (*Stats, error)
}

// mediaRepository implements MediaRepository with MariaDB queries.
type mediaRepository struct {
	db         *sql.DB
	translator *listing.Translator
}

// NewMediaRepository creates a new media repository.
func NewMediaRepository(db *sql.DB, translator *listing.Translator) MediaRepository {
	return &mediaRepository{db: db, translator: translator}
}

const mediaSelect = `SELECT m.id, m.booking_id, m.uploaded_by, m.filename, m.original_name,
	m.mime_type, m.file_size, m.thumbnail_paths, m.waste_location,
	m.access_restricted, m.dismantling_required, m.created_at
	FROM media_uploads m`

// Create inserts a new media file record.
func (r *mediaRepository) Create(ctx context.Context, file *MediaFile) error {
	thumbJSON, err := json.Marshal(file.ThumbnailPaths)
	if err != nil {
		return fmt.Errorf("marshaling thumbnail paths: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO media_uploads (id, booking_id, uploaded_by, filename, original_name,
		mime_type, file_size, thumbnail_paths, waste_location, access_restricted,
		dismantling_required, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file.ID, file.BookingID, file.UploadedBy, file.Filename, file.OriginalName,
		file.MimeType, file.FileSize, string(thumbJSON), file.WasteLocation,
		file.AccessRestricted, file.DismantlingRequired, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting media file: %w", err)
	}
	return nil
}

// FindByID retrieves a media file by its UUID.
func (r *mediaRepository) FindByID(ctx context.Context, id string) (*MediaFile, error) {
	file, err := scanMedia(r.db.QueryRowContext(ctx, mediaSelect+` WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("media file not found")
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Delete removes a media file record.
func (r *mediaRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media_uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting media file: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NewNotFound("media file not found")
	}
	return nil
}

func (r *mediaRepository) List(ctx context.Context, f listing.Filters) ([]MediaFile, error) {
	where, args := r.translator.Where(r.translator.Translate(f))
	return r.query(ctx, mediaSelect+` `+where+` `+r.translator.OrderBy(f), args...)
}

func (r *mediaRepository) ListByBooking(ctx context.Context, bookingID string) ([]MediaFile, error) {
	return r.query(ctx, mediaSelect+` WHERE m.booking_id = ? ORDER BY m.created_at ASC`, bookingID)
}

func (r *mediaRepository) BookingExists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking booking: %w", err)
	}
	return n > 0, nil
}

// Stats aggregates upload counts, flags and the most common waste location.
func (r *mediaRepository) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(file_size), 0),
		COALESCE(SUM(access_restricted), 0), COALESCE(SUM(dismantling_required), 0),
		COALESCE(SUM(created_at >= NOW() - INTERVAL %d DAY), 0)
		FROM media_uploads`, RecentDays),
	).Scan(&s.TotalUploads, &s.TotalBytes, &s.AccessRestricted, &s.DismantlingRequired, &s.RecentUploads)
	if err != nil {
		return nil, fmt.Errorf("querying media totals: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT waste_location FROM media_uploads WHERE waste_location <> ''
		GROUP BY waste_location ORDER BY COUNT(*) DESC, waste_location ASC LIMIT 1`,
	).Scan(&s.TopWasteLocation)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("querying top waste location: %w", err)
	}
	return s, nil
}

func (r *mediaRepository) query(ctx context.Context, query string, args ...any) ([]MediaFile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing media files: %w", err)
	}
	defer rows.Close()

	files := []MediaFile{}
	for rows.Next() {
		f, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMedia(s scanner) (*MediaFile, error) {
	f := &MediaFile{}
	var thumbJSON sql.NullString
	err := s.Scan(
		&f.ID, &f.BookingID, &f.UploadedBy, &f.Filename, &f.OriginalName,
		&f.MimeType, &f.FileSize, &thumbJSON, &f.WasteLocation,
		&f.AccessRestricted, &f.DismantlingRequired, &f.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning media file: %w", err)
	}

	f.ThumbnailPaths = make(map[string]string)
	if thumbJSON.Valid && thumbJSON.String != "" {
		if err := json.Unmarshal([]byte(thumbJSON.String), &f.ThumbnailPaths); err != nil {
			return nil, fmt.Errorf("unmarshaling thumbnail paths: %w", err)
		}
	}
	return f, nil
}
