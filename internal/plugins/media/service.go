package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/plugins/audit"
)

// MediaService handles business logic for booking photos.
type MediaService interface {
	Upload(ctx context.Context, actor audit.Actor, input UploadInput) (*MediaFile, error)
	GetByID(ctx context.Context, id string) (*MediaFile, error)

	// Delete removes the record and its files, recording reason in the
	// audit log.
	Delete(ctx context.Context, actor audit.Actor, id, reason string) error

	List(ctx context.Context, st *listing.ViewState) (listing.Page[MediaFile], error)
	ListByBooking(ctx context.Context, bookingID string) ([]MediaFile, error)
	Stats(ctx context.Context) (*Stats, error)

	FilePath(file *MediaFile) string
	ThumbnailPath(file *MediaFile, size string) string
}

type mediaService struct {
	repo      MediaRepository
	audit     audit.AuditService
	mediaPath string // Root directory for file storage.
	maxSize   int64
	now       func() time.Time
}

// NewMediaService creates a new media service. auditSvc may be nil.
func NewMediaService(repo MediaRepository, auditSvc audit.AuditService, mediaPath string, maxSize int64) MediaService {
	return &mediaService{
		repo:      repo,
		audit:     auditSvc,
		mediaPath: mediaPath,
		maxSize:   maxSize,
		now:       time.Now,
	}
}

// Upload validates, stores, and records a new booking photo.
func (s *mediaService) Upload(ctx context.Context, actor audit.Actor, input UploadInput) (*MediaFile, error) {
	if strings.TrimSpace(input.BookingID) == "" {
		return nil, apperror.NewBadRequest("booking ID is required")
	}
	if !AllowedMimeTypes[input.MimeType] {
		return nil, apperror.NewBadRequest("unsupported file type: " + input.MimeType)
	}
	size := int64(len(input.FileBytes))
	if size > s.maxSize {
		return nil, apperror.NewBadRequest(fmt.Sprintf("file too large; maximum size is %d MB", s.maxSize/(1024*1024)))
	}
	if !validateMagicBytes(input.FileBytes, input.MimeType) {
		return nil, apperror.NewBadRequest("file content does not match declared type")
	}

	exists, err := s.repo.BookingExists(ctx, input.BookingID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if !exists {
		return nil, apperror.NewNotFound("booking not found")
	}

	id := uuid.NewString()
	now := s.now().UTC()
	relDir := now.Format("2006/01")
	dir := filepath.Join(s.mediaPath, relDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating media directory: %w", err))
	}

	filename := id + MimeToExtension[input.MimeType]
	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, input.FileBytes, 0o644); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("writing media file: %w", err))
	}

	file := &MediaFile{
		ID:                  id,
		BookingID:           input.BookingID,
		UploadedBy:          actor.UserID,
		Filename:            filepath.Join(relDir, filename),
		OriginalName:        filepath.Base(input.OriginalName),
		MimeType:            input.MimeType,
		FileSize:            size,
		ThumbnailPaths:      make(map[string]string),
		WasteLocation:       strings.TrimSpace(input.WasteLocation),
		AccessRestricted:    input.AccessRestricted,
		DismantlingRequired: input.DismantlingRequired,
		CreatedAt:           now,
	}

	for label, maxDim := range ThumbnailSizes {
		thumb, err := scaleToFit(input.FileBytes, maxDim)
		if errors.Is(err, errSmallEnough) {
			continue
		}
		if err == nil {
			name := fmt.Sprintf("%s_%d%s", id, maxDim, thumbnailExt(input.MimeType))
			err = writeThumbnail(filepath.Join(dir, name), thumb, input.MimeType)
			if err == nil {
				file.ThumbnailPaths[label] = filepath.Join(relDir, name)
				continue
			}
		}
		slog.Warn("thumbnail generation failed",
			slog.String("file_id", id),
			slog.String("size", label),
			slog.Any("error", err),
		)
	}

	if err := s.repo.Create(ctx, file); err != nil {
		s.removeFiles(file)
		return nil, apperror.NewInternal(fmt.Errorf("saving media record: %w", err))
	}

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionMediaUploaded,
		EntityType: audit.EntityMedia,
		EntityID:   id,
		New: map[string]any{
			"booking_id":    file.BookingID,
			"original_name": file.OriginalName,
		},
	})

	slog.Info("media file uploaded",
		slog.String("id", id),
		slog.String("booking_id", file.BookingID),
		slog.String("mime_type", input.MimeType),
		slog.Int64("size", size),
	)
	return file, nil
}

// GetByID retrieves a media file by ID.
func (s *mediaService) GetByID(ctx context.Context, id string) (*MediaFile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.NewBadRequest("media ID is required")
	}
	return s.repo.FindByID(ctx, id)
}

// Delete removes a media file from the database and then from disk.
func (s *mediaService) Delete(ctx context.Context, actor audit.Actor, id, reason string) error {
	file, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeFiles(file)

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionMediaDeleted,
		EntityType: audit.EntityMedia,
		EntityID:   id,
		Previous: map[string]any{
			"booking_id":    file.BookingID,
			"original_name": file.OriginalName,
		},
		Reason: reason,
	})

	slog.Info("media file deleted", slog.String("id", id))
	return nil
}

func (s *mediaService) List(ctx context.Context, st *listing.ViewState) (listing.Page[MediaFile], error) {
	files, err := s.repo.List(ctx, st.Filters)
	if err != nil {
		return listing.Page[MediaFile]{}, apperror.NewInternal(fmt.Errorf("listing media: %w", err))
	}
	return listing.PaginateView(files, st), nil
}

func (s *mediaService) ListByBooking(ctx context.Context, bookingID string) ([]MediaFile, error) {
	files, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return files, nil
}

func (s *mediaService) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return stats, nil
}

// FilePath returns the absolute path to a media file on disk.
func (s *mediaService) FilePath(file *MediaFile) string {
	return filepath.Join(s.mediaPath, file.Filename)
}

// ThumbnailPath returns the path to a thumbnail on disk, or the original
// when no thumbnail of that size was generated.
func (s *mediaService) ThumbnailPath(file *MediaFile, size string) string {
	if thumb, ok := file.ThumbnailPaths[size]; ok {
		return filepath.Join(s.mediaPath, thumb)
	}
	return s.FilePath(file)
}

func (s *mediaService) removeFiles(file *MediaFile) {
	os.Remove(s.FilePath(file))
	for _, thumb := range file.ThumbnailPaths {
		os.Remove(filepath.Join(s.mediaPath, thumb))
	}
}
