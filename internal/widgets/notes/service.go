package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/sanitize"
)

// NoteService handles business logic for booking notes.
type NoteService interface {
	List(ctx context.Context, bookingID string) ([]Note, error)
	Create(ctx context.Context, actor audit.Actor, bookingID string, req CreateNoteRequest) (*Note, error)

	// Update edits a note. Only the author may edit.
	Update(ctx context.Context, actor audit.Actor, noteID string, req UpdateNoteRequest) (*Note, error)

	// Delete removes a note. The author may delete; admins may delete any.
	Delete(ctx context.Context, actor audit.Actor, noteID string, isAdmin bool) error
}

type noteService struct {
	repo  NoteRepository
	audit audit.AuditService
	now   func() time.Time
}

// NewNoteService creates a new note service. auditSvc may be nil.
func NewNoteService(repo NoteRepository, auditSvc audit.AuditService) NoteService {
	return &noteService{repo: repo, audit: auditSvc, now: time.Now}
}

func (s *noteService) List(ctx context.Context, bookingID string) ([]Note, error) {
	if bookingID == "" {
		return nil, apperror.NewBadRequest("booking ID is required")
	}
	notes, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return notes, nil
}

func (s *noteService) Create(ctx context.Context, actor audit.Actor, bookingID string, req CreateNoteRequest) (*Note, error) {
	if bookingID == "" {
		return nil, apperror.NewBadRequest("booking ID is required")
	}
	body, html, err := render(req.Body)
	if err != nil {
		return nil, err
	}

	note := &Note{
		ID:         uuid.NewString(),
		BookingID:  bookingID,
		AuthorID:   actor.UserID,
		AuthorName: actor.Name,
		Body:       body,
		BodyHTML:   html,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, apperror.NewInternal(err)
	}

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionBookingNoteAdded,
		EntityType: audit.EntityBooking,
		EntityID:   bookingID,
		New:        map[string]any{"note_id": note.ID},
	})
	return note, nil
}

func (s *noteService) Update(ctx context.Context, actor audit.Actor, noteID string, req UpdateNoteRequest) (*Note, error) {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.AuthorID != actor.UserID {
		return nil, apperror.NewForbidden("only the author can edit this note")
	}

	body, html, err := render(req.Body)
	if err != nil {
		return nil, err
	}
	note.Body, note.BodyHTML = body, html

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, apperror.NewInternal(err)
	}
	return note, nil
}

func (s *noteService) Delete(ctx context.Context, actor audit.Actor, noteID string, isAdmin bool) error {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		return err
	}
	if note.AuthorID != actor.UserID && !isAdmin {
		return apperror.NewForbidden("only the author or an admin can delete this note")
	}
	return s.repo.Delete(ctx, noteID)
}

// render validates a Markdown body and returns it with its sanitized HTML.
func render(raw string) (string, string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", "", apperror.NewValidation("note body is required")
	}
	if len(body) > MaxBodyLength {
		return "", "", apperror.NewValidation(fmt.Sprintf("note body must be at most %d characters", MaxBodyLength))
	}
	html, err := sanitize.Markdown(body)
	if err != nil {
		return "", "", apperror.NewInternal(fmt.Errorf("rendering note: %w", err))
	}
	return body, html, nil
}
