package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/backend"
	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/plugins/audit"
)

// maxVolume is the largest load, in cubic yards, a single quote may price.
const maxVolume = 100

var postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?[0-9][A-Z]{2}$`)

// QuoteService handles business logic for quotes.
type QuoteService interface {
	// Create prices req through the backend procedures and records the
	// quote as a draft. token is the caller's session token.
	Create(ctx context.Context, actor audit.Actor, token string, req CreateQuoteRequest) (*Quote, error)

	GetByID(ctx context.Context, id string) (*Quote, error)
	UpdateStatus(ctx context.Context, actor audit.Actor, id string, req StatusUpdateRequest) (*Quote, error)
	List(ctx context.Context, st *listing.ViewState) (listing.Page[Quote], error)
}

type quoteService struct {
	repo  QuoteRepository
	procs backend.Procedures
	audit audit.AuditService
	now   func() time.Time
}

// NewQuoteService creates a quote service. auditSvc may be nil.
func NewQuoteService(repo QuoteRepository, procs backend.Procedures, auditSvc audit.AuditService) QuoteService {
	return &quoteService{repo: repo, procs: procs, audit: auditSvc, now: time.Now}
}

// NormalizePostcode upper-cases a UK postcode and puts a single space before
// the inward code. It reports false when the result is not a valid postcode.
func NormalizePostcode(raw string) (string, bool) {
	compact := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if !postcodePattern.MatchString(compact) {
		return "", false
	}
	return compact[:len(compact)-3] + " " + compact[len(compact)-3:], true
}

func (s *quoteService) Create(ctx context.Context, actor audit.Actor, token string, req CreateQuoteRequest) (*Quote, error) {
	postcode, ok := NormalizePostcode(req.Postcode)
	if !ok {
		return nil, apperror.NewValidation("a valid UK postcode is required")
	}
	if req.Volume <= 0 || req.Volume > maxVolume {
		return nil, apperror.NewValidation(fmt.Sprintf("volume must be between 0 and %d cubic yards", maxVolume))
	}
	if req.CollectionDate != "" {
		if _, err := time.Parse(time.DateOnly, req.CollectionDate); err != nil {
			return nil, apperror.NewValidation("collection date must be YYYY-MM-DD")
		}
	}

	price, err := s.procs.CalculatePrice(ctx, token, backend.PriceInput{
		Postcode:       postcode,
		Volume:         req.Volume,
		CollectionDate: req.CollectionDate,
		Heavy:          req.HeavyItems,
		Dismantling:    req.Dismantling,
	})
	if err != nil {
		return nil, err
	}
	number, err := s.procs.GenerateQuoteNumber(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	q := &Quote{
		ID:          uuid.NewString(),
		QuoteNumber: number,
		BookingID:   optional(req.BookingID),
		CustomerID:  optional(req.CustomerID),
		Status:      StatusDraft,
		Postcode:    postcode,
		Volume:      strconv.FormatFloat(req.Volume, 'f', -1, 64),
		Amount:      price.Total,
		Currency:    price.Currency,
		Breakdown:   price.Breakdown,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, apperror.NewInternal(err)
	}

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionQuoteCreated,
		EntityType: audit.EntityQuote,
		EntityID:   q.ID,
		New: map[string]any{
			"quote_number": q.QuoteNumber,
			"amount":       q.Amount,
			"postcode":     q.Postcode,
		},
	})

	slog.Info("quote created",
		slog.String("quote_id", q.ID),
		slog.String("quote_number", q.QuoteNumber),
		slog.Float64("amount", q.Amount),
	)
	return q, nil
}

func (s *quoteService) GetByID(ctx context.Context, id string) (*Quote, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.NewBadRequest("quote ID is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *quoteService) UpdateStatus(ctx context.Context, actor audit.Actor, id string, req StatusUpdateRequest) (*Quote, error) {
	status := Status(strings.TrimSpace(req.Status))
	if !status.Valid() {
		return nil, apperror.NewValidation("unknown quote status: " + req.Status)
	}

	q, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == status {
		return q, nil
	}
	if q.Status == StatusAccepted || q.Status == StatusExpired {
		return nil, apperror.NewConflict("quote is " + string(q.Status) + " and can no longer change")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	prev := q.Status
	q.Status = status

	audit.Record(ctx, s.audit, actor, audit.Change{
		Action:     audit.ActionQuoteStatusChanged,
		EntityType: audit.EntityQuote,
		EntityID:   id,
		Previous:   map[string]any{"status": string(prev)},
		New:        map[string]any{"status": string(status)},
		Reason:     req.Reason,
	})
	return q, nil
}

func (s *quoteService) List(ctx context.Context, st *listing.ViewState) (listing.Page[Quote], error) {
	items, err := s.repo.List(ctx, st.Filters)
	if err != nil {
		return listing.Page[Quote]{}, apperror.NewInternal(fmt.Errorf("listing quotes: %w", err))
	}
	return listing.PaginateView(items, st), nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
