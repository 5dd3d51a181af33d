package pricing

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/widgets/listview"
)

// Handler handles HTTP requests for pricing rules.
type Handler struct {
	service RuleService
	list    *listview.Controller
}

// NewHandler creates a new pricing rule handler.
func NewHandler(service RuleService, list *listview.Controller) *Handler {
	return &Handler{service: service, list: list}
}

// List renders the pricing rules page (GET /admin/pricing).
func (h *Handler) List(c echo.Context) error {
	st := h.list.Current(c)

	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		slog.Error("loading pricing rules", slog.Any("error", err))
		return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, nil))
	}

	h.list.Persist(c, st)
	return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, &page))
}

// CreateForm adds a rule from the pricing page (POST /admin/pricing).
func (h *Handler) CreateForm(c echo.Context) error {
	req, err := ruleFromForm(c)
	if err != nil {
		return err
	}
	if _, err := h.service.Create(c.Request().Context(), audit.ActorFrom(c), req); err != nil {
		return err
	}
	return middleware.Navigate(c, h.list.BasePath())
}

// ToggleForm switches a rule on or off (POST /admin/pricing/:id/active).
func (h *Handler) ToggleForm(c echo.Context) error {
	active := c.FormValue("active") == "true"
	if _, err := h.service.SetActive(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), active); err != nil {
		return err
	}
	return middleware.Navigate(c, h.list.BasePath())
}

// DeleteForm removes a rule (POST /admin/pricing/:id/delete).
func (h *Handler) DeleteForm(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), audit.ActorFrom(c), c.Param("id")); err != nil {
		return err
	}
	return middleware.Navigate(c, h.list.BasePath())
}

// APIList returns one page of rules as JSON (GET /api/pricing/rules).
func (h *Handler) APIList(c echo.Context) error {
	st := listview.Stateless(c)
	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// APIGet returns one rule (GET /api/pricing/rules/:id).
func (h *Handler) APIGet(c echo.Context) error {
	rule, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rule)
}

// Create adds a rule (POST /api/pricing/rules).
func (h *Handler) Create(c echo.Context) error {
	var req RuleRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	rule, err := h.service.Create(c.Request().Context(), audit.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rule)
}

// Update replaces a rule (PUT /api/pricing/rules/:id).
func (h *Handler) Update(c echo.Context) error {
	var req RuleRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	rule, err := h.service.Update(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rule)
}

// SetActive switches a rule on or off (PUT /api/pricing/rules/:id/active).
func (h *Handler) SetActive(c echo.Context) error {
	var req ActiveRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	rule, err := h.service.SetActive(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rule)
}

// Delete removes a rule (DELETE /api/pricing/rules/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), audit.ActorFrom(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ruleFromForm reads the new-rule form. Blank number fields stay nil.
func ruleFromForm(c echo.Context) (RuleRequest, error) {
	req := RuleRequest{
		Name:              c.FormValue("rule_name"),
		RuleType:          c.FormValue("rule_type"),
		ConditionType:     c.FormValue("condition_type"),
		CalculationMethod: c.FormValue("calculation_method"),
		Description:       c.FormValue("description"),
		AppliesTo:         c.FormValue("applies_to"),
	}

	amounts := []struct {
		field string
		dst   **float64
	}{
		{"base_amount", &req.BaseAmount},
		{"percentage_rate", &req.PercentageRate},
		{"min_amount", &req.MinAmount},
		{"max_amount", &req.MaxAmount},
	}
	for _, a := range amounts {
		raw := strings.TrimSpace(c.FormValue(a.field))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return RuleRequest{}, apperror.NewValidation(strings.ReplaceAll(a.field, "_", " ") + " must be a number")
		}
		*a.dst = &v
	}

	if raw := strings.TrimSpace(c.FormValue("priority")); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return RuleRequest{}, apperror.NewValidation("priority must be a whole number")
		}
		req.Priority = &p
	}
	return req, nil
}
