package customers

import (
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/widgets/listview"
)

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewCustomerService(&mockCustomerRepo{}, nil), listview.NewController(nil, "customers", "/admin/customers"))
	RegisterRoutes(e, h, nil, config.AuthConfig{})

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /admin/customers",
		"POST /admin/customers/selection",
		"POST /admin/customers/export",
		"POST /api/customers/export",
		"GET /api/customers/:id",
	} {
		if !routes[want] {
			t.Errorf("missing route %s", want)
		}
	}
	if routes["POST /api/customers/selection"] {
		t.Error("the API keeps no list state and should not expose selection")
	}
}
