package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/plusvans/admin/internal/apperror"
)

// Health fetches {API_URL}/healthz and returns its JSON fields. Every failure
// (not configured, unreachable, non-2xx, undecodable body) is a 503.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/healthz", nil, "")
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, apperror.NewUnavailable(fmt.Sprintf("Backend service returned status: %d", status), nil)
	}

	fields := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, apperror.NewUnavailable("Backend service returned an invalid health payload",
				fmt.Errorf("decoding healthz: %w", err))
		}
	}
	return fields, nil
}
