package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/plusvans/admin/internal/apperror"
)

// PriceInput is the argument set of the calculate_price procedure.
type PriceInput struct {
	Postcode       string  `json:"postcode"`
	Volume         float64 `json:"volume"`
	CollectionDate string  `json:"collection_date,omitempty"`
	Heavy          bool    `json:"heavy_items"`
	Dismantling    bool    `json:"dismantling_required"`
}

// PriceResult is what calculate_price returns.
type PriceResult struct {
	Total     float64         `json:"total"`
	Currency  string          `json:"currency"`
	Breakdown json.RawMessage `json:"breakdown"`
}

// Procedures are the backend-side stored procedures the admin calls. Pricing
// logic stays remote; this interface is the only contract the admin relies on.
type Procedures interface {
	CalculatePrice(ctx context.Context, token string, in PriceInput) (*PriceResult, error)
	GenerateQuoteNumber(ctx context.Context, token string) (string, error)
}

// CalculatePrice invokes the calculate_price procedure.
func (c *Client) CalculatePrice(ctx context.Context, token string, in PriceInput) (*PriceResult, error) {
	var out PriceResult
	if err := c.rpc(ctx, token, "calculate_price", in, &out); err != nil {
		return nil, err
	}
	if out.Currency == "" {
		out.Currency = "GBP"
	}
	return &out, nil
}

// GenerateQuoteNumber invokes the generate_quote_number procedure.
func (c *Client) GenerateQuoteNumber(ctx context.Context, token string) (string, error) {
	var out string
	if err := c.rpc(ctx, token, "generate_quote_number", struct{}{}, &out); err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", apperror.NewStatus(http.StatusBadGateway, "generate_quote_number returned no value")
	}
	return out, nil
}

// rpc POSTs args as JSON to {API_URL}/rpc/{name} and decodes the result.
func (c *Client) rpc(ctx context.Context, token, name string, args, out any) error {
	payload, err := json.Marshal(args)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("marshaling %s args: %w", name, err))
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/rpc/"+name, bytes.NewReader(payload), token)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return apperror.NewStatus(status, detailMessage(body, name+" failed"))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperror.NewStatus(http.StatusBadGateway, name+" returned an invalid payload")
	}
	return nil
}
