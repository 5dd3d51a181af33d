package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestSafeMessage_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("loading bookings: %w", NewNotFound("booking not found"))
	if got := SafeMessage(err); got != "booking not found" {
		t.Errorf("expected wrapped message, got %q", got)
	}
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to see through wrapping")
	}
}

func TestSafeMessage_PlainError(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.3:3306: connection refused")
	if got := SafeMessage(err); got != "an unexpected error occurred" {
		t.Errorf("raw error leaked: %q", got)
	}
	if SafeCode(err) != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", SafeCode(err))
	}
}

func TestNewStatus(t *testing.T) {
	tests := []struct {
		code     int
		wantCode int
		wantType string
	}{
		{http.StatusUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{http.StatusBadRequest, http.StatusBadRequest, "bad_request"},
		{http.StatusTeapot, http.StatusTeapot, "request_error"},
		{http.StatusBadGateway, http.StatusBadGateway, "upstream_error"},
		{http.StatusOK, http.StatusBadGateway, "upstream_error"},
		{0, http.StatusBadGateway, "upstream_error"},
	}
	for _, tt := range tests {
		err := NewStatus(tt.code, "login failed")
		if err.Code != tt.wantCode || err.Type != tt.wantType {
			t.Errorf("NewStatus(%d) = %d/%s, want %d/%s", tt.code, err.Code, err.Type, tt.wantCode, tt.wantType)
		}
	}
}

func TestNewUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := NewUnavailable("backend unreachable", cause)
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	if err.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", err.Code)
	}
}
