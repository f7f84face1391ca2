package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{NotFound("pharmacy %d not found", 5), KindNotFound},
		{Unauthorized("wrong campaign"), KindUnauthorized},
		{Validation("comment is required"), KindValidation},
		{Transport("email send failed", errors.New("dial timeout")), KindTransport},
		{Persistence("insert enrollment", errors.New("connection reset")), KindPersistence},
		{errors.New("plain"), 0},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("transition failed: %w", NotFound("enrollment not found"))
	if !IsNotFound(err) {
		t.Error("expected wrapped error to remain a not-found error")
	}
	if IsValidation(err) {
		t.Error("wrapped not-found should not match validation")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Unauthorized("x"), http.StatusForbidden},
		{Validation("x"), http.StatusBadRequest},
		{Transport("x", nil), http.StatusBadGateway},
		{Persistence("x", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestError_Message(t *testing.T) {
	err := Transport("geocoding failed", errors.New("503"))
	if err.Error() != "geocoding failed: 503" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	bare := Validation("scheduled_date is required")
	if bare.Error() != "scheduled_date is required" {
		t.Errorf("unexpected message: %s", bare.Error())
	}
}
