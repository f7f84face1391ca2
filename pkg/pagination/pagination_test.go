package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(target string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		target     string
		wantLimit  int
		wantOffset int
	}{
		{"/pharmacies", DefaultLimit, 0},
		{"/pharmacies?limit=50&offset=10", 50, 10},
		{"/pharmacies?limit=5000", MaxLimit, 0},
		{"/pharmacies?limit=-3&offset=-9", DefaultLimit, 0},
		{"/pharmacies?limit=abc", DefaultLimit, 0},
	}
	for _, tc := range cases {
		p := paramsFor(tc.target)
		if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
			t.Errorf("%s: got %+v, want limit=%d offset=%d", tc.target, p, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	resp := NewResponse([]string{"a", "b"}, 10, 2, 0)
	if !resp.HasMore {
		t.Error("expected HasMore with total 10 at offset 0")
	}

	last := NewResponse([]string{"a", "b"}, 10, 2, 8)
	if last.HasMore {
		t.Error("expected HasMore false on the final page")
	}
}

func TestNextOffset(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if p.NextOffset() != 60 {
		t.Errorf("expected 60, got %d", p.NextOffset())
	}
	if !p.HasNext(100) {
		t.Error("expected more pages with total 100")
	}
	if p.HasNext(60) {
		t.Error("expected no more pages with total 60")
	}
}
