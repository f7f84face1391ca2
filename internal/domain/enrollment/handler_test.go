package enrollment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo, passthroughTx{})
	return NewHandler(svc), repo
}

func patchStatus(h *Handler, campaignID uuid.UUID, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/campaigns/"+campaignID.String()+"/enrollments/status",
		strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("campaignID")
	c.SetParamValues(campaignID.String())
	return rec, h.Transition(c)
}

func TestTransitionHandler(t *testing.T) {
	h, repo := newTestHandler()
	campaignID := uuid.New()
	enr := seedEnrollment(t, repo, campaignID, StatusScheduled)

	rec, err := patchStatus(h, campaignID,
		`{"enrollment_id":"`+enr.ID.String()+`","status":"done"}`)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result TransitionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.OldStatus != StatusScheduled || result.NewStatus != StatusDone {
		t.Errorf("unexpected statuses: %s -> %s", result.OldStatus, result.NewStatus)
	}
}

func TestTransitionHandler_InvalidStatus(t *testing.T) {
	h, repo := newTestHandler()
	campaignID := uuid.New()
	enr := seedEnrollment(t, repo, campaignID, StatusPending)

	_, err := patchStatus(h, campaignID,
		`{"enrollment_id":"`+enr.ID.String()+`","status":"archived"}`)
	if err == nil {
		t.Fatal("expected error")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestTransitionHandler_WrongCampaign(t *testing.T) {
	h, repo := newTestHandler()
	enr := seedEnrollment(t, repo, uuid.New(), StatusPending)

	_, err := patchStatus(h, uuid.New(),
		`{"enrollment_id":"`+enr.ID.String()+`","status":"pending"}`)
	if err == nil {
		t.Fatal("expected error")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestAddPharmacyHandler_Duplicate(t *testing.T) {
	h, _ := newTestHandler()
	campaignID := uuid.New()
	pharmacyID := uuid.New()
	body := `{"pharmacy_id":"` + pharmacyID.String() + `"}`

	post := func() (*httptest.ResponseRecorder, error) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/campaigns/"+campaignID.String()+"/enrollments",
			strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("campaignID")
		c.SetParamValues(campaignID.String())
		return rec, h.AddPharmacy(c)
	}

	rec, err := post()
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	_, err = post()
	if err == nil {
		t.Fatal("expected duplicate rejection")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
