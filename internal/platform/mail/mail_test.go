package mail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTemplateEngine_RenderVisitConfirmation(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render(VisitConfirmationTemplate, map[string]string{
		"campaign_name": "Hydratation Hiver 2026",
		"pharmacy_name": "Pharmacie du Centre",
		"visit_date":    "12/10/2026",
		"visit_time":    "09:30",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Confirmation de visite - Hydratation Hiver 2026" {
		t.Errorf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "Pharmacie du Centre") || !strings.Contains(body, "09:30") {
		t.Errorf("body missing substitutions: %s", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestTemplateEngine_MissingKeysLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	subject, _, err := e.Render(VisitConfirmationTemplate, map[string]string{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(subject, "{{campaign_name}}") {
		t.Errorf("expected placeholder preserved, got %s", subject)
	}
}

func TestMockSender_RecordsCalls(t *testing.T) {
	m := &MockSender{}
	err := m.Send(context.Background(), Message{
		To:      "pharmacie@example.fr",
		CC:      []string{"agent@example.fr"},
		Subject: "sujet",
		Body:    "corps",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	calls := m.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].To != "pharmacie@example.fr" || len(calls[0].CC) != 1 {
		t.Errorf("unexpected call: %+v", calls[0])
	}
}

func TestMockSender_Failure(t *testing.T) {
	m := &MockSender{ShouldFail: true, FailError: "smtp unreachable"}
	err := m.Send(context.Background(), Message{To: "x@example.fr"})
	if err == nil || err.Error() != "smtp unreachable" {
		t.Errorf("expected configured failure, got %v", err)
	}
	if len(m.Calls()) != 1 {
		t.Error("failed sends should still be recorded")
	}
}

func TestMailgunSender_Send(t *testing.T) {
	var gotPath, gotAuth string
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewMailgunSender("mg.dermocrm.fr", "key-secret", "noreply@dermocrm.fr",
		WithMailgunBaseURL(srv.URL))

	err := s.Send(context.Background(), Message{
		To:      "pharmacie@example.fr",
		CC:      []string{"agent@example.fr"},
		Subject: "Confirmation de visite",
		Body:    "Bonjour",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/mg.dermocrm.fr/messages" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "Basic ") {
		t.Errorf("expected basic auth, got %q", gotAuth)
	}
	if gotForm["to"][0] != "pharmacie@example.fr" {
		t.Errorf("unexpected to: %v", gotForm["to"])
	}
	if gotForm["cc"][0] != "agent@example.fr" {
		t.Errorf("unexpected cc: %v", gotForm["cc"])
	}
}

func TestMailgunSender_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Forbidden"))
	}))
	defer srv.Close()

	s := NewMailgunSender("mg.dermocrm.fr", "bad-key", "noreply@dermocrm.fr",
		WithMailgunBaseURL(srv.URL))

	err := s.Send(context.Background(), Message{To: "x@example.fr"})
	if err == nil {
		t.Fatal("expected error from 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestMailgunSender_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	s := NewMailgunSender("mg.dermocrm.fr", "key", "noreply@dermocrm.fr",
		WithMailgunBaseURL(srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := s.Send(ctx, Message{To: "x@example.fr"}); err == nil {
		t.Error("expected error when context deadline elapses")
	}
}
