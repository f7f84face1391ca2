package mail

import (
	"fmt"
	"strings"
	"sync"
)

// VisitConfirmationTemplate is the template used when a reminder carries no
// custom body. Subjects and bodies are in French to match the field teams.
const VisitConfirmationTemplate = "visit-confirmation"

// Template defines a reusable email template.
type Template struct {
	ID      string
	Name    string
	Subject string
	Body    string
}

// TemplateEngine manages email templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      VisitConfirmationTemplate,
			Name:    "Visit Confirmation",
			Subject: "Confirmation de visite - {{campaign_name}}",
			Body: "Bonjour,\n\n" +
				"Nous vous confirmons la visite de formation prévue le {{visit_date}} à {{visit_time}} " +
				"pour la pharmacie {{pharmacy_name}} dans le cadre de la campagne {{campaign_name}}.\n\n" +
				"Cordialement,\nL'équipe Dermo-CRM",
		},
		{
			ID:      "visit-reschedule",
			Name:    "Visit Reschedule",
			Subject: "Report de visite - {{campaign_name}}",
			Body: "Bonjour,\n\n" +
				"La visite de formation pour la pharmacie {{pharmacy_name}} a été reportée au {{visit_date}} à {{visit_time}}.\n\n" +
				"Cordialement,\nL'équipe Dermo-CRM",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}
