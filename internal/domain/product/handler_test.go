package product

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dermocrm/crm/internal/platform/apperr"
)

type mockRepo struct {
	products map[uuid.UUID]*Product
}

func newMockRepo() *mockRepo {
	return &mockRepo{products: make(map[uuid.UUID]*Product)}
}

func (m *mockRepo) Create(_ context.Context, p *Product) error {
	p.ID = uuid.New()
	m.products[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.NotFound("product %s not found", id)
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return apperr.NotFound("product %s not found", p.ID)
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.products, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, activeOnly bool, category string, limit, offset int) ([]*Product, int, error) {
	var result []*Product
	for _, p := range m.products {
		if activeOnly && !p.Active {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

func newTestHandler() (*Handler, *mockRepo) {
	repo := newMockRepo()
	return NewHandler(NewService(repo)), repo
}

func TestCreateProduct(t *testing.T) {
	h, repo := newTestHandler()

	e := echo.New()
	body := `{"name":"Crème Hydra+","brand":"DermoLab","category":"hydratation"}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var created Product
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.Active {
		t.Error("new products should be active")
	}
	if _, ok := repo.products[created.ID]; !ok {
		t.Error("product not persisted")
	}
}

func TestCreateProduct_MissingName(t *testing.T) {
	h, _ := newTestHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"brand":"DermoLab"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	if err == nil {
		t.Fatal("expected error")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	h, _ := newTestHandler()

	id := uuid.New()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/products/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	err := h.Get(c)
	if err == nil {
		t.Fatal("expected error")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestArchiveProduct(t *testing.T) {
	h, repo := newTestHandler()

	p := &Product{Name: "Sérum B", Active: true}
	_ = repo.Create(context.Background(), p)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/products/"+p.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.Archive(c); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if repo.products[p.ID].Active {
		t.Error("expected product inactive after archive")
	}
}
