package referent

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dermocrm/crm/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	referents map[uuid.UUID]*Referent
}

func newMockRepo() *mockRepo {
	return &mockRepo{referents: make(map[uuid.UUID]*Referent)}
}

func (m *mockRepo) Create(_ context.Context, r *Referent) error {
	r.ID = uuid.New()
	m.referents[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Referent, error) {
	r, ok := m.referents[id]
	if !ok {
		return nil, apperr.NotFound("referent %s not found", id)
	}
	return r, nil
}

func (m *mockRepo) Update(_ context.Context, r *Referent) error {
	if _, ok := m.referents[r.ID]; !ok {
		return apperr.NotFound("referent %s not found", r.ID)
	}
	m.referents[r.ID] = r
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.referents, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]*Referent, int, error) {
	var result []*Referent
	for _, r := range m.referents {
		if activeOnly && !r.Active {
			continue
		}
		result = append(result, r)
	}
	return result, len(result), nil
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())

	ref := &Referent{Name: "Claire Dupont", Email: "claire@example.fr", Zone: "Rhône-Alpes"}
	if err := svc.Create(context.Background(), ref); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ref.ID == uuid.Nil {
		t.Error("expected assigned ID")
	}
	if !ref.Active {
		t.Error("new referents should be active")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []*Referent{
		{Name: ""},
		{Name: "   "},
		{Name: "X", Email: "not-an-email"},
		{Name: "X", TargetPharmacyCount: -1},
	}
	for _, ref := range cases {
		err := svc.Create(context.Background(), ref)
		if !apperr.IsValidation(err) {
			t.Errorf("%+v: expected validation error, got %v", ref, err)
		}
	}
}

func TestArchive(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	ref := &Referent{Name: "Claire Dupont"}
	if err := svc.Create(context.Background(), ref); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Archive(context.Background(), ref.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if repo.referents[ref.ID].Active {
		t.Error("expected referent inactive after archive")
	}
}

func TestArchive_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Archive(context.Background(), uuid.New())
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}
