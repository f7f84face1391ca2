package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for pharmacies and their owned
// contacts and agents.
type Repository interface {
	Create(ctx context.Context, p *Pharmacy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	Update(ctx context.Context, p *Pharmacy) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Pharmacy, int, error)
	ListMapPoints(ctx context.Context) ([]*MapPoint, error)

	AddContact(ctx context.Context, c *Contact) error
	ListContacts(ctx context.Context, pharmacyID uuid.UUID) ([]*Contact, error)
	RemoveContact(ctx context.Context, id uuid.UUID) error

	AddAgent(ctx context.Context, a *Agent) error
	ListAgents(ctx context.Context, pharmacyID uuid.UUID) ([]*Agent, error)
	RemoveAgent(ctx context.Context, id uuid.UUID) error
}
