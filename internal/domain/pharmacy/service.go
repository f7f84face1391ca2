package pharmacy

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/geo"
)

type Service struct {
	repo     Repository
	geocoder geo.Geocoder
	logger   zerolog.Logger
}

func NewService(repo Repository, geocoder geo.Geocoder, logger zerolog.Logger) *Service {
	return &Service{repo: repo, geocoder: geocoder, logger: logger}
}

// CreateResult reports a pharmacy creation, including any absorbed geocoding
// failure.
type CreateResult struct {
	Pharmacy     *Pharmacy `json:"pharmacy"`
	GeocodeError string    `json:"geocode_error,omitempty"`
}

// Create persists a pharmacy, geocoding its address when no explicit
// coordinates were supplied. Geocoding failure never blocks creation; the
// pharmacy is stored without coordinates and the failure is reported as data.
func (s *Service) Create(ctx context.Context, p *Pharmacy) (*CreateResult, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	p.Active = true

	result := &CreateResult{Pharmacy: p}
	if !p.HasCoordinates() {
		if geoErr := s.geocode(ctx, p); geoErr != nil {
			result.GeocodeError = geoErr.Error()
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return s.repo.GetByID(ctx, id)
}

// Update persists changes, re-geocoding when the address changed and no
// explicit coordinates were supplied.
func (s *Service) Update(ctx context.Context, p *Pharmacy) (*CreateResult, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	result := &CreateResult{Pharmacy: p}
	addressChanged := existing.FullAddress() != p.FullAddress()
	if !p.HasCoordinates() && addressChanged {
		if geoErr := s.geocode(ctx, p); geoErr != nil {
			result.GeocodeError = geoErr.Error()
		}
	} else if !p.HasCoordinates() {
		p.Latitude = existing.Latitude
		p.Longitude = existing.Longitude
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return result, nil
}

// Archive deactivates a pharmacy. Enrollment and visit history is preserved.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Active = false
	return s.repo.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Pharmacy, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) MapPoints(ctx context.Context) ([]*MapPoint, error) {
	return s.repo.ListMapPoints(ctx)
}

func (s *Service) AddContact(ctx context.Context, c *Contact) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Validation("contact name is required")
	}
	if _, err := s.repo.GetByID(ctx, c.PharmacyID); err != nil {
		return err
	}
	return s.repo.AddContact(ctx, c)
}

func (s *Service) ListContacts(ctx context.Context, pharmacyID uuid.UUID) ([]*Contact, error) {
	return s.repo.ListContacts(ctx, pharmacyID)
}

func (s *Service) RemoveContact(ctx context.Context, id uuid.UUID) error {
	return s.repo.RemoveContact(ctx, id)
}

func (s *Service) AddAgent(ctx context.Context, a *Agent) error {
	if strings.TrimSpace(a.Name) == "" {
		return apperr.Validation("agent name is required")
	}
	if _, err := s.repo.GetByID(ctx, a.PharmacyID); err != nil {
		return err
	}
	return s.repo.AddAgent(ctx, a)
}

func (s *Service) ListAgents(ctx context.Context, pharmacyID uuid.UUID) ([]*Agent, error) {
	return s.repo.ListAgents(ctx, pharmacyID)
}

func (s *Service) RemoveAgent(ctx context.Context, id uuid.UUID) error {
	return s.repo.RemoveAgent(ctx, id)
}

func (s *Service) geocode(ctx context.Context, p *Pharmacy) error {
	address := p.FullAddress()
	if address == "" {
		return nil
	}

	coords, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger.Warn().Err(err).Str("address", address).Msg("geocoding failed")
		return apperr.Transport("geocoding failed", err)
	}
	if coords == nil {
		s.logger.Debug().Str("address", address).Msg("address not found by geocoder")
		return nil
	}

	p.Latitude = &coords.Latitude
	p.Longitude = &coords.Longitude
	return nil
}

func validate(p *Pharmacy) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("name is required")
	}
	if p.Type == "" {
		p.Type = TypePharmacie
	}
	if !validTypes[p.Type] {
		return apperr.Validation("invalid pharmacy type: %s", p.Type)
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return apperr.Validation("invalid email: %s", p.Email)
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return apperr.Validation("latitude and longitude must be supplied together")
	}
	return nil
}
