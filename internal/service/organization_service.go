package service

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/phonebook/internal/domain"
	"github.com/yourorg/phonebook/internal/security"
)

// OrganizationService implements the organization operations with
// authorization applied per resource instance.
type OrganizationService struct {
	orgs   domain.OrganizationRepository
	authz  *security.Engine
	logger *slog.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	orgs domain.OrganizationRepository,
	authz *security.Engine,
	logger *slog.Logger,
) *OrganizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrganizationService{orgs: orgs, authz: authz, logger: logger}
}

// OrganizationPatch carries a partial update; nil fields are left untouched.
type OrganizationPatch struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
}

// permissionError distinguishes the caller with no identity from the caller
// whose identity is refused by policy.
func permissionError(identity *domain.User) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	return domain.ErrForbidden
}

// List returns organizations ordered by name, with workers embedded. A
// non-empty search term filters by substring match over the organization
// name and any of its workers' name and phone fields.
func (s *OrganizationService) List(identity *domain.User, search string) ([]*domain.Organization, error) {
	ok, err := s.authz.Can(identity, security.ActionRead, &domain.Organization{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, permissionError(identity)
	}

	return s.orgs.List(search)
}

// Get retrieves a single organization with its workers.
func (s *OrganizationService) Get(identity *domain.User, id int64) (*domain.Organization, error) {
	org, err := s.orgs.GetByID(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.authz.Can(identity, security.ActionRead, org)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, permissionError(identity)
	}

	return org, nil
}

// Create makes the acting identity the creator of a new organization. Name
// collisions are settled by the store's unique index.
func (s *OrganizationService) Create(identity *domain.User, name, address, description string) (*domain.Organization, error) {
	ok, err := s.authz.Can(identity, security.ActionCreate, &domain.Organization{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, permissionError(identity)
	}

	ve := domain.NewValidationError()
	if name == "" {
		ve.Add("name", "this field is required")
	}
	if address == "" {
		ve.Add("address", "this field is required")
	}
	if !ve.Empty() {
		return nil, ve
	}

	org := &domain.Organization{
		Name:        name,
		Address:     address,
		Description: description,
		CreatorID:   identity.ID,
	}
	if err := s.orgs.Create(org); err != nil {
		return nil, err
	}
	org.Workers = []*domain.Worker{}

	s.logger.Info("organization created",
		slog.Int64("organization_id", org.ID),
		slog.Int64("creator_id", identity.ID),
		slog.String("name", org.Name),
	)

	return org, nil
}

// Update applies a patch to an organization. Only the creator or a
// superuser may update; the creator itself is immutable.
func (s *OrganizationService) Update(identity *domain.User, id int64, patch OrganizationPatch) (*domain.Organization, error) {
	org, err := s.orgs.GetByID(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.authz.Can(identity, security.ActionUpdate, org)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, permissionError(identity)
	}

	ve := domain.NewValidationError()
	if patch.Name != nil {
		if *patch.Name == "" {
			ve.Add("name", "this field is required")
		}
		org.Name = *patch.Name
	}
	if patch.Address != nil {
		if *patch.Address == "" {
			ve.Add("address", "this field is required")
		}
		org.Address = *patch.Address
	}
	if patch.Description != nil {
		org.Description = *patch.Description
	}
	if !ve.Empty() {
		return nil, ve
	}

	if err := s.orgs.Update(org); err != nil {
		return nil, err
	}

	return org, nil
}

// Delete removes an organization; its workers and editing rights cascade
// away with it.
func (s *OrganizationService) Delete(identity *domain.User, id int64) error {
	org, err := s.orgs.GetByID(id)
	if err != nil {
		return err
	}

	ok, err := s.authz.Can(identity, security.ActionDelete, org)
	if err != nil {
		return err
	}
	if !ok {
		return permissionError(identity)
	}

	if err := s.orgs.Delete(id); err != nil {
		return fmt.Errorf("delete organization %d: %w", id, err)
	}

	s.logger.Info("organization deleted",
		slog.Int64("organization_id", id),
		slog.Int64("user_id", identity.ID),
	)

	return nil
}
