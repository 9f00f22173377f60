package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/phonebook/internal/domain"
	"github.com/yourorg/phonebook/internal/security"
)

// EditingRightService manages delegation of worker editing within an
// organization. Every lookup is scoped to organizations the requester
// created, so a caller can neither see nor probe grants on foreign
// organizations.
type EditingRightService struct {
	rights domain.EditingRightRepository
	orgs   domain.OrganizationRepository
	users  domain.UserRepository
	authz  *security.Engine
	logger *slog.Logger
}

// NewEditingRightService creates a new editing right service
func NewEditingRightService(
	rights domain.EditingRightRepository,
	orgs domain.OrganizationRepository,
	users domain.UserRepository,
	authz *security.Engine,
	logger *slog.Logger,
) *EditingRightService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EditingRightService{
		rights: rights,
		orgs:   orgs,
		users:  users,
		authz:  authz,
		logger: logger,
	}
}

// List returns grants for organizations the requester created; a superuser
// sees all grants.
func (s *EditingRightService) List(identity *domain.User) ([]*domain.EditingRight, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	if identity.IsSuperuser {
		return s.rights.ListByCreator(0)
	}
	return s.rights.ListByCreator(identity.ID)
}

// Create grants an editing right. The editor is resolved by email, the
// organization by name among the organizations the grantor created. The
// lookup itself is access-scoped and reads as not found when the name is
// owned by somebody else, so existence is never leaked. Duplicate grants
// are settled by the store's unique (editor, organization) constraint.
func (s *EditingRightService) Create(identity *domain.User, editorEmail, organizationName string) (*domain.EditingRight, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}

	ve := domain.NewValidationError()
	if editorEmail == "" {
		ve.Add("editor", "this field is required")
	}
	if organizationName == "" {
		ve.Add("organization", "this field is required")
	}
	if !ve.Empty() {
		return nil, ve
	}

	var org *domain.Organization
	var err error
	if identity.IsSuperuser {
		org, err = s.orgs.GetByName(organizationName)
	} else {
		org, err = s.orgs.GetByNameForCreator(organizationName, identity.ID)
	}
	if err != nil {
		return nil, err
	}

	editor, err := s.users.GetByEmail(editorEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError().Add("editor", "user with this email does not exist")
		}
		return nil, err
	}

	right := &domain.EditingRight{
		EditorID:       editor.ID,
		OrganizationID: org.ID,
		EditorEmail:    editor.Email,
		Organization:   org.Name,
	}

	ok, err := s.authz.Can(identity, security.ActionCreate, right)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	if err := s.rights.Create(right); err != nil {
		return nil, err
	}

	s.logger.Info("editing right granted",
		slog.Int64("right_id", right.ID),
		slog.Int64("editor_id", editor.ID),
		slog.Int64("organization_id", org.ID),
		slog.Int64("grantor_id", identity.ID),
	)

	return right, nil
}

// Delete revokes a grant. The listing scope applies here as well: a grant
// on an organization the requester did not create reads as not found.
func (s *EditingRightService) Delete(identity *domain.User, id int64) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}

	right, err := s.rights.GetByID(id)
	if err != nil {
		return err
	}

	ok, err := s.authz.Can(identity, security.ActionDelete, right)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("editing right: %w", domain.ErrNotFound)
	}

	if err := s.rights.Delete(id); err != nil {
		return err
	}

	s.logger.Info("editing right revoked",
		slog.Int64("right_id", id),
		slog.Int64("user_id", identity.ID),
	)

	return nil
}
