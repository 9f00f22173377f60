package service

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/phonebook/internal/domain"
	"github.com/yourorg/phonebook/internal/security"
)

// WorkerService implements worker operations scoped to a parent
// organization. The organization always comes from the request path, never
// from the client body, so a worker cannot be reassigned across tenants.
type WorkerService struct {
	workers domain.WorkerRepository
	orgs    domain.OrganizationRepository
	authz   *security.Engine
	logger  *slog.Logger
}

// NewWorkerService creates a new worker service
func NewWorkerService(
	workers domain.WorkerRepository,
	orgs domain.OrganizationRepository,
	authz *security.Engine,
	logger *slog.Logger,
) *WorkerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerService{workers: workers, orgs: orgs, authz: authz, logger: logger}
}

// WorkerInput carries the writable worker fields.
type WorkerInput struct {
	FullName      string `json:"full_name"`
	Position      string `json:"position"`
	WorkNumber    string `json:"work_number"`
	PrivateNumber string `json:"private_number"`
	Fax           string `json:"fax"`
}

// WorkerPatch carries a partial update; nil fields are left untouched.
type WorkerPatch struct {
	FullName      *string `json:"full_name"`
	Position      *string `json:"position"`
	WorkNumber    *string `json:"work_number"`
	PrivateNumber *string `json:"private_number"`
	Fax           *string `json:"fax"`
}

// List returns the organization's workers, optionally filtered by substring
// search over full name and the phone fields.
func (s *WorkerService) List(identity *domain.User, orgID int64, search string) ([]*domain.Worker, error) {
	if _, err := s.orgs.GetByID(orgID); err != nil {
		return nil, err
	}

	ok, err := s.authz.Can(identity, security.ActionRead, &domain.Worker{OrganizationID: orgID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, permissionError(identity)
	}

	return s.workers.ListByOrganization(orgID, search)
}

// Get retrieves a worker within the given organization. A worker id that
// exists under a different organization reads as not found.
func (s *WorkerService) Get(identity *domain.User, orgID, workerID int64) (*domain.Worker, error) {
	worker, err := s.scoped(orgID, workerID)
	if err != nil {
		return nil, err
	}

	ok, err := s.authz.Can(identity, security.ActionRead, worker)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, permissionError(identity)
	}

	return worker, nil
}

// Create adds a worker under the organization resolved from the path.
// Requires the caller to be the organization's creator or one of its
// editors; the private number's global uniqueness is settled by the store.
func (s *WorkerService) Create(identity *domain.User, orgID int64, in WorkerInput) (*domain.Worker, error) {
	org, err := s.orgs.GetByID(orgID)
	if err != nil {
		return nil, err
	}

	worker := &domain.Worker{
		FullName:       in.FullName,
		Position:       in.Position,
		WorkNumber:     in.WorkNumber,
		PrivateNumber:  in.PrivateNumber,
		Fax:            in.Fax,
		OrganizationID: org.ID,
	}

	ok, err := s.authz.Can(identity, security.ActionCreate, worker)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, permissionError(identity)
	}

	if err := s.workers.Create(worker); err != nil {
		return nil, err
	}

	s.logger.Info("worker created",
		slog.Int64("worker_id", worker.ID),
		slog.Int64("organization_id", org.ID),
		slog.Int64("user_id", identity.ID),
	)

	return worker, nil
}

// Update applies a patch to a worker. Creator or editor of the parent
// organization only.
func (s *WorkerService) Update(identity *domain.User, orgID, workerID int64, patch WorkerPatch) (*domain.Worker, error) {
	worker, err := s.scoped(orgID, workerID)
	if err != nil {
		return nil, err
	}

	ok, err := s.authz.Can(identity, security.ActionUpdate, worker)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, permissionError(identity)
	}

	if patch.FullName != nil {
		worker.FullName = *patch.FullName
	}
	if patch.Position != nil {
		worker.Position = *patch.Position
	}
	if patch.WorkNumber != nil {
		worker.WorkNumber = *patch.WorkNumber
	}
	if patch.PrivateNumber != nil {
		worker.PrivateNumber = *patch.PrivateNumber
	}
	if patch.Fax != nil {
		worker.Fax = *patch.Fax
	}

	if err := s.workers.Update(worker); err != nil {
		return nil, err
	}

	return worker, nil
}

// Delete removes a worker. Creator or editor of the parent organization
// only.
func (s *WorkerService) Delete(identity *domain.User, orgID, workerID int64) error {
	worker, err := s.scoped(orgID, workerID)
	if err != nil {
		return err
	}

	ok, err := s.authz.Can(identity, security.ActionDelete, worker)
	if err != nil {
		return err
	}
	if !ok {
		return permissionError(identity)
	}

	if err := s.workers.Delete(workerID); err != nil {
		return fmt.Errorf("delete worker %d: %w", workerID, err)
	}

	s.logger.Info("worker deleted",
		slog.Int64("worker_id", workerID),
		slog.Int64("organization_id", orgID),
		slog.Int64("user_id", identity.ID),
	)

	return nil
}

func (s *WorkerService) scoped(orgID, workerID int64) (*domain.Worker, error) {
	worker, err := s.workers.GetByID(workerID)
	if err != nil {
		return nil, err
	}
	if worker.OrganizationID != orgID {
		return nil, fmt.Errorf("worker: %w", domain.ErrNotFound)
	}
	return worker, nil
}
