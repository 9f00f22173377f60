package security

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/phonebook/internal/domain"
	"github.com/yourorg/phonebook/internal/observability/metrics"
)

// Action identifies what operation is being performed
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Engine decides, per resource instance, whether the acting identity may
// perform the requested operation. Decisions are object-level: ownership is
// read from the resource (or, for workers, from the parent organization)
// rather than from role tables. A nil identity is the anonymous caller.
type Engine struct {
	orgs     domain.OrganizationRepository
	rights   domain.EditingRightRepository
	openRead bool
	logger   *slog.Logger
}

// NewEngine creates an authorization engine. openRead controls whether
// anonymous callers may read organizations and workers.
func NewEngine(
	orgs domain.OrganizationRepository,
	rights domain.EditingRightRepository,
	openRead bool,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		orgs:     orgs,
		rights:   rights,
		openRead: openRead,
		logger:   logger,
	}
}

// Can reports whether identity may perform action on the given resource.
// resource is a *domain.Organization, *domain.Worker or *domain.EditingRight;
// for creates it carries the prospective parent in its foreign key fields.
// The returned error reports lookup failures, not denials.
func (e *Engine) Can(identity *domain.User, action Action, resource interface{}) (bool, error) {
	allowed, err := e.decide(identity, action, resource)
	if err == nil {
		metrics.ObserveAuthorization(resourceName(resource), string(action), allowed)
	}
	return allowed, err
}

func (e *Engine) decide(identity *domain.User, action Action, resource interface{}) (bool, error) {
	// Superusers bypass all ownership checks for every action.
	if identity != nil && identity.IsSuperuser {
		return true, nil
	}

	switch res := resource.(type) {
	case *domain.Organization:
		return e.canOrganization(identity, action, res), nil
	case *domain.Worker:
		return e.canWorker(identity, action, res)
	case *domain.EditingRight:
		return e.canEditingRight(identity, action, res)
	default:
		return false, fmt.Errorf("unknown resource type %T", resource)
	}
}

func resourceName(resource interface{}) string {
	switch resource.(type) {
	case *domain.Organization:
		return "organization"
	case *domain.Worker:
		return "worker"
	case *domain.EditingRight:
		return "editing_right"
	default:
		return "unknown"
	}
}

func (e *Engine) canOrganization(identity *domain.User, action Action, org *domain.Organization) bool {
	switch action {
	case ActionRead:
		return e.openRead || identity != nil
	case ActionCreate:
		// Any authenticated identity may create; it becomes the creator.
		return identity != nil
	case ActionUpdate, ActionDelete:
		allowed := identity != nil && org.CreatorID == identity.ID
		if !allowed {
			e.denied(identity, action, "organization", org.ID)
		}
		return allowed
	default:
		return false
	}
}

func (e *Engine) canWorker(identity *domain.User, action Action, worker *domain.Worker) (bool, error) {
	if action == ActionRead {
		return e.openRead || identity != nil, nil
	}

	if identity == nil {
		return false, nil
	}

	// Worker permissions are decided against the parent organization's
	// creator and editor set, never against the worker itself.
	org, err := e.orgs.GetByID(worker.OrganizationID)
	if err != nil {
		return false, err
	}

	if org.CreatorID == identity.ID {
		return true, nil
	}

	editor, err := e.rights.Exists(identity.ID, org.ID)
	if err != nil {
		return false, err
	}
	if !editor {
		e.denied(identity, action, "worker", worker.ID)
	}
	return editor, nil
}

func (e *Engine) canEditingRight(identity *domain.User, action Action, right *domain.EditingRight) (bool, error) {
	if identity == nil {
		return false, nil
	}

	switch action {
	case ActionRead, ActionCreate, ActionDelete:
		// Only the creator of the referenced organization manages grants.
		// Editors hold rights on workers, not on the grants themselves.
		org, err := e.orgs.GetByID(right.OrganizationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		allowed := org.CreatorID == identity.ID
		if !allowed {
			e.denied(identity, action, "editing_right", right.ID)
		}
		return allowed, nil
	default:
		return false, nil
	}
}

func (e *Engine) denied(identity *domain.User, action Action, resource string, resourceID int64) {
	var userID int64
	if identity != nil {
		userID = identity.ID
	}
	e.logger.Warn("permission denied",
		slog.Int64("user_id", userID),
		slog.String("action", string(action)),
		slog.String("resource", resource),
		slog.Int64("resource_id", resourceID),
	)
}
