package domain

import "time"

// Organization is a phonebook tenant. The creator owns it: only the creator
// (or a superuser) may change or delete it, and only the creator may grant
// editing rights on it.
type Organization struct {
	ID          int64
	Name        string // Unique organization name
	Address     string
	Description string // Optional
	CreatorID   int64  // Owning user, immutable after creation
	CreatedAt   time.Time
	Workers     []*Worker // Populated on list/get responses
}

// Worker is a contact record belonging to exactly one organization. At least
// one of the three numbers must be set; private numbers are unique across
// all organizations.
type Worker struct {
	ID             int64
	FullName       string
	Position       string
	WorkNumber     string // Optional
	PrivateNumber  string // Optional, globally unique
	Fax            string // Optional
	OrganizationID int64  // Immutable after creation
}

// EditingRight delegates worker management within one organization to a user
// who is not its creator. The (editor, organization) pair is unique.
type EditingRight struct {
	ID             int64
	EditorID       int64
	OrganizationID int64
	EditorEmail    string // Populated on reads
	Organization   string // Organization name, populated on reads
}

// OrganizationRepository defines data access for organizations.
// Create and Update report uniqueness conflicts on the name by wrapping
// ErrConflict. Delete cascades to the organization's workers and editing
// rights inside the same transaction boundary as the delete itself.
type OrganizationRepository interface {
	Create(org *Organization) error
	GetByID(id int64) (*Organization, error)
	// GetByNameForCreator resolves an organization by name among those the
	// given user created. It wraps ErrNotFound when the name exists but is
	// owned by somebody else, so callers cannot probe for foreign names.
	GetByNameForCreator(name string, creatorID int64) (*Organization, error)
	GetByName(name string) (*Organization, error)
	Update(org *Organization) error
	Delete(id int64) error
	// List returns organizations ordered by name ascending. A non-empty
	// search term is matched as a case-insensitive substring against the
	// organization name and its workers' full names and phone fields.
	List(search string) ([]*Organization, error)
}

// WorkerRepository defines data access for workers. Create and Update wrap
// ErrConflict on private number collisions and *ValidationError when all
// three contact fields are empty.
type WorkerRepository interface {
	Create(worker *Worker) error
	GetByID(id int64) (*Worker, error)
	Update(worker *Worker) error
	Delete(id int64) error
	// ListByOrganization returns the organization's workers, optionally
	// filtered by a case-insensitive substring over full name and the
	// three phone fields.
	ListByOrganization(orgID int64, search string) ([]*Worker, error)
}

// EditingRightRepository defines data access for editing rights. Create
// wraps ErrConflict when the (editor, organization) pair already exists.
type EditingRightRepository interface {
	Create(right *EditingRight) error
	GetByID(id int64) (*EditingRight, error)
	Delete(id int64) error
	// Exists reports whether the user holds an editing right on the
	// organization.
	Exists(editorID, orgID int64) (bool, error)
	// ListByCreator returns rights on organizations created by the given
	// user, ordered by editor id. A zero creatorID returns all rights
	// (superuser listing).
	ListByCreator(creatorID int64) ([]*EditingRight, error)
}
