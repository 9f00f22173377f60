package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourorg/phonebook/internal/domain"
)

// PostgresOrganizationRepository implements domain.OrganizationRepository
// using PostgreSQL
type PostgresOrganizationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresOrganizationRepository creates a new organization repository
func NewPostgresOrganizationRepository(db *sql.DB, logger *slog.Logger) *PostgresOrganizationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOrganizationRepository{db: db, logger: logger}
}

// Create inserts a new organization. A name collision surfaces as
// domain.ErrConflict from the unique index.
func (r *PostgresOrganizationRepository) Create(org *domain.Organization) error {
	query := `
		INSERT INTO organizations (name, address, description, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(
		query,
		org.Name,
		org.Address,
		nullString(org.Description),
		org.CreatorID,
	).Scan(&org.ID, &org.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create organization",
			slog.String("name", org.Name),
			slog.String("error", err.Error()),
		)
		return mapError(err, "create organization")
	}

	return nil
}

const orgColumns = `id, name, address, COALESCE(description, ''), creator_id, created_at`

// GetByID retrieves an organization by ID, with its workers attached.
func (r *PostgresOrganizationRepository) GetByID(id int64) (*domain.Organization, error) {
	org, err := r.getBy(`id = $1`, id)
	if err != nil {
		return nil, err
	}
	if err := r.attachWorkers(org); err != nil {
		return nil, err
	}
	return org, nil
}

// GetByName retrieves an organization by its unique name.
func (r *PostgresOrganizationRepository) GetByName(name string) (*domain.Organization, error) {
	return r.getBy(`name = $1`, name)
}

// GetByNameForCreator resolves an organization by name only among those the
// given user created. The scoping is part of the query, not a follow-up
// permission check: a name owned by somebody else reads as not found.
func (r *PostgresOrganizationRepository) GetByNameForCreator(name string, creatorID int64) (*domain.Organization, error) {
	return r.getBy(`name = $1 AND creator_id = $2`, name, creatorID)
}

func (r *PostgresOrganizationRepository) getBy(where string, args ...interface{}) (*domain.Organization, error) {
	org := &domain.Organization{}
	query := fmt.Sprintf(`SELECT %s FROM organizations WHERE %s`, orgColumns, where)

	err := r.db.QueryRow(query, args...).Scan(
		&org.ID,
		&org.Name,
		&org.Address,
		&org.Description,
		&org.CreatorID,
		&org.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization: %w", domain.ErrNotFound)
		}
		return nil, mapError(err, "get organization")
	}

	return org, nil
}

// Update changes name, address and description. The creator is immutable
// and deliberately absent from the statement.
func (r *PostgresOrganizationRepository) Update(org *domain.Organization) error {
	query := `
		UPDATE organizations
		SET name = $1, address = $2, description = $3
		WHERE id = $4
	`
	result, err := r.db.Exec(query, org.Name, org.Address, nullString(org.Description), org.ID)
	if err != nil {
		return mapError(err, "update organization")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("organization: %w", domain.ErrNotFound)
	}

	return nil
}

// Delete removes an organization. Its workers and editing rights go with it
// through the foreign key cascade, atomically with the delete.
func (r *PostgresOrganizationRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete organization")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("organization: %w", domain.ErrNotFound)
	}

	return nil
}

// List returns organizations ordered by name. A non-empty search term
// matches as a case-insensitive substring against the organization name or
// any of its workers' full name and phone fields.
func (r *PostgresOrganizationRepository) List(search string) ([]*domain.Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM organizations o`, orgColumns)
	var args []interface{}

	if search != "" {
		query += `
		WHERE o.name ILIKE $1 OR EXISTS (
			SELECT 1 FROM workers w
			WHERE w.organization_id = o.id AND (
				w.full_name ILIKE $1
				OR w.work_number ILIKE $1
				OR w.private_number ILIKE $1
				OR w.fax ILIKE $1
			)
		)`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY o.name ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list organizations", slog.String("error", err.Error()))
		return nil, mapError(err, "list organizations")
	}
	defer rows.Close()

	var orgs []*domain.Organization
	for rows.Next() {
		org := &domain.Organization{}
		err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Address,
			&org.Description,
			&org.CreatorID,
			&org.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	for _, org := range orgs {
		if err := r.attachWorkers(org); err != nil {
			return nil, err
		}
	}

	return orgs, nil
}

func (r *PostgresOrganizationRepository) attachWorkers(org *domain.Organization) error {
	workers, err := scanWorkers(r.db, org.ID, "")
	if err != nil {
		return err
	}
	org.Workers = workers
	return nil
}

// nullString maps the empty string onto SQL NULL for optional text columns.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring ILIKE pattern from a search term,
// escaping the LIKE metacharacters so a literal % or _ matches itself.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
