package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/phonebook/internal/domain"
)

// PostgresEditingRightRepository implements domain.EditingRightRepository
// using PostgreSQL
type PostgresEditingRightRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresEditingRightRepository creates a new editing right repository
func NewPostgresEditingRightRepository(db *sql.DB, logger *slog.Logger) *PostgresEditingRightRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEditingRightRepository{db: db, logger: logger}
}

// Create inserts a new editing right. A duplicate (editor, organization)
// pair surfaces as domain.ErrConflict from the unique constraint; concurrent
// duplicate grants are settled there, not by the pre-check in the service.
func (r *PostgresEditingRightRepository) Create(right *domain.EditingRight) error {
	query := `
		INSERT INTO editing_rights (editor_id, organization_id)
		VALUES ($1, $2)
		RETURNING id
	`
	err := r.db.QueryRow(query, right.EditorID, right.OrganizationID).Scan(&right.ID)
	if err != nil {
		r.logger.Error("failed to create editing right",
			slog.Int64("editor_id", right.EditorID),
			slog.Int64("organization_id", right.OrganizationID),
			slog.String("error", err.Error()),
		)
		return mapError(err, "create editing right")
	}

	return nil
}

const rightColumns = `r.id, r.editor_id, r.organization_id, u.email, o.name`

const rightJoins = `
	FROM editing_rights r
	JOIN users u ON u.id = r.editor_id
	JOIN organizations o ON o.id = r.organization_id
`

// GetByID retrieves an editing right by ID
func (r *PostgresEditingRightRepository) GetByID(id int64) (*domain.EditingRight, error) {
	right := &domain.EditingRight{}
	query := fmt.Sprintf(`SELECT %s %s WHERE r.id = $1`, rightColumns, rightJoins)

	err := r.db.QueryRow(query, id).Scan(
		&right.ID,
		&right.EditorID,
		&right.OrganizationID,
		&right.EditorEmail,
		&right.Organization,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("editing right: %w", domain.ErrNotFound)
		}
		return nil, mapError(err, "get editing right")
	}

	return right, nil
}

// Delete removes an editing right
func (r *PostgresEditingRightRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM editing_rights WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete editing right")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete editing right: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("editing right: %w", domain.ErrNotFound)
	}

	return nil
}

// Exists reports whether the user holds an editing right on the organization
func (r *PostgresEditingRightRepository) Exists(editorID, orgID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM editing_rights WHERE editor_id = $1 AND organization_id = $2)`

	if err := r.db.QueryRow(query, editorID, orgID).Scan(&exists); err != nil {
		return false, mapError(err, "check editing right")
	}

	return exists, nil
}

// ListByCreator returns rights on organizations created by the given user,
// ordered by editor. A zero creatorID lists every right.
func (r *PostgresEditingRightRepository) ListByCreator(creatorID int64) ([]*domain.EditingRight, error) {
	query := fmt.Sprintf(`SELECT %s %s`, rightColumns, rightJoins)
	var args []interface{}

	if creatorID != 0 {
		query += ` WHERE o.creator_id = $1`
		args = append(args, creatorID)
	}
	query += ` ORDER BY r.editor_id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list editing rights",
			slog.Int64("creator_id", creatorID),
			slog.String("error", err.Error()),
		)
		return nil, mapError(err, "list editing rights")
	}
	defer rows.Close()

	rights := []*domain.EditingRight{}
	for rows.Next() {
		right := &domain.EditingRight{}
		err := rows.Scan(
			&right.ID,
			&right.EditorID,
			&right.OrganizationID,
			&right.EditorEmail,
			&right.Organization,
		)
		if err != nil {
			return nil, fmt.Errorf("scan editing right: %w", err)
		}
		rights = append(rights, right)
	}

	return rights, rows.Err()
}
