package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/phonebook/internal/domain"
)

// PostgresWorkerRepository implements domain.WorkerRepository using
// PostgreSQL
type PostgresWorkerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresWorkerRepository creates a new worker repository
func NewPostgresWorkerRepository(db *sql.DB, logger *slog.Logger) *PostgresWorkerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWorkerRepository{db: db, logger: logger}
}

// Create inserts a new worker. The record is validated first so an empty
// contact set is rejected before it reaches the store; a private number
// collision surfaces as domain.ErrConflict from the unique index.
func (r *PostgresWorkerRepository) Create(worker *domain.Worker) error {
	if err := domain.ValidateWorker(worker); err != nil {
		return err
	}

	query := `
		INSERT INTO workers (full_name, position, work_number, private_number, fax, organization_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(
		query,
		worker.FullName,
		worker.Position,
		nullString(worker.WorkNumber),
		nullString(worker.PrivateNumber),
		nullString(worker.Fax),
		worker.OrganizationID,
	).Scan(&worker.ID)

	if err != nil {
		r.logger.Error("failed to create worker",
			slog.String("full_name", worker.FullName),
			slog.Int64("organization_id", worker.OrganizationID),
			slog.String("error", err.Error()),
		)
		return mapError(err, "create worker")
	}

	return nil
}

const workerColumns = `id, full_name, position, COALESCE(work_number, ''), COALESCE(private_number, ''), COALESCE(fax, ''), organization_id`

// GetByID retrieves a worker by ID
func (r *PostgresWorkerRepository) GetByID(id int64) (*domain.Worker, error) {
	worker := &domain.Worker{}
	query := fmt.Sprintf(`SELECT %s FROM workers WHERE id = $1`, workerColumns)

	err := r.db.QueryRow(query, id).Scan(
		&worker.ID,
		&worker.FullName,
		&worker.Position,
		&worker.WorkNumber,
		&worker.PrivateNumber,
		&worker.Fax,
		&worker.OrganizationID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("worker: %w", domain.ErrNotFound)
		}
		return nil, mapError(err, "get worker")
	}

	return worker, nil
}

// Update rewrites the worker's fields. The organization is immutable and
// absent from the statement.
func (r *PostgresWorkerRepository) Update(worker *domain.Worker) error {
	if err := domain.ValidateWorker(worker); err != nil {
		return err
	}

	query := `
		UPDATE workers
		SET full_name = $1, position = $2, work_number = $3, private_number = $4, fax = $5
		WHERE id = $6
	`
	result, err := r.db.Exec(
		query,
		worker.FullName,
		worker.Position,
		nullString(worker.WorkNumber),
		nullString(worker.PrivateNumber),
		nullString(worker.Fax),
		worker.ID,
	)
	if err != nil {
		return mapError(err, "update worker")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update worker: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("worker: %w", domain.ErrNotFound)
	}

	return nil
}

// Delete removes a worker
func (r *PostgresWorkerRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM workers WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete worker")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("worker: %w", domain.ErrNotFound)
	}

	return nil
}

// ListByOrganization returns the organization's workers, optionally filtered
// by a case-insensitive substring over full name and the phone fields.
func (r *PostgresWorkerRepository) ListByOrganization(orgID int64, search string) ([]*domain.Worker, error) {
	workers, err := scanWorkers(r.db, orgID, search)
	if err != nil {
		r.logger.Error("failed to list workers",
			slog.Int64("organization_id", orgID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return workers, nil
}

// scanWorkers is shared with the organization repository, which embeds
// worker lists in its read results.
func scanWorkers(db *sql.DB, orgID int64, search string) ([]*domain.Worker, error) {
	query := fmt.Sprintf(`SELECT %s FROM workers WHERE organization_id = $1`, workerColumns)
	args := []interface{}{orgID}

	if search != "" {
		query += ` AND (full_name ILIKE $2 OR work_number ILIKE $2 OR private_number ILIKE $2 OR fax ILIKE $2)`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, mapError(err, "list workers")
	}
	defer rows.Close()

	workers := []*domain.Worker{}
	for rows.Next() {
		worker := &domain.Worker{}
		err := rows.Scan(
			&worker.ID,
			&worker.FullName,
			&worker.Position,
			&worker.WorkNumber,
			&worker.PrivateNumber,
			&worker.Fax,
			&worker.OrganizationID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		workers = append(workers, worker)
	}

	return workers, rows.Err()
}
