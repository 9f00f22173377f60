package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/phonebook/internal/domain"
)

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, is_superuser, created_at`

// Create inserts a new user. Username and email collisions surface as
// domain.ErrConflict from the unique indexes.
func (r *PostgresUserRepository) Create(user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.IsSuperuser,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create user",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
		return mapError(err, "create user")
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(id int64) (*domain.User, error) {
	return r.getBy("id = $1", id)
}

// GetByUsername retrieves a user by username
func (r *PostgresUserRepository) GetByUsername(username string) (*domain.User, error) {
	return r.getBy("username = $1", username)
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(email string) (*domain.User, error) {
	return r.getBy("email = $1", email)
}

func (r *PostgresUserRepository) getBy(where string, arg interface{}) (*domain.User, error) {
	user := &domain.User{}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s`, userColumns, where)

	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.IsSuperuser,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, mapError(err, "get user")
	}

	return user, nil
}

// Delete removes a user. Organizations created by the user and editing
// rights granted to them are removed by the foreign key cascade.
func (r *PostgresUserRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete user")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}

	return nil
}
