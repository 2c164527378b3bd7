package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/estanteapp/estante/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user row. Uniqueness of username and email is
// backed by indexes, so a concurrent duplicate registration surfaces as
// a DuplicateError even when the pre-checks raced.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO usuarios (id, username, password_hash, email)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.PasswordHash, user.Email)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", classifyError(err))
	}
	return nil
}

// GetUserByUsername retrieves a user together with their password digest
// for credential verification.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, email
		FROM usuarios
		WHERE username = $1
	`
	var user models.User
	row := r.db.QueryRowContext(ctx, query, username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM usuarios WHERE username = $1`, username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return true, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM usuarios WHERE email = $1`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return true, nil
}
