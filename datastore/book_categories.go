package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// BookCategoryRepository manages the livro_categoria association table.
// Both sides of a link must belong to the acting user, so the ownership
// checks and the mutation run inside one transaction.
type BookCategoryRepository struct {
	db *sql.DB
}

func NewBookCategoryRepository(db *sql.DB) *BookCategoryRepository {
	return &BookCategoryRepository{db: db}
}

// Link associates a book with a category. It fails with ErrBookNotFound
// or ErrCategoryNotFound when either resource is absent or not owned by
// ownerID, and with a DuplicateError when the link already exists.
func (r *BookCategoryRepository) Link(ctx context.Context, ownerID string, bookID, categoryID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkOwnership(ctx, tx, ownerID, bookID, categoryID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO livro_categoria (id_livro, id_categoria) VALUES ($1, $2)`,
		bookID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to insert association: %w", classifyError(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit association: %w", err)
	}
	return nil
}

// Unlink removes an association, with the same ownership checks as Link.
// It fails with ErrNotFound when the link does not exist.
func (r *BookCategoryRepository) Unlink(ctx context.Context, ownerID string, bookID, categoryID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkOwnership(ctx, tx, ownerID, bookID, categoryID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM livro_categoria WHERE id_livro = $1 AND id_categoria = $2`,
		bookID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete association: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit association removal: %w", err)
	}
	return nil
}

// checkOwnership verifies that both the book and the category exist and
// belong to ownerID, inside the caller's transaction.
func checkOwnership(ctx context.Context, tx *sql.Tx, ownerID string, bookID, categoryID int64) error {
	var id int64

	err := tx.QueryRowContext(ctx,
		`SELECT id FROM livros WHERE id = $1 AND id_usuario = $2`,
		bookID, ownerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check book ownership: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT id FROM categorias WHERE id = $1 AND id_usuario = $2`,
		categoryID, ownerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check category ownership: %w", err)
	}

	return nil
}
