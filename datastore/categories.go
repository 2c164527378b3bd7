package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/estanteapp/estante/models"
)

// CategoryRepository handles database operations for the categorias
// table. Every operation is scoped by the owning user.
type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// categoryUpdatableColumns is the allow-list of columns an update may
// touch. Caller-provided names never reach the query text directly.
var categoryUpdatableColumns = []string{"nome", "descricao"}

// CreateCategory inserts a category and fills in its store-assigned ID.
// A (nome, id_usuario) collision surfaces as a DuplicateError.
func (r *CategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categorias (nome, descricao, id_usuario)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Description, category.OwnerID).Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", classifyError(err))
	}
	return nil
}

func (r *CategoryRepository) ListCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	query := `
		SELECT id, nome, descricao
		FROM categorias
		WHERE id_usuario = $1
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		category.OwnerID = ownerID
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

// UpdateCategory applies a partial update. fields maps column names to
// new values; only allow-listed columns are used, in a fixed order. It
// returns ErrNoFields when nothing usable was provided and ErrNotFound
// when no row matches (id, ownerID).
func (r *CategoryRepository) UpdateCategory(ctx context.Context, ownerID string, id int64, fields map[string]any) error {
	var setClauses []string
	var values []any

	for _, column := range categoryUpdatableColumns {
		if value, ok := fields[column]; ok {
			values = append(values, value)
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(values)))
		}
	}
	if len(setClauses) == 0 {
		return ErrNoFields
	}

	values = append(values, id)
	values = append(values, ownerID)
	query := fmt.Sprintf(
		"UPDATE categorias SET %s WHERE id = $%d AND id_usuario = $%d",
		strings.Join(setClauses, ", "), len(values)-1, len(values),
	)

	result, err := r.db.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", classifyError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, ownerID string, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM categorias WHERE id = $1 AND id_usuario = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
