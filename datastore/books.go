package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/estanteapp/estante/models"
)

// BookRepository handles database operations for the livros table.
// Every read and write is scoped by the owning user; the only
// catalog-wide constraint is the unique index on isbn.
type BookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// bookUpdatableColumns is the allow-list for partial updates. id,
// id_usuario and data_cadastro are immutable after creation.
var bookUpdatableColumns = []string{
	"isbn", "titulo", "autores", "genero", "editora", "ano_publicacao",
	"numero_paginas", "capa_url", "localizacao_fisica", "notas_pessoais",
	"idioma", "data_inicio_leitura", "data_fim_leitura",
}

// validOrderColumns is the allow-list for ORDER BY. Anything else falls
// back to the default ordering instead of erroring.
var validOrderColumns = map[string]bool{
	"titulo":         true,
	"autores":        true,
	"ano_publicacao": true,
	"data_cadastro":  true,
	"id":             true,
}

// BookFilter is the set of optional, AND-combined list restrictions
// plus the requested ordering.
type BookFilter struct {
	CategoryID *int64 // restrict to books linked to this category
	Search     string // case-insensitive substring over titulo/autores
	Genre      string
	Publisher  string
	Language   string
	OrderBy    string
	Order      string
}

// CreateBook inserts a book for its owner, letting the store assign the
// id and registration timestamp, and fills both back into book.
func (r *BookRepository) CreateBook(ctx context.Context, book *models.Book) error {
	query := `
		INSERT INTO livros (
			isbn, titulo, autores, genero, editora, ano_publicacao,
			numero_paginas, capa_url, localizacao_fisica, notas_pessoais,
			idioma, data_inicio_leitura, data_fim_leitura, data_cadastro, id_usuario
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), $14)
		RETURNING id, data_cadastro
	`
	var registeredAt time.Time
	err := r.db.QueryRowContext(ctx, query,
		book.ISBN, book.Title, book.Authors, book.Genre, book.Publisher,
		book.PublicationYear, book.PageCount, book.CoverURL, book.PhysicalLocation,
		book.PersonalNotes, book.Language, book.ReadingStartDate, book.ReadingEndDate,
		book.OwnerID,
	).Scan(&book.ID, &registeredAt)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", classifyError(err))
	}
	book.RegisteredAt = registeredAt.Format(timestampLayout)
	return nil
}

// buildListQuery assembles the filtered, ordered list query. All values
// travel as parameters; the only dynamic identifiers are the allow-listed
// order column and direction.
func buildListQuery(ownerID string, filter BookFilter) (string, []any) {
	var query strings.Builder
	query.WriteString("SELECT DISTINCT l.id, l.isbn, l.titulo, l.autores, l.genero, l.editora," +
		" l.ano_publicacao, l.numero_paginas, l.capa_url, l.localizacao_fisica, l.notas_pessoais," +
		" l.idioma, l.data_inicio_leitura, l.data_fim_leitura, l.data_cadastro, l.id_usuario" +
		" FROM livros l")

	values := []any{ownerID}
	whereClauses := []string{"l.id_usuario = $1"}

	if filter.CategoryID != nil {
		query.WriteString(" JOIN livro_categoria lc ON l.id = lc.id_livro")
		values = append(values, *filter.CategoryID)
		whereClauses = append(whereClauses, fmt.Sprintf("lc.id_categoria = $%d", len(values)))
	}

	if filter.Search != "" {
		values = append(values, "%"+filter.Search+"%")
		whereClauses = append(whereClauses,
			fmt.Sprintf("(l.titulo ILIKE $%d OR l.autores ILIKE $%d)", len(values), len(values)))
	}
	if filter.Genre != "" {
		values = append(values, filter.Genre)
		whereClauses = append(whereClauses, fmt.Sprintf("l.genero = $%d", len(values)))
	}
	if filter.Publisher != "" {
		values = append(values, filter.Publisher)
		whereClauses = append(whereClauses, fmt.Sprintf("l.editora = $%d", len(values)))
	}
	if filter.Language != "" {
		values = append(values, filter.Language)
		whereClauses = append(whereClauses, fmt.Sprintf("l.idioma = $%d", len(values)))
	}

	query.WriteString(" WHERE " + strings.Join(whereClauses, " AND "))

	orderBy := filter.OrderBy
	if !validOrderColumns[orderBy] {
		orderBy = "titulo"
	}
	order := strings.ToUpper(filter.Order)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	query.WriteString(fmt.Sprintf(" ORDER BY l.%s %s", orderBy, order))

	return query.String(), values
}

// ListBooks returns every book owned by ownerID matching the filter.
func (r *BookRepository) ListBooks(ctx context.Context, ownerID string, filter BookFilter) ([]models.Book, error) {
	query, values := buildListQuery(ownerID, filter)

	rows, err := r.db.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, *book)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating book rows: %w", err)
	}

	return books, nil
}

// GetBookByID retrieves one book scoped by its owner.
func (r *BookRepository) GetBookByID(ctx context.Context, ownerID string, id int64) (*models.Book, error) {
	query := `
		SELECT id, isbn, titulo, autores, genero, editora, ano_publicacao,
			numero_paginas, capa_url, localizacao_fisica, notas_pessoais,
			idioma, data_inicio_leitura, data_fim_leitura, data_cadastro, id_usuario
		FROM livros
		WHERE id = $1 AND id_usuario = $2
	`
	book, err := scanBook(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}
	return book, nil
}

// UpdateBook applies a partial update over the allow-listed columns.
func (r *BookRepository) UpdateBook(ctx context.Context, ownerID string, id int64, fields map[string]any) error {
	var setClauses []string
	var values []any

	for _, column := range bookUpdatableColumns {
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
		"UPDATE livros SET %s WHERE id = $%d AND id_usuario = $%d",
		strings.Join(setClauses, ", "), len(values)-1, len(values),
	)

	result, err := r.db.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", classifyError(err))
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

func (r *BookRepository) DeleteBook(ctx context.Context, ownerID string, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM livros WHERE id = $1 AND id_usuario = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
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

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBook reads one livros row, converting nullable columns and
// formatting date columns as strings for the API.
func scanBook(row rowScanner) (*models.Book, error) {
	var book models.Book
	var genre, publisher, coverURL, location, notes, language sql.NullString
	var year, pages sql.NullInt64
	var readingStart, readingEnd sql.NullTime
	var registeredAt time.Time

	err := row.Scan(
		&book.ID, &book.ISBN, &book.Title, &book.Authors, &genre, &publisher,
		&year, &pages, &coverURL, &location, &notes,
		&language, &readingStart, &readingEnd, &registeredAt, &book.OwnerID,
	)
	if err != nil {
		return nil, err
	}

	book.Genre = nullableString(genre)
	book.Publisher = nullableString(publisher)
	book.CoverURL = nullableString(coverURL)
	book.PhysicalLocation = nullableString(location)
	book.PersonalNotes = nullableString(notes)
	book.Language = nullableString(language)
	book.PublicationYear = nullableInt(year)
	book.PageCount = nullableInt(pages)
	book.ReadingStartDate = nullableDate(readingStart)
	book.ReadingEndDate = nullableDate(readingEnd)
	book.RegisteredAt = registeredAt.Format(timestampLayout)

	return &book, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullableDate(v sql.NullTime) *string {
	if !v.Valid {
		return nil
	}
	s := v.Time.Format(dateLayout)
	return &s
}
