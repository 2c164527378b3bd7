package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estanteapp/estante/models"
)

var bookRowColumns = []string{
	"id", "isbn", "titulo", "autores", "genero", "editora", "ano_publicacao",
	"numero_paginas", "capa_url", "localizacao_fisica", "notas_pessoais",
	"idioma", "data_inicio_leitura", "data_fim_leitura", "data_cadastro", "id_usuario",
}

func TestBuildListQuery_Defaults(t *testing.T) {
	query, values := buildListQuery("user-1", BookFilter{})

	assert.Contains(t, query, "FROM livros l WHERE l.id_usuario = $1")
	assert.NotContains(t, query, "JOIN")
	assert.True(t, len(query) > 0 && query[len(query)-len(" ORDER BY l.titulo ASC"):] == " ORDER BY l.titulo ASC",
		"expected default ordering, got: %s", query)
	assert.Equal(t, []any{"user-1"}, values)
}

func TestBuildListQuery_UnknownSortFallsBack(t *testing.T) {
	query, _ := buildListQuery("user-1", BookFilter{OrderBy: "capa_url; DROP TABLE livros", Order: "sideways"})

	assert.Contains(t, query, "ORDER BY l.titulo ASC")
	assert.NotContains(t, query, "DROP TABLE")
}

func TestBuildListQuery_SortDescending(t *testing.T) {
	query, _ := buildListQuery("user-1", BookFilter{OrderBy: "data_cadastro", Order: "desc"})

	assert.Contains(t, query, "ORDER BY l.data_cadastro DESC")
}

func TestBuildListQuery_AllFilters(t *testing.T) {
	categoryID := int64(9)
	query, values := buildListQuery("user-1", BookFilter{
		CategoryID: &categoryID,
		Search:     "tolkien",
		Genre:      "Fantasia",
		Publisher:  "HarperCollins",
		Language:   "pt",
	})

	assert.Contains(t, query, "JOIN livro_categoria lc ON l.id = lc.id_livro")
	assert.Contains(t, query, "lc.id_categoria = $2")
	assert.Contains(t, query, "(l.titulo ILIKE $3 OR l.autores ILIKE $3)")
	assert.Contains(t, query, "l.genero = $4")
	assert.Contains(t, query, "l.editora = $5")
	assert.Contains(t, query, "l.idioma = $6")
	assert.Equal(t, []any{"user-1", int64(9), "%tolkien%", "Fantasia", "HarperCollins", "pt"}, values)
}

func TestCreateBook(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookRepository(db)
	registeredAt := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO livros").
		WithArgs("9788533613379", "O Senhor dos Anéis", "J.R.R. Tolkien",
			nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data_cadastro"}).AddRow(int64(42), registeredAt))

	book := &models.Book{
		ISBN:    "9788533613379",
		Title:   "O Senhor dos Anéis",
		Authors: "J.R.R. Tolkien",
		OwnerID: "user-1",
	}
	require.NoError(t, repo.CreateBook(context.Background(), book))

	assert.Equal(t, int64(42), book.ID)
	assert.Equal(t, "2026-08-30 10:00:00", book.RegisteredAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBook_DuplicateISBN(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookRepository(db)

	mock.ExpectQuery("INSERT INTO livros").
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "livros_isbn_key"})

	book := &models.Book{ISBN: "123", Title: "T", Authors: "A", OwnerID: "user-1"}
	err = repo.CreateBook(context.Background(), book)

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "livros_isbn_key", dup.Constraint)
}

func TestListBooks_ScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookRepository(db)

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	registered := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(bookRowColumns).
		AddRow(int64(1), "123", "Dom Casmurro", "Machado de Assis", "Romance", nil, 1899,
			nil, nil, "estante A", nil, "pt", start, nil, registered, "user-1").
		AddRow(int64(2), "456", "Vidas Secas", "Graciliano Ramos", nil, nil, nil,
			nil, nil, nil, nil, nil, nil, nil, registered, "user-1")

	mock.ExpectQuery("SELECT DISTINCT l.id,").WithArgs("user-1").WillReturnRows(rows)

	books, err := repo.ListBooks(context.Background(), "user-1", BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 2)

	first := books[0]
	assert.Equal(t, "Dom Casmurro", first.Title)
	require.NotNil(t, first.Genre)
	assert.Equal(t, "Romance", *first.Genre)
	require.NotNil(t, first.PublicationYear)
	assert.Equal(t, 1899, *first.PublicationYear)
	require.NotNil(t, first.ReadingStartDate)
	assert.Equal(t, "2026-01-10", *first.ReadingStartDate)
	assert.Equal(t, "2026-01-02 15:04:05", first.RegisteredAt)

	second := books[1]
	assert.Nil(t, second.Genre)
	assert.Nil(t, second.ReadingStartDate)
	assert.Nil(t, second.ReadingEndDate)
}

func TestGetBookByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookRepository(db)

	mock.ExpectQuery("SELECT id, isbn,").WithArgs(int64(7), "user-1").
		WillReturnRows(sqlmock.NewRows(bookRowColumns))

	_, err = repo.GetBookByID(context.Background(), "user-1", 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBook_AllowListAndOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookRepository(db)

	// Only allow-listed columns survive; id/owner are never updatable.
	mock.ExpectExec(`UPDATE livros SET titulo = \$1, genero = \$2 WHERE id = \$3 AND id_usuario = \$4`).
		WithArgs("Novo Título", "Drama", int64(5), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	fields := map[string]any{
		"titulo":     "Novo Título",
		"genero":     "Drama",
		"id":         int64(99),
		"id_usuario": "intruso",
	}
	require.NoError(t, repo.UpdateBook(context.Background(), "user-1", 5, fields))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBook_NoFields(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookRepository(db)

	err = repo.UpdateBook(context.Background(), "user-1", 5, map[string]any{"id": 1})
	assert.ErrorIs(t, err, ErrNoFields)
}

func TestUpdateBook_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookRepository(db)

	mock.ExpectExec("UPDATE livros SET").
		WithArgs("Novo", int64(5), "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateBook(context.Background(), "user-2", 5, map[string]any{"titulo": "Novo"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBook_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookRepository(db)

	mock.ExpectExec("DELETE FROM livros").
		WithArgs(int64(5), "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DeleteBook(context.Background(), "user-2", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
