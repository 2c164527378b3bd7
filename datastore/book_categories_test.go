package datastore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM livros").WithArgs(int64(1), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT id FROM categorias").WithArgs(int64(2), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec("INSERT INTO livro_categoria").WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Link(context.Background(), "user-1", 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLink_BookNotOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM livros").WithArgs(int64(1), "user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err = repo.Link(context.Background(), "user-2", 1, 2)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestLink_CategoryNotOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM livros").WithArgs(int64(1), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT id FROM categorias").WithArgs(int64(2), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err = repo.Link(context.Background(), "user-1", 1, 2)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestLink_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM livros").WithArgs(int64(1), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT id FROM categorias").WithArgs(int64(2), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec("INSERT INTO livro_categoria").
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "livro_categoria_pkey"})
	mock.ExpectRollback()

	err = repo.Link(context.Background(), "user-1", 1, 2)

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "livro_categoria_pkey", dup.Constraint)
}

func TestUnlink(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM livros").WithArgs(int64(1), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT id FROM categorias").WithArgs(int64(2), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec("DELETE FROM livro_categoria").WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Unlink(context.Background(), "user-1", 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlink_LinkMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM livros").WithArgs(int64(1), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT id FROM categorias").WithArgs(int64(2), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec("DELETE FROM livro_categoria").WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.Unlink(context.Background(), "user-1", 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}
