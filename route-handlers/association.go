package routehandlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/estanteapp/estante/datastore"
	"github.com/estanteapp/estante/webutil"
)

// AssociationHandler manages book↔category links. Ownership of both
// sides is enforced by the repository inside one transaction.
type AssociationHandler struct {
	Repo *datastore.BookCategoryRepository
}

func NewAssociationHandler(repo *datastore.BookCategoryRepository) *AssociationHandler {
	return &AssociationHandler{Repo: repo}
}

// associationIDs extracts and validates both path parameters.
func associationIDs(r *http.Request) (bookID, categoryID int64, err error) {
	bookID, ok := pathID(r, "livroID")
	if !ok {
		return 0, 0, webutil.ErrNotFound(msgBookNotFound)
	}
	categoryID, ok = pathID(r, "categoriaID")
	if !ok {
		return 0, 0, webutil.ErrNotFound(msgCategoryNotFound)
	}
	return bookID, categoryID, nil
}

func (h *AssociationHandler) HandleLink(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	bookID, categoryID, err := associationIDs(r)
	if err != nil {
		return err
	}

	if err := h.Repo.Link(r.Context(), userID, bookID, categoryID); err != nil {
		var dup *datastore.DuplicateError
		switch {
		case errors.Is(err, datastore.ErrBookNotFound):
			return webutil.ErrNotFound(msgBookNotFound)
		case errors.Is(err, datastore.ErrCategoryNotFound):
			return webutil.ErrNotFound(msgCategoryNotFound)
		case errors.As(err, &dup):
			return webutil.ErrConflict("Livro já está associado a esta categoria.")
		}
		return fmt.Errorf("failed to link book %d to category %d: %w", bookID, categoryID, err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"status":   "sucesso",
		"mensagem": fmt.Sprintf("Livro %d associado à categoria %d com sucesso.", bookID, categoryID),
	})
	return nil
}

func (h *AssociationHandler) HandleUnlink(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	bookID, categoryID, err := associationIDs(r)
	if err != nil {
		return err
	}

	if err := h.Repo.Unlink(r.Context(), userID, bookID, categoryID); err != nil {
		switch {
		case errors.Is(err, datastore.ErrBookNotFound):
			return webutil.ErrNotFound(msgBookNotFound)
		case errors.Is(err, datastore.ErrCategoryNotFound):
			return webutil.ErrNotFound(msgCategoryNotFound)
		case errors.Is(err, datastore.ErrNotFound):
			return webutil.ErrNotFound("Associação de livro e categoria não encontrada.")
		}
		return fmt.Errorf("failed to unlink book %d from category %d: %w", bookID, categoryID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status": "sucesso",
		"mensagem": fmt.Sprintf(
			"Associação do Livro %d com a Categoria %d removida com sucesso.", bookID, categoryID),
	})
	return nil
}
