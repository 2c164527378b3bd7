package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/estanteapp/estante/datastore"
	"github.com/estanteapp/estante/models"
	"github.com/estanteapp/estante/webutil"
)

const msgCategoryNotFound = "Categoria não encontrada ou você não tem permissão para acessá-la."

type CategoryHandler struct {
	Repo *datastore.CategoryRepository
}

func NewCategoryHandler(repo *datastore.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{Repo: repo}
}

func (h *CategoryHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	var requestData struct {
		Name        string  `json:"nome"`
		Description *string `json:"descricao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Corpo da requisição inválido: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.Name == "" {
		return webutil.ErrBadRequest("Nome da categoria é obrigatório.")
	}

	category := models.Category{
		Name:        requestData.Name,
		Description: requestData.Description,
		OwnerID:     userID,
	}
	if err := h.Repo.CreateCategory(r.Context(), &category); err != nil {
		var dup *datastore.DuplicateError
		if errors.As(err, &dup) {
			return webutil.ErrConflict(fmt.Sprintf(
				"Categoria com o nome '%s' já existe para este usuário.", requestData.Name))
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"status":    "sucesso",
		"mensagem":  "Categoria criada com sucesso.",
		"categoria": category,
	})
	return nil
}

func (h *CategoryHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	categories, err := h.Repo.ListCategories(r.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":     "sucesso",
		"total":      len(categories),
		"categorias": categories,
	})
	return nil
}

func (h *CategoryHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	categoryID, ok := pathID(r, "categoriaID")
	if !ok {
		return webutil.ErrNotFound(msgCategoryNotFound)
	}

	var requestData map[string]any
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Corpo da requisição inválido: " + err.Error())
	}
	defer r.Body.Close()

	if len(requestData) == 0 {
		return webutil.ErrBadRequest("Nenhum dado fornecido para atualização.")
	}

	// An empty name never overwrites the existing one.
	if name, ok := requestData["nome"]; ok && (name == nil || name == "") {
		delete(requestData, "nome")
	}

	err = h.Repo.UpdateCategory(r.Context(), userID, categoryID, requestData)
	if err != nil {
		var dup *datastore.DuplicateError
		switch {
		case errors.Is(err, datastore.ErrNoFields):
			return webutil.ErrBadRequest("Nenhum campo válido (nome ou descricao) fornecido para atualização.")
		case errors.Is(err, datastore.ErrNotFound):
			return webutil.ErrNotFound("Categoria não encontrada ou você não tem permissão para atualizá-la.")
		case errors.As(err, &dup):
			return webutil.ErrConflict(fmt.Sprintf(
				"Categoria com o nome '%v' já existe para este usuário.", requestData["nome"]))
		}
		return fmt.Errorf("failed to update category %d: %w", categoryID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":   "sucesso",
		"mensagem": fmt.Sprintf("Categoria com ID %d atualizada com sucesso.", categoryID),
	})
	return nil
}

func (h *CategoryHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	categoryID, ok := pathID(r, "categoriaID")
	if !ok {
		return webutil.ErrNotFound(msgCategoryNotFound)
	}

	if err := h.Repo.DeleteCategory(r.Context(), userID, categoryID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound("Categoria não encontrada ou você não tem permissão para excluí-la.")
		}
		return fmt.Errorf("failed to delete category %d: %w", categoryID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":   "sucesso",
		"mensagem": fmt.Sprintf("Categoria com ID %d excluída com sucesso.", categoryID),
	})
	return nil
}
