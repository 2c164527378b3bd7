package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/estanteapp/estante/datastore"
	"github.com/estanteapp/estante/googlebooks"
	"github.com/estanteapp/estante/models"
	"github.com/estanteapp/estante/webutil"
)

const msgBookNotFound = "Livro não encontrado ou você não tem permissão para acessá-lo."

type BookHandler struct {
	Repo     *datastore.BookRepository
	Metadata *googlebooks.Client
}

func NewBookHandler(repo *datastore.BookRepository, metadata *googlebooks.Client) *BookHandler {
	return &BookHandler{Repo: repo, Metadata: metadata}
}

// HandleLookupISBN serves the public metadata preview. A miss on the
// provider side is still a success response: the preview carries
// placeholders and the client falls back to manual entry.
func (h *BookHandler) HandleLookupISBN(w http.ResponseWriter, r *http.Request) error {
	isbn := r.URL.Query().Get("isbn")
	if isbn == "" {
		return webutil.ErrBadRequest("ISBN é obrigatório para a busca.")
	}

	preview, found, err := h.Metadata.LookupISBN(r.Context(), isbn)
	if err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError,
			fmt.Sprintf("Erro ao comunicar com a API do Google Books: %v", err), err)
	}

	message := "Dados do livro encontrados."
	if !found {
		message = fmt.Sprintf(
			"Livro com ISBN %s não encontrado na Google Books API. Por favor, insira os dados manualmente.", isbn)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":   "sucesso",
		"mensagem": message,
		"livro":    preview,
	})
	return nil
}

func (h *BookHandler) HandleCreateBook(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	var requestData struct {
		ISBN             string  `json:"isbn"`
		Title            string  `json:"titulo"`
		Authors          string  `json:"autores"`
		Genre            *string `json:"genero"`
		Publisher        *string `json:"editora"`
		PublicationYear  *int    `json:"ano_publicacao"`
		PageCount        *int    `json:"numero_paginas"`
		CoverURL         *string `json:"capa_url"`
		PhysicalLocation *string `json:"localizacao_fisica"`
		PersonalNotes    *string `json:"notas_pessoais"`
		Language         *string `json:"idioma"`
		ReadingStartDate *string `json:"data_inicio_leitura"`
		ReadingEndDate   *string `json:"data_fim_leitura"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Corpo da requisição inválido: " + err.Error())
	}
	defer r.Body.Close()

	required := []struct{ name, value string }{
		{"isbn", requestData.ISBN},
		{"titulo", requestData.Title},
		{"autores", requestData.Authors},
	}
	for _, field := range required {
		if field.value == "" {
			return webutil.ErrBadRequest(fmt.Sprintf("Campo '%s' é obrigatório.", field.name))
		}
	}

	book := models.Book{
		ISBN:             requestData.ISBN,
		Title:            requestData.Title,
		Authors:          requestData.Authors,
		Genre:            requestData.Genre,
		Publisher:        requestData.Publisher,
		PublicationYear:  requestData.PublicationYear,
		PageCount:        requestData.PageCount,
		CoverURL:         requestData.CoverURL,
		PhysicalLocation: requestData.PhysicalLocation,
		PersonalNotes:    requestData.PersonalNotes,
		Language:         requestData.Language,
		ReadingStartDate: requestData.ReadingStartDate,
		ReadingEndDate:   requestData.ReadingEndDate,
		OwnerID:          userID,
	}

	if err := h.Repo.CreateBook(r.Context(), &book); err != nil {
		var dup *datastore.DuplicateError
		var nullViolation *datastore.NullViolationError
		switch {
		case errors.As(err, &dup):
			return webutil.ErrConflict(fmt.Sprintf(
				"Livro com ISBN %s já existe no catálogo.", requestData.ISBN))
		case errors.As(err, &nullViolation):
			return webutil.ErrBadRequest(fmt.Sprintf(
				"Erro: O campo '%s' não pode ser nulo. Por favor, forneça um valor.", nullViolation.Column))
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"status":           "sucesso",
		"mensagem":         fmt.Sprintf("Livro com ISBN %s adicionado com sucesso.", book.ISBN),
		"livro_cadastrado": book,
	})
	return nil
}

func (h *BookHandler) HandleListBooks(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	query := r.URL.Query()
	filter := datastore.BookFilter{
		Search:    query.Get("busca"),
		Genre:     query.Get("genero"),
		Publisher: query.Get("editora"),
		Language:  query.Get("idioma"),
		OrderBy:   query.Get("ordenar_por"),
		Order:     query.Get("ordem"),
	}
	// A non-numeric categoria_id is ignored rather than rejected.
	if raw := query.Get("categoria_id"); raw != "" {
		if categoryID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CategoryID = &categoryID
		}
	}

	books, err := h.Repo.ListBooks(r.Context(), userID, filter)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}
	if books == nil {
		books = []models.Book{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status": "sucesso",
		"total":  len(books),
		"livros": books,
	})
	return nil
}

func (h *BookHandler) HandleGetBook(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	bookID, ok := pathID(r, "livroID")
	if !ok {
		return webutil.ErrNotFound(msgBookNotFound)
	}

	book, err := h.Repo.GetBookByID(r.Context(), userID, bookID)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound(msgBookNotFound)
		}
		return fmt.Errorf("failed to get book %d: %w", bookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status": "sucesso",
		"livro":  book,
	})
	return nil
}

func (h *BookHandler) HandleUpdateBook(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	bookID, ok := pathID(r, "livroID")
	if !ok {
		return webutil.ErrNotFound(msgBookNotFound)
	}

	var requestData map[string]any
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Corpo da requisição inválido: " + err.Error())
	}
	defer r.Body.Close()

	if len(requestData) == 0 {
		return webutil.ErrBadRequest("Nenhum dado fornecido para atualização.")
	}

	err = h.Repo.UpdateBook(r.Context(), userID, bookID, requestData)
	if err != nil {
		var dup *datastore.DuplicateError
		switch {
		case errors.Is(err, datastore.ErrNoFields):
			return webutil.ErrBadRequest("Nenhum campo válido fornecido para atualização.")
		case errors.Is(err, datastore.ErrNotFound):
			return webutil.ErrNotFound("Livro não encontrado ou você não tem permissão para atualizá-lo.")
		case errors.As(err, &dup):
			return webutil.ErrConflict(fmt.Sprintf(
				"ISBN '%v' já existe em outro livro.", requestData["isbn"]))
		}
		return fmt.Errorf("failed to update book %d: %w", bookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":   "sucesso",
		"mensagem": fmt.Sprintf("Livro com ID %d atualizado com sucesso.", bookID),
	})
	return nil
}

func (h *BookHandler) HandleDeleteBook(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	bookID, ok := pathID(r, "livroID")
	if !ok {
		return webutil.ErrNotFound(msgBookNotFound)
	}

	if err := h.Repo.DeleteBook(r.Context(), userID, bookID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound("Livro não encontrado ou você não tem permissão para excluí-lo.")
		}
		return fmt.Errorf("failed to delete book %d: %w", bookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":   "sucesso",
		"mensagem": fmt.Sprintf("Livro com ID %d excluído com sucesso.", bookID),
	})
	return nil
}
