package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/estanteapp/estante/auth"
	"github.com/estanteapp/estante/datastore"
	"github.com/estanteapp/estante/models"
	"github.com/estanteapp/estante/webutil"
	"github.com/google/uuid"
)

const msgInvalidCredentials = "Nome de usuário ou senha inválidos."

// AuthHandler serves registration and login. The password hasher and
// token service are injected rather than reached for globally.
type AuthHandler struct {
	Users  *datastore.UserRepository
	Tokens *auth.TokenService
	Hasher *auth.PasswordHasher
}

func NewAuthHandler(users *datastore.UserRepository, tokens *auth.TokenService, hasher *auth.PasswordHasher) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Hasher: hasher}
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Username string  `json:"username"`
		Password string  `json:"password"`
		Email    *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Corpo da requisição inválido: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.Username == "" || requestData.Password == "" {
		return webutil.ErrBadRequest("Nome de usuário e senha são obrigatórios.")
	}

	taken, err := h.Users.UsernameExists(r.Context(), requestData.Username)
	if err != nil {
		return fmt.Errorf("failed to check username availability: %w", err)
	}
	if taken {
		return webutil.ErrConflict("Nome de usuário já existe.")
	}

	if requestData.Email != nil && *requestData.Email != "" {
		inUse, err := h.Users.EmailExists(r.Context(), *requestData.Email)
		if err != nil {
			return fmt.Errorf("failed to check email availability: %w", err)
		}
		if inUse {
			return webutil.ErrConflict("E-mail já está em uso.")
		}
	}

	digest, err := h.Hasher.Hash(requestData.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := models.User{
		ID:           uuid.NewString(),
		Username:     requestData.Username,
		Email:        requestData.Email,
		PasswordHash: digest,
	}

	if err := h.Users.CreateUser(r.Context(), &newUser); err != nil {
		// The pre-checks can race with a concurrent registration; the
		// unique index is the authority.
		var dup *datastore.DuplicateError
		if errors.As(err, &dup) {
			return webutil.ErrConflict("Nome de usuário ou e-mail já está em uso.")
		}
		return fmt.Errorf("failed to create user %s: %w", requestData.Username, err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"status":   "sucesso",
		"mensagem": "Usuário registrado com sucesso.",
		"user_id":  newUser.ID,
	})
	return nil
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Corpo da requisição inválido: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.Username == "" || requestData.Password == "" {
		return webutil.ErrBadRequest("Nome de usuário e senha são obrigatórios.")
	}

	// Unknown username and wrong password produce the same response so
	// usernames cannot be enumerated.
	user, err := h.Users.GetUserByUsername(r.Context(), requestData.Username)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrUnauthorized(msgInvalidCredentials)
		}
		return fmt.Errorf("failed to look up user %s: %w", requestData.Username, err)
	}

	if !h.Hasher.Verify(user.PasswordHash, requestData.Password) {
		return webutil.ErrUnauthorized(msgInvalidCredentials)
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":   "sucesso",
		"mensagem": "Login realizado com sucesso.",
		"token":    token,
		"user_id":  user.ID,
	})
	return nil
}
