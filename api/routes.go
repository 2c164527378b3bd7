package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/estanteapp/estante/auth"
	rh "github.com/estanteapp/estante/route-handlers"
	"github.com/estanteapp/estante/webutil"
)

const (
	booksBasePath      = "/livros"
	categoriesBasePath = "/categorias"

	paramBookID     = "livroID"
	paramCategoryID = "categoriaID"
)

// SetupRoutes builds the full router. Registration, login and the ISBN
// lookup are public; everything else sits behind the Authenticator.
func SetupRoutes(
	db *sql.DB,
	tokens *auth.TokenService,
	authHandler *rh.AuthHandler,
	bookHandler *rh.BookHandler,
	categoryHandler *rh.CategoryHandler,
	associationHandler *rh.AssociationHandler,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{webutil.HeaderContentType, webutil.HeaderAuthorization},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", handleHello)
	r.Get("/testar-db", handleDBProbe(db))

	r.Post("/registrar", webutil.MakeHandler(authHandler.HandleRegister))
	r.Post("/login", webutil.MakeHandler(authHandler.HandleLogin))

	configureBookRoutes(r, tokens, bookHandler, associationHandler)
	configureCategoryRoutes(r, tokens, categoryHandler)

	return r
}

func configureBookRoutes(r chi.Router, tokens *auth.TokenService, bookHandler *rh.BookHandler, associationHandler *rh.AssociationHandler) {
	r.Route(booksBasePath, func(r chi.Router) {
		// Public metadata preview, used before a book exists.
		r.Get("/buscar-isbn", webutil.MakeHandler(bookHandler.HandleLookupISBN))

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(tokens))

			r.Post("/", webutil.MakeHandler(bookHandler.HandleCreateBook))
			r.Get("/", webutil.MakeHandler(bookHandler.HandleListBooks))

			r.Route("/{"+paramBookID+"}", func(r chi.Router) {
				r.Get("/", webutil.MakeHandler(bookHandler.HandleGetBook))
				r.Put("/", webutil.MakeHandler(bookHandler.HandleUpdateBook))
				r.Delete("/", webutil.MakeHandler(bookHandler.HandleDeleteBook))

				r.Post(categoriesBasePath+"/{"+paramCategoryID+"}", webutil.MakeHandler(associationHandler.HandleLink))
				r.Delete(categoriesBasePath+"/{"+paramCategoryID+"}", webutil.MakeHandler(associationHandler.HandleUnlink))
			})
		})
	})
}

func configureCategoryRoutes(r chi.Router, tokens *auth.TokenService, categoryHandler *rh.CategoryHandler) {
	r.Route(categoriesBasePath, func(r chi.Router) {
		r.Use(Authenticator(tokens))

		r.Post("/", webutil.MakeHandler(categoryHandler.HandleCreateCategory))
		r.Get("/", webutil.MakeHandler(categoryHandler.HandleListCategories))

		r.Route("/{"+paramCategoryID+"}", func(r chi.Router) {
			r.Put("/", webutil.MakeHandler(categoryHandler.HandleUpdateCategory))
			r.Delete("/", webutil.MakeHandler(categoryHandler.HandleDeleteCategory))
		})
	})
}

func handleHello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	_, _ = w.Write([]byte("Olá, mundo! O backend do seu catálogo de livros está funcionando!"))
}

// handleDBProbe reports whether the relational store is reachable.
func handleDBProbe(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			webutil.RespondWithError(w, http.StatusInternalServerError,
				"Falha ao conectar ao banco de dados. Verifique as credenciais e se o banco está rodando.")
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status":   "sucesso",
			"mensagem": "Conexão com o banco de dados bem-sucedida!",
		})
	}
}
