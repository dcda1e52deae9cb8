package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"reelist/handlers"
)

// corsMiddleware allows the configured SPA origin to send credentialed
// requests; the session cookie rides on every call.
func corsMiddleware(origin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	authHandler *handlers.AuthHandler,
	watchlistsHandler *handlers.WatchlistsHandler,
	metadataHandler *handlers.MetadataHandler,
	sessionAuth mux.MiddlewareFunc,
	corsOrigin string,
) {
	r.Use(corsMiddleware(corsOrigin))

	// Session lifecycle (no authentication required)
	r.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/signup", handleOptions).Methods(http.MethodOptions)
	r.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/login", handleOptions).Methods(http.MethodOptions)
	r.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)
	r.HandleFunc("/logout", handleOptions).Methods(http.MethodOptions)

	// Current-user probe and availability check (public: they answer for
	// logged-out visitors too)
	r.HandleFunc("/users/sessionUser", authHandler.SessionUser).Methods(http.MethodGet)
	r.HandleFunc("/users/sessionUser", authHandler.DeleteAccount).Methods(http.MethodDelete)
	r.HandleFunc("/users/sessionUser", handleOptions).Methods(http.MethodOptions)
	r.HandleFunc("/users/exists/by", authHandler.EmailExists).Methods(http.MethodGet)
	r.HandleFunc("/users/exists/by", handleOptions).Methods(http.MethodOptions)

	// Watchlist resources - require a live session
	protected := r.PathPrefix("/watchlists").Subrouter()
	protected.Use(sessionAuth)
	protected.HandleFunc("", watchlistsHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("", watchlistsHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/default", watchlistsHandler.GetDefault).Methods(http.MethodGet)
	protected.HandleFunc("/default", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/{id}/name", watchlistsHandler.Rename).Methods(http.MethodPatch)
	protected.HandleFunc("/{id}/name", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/{id}/default", watchlistsHandler.SetDefault).Methods(http.MethodPatch)
	protected.HandleFunc("/{id}/default", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/{id}", watchlistsHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/{id}", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/{id}/items", watchlistsHandler.AddItem).Methods(http.MethodPut)
	protected.HandleFunc("/{id}/items", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/{id}/items/{itemID}/watched", watchlistsHandler.SetItemWatched).Methods(http.MethodPatch)
	protected.HandleFunc("/{id}/items/{itemID}/watched", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/{id}/items/{itemID}", watchlistsHandler.DeleteItem).Methods(http.MethodDelete)
	protected.HandleFunc("/{id}/items/{itemID}", handleOptions).Methods(http.MethodOptions)

	// Title metadata - proxied through the server so the API key stays
	// out of the browser
	titles := r.PathPrefix("").Subrouter()
	titles.Use(sessionAuth)
	titles.HandleFunc("/search", metadataHandler.Search).Methods(http.MethodGet)
	titles.HandleFunc("/search", handleOptions).Methods(http.MethodOptions)
	titles.HandleFunc("/trending", metadataHandler.Trending).Methods(http.MethodGet)
	titles.HandleFunc("/trending", handleOptions).Methods(http.MethodOptions)
}
