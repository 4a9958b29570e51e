package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"takeapp/internal/pkg/auth/token"
	"takeapp/internal/pkg/limiter"
	"takeapp/internal/pkg/logx"
	"takeapp/internal/pkg/resp"
)

const (
	SignInRate   = 0.2
	SignInBurst  = 5
	ConnectRate  = 0.5
	ConnectBurst = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the
// application. It initializes IP-based rate limiters, configures CORS, and
// applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	signInLimiter := limiter.NewIPRateLimiter(rate.Limit(SignInRate), SignInBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Take App Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Get("/auth/callback", HandleAuthCallback(deps))

	r.Route("/api", func(api chi.Router) {
		api.Use(token.CookieExtractorMiddleware(deps.Config.CookieSecret))

		api.Route("/auth", func(auth chi.Router) {
			rateLimitedSignIn := signInLimiter.Middleware(HandleSignIn(deps))
			auth.Post("/signin", http.HandlerFunc(rateLimitedSignIn.ServeHTTP))
			auth.Post("/signout", HandleSignOut(deps))
		})
	})

	r.With(token.CookieExtractorMiddleware(deps.Config.CookieSecret)).
		Get("/ws", HandleScreenSocket(wsUpgrader, connectLimiter, deps))

	return r
}
