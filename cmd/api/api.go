package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"jeffreysprompts/docs" // generated swagger docs
	"jeffreysprompts/internal/auth"
	"jeffreysprompts/internal/cache"
	"jeffreysprompts/internal/mailer"
	"jeffreysprompts/internal/notifications"
	"jeffreysprompts/internal/ratelimiter"
	"jeffreysprompts/internal/search"
	"jeffreysprompts/internal/store"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	cache         cache.Cache
	search        *search.Index
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	push          notifications.PushSender
	cld           *cloudinary.Cloudinary
	db            *pgxpool.Pool // nil in memory mode
}

type config struct {
	addr        string
	env         string
	apiURL      string
	frontendURL string
	metricsAddr string
	sentryDSN   string
	db          dbConfig
	redis       redisConfig
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type redisConfig struct {
	addr     string
	password string
	db       int
}

type mailConfig struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type basicConfig struct {
	user string
	pass string
}

type tokenConfig struct {
	secret        string
	refreshSecret string
	accessExp     time.Duration
	refreshExp    time.Duration
	iss           string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.MetricsMiddleware)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.frontendURL, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Get("/ready", app.readinessHandler)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Everything below runs with a resolved identity: the user-id
		// cookie for visitors, overridden by a bearer token when present.
		r.Group(func(r chi.Router) {
			r.Use(app.VisitorIdentityMiddleware)
			r.Use(app.OptionalAuthTokenMiddleware)

			r.Route("/prompts", func(r chi.Router) {
				r.Get("/", app.listPromptsHandler)
				r.Get("/search", app.searchPromptsHandler)
				r.Get("/{slug}", app.getPromptHandler)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Post("/", app.submitReviewHandler)
				r.Get("/", app.listReviewsHandler)
				r.Get("/summary", app.reviewSummaryHandler)
				r.Route("/{reviewID}", func(r chi.Router) {
					r.Post("/vote", app.voteReviewHandler)
					r.Post("/report", app.reportReviewHandler)
					r.Post("/response", app.respondReviewHandler)
					r.Delete("/", app.deleteReviewHandler)
				})
			})

			r.Route("/support/tickets", func(r chi.Router) {
				r.Post("/", app.createTicketHandler)
				r.Get("/", app.listTicketsHandler)
				r.Route("/{ticketID}", func(r chi.Router) {
					r.Get("/", app.getTicketHandler)
					r.Post("/replies", app.replyTicketHandler)
					r.With(app.BasicAuthMiddleware()).Patch("/status", app.setTicketStatusHandler)
				})
			})

			r.Route("/moderation", func(r chi.Router) {
				r.With(app.BasicAuthMiddleware()).Post("/actions", app.createModerationActionHandler)
				r.Get("/actions/{actionID}", app.getModerationActionHandler)
				r.Post("/actions/{actionID}/appeal", app.createAppealHandler)
				r.Get("/appeals/{appealID}", app.getAppealHandler)
			})

			r.Route("/tags/mappings", func(r chi.Router) {
				r.Get("/", app.listTagMappingsHandler)
				r.With(app.BasicAuthMiddleware()).Put("/", app.upsertTagMappingHandler)
			})

			r.Route("/consent", func(r chi.Router) {
				r.Get("/", app.getConsentHandler)
				r.Post("/", app.recordConsentHandler)
			})

			r.Post("/transcripts/process", app.processTranscriptHandler)

			r.Route("/profiles", func(r chi.Router) {
				r.Get("/{userID}", app.getProfileHandler)
				r.Group(func(r chi.Router) {
					r.Use(app.RequireRegisteredUser)
					r.Put("/", app.updateProfileHandler)
					r.Post("/avatar", app.uploadAvatarHandler)
					r.Put("/{userID}/follow", app.followUserHandler)
					r.Put("/{userID}/unfollow", app.unfollowUserHandler)
				})
			})

			r.With(app.RequireRegisteredUser).Get("/feed", app.feedHandler)
			r.With(app.RequireRegisteredUser).Post("/push-tokens", app.registerPushTokenHandler)
		})

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())
		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdown; err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)
	return nil
}
