package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/9ssi7/exponent"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jeffreysprompts/internal/auth"
	"jeffreysprompts/internal/cache"
	"jeffreysprompts/internal/db"
	"jeffreysprompts/internal/mailer"
	"jeffreysprompts/internal/notifications"
	"jeffreysprompts/internal/observability"
	"jeffreysprompts/internal/ratelimiter"
	"jeffreysprompts/internal/search"
	"jeffreysprompts/internal/store"
)

var version = "0.3.0"

// loadRateLimiterConfig reads the limiter settings from the environment,
// falling back to a disabled limiter at 200 req / 5s.
func loadRateLimiterConfig() ratelimiter.Config {
	cfg := ratelimiter.Config{
		RequestsPerTimeFrame: 200,
		TimeFrame:            5 * time.Second,
	}

	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.RequestsPerTimeFrame = parsed
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", cfg.RequestsPerTimeFrame)
		}
	}
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Enabled = parsed
		}
	}
	return cfg
}

// newLogger builds a colored console logger at info level.
func newLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(os.Stdout),
		zapcore.InfoLevel,
	)
	return zap.New(core).Sugar(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

//	@title			JeffreysPrompts API
//	@description	Backend for the JeffreysPrompts content library: catalog, search, reviews, support and profiles.

//	@contact.name	API Support
//	@contact.email	support@jeffreysprompts.com

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}

	maxConns := 30
	if val := os.Getenv("DB_MAX_CONNS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("Invalid value for DB_MAX_CONNS: %v", err)
		}
		maxConns = parsed
	}

	smtpPort := 587
	if val := os.Getenv("SMTP_PORT"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("Invalid value for SMTP_PORT: %v", err)
		}
		smtpPort = parsed
	}

	redisDB := 0
	if val := os.Getenv("REDIS_DB"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("Invalid value for REDIS_DB: %v", err)
		}
		redisDB = parsed
	}

	cfg := config{
		addr:        envOr("ADDR", ":8080"),
		env:         envOr("ENV", "development"),
		frontendURL: envOr("FRONTEND_URL", "http://localhost:3000"),
		apiURL:      envOr("EXTERNAL_URL", "localhost:8080"),
		metricsAddr: os.Getenv("METRICS_ADDR"),
		sentryDSN:   os.Getenv("SENTRY_DSN"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(maxConns),
			maxIdleTime: envOr("DB_MAX_IDLE_TIME", "15m"),
		},
		redis: redisConfig{
			addr:     os.Getenv("REDIS_ADDR"),
			password: os.Getenv("REDIS_PASSWORD"),
			db:       redisDB,
		},
		mail: mailConfig{
			host:      os.Getenv("SMTP_HOST"),
			port:      smtpPort,
			username:  os.Getenv("SMTP_USERNAME"),
			password:  os.Getenv("SMTP_PASSWORD"),
			fromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:        os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret: os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				accessExp:     time.Hour * 24 * 3,
				refreshExp:    time.Hour * 24 * 9,
				iss:           "jeffreysprompts",
			},
		},
		rateLimiter: loadRateLimiterConfig(),
	}

	logger, err := newLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if cfg.sentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.sentryDSN,
			Environment: cfg.env,
			Release:     version,
		}); err != nil {
			logger.Fatal(err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Storage: in-memory demo stores by default, pgx-backed when DB_ADDR is
	// set.
	storage := store.NewMemoryStorage()
	var appDB *pgxpool.Pool
	if cfg.db.addr != "" {
		appDB, err = db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
		if err != nil {
			logger.Fatal(err)
		}
		defer appDB.Close()

		if err := store.EnsureSchema(context.Background(), appDB); err != nil {
			logger.Fatal(err)
		}
		storage = store.NewPostgresStorage(appDB)
		logger.Info("database connection pool established")
	} else {
		logger.Info("no DB_ADDR set, using in-memory storage")
	}

	// Cache: redis when configured, no-op otherwise.
	var appCache cache.Cache = cache.Noop{}
	if cfg.redis.addr != "" {
		rds := cache.NewRedis(cfg.redis.addr, cfg.redis.password, cfg.redis.db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rds.Ping(ctx); err != nil {
			cancel()
			logger.Fatal(err)
		}
		cancel()
		appCache = rds
		logger.Info("redis cache connected")
	}

	// Search index over the embedded catalog, with tag aliases resolving at
	// both index and query time.
	prompts, err := storage.Prompts.All(context.Background())
	if err != nil {
		logger.Fatal(err)
	}
	docs := make([]search.Document, 0, len(prompts))
	for _, p := range prompts {
		helpfulness := 0.0
		if sum, err := storage.Reviews.Summary(context.Background(), p.Type, p.Slug, time.Now().UTC()); err == nil {
			helpfulness = sum.HelpfulnessRatio
		}
		docs = append(docs, search.Document{
			Slug:        p.Slug,
			Title:       p.Title,
			Description: p.Description,
			Body:        p.Body,
			Tags:        p.Tags,
			CreatedAt:   p.CreatedAt,
			Helpfulness: helpfulness,
		})
	}
	searchIndex := search.NewIndex(docs, storage.TagMappings.Resolve)

	var mailClient mailer.Client
	if cfg.mail.host != "" {
		smtp, err := mailer.NewSMTPClient(cfg.mail.host, cfg.mail.port, cfg.mail.username, cfg.mail.password, cfg.mail.fromEmail)
		if err != nil {
			logger.Fatal(err)
		}
		mailClient = smtp
	}

	var push notifications.PushSender
	if os.Getenv("EXPO_PUSH_ENABLED") == "true" {
		push = notifications.NewExpoAdapter(exponent.NewClient())
	}

	var cld *cloudinary.Cloudinary
	if url := os.Getenv("CLOUDINARY_URL"); url != "" {
		cld, err = cloudinary.NewFromURL(url)
		if err != nil {
			logger.Fatal(err)
		}
	}

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.accessExp,
		cfg.auth.token.refreshExp,
	)

	app := &application{
		config:        cfg,
		store:         storage,
		logger:        logger,
		cache:         appCache,
		search:        searchIndex,
		mailer:        mailClient,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		push:          push,
		cld:           cld,
		db:            appDB,
	}

	// Metrics at /v1/debug/vars (expvar) plus the optional prometheus
	// listener.
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	observability.Serve(cfg.metricsAddr, logger)

	mux := app.mount()
	logger.Fatal(app.run(mux))
}
