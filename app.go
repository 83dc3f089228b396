package harupress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/sessions"
	"github.com/harupress/harupress/assets"
	"github.com/harupress/harupress/auth"
	"github.com/harupress/harupress/contents"
	"github.com/harupress/harupress/db/sqlite3"
	"github.com/harupress/harupress/discuss"
	"github.com/harupress/harupress/guestbook"
	"github.com/harupress/harupress/random"
	"github.com/harupress/harupress/reactions"
	"github.com/harupress/harupress/server"
	"github.com/harupress/harupress/stats"
	"github.com/harupress/harupress/web"
	"github.com/nasermirzaei89/env"
)

type App struct {
	server  *server.Server
	handler *web.Handler
	db      *sql.DB
}

func NewApp(ctx context.Context) (*App, error) {
	db, err := sqlite3.NewDB(ctx, env.GetString("DB_DSN", "file::memory:?cache=shared"))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	err = sqlite3.MigrateUp(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	accountRepo := sqlite3.NewAccountRepository(db)
	adminRepo := sqlite3.NewAdminRepository(db)
	sessionRepo := sqlite3.NewSessionRepository(db)
	postRepo := sqlite3.NewPostRepository(db)
	categoryRepo := sqlite3.NewCategoryRepository(db)
	commentRepo := sqlite3.NewCommentRepository(db)
	entryRepo := sqlite3.NewGuestbookEntryRepository(db)
	assetRepo := sqlite3.NewAssetRepository(db)
	statsRepo := sqlite3.NewStatsRepository(db)
	userReactionRepo := sqlite3.NewUserReactionRepository(db)

	tx := sqlite3.NewTransactor(db)
	hasher := auth.BcryptHasher{}

	authSvc := auth.NewService(accountRepo, adminRepo, sessionRepo, hasher)

	err = authSvc.EnsureBootstrapAdmin(
		ctx,
		env.GetString("ADMIN_USERNAME", ""),
		env.GetString("ADMIN_PASSWORD", ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bootstrap admin: %w", err)
	}

	contentsSvc := contents.NewService(postRepo, categoryRepo)

	finder := &accountFinder{authSvc: authSvc}

	discussSvc := discuss.NewService(commentRepo, contentsSvc, finder, tx, hasher)
	guestbookSvc := guestbook.NewService(entryRepo, finder, tx, hasher)

	statsSvc := stats.NewService(statsRepo, newViewCache(ctx), stats.DefaultDedupWindow)

	assetsSvc, err := newAssetsService(ctx, assetRepo)
	if err != nil {
		return nil, err
	}

	reactionsSvc := reactions.NewService(userReactionRepo)

	sessionName := env.GetString("SESSION_NAME", "harupress-"+random.String(4))
	sessionKey := env.GetString("SESSION_KEY", random.String(32))
	cookieStore := sessions.NewCookieStore([]byte(sessionKey))

	httpHandler := web.NewHandler(
		authSvc,
		contentsSvc,
		discussSvc,
		guestbookSvc,
		assetsSvc,
		statsSvc,
		reactionsSvc,
		cookieStore,
		sessionName,
	)

	app := &App{
		server:  newServer(),
		handler: httpHandler,
		db:      db,
	}

	return app, nil
}

func (app *App) Run(ctx context.Context) error {
	// Handle SIGINT (CTRL+C) gracefully.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	defer func() {
		if app.db != nil {
			err := app.db.Close()
			if err != nil {
				slog.ErrorContext(ctx, "failed to close database", "error", err)
			}
		}
	}()

	err := app.server.Run(ctx, app.handler)
	if err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}

// accountFinder narrows the auth service to the read-only account lookup
// the discussion side needs. A missing account is not an error there; it
// renders as a deleted author.
type accountFinder struct {
	authSvc *auth.Service
}

var _ discuss.AccountFinder = (*accountFinder)(nil)

func (f *accountFinder) FindAccount(ctx context.Context, accountID string) (*discuss.AccountInfo, error) {
	account, err := f.authSvc.GetAccount(ctx, accountID)
	if err != nil {
		var notFoundErr *auth.AccountNotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &discuss.AccountInfo{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		AvatarURL: account.AvatarURL,
		Deleted:   account.DeletedAt != nil,
	}, nil
}

// newViewCache prefers redis when configured, so several instances share
// one dedup window. Without redis the in-process cache covers the single
// instance case.
func newViewCache(ctx context.Context) stats.ViewCache {
	redisURL := env.GetString("REDIS_URL", "")
	if redisURL == "" {
		return stats.NewMemoryViewCache(time.Now)
	}

	cache, err := stats.NewRedisViewCache(redisURL)
	if err != nil {
		slog.WarnContext(ctx, "redis unavailable, falling back to in-memory view cache", "error", err)

		return stats.NewMemoryViewCache(time.Now)
	}

	return cache
}

// newAssetsService returns nil when no object storage is configured; the
// web layer reports asset endpoints as unavailable in that case.
func newAssetsService(ctx context.Context, assetRepo assets.AssetRepository) (*assets.Service, error) {
	endpoint := env.GetString("MINIO_ENDPOINT", "")
	if endpoint == "" {
		return nil, nil
	}

	storage, err := assets.NewMinioStorage(ctx, assets.MinioConfig{
		Endpoint:  endpoint,
		AccessKey: env.GetString("MINIO_ACCESS_KEY", ""),
		SecretKey: env.GetString("MINIO_SECRET_KEY", ""),
		Bucket:    env.GetString("MINIO_BUCKET", "harupress"),
		UseSSL:    env.GetBool("MINIO_USE_SSL", false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage: %w", err)
	}

	return assets.NewService(assetRepo, storage, int64(env.GetInt("ASSET_MAX_SIZE", 0))), nil
}

func newServer() *server.Server {
	server := &server.Server{
		Port: env.GetString("PORT", server.DefaultPort),
		Host: env.GetString("HOST", ""),
		TLS: server.ServerTLS{
			Enabled: env.GetBool("TLS_ENABLED", false),
			Mode:    env.GetString("TLS_MODE", server.DefaultTLSMode),
			AutoCert: &server.ServerTLSAutoCert{
				CacheDir: env.GetString("TLS_AUTOCERT_CACHE_DIR", "./cert-cache"),
				Domains:  env.GetStringSlice("TLS_AUTOCERT_DOMAINS", []string{}),
				Email:    env.GetString("TLS_AUTOCERT_EMAIL", ""),
			},
			CertFile: env.GetString("TLS_CERT_FILE", ""),
			KeyFile:  env.GetString("TLS_KEY_FILE", ""),
		},
	}

	return server
}

func GetLogLevelFromEnv() slog.Level {
	levelStr := env.GetString("LOG_LEVEL", "info")
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}
