package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"start-page/api"
	"start-page/dashboard"
	"start-page/domain"
	"start-page/list"
	"start-page/storage"
	"start-page/weather"
)

func main() {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.StandardLogger()

	store, err := storage.New(cfg.StorageConn, cfg.TodosTable, cfg.ShortcutsTable, cfg.DashboardID)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	var (
		todos     list.Remote[domain.Todo, domain.TodoPatch]         = store.Todos
		shortcuts list.Remote[domain.Shortcut, domain.ShortcutPatch] = store.Shortcuts
	)
	if cfg.RedisConn != "" {
		rc := redis.NewClient(redisOptions(cfg.RedisConn))
		defer rc.Close()
		todos = storage.CacheCollection(store.Todos, rc, cfg.CacheTTL)
		shortcuts = storage.CacheCollection(store.Shortcuts, rc, cfg.CacheTTL)
		log.WithField("ttl", cfg.CacheTTL).Info("list cache enabled")
	}

	clock, err := domain.LoadClock(cfg.Timezone)
	if err != nil {
		log.Fatalf("clock: %v", err)
	}

	d := dashboard.New(dashboard.Deps{
		Todos:     todos,
		Shortcuts: shortcuts,
		Weather:   weather.NewClient(cfg.Weather),
		Clock:     clock,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := d.Start(startCtx); err != nil {
		log.WithError(err).Warn("initial load failed; serving empty lists")
	}
	cancel()
	go d.Weather.Run(ctx, cfg.WeatherInterval)

	auth, err := newAuthenticator(cfg)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	api.Register(e, d, auth, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	log.WithField("port", cfg.Port).Info("start page listening")
	if err := e.Start(":" + cfg.Port); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

// newAuthenticator returns nil when auth is disabled, which leaves the API open.
func newAuthenticator(cfg config) (api.Authenticator, error) {
	if cfg.AuthDisabled {
		log.Warn("authentication disabled")
		return nil, nil
	}
	if cfg.LocalAuthMode == "hs256" {
		return api.NewAuth(api.AuthConfig{SharedSecret: []byte(cfg.LocalSecret), Owner: cfg.Owner}), nil
	}
	jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.Auth0Domain)
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
	if err != nil {
		return nil, fmt.Errorf("jwks: %w", err)
	}
	return api.NewAuth(api.AuthConfig{
		JWKS:     jwks,
		Audience: cfg.Auth0Audience,
		Issuer:   "https://" + cfg.Auth0Domain + "/",
		Owner:    cfg.Owner,
	}), nil
}
