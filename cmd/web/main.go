package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/config"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/db"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/middleware"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/service"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsPath); err != nil {
		return err
	}

	providers := middleware.InitAuth(cfg)
	slog.Info("auth providers configured", "providers", providers)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub(originChecker(cfg.AllowedOrigins))
	go hub.Run(ctx)

	app := newApplication(database, cfg, hub, sessionManager)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr, "ruleset", cfg.Rules.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newApplication(database *sqlx.DB, cfg *config.Config, hub *live.Hub, sessionManager *scs.SessionManager) *application {
	teamStore := store.NewTeamStore(database)
	tournamentStore := store.NewTournamentStore(database)
	matchStore := store.NewMatchStore(database)
	userStore := store.NewUserStore(database)

	tournaments := service.NewTournamentService(database, tournamentStore, teamStore, matchStore)
	bracket := service.NewBracketService(database, matchStore, tournamentStore, hub, cfg.Rules)

	return &application{
		sessionManager: sessionManager,
		hub:            hub,
		allowedOrigins: cfg.AllowedOrigins,
		teams:          service.NewTeamService(teamStore),
		tournaments:    tournaments,
		matches:        service.NewMatchService(database, matchStore, tournamentStore, bracket, hub, cfg.Rules),
		bracket:        bracket,
		standings:      service.NewStandingsService(tournaments, cfg.Rules),
		users:          service.NewUserService(userStore, cfg.AdminEmails),
	}
}

// originChecker accepts websocket upgrades from the configured origins.
// "*" accepts any origin.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
