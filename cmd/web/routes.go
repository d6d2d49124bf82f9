package main

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/httputil"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/middleware"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/service"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/markbates/goth/gothic"
)

type application struct {
	sessionManager *scs.SessionManager
	hub            *live.Hub
	allowedOrigins []string

	teams       *service.TeamService
	tournaments *service.TournamentService
	matches     *service.MatchService
	bracket     *service.BracketService
	standings   *service.StandingsService
	users       *service.UserService
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	// Upgraded connections must not pass through the session writer.
	r.Get("/ws/tournaments/{tournamentID}", app.serveRoom)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(middleware.LoadAuthenticatedUser(app.sessionManager, app.users))

		// Viewers need no account.
		r.Get("/tournaments", app.listTournaments)
		r.Get("/tournaments/{tournamentID}", app.getTournament)
		r.Get("/tournaments/{tournamentID}/snapshot", app.getSnapshot)
		r.Get("/tournaments/{tournamentID}/standings", app.getStandings)
		r.Get("/teams", app.listTeams)
		r.Get("/teams/search", app.searchTeams)
		r.Get("/matches/{matchID}", app.getMatch)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/admins", app.listAdmins)

			r.Post("/teams", app.createTeam)
			r.Delete("/teams/{teamID}", app.deleteTeam)

			r.Post("/tournaments", app.createTournament)
			r.Delete("/tournaments/{tournamentID}", app.deleteTournament)
			r.Post("/tournaments/{tournamentID}/teams", app.addTournamentTeam)
			r.Delete("/tournaments/{tournamentID}/teams/{teamID}", app.removeTournamentTeam)
			r.Post("/tournaments/{tournamentID}/pools", app.createPool)
			r.Delete("/pools/{poolID}", app.deletePool)
			r.Post("/pools/{poolID}/teams", app.addPoolTeam)
			r.Delete("/pools/{poolID}/teams/{teamID}", app.removePoolTeam)

			r.Post("/tournaments/{tournamentID}/matches", app.scheduleMatch)
			r.Post("/sets/{setID}/adjust", app.adjustPoint)
			r.Post("/matches/{matchID}/complete", app.completeMatch)
			r.Delete("/matches/{matchID}", app.deleteMatch)

			r.Post("/tournaments/{tournamentID}/bracket/placeholders", app.createPlaceholders)
			r.Post("/tournaments/{tournamentID}/bracket/seed", app.seedSemifinals)
			r.Post("/tournaments/{tournamentID}/bracket/final", app.propagateFinal)
			r.Put("/matches/{matchID}/teams", app.assignTeams)
			r.Delete("/matches/{matchID}/teams", app.clearTeams)
		})

		r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
			provider := chi.URLParam(r, "provider")
			r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

			gothic.BeginAuthHandler(w, r)
		})

		r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
			provider := chi.URLParam(r, "provider")
			r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

			gothUser, err := gothic.CompleteUserAuth(w, r)
			if err != nil {
				httputil.BadRequest(w, "Authentication failure", err)
				return
			}

			user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
			if err != nil {
				httputil.InternalServerError(w, "Failed to find or create user", err)
				return
			}

			if err := app.sessionManager.RenewToken(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to renew session", err)
				return
			}
			app.sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())

			http.Redirect(w, r, "/me", http.StatusFound)
		})

		r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
			if err := app.sessionManager.Destroy(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to end session", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.With(middleware.RequireAuth).Get("/me", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, middleware.GetAuthenticatedUser(r.Context()))
		})
	})

	return r
}
