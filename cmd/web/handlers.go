package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/httputil"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/service"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// urlID parses the named URL parameter as a uuid, answering 400 when it
// is not one.
func urlID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid %s", name), err)
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, fmt.Errorf("dates must look like %s: %w", dateLayout, err)
	}
	return &t, nil
}

// Tournaments

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.ListTournaments(r.Context())
	if err != nil {
		httputil.ServiceError(w, "Failed to list tournaments", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournaments)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	tournament, err := app.tournaments.GetTournament(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		httputil.ServiceError(w, "Failed to get tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournament)
}

func (app *application) getSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	snap, err := app.tournaments.LoadSnapshot(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to load tournament snapshot", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (app *application) getStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	standings, err := app.standings.Standings(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to compute standings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, standings)
}

func (app *application) serveRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	app.hub.ServeRoom(w, r, id)
}

type tournamentRequest struct {
	Name      string  `json:"name"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var req tournamentRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}

	tournament, err := app.tournaments.CreateTournament(r.Context(), service.TournamentInput{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		httputil.ServiceError(w, "Failed to create tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tournament)
}

func (app *application) deleteTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	if err := app.tournaments.DeleteTournament(r.Context(), id); err != nil {
		httputil.ServiceError(w, "Failed to delete tournament", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type teamRefRequest struct {
	TeamID uuid.UUID `json:"team_id"`
}

func (app *application) addTournamentTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	var req teamRefRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	if err := app.tournaments.AddTeam(r.Context(), id, req.TeamID); err != nil {
		httputil.ServiceError(w, "Failed to register team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) removeTournamentTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	teamID, ok := urlID(w, r, "teamID")
	if !ok {
		return
	}
	if err := app.tournaments.RemoveTeam(r.Context(), id, teamID); err != nil {
		httputil.ServiceError(w, "Failed to unregister team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pools

type poolRequest struct {
	Name       string `json:"name"`
	OrderIndex *int   `json:"order_index"`
}

func (app *application) createPool(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	var req poolRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	pool, err := app.tournaments.CreatePool(r.Context(), id, req.Name, req.OrderIndex)
	if err != nil {
		httputil.ServiceError(w, "Failed to create pool", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, pool)
}

func (app *application) deletePool(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "poolID")
	if !ok {
		return
	}
	if err := app.tournaments.DeletePool(r.Context(), id); err != nil {
		httputil.ServiceError(w, "Failed to delete pool", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) addPoolTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "poolID")
	if !ok {
		return
	}
	var req teamRefRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	if err := app.tournaments.AddPoolTeam(r.Context(), id, req.TeamID); err != nil {
		httputil.ServiceError(w, "Failed to add team to pool", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) removePoolTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "poolID")
	if !ok {
		return
	}
	teamID, ok := urlID(w, r, "teamID")
	if !ok {
		return
	}
	if err := app.tournaments.RemovePoolTeam(r.Context(), id, teamID); err != nil {
		httputil.ServiceError(w, "Failed to remove team from pool", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) listAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := app.users.ListAdmins(r.Context())
	if err != nil {
		httputil.ServiceError(w, "Failed to list admins", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, admins)
}

// Teams

func (app *application) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := app.teams.ListTeams(r.Context())
	if err != nil {
		httputil.ServiceError(w, "Failed to list teams", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, teams)
}

func (app *application) searchTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := app.teams.SearchTeams(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.ServiceError(w, "Failed to search teams", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, teams)
}

type teamRequest struct {
	Name string `json:"name"`
}

func (app *application) createTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	team, err := app.teams.CreateTeam(r.Context(), req.Name)
	if err != nil {
		httputil.ServiceError(w, "Failed to create team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, team)
}

func (app *application) deleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "teamID")
	if !ok {
		return
	}
	if err := app.teams.DeleteTeam(r.Context(), id); err != nil {
		httputil.ServiceError(w, "Failed to delete team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Matches

type scheduleRequest struct {
	Team1ID     uuid.UUID  `json:"team1_id"`
	Team2ID     uuid.UUID  `json:"team2_id"`
	Stage       string     `json:"stage"`
	PoolID      *uuid.UUID `json:"pool_id"`
	BracketSlot *string    `json:"bracket_slot"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (app *application) scheduleMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	var req scheduleRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	kind, err := volley.ResolveKind(req.Stage, req.PoolID, req.BracketSlot)
	if err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}

	match, err := app.matches.ScheduleMatch(r.Context(), service.ScheduleInput{
		TournamentID: id,
		Team1ID:      req.Team1ID,
		Team2ID:      req.Team2ID,
		Kind:         kind,
		ScheduledAt:  req.ScheduledAt,
	})
	if err != nil {
		httputil.ServiceError(w, "Failed to schedule match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, match)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "matchID")
	if !ok {
		return
	}
	detail, err := app.matches.MatchDetail(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to get match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

type adjustRequest struct {
	Side  string `json:"side"`
	Delta int    `json:"delta"`
}

func (app *application) adjustPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "setID")
	if !ok {
		return
	}
	var req adjustRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	side, ok := volley.ParseSide(req.Side)
	if !ok {
		httputil.ServiceError(w, "Invalid side", service.ErrInvalidSide)
		return
	}
	set, err := app.matches.AdjustPoint(r.Context(), id, side, req.Delta)
	if err != nil {
		httputil.ServiceError(w, "Failed to adjust points", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, set)
}

func (app *application) completeMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "matchID")
	if !ok {
		return
	}
	match, err := app.matches.CompleteMatch(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to complete match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (app *application) deleteMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "matchID")
	if !ok {
		return
	}
	if err := app.matches.DeleteMatch(r.Context(), id); err != nil {
		httputil.ServiceError(w, "Failed to delete match", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bracket

func (app *application) createPlaceholders(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	created, err := app.bracket.CreatePlaceholders(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to create bracket placeholders", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, created)
}

func (app *application) seedSemifinals(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	pairings, err := app.bracket.SeedSemifinals(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to seed semifinals", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pairings)
}

type finalResponse struct {
	Final   *volley.Match `json:"final"`
	Changed bool          `json:"changed"`
}

func (app *application) propagateFinal(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournamentID")
	if !ok {
		return
	}
	final, changed, err := app.bracket.PropagateFinal(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to propagate final", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, finalResponse{Final: final, Changed: changed})
}

type assignRequest struct {
	Team1ID *uuid.UUID `json:"team1_id"`
	Team2ID *uuid.UUID `json:"team2_id"`
}

func (app *application) assignTeams(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "matchID")
	if !ok {
		return
	}
	var req assignRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	match, err := app.bracket.AssignTeams(r.Context(), id, req.Team1ID, req.Team2ID)
	if err != nil {
		httputil.ServiceError(w, "Failed to assign teams", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (app *application) clearTeams(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "matchID")
	if !ok {
		return
	}
	match, err := app.bracket.ClearTeams(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to clear teams", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}
