package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/config"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/db"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/middleware"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/service"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/store"
	users "github.com/AdamBeresnev/volley-scorekeeper/internal/user"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	hub   *live.Hub
	admin *users.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database, err := db.InitDB("file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"))
	t.Cleanup(func() { database.Close() })

	admin := &users.User{ID: uuid.New(), Email: "ref@example.com", Username: "ref", IsAdmin: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.NewUserStore(database).CreateUser(context.Background(), admin))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := live.NewHub(nil)
	go hub.Run(ctx)

	cfg := &config.Config{Rules: scoring.Latest(), AllowedOrigins: []string{"*"}}
	sm := scs.New()
	app := newApplication(database, cfg, hub, sm)

	// Sessions are normally opened by the OAuth callback.
	outer := chi.NewRouter()
	outer.With(sm.LoadAndSave).Post("/test-login/{id}", func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), middleware.SessionUserKey, chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	})
	outer.Mount("/", newRouter(app))

	srv := httptest.NewServer(outer)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, hub: hub, admin: admin}
}

// adminClient returns a client holding an admin session.
func (s *testServer) adminClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	resp, err := client.Post(s.URL+"/test-login/"+s.admin.ID.String(), "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	return client
}

func call(t *testing.T, client *http.Client, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestPublicRoutesNeedNoAccount(t *testing.T) {
	srv := newTestServer(t)
	anon := srv.Client()

	var tournaments []volley.Tournament
	assert.Equal(t, http.StatusOK, call(t, anon, http.MethodGet, srv.URL+"/tournaments", nil, &tournaments))
	assert.Empty(t, tournaments)

	assert.Equal(t, http.StatusNotFound, call(t, anon, http.MethodGet, srv.URL+"/tournaments/no-such-cup", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, anon, http.MethodGet, srv.URL+"/tournaments/not-a-uuid/standings", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, anon, http.MethodPost, srv.URL+"/teams", map[string]string{"name": "Spikers"}, nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, anon, http.MethodGet, srv.URL+"/me", nil, nil))
}

func TestScoringFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.adminClient(t)
	anon := srv.Client()

	var me users.User
	require.Equal(t, http.StatusOK, call(t, admin, http.MethodGet, srv.URL+"/me", nil, &me))
	assert.True(t, me.IsAdmin)

	var admins []users.User
	require.Equal(t, http.StatusOK, call(t, admin, http.MethodGet, srv.URL+"/admins", nil, &admins))
	require.Len(t, admins, 1)
	assert.Equal(t, srv.admin.ID, admins[0].ID)
	assert.Equal(t, http.StatusUnauthorized, call(t, anon, http.MethodGet, srv.URL+"/admins", nil, nil))

	var tournament volley.Tournament
	require.Equal(t, http.StatusCreated, call(t, admin, http.MethodPost, srv.URL+"/tournaments",
		map[string]any{"name": "Summer Cup 2024", "start_date": "2024-07-01"}, &tournament))
	assert.Equal(t, "summer-cup-2024", tournament.Slug)

	var bySlug volley.Tournament
	require.Equal(t, http.StatusOK, call(t, anon, http.MethodGet, srv.URL+"/tournaments/summer-cup-2024", nil, &bySlug))
	assert.Equal(t, tournament.ID, bySlug.ID)

	teamIDs := make([]uuid.UUID, 0, 2)
	for _, name := range []string{"Spikers", "Blockers"} {
		var team volley.Team
		require.Equal(t, http.StatusCreated, call(t, admin, http.MethodPost, srv.URL+"/teams", map[string]string{"name": name}, &team))
		require.Equal(t, http.StatusNoContent, call(t, admin, http.MethodPost,
			fmt.Sprintf("%s/tournaments/%s/teams", srv.URL, tournament.ID), map[string]any{"team_id": team.ID}, nil))
		teamIDs = append(teamIDs, team.ID)
	}
	assert.Equal(t, http.StatusConflict, call(t, admin, http.MethodPost, srv.URL+"/teams", map[string]string{"name": "Spikers"}, nil))

	matchesURL := fmt.Sprintf("%s/tournaments/%s/matches", srv.URL, tournament.ID)
	assert.Equal(t, http.StatusBadRequest, call(t, admin, http.MethodPost, matchesURL,
		map[string]any{"team1_id": teamIDs[0], "team2_id": teamIDs[0]}, nil))

	var match volley.Match
	require.Equal(t, http.StatusCreated, call(t, admin, http.MethodPost, matchesURL,
		map[string]any{"team1_id": teamIDs[0], "team2_id": teamIDs[1], "stage": "pool"}, &match))

	var detail service.MatchDetail
	require.Equal(t, http.StatusOK, call(t, anon, http.MethodGet, srv.URL+"/matches/"+match.ID.String(), nil, &detail))
	require.Len(t, detail.Sets, 3)
	assert.Equal(t, 21, detail.Sets[0].Target)
	assert.Equal(t, 15, detail.Sets[2].Target)

	conn, _, err := websocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/tournaments/"+tournament.ID.String(), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.hub.Viewers(tournament.ID) == 1 }, time.Second, 10*time.Millisecond)

	var set volley.Set
	adjustURL := srv.URL + "/sets/" + detail.Sets[0].ID.String() + "/adjust"
	require.Equal(t, http.StatusOK, call(t, admin, http.MethodPost, adjustURL, map[string]any{"side": "team1", "delta": 1}, &set))
	assert.Equal(t, 1, set.Team1Points)
	assert.Equal(t, http.StatusBadRequest, call(t, admin, http.MethodPost, adjustURL, map[string]any{"side": "team1", "delta": 2}, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, admin, http.MethodPost, adjustURL, map[string]any{"side": "net", "delta": 1}, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event live.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, live.TableSets, event.Table)
	assert.Equal(t, live.EventUpdate, event.Type)
	require.NotNil(t, event.Set)
	assert.Equal(t, 1, event.Set.Team1Points)

	var standings service.Standings
	require.Equal(t, http.StatusOK, call(t, anon, http.MethodGet,
		fmt.Sprintf("%s/tournaments/%s/standings", srv.URL, tournament.ID), nil, &standings))
	assert.Equal(t, scoring.RulesetLatest, standings.Ruleset)
	assert.Len(t, standings.Overall, 2)

	assert.Equal(t, http.StatusConflict, call(t, admin, http.MethodPost,
		fmt.Sprintf("%s/tournaments/%s/bracket/seed", srv.URL, tournament.ID), nil, nil))
}
