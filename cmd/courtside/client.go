package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// apiClient talks to the public, unauthenticated part of the server.
type apiClient struct {
	base   *url.URL
	http   *http.Client
	dialer *websocket.Dialer
}

func newAPIClient(server string) (*apiClient, error) {
	base, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", server)
	}
	return &apiClient{
		base:   base,
		http:   &http.Client{Timeout: 15 * time.Second},
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			return fmt.Errorf("GET %s: %s: %s", path, resp.Status, body.Error)
		}
		return fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: failed to decode response: %w", path, err)
	}
	return nil
}

// Tournament resolves a tournament by id or slug.
func (c *apiClient) Tournament(ctx context.Context, ref string) (*volley.Tournament, error) {
	var t volley.Tournament
	if err := c.getJSON(ctx, "/tournaments/"+url.PathEscape(ref), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *apiClient) LoadSnapshot(ctx context.Context, tournamentID uuid.UUID) (live.Snapshot, error) {
	var snap live.Snapshot
	err := c.getJSON(ctx, "/tournaments/"+tournamentID.String()+"/snapshot", &snap)
	return snap, err
}

// JoinRoom opens the websocket carrying the tournament's change events.
func (c *apiClient) JoinRoom(ctx context.Context, tournamentID uuid.UUID) (*websocket.Conn, error) {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/ws/tournaments/" + tournamentID.String()

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}
	return conn, nil
}
