package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/gorilla/websocket"
)

// follower keeps one websocket room joined and feeds its events to the
// board. Switching tournaments closes the previous room first.
type follower struct {
	api   *apiClient
	board *live.Board

	mu   sync.Mutex
	conn *websocket.Conn
}

func newFollower(api *apiClient, board *live.Board) *follower {
	return &follower{api: api, board: board}
}

// Follow resolves ref and makes it the board's active tournament. The
// room is joined before the snapshot is requested so no committed change
// falls between the two.
func (f *follower) Follow(ctx context.Context, ref string) error {
	t, err := f.api.Tournament(ctx, ref)
	if err != nil {
		return err
	}

	conn, err := f.api.JoinRoom(ctx, t.ID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	if f.conn != nil {
		f.conn.Close()
	}
	f.conn = conn
	f.mu.Unlock()
	go f.read(conn)

	slog.Info("following tournament", "name", t.Name, "slug", t.Slug)
	return f.board.Switch(ctx, t.ID)
}

func (f *follower) read(conn *websocket.Conn) {
	for {
		var e live.Event
		if err := conn.ReadJSON(&e); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("room connection lost", "error", err)
			}
			return
		}
		if !f.board.Handle(e) {
			slog.Debug("dropped event for inactive tournament", "tournament_id", e.TournamentID)
		}
	}
}

func (f *follower) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
}

// isCancelled reports whether err only says a switch was abandoned.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, live.ErrSuperseded)
}
