// Command courtside follows a tournament from the terminal. It prints the
// leaderboard every time a score changes and reads commands from stdin:
//
//	switch <slug-or-id>
//	quit
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "scorekeeper server URL")
	tournament := flag.String("tournament", "", "tournament slug or id to follow on start")
	ruleset := flag.String("ruleset", scoring.RulesetLatest, "ruleset the server scores with (latest or classic)")
	verbose := flag.Bool("v", false, "log debug output")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*server, *tournament, *ruleset); err != nil {
		slog.Error("courtside stopped", "error", err)
		os.Exit(1)
	}
}

func run(server, initial, rulesetName string) error {
	rules, err := scoring.RulesetByName(rulesetName)
	if err != nil {
		return err
	}
	api, err := newAPIClient(server)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board := live.NewBoard(api, rules)
	var out sync.Mutex
	board.OnChange(func(snap live.Snapshot) {
		out.Lock()
		defer out.Unlock()
		if err := renderBoard(os.Stdout, snap, rules); err != nil {
			slog.Error("failed to print leaderboard", "error", err)
		}
	})

	f := newFollower(api, board)
	defer f.Close()
	sw := &switcher{follower: f}
	defer sw.wait()

	if initial != "" {
		sw.start(ctx, initial)
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			sw.cancel()
			return nil
		case line, ok := <-lines:
			if !ok {
				sw.cancel()
				return nil
			}
			cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
			switch cmd {
			case "":
			case "switch":
				if arg = strings.TrimSpace(arg); arg == "" {
					fmt.Fprintln(os.Stderr, "usage: switch <slug-or-id>")
					continue
				}
				sw.start(ctx, arg)
			case "quit", "exit":
				sw.cancel()
				return nil
			default:
				fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
			}
		}
	}
}

// switcher runs one Follow at a time. Starting a new one cancels the
// previous and waits for it to return.
type switcher struct {
	follower *follower
	stop     context.CancelFunc
	done     chan struct{}
}

func (s *switcher) start(ctx context.Context, ref string) {
	s.cancel()
	s.wait()

	switchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.stop, s.done = cancel, done
	go func() {
		defer close(done)
		if err := s.follower.Follow(switchCtx, ref); err != nil && !isCancelled(err) {
			slog.Error("failed to follow tournament", "ref", ref, "error", err)
		}
	}()
}

func (s *switcher) cancel() {
	if s.stop != nil {
		s.stop()
	}
}

func (s *switcher) wait() {
	if s.done != nil {
		<-s.done
	}
}
