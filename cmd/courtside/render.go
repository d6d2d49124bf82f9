package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
)

// renderBoard writes the overall leaderboard followed by each pool table.
func renderBoard(w io.Writer, snap live.Snapshot, rules scoring.Ruleset) error {
	if _, err := fmt.Fprintf(w, "\n== %s ==\n", snap.Tournament.Name); err != nil {
		return err
	}
	if err := renderTable(w, snap.Standings(rules), rules); err != nil {
		return err
	}
	for _, table := range snap.PoolTables(rules) {
		if _, err := fmt.Fprintf(w, "\n-- %s --\n", table.Pool.Name); err != nil {
			return err
		}
		if err := renderTable(w, table.Standings, rules); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(w io.Writer, rows []scoring.Standing, rules scoring.Ruleset) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	withPoints := rules.MatchPoints != nil

	header := "#\tTeam\tW\tL\tSets\tDiff\t"
	if withPoints {
		header = "#\tTeam\tPts\tW\tL\tSets\tDiff\t"
	}
	fmt.Fprintln(tw, header)
	for i, s := range rows {
		sets := fmt.Sprintf("%d-%d", s.SetsWon, s.SetsLost)
		if withPoints {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\t%+d\t\n", i+1, s.Name, s.MatchPoints, s.Wins, s.Losses, sets, s.PointsDiff)
		} else {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%+d\t\n", i+1, s.Name, s.Wins, s.Losses, sets, s.PointsDiff)
		}
	}
	return tw.Flush()
}
