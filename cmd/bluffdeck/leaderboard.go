package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/bluffdeck/bluffdeck/internal/registry"
)

// LeaderboardCmd prints the lifetime standings straight from the database
type LeaderboardCmd struct {
	DB    string `default:"bluffdeck.db" help:"Path to the registry database"`
	Limit int    `default:"10" help:"Number of rows to show"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	gamesStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	rateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

func (c *LeaderboardCmd) Run() error {
	reg, err := registry.Open(c.DB, registry.DefaultMaxUsernameLen, quartz.NewReal(), log.New(os.Stderr))
	if err != nil {
		return err
	}
	defer reg.Close()

	standings, err := reg.Leaderboard(c.Limit)
	if err != nil {
		return err
	}
	if len(standings) == 0 {
		fmt.Println("No games recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("#"),
		headerStyle.Render("player"),
		headerStyle.Render("wins"),
		headerStyle.Render("games"),
		headerStyle.Render("win %"))

	for i, s := range standings {
		rate := float64(s.Wins) / float64(s.GamesPlayed) * 100
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			nameStyle.Render(s.Username),
			winsStyle.Render(fmt.Sprintf("%d", s.Wins)),
			gamesStyle.Render(fmt.Sprintf("%d", s.GamesPlayed)),
			rateStyle.Render(fmt.Sprintf("%.1f%%", rate)))
	}

	return w.Flush()
}
