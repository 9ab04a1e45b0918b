package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Serve       ServeCmd         `cmd:"" help:"Run the bluffdeck game server"`
	Leaderboard LeaderboardCmd   `cmd:"" help:"Show the lifetime standings from a registry database"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bluffdeck"),
		kong.Description("Multiplayer bluffing card game server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
