package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version       kong.VersionFlag `short:"v" help:"Show version"`
	Play          PlayCmd          `cmd:"" help:"Play a full single-player game"`
	Tutorial      TutorialCmd      `cmd:"" help:"Play a short introductory game"`
	Duel          DuelCmd          `cmd:"" help:"Play a local two-player duel"`
	Serve         ServeCmd         `cmd:"" help:"Run the online duel relay server"`
	Join          JoinCmd          `cmd:"" help:"Join an online duel through a relay"`
	Decks         DecksCmd         `cmd:"" help:"Manage saved decks"`
	Signup        SignupCmd        `cmd:"" help:"Create an account"`
	Login         LoginCmd         `cmd:"" help:"Log in to an account"`
	ResetPassword ResetPasswordCmd `cmd:"reset-password" help:"Request a password reset"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("mathdeck"),
		kong.Description("Card-based mental arithmetic game"),
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
