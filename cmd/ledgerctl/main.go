package main

import (
	"os"

	"ledger-backend/internal/cli"

	"github.com/alecthomas/kong"
)

var commands cli.Commands

func main() {
	ctx := kong.Parse(&commands,
		kong.Name("ledgerctl"),
		kong.Description("Daybook tools for the ledger database."),
		kong.UsageOnError(),
	)

	env, err := cli.Connect(&commands.Globals, os.Stdout)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(env)
	ctx.FatalIfErrorf(err)
}
