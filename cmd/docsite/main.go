package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/napi-rs/docsite/cmd/docsite/commands"
	derrors "github.com/napi-rs/docsite/internal/foundation/errors"
	"github.com/napi-rs/docsite/internal/version"
)

func main() {
	var cli commands.CLI
	globals := &commands.Global{Out: os.Stdout}

	ctx := kong.Parse(&cli,
		kong.Name("docsite"),
		kong.Description("Serve a multi-locale documentation site with raw markdown access."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(globals, &cli),
	)

	if err := ctx.Run(); err != nil {
		derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
