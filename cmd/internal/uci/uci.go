package uci

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/nelhage/chesstician/cmd/internal/opt"
	"github.com/nelhage/chesstician/uci"
)

type Command struct {
	opt opt.MCTS
}

func (*Command) Name() string     { return "uci" }
func (*Command) Synopsis() string { return "Launch Chesstician in UCI mode" }
func (*Command) Usage() string {
	return `uci [flags]

Launch the engine in UCI mode, suitable for being driven by an external
GUI or controller. Flags set the defaults for every search; the time
and node limits of each "go" command override them.

`
}

func (c *Command) SetFlags(fs *flag.FlagSet) {
	c.opt.AddFlags(fs)
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if _, err := c.opt.BuildConfig(); err != nil {
		log.Error().Err(err).Msg("uci")
		return subcommands.ExitUsageError
	}
	engine := uci.NewEngine(os.Stdin, os.Stdout)
	engine.ConfigFactory = c.opt.MustBuildConfig
	if err := engine.Run(ctx); err != nil {
		log.Error().Err(err).Msg("uci")
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
