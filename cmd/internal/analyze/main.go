package analyze

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nelhage/chesstician/ai"
	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/cli"
	"github.com/nelhage/chesstician/cmd/internal/opt"
	"github.com/nelhage/chesstician/fen"
	"github.com/nelhage/chesstician/searchlog"
)

type Command struct {
	/* Output options */
	fen        bool
	quiet      bool
	cpuProfile string
	chart      string

	/* Position selection */
	variation string

	eval bool

	/* Search log */
	logDB   string
	history int
	stats   bool

	opt opt.MCTS
}

func (*Command) Name() string     { return "analyze" }
func (*Command) Synopsis() string { return "Search a position given as FEN" }
func (*Command) Usage() string {
	return `analyze [options] [FEN]

Search a position with the MCTS engine and print the chosen move and
search statistics. With no FEN, analyzes the starting position. Use
-variation to play additional moves prior to analysis.

With -stats, prints how often each move was chosen from the position
in earlier searches recorded in the -log database. With -history N,
prints the N most recent searches from the -log
database instead of searching.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.BoolVar(&c.fen, "print-fen", false, "print the analyzed position as FEN")
	flags.BoolVar(&c.quiet, "quiet", false, "don't print board diagrams")
	flags.StringVar(&c.cpuProfile, "cpuprofile", "", "write CPU profile")
	flags.StringVar(&c.chart, "chart", "", "write an HTML chart of root move visits to PATH")
	flags.StringVar(&c.variation, "variation", "", "apply the listed moves before analyzing")
	flags.BoolVar(&c.eval, "evaluate", false, "only show static evaluation")
	flags.StringVar(&c.logDB, "log", "", "record the search in this sqlite database")
	flags.IntVar(&c.history, "history", 0, "print this many recent searches from -log")
	flags.BoolVar(&c.stats, "stats", false, "print the moves chosen from the position in past -log searches")

	c.opt.AddFlags(flags)
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.history > 0 {
		return c.printHistory()
	}

	p, err := c.position(strings.Join(flag.Args(), " "))
	if err != nil {
		log.Error().Err(err).Msg("analyze")
		return subcommands.ExitUsageError
	}
	if !c.quiet {
		cli.RenderBoard(nil, os.Stdout, p)
	}
	if c.fen {
		fmt.Println(fen.FormatFEN(p))
	}
	if c.stats {
		return c.printStats(p)
	}
	if c.eval {
		fmt.Printf("eval=%d\n", ai.Evaluate(p))
		return subcommands.ExitSuccess
	}

	cfg, err := c.opt.BuildConfig()
	if err != nil {
		log.Error().Err(err).Msg("analyze")
		return subcommands.ExitUsageError
	}
	if cfg.UseTimeLimit && cfg.Limit == 0 {
		cfg.Limit = time.Minute
	}

	if c.cpuProfile != "" {
		f, e := os.OpenFile(c.cpuProfile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if e != nil {
			log.Error().Err(e).Msg("open cpu-profile")
			return subcommands.ExitFailure
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	mc := mcts.NewMonteCarlo(cfg)
	res, err := mc.StartSearch(ctx, p)
	switch {
	case err == mcts.ErrNoMove:
		over, winner := p.GameOver()
		if over {
			fmt.Println(cli.Outcome(p, winner))
		} else {
			fmt.Println("no move found")
		}
		return subcommands.ExitSuccess
	case err != nil:
		log.Error().Err(err).Msg("search")
		return subcommands.ExitFailure
	}

	printResult(os.Stdout, &res)

	if c.chart != "" {
		if err := writeChart(c.chart, p, &res); err != nil {
			log.Error().Err(err).Msg("write chart")
		}
	}
	if c.logDB != "" {
		if err := record(c.logDB, p, mc.Config(), res); err != nil {
			log.Error().Err(err).Msg("record search")
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

func (c *Command) position(s string) (*chess.Position, error) {
	p := chess.New()
	if s != "" {
		var err error
		if p, err = fen.ParseFEN(s); err != nil {
			return nil, err
		}
	}
	for _, w := range strings.Fields(c.variation) {
		m, err := chess.ParseMove(w)
		if err != nil {
			return nil, fmt.Errorf("-variation: %w", err)
		}
		if p, err = p.Move(m); err != nil {
			return nil, fmt.Errorf("-variation: %s: %w", w, err)
		}
	}
	return p, nil
}

var printer = message.NewPrinter(language.English)

func printResult(w io.Writer, res *mcts.Result) {
	printer.Fprintf(w, "move=%s eval=%d playouts=%d nodes=%d elapsed=%s\n",
		res.Move, res.Eval, res.Playouts, res.TreeSize, res.Elapsed)
	printer.Fprintf(w, "visits=%d value=%.3f aborted=%v\n", res.Visits, res.Value, res.Aborted)
	var pv []string
	for _, m := range res.PV {
		pv = append(pv, m.String())
	}
	fmt.Fprintf(w, "pv: %s\n", strings.Join(pv, " "))
}

func record(db string, p *chess.Position, cfg mcts.MCTSConfig, res mcts.Result) error {
	repo, err := searchlog.Open(db)
	if err != nil {
		return err
	}
	defer repo.Close()
	return repo.InsertSearch(searchlog.NewSearch(p, cfg, res))
}

func (c *Command) printHistory() subcommands.ExitStatus {
	if c.logDB == "" {
		log.Error().Msg("-history requires -log")
		return subcommands.ExitUsageError
	}
	repo, err := searchlog.Open(c.logDB)
	if err != nil {
		log.Error().Err(err).Msg("open log")
		return subcommands.ExitFailure
	}
	defer repo.Close()
	searches, err := repo.Recent(c.history)
	if err != nil {
		log.Error().Err(err).Msg("query log")
		return subcommands.ExitFailure
	}
	for _, s := range searches {
		printer.Printf("%s %-6s playouts=%d value=%.3f %s\n",
			s.Timestamp.Format(time.RFC3339), s.Move, s.Playouts, s.Value, s.FEN)
	}
	return subcommands.ExitSuccess
}

func (c *Command) printStats(p *chess.Position) subcommands.ExitStatus {
	if c.logDB == "" {
		log.Error().Msg("-stats requires -log")
		return subcommands.ExitUsageError
	}
	repo, err := searchlog.Open(c.logDB)
	if err != nil {
		log.Error().Err(err).Msg("open log")
		return subcommands.ExitFailure
	}
	defer repo.Close()
	if err := writeStats(os.Stdout, repo, p); err != nil {
		log.Error().Err(err).Msg("query log")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeStats(w io.Writer, repo *searchlog.Repository, p *chess.Position) error {
	stats, err := repo.Stats(fen.FormatFEN(p))
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintln(w, "no recorded searches")
		return nil
	}
	for _, s := range stats {
		printer.Fprintf(w, "%-6s searches=%d playouts=%d value=%.3f\n",
			s.Move, s.Searches, s.Playouts, s.MeanValue)
	}
	return nil
}
