package selfplay

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/fen"
	"github.com/nelhage/chesstician/searchlog"
)

type Command struct {
	p1   string
	p2   string
	seed int64

	games  int
	cutoff int
	swap   bool

	openings string
	playouts int
	depth    int
	threads  int

	out     string
	summary string
	logDB   string
	verbose bool
}

func (*Command) Name() string     { return "selfplay" }
func (*Command) Synopsis() string { return "Play two MCTS configurations against each other and report results" }
func (*Command) Usage() string {
	return `selfplay [flags]

Each of -p1 and -p2 is a JSON-encoded MCTSConfig layered over the
default fixed-playout configuration.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.p1, "p1", "", "player1 MCTS configuration (JSON)")
	flags.StringVar(&c.p2, "p2", "", "player2 MCTS configuration (JSON)")

	flags.Int64Var(&c.seed, "seed", 0, "starting random seed")
	flags.IntVar(&c.games, "games", 10, "number of games to play per opening/color")
	flags.IntVar(&c.cutoff, "cutoff", 200, "cut games off after how many plies")
	flags.BoolVar(&c.swap, "swap", true, "swap colors each game")
	flags.StringVar(&c.openings, "openings", "", "File of openings, 1/line in FEN")
	flags.IntVar(&c.playouts, "playouts", 1000, "default playouts per move")
	flags.IntVar(&c.depth, "playout-depth", mcts.DefaultPlayoutDepth, "default rollout length")
	flags.IntVar(&c.threads, "threads", 4, "number of parallel games")
	flags.StringVar(&c.out, "out", "", "directory to write games to")
	flags.StringVar(&c.summary, "summary", "", "write summary JSON file")
	flags.StringVar(&c.logDB, "log", "", "record every search in this sqlite database")
	flags.BoolVar(&c.verbose, "v", false, "verbose output")
}

func readOpenings(path string) ([]*chess.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []*chess.Position
	r := bufio.NewScanner(f)
	for r.Scan() {
		line := strings.TrimSpace(r.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pos, err := fen.ParseFEN(line)
		if err != nil {
			return nil, fmt.Errorf("parse FEN: %q: %w", line, err)
		}
		out = append(out, pos)
	}
	return out, r.Err()
}

func (c *Command) playerConfig(conf string) (mcts.MCTSConfig, error) {
	cfg := mcts.MCTSConfig{
		LimitPlayouts: true,
		MaxPlayouts:   c.playouts - 1,
		PlayoutDepth:  c.depth,
	}
	if conf != "" {
		if err := json.Unmarshal([]byte(conf), &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.seed == 0 {
		c.seed = time.Now().Unix()
	}

	p1, err := c.playerConfig(c.p1)
	if err != nil {
		log.Error().Err(err).Msg("-p1")
		return subcommands.ExitUsageError
	}
	p2, err := c.playerConfig(c.p2)
	if err != nil {
		log.Error().Err(err).Msg("-p2")
		return subcommands.ExitUsageError
	}

	var openings []*chess.Position
	if c.openings != "" {
		openings, err = readOpenings(c.openings)
		if err != nil {
			log.Error().Err(err).Msg("-openings")
			return subcommands.ExitFailure
		}
	}
	if len(openings) == 0 {
		openings = []*chess.Position{chess.New()}
	}

	cfg := &Config{
		Games:   c.games,
		Threads: c.threads,
		Seed:    c.seed,
		Cutoff:  c.cutoff,
		Swap:    c.swap,
		Initial: openings,
		P1:      p1,
		P2:      p2,
	}

	st, err := Simulate(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("simulate")
		return subcommands.ExitFailure
	}
	if c.verbose {
		for _, r := range st.Games {
			log.Info().
				Int("opening", r.spec.oi).
				Int("game", r.spec.i).
				Int("plies", len(r.Moves)).
				Stringer("p1", r.spec.p1color).
				Stringer("winner", r.Winner).
				Msg("game")
		}
	}

	if c.out != "" {
		if c.summary == "" {
			c.summary = path.Join(c.out, "summary.json")
		}
		for _, r := range st.Games {
			if err := writeGame(c.out, &r); err != nil {
				log.Error().Err(err).Msg("write game")
			}
		}
	}
	if c.logDB != "" {
		if err := recordGames(c.logDB, st.Games); err != nil {
			log.Error().Err(err).Msg("record searches")
			return subcommands.ExitFailure
		}
	}
	if c.summary != "" {
		if err := c.writeSummary(c.summary, &st); err != nil {
			log.Error().Err(err).Msg("writing summary")
		}
	}

	log.Info().Msgf("done games=%d seed=%d ties=%d cutoff=%d white=%d black=%d",
		st.Count(), c.seed, st.Ties, st.Cutoff, st.White, st.Black)
	tw := tabwriter.NewWriter(os.Stderr, 2, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\twhite\tblack\tsum\n")
	fmt.Fprintf(tw, "p1\t%d\t%d\t%d\n", st.Players[0].WhiteWins, st.Players[0].BlackWins, st.Players[0].Wins)
	fmt.Fprintf(tw, "p2\t%d\t%d\t%d\n", st.Players[1].WhiteWins, st.Players[1].BlackWins, st.Players[1].Wins)
	fmt.Fprintf(tw, "sum\t%d\t%d\t%d\n",
		st.Players[0].WhiteWins+st.Players[1].WhiteWins,
		st.Players[0].BlackWins+st.Players[1].BlackWins,
		st.Players[0].Wins+st.Players[1].Wins,
	)
	tw.Flush()

	return subcommands.ExitSuccess
}

// writeGame writes the opening FEN followed by the game's moves.
func writeGame(d string, r *Result) error {
	if err := os.MkdirAll(d, 0755); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", fen.FormatFEN(r.Initial))
	for i, m := range r.Moves {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(m.String())
	}
	fmt.Fprintf(&b, "\nwinner: %s p1: %s\n", r.Winner, r.spec.p1color)
	p := path.Join(d, fmt.Sprintf("%d-%d.txt", r.spec.oi, r.spec.i))
	return os.WriteFile(p, []byte(b.String()), 0644)
}

type Summary struct {
	Cmdline []string
	Player1 string
	Player2 string
	Seed    int64
	Stats   *Stats
}

func (c *Command) writeSummary(path string, stats *Stats) error {
	summary := Summary{
		Cmdline: os.Args,
		Player1: c.p1,
		Player2: c.p2,
		Seed:    c.seed,
		Stats:   stats,
	}
	bs, err := json.MarshalIndent(&summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

// recordGames stores the searches of every game in one transaction.
func recordGames(db string, games []Result) error {
	repo, err := searchlog.Open(db)
	if err != nil {
		return err
	}
	defer repo.Close()
	var all []*searchlog.Search
	for _, g := range games {
		all = append(all, g.Searches...)
	}
	return repo.InsertSearches(all)
}
