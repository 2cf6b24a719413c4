package play

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/nelhage/chesstician/ai"
	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/cli"
	"github.com/nelhage/chesstician/fen"
)

type Command struct {
	white string
	black string
	start string
	debug int
	limit time.Duration
	out   string

	unicode bool
}

func (*Command) Name() string     { return "play" }
func (*Command) Synopsis() string { return "Play chess from the command line" }
func (*Command) Usage() string {
	return `play [flags]

Play chess on the command-line, against a human or AI. Players are
"human", "rand[:SEED]" or "mcts[:DURATION]". Humans enter moves in long
algebraic notation (e2e4, e7e8q) or "resign".
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.white, "white", "human", "white player")
	flags.StringVar(&c.black, "black", "human", "black player")
	flags.StringVar(&c.start, "fen", "", "start from this FEN position")
	flags.IntVar(&c.debug, "debug", 0, "debug level")
	flags.DurationVar(&c.limit, "limit", 10*time.Second, "ai time limit")
	flags.StringVar(&c.out, "out", "", "write the game's moves and final FEN to file")

	flags.BoolVar(&c.unicode, "unicode", false, "render board with utf8 glyphs")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in := bufio.NewReader(os.Stdin)
	white, err := c.parsePlayer(in, c.white)
	if err != nil {
		log.Error().Err(err).Msg("-white")
		return subcommands.ExitUsageError
	}
	black, err := c.parsePlayer(in, c.black)
	if err != nil {
		log.Error().Err(err).Msg("-black")
		return subcommands.ExitUsageError
	}
	st := &cli.CLI{
		Out:    os.Stdout,
		White:  white,
		Black:  black,
		Glyphs: glyphs(c.unicode),
	}
	if c.start != "" {
		st.Start, err = fen.ParseFEN(c.start)
		if err != nil {
			log.Error().Err(err).Msg("-fen")
			return subcommands.ExitUsageError
		}
	}
	final := st.Play(ctx)
	if c.out != "" {
		var b strings.Builder
		for i, m := range st.Moves() {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(m.String())
		}
		fmt.Fprintf(&b, "\n%s\n", fen.FormatFEN(final))
		if err := os.WriteFile(c.out, []byte(b.String()), 0644); err != nil {
			log.Error().Err(err).Msg("-out")
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}

func glyphs(unicode bool) *cli.Glyphs {
	if unicode {
		return &cli.UnicodeGlyphs
	}
	return &cli.DefaultGlyphs
}

type aiWrapper struct {
	limit time.Duration
	p     ai.ChessPlayer
}

func (a *aiWrapper) GetMove(ctx context.Context, p *chess.Position) chess.Move {
	ctx, cancel := context.WithTimeout(ctx, a.limit)
	defer cancel()
	return a.p.GetMove(ctx, p)
}

func (c *Command) parsePlayer(in *bufio.Reader, s string) (cli.Player, error) {
	if s == "human" {
		return cli.NewCLIPlayer(os.Stdout, in), nil
	}
	if strings.HasPrefix(s, "rand") {
		var seed int64
		if len(s) > len("rand") {
			i, err := strconv.Atoi(strings.TrimPrefix(s, "rand:"))
			if err != nil {
				return nil, err
			}
			seed = int64(i)
		}
		return &aiWrapper{c.limit, ai.NewRandom(seed)}, nil
	}
	if strings.HasPrefix(s, "mcts") {
		var limit = c.limit
		if len(s) > len("mcts") {
			var err error
			limit, err = time.ParseDuration(strings.TrimPrefix(s, "mcts:"))
			if err != nil {
				return nil, err
			}
		}
		p := mcts.NewMonteCarlo(mcts.MCTSConfig{
			UseTimeLimit: true,
			Limit:        limit,
			PlayoutDepth: mcts.DefaultPlayoutDepth,
			Debug:        c.debug,
		})
		return &aiWrapper{limit + time.Second, p}, nil
	}
	return nil, fmt.Errorf("unparseable player: %s", s)
}
