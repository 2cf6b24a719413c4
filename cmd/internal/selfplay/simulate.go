package selfplay

import (
	"context"
	"fmt"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/searchlog"
)

type Config struct {
	Games   int
	Threads int
	Seed    int64
	Cutoff  int
	Swap    bool

	Initial []*chess.Position

	P1, P2 mcts.MCTSConfig
}

type Stats struct {
	Players [2]struct {
		Wins      int
		WhiteWins int
		BlackWins int
	}
	White, Black int
	Ties         int
	Cutoff       int

	Games []Result `json:"-"`
}

func (s *Stats) Count() int {
	return s.White + s.Black + s.Ties + s.Cutoff
}

type gameSpec struct {
	opening *chess.Position
	oi      int
	i       int
	seed    int64
	p1color chess.Color
}

type Result struct {
	spec     gameSpec
	Initial  *chess.Position
	Position *chess.Position
	Moves    []chess.Move
	Winner   chess.Color

	// Searches records the search behind each move.
	Searches []*searchlog.Search
}

// Simulate plays every game described by c and tallies the results.
// Games are independent, so a fixed Seed and playout-capped players
// give the same Stats regardless of Threads.
func Simulate(ctx context.Context, c *Config) (Stats, error) {
	specs := makeSpecs(c)
	results := make([]Result, len(specs))

	grp, ctx := errgroup.WithContext(ctx)
	threads := c.Threads
	if threads < 1 {
		threads = 1
	}
	grp.SetLimit(threads)
	for i := range specs {
		i := i
		grp.Go(func() error {
			r, err := playGame(ctx, c, specs[i])
			if err != nil {
				return fmt.Errorf("game %d-%d: %w", specs[i].oi, specs[i].i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, r := range results {
		st.add(r)
	}
	return st, nil
}

func makeSpecs(c *Config) []gameSpec {
	var specs []gameSpec
	r := rand.New(rand.NewSource(uint64(c.Seed)))
	for oi, pos := range c.Initial {
		n := c.Games
		if c.Swap {
			n *= 2
		}
		for g := 0; g < n; g++ {
			p1color := chess.White
			if c.Swap && g%2 == 1 {
				p1color = chess.Black
			}
			specs = append(specs, gameSpec{
				opening: pos,
				oi:      oi,
				i:       g,
				seed:    r.Int63(),
				p1color: p1color,
			})
		}
	}
	return specs
}

func (st *Stats) add(r Result) {
	switch {
	case r.Winner == chess.White:
		st.White++
	case r.Winner == chess.Black:
		st.Black++
	default:
		if over, _ := r.Position.GameOver(); over {
			st.Ties++
		} else {
			st.Cutoff++
		}
	}
	if r.Winner != chess.NoColor {
		pst := &st.Players[0]
		if r.Winner != r.spec.p1color {
			pst = &st.Players[1]
		}
		if r.Winner == chess.White {
			pst.WhiteWins++
		} else {
			pst.BlackWins++
		}
		pst.Wins++
	}
	st.Games = append(st.Games, r)
}

func playGame(ctx context.Context, c *Config, g gameSpec) (Result, error) {
	p1, p2 := c.P1, c.P2
	p1.Seed = g.seed
	p2.Seed = g.seed + 1
	p1.UseThreading = true
	p2.UseThreading = true
	white, black := mcts.NewMonteCarlo(p1), mcts.NewMonteCarlo(p2)
	if g.p1color != chess.White {
		white, black = black, white
	}

	p := g.opening
	var ms []chess.Move
	var searches []*searchlog.Search
	winner := chess.NoColor
	for i := 0; i < c.Cutoff; i++ {
		if over, w := p.GameOver(); over {
			winner = w
			break
		}
		player := white
		if p.ToMove() == chess.Black {
			player = black
		}
		res, err := player.StartSearch(ctx, p)
		if err != nil {
			return Result{}, err
		}
		searches = append(searches, searchlog.NewSearch(p, player.Config(), res))
		next, err := p.Move(res.Move)
		if err != nil {
			return Result{}, fmt.Errorf("illegal move %s: %w", res.Move, err)
		}
		p = next
		ms = append(ms, res.Move)
		if over, w := p.GameOver(); over {
			winner = w
			break
		}
	}
	return Result{
		spec:     g,
		Initial:  g.opening,
		Position: p,
		Moves:    ms,
		Winner:   winner,
		Searches: searches,
	}, nil
}
