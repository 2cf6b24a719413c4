package uci

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/context"

	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/fen"
)

// DefaultMoveTime is used when a go command sets no limit and the
// configured search has none either.
const DefaultMoveTime = time.Second

type Engine struct {
	ConfigFactory func() mcts.MCTSConfig

	in *bufio.Reader

	outMu sync.Mutex
	out   io.Writer

	pos *chess.Position

	mu     sync.Mutex
	search *search
}

type search struct {
	mc       *mcts.MonteCarloAI
	cancel   context.CancelFunc
	infinite bool
	done     chan struct{}
}

func NewEngine(in io.Reader, out io.Writer) *Engine {
	return &Engine{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (e *Engine) printf(format string, args ...interface{}) {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	fmt.Fprintf(e.out, format, args...)
}

// Run reads commands until quit or end of input. A search still
// running at end of input is allowed to finish unless it is infinite.
func (e *Engine) Run(ctx context.Context) error {
	for {
		line, err := e.in.ReadString('\n')
		if err != nil && err != io.EOF {
			e.stop()
			return err
		}
		eof := err == io.EOF
		if words := strings.Fields(line); len(words) > 0 {
			quit, err := e.handle(ctx, words)
			if err != nil {
				e.stop()
				return err
			}
			if quit {
				e.stop()
				return nil
			}
		}
		if eof {
			e.finish()
			return nil
		}
	}
}

func (e *Engine) handle(ctx context.Context, words []string) (bool, error) {
	var err error
	switch words[0] {
	case "uci":
		e.printf("id name Chesstician\n")
		e.printf("id author Chesstician authors\n")
		e.printf("uciok\n")
	case "isready":
		e.printf("readyok\n")
	case "quit":
		return true, nil
	case "ucinewgame":
		e.stop()
		e.pos = nil
	case "position":
		e.stop()
		e.pos, err = parsePosition(words)
		if err != nil {
			return false, fmt.Errorf("error parsing position: %w", err)
		}
	case "go":
		if err := e.analyze(ctx, words); err != nil {
			log.Error().Err(err).Msg("error in go")
		}
	case "stop":
		e.stop()
	case "debug", "setoption", "register", "ponderhit":
	default:
		log.Warn().Str("line", strings.Join(words, " ")).Msg("unknown command")
	}
	return false, nil
}

func parsePosition(words []string) (*chess.Position, error) {
	var pos *chess.Position
	words = words[1:]
	if len(words) == 0 {
		return nil, errors.New("not enough arguments")
	}
	switch words[0] {
	case "startpos":
		words = words[1:]
		pos = chess.New()
	case "fen":
		words = words[1:]
		n := 0
		for n < len(words) && words[n] != "moves" {
			n++
		}
		var err error
		pos, err = fen.ParseFEN(strings.Join(words[:n], " "))
		if err != nil {
			return nil, fmt.Errorf("Parse FEN: %w", err)
		}
		words = words[n:]
	default:
		return nil, fmt.Errorf("Unknown initial position: %q", words[0])
	}
	if len(words) == 0 {
		return pos, nil
	}
	if words[0] != "moves" {
		return nil, errors.New("position: expected `moves'")
	}
	for _, w := range words[1:] {
		move, err := chess.ParseMove(w)
		if err != nil {
			return nil, fmt.Errorf("Parse move %q: %w", w, err)
		}
		pos, err = pos.Move(move)
		if err != nil {
			return nil, fmt.Errorf("Move %q: %w", w, err)
		}
	}
	return pos, nil
}

type goParams struct {
	moveTime time.Duration
	nodes    int
	infinite bool
	clock    TimeControl
}

func parseGo(words []string) (goParams, error) {
	var g goParams
	words = words[1:]
	for i := 0; i < len(words); i++ {
		w := words[i]
		if w == "infinite" {
			g.infinite = true
			continue
		}
		if i+1 >= len(words) {
			return g, fmt.Errorf("go: %s: missing argument", w)
		}
		n, err := strconv.ParseInt(words[i+1], 10, 64)
		if err != nil || n < 0 {
			return g, fmt.Errorf("go: %s: bad value %q", w, words[i+1])
		}
		i++
		ms := time.Duration(n) * time.Millisecond
		switch w {
		case "movetime":
			g.moveTime = ms
		case "nodes":
			g.nodes = int(n)
		case "wtime":
			g.clock.White = ms
		case "btime":
			g.clock.Black = ms
		case "winc":
			g.clock.WInc = ms
		case "binc":
			g.clock.BInc = ms
		case "depth", "movestogo", "mate":
		default:
			return g, fmt.Errorf("go: unknown parameter %q", w)
		}
	}
	return g, nil
}

func (e *Engine) buildConfig(g goParams, toMove chess.Color) mcts.MCTSConfig {
	var cfg mcts.MCTSConfig
	if e.ConfigFactory != nil {
		cfg = e.ConfigFactory()
	} else {
		cfg = mcts.MCTSConfig{PlayoutDepth: mcts.DefaultPlayoutDepth}
	}
	cfg.UseThreading = true
	cfg.UseTimeLimit = true

	game, inc := g.clock.White, g.clock.WInc
	if toMove == chess.Black {
		game, inc = g.clock.Black, g.clock.BInc
	}
	budget := calcBudget(g.moveTime, game, inc)

	switch {
	case g.infinite:
		cfg.Limit = 0
		cfg.LimitPlayouts = false
	case g.nodes > 0 || budget > 0:
		if g.nodes > 0 {
			cfg.LimitPlayouts = true
			cfg.MaxPlayouts = g.nodes - 1
		} else {
			cfg.LimitPlayouts = false
		}
		cfg.Limit = budget
	case cfg.Limit == 0 && !cfg.LimitPlayouts:
		cfg.Limit = DefaultMoveTime
	}
	return cfg
}

func (e *Engine) analyze(ctx context.Context, words []string) error {
	if e.pos == nil {
		return errors.New("No position provided")
	}
	g, err := parseGo(words)
	if err != nil {
		return err
	}
	e.stop()

	cfg := e.buildConfig(g, e.pos.ToMove())
	mc := mcts.NewMonteCarlo(cfg)
	ctx, cancel := context.WithCancel(ctx)
	s := &search{
		mc:       mc,
		cancel:   cancel,
		infinite: g.infinite,
		done:     make(chan struct{}),
	}
	e.mu.Lock()
	e.search = s
	e.mu.Unlock()

	pos := e.pos
	go func() {
		defer close(s.done)
		defer cancel()
		res, err := mc.StartSearch(ctx, pos)
		e.report(pos, res, err)
	}()
	return nil
}

func (e *Engine) report(pos *chess.Position, res mcts.Result, err error) {
	move := res.Move
	if err != nil {
		if !errors.Is(err, mcts.ErrNoMove) {
			log.Error().Err(err).Msg("search failed")
		}
		// A stop can land before the first playout; fall back to any
		// legal move.
		if ms := pos.AllMoves(nil); len(ms) > 0 {
			move = ms[0]
		}
	}
	var pvs strings.Builder
	for _, m := range res.PV {
		pvs.WriteString(" ")
		pvs.WriteString(m.String())
	}
	if res.Found {
		e.printf("info time %s nodes %d score cp %d pv%s\n",
			formatTime(res.Elapsed),
			res.Playouts,
			clampScore(res.Eval),
			pvs.String(),
		)
	}
	e.printf("bestmove %s\n", move)
}

const maxScore = 32000

func clampScore(v int64) int64 {
	if v > maxScore {
		return maxScore
	}
	if v < -maxScore {
		return -maxScore
	}
	return v
}

func (e *Engine) current() *search {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search
}

// stop ends any running search and waits for its bestmove.
func (e *Engine) stop() {
	s := e.current()
	if s == nil {
		return
	}
	s.mc.EndSearch()
	s.cancel()
	<-s.done
}

func (e *Engine) finish() {
	s := e.current()
	if s == nil {
		return
	}
	if s.infinite {
		e.stop()
		return
	}
	<-s.done
}
