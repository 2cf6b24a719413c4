package mcts

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/net/context"

	"github.com/nelhage/chesstician/ai"
	"github.com/nelhage/chesstician/chess"
)

const DefaultPlayoutDepth = 50

type MCTSConfig struct {
	Debug int
	C     float64
	Seed  int64

	// UseTimeLimit makes the search honor EndSearch. With a positive
	// Limit the search also ends itself after that long.
	UseTimeLimit bool
	Limit        time.Duration

	// LimitPlayouts stops the search once the playout count exceeds
	// MaxPlayouts, so MaxPlayouts+1 playouts run.
	LimitPlayouts bool
	MaxPlayouts   int

	// PlayoutDepth bounds the number of rollout moves per playout.
	PlayoutDepth int
	Promotions   chess.PromotionMode

	// UseThreading marks a search run off the caller's goroutine, and
	// suppresses the per-search summary log.
	UseThreading bool

	DumpTree string

	Policy           PolicyFunc           `json:"-"`
	Evaluate         ai.EvaluationFunc    `json:"-"`
	SimEvaluate      ai.SimEvaluationFunc `json:"-"`
	OnSearchComplete func(Result)         `json:"-"`
}

var ErrBadConfig = errors.New("bad search configuration")

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("mcts: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrBadConfig
}

func (cfg *MCTSConfig) Validate() error {
	if cfg.PlayoutDepth <= 0 {
		return &ConfigError{"PlayoutDepth", "must be positive"}
	}
	if cfg.C < 0 {
		return &ConfigError{"C", "must not be negative"}
	}
	if cfg.Limit < 0 {
		return &ConfigError{"Limit", "must not be negative"}
	}
	if cfg.LimitPlayouts && cfg.MaxPlayouts < 0 {
		return &ConfigError{"MaxPlayouts", "must not be negative"}
	}
	if !cfg.UseTimeLimit && !cfg.LimitPlayouts {
		return &ConfigError{"UseTimeLimit", "one of UseTimeLimit or LimitPlayouts is required"}
	}
	return nil
}

type State int32

const (
	Idle State = iota
	Running
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Result describes a finished search. Eval is the static evaluation
// of the chosen move's position, in centipawns for the side that
// played it. Value is the chosen child's mean playout value.
type Result struct {
	Move  chess.Move
	Found bool

	Playouts int
	Elapsed  time.Duration
	TreeSize int
	Aborted  bool

	Eval   int64
	Visits int
	Value  float64
	PV     []chess.Move

	// Children holds the statistics of every expanded root child, in
	// expansion order.
	Children []MoveStats
}

type MoveStats struct {
	Move   chess.Move
	Visits int
	Value  float64
}

var (
	ErrNoMove  = errors.New("mcts: search found no move")
	ErrRunning = errors.New("mcts: search already running")
)

type MonteCarloAI struct {
	cfg MCTSConfig
	gen chess.MoveGenerator
	r   *rand.Rand

	state atomic.Int32

	mu sync.Mutex
	// abort belongs to the current (or last) search; each search
	// gets a fresh one so a late stop cannot reach the next search.
	abort  *atomic.Bool
	result Result

	buf []chess.SimMove
}

func NewMonteCarlo(cfg MCTSConfig) *MonteCarloAI {
	mc := &MonteCarloAI{
		cfg:   cfg,
		abort: new(atomic.Bool),
	}
	if mc.cfg.C == 0 {
		mc.cfg.C = 1
	}
	if mc.cfg.Seed == 0 {
		mc.cfg.Seed = time.Now().UnixNano()
	}
	if mc.cfg.Policy == nil {
		mc.cfg.Policy = RandomPolicy
	}
	if mc.cfg.Evaluate == nil {
		mc.cfg.Evaluate = ai.DefaultEvaluate
	}
	if mc.cfg.SimEvaluate == nil {
		mc.cfg.SimEvaluate = ai.DefaultSimEvaluate
	}
	mc.gen.Promotions = mc.cfg.Promotions
	mc.r = rand.New(rand.NewSource(uint64(mc.cfg.Seed)))
	mc.result.Move = chess.NullMove
	return mc
}

func (mc *MonteCarloAI) Config() MCTSConfig {
	return mc.cfg
}

func (mc *MonteCarloAI) State() State {
	return State(mc.state.Load())
}

// Result returns the outcome of the most recent search.
func (mc *MonteCarloAI) Result() Result {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.result
}

// BestMove returns the move chosen by the most recent search, or
// chess.NullMove.
func (mc *MonteCarloAI) BestMove() chess.Move {
	return mc.Result().Move
}

// EndSearch asks a running search to stop after its current
// iteration. It is ignored unless UseTimeLimit is set.
func (mc *MonteCarloAI) EndSearch() {
	mc.endSearch(mc.token())
}

func (mc *MonteCarloAI) endSearch(abort *atomic.Bool) {
	if !mc.cfg.UseTimeLimit {
		return
	}
	abort.Store(true)
}

func (mc *MonteCarloAI) token() *atomic.Bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.abort
}

func (mc *MonteCarloAI) GetMove(ctx context.Context, p *chess.Position) chess.Move {
	res, e := mc.StartSearch(ctx, p)
	if e != nil {
		log.Error().Err(e).Msg("mcts search failed")
		return chess.NullMove
	}
	return res.Move
}

// StartSearch runs a search from p on the calling goroutine and
// returns once it is aborted or reaches its playout cap. Cancelling
// ctx is equivalent to calling EndSearch.
func (mc *MonteCarloAI) StartSearch(ctx context.Context, p *chess.Position) (Result, error) {
	if e := mc.cfg.Validate(); e != nil {
		return Result{Move: chess.NullMove}, e
	}
	for {
		s := mc.state.Load()
		if State(s) == Running {
			return Result{Move: chess.NullMove}, ErrRunning
		}
		if mc.state.CompareAndSwap(s, int32(Running)) {
			break
		}
	}
	abort := new(atomic.Bool)
	mc.mu.Lock()
	mc.abort = abort
	mc.result = Result{Move: chess.NullMove}
	mc.mu.Unlock()
	stop := func() { mc.endSearch(abort) }

	start := time.Now()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
	if mc.cfg.UseTimeLimit && mc.cfg.Limit > 0 {
		timer := time.AfterFunc(mc.cfg.Limit, stop)
		defer timer.Stop()
	}

	t := newTree(p.Clone(), &mc.gen)
	playouts := 0
	if !t.node(rootID).terminal() {
		playouts = mc.run(WithRand(ctx, mc.r), t, start)
	}

	res := Result{
		Move:     chess.NullMove,
		Playouts: playouts,
		Elapsed:  time.Since(start),
		TreeSize: len(t.nodes),
		Aborted:  abort.Load(),
	}
	for _, c := range t.node(rootID).children {
		n := t.node(c)
		res.Children = append(res.Children, MoveStats{n.move, n.visits, n.mean()})
	}
	var err error
	if best := t.mostVisited(rootID); best != noNode {
		bn := t.node(best)
		res.Move = bn.move
		res.Found = true
		res.Visits = bn.visits
		res.Value = bn.mean()
		res.Eval = -mc.cfg.Evaluate(bn.position)
		res.PV = t.pv(visitThreshold)
	} else {
		err = ErrNoMove
	}

	mc.report(t, &res)

	mc.mu.Lock()
	mc.result = res
	mc.mu.Unlock()
	if res.Aborted {
		mc.state.Store(int32(Aborted))
	} else {
		mc.state.Store(int32(Completed))
	}
	if cb := mc.cfg.OnSearchComplete; cb != nil {
		cb(res)
	}
	return res, err
}

func (mc *MonteCarloAI) run(ctx context.Context, t *tree, start time.Time) int {
	abort := mc.token()
	playouts := 0
	next := start.Add(10 * time.Second)
	for !abort.Load() {
		if mc.cfg.LimitPlayouts && playouts > mc.cfg.MaxPlayouts {
			break
		}
		leaf := t.descend(mc.cfg.C)
		leaf = t.expand(leaf)
		if mc.cfg.Debug > 3 {
			mc.logPath(t, leaf)
		}
		value := mc.playout(ctx, t.node(leaf))
		t.backpropagate(leaf, value)
		playouts++

		if mc.cfg.Debug > 0 && time.Now().After(next) {
			mc.printpv(t)
			next = time.Now().Add(10 * time.Second)
		}
	}
	return playouts
}

// playout estimates the value of n for the player who moved into it.
func (mc *MonteCarloAI) playout(ctx context.Context, n *node) float64 {
	evaluateFor := n.position.ToMove().Flip()
	if n.terminal() {
		return 1
	}
	return mc.rollout(ctx, n.position.Lightweight(), n.position.ToMove(), evaluateFor)
}

func (mc *MonteCarloAI) rollout(ctx context.Context, sim *chess.SimBoard, toMove, evaluateFor chess.Color) float64 {
	for i := 0; i < mc.cfg.PlayoutDepth; i++ {
		mc.buf = sim.Moves(toMove, mc.buf[:0])
		if len(mc.buf) == 0 {
			break
		}
		m, ok := mc.cfg.Policy(ctx, sim, mc.buf)
		if !ok {
			break
		}
		if captured := sim.Apply(m); captured.Kind() == chess.King {
			if captured.Color() == evaluateFor {
				return 0
			}
			return 1
		}
		toMove = toMove.Flip()
	}
	return mc.cfg.SimEvaluate(sim, evaluateFor)
}

const visitThreshold = 10

func (mc *MonteCarloAI) report(t *tree, res *Result) {
	if mc.cfg.Debug > 2 {
		for _, c := range t.node(rootID).children {
			n := t.node(c)
			log.Info().
				Str("move", n.move.String()).
				Int("n", n.visits).
				Float64("v", n.mean()).
				Msg("[mcts] root child")
		}
	}
	if mc.cfg.DumpTree != "" {
		mc.dumpTree(t)
	}
	if mc.cfg.UseThreading {
		return
	}
	log.Info().
		Str("move", res.Move.String()).
		Int("playouts", res.Playouts).
		Dur("elapsed", res.Elapsed).
		Int64("eval", res.Eval).
		Int("visits", res.Visits).
		Float64("value", res.Value).
		Int("nodes", res.TreeSize).
		Bool("aborted", res.Aborted).
		Msg("[mcts] search complete")
}

func (mc *MonteCarloAI) logPath(t *tree, id nodeID) {
	var s []string
	for id != rootID {
		n := t.node(id)
		s = append(s, n.move.String())
		id = n.parent
	}
	log.Info().Msgf("evaluate: [%s]", strings.Join(s, "<-"))
}

func (mc *MonteCarloAI) printpv(t *tree) {
	pv := t.pv(visitThreshold)
	if len(pv) == 0 {
		return
	}
	first := t.node(t.mostVisited(rootID))
	var ms []string
	for _, m := range pv {
		ms = append(ms, m.String())
	}
	log.Info().Msgf("pv=[%s] n=%d v=%.3f",
		strings.Join(ms, " "), first.visits, first.mean())
}
