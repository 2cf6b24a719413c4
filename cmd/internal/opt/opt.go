package opt

import (
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/nelhage/chesstician/ai"
	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
)

// MCTS holds the search flags shared by every command that runs the
// engine.
type MCTS struct {
	Seed       int64
	Debug      int
	C          float64
	Limit      time.Duration
	Playouts   int
	Depth      int
	Promotions string
	Policy     string
	Weights    string
	DumpTree   string
	Threading  bool
	Conf       string
}

func (o *MCTS) AddFlags(flags *flag.FlagSet) {
	flags.Int64Var(&o.Seed, "seed", 0, "specify a seed")
	flags.IntVar(&o.Debug, "debug", 0, "debug level")
	flags.Float64Var(&o.C, "mcts.c", 1.0, "MCTS explore/exploit tradeoff constant")
	flags.DurationVar(&o.Limit, "limit", 0, "time limit per search")
	flags.IntVar(&o.Playouts, "playouts", 0, "stop each search after this many playouts")
	flags.IntVar(&o.Depth, "playout-depth", mcts.DefaultPlayoutDepth, "maximum rollout length, in plies")
	flags.StringVar(&o.Promotions, "promotions", "all", "promotions to search below the root (all, queen, queen+knight)")
	flags.StringVar(&o.Policy, "policy", "random", "rollout policy (random, kingcapture)")
	flags.StringVar(&o.Weights, "weights", "", "JSON-encoded evaluation weights")
	flags.StringVar(&o.DumpTree, "dump-tree", "", "dump search tree to PATH in graphviz format")
	flags.BoolVar(&o.Threading, "threading", false, "run searches off the caller and skip the per-search log")
	flags.StringVar(&o.Conf, "conf", "", "JSON-encoded MCTSConfig, applied over the other flags")
}

// BuildConfig turns the flags into a search configuration. A
// playout cap selects a fixed-playout search; otherwise the search is
// timed.
func (o *MCTS) BuildConfig() (mcts.MCTSConfig, error) {
	promo, err := chess.ParsePromotionMode(o.Promotions)
	if err != nil {
		return mcts.MCTSConfig{}, err
	}
	policy, err := mcts.ParsePolicy(o.Policy)
	if err != nil {
		return mcts.MCTSConfig{}, err
	}
	cfg := mcts.MCTSConfig{
		Debug:        o.Debug,
		C:            o.C,
		Seed:         o.Seed,
		PlayoutDepth: o.Depth,
		Promotions:   promo,
		UseThreading: o.Threading,
		DumpTree:     o.DumpTree,
		Policy:       policy,
	}
	if o.Playouts > 0 {
		cfg.LimitPlayouts = true
		cfg.MaxPlayouts = o.Playouts - 1
	}
	if o.Limit > 0 || o.Playouts <= 0 {
		cfg.UseTimeLimit = true
		cfg.Limit = o.Limit
	}
	if o.Weights != "" {
		w := ai.DefaultWeights
		if e := json.Unmarshal([]byte(o.Weights), &w); e != nil {
			return mcts.MCTSConfig{}, fmt.Errorf("parse weights: %w", e)
		}
		cfg.Evaluate = ai.MakeEvaluator(&w)
		cfg.SimEvaluate = ai.MakeSimEvaluator(&w)
	}
	if o.Conf != "" {
		if e := json.Unmarshal([]byte(o.Conf), &cfg); e != nil {
			return mcts.MCTSConfig{}, fmt.Errorf("parse conf: %w", e)
		}
	}
	return cfg, nil
}

// MustBuildConfig is BuildConfig for callers that have already
// validated the flags.
func (o *MCTS) MustBuildConfig() mcts.MCTSConfig {
	cfg, err := o.BuildConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}
