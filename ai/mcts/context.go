package mcts

import (
	"golang.org/x/exp/rand"
	"golang.org/x/net/context"
)

type key int

var randKey key

func WithRand(ctx context.Context, r *rand.Rand) context.Context {
	return context.WithValue(ctx, randKey, r)
}

// GetRand returns the search's random source, or nil if ctx does not
// carry one.
func GetRand(ctx context.Context) *rand.Rand {
	r, _ := ctx.Value(randKey).(*rand.Rand)
	return r
}
