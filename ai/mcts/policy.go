package mcts

import (
	"fmt"

	"golang.org/x/exp/rand"
	"golang.org/x/net/context"

	"github.com/nelhage/chesstician/chess"
)

// PolicyFunc picks the next rollout move from the non-empty list
// moves. Returning false ends the rollout early.
type PolicyFunc func(ctx context.Context, b *chess.SimBoard, moves []chess.SimMove) (chess.SimMove, bool)

func intn(ctx context.Context, n int) int {
	if r := GetRand(ctx); r != nil {
		return r.Intn(n)
	}
	return rand.Intn(n)
}

// RandomPolicy picks uniformly among moves.
func RandomPolicy(ctx context.Context, b *chess.SimBoard, moves []chess.SimMove) (chess.SimMove, bool) {
	return moves[intn(ctx, len(moves))], true
}

// KingCapturePolicy takes the king whenever it can and otherwise
// plays like RandomPolicy.
func KingCapturePolicy(ctx context.Context, b *chess.SimBoard, moves []chess.SimMove) (chess.SimMove, bool) {
	for _, m := range moves {
		if b.At(m.To).Kind() == chess.King {
			return m, true
		}
	}
	return RandomPolicy(ctx, b, moves)
}

func ParsePolicy(name string) (PolicyFunc, error) {
	switch name {
	case "", "random":
		return RandomPolicy, nil
	case "king", "kingcapture":
		return KingCapturePolicy, nil
	}
	return nil, fmt.Errorf("unknown rollout policy: %q", name)
}
