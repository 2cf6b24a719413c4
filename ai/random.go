package ai

import (
	"golang.org/x/exp/rand"
	"golang.org/x/net/context"

	"github.com/nelhage/chesstician/chess"
)

type RandomAI struct {
	r *rand.Rand
}

// GetMove returns a uniformly random legal move, or chess.NullMove if
// p has none.
func (r *RandomAI) GetMove(ctx context.Context, p *chess.Position) chess.Move {
	moves := p.AllMoves(nil)
	if len(moves) == 0 {
		return chess.NullMove
	}
	return moves[r.r.Intn(len(moves))]
}

func NewRandom(seed int64) *RandomAI {
	return &RandomAI{
		r: rand.New(rand.NewSource(uint64(seed))),
	}
}
