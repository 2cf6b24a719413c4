package mcts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/fen"
)

const foolsMate = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"

func TestExpandReverseOrder(t *testing.T) {
	gen := &chess.MoveGenerator{}
	tr := newTree(chess.New(), gen)
	moves := gen.Generate(chess.New(), true)
	require.Len(t, tr.node(rootID).moves, 20)

	for i := range moves {
		c := tr.expand(rootID)
		require.NotEqual(t, rootID, c)
		assert.Equal(t, moves[len(moves)-1-i], tr.node(c).move, "child %d", i)
		assert.Equal(t, rootID, tr.node(c).parent)

		child := tr.node(c)
		assert.Equal(t, child.position.AllMoves(nil), child.moves)
		assert.Equal(t, chess.Black, child.position.ToMove())
	}
	assert.True(t, tr.node(rootID).fullyExpanded())
	assert.Len(t, tr.node(rootID).children, 20)

	// Exhausted: expanding again is a no-op.
	assert.Equal(t, rootID, tr.expand(rootID))
	assert.Len(t, tr.nodes, 21)
}

func TestExpandTerminal(t *testing.T) {
	tr := newTree(fen.MustParse(foolsMate), &chess.MoveGenerator{})
	root := tr.node(rootID)
	assert.True(t, root.terminal())
	assert.True(t, root.fullyExpanded())
	assert.Equal(t, rootID, tr.expand(rootID))
	assert.Len(t, tr.nodes, 1)
	assert.Equal(t, rootID, tr.descend(1))
}

func TestNonRootPromotions(t *testing.T) {
	p := fen.MustParse("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	tr := newTree(p, &chess.MoveGenerator{Promotions: chess.PromoteQueen})
	promos := 0
	for _, m := range tr.node(rootID).moves {
		if m.Promotion != 0 {
			promos++
		}
	}
	assert.Equal(t, 4, promos)

	// Black replies, and white's next promotion is searched as a
	// queen only.
	p = fen.MustParse("8/P7/7k/8/8/8/8/K7 b - - 0 1")
	tr = newTree(p, &chess.MoveGenerator{Promotions: chess.PromoteQueen})
	for !tr.node(rootID).fullyExpanded() {
		c := tr.expand(rootID)
		promos = 0
		for _, m := range tr.node(c).moves {
			if m.Promotion != 0 {
				promos++
				assert.Equal(t, chess.Queen, m.Promotion)
			}
		}
		assert.Equal(t, 1, promos, tr.node(c).move.String())
	}
}

func TestUnvisitedChildWins(t *testing.T) {
	tr := newTree(chess.New(), &chess.MoveGenerator{})
	a := tr.expand(rootID)
	b := tr.expand(rootID)
	c := tr.expand(rootID)
	tr.expand(rootID)
	tr.backpropagate(a, 1)
	tr.backpropagate(a, 1)
	tr.backpropagate(c, 1)

	assert.True(t, math.IsInf(tr.ucb(b, tr.node(rootID).visits, 1), 1))
	// Two children are unvisited; the first one found is chosen.
	assert.Equal(t, b, tr.bestChild(rootID, 1))
}

func TestUCBTiesPickFirst(t *testing.T) {
	tr := newTree(chess.New(), &chess.MoveGenerator{})
	a := tr.expand(rootID)
	b := tr.expand(rootID)
	tr.backpropagate(a, 0.5)
	tr.backpropagate(b, 0.5)
	assert.Equal(t, a, tr.bestChild(rootID, 1))

	tr.backpropagate(b, 1)
	assert.Equal(t, 2, tr.node(b).visits)
	assert.Greater(t, tr.node(b).mean(), tr.node(a).mean())
}

func TestUCBScore(t *testing.T) {
	tr := newTree(chess.New(), &chess.MoveGenerator{})
	a := tr.expand(rootID)
	tr.backpropagate(a, 1)
	tr.backpropagate(a, 0)
	tr.backpropagate(a, 1)
	tr.backpropagate(a, 1)
	want := 0.75 + 2*math.Sqrt(math.Log(16)/4)
	assert.InDelta(t, want, tr.ucb(a, 16, 2), 1e-12)
}

func TestBackpropagateAlternates(t *testing.T) {
	tr := newTree(chess.New(), &chess.MoveGenerator{})
	a := tr.expand(rootID)
	b := tr.expand(a)
	require.Equal(t, a, tr.node(b).parent)

	tr.backpropagate(b, 0.8)
	assert.InDelta(t, 0.8, tr.node(b).value, 1e-12)
	assert.InDelta(t, 0.2, tr.node(a).value, 1e-12)
	assert.InDelta(t, 0.8, tr.node(rootID).value, 1e-12)
	for _, id := range []nodeID{rootID, a, b} {
		assert.Equal(t, 1, tr.node(id).visits)
	}

	tr.backpropagate(a, 1)
	assert.Equal(t, 2, tr.node(a).visits)
	assert.InDelta(t, 1.2, tr.node(a).value, 1e-12)
	assert.InDelta(t, 0.8, tr.node(rootID).value, 1e-12)
	assert.Equal(t, 1, tr.node(b).visits)
}

func TestDescendStopsAtUntried(t *testing.T) {
	p := fen.MustParse("6bk/7p/5R2/8/8/8/PB6/K4r2 w - - 0 1")
	tr := newTree(p, &chess.MoveGenerator{})
	require.Len(t, tr.node(rootID).moves, 2)
	assert.Equal(t, rootID, tr.descend(1))

	a := tr.expand(rootID)
	tr.backpropagate(a, 1)
	assert.Equal(t, rootID, tr.descend(1))
	b := tr.expand(rootID)
	tr.backpropagate(b, 0)
	assert.True(t, tr.node(rootID).fullyExpanded())

	// f6f1 mates, so it has no moves and descent stops there.
	assert.Equal(t, "f6f1", tr.node(a).move.String())
	assert.True(t, tr.node(a).terminal())
	assert.Equal(t, a, tr.descend(1))
}

func TestPV(t *testing.T) {
	tr := newTree(chess.New(), &chess.MoveGenerator{})
	a := tr.expand(rootID)
	b := tr.expand(a)
	for i := 0; i < 3; i++ {
		tr.backpropagate(b, 0.5)
	}
	tr.backpropagate(tr.expand(rootID), 0.5)

	pv := tr.pv(1)
	require.Len(t, pv, 2)
	assert.Equal(t, tr.node(a).move, pv[0])
	assert.Equal(t, tr.node(b).move, pv[1])
	assert.Len(t, tr.pv(4), 0)
	assert.Equal(t, noNode, tr.mostVisited(b))
}
