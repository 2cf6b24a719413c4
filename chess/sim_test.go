package chess_test

import (
	"testing"

	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/fen"
)

func sq(s string) chess.Square {
	v, e := chess.ParseSquare(s)
	if e != nil {
		panic(e)
	}
	return v
}

func TestLightweightIsACopy(t *testing.T) {
	p := chess.New()
	b := p.Lightweight()
	b.Apply(chess.SimMove{From: sq("e2"), To: sq("e4")})
	if !p.At(sq("e4")).Empty() || p.At(sq("e2")).Empty() {
		t.Error("SimBoard.Apply modified the source position")
	}
}

func TestSimMovesIncludeKingCapture(t *testing.T) {
	// White's king on e1 is left en prise.
	b := fen.MustParse("4k3/8/8/8/8/8/3q4/4K3 w - - 0 1").Lightweight()
	var found bool
	for _, m := range b.Moves(chess.Black, nil) {
		if m.From == sq("d2") && m.To == sq("e1") {
			found = true
		}
	}
	if !found {
		t.Fatal("queen capture of king not generated")
	}
	captured := b.Apply(chess.SimMove{From: sq("d2"), To: sq("e1")})
	if captured != chess.MakePiece(chess.White, chess.King) {
		t.Errorf("captured=%s", captured)
	}
	if b.HasKing(chess.White) {
		t.Error("white king still on board")
	}
}

func TestSimPromotesToQueen(t *testing.T) {
	b := fen.MustParse("7k/P7/8/8/8/8/8/K7 w - - 0 1").Lightweight()
	if c := b.Apply(chess.SimMove{From: sq("a7"), To: sq("a8")}); !c.Empty() {
		t.Errorf("captured=%s", c)
	}
	if got := b.At(sq("a8")); got != chess.MakePiece(chess.White, chess.Queen) {
		t.Errorf("a8=%s", got)
	}
}

func TestSimMovesStartPosition(t *testing.T) {
	b := chess.New().Lightweight()
	if n := len(b.Moves(chess.White, nil)); n != 20 {
		t.Errorf("white moves=%d", n)
	}
	if n := len(b.Moves(chess.Black, nil)); n != 20 {
		t.Errorf("black moves=%d", n)
	}
}
