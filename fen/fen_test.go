package fen

import (
	"errors"
	"testing"

	"github.com/nelhage/chesstician/chess"
)

func TestRoundTrip(t *testing.T) {
	cases := []string{
		StartPosition,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"6bk/7p/5R2/8/8/8/PB6/K4r2 w - - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
	}
	for _, s := range cases {
		p, e := ParseFEN(s)
		if e != nil {
			t.Errorf("ParseFEN(%q): %v", s, e)
			continue
		}
		if got := FormatFEN(p); got != s {
			t.Errorf("round trip:\n got %s\nwant %s", got, s)
		}
	}
}

func TestParseFields(t *testing.T) {
	p, e := ParseFEN("4k3/8/8/8/8/8/8/4K2R b K - 7 33")
	if e != nil {
		t.Fatal(e)
	}
	if p.ToMove() != chess.Black {
		t.Error("to move=", p.ToMove())
	}
	if p.Castling() != chess.WhiteKingside {
		t.Error("castling=", p.Castling())
	}
	if p.HalfMoveClock() != 7 || p.FullMoveNumber() != 33 {
		t.Error("clocks=", p.HalfMoveClock(), p.FullMoveNumber())
	}
	if p.At(chess.MakeSquare(7, 0)) != chess.MakePiece(chess.White, chess.Rook) {
		t.Error("h1=", p.At(chess.MakeSquare(7, 0)))
	}
}

func TestShortFEN(t *testing.T) {
	p, e := ParseFEN("4k3/8/8/8/8/8/8/4K3 w - -")
	if e != nil {
		t.Fatal(e)
	}
	if got := FormatFEN(p); got != "4k3/8/8/8/8/8/8/4K3 w - - 0 1" {
		t.Error("got", got)
	}
}

func TestDropsImpossibleCastling(t *testing.T) {
	p, e := ParseFEN("4k3/8/8/8/8/8/8/4K3 w KQkq - 0 1")
	if e != nil {
		t.Fatal(e)
	}
	if p.Castling() != 0 {
		t.Error("castling=", p.Castling())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"8/8/8/8/8/8/8/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 x - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w X - 0 1",
		"4k3/8/8/8/8/8/8 w - - 0 1",
		"4k3/9/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - e4 0 1",
		"4k3/8/8/8/8/8/8/P3K3 w - - 0 1",
		"4k3/4R3/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - - x 1",
	}
	for _, s := range cases {
		if _, e := ParseFEN(s); !errors.Is(e, ErrBadFEN) {
			t.Errorf("ParseFEN(%q): err=%v", s, e)
		}
	}
}
