package chesstest

import (
	"strings"

	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/fen"
)

func Move(s string) chess.Move {
	m, e := chess.ParseMove(s)
	if e != nil {
		panic(e)
	}
	return m
}

func Moves(s string) []chess.Move {
	if s == "" {
		return nil
	}
	var ms []chess.Move
	for _, b := range strings.Fields(s) {
		ms = append(ms, Move(b))
	}
	return ms
}

func FormatMoves(ms []chess.Move) string {
	var bits []string
	for _, o := range ms {
		bits = append(bits, o.String())
	}
	return strings.Join(bits, " ")
}

// Position plays the moves in ms from the position described by
// start, which may be "" for the standard starting position.
func Position(start string, ms string) *chess.Position {
	p := chess.New()
	if start != "" {
		p = fen.MustParse(start)
	}
	var e error
	for _, m := range Moves(ms) {
		p, e = p.Move(m)
		if e != nil {
			panic(e)
		}
	}
	return p
}
