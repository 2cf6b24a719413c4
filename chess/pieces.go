package chess

import "fmt"

type Color byte
type Kind byte
type Piece byte

const (
	White   Color = 1 << 7
	Black   Color = 1 << 6
	NoColor Color = 0

	colorMask byte = 3 << 6

	Pawn   Kind = 1
	Knight Kind = 2
	Bishop Kind = 3
	Rook   Kind = 4
	Queen  Kind = 5
	King   Kind = 6

	typeMask byte = 1<<3 - 1
)

const NoPiece Piece = 0

func MakePiece(color Color, kind Kind) Piece {
	return Piece(byte(color) | byte(kind))
}

func (p Piece) Color() Color {
	return Color(byte(p) & colorMask)
}

func (p Piece) Kind() Kind {
	return Kind(byte(p) & typeMask)
}

func (p Piece) Empty() bool {
	return p == NoPiece
}

const kindLetters = " pnbrqk"

// String returns the FEN letter for the piece: upper case for white,
// lower case for black and "." for an empty square.
func (p Piece) String() string {
	if p.Empty() {
		return "."
	}
	c := kindLetters[p.Kind()]
	if p.Color() == White {
		c -= 'a' - 'A'
	}
	return string(c)
}

// PieceFromLetter is the inverse of Piece.String.
func PieceFromLetter(r byte) (Piece, bool) {
	color := Black
	if r >= 'A' && r <= 'Z' {
		color = White
		r += 'a' - 'A'
	}
	for k := Pawn; k <= King; k++ {
		if kindLetters[k] == r {
			return MakePiece(color, k), true
		}
	}
	return NoPiece, false
}

func (k Kind) Letter() byte {
	if k < Pawn || k > King {
		return '?'
	}
	return kindLetters[k]
}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	case NoColor:
		return "no color"
	default:
		panic(fmt.Sprintf("bad color: %x", int(c)))
	}
}

func (c Color) Flip() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	case NoColor:
		return NoColor
	default:
		panic(fmt.Sprintf("bad color: %x", int(c)))
	}
}

// forward is the rank delta of a pawn push for c.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}
