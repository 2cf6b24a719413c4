package chess

import (
	"errors"
	"fmt"
)

// A Move moves the piece on From to To. Promotion is zero unless a
// pawn reaches the last rank. Castling is encoded as the king's two
// square move.
type Move struct {
	From, To  Square
	Promotion Kind
}

var NullMove = Move{From: NoSquare, To: NoSquare}

func (m Move) IsNull() bool {
	return m.From == NoSquare || m.To == NoSquare
}

func (m Move) Equal(rhs Move) bool {
	return m == rhs
}

// String formats m in long algebraic notation, e.g. "e2e4" or
// "e7e8q". The null move formats as "0000".
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.Promotion != 0 {
		s += string(m.Promotion.Letter())
	}
	return s
}

var ErrBadMove = errors.New("bad move")

// ParseMove parses a move in long algebraic notation.
func ParseMove(s string) (Move, error) {
	if s == "0000" {
		return NullMove, nil
	}
	if len(s) != 4 && len(s) != 5 {
		return NullMove, fmt.Errorf("%w: %q", ErrBadMove, s)
	}
	from, e := ParseSquare(s[0:2])
	if e != nil {
		return NullMove, fmt.Errorf("%w: %v", ErrBadMove, e)
	}
	to, e := ParseSquare(s[2:4])
	if e != nil {
		return NullMove, fmt.Errorf("%w: %v", ErrBadMove, e)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		pc, ok := PieceFromLetter(s[4])
		if !ok || pc.Kind() == Pawn || pc.Kind() == King {
			return NullMove, fmt.Errorf("%w: bad promotion %q", ErrBadMove, s)
		}
		m.Promotion = pc.Kind()
	}
	return m, nil
}

var (
	ErrNoPiece     = errors.New("no piece of the side to move on that square")
	ErrIllegalMove = errors.New("illegal move")
)

// Move returns the position after playing m, or an error if m is not
// legal in p.
func (p *Position) Move(m Move) (*Position, error) {
	if m.IsNull() || !m.From.Valid() || !m.To.Valid() {
		return nil, ErrBadMove
	}
	pc := p.board[m.From]
	if pc.Empty() || pc.Color() != p.toMove {
		return nil, ErrNoPiece
	}
	var buf [32]Move
	for _, l := range p.legalFrom(m.From, buf[:0], allPromotions) {
		if l == m {
			next := p.Clone()
			next.apply(m)
			return next, nil
		}
	}
	return nil, ErrIllegalMove
}

// Play returns the position after m without checking legality. m
// must have been produced by a move generator for p.
func (p *Position) Play(m Move) *Position {
	next := p.Clone()
	next.apply(m)
	return next
}

// apply plays a pseudo-legal move in place.
func (p *Position) apply(m Move) {
	pc := p.board[m.From]
	captured := p.board[m.To]
	fwd := p.toMove.forward()

	p.board[m.From] = NoPiece
	p.board[m.To] = pc

	switch pc.Kind() {
	case Pawn:
		if m.To == p.ep && captured.Empty() && m.From.File() != m.To.File() {
			taken, _ := m.To.offset(0, -fwd)
			p.board[taken] = NoPiece
			captured = MakePiece(p.toMove.Flip(), Pawn)
		}
		if m.Promotion != 0 {
			p.board[m.To] = MakePiece(p.toMove, m.Promotion)
		}
	case King:
		switch int(m.To) - int(m.From) {
		case 2:
			p.board[m.To-1] = p.board[m.To+1]
			p.board[m.To+1] = NoPiece
		case -2:
			p.board[m.To+1] = p.board[m.To-2]
			p.board[m.To-2] = NoPiece
		}
	}

	p.castling &^= castlingLost(m.From) | castlingLost(m.To)

	p.ep = NoSquare
	if pc.Kind() == Pawn && (int(m.To)-int(m.From) == 16 || int(m.From)-int(m.To) == 16) {
		p.ep, _ = m.From.offset(0, fwd)
	}

	if pc.Kind() == Pawn || !captured.Empty() {
		p.halfmove = 0
	} else {
		p.halfmove++
	}
	if p.toMove == Black {
		p.fullmove++
	}
	p.toMove = p.toMove.Flip()
}

func castlingLost(sq Square) Castling {
	switch sq {
	case sqE1:
		return WhiteKingside | WhiteQueenside
	case sqH1:
		return WhiteKingside
	case sqA1:
		return WhiteQueenside
	case sqE8:
		return BlackKingside | BlackQueenside
	case sqH8:
		return BlackKingside
	case sqA8:
		return BlackQueenside
	}
	return 0
}
