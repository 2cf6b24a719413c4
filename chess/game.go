package chess

import (
	"errors"
	"fmt"
)

type Castling byte

const (
	WhiteKingside Castling = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	AllCastling = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

// Position is a complete chess position. Positions are never mutated
// once they have been handed out; Move returns a fresh copy.
type Position struct {
	board    [64]Piece
	toMove   Color
	castling Castling
	ep       Square

	halfmove int
	fullmove int
}

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// New returns the standard starting position.
func New() *Position {
	p := &Position{
		toMove:   White,
		castling: AllCastling,
		ep:       NoSquare,
		fullmove: 1,
	}
	for f := 0; f < 8; f++ {
		p.board[MakeSquare(f, 0)] = MakePiece(White, backRank[f])
		p.board[MakeSquare(f, 1)] = MakePiece(White, Pawn)
		p.board[MakeSquare(f, 6)] = MakePiece(Black, Pawn)
		p.board[MakeSquare(f, 7)] = MakePiece(Black, backRank[f])
	}
	return p
}

var (
	ErrKingCount       = errors.New("each side must have exactly one king")
	ErrPawnOnBackRank  = errors.New("pawn on first or last rank")
	ErrOpponentInCheck = errors.New("side not to move is in check")
	ErrBadColor        = errors.New("bad side to move")
	ErrBadEnPassant    = errors.New("bad en passant square")
)

// FromSquares initializes a Position from a board indexed by Square
// and the remaining game state. Castling rights that do not match the
// placement of kings and rooks are dropped.
func FromSquares(board [64]Piece, toMove Color, castling Castling, ep Square, halfmove, fullmove int) (*Position, error) {
	if toMove != White && toMove != Black {
		return nil, ErrBadColor
	}
	p := &Position{
		board:    board,
		toMove:   toMove,
		castling: castling & AllCastling,
		ep:       ep,
		halfmove: halfmove,
		fullmove: fullmove,
	}
	if p.fullmove < 1 {
		p.fullmove = 1
	}
	var kings [2]int
	for sq, pc := range p.board {
		if pc.Empty() {
			continue
		}
		switch pc.Kind() {
		case King:
			kings[colorIndex(pc.Color())]++
		case Pawn:
			if r := Square(sq).Rank(); r == 0 || r == 7 {
				return nil, ErrPawnOnBackRank
			}
		}
	}
	if kings[0] != 1 || kings[1] != 1 {
		return nil, ErrKingCount
	}
	if ep != NoSquare {
		want := 5
		if toMove == Black {
			want = 2
		}
		if !ep.Valid() || ep.Rank() != want {
			return nil, ErrBadEnPassant
		}
	}
	p.castling &= p.possibleCastling()
	if p.Attacked(p.KingSquare(toMove.Flip()), toMove) {
		return nil, ErrOpponentInCheck
	}
	return p, nil
}

func colorIndex(c Color) int {
	if c == White {
		return 0
	}
	return 1
}

func (p *Position) possibleCastling() Castling {
	var c Castling
	wk, bk := MakePiece(White, King), MakePiece(Black, King)
	wr, br := MakePiece(White, Rook), MakePiece(Black, Rook)
	if p.board[sqE1] == wk {
		if p.board[sqH1] == wr {
			c |= WhiteKingside
		}
		if p.board[sqA1] == wr {
			c |= WhiteQueenside
		}
	}
	if p.board[sqE8] == bk {
		if p.board[sqH8] == br {
			c |= BlackKingside
		}
		if p.board[sqA8] == br {
			c |= BlackQueenside
		}
	}
	return c
}

const (
	sqA1 Square = 0
	sqC1 Square = 2
	sqD1 Square = 3
	sqE1 Square = 4
	sqF1 Square = 5
	sqG1 Square = 6
	sqH1 Square = 7
	sqA8 Square = 56
	sqC8 Square = 58
	sqD8 Square = 59
	sqE8 Square = 60
	sqF8 Square = 61
	sqG8 Square = 62
	sqH8 Square = 63
)

func (p *Position) Clone() *Position {
	c := *p
	return &c
}

func (p *Position) At(sq Square) Piece {
	return p.board[sq]
}

func (p *Position) ToMove() Color {
	return p.toMove
}

func (p *Position) Castling() Castling {
	return p.castling
}

func (p *Position) EnPassant() Square {
	return p.ep
}

func (p *Position) HalfMoveClock() int {
	return p.halfmove
}

func (p *Position) FullMoveNumber() int {
	return p.fullmove
}

func (p *Position) KingSquare(c Color) Square {
	k := MakePiece(c, King)
	for sq, pc := range p.board {
		if pc == k {
			return Square(sq)
		}
	}
	return NoSquare
}

func (p *Position) InCheck() bool {
	return p.Attacked(p.KingSquare(p.toMove), p.toMove.Flip())
}

// Attacked reports whether any piece of color by attacks sq.
func (p *Position) Attacked(sq Square, by Color) bool {
	return attacked(&p.board, sq, by)
}

func attacked(board *[64]Piece, sq Square, by Color) bool {
	if !sq.Valid() {
		return false
	}
	// A pawn of color by attacks sq from one rank behind it.
	pawn := MakePiece(by, Pawn)
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.offset(df, -by.forward()); ok && board[from] == pawn {
			return true
		}
	}
	knight := MakePiece(by, Knight)
	for _, d := range knightOffsets {
		if from, ok := sq.offset(d[0], d[1]); ok && board[from] == knight {
			return true
		}
	}
	king := MakePiece(by, King)
	for _, d := range queenDirs {
		if from, ok := sq.offset(d[0], d[1]); ok && board[from] == king {
			return true
		}
	}
	if slideAttack(board, sq, rookDirs, MakePiece(by, Rook), MakePiece(by, Queen)) {
		return true
	}
	return slideAttack(board, sq, bishopDirs, MakePiece(by, Bishop), MakePiece(by, Queen))
}

func slideAttack(board *[64]Piece, sq Square, dirs [4][2]int, a, b Piece) bool {
	for _, d := range dirs {
		cur := sq
		for {
			next, ok := cur.offset(d[0], d[1])
			if !ok {
				break
			}
			pc := board[next]
			if pc == a || pc == b {
				return true
			}
			if !pc.Empty() {
				break
			}
			cur = next
		}
	}
	return false
}

// GameOver reports whether the game has ended and, if so, who won.
// Draws report NoColor as the winner.
func (p *Position) GameOver() (over bool, winner Color) {
	if len(p.legalMoves(nil, allPromotions)) == 0 {
		if p.InCheck() {
			return true, p.toMove.Flip()
		}
		return true, NoColor
	}
	if p.halfmove >= 100 {
		return true, NoColor
	}
	if p.bareKings() {
		return true, NoColor
	}
	return false, NoColor
}

func (p *Position) bareKings() bool {
	for _, pc := range p.board {
		if !pc.Empty() && pc.Kind() != King {
			return false
		}
	}
	return true
}

func (p *Position) String() string {
	return fmt.Sprintf("Position{%s to move, move %d}", p.toMove, p.fullmove)
}
