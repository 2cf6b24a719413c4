package chess

import (
	"fmt"
	"strings"
)

// PromotionMode restricts which promotion pieces are generated for
// non-root positions during search.
type PromotionMode int

const (
	PromoteAll PromotionMode = iota
	PromoteQueen
	PromoteQueenKnight
)

var (
	allPromotions        = []Kind{Queen, Rook, Bishop, Knight}
	queenPromotions      = []Kind{Queen}
	queenKnightPromotion = []Kind{Queen, Knight}
)

func (m PromotionMode) kinds() []Kind {
	switch m {
	case PromoteQueen:
		return queenPromotions
	case PromoteQueenKnight:
		return queenKnightPromotion
	default:
		return allPromotions
	}
}

func (m PromotionMode) String() string {
	switch m {
	case PromoteAll:
		return "all"
	case PromoteQueen:
		return "queen"
	case PromoteQueenKnight:
		return "queen+knight"
	default:
		return fmt.Sprintf("PromotionMode(%d)", int(m))
	}
}

func ParsePromotionMode(s string) (PromotionMode, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return PromoteAll, nil
	case "queen", "q":
		return PromoteQueen, nil
	case "queen+knight", "qn":
		return PromoteQueenKnight, nil
	}
	return PromoteAll, fmt.Errorf("bad promotion mode: %q", s)
}

func (m PromotionMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *PromotionMode) UnmarshalText(b []byte) error {
	v, e := ParsePromotionMode(string(b))
	if e != nil {
		return e
	}
	*m = v
	return nil
}

// MoveGenerator generates legal moves for search nodes.
type MoveGenerator struct {
	Promotions PromotionMode
}

// Generate returns the legal moves from p. Root positions always get
// every promotion choice; other positions are limited to g.Promotions.
// Moves are ordered by origin square from a1 to h8.
func (g *MoveGenerator) Generate(p *Position, root bool) []Move {
	kinds := allPromotions
	if !root {
		kinds = g.Promotions.kinds()
	}
	return p.legalMoves(nil, kinds)
}

// AllMoves appends every legal move from p to moves.
func (p *Position) AllMoves(moves []Move) []Move {
	return p.legalMoves(moves, allPromotions)
}

func (p *Position) legalMoves(out []Move, promo []Kind) []Move {
	for sq := Square(0); sq < 64; sq++ {
		pc := p.board[sq]
		if pc.Empty() || pc.Color() != p.toMove {
			continue
		}
		out = p.legalFrom(sq, out, promo)
	}
	return out
}

func (p *Position) legalFrom(from Square, out []Move, promo []Kind) []Move {
	start := len(out)
	out = p.pseudoFrom(from, out, promo)
	legal := out[:start]
	for _, m := range out[start:] {
		next := *p
		next.apply(m)
		if !attacked(&next.board, next.KingSquare(p.toMove), p.toMove.Flip()) {
			legal = append(legal, m)
		}
	}
	return legal
}

var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var queenDirs = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var knightOffsets = [8][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}

func (p *Position) pseudoFrom(from Square, out []Move, promo []Kind) []Move {
	pc := p.board[from]
	us := pc.Color()
	switch pc.Kind() {
	case Pawn:
		out = p.pawnMoves(from, us, out, promo)
	case Knight:
		for _, d := range knightOffsets {
			if to, ok := from.offset(d[0], d[1]); ok && p.board[to].Color() != us {
				out = append(out, Move{From: from, To: to})
			}
		}
	case Bishop:
		out = p.slides(from, us, bishopDirs[:], out)
	case Rook:
		out = p.slides(from, us, rookDirs[:], out)
	case Queen:
		out = p.slides(from, us, queenDirs[:], out)
	case King:
		for _, d := range queenDirs {
			if to, ok := from.offset(d[0], d[1]); ok && p.board[to].Color() != us {
				out = append(out, Move{From: from, To: to})
			}
		}
		out = p.castles(from, us, out)
	}
	return out
}

func (p *Position) slides(from Square, us Color, dirs [][2]int, out []Move) []Move {
	for _, d := range dirs {
		cur := from
		for {
			to, ok := cur.offset(d[0], d[1])
			if !ok {
				break
			}
			target := p.board[to]
			if target.Color() == us {
				break
			}
			out = append(out, Move{From: from, To: to})
			if !target.Empty() {
				break
			}
			cur = to
		}
	}
	return out
}

func (p *Position) pawnMoves(from Square, us Color, out []Move, promo []Kind) []Move {
	fwd := us.forward()
	last := 7
	start := 1
	if us == Black {
		last, start = 0, 6
	}
	add := func(to Square) {
		if to.Rank() == last {
			for _, k := range promo {
				out = append(out, Move{From: from, To: to, Promotion: k})
			}
			return
		}
		out = append(out, Move{From: from, To: to})
	}
	if to, ok := from.offset(0, fwd); ok && p.board[to].Empty() {
		add(to)
		if from.Rank() == start {
			if to2, ok := from.offset(0, 2*fwd); ok && p.board[to2].Empty() {
				add(to2)
			}
		}
	}
	for _, df := range [2]int{-1, 1} {
		to, ok := from.offset(df, fwd)
		if !ok {
			continue
		}
		target := p.board[to]
		if (!target.Empty() && target.Color() != us) || (to == p.ep && target.Empty()) {
			add(to)
		}
	}
	return out
}

func (p *Position) castles(from Square, us Color, out []Move) []Move {
	them := us.Flip()
	if us == White && from == sqE1 {
		if p.castling&WhiteKingside != 0 && p.canCastle(them, []Square{sqF1, sqG1}, []Square{sqE1, sqF1, sqG1}) {
			out = append(out, Move{From: sqE1, To: sqG1})
		}
		if p.castling&WhiteQueenside != 0 && p.canCastle(them, []Square{sqD1, sqC1, sqC1 - 1}, []Square{sqE1, sqD1, sqC1}) {
			out = append(out, Move{From: sqE1, To: sqC1})
		}
	}
	if us == Black && from == sqE8 {
		if p.castling&BlackKingside != 0 && p.canCastle(them, []Square{sqF8, sqG8}, []Square{sqE8, sqF8, sqG8}) {
			out = append(out, Move{From: sqE8, To: sqG8})
		}
		if p.castling&BlackQueenside != 0 && p.canCastle(them, []Square{sqD8, sqC8, sqC8 - 1}, []Square{sqE8, sqD8, sqC8}) {
			out = append(out, Move{From: sqE8, To: sqC8})
		}
	}
	return out
}

func (p *Position) canCastle(them Color, empty, safe []Square) bool {
	for _, sq := range empty {
		if !p.board[sq].Empty() {
			return false
		}
	}
	for _, sq := range safe {
		if p.Attacked(sq, them) {
			return false
		}
	}
	return true
}
