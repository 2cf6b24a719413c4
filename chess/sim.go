package chess

// SimBoard is a bare piece placement used for fast rollouts. It has
// no castling rights, en passant state or move clocks, and its move
// generator ignores whether the mover's king is left in check, so a
// king can be captured.
type SimBoard [64]Piece

type SimMove struct {
	From, To Square
}

func (m SimMove) String() string {
	return m.From.String() + m.To.String()
}

// Lightweight returns a SimBoard with the same piece placement as p.
func (p *Position) Lightweight() *SimBoard {
	b := SimBoard(p.board)
	return &b
}

func (b *SimBoard) At(sq Square) Piece {
	return b[sq]
}

func (b *SimBoard) Set(sq Square, pc Piece) {
	b[sq] = pc
}

// Moves appends the pseudo-legal moves for color c to out.
func (b *SimBoard) Moves(c Color, out []SimMove) []SimMove {
	for sq := Square(0); sq < 64; sq++ {
		pc := b[sq]
		if pc.Empty() || pc.Color() != c {
			continue
		}
		switch pc.Kind() {
		case Pawn:
			out = b.pawnMoves(sq, c, out)
		case Knight:
			out = b.steps(sq, c, knightOffsets[:], out)
		case Bishop:
			out = b.slides(sq, c, bishopDirs[:], out)
		case Rook:
			out = b.slides(sq, c, rookDirs[:], out)
		case Queen:
			out = b.slides(sq, c, queenDirs[:], out)
		case King:
			out = b.steps(sq, c, queenDirs[:], out)
		}
	}
	return out
}

func (b *SimBoard) steps(from Square, c Color, ds [][2]int, out []SimMove) []SimMove {
	for _, d := range ds {
		if to, ok := from.offset(d[0], d[1]); ok && b[to].Color() != c {
			out = append(out, SimMove{from, to})
		}
	}
	return out
}

func (b *SimBoard) slides(from Square, c Color, ds [][2]int, out []SimMove) []SimMove {
	for _, d := range ds {
		cur := from
		for {
			to, ok := cur.offset(d[0], d[1])
			if !ok || b[to].Color() == c {
				break
			}
			out = append(out, SimMove{from, to})
			if !b[to].Empty() {
				break
			}
			cur = to
		}
	}
	return out
}

func (b *SimBoard) pawnMoves(from Square, c Color, out []SimMove) []SimMove {
	fwd := c.forward()
	start := 1
	if c == Black {
		start = 6
	}
	if to, ok := from.offset(0, fwd); ok && b[to].Empty() {
		out = append(out, SimMove{from, to})
		if from.Rank() == start {
			if to2, ok := from.offset(0, 2*fwd); ok && b[to2].Empty() {
				out = append(out, SimMove{from, to2})
			}
		}
	}
	for _, df := range [2]int{-1, 1} {
		if to, ok := from.offset(df, fwd); ok && !b[to].Empty() && b[to].Color() != c {
			out = append(out, SimMove{from, to})
		}
	}
	return out
}

// Apply plays m and returns the piece that was captured, if any.
// Pawns reaching the last rank become queens.
func (b *SimBoard) Apply(m SimMove) Piece {
	pc := b[m.From]
	captured := b[m.To]
	b[m.From] = NoPiece
	if pc.Kind() == Pawn && (m.To.Rank() == 0 || m.To.Rank() == 7) {
		pc = MakePiece(pc.Color(), Queen)
	}
	b[m.To] = pc
	return captured
}

func (b *SimBoard) HasKing(c Color) bool {
	k := MakePiece(c, King)
	for _, pc := range b {
		if pc == k {
			return true
		}
	}
	return false
}
