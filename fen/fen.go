package fen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nelhage/chesstician/chess"
)

const StartPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var ErrBadFEN = errors.New("bad FEN")

// ParseFEN parses a position in Forsyth-Edwards Notation. The move
// clocks may be omitted.
func ParseFEN(s string) (*chess.Position, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 && len(fields) != 6 {
		return nil, fmt.Errorf("%w: expected 4 or 6 fields, got %d", ErrBadFEN, len(fields))
	}

	var board [64]chess.Piece
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrBadFEN, len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			pc, ok := chess.PieceFromLetter(c)
			if !ok {
				return nil, fmt.Errorf("%w: bad piece %q", ErrBadFEN, c)
			}
			if file >= 8 {
				return nil, fmt.Errorf("%w: rank %d too long", ErrBadFEN, rank+1)
			}
			board[chess.MakeSquare(file, rank)] = pc
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrBadFEN, rank+1, file)
		}
	}

	var toMove chess.Color
	switch fields[1] {
	case "w":
		toMove = chess.White
	case "b":
		toMove = chess.Black
	default:
		return nil, fmt.Errorf("%w: bad side to move %q", ErrBadFEN, fields[1])
	}

	var castling chess.Castling
	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				castling |= chess.WhiteKingside
			case 'Q':
				castling |= chess.WhiteQueenside
			case 'k':
				castling |= chess.BlackKingside
			case 'q':
				castling |= chess.BlackQueenside
			default:
				return nil, fmt.Errorf("%w: bad castling %q", ErrBadFEN, fields[2])
			}
		}
	}

	ep := chess.NoSquare
	if fields[3] != "-" {
		sq, e := chess.ParseSquare(fields[3])
		if e != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFEN, e)
		}
		ep = sq
	}

	half, full := 0, 1
	if len(fields) == 6 {
		var e error
		if half, e = strconv.Atoi(fields[4]); e != nil || half < 0 {
			return nil, fmt.Errorf("%w: bad halfmove clock %q", ErrBadFEN, fields[4])
		}
		if full, e = strconv.Atoi(fields[5]); e != nil || full < 1 {
			return nil, fmt.Errorf("%w: bad move number %q", ErrBadFEN, fields[5])
		}
	}

	p, e := chess.FromSquares(board, toMove, castling, ep, half, full)
	if e != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFEN, e)
	}
	return p, nil
}

func FormatFEN(p *chess.Position) string {
	var buf strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.At(chess.MakeSquare(file, rank))
			if pc.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				buf.WriteByte(byte('0' + empty))
				empty = 0
			}
			buf.WriteString(pc.String())
		}
		if empty > 0 {
			buf.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			buf.WriteByte('/')
		}
	}
	if p.ToMove() == chess.White {
		buf.WriteString(" w ")
	} else {
		buf.WriteString(" b ")
	}
	buf.WriteString(formatCastling(p.Castling()))
	fmt.Fprintf(&buf, " %s %d %d", p.EnPassant(), p.HalfMoveClock(), p.FullMoveNumber())
	return buf.String()
}

func formatCastling(c chess.Castling) string {
	if c == 0 {
		return "-"
	}
	var s string
	if c&chess.WhiteKingside != 0 {
		s += "K"
	}
	if c&chess.WhiteQueenside != 0 {
		s += "Q"
	}
	if c&chess.BlackKingside != 0 {
		s += "k"
	}
	if c&chess.BlackQueenside != 0 {
		s += "q"
	}
	return s
}

// MustParse parses a FEN or panics.
func MustParse(s string) *chess.Position {
	p, e := ParseFEN(s)
	if e != nil {
		panic(e)
	}
	return p
}
