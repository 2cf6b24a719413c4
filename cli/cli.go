package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/muesli/termenv"
	"golang.org/x/net/context"

	"github.com/nelhage/chesstician/ai"
	"github.com/nelhage/chesstician/chess"
)

type Player = ai.ChessPlayer

// Glyphs maps each piece kind to the string used to draw it,
// indexed by chess.Kind.
type Glyphs struct {
	White, Black [7]string
}

var DefaultGlyphs = Glyphs{
	White: [7]string{" ", "P", "N", "B", "R", "Q", "K"},
	Black: [7]string{" ", "p", "n", "b", "r", "q", "k"},
}

var UnicodeGlyphs = Glyphs{
	White: [7]string{" ", "♙", "♘", "♗", "♖", "♕", "♔"},
	Black: [7]string{" ", "♟", "♞", "♝", "♜", "♛", "♚"},
}

type CLI struct {
	moves []chess.Move
	p     *chess.Position

	Start  *chess.Position
	Glyphs *Glyphs
	Out    io.Writer
	White  Player
	Black  Player
}

// Play runs a game to completion and returns the final position.
func (c *CLI) Play(ctx context.Context) *chess.Position {
	c.moves = nil
	c.p = c.Start
	if c.p == nil {
		c.p = chess.New()
	}
	for {
		c.render()
		if over, winner := c.p.GameOver(); over {
			fmt.Fprintf(c.Out, "Game Over! %s\n", Outcome(c.p, winner))
			return c.p
		}
		var m chess.Move
		if c.p.ToMove() == chess.White {
			m = c.White.GetMove(ctx, c.p)
		} else {
			m = c.Black.GetMove(ctx, c.p)
		}
		if m.IsNull() {
			fmt.Fprintf(c.Out, "%s resigns. %s wins.\n", c.p.ToMove(), c.p.ToMove().Flip())
			return c.p
		}
		p, e := c.p.Move(m)
		if e != nil {
			fmt.Fprintln(c.Out, "illegal move:", e)
			continue
		}
		if c.p.ToMove() == chess.White {
			fmt.Fprintf(c.Out, "%d. %s\n", c.p.FullMoveNumber(), m)
		} else {
			fmt.Fprintf(c.Out, "%d. ... %s\n", c.p.FullMoveNumber(), m)
		}
		c.p = p
		c.moves = append(c.moves, m)
	}
}

func (c *CLI) Moves() []chess.Move {
	return c.moves
}

// Outcome describes how a finished game ended.
func Outcome(p *chess.Position, winner chess.Color) string {
	switch {
	case winner != chess.NoColor:
		return fmt.Sprintf("%s wins by checkmate.", winner)
	case len(p.AllMoves(nil)) == 0:
		return "Draw by stalemate."
	case p.HalfMoveClock() >= 100:
		return "Draw by the fifty-move rule."
	default:
		return "Draw by insufficient material."
	}
}

func (c *CLI) render() {
	RenderBoard(c.Glyphs, c.Out, c.p)
}

// RenderBoard draws p to out. Squares are shaded when out is a
// terminal that supports color.
func RenderBoard(g *Glyphs, out io.Writer, p *chess.Position) {
	if g == nil {
		g = &DefaultGlyphs
	}
	term := termenv.NewOutput(out)
	dark := term.Color("238")
	light := term.Color("250")

	fmt.Fprintln(out)
	fmt.Fprintf(out, "[%s to play]\n", p.ToMove())
	w := tabwriter.NewWriter(out, 4, 8, 1, '\t', 0)
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(w, "%c.\t", '1'+rank)
		for file := 0; file < 8; file++ {
			pc := p.At(chess.MakeSquare(file, rank))
			glyph := g.White[0]
			if !pc.Empty() {
				if pc.Color() == chess.White {
					glyph = g.White[pc.Kind()]
				} else {
					glyph = g.Black[pc.Kind()]
				}
			}
			s := term.String(glyph)
			if (rank+file)%2 == 0 {
				s = s.Background(dark)
			} else {
				s = s.Background(light)
			}
			if pc.Color() == chess.White {
				s = s.Bold()
			}
			fmt.Fprintf(w, "[%s]\t", s)
		}
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, "\t")
	for file := 0; file < 8; file++ {
		fmt.Fprintf(w, "%c.\t", 'a'+file)
	}
	fmt.Fprintf(w, "\n")
	w.Flush()
	if p.InCheck() {
		fmt.Fprintf(out, "%s is in check\n", p.ToMove())
	}
}
