package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/context"

	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/chesstest"
	"github.com/nelhage/chesstician/fen"
)

type scripted struct {
	moves []chess.Move
}

func (s *scripted) GetMove(ctx context.Context, p *chess.Position) chess.Move {
	if len(s.moves) == 0 {
		return chess.NullMove
	}
	m := s.moves[0]
	s.moves = s.moves[1:]
	return m
}

func TestRenderBoard(t *testing.T) {
	var buf bytes.Buffer
	RenderBoard(nil, &buf, chess.New())
	out := buf.String()
	assert.Contains(t, out, "[white to play]")
	assert.Contains(t, out, "[R]")
	assert.Contains(t, out, "[k]")
	assert.Contains(t, out, "a.")
	assert.NotContains(t, out, "in check")
	assert.Equal(t, 11, strings.Count(out, "\n"))

	buf.Reset()
	RenderBoard(&UnicodeGlyphs, &buf, fen.MustParse("4k3/8/8/8/8/8/3q4/4K3 w - - 0 1"))
	assert.Contains(t, buf.String(), "♔")
	assert.Contains(t, buf.String(), "♛")
	assert.Contains(t, buf.String(), "white is in check")
}

func TestPlayFoolsMate(t *testing.T) {
	var buf bytes.Buffer
	c := &CLI{
		Out:   &buf,
		White: &scripted{chesstest.Moves("f2f3 g2g4")},
		Black: &scripted{chesstest.Moves("e7e5 d8h4")},
	}
	p := c.Play(context.Background())
	assert.Len(t, c.Moves(), 4)
	assert.Equal(t, "f2f3 e7e5 g2g4 d8h4", chesstest.FormatMoves(c.Moves()))
	over, winner := p.GameOver()
	assert.True(t, over)
	assert.Equal(t, chess.Black, winner)
	assert.Contains(t, buf.String(), "Game Over! black wins by checkmate.")
	assert.Contains(t, buf.String(), "2. ... d8h4")
}

func TestPlayResign(t *testing.T) {
	var buf bytes.Buffer
	c := &CLI{
		Out:   &buf,
		White: &scripted{chesstest.Moves("e2e4")},
		Black: &scripted{},
	}
	c.Play(context.Background())
	assert.Contains(t, buf.String(), "black resigns. white wins.")
}

func TestCLIPlayer(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("e2e5\nxyzzy\ne2e4\n"))
	p := NewCLIPlayer(&out, in)
	m := p.GetMove(context.Background(), chess.New())
	assert.Equal(t, "e2e4", m.String())
	assert.Contains(t, out.String(), "illegal move")
	assert.Contains(t, out.String(), "parse error")

	m = p.GetMove(context.Background(), chess.New())
	assert.True(t, m.IsNull())
}

func TestOutcome(t *testing.T) {
	p := fen.MustParse("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	assert.Equal(t, "Draw by stalemate.", Outcome(p, chess.NoColor))
	p = fen.MustParse("7k/8/6K1/8/8/8/8/R7 w - - 100 80")
	assert.Equal(t, "Draw by the fifty-move rule.", Outcome(p, chess.NoColor))
}
