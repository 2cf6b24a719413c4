package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/context"

	"github.com/nelhage/chesstician/chess"
)

func NewCLIPlayer(out io.Writer, in *bufio.Reader) Player {
	return &cliPlayer{out, in}
}

type cliPlayer struct {
	out io.Writer
	in  *bufio.Reader
}

// GetMove prompts until it reads a legal move. End of input or
// "resign" returns chess.NullMove.
func (c *cliPlayer) GetMove(ctx context.Context, p *chess.Position) chess.Move {
	for {
		fmt.Fprintf(c.out, "%s> ", p.ToMove())
		line, err := c.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" && err != nil {
			return chess.NullMove
		}
		if line == "resign" {
			return chess.NullMove
		}
		m, e := chess.ParseMove(line)
		if e != nil {
			fmt.Fprintln(c.out, "parse error: ", e)
			continue
		}
		if _, e := p.Move(m); e != nil {
			fmt.Fprintln(c.out, "illegal move: ", e)
			continue
		}
		return m
	}
}
