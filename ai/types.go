package ai

import (
	"github.com/nelhage/chesstician/chess"
	"golang.org/x/net/context"
)

type ChessPlayer interface {
	GetMove(ctx context.Context, p *chess.Position) chess.Move
}
