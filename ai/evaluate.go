package ai

import (
	"math"

	"github.com/nelhage/chesstician/chess"
)

const (
	MaxEval int64 = 1 << 30
	MinEval       = -MaxEval

	WinThreshold = 1 << 29
)

// EvaluationFunc scores a position in centipawns from the point of
// view of the side to move.
type EvaluationFunc func(p *chess.Position) int64

// SimEvaluationFunc scores a rollout board in [0,1] from the point of
// view of perspective.
type SimEvaluationFunc func(b *chess.SimBoard, perspective chess.Color) float64

type Weights struct {
	Material [7]int

	// Scale is the centipawn difference that maps to roughly a 73%
	// win estimate in a simulation evaluation.
	Scale float64

	NoTables bool
}

var DefaultWeights = Weights{
	Material: [7]int{
		0,   // none
		100, // pawn
		320, // knight
		330, // bishop
		500, // rook
		900, // queen
		0,   // king
	},
	Scale: 400,
}

func MakeEvaluator(w *Weights) EvaluationFunc {
	return func(p *chess.Position) int64 {
		return evaluate(w, p)
	}
}

func MakeSimEvaluator(w *Weights) SimEvaluationFunc {
	return func(b *chess.SimBoard, perspective chess.Color) float64 {
		return evaluateSim(w, b, perspective)
	}
}

var DefaultEvaluate = MakeEvaluator(&DefaultWeights)
var DefaultSimEvaluate = MakeSimEvaluator(&DefaultWeights)

// Evaluate scores p with DefaultWeights.
func Evaluate(p *chess.Position) int64 {
	return evaluate(&DefaultWeights, p)
}

// EvaluateSim scores b with DefaultWeights.
func EvaluateSim(b *chess.SimBoard, perspective chess.Color) float64 {
	return evaluateSim(&DefaultWeights, b, perspective)
}

func evaluate(w *Weights, p *chess.Position) int64 {
	if over, winner := p.GameOver(); over {
		switch winner {
		case chess.NoColor:
			return 0
		case p.ToMove():
			return MaxEval - int64(p.FullMoveNumber())
		default:
			return MinEval + int64(p.FullMoveNumber())
		}
	}
	var board [64]chess.Piece
	for sq := chess.Square(0); sq < 64; sq++ {
		board[sq] = p.At(sq)
	}
	return int64(material(w, &board, p.ToMove()))
}

func evaluateSim(w *Weights, b *chess.SimBoard, perspective chess.Color) float64 {
	if !b.HasKing(perspective) {
		return 0
	}
	if !b.HasKing(perspective.Flip()) {
		return 1
	}
	d := float64(material(w, (*[64]chess.Piece)(b), perspective))
	return 1 / (1 + math.Exp(-d/w.Scale))
}

// material returns the material and piece-square balance of board for
// me, in centipawns.
func material(w *Weights, board *[64]chess.Piece, me chess.Color) int {
	score := 0
	for i, pc := range board {
		if pc.Empty() {
			continue
		}
		sq := chess.Square(i)
		v := w.Material[pc.Kind()]
		if !w.NoTables {
			v += tableValue(pc, sq)
		}
		if pc.Color() == me {
			score += v
		} else {
			score -= v
		}
	}
	return score
}

func tableValue(pc chess.Piece, sq chess.Square) int {
	rank := sq.Rank()
	if pc.Color() == chess.Black {
		rank = 7 - rank
	}
	file := sq.File()
	switch pc.Kind() {
	case chess.Pawn:
		return pawnTable[rank][file]
	case chess.Knight:
		return knightTable[rank][file]
	case chess.Bishop:
		return bishopTable[rank][file]
	case chess.Rook:
		return rookTable[rank][file]
	case chess.Queen:
		return queenTable[rank][file]
	case chess.King:
		return kingTable[rank][file]
	}
	return 0
}

// Piece-square tables, indexed [rank][file] from white's side.
var pawnTable = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{5, 10, 10, -20, -20, 10, 10, 5},
	{5, -5, -10, 0, 0, -10, -5, 5},
	{0, 0, 0, 20, 20, 0, 0, 0},
	{5, 5, 10, 25, 25, 10, 5, 5},
	{10, 10, 20, 30, 30, 20, 10, 10},
	{50, 50, 50, 50, 50, 50, 50, 50},
	{0, 0, 0, 0, 0, 0, 0, 0},
}

var knightTable = [8][8]int{
	{-50, -40, -30, -30, -30, -30, -40, -50},
	{-40, -20, 0, 5, 5, 0, -20, -40},
	{-30, 5, 10, 15, 15, 10, 5, -30},
	{-30, 0, 15, 20, 20, 15, 0, -30},
	{-30, 5, 15, 20, 20, 15, 5, -30},
	{-30, 0, 10, 15, 15, 10, 0, -30},
	{-40, -20, 0, 0, 0, 0, -20, -40},
	{-50, -40, -30, -30, -30, -30, -40, -50},
}

var bishopTable = [8][8]int{
	{-20, -10, -10, -10, -10, -10, -10, -20},
	{-10, 5, 0, 0, 0, 0, 5, -10},
	{-10, 10, 10, 10, 10, 10, 10, -10},
	{-10, 0, 10, 10, 10, 10, 0, -10},
	{-10, 5, 5, 10, 10, 5, 5, -10},
	{-10, 0, 5, 10, 10, 5, 0, -10},
	{-10, 0, 0, 0, 0, 0, 0, -10},
	{-20, -10, -10, -10, -10, -10, -10, -20},
}

var rookTable = [8][8]int{
	{0, 0, 0, 5, 5, 0, 0, 0},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{5, 10, 10, 10, 10, 10, 10, 5},
	{0, 0, 0, 0, 0, 0, 0, 0},
}

var queenTable = [8][8]int{
	{-20, -10, -10, -5, -5, -10, -10, -20},
	{-10, 0, 5, 0, 0, 0, 0, -10},
	{-10, 5, 5, 5, 5, 5, 0, -10},
	{0, 0, 5, 5, 5, 5, 0, -5},
	{-5, 0, 5, 5, 5, 5, 0, -5},
	{-10, 0, 5, 5, 5, 5, 0, -10},
	{-10, 0, 0, 0, 0, 0, 0, -10},
	{-20, -10, -10, -5, -5, -10, -10, -20},
}

var kingTable = [8][8]int{
	{20, 30, 10, 0, 0, 10, 30, 20},
	{20, 20, 0, 0, 0, 0, 20, 20},
	{-10, -20, -20, -20, -20, -20, -20, -10},
	{-20, -30, -30, -40, -40, -30, -30, -20},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
}
