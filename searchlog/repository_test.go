package searchlog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/chesstest"
	"github.com/nelhage/chesstician/fen"
)

func open(t *testing.T) *Repository {
	r, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestInsertAndRecent(t *testing.T) {
	r := open(t)
	cfg := mcts.MCTSConfig{C: 1.5, LimitPlayouts: true, MaxPlayouts: 99, PlayoutDepth: 20, Promotions: chess.PromoteQueen}
	res := mcts.Result{
		Move:     chesstest.Move("e2e4"),
		Found:    true,
		Playouts: 100,
		Elapsed:  1500 * time.Millisecond,
		Eval:     35,
		Visits:   12,
		Value:    0.55,
		TreeSize: 101,
	}
	s := NewSearch(chess.New(), cfg, res)
	require.NoError(t, r.InsertSearch(s))
	assert.NotZero(t, s.ID)

	second := NewSearch(chesstest.Position("", "e2e4"), cfg, mcts.Result{Move: chesstest.Move("e7e5"), Aborted: true})
	require.NoError(t, r.InsertSearch(second))

	got, err := r.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.True(t, got[0].Aborted)

	first := got[1]
	assert.Equal(t, fen.StartPosition, first.FEN)
	assert.Equal(t, "e2e4", first.Move)
	assert.Equal(t, 100, first.Playouts)
	assert.Equal(t, int64(1500), first.ElapsedMS)
	assert.Equal(t, int64(35), first.Eval)
	assert.Equal(t, 12, first.Visits)
	assert.InDelta(t, 0.55, first.Value, 1e-9)
	assert.Equal(t, 101, first.Nodes)
	assert.False(t, first.Aborted)
	assert.WithinDuration(t, s.Timestamp, first.Timestamp, time.Second)

	var conf mcts.MCTSConfig
	require.NoError(t, json.Unmarshal([]byte(first.Config), &conf))
	assert.Equal(t, 1.5, conf.C)
	assert.Equal(t, 99, conf.MaxPlayouts)
	assert.Equal(t, chess.PromoteQueen, conf.Promotions)

	got, err = r.Recent(1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestInsertSearchesAndStats(t *testing.T) {
	r := open(t)
	var ss []*Search
	for i, m := range []string{"e2e4", "d2d4", "e2e4"} {
		ss = append(ss, NewSearch(chess.New(), mcts.MCTSConfig{}, mcts.Result{
			Move:     chesstest.Move(m),
			Playouts: 10 * (i + 1),
			Value:    0.5,
		}))
	}
	require.NoError(t, r.InsertSearches(ss))
	for _, s := range ss {
		assert.NotZero(t, s.ID)
	}

	stats, err := r.Stats(fen.StartPosition)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "e2e4", stats[0].Move)
	assert.Equal(t, 2, stats[0].Searches)
	assert.Equal(t, 40, stats[0].Playouts)
	assert.InDelta(t, 0.5, stats[0].MeanValue, 1e-9)
	assert.Equal(t, "d2d4", stats[1].Move)
	assert.Equal(t, 1, stats[1].Searches)

	none, err := r.Stats("8/8/8/8/8/8/8/8 w - - 0 1")
	require.NoError(t, err)
	assert.Empty(t, none)
}
