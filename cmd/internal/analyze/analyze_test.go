package analyze

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/searchlog"
)

func TestPosition(t *testing.T) {
	c := &Command{variation: "e2e4 e7e5"}
	p, err := c.position("")
	require.NoError(t, err)
	assert.Equal(t, chess.White, p.ToMove())
	assert.Equal(t, 2, p.FullMoveNumber())

	c.variation = "e2e5"
	_, err = c.position("")
	assert.True(t, errors.Is(err, chess.ErrIllegalMove))

	c.variation = ""
	_, err = c.position("not a fen")
	assert.Error(t, err)
}

func testResult() *mcts.Result {
	return &mcts.Result{
		Move:     chess.Move{From: 12, To: 28},
		Found:    true,
		Playouts: 30,
		Elapsed:  time.Millisecond,
		Children: []mcts.MoveStats{
			{Move: chess.Move{From: 11, To: 27}, Visits: 10, Value: 0.4},
			{Move: chess.Move{From: 12, To: 28}, Visits: 20, Value: 0.6},
		},
	}
}

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderChart(&buf, chess.New(), testResult()))
	out := buf.String()
	assert.Contains(t, out, "root visits (30 playouts)")
	assert.Contains(t, out, "e2e4")
	assert.Contains(t, out, "d2d4")
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, testResult())
	assert.Contains(t, buf.String(), "move=e2e4")
	assert.Contains(t, buf.String(), "playouts=30")
}

func TestRecord(t *testing.T) {
	db := filepath.Join(t.TempDir(), "searches.db")
	cfg := mcts.MCTSConfig{LimitPlayouts: true, MaxPlayouts: 29, PlayoutDepth: 10}
	require.NoError(t, record(db, chess.New(), cfg, *testResult()))
	require.NoError(t, record(db, chess.New(), cfg, *testResult()))

	repo, err := searchlog.Open(db)
	require.NoError(t, err)
	defer repo.Close()
	recent, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "e2e4", recent[0].Move)
	assert.Equal(t, 30, recent[0].Playouts)
}

func TestWriteStats(t *testing.T) {
	db := filepath.Join(t.TempDir(), "searches.db")
	cfg := mcts.MCTSConfig{LimitPlayouts: true, MaxPlayouts: 29, PlayoutDepth: 10}
	repo, err := searchlog.Open(db)
	require.NoError(t, err)
	defer repo.Close()

	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, repo, chess.New()))
	assert.Equal(t, "no recorded searches\n", buf.String())

	require.NoError(t, repo.InsertSearch(searchlog.NewSearch(chess.New(), cfg, *testResult())))
	require.NoError(t, repo.InsertSearch(searchlog.NewSearch(chess.New(), cfg, *testResult())))
	buf.Reset()
	require.NoError(t, writeStats(&buf, repo, chess.New()))
	assert.Contains(t, buf.String(), "e2e4")
	assert.Contains(t, buf.String(), "searches=2")
	assert.Contains(t, buf.String(), "playouts=60")
}
