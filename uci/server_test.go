package uci

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"

	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/fen"
)

func TestCalcBudget(t *testing.T) {
	cases := []struct {
		Move   time.Duration
		Game   time.Duration
		Inc    time.Duration
		Expect time.Duration
	}{
		{0, 3 * time.Second, 3 * time.Second, 0},
		{time.Second, 3 * time.Second, 3 * time.Second, time.Second},
		{5 * time.Second, 3 * time.Second, 3 * time.Second, 0},
		{0, time.Second, 10 * time.Second, 500 * time.Millisecond},
		{2 * time.Second, 0, 0, 2 * time.Second},
	}
	for _, tc := range cases {
		got := calcBudget(tc.Move, tc.Game, tc.Inc)
		if tc.Expect != 0 {
			assert.Equal(t, tc.Expect, got)
		}
		if tc.Game != 0 {
			assert.Less(t, int64(got), int64(tc.Game))
		}
		if tc.Move != 0 {
			assert.LessOrEqual(t, int64(got), int64(tc.Move))
		}
	}
	assert.Equal(t, time.Duration(0), calcBudget(0, 0, 0))
}

func TestParsePosition(t *testing.T) {
	cases := []struct {
		cmd string
		fen string
	}{
		{"position startpos", fen.StartPosition},
		{
			"position startpos moves e2e4 c7c5",
			"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
		},
		{
			"position fen 6bk/7p/5R2/8/8/8/PB6/K4r2 w - - 0 1",
			"6bk/7p/5R2/8/8/8/PB6/K4r2 w - - 0 1",
		},
		{
			"position fen 6bk/7p/5R2/8/8/8/PB6/K4r2 w - - 0 1 moves b2c1",
			"6bk/7p/5R2/8/8/8/P7/K1B2r2 b - - 1 1",
		},
	}
	for _, tc := range cases {
		p, err := parsePosition(strings.Fields(tc.cmd))
		if !assert.NoError(t, err, tc.cmd) {
			continue
		}
		assert.Equal(t, tc.fen, fen.FormatFEN(p), tc.cmd)
	}

	for _, bad := range []string{
		"position",
		"position tps x5",
		"position startpos e2e4",
		"position startpos moves e2e5",
		"position fen 8/8 w - - 0 1",
	} {
		_, err := parsePosition(strings.Fields(bad))
		assert.Error(t, err, bad)
	}
}

func TestParseGo(t *testing.T) {
	g, err := parseGo(strings.Fields("go wtime 1000 btime 2000 winc 10 binc 20 nodes 5"))
	require.NoError(t, err)
	assert.Equal(t, time.Second, g.clock.White)
	assert.Equal(t, 2*time.Second, g.clock.Black)
	assert.Equal(t, 10*time.Millisecond, g.clock.WInc)
	assert.Equal(t, 20*time.Millisecond, g.clock.BInc)
	assert.Equal(t, 5, g.nodes)

	g, err = parseGo(strings.Fields("go infinite"))
	require.NoError(t, err)
	assert.True(t, g.infinite)

	for _, bad := range []string{"go movetime", "go movetime x", "go nodes -1", "go frobnicate 3"} {
		_, err := parseGo(strings.Fields(bad))
		assert.Error(t, err, bad)
	}
}

func TestBuildConfig(t *testing.T) {
	e := &Engine{}

	cfg := e.buildConfig(goParams{nodes: 100}, chess.White)
	assert.True(t, cfg.LimitPlayouts)
	assert.Equal(t, 99, cfg.MaxPlayouts)
	assert.True(t, cfg.UseTimeLimit)
	assert.True(t, cfg.UseThreading)
	assert.NoError(t, cfg.Validate())

	cfg = e.buildConfig(goParams{clock: TimeControl{White: 20 * time.Second, Black: 40 * time.Second}}, chess.Black)
	assert.Equal(t, 2*time.Second, cfg.Limit)
	assert.False(t, cfg.LimitPlayouts)

	cfg = e.buildConfig(goParams{}, chess.White)
	assert.Equal(t, DefaultMoveTime, cfg.Limit)

	cfg = e.buildConfig(goParams{infinite: true}, chess.White)
	assert.Zero(t, cfg.Limit)
	assert.NoError(t, cfg.Validate())
}

type lockedBuffer struct {
	sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.Lock()
	defer b.Unlock()
	return b.buf.String()
}

func seeded() mcts.MCTSConfig {
	return mcts.MCTSConfig{Seed: 1, PlayoutDepth: 8}
}

func TestSession(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		"uci",
		"isready",
		"ucinewgame",
		"position fen 6bk/7p/5R2/8/8/8/PB6/K4r2 w - - 0 1",
		"go nodes 300",
	}, "\n"))
	var out lockedBuffer
	e := NewEngine(in, &out)
	e.ConfigFactory = seeded
	require.NoError(t, e.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "uciok", lines[2])
	assert.Equal(t, "readyok", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "info time "), lines[4])
	assert.Contains(t, lines[4], " nodes 300 ")
	assert.Contains(t, lines[4], " score cp 32000 ")
	assert.Equal(t, "bestmove f6f1", lines[5])
}

func TestGoWithoutPosition(t *testing.T) {
	var out lockedBuffer
	e := NewEngine(strings.NewReader("go nodes 10\nisready\n"), &out)
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, "readyok\n", out.String())
}

func TestStopInfinite(t *testing.T) {
	r, w := io.Pipe()
	var out lockedBuffer
	e := NewEngine(r, &out)
	e.ConfigFactory = seeded

	errs := make(chan error, 1)
	go func() { errs <- e.Run(context.Background()) }()

	io.WriteString(w, "position startpos moves e2e4\n")
	io.WriteString(w, "go infinite\n")
	time.Sleep(50 * time.Millisecond)
	assert.NotContains(t, out.String(), "bestmove")
	io.WriteString(w, "stop\n")

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "bestmove ")
	}, 5*time.Second, time.Millisecond)

	io.WriteString(w, "quit\n")
	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not quit")
	}
	w.Close()

	last := strings.Split(strings.TrimSpace(out.String()), "\n")
	move, err := chess.ParseMove(strings.TrimPrefix(last[len(last)-1], "bestmove "))
	require.NoError(t, err)
	p, err := parsePosition(strings.Fields("position startpos moves e2e4"))
	require.NoError(t, err)
	_, err = p.Move(move)
	assert.NoError(t, err)
}

func TestCheckmatedPosition(t *testing.T) {
	var out lockedBuffer
	in := strings.NewReader("position fen rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3\ngo nodes 10\n")
	e := NewEngine(in, &out)
	e.ConfigFactory = seeded
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, "bestmove 0000\n", out.String())
}
