package mcts

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rs/zerolog/log"
)

func (mc *MonteCarloAI) dumpTree(t *tree) {
	f, e := os.Create(mc.cfg.DumpTree)
	if e != nil {
		log.Error().Err(e).Msgf("DumpTree(%s)", mc.cfg.DumpTree)
		return
	}
	defer f.Close()
	writeTree(f, t, mc.cfg.C, visitThreshold)
}

// writeTree writes t in graphviz format, omitting subtrees with fewer
// than minVisits visits.
func writeTree(w io.Writer, t *tree, C float64, minVisits int) {
	fmt.Fprintf(w, "digraph G {\n")
	writeTreeNode(w, t, rootID, C, minVisits)
	fmt.Fprintf(w, "}\n")
}

func writeTreeNode(w io.Writer, t *tree, id nodeID, C float64, minVisits int) {
	n := t.node(id)
	parent := n.visits
	if n.parent != noNode {
		parent = t.node(n.parent).visits
	}
	var explore float64
	if n.visits > 0 && parent > 0 {
		explore = C * math.Sqrt(math.Log(float64(parent))/float64(n.visits))
	}
	label := fmt.Sprintf("n=%d v=%.3f+%.3f", n.visits, n.mean(), explore)

	fmt.Fprintf(w, `  n%d [label="%s"]`, id, label)
	fmt.Fprintln(w)
	if n.visits < minVisits {
		return
	}

	for _, c := range n.children {
		if t.node(c).visits < minVisits {
			continue
		}
		fmt.Fprintf(w, `  n%d -> n%d [label="%s"]`, id, c, t.node(c).move)
		fmt.Fprintln(w)
		writeTreeNode(w, t, c, C, minVisits)
	}
}
