package mcts

import (
	"math"

	"github.com/nelhage/chesstician/chess"
)

// nodeID indexes tree.nodes. IDs stay valid as the arena grows;
// *node pointers do not survive an append.
type nodeID int32

const (
	noNode nodeID = -1
	rootID nodeID = 0
)

type node struct {
	position *chess.Position
	move     chess.Move
	// moves are the legal moves from position, in generator order.
	moves []chess.Move

	parent   nodeID
	children []nodeID

	value  float64
	visits int
}

func (n *node) record(v float64) {
	n.visits++
	n.value += v
}

func (n *node) fullyExpanded() bool {
	return len(n.children) == len(n.moves)
}

func (n *node) terminal() bool {
	return len(n.moves) == 0
}

func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.value / float64(n.visits)
}

type tree struct {
	nodes []node
	gen   *chess.MoveGenerator
}

func newTree(p *chess.Position, gen *chess.MoveGenerator) *tree {
	t := &tree{gen: gen}
	t.newNode(noNode, p, chess.NullMove)
	return t
}

func (t *tree) node(id nodeID) *node {
	return &t.nodes[id]
}

func (t *tree) newNode(parent nodeID, p *chess.Position, m chess.Move) nodeID {
	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		position: p,
		move:     m,
		moves:    t.gen.Generate(p, parent == noNode),
		parent:   parent,
	})
	return id
}

func (t *tree) addChild(parent, child nodeID) {
	t.nodes[parent].children = append(t.nodes[parent].children, child)
}

// ucb scores child c of a parent with parentVisits visits. Unvisited
// children score +Inf.
func (t *tree) ucb(c nodeID, parentVisits int, C float64) float64 {
	n := t.node(c)
	if n.visits == 0 {
		return math.Inf(1)
	}
	return n.mean() + C*math.Sqrt(math.Log(float64(parentVisits))/float64(n.visits))
}

// bestChild returns the child of id with the highest UCB score. The
// first child wins ties.
func (t *tree) bestChild(id nodeID, C float64) nodeID {
	n := t.node(id)
	best := noNode
	val := math.Inf(-1)
	for _, c := range n.children {
		s := t.ucb(c, n.visits, C)
		if best == noNode || s > val {
			best = c
			val = s
		}
	}
	return best
}

// descend walks from the root through fully expanded nodes and stops
// at the first node that is terminal or still has untried moves.
func (t *tree) descend(C float64) nodeID {
	id := rootID
	for {
		n := t.node(id)
		if n.terminal() || !n.fullyExpanded() {
			return id
		}
		id = t.bestChild(id, C)
	}
}

// expand adds the next untried move of id as a new child and returns
// it. Untried moves are taken from the end of the move list. Terminal
// nodes are returned unchanged.
func (t *tree) expand(id nodeID) nodeID {
	n := t.node(id)
	if n.terminal() || n.fullyExpanded() {
		return id
	}
	m := n.moves[len(n.moves)-1-len(n.children)]
	next := n.position.Play(m)
	child := t.newNode(id, next, m)
	t.addChild(id, child)
	return child
}

// backpropagate records value at id, which is from the point of view
// of the player who moved into id, and alternates it up to the root.
func (t *tree) backpropagate(id nodeID, value float64) {
	for id != noNode {
		n := t.node(id)
		n.record(value)
		value = 1 - value
		id = n.parent
	}
}

// mostVisited returns the child of id with the most visits, or noNode
// if id has no children. The first child wins ties.
func (t *tree) mostVisited(id nodeID) nodeID {
	best := noNode
	for _, c := range t.node(id).children {
		if best == noNode || t.node(c).visits > t.node(best).visits {
			best = c
		}
	}
	return best
}

// pv follows the most visited children from the root while they have
// at least minVisits visits.
func (t *tree) pv(minVisits int) []chess.Move {
	var ms []chess.Move
	id := t.mostVisited(rootID)
	for id != noNode && t.node(id).visits >= minVisits {
		ms = append(ms, t.node(id).move)
		id = t.mostVisited(id)
	}
	return ms
}
