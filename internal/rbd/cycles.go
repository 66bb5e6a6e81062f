package rbd

import "strings"

// Cycle is a feedback loop as a sequence of component names. The last
// component connects back to the first.
type Cycle []string

func (c Cycle) String() string {
	if len(c) == 0 {
		return ""
	}
	return strings.Join(c, "->") + "->" + c[0]
}

// CyclePolicy decides what the reducer does with feedback loops.
type CyclePolicy int

const (
	// CycleReject fails the reduction with a *CycleError.
	CycleReject CyclePolicy = iota
	// CycleBreak severs every back edge found by a depth-first walk and
	// reduces what is left.
	CycleBreak
)

func (p CyclePolicy) String() string {
	if p == CycleBreak {
		return "break"
	}
	return "reject"
}

// ParseCyclePolicy accepts "reject" or "break"; anything else is reject.
func ParseCyclePolicy(s string) CyclePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "break") {
		return CycleBreak
	}
	return CycleReject
}

// DetectCycles finds the cycles closed by each back edge of a depth-first walk
// started from the roots, then from any component not yet visited.
func DetectCycles(n *Network) []Cycle {
	cycles, _ := walkBackEdges(n)
	return cycles
}

// BreakCycles returns a copy of the network with every back edge severed on
// both sides, and the connections that were removed. An acyclic network comes
// back unchanged.
func BreakCycles(n *Network) (*Network, []Connection) {
	_, back := walkBackEdges(n)
	if len(back) == 0 {
		return n, nil
	}
	out := n.clone()
	for _, conn := range back {
		out.sever(conn)
	}
	return out, back
}

func walkBackEdges(n *Network) ([]Cycle, []Connection) {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // done
	)

	color := make(map[string]int, len(n.order))
	parent := make(map[string]string, len(n.order))
	var cycles []Cycle
	var back []Connection

	var visit func(name string)
	visit = func(name string) {
		color[name] = gray
		for _, next := range n.nodes[name].outgoing {
			switch color[next] {
			case white:
				parent[next] = name
				visit(next)
			case gray:
				back = append(back, Connection{Source: name, Target: next})
				cycles = append(cycles, extractCycle(next, name, parent))
			}
		}
		color[name] = black
	}

	starts := append(n.Roots(), n.order...)
	for _, name := range starts {
		if color[name] == white {
			visit(name)
		}
	}
	return cycles, back
}

// extractCycle follows parent links from end back to start.
func extractCycle(start, end string, parent map[string]string) Cycle {
	var rev []string
	for cur := end; cur != start; {
		rev = append(rev, cur)
		p, ok := parent[cur]
		if !ok {
			break
		}
		cur = p
	}
	cycle := Cycle{start}
	for i := len(rev) - 1; i >= 0; i-- {
		cycle = append(cycle, rev[i])
	}
	return cycle
}
