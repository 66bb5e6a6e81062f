package rbd

// Options tunes a reduction.
type Options struct {
	Cycles CyclePolicy
}

// Result is the outcome of reducing a network.
type Result struct {
	Metric  Metric
	Value   float64
	Root    string
	Block   *Block
	Severed []Connection
}

// Expression renders the reduced block structure.
func (r *Result) Expression() string {
	return r.Block.String()
}

// spEdge is an edge of the two-terminal graph the network is lowered to.
// Components become edges carrying their value, connections become perfect
// links (block nil, value 1).
type spEdge struct {
	from, to int
	value    float64
	block    *Block
}

// Reduce collapses the network into a single value for the metric.
//
// The network must have exactly one entry point once cycles are dealt with.
// Fan-outs are combined in parallel, chains in series; branches that join
// again are combined where they meet, so a shared downstream block counts
// once. Topologies that series and parallel steps cannot collapse, such as a
// bridge, are rejected with *NotSeriesParallelError.
func Reduce(n *Network, metric Metric, opts Options) (*Result, error) {
	if n == nil || n.Len() == 0 {
		return nil, ErrEmptyNetwork
	}

	work := n
	var severed []Connection
	if cycles := DetectCycles(n); len(cycles) > 0 {
		if opts.Cycles != CycleBreak {
			return nil, &CycleError{Cycles: cycles}
		}
		work, severed = BreakCycles(n)
	}

	roots := work.Roots()
	switch {
	case len(roots) == 0:
		return nil, &NoRootError{}
	case len(roots) > 1:
		return nil, &MultipleRootsError{Roots: roots}
	}

	values := make(map[string]float64, work.Len())
	for _, name := range work.order {
		v, err := metric.ValueOf(work.nodes[name].component)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}

	block, err := reduceSeriesParallel(work, roots[0], values)
	if err != nil {
		return nil, err
	}

	return &Result{
		Metric:  metric,
		Value:   block.Value,
		Root:    roots[0],
		Block:   block,
		Severed: severed,
	}, nil
}

func reduceSeriesParallel(n *Network, root string, values map[string]float64) (*Block, error) {
	index := make(map[string]int, n.Len())
	for i, name := range n.order {
		index[name] = i
	}
	in := func(name string) int { return 2 * index[name] }
	out := func(name string) int { return 2*index[name] + 1 }
	source := in(root)
	terminal := 2 * n.Len()

	var edges []*spEdge
	for _, name := range n.order {
		edges = append(edges, &spEdge{
			from:  in(name),
			to:    out(name),
			value: values[name],
			block: &Block{Kind: BlockComponent, Name: name, Value: values[name]},
		})
	}
	for _, name := range n.order {
		nd := n.nodes[name]
		for _, next := range nd.outgoing {
			edges = append(edges, &spEdge{from: out(name), to: in(next), value: 1})
		}
		if len(nd.outgoing) == 0 {
			edges = append(edges, &spEdge{from: out(name), to: terminal, value: 1})
		}
	}

	for {
		if len(edges) == 1 && edges[0].from == source && edges[0].to == terminal {
			b := edges[0].block
			if b == nil {
				b = &Block{Kind: BlockLink, Value: 1}
			}
			return b, nil
		}
		var merged bool
		if edges, merged = mergeParallel(edges); merged {
			continue
		}
		if edges, merged = mergeSeries(edges, source, terminal); merged {
			continue
		}
		return nil, &NotSeriesParallelError{Remaining: remainingBlocks(edges)}
	}
}

// mergeParallel folds every group of edges sharing both endpoints into one.
func mergeParallel(edges []*spEdge) ([]*spEdge, bool) {
	type pair struct{ from, to int }
	groups := make(map[pair][]*spEdge)
	var keys []pair
	for _, e := range edges {
		k := pair{e.from, e.to}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], e)
	}
	if len(keys) == len(edges) {
		return edges, false
	}

	out := make([]*spEdge, 0, len(keys))
	for _, k := range keys {
		group := groups[k]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		blocks := make([]*Block, len(group))
		for i, e := range group {
			blocks[i] = e.block
		}
		b := parallelBlock(blocks)
		out = append(out, &spEdge{from: k.from, to: k.to, value: b.Value, block: b})
	}
	return out, true
}

// mergeSeries joins the two edges around the first inner vertex that has
// exactly one edge in and one edge out.
func mergeSeries(edges []*spEdge, source, terminal int) ([]*spEdge, bool) {
	inDeg := make(map[int]int)
	outDeg := make(map[int]int)
	for _, e := range edges {
		outDeg[e.from]++
		inDeg[e.to]++
	}

	for v := 0; v < terminal; v++ {
		if v == source || inDeg[v] != 1 || outDeg[v] != 1 {
			continue
		}
		var a, b int = -1, -1
		for i, e := range edges {
			if e.to == v {
				a = i
			}
			if e.from == v {
				b = i
			}
		}
		block := seriesBlock(edges[a].block, edges[b].block)
		joined := &spEdge{from: edges[a].from, to: edges[b].to, value: edges[a].value * edges[b].value, block: block}
		if block != nil {
			joined.value = block.Value
		}

		out := make([]*spEdge, 0, len(edges)-1)
		for i, e := range edges {
			switch i {
			case a:
				out = append(out, joined)
			case b:
			default:
				out = append(out, e)
			}
		}
		return out, true
	}
	return edges, false
}

func remainingBlocks(edges []*spEdge) []string {
	var names []string
	for _, e := range edges {
		if e.block != nil {
			names = append(names, e.block.String())
		}
	}
	return names
}
