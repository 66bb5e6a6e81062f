package rbd

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// BlockKind tells how a reduced block combines its children.
type BlockKind int

const (
	BlockComponent BlockKind = iota
	BlockSeries
	BlockParallel
	// BlockLink is a bare connection running in parallel with other paths.
	BlockLink
)

func (k BlockKind) String() string {
	switch k {
	case BlockComponent:
		return "component"
	case BlockSeries:
		return "series"
	case BlockParallel:
		return "parallel"
	case BlockLink:
		return "link"
	default:
		return "unknown"
	}
}

// MarshalText lets the kind travel as its name in JSON.
func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Block is a node of the reduced block tree.
type Block struct {
	Kind     BlockKind `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Value    float64   `json:"value"`
	Children []*Block  `json:"children,omitempty"`
}

// String renders the block as an expression, e.g. series(R, parallel(X, Y)).
func (b *Block) String() string {
	if b == nil {
		return ""
	}
	switch b.Kind {
	case BlockComponent:
		return b.Name
	case BlockLink:
		return "link"
	}
	parts := make([]string, 0, len(b.Children))
	for _, c := range b.Children {
		parts = append(parts, c.String())
	}
	return b.Kind.String() + "(" + strings.Join(parts, ", ") + ")"
}

// Series combines independent blocks that must all work.
func Series(values ...float64) float64 {
	if len(values) == 0 {
		return 1
	}
	return floats.Prod(values)
}

// Parallel combines independent redundant paths: 1 - prod(1 - v).
func Parallel(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	failures := make([]float64, len(values))
	for i, v := range values {
		failures[i] = 1 - v
	}
	return 1 - floats.Prod(failures)
}

// seriesBlock joins two blocks in series. nil stands for a perfect link and
// vanishes.
func seriesBlock(a, b *Block) *Block {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	children := slices.Concat(flatten(a, BlockSeries), flatten(b, BlockSeries))
	return &Block{Kind: BlockSeries, Value: Series(childValues(children)...), Children: children}
}

func parallelBlock(blocks []*Block) *Block {
	var children []*Block
	for _, b := range blocks {
		if b == nil {
			b = &Block{Kind: BlockLink, Value: 1}
		}
		children = append(children, flatten(b, BlockParallel)...)
	}
	return &Block{Kind: BlockParallel, Value: Parallel(childValues(children)...), Children: children}
}

func flatten(b *Block, kind BlockKind) []*Block {
	if b.Kind == kind {
		return b.Children
	}
	return []*Block{b}
}

func childValues(children []*Block) []float64 {
	values := make([]float64, len(children))
	for i, c := range children {
		values[i] = c.Value
	}
	return values
}
