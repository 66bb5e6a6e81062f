// Package topology mirrors saved diagrams into Neo4j so they can be browsed
// and queried as graphs.
package topology

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/NREL/CoolerChips/internal/models"
)

// ErrNotMirrored is returned when a diagram has no nodes in the graph store.
var ErrNotMirrored = errors.New("diagram not mirrored")

const edgeType = "FEEDS"

type Node struct {
	Name        string  `json:"name"`
	Reliability float64 `json:"reliability"`
	MTBF        float64 `json:"mtbf"`
	MTTR        float64 `json:"mttr"`
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

type GraphResponse struct {
	Root  string `json:"root"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Mirror keeps a copy of each diagram in a graph store.
type Mirror interface {
	Sync(ctx context.Context, d *models.Diagram) error
	Delete(ctx context.Context, diagramID string) error
	Graph(ctx context.Context, diagramID string) (*GraphResponse, error)
}

type Neo4jMirror struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jMirror(driver neo4j.DriverWithContext) *Neo4jMirror {
	return &Neo4jMirror{driver: driver, database: "neo4j"}
}

// Sync replaces the mirrored copy of d.
func (m *Neo4jMirror) Sync(ctx context.Context, d *models.Diagram) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	session := m.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: m.database, AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	params := syncParams(d)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `MATCH (c:Component {diagram: $diagram}) DETACH DELETE c`, params); err != nil {
			return nil, err
		}
		if _, err := tx.Run(ctx, `
			UNWIND $nodes AS n
			CREATE (:Component {diagram: $diagram, name: n.name, position: n.position,
				reliability: n.reliability, mtbf: n.mtbf, mttr: n.mttr})`, params); err != nil {
			return nil, err
		}
		_, err := tx.Run(ctx, `
			UNWIND $edges AS e
			MATCH (a:Component {diagram: $diagram, name: e.source})
			MATCH (b:Component {diagram: $diagram, name: e.target})
			MERGE (a)-[:`+edgeType+`]->(b)`, params)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("mirror diagram %s: %w", d.ID.Hex(), err)
	}
	return nil
}

func (m *Neo4jMirror) Delete(ctx context.Context, diagramID string) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	session := m.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: m.database, AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `MATCH (c:Component {diagram: $diagram}) DETACH DELETE c`, map[string]any{"diagram": diagramID})
	})
	if err != nil {
		return fmt.Errorf("delete mirror %s: %w", diagramID, err)
	}
	return nil
}

// Graph reads a mirrored diagram back.
func (m *Neo4jMirror) Graph(ctx context.Context, diagramID string) (*GraphResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	session := m.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: m.database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	cypher := `
	MATCH (n:Component {diagram: $diagram})
	WITH collect(n) AS nodes
	OPTIONAL MATCH (a:Component {diagram: $diagram})-[r:` + edgeType + `]->(:Component {diagram: $diagram})
	RETURN nodes, collect(r) AS edges
	`
	result, err := session.Run(ctx, cypher, map[string]any{"diagram": diagramID})
	if err != nil {
		return nil, fmt.Errorf("read mirror %s: %w", diagramID, err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("read mirror %s: %w", diagramID, err)
		}
		return nil, ErrNotMirrored
	}

	rec := result.Record()
	rawNodes, _ := rec.Values[0].([]any)
	rawEdges, _ := rec.Values[1].([]any)
	if len(rawNodes) == 0 {
		return nil, ErrNotMirrored
	}
	return graphFromRecord(rawNodes, rawEdges), nil
}

func syncParams(d *models.Diagram) map[string]any {
	names := make([]string, 0, len(d.NodeDetails))
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, e := range d.Edges {
		add(e.Source)
		add(e.Target)
	}
	// Components without connections are mirrored after the connected ones.
	var rest []string
	for name := range d.NodeDetails {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		add(name)
	}

	nodes := make([]map[string]any, len(names))
	for i, name := range names {
		detail := d.NodeDetails[name]
		nodes[i] = map[string]any{
			"name":        name,
			"position":    i,
			"reliability": detail.Reliability.Float(),
			"mtbf":        detail.MTBF.Float(),
			"mttr":        detail.MTTR.Float(),
		}
	}

	edges := make([]map[string]any, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = map[string]any{"source": e.Source, "target": e.Target}
	}

	return map[string]any{"diagram": d.ID.Hex(), "nodes": nodes, "edges": edges}
}

func graphFromRecord(rawNodes, rawEdges []any) *GraphResponse {
	type positioned struct {
		node     Node
		position int64
	}

	idToName := map[string]string{}
	var nodes []positioned
	for _, n := range rawNodes {
		node, ok := n.(dbtype.Node)
		if !ok {
			continue
		}
		name, ok := node.Props["name"].(string)
		if !ok {
			continue
		}
		idToName[node.ElementId] = name
		position, _ := node.Props["position"].(int64)
		nodes = append(nodes, positioned{
			node: Node{
				Name:        name,
				Reliability: floatProp(node.Props, "reliability"),
				MTBF:        floatProp(node.Props, "mtbf"),
				MTTR:        floatProp(node.Props, "mttr"),
			},
			position: position,
		})
	}
	slices.SortStableFunc(nodes, func(a, b positioned) int {
		return cmp.Compare(a.position, b.position)
	})

	graph := &GraphResponse{Nodes: make([]Node, len(nodes)), Edges: []Edge{}}
	for i, p := range nodes {
		graph.Nodes[i] = p.node
	}

	hasIncoming := map[string]bool{}
	for _, r := range rawEdges {
		rel, ok := r.(dbtype.Relationship)
		if !ok {
			continue
		}
		src := idToName[rel.StartElementId]
		tgt := idToName[rel.EndElementId]
		if src != "" && tgt != "" {
			graph.Edges = append(graph.Edges, Edge{Source: src, Target: tgt, Type: rel.Type})
			hasIncoming[tgt] = true
		}
	}

	for _, n := range graph.Nodes {
		if !hasIncoming[n.Name] {
			graph.Root = n.Name
			break
		}
	}
	return graph
}

func floatProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}
