package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/NREL/CoolerChips/internal/rbd"
)

// EdgePayload is one connection drawn in the editor. Any extra fields the
// editor sends along (handles, styling) are ignored.
type EdgePayload struct {
	Source string `json:"source" bson:"source" validate:"required"`
	Target string `json:"target" bson:"target" validate:"required"`
}

// NodeDetail carries the values entered for one block.
type NodeDetail struct {
	Reliability Number `json:"reliability" bson:"reliability" validate:"gte=0,lte=1"`
	MTBF        Number `json:"mtbf" bson:"mtbf" validate:"gte=0"`
	MTTR        Number `json:"mttr" bson:"mttr" validate:"gte=0"`
}

// EvaluationRequest is the body of POST /api/send-edges.
type EvaluationRequest struct {
	Edges           []EdgePayload         `json:"edges" validate:"dive"`
	NodeDetails     map[string]NodeDetail `json:"nodeDetails" validate:"dive"`
	CalculationType string                `json:"calculationType" validate:"required"`
}

// Network builds the reducer input from the request.
func (r *EvaluationRequest) Network() (*rbd.Network, error) {
	return buildNetwork(r.Edges, r.NodeDetails)
}

func buildNetwork(edges []EdgePayload, details map[string]NodeDetail) (*rbd.Network, error) {
	components := make(map[string]rbd.Component, len(details))
	for name, d := range details {
		components[name] = rbd.Component{
			Name:        name,
			Reliability: d.Reliability.Float(),
			MTBF:        d.MTBF.Float(),
			MTTR:        d.MTTR.Float(),
		}
	}

	connections := make([]rbd.Connection, len(edges))
	for i, e := range edges {
		connections[i] = rbd.Connection{Source: e.Source, Target: e.Target}
	}
	return rbd.NewNetwork(components, connections)
}

// Fingerprint identifies a request for caching. Map order does not change
// it; edge order does, since it decides which connection a broken cycle loses
// and the order of parallel branches in the expression.
func (r *EvaluationRequest) Fingerprint(metric rbd.Metric, policy rbd.CyclePolicy) string {
	edges := make([]string, len(r.Edges))
	for i, e := range r.Edges {
		edges[i] = e.Source + "\x00" + e.Target
	}

	names := make([]string, 0, len(r.NodeDetails))
	for name := range r.NodeDetails {
		names = append(names, name)
	}
	slices.Sort(names)
	details := make([][4]any, len(names))
	for i, name := range names {
		d := r.NodeDetails[name]
		details[i] = [4]any{name, float64(d.Reliability), float64(d.MTBF), float64(d.MTTR)}
	}

	canonical, _ := json.Marshal(struct {
		Metric  string   `json:"m"`
		Policy  string   `json:"p"`
		Edges   []string `json:"e"`
		Details [][4]any `json:"d"`
	}{metric.String(), policy.String(), edges, details})

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// Evaluation is a stored reducer outcome.
type Evaluation struct {
	Metric      string    `json:"metric" bson:"metric"`
	Value       float64   `json:"value" bson:"value"`
	Expression  string    `json:"expression" bson:"expression"`
	Severed     []string  `json:"severed,omitempty" bson:"severed,omitempty"`
	EvaluatedAt time.Time `json:"evaluatedAt" bson:"evaluatedAt"`
}

// NewEvaluation flattens a reducer result.
func NewEvaluation(res *rbd.Result, at time.Time) Evaluation {
	ev := Evaluation{
		Metric:      res.Metric.String(),
		Value:       res.Value,
		Expression:  res.Expression(),
		EvaluatedAt: at,
	}
	for _, c := range res.Severed {
		ev.Severed = append(ev.Severed, c.String())
	}
	return ev
}

// SeveredList joins the severed connections for log lines.
func (e Evaluation) SeveredList() string {
	return strings.Join(e.Severed, ",")
}
