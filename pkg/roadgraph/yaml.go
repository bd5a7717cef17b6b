package roadgraph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EdgeSpec is one road in a graph file. Cost is optional; when present it
// becomes the congestion cost of both directions.
type EdgeSpec struct {
	From NodeID   `yaml:"from"`
	To   NodeID   `yaml:"to"`
	Cost *float64 `yaml:"cost,omitempty"`
}

// Document is the on-disk form of a road network:
//
//	nodes: [1, 2, 3, 4]
//	edges:
//	  - {from: 1, to: 2, cost: 3}
//	  - {from: 2, to: 3}
//
// Listing nodes is only required for isolated intersections and to pin the
// enumeration order; edge endpoints are added on demand.
type Document struct {
	Nodes []NodeID   `yaml:"nodes"`
	Edges []EdgeSpec `yaml:"edges"`
}

// ParseYAML decodes a graph document
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	return &doc, nil
}

// LoadYAML reads and decodes a graph document from path
func LoadYAML(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}
	return ParseYAML(data)
}

// Build materializes the document into a Graph
func (d *Document) Build() (*Graph, error) {
	g := New()
	for _, id := range d.Nodes {
		g.AddNode(id)
	}
	for i, e := range d.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if e.Cost != nil && *e.Cost < 0 {
			return nil, fmt.Errorf("edge %d (%d-%d): negative cost %v", i, e.From, e.To, *e.Cost)
		}
	}
	return g, nil
}

// Document renders the graph back into file form, without costs
func (g *Graph) Document() *Document {
	doc := &Document{Nodes: append([]NodeID(nil), g.order...)}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeSpec{From: e[0], To: e[1]})
	}
	return doc
}

// WriteFile encodes the document as YAML at path
func (d *Document) WriteFile(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write graph %s: %w", path, err)
	}
	return nil
}
