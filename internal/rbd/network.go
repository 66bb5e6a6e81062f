package rbd

import (
	"slices"
	"sort"
)

type node struct {
	component Component
	outgoing  []string
	incoming  []string
}

// Network is the block diagram as an explicit adjacency structure. Node order
// is the order in which components first appear in the connection list.
type Network struct {
	order []string
	nodes map[string]*node
}

// NewNetwork builds a network from component details and connections.
//
// Only components referenced by a connection become nodes. When there are no
// connections at all, every supplied component is a node, so a single
// isolated component is a valid network.
func NewNetwork(components map[string]Component, connections []Connection) (*Network, error) {
	n := &Network{nodes: make(map[string]*node)}

	add := func(name string) error {
		if _, ok := n.nodes[name]; ok {
			return nil
		}
		c, ok := components[name]
		if !ok {
			return &UnknownComponentError{Name: name}
		}
		c.Name = name
		n.nodes[name] = &node{component: c}
		n.order = append(n.order, name)
		return nil
	}

	if len(connections) == 0 {
		names := make([]string, 0, len(components))
		for name := range components {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := add(name); err != nil {
				return nil, err
			}
		}
	}

	for _, conn := range connections {
		if err := add(conn.Source); err != nil {
			return nil, err
		}
		if err := add(conn.Target); err != nil {
			return nil, err
		}
		src := n.nodes[conn.Source]
		if slices.Contains(src.outgoing, conn.Target) {
			continue
		}
		src.outgoing = append(src.outgoing, conn.Target)
		n.nodes[conn.Target].incoming = append(n.nodes[conn.Target].incoming, conn.Source)
	}

	if len(n.order) == 0 {
		return nil, ErrEmptyNetwork
	}
	return n, nil
}

// Len returns the number of components in the network.
func (n *Network) Len() int { return len(n.order) }

// Names returns component names in declaration order.
func (n *Network) Names() []string { return slices.Clone(n.order) }

// Component returns the named component.
func (n *Network) Component(name string) (Component, bool) {
	nd, ok := n.nodes[name]
	if !ok {
		return Component{}, false
	}
	return nd.component, true
}

// ConnectedTo lists the components fed by name, in connection order.
func (n *Network) ConnectedTo(name string) []string {
	if nd, ok := n.nodes[name]; ok {
		return slices.Clone(nd.outgoing)
	}
	return nil
}

// ConnectedFrom lists the components feeding name, in connection order.
func (n *Network) ConnectedFrom(name string) []string {
	if nd, ok := n.nodes[name]; ok {
		return slices.Clone(nd.incoming)
	}
	return nil
}

// Roots returns the components without incoming connections.
func (n *Network) Roots() []string {
	var roots []string
	for _, name := range n.order {
		if len(n.nodes[name].incoming) == 0 {
			roots = append(roots, name)
		}
	}
	return roots
}

// Sinks returns the components without outgoing connections.
func (n *Network) Sinks() []string {
	var sinks []string
	for _, name := range n.order {
		if len(n.nodes[name].outgoing) == 0 {
			sinks = append(sinks, name)
		}
	}
	return sinks
}

// Connections returns every edge, grouped by source in declaration order.
func (n *Network) Connections() []Connection {
	var conns []Connection
	for _, name := range n.order {
		for _, to := range n.nodes[name].outgoing {
			conns = append(conns, Connection{Source: name, Target: to})
		}
	}
	return conns
}

func (n *Network) clone() *Network {
	c := &Network{
		order: slices.Clone(n.order),
		nodes: make(map[string]*node, len(n.nodes)),
	}
	for name, nd := range n.nodes {
		c.nodes[name] = &node{
			component: nd.component,
			outgoing:  slices.Clone(nd.outgoing),
			incoming:  slices.Clone(nd.incoming),
		}
	}
	return c
}

// sever removes the connection from both of its endpoints.
func (n *Network) sever(conn Connection) {
	if src, ok := n.nodes[conn.Source]; ok {
		src.outgoing = slices.DeleteFunc(src.outgoing, func(s string) bool { return s == conn.Target })
	}
	if dst, ok := n.nodes[conn.Target]; ok {
		dst.incoming = slices.DeleteFunc(dst.incoming, func(s string) bool { return s == conn.Source })
	}
}
