// Package graph builds the dependency graph of a composition from its
// ordering constraints, detects cycles and derives an execution order.
package graph

import (
	"strings"

	"go.uber.org/zap"

	"github.com/codervisor/combo-skills/internal/definition"
)

// Separator splits an ordering constraint into identity keys.
const Separator = "->"

// DependencyNode is one declared component and its direct ordering edges.
type DependencyNode struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Predecessors []string `json:"predecessors"`
	Successors   []string `json:"successors"`
}

func (n *DependencyNode) addPredecessor(key string) {
	if !contains(n.Predecessors, key) {
		n.Predecessors = append(n.Predecessors, key)
	}
}

func (n *DependencyNode) addSuccessor(key string) {
	if !contains(n.Successors, key) {
		n.Successors = append(n.Successors, key)
	}
}

// Cycle is a closed walk of identity keys; the first and last keys are equal.
type Cycle []string

// String renders the cycle as "a -> b -> a".
func (c Cycle) String() string {
	return strings.Join(c, " "+Separator+" ")
}

// Graph is built fresh for every resolution call.
//
// HasCycles is true exactly when Cycles is non-empty. ExecutionOrder is empty
// when the graph is cyclic and otherwise lists every key once.
type Graph struct {
	Nodes          map[string]*DependencyNode `json:"nodes"`
	Keys           []string                   `json:"keys"`
	HasCycles      bool                       `json:"hasCycles"`
	Cycles         []Cycle                    `json:"cycles"`
	ExecutionOrder []string                   `json:"executionOrder"`
}

// Node returns the node for key, or nil.
func (g *Graph) Node(key string) *DependencyNode {
	return g.Nodes[key]
}

// Levels groups the execution order into layers whose members have no
// ordering constraint between them. Each key sits one layer after its
// deepest predecessor. Returns nil for a cyclic graph.
func (g *Graph) Levels() [][]string {
	if g.HasCycles {
		return nil
	}

	depth := make(map[string]int, len(g.ExecutionOrder))
	var levels [][]string
	for _, key := range g.ExecutionOrder {
		d := 0
		for _, pred := range g.Nodes[key].Predecessors {
			if depth[pred]+1 > d {
				d = depth[pred] + 1
			}
		}
		depth[key] = d
		if d == len(levels) {
			levels = append(levels, nil)
		}
		levels[d] = append(levels[d], key)
	}
	return levels
}

// Builder constructs dependency graphs.
type Builder struct {
	logger *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for skipped constraints and duplicate keys.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder. Without options it logs nowhere.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build creates the dependency graph of def with a silent builder.
func Build(def *definition.Composition) *Graph {
	return NewBuilder().Build(def)
}

// Build creates one node per component reference, adds the edges of every
// ordering constraint, detects cycles and, when there are none, computes a
// topological execution order.
//
// Two references with the same identity key collapse into one node; the
// later reference wins.
func (b *Builder) Build(def *definition.Composition) *Graph {
	g := &Graph{
		Nodes:          make(map[string]*DependencyNode, len(def.Skills)),
		Keys:           make([]string, 0, len(def.Skills)),
		Cycles:         []Cycle{},
		ExecutionOrder: []string{},
	}

	for _, skill := range def.Skills {
		key := skill.Key()
		if _, exists := g.Nodes[key]; exists {
			b.logger.Warn("duplicate skill identity key, later reference wins",
				zap.String("key", key),
				zap.String("name", skill.Name))
		} else {
			g.Keys = append(g.Keys, key)
		}
		g.Nodes[key] = &DependencyNode{
			Key:          key,
			Name:         skill.Name,
			Predecessors: []string{},
			Successors:   []string{},
		}
	}

	for _, constraint := range def.Constraints.Order {
		keys := SplitChain(constraint)
		if len(keys) < 2 {
			b.logger.Warn("skipping ordering constraint with fewer than two skills",
				zap.String("constraint", constraint))
			continue
		}

		for i := 0; i+1 < len(keys); i++ {
			from, to := g.Nodes[keys[i]], g.Nodes[keys[i+1]]
			if from == nil || to == nil {
				b.logger.Debug("ordering constraint names an undeclared skill",
					zap.String("constraint", constraint),
					zap.String("from", keys[i]),
					zap.String("to", keys[i+1]))
				continue
			}
			to.addPredecessor(from.Key)
			from.addSuccessor(to.Key)
		}
	}

	g.Cycles = detectCycles(g)
	g.HasCycles = len(g.Cycles) > 0
	if !g.HasCycles {
		g.ExecutionOrder = topologicalOrder(g)
	}

	b.logger.Debug("built dependency graph",
		zap.Int("nodes", len(g.Keys)),
		zap.Int("cycles", len(g.Cycles)),
		zap.Strings("order", g.ExecutionOrder))

	return g
}

// SplitChain splits an ordering constraint on the separator, trimming
// whitespace and dropping empty segments.
func SplitChain(constraint string) []string {
	parts := strings.Split(constraint, Separator)
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
