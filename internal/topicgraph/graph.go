package topicgraph

import (
	"fmt"
	"slices"
	"sort"
)

// Graph is an immutable topic DAG with precomputed indices. It is safe for
// concurrent use.
type Graph struct {
	topics     []Topic
	byID       map[string]*Topic
	roots      []Topic
	dependents map[string][]string
	topoOrder  []Topic
	topoIndex  map[string]int
}

// New validates topics and builds the graph. Prerequisite lists are
// de-duplicated.
func New(topics []Topic) (*Graph, error) {
	cloned := make([]Topic, len(topics))
	for i, t := range topics {
		t.Prerequisites = dedupe(t.Prerequisites)
		cloned[i] = t
	}
	if err := validateTopics(cloned); err != nil {
		return nil, err
	}
	return build(cloned), nil
}

// Empty returns a graph with no topics.
func Empty() *Graph {
	return build(nil)
}

// build constructs the indices including topological order (Kahn's
// algorithm). topics must already be valid.
func build(topics []Topic) *Graph {
	gr := &Graph{
		topics:     topics,
		byID:       make(map[string]*Topic, len(topics)),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(topics)),
	}

	// Build ID index
	for i := range gr.topics {
		gr.byID[gr.topics[i].ID] = &gr.topics[i]
	}

	// Build reverse edges (dependents)
	for i := range gr.topics {
		for _, prereqID := range gr.topics[i].Prerequisites {
			gr.dependents[prereqID] = append(gr.dependents[prereqID], gr.topics[i].ID)
		}
	}
	for id := range gr.dependents {
		sort.Strings(gr.dependents[id])
	}

	inDegree := make(map[string]int, len(topics))
	var queue []string
	for i := range topics {
		inDegree[topics[i].ID] = len(topics[i].Prerequisites)
		if len(topics[i].Prerequisites) == 0 {
			queue = append(queue, topics[i].ID)
			gr.roots = append(gr.roots, topics[i])
		}
	}
	// Sort initial queue for deterministic ordering
	sort.Strings(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		gr.topoIndex[id] = len(gr.topoOrder)
		gr.topoOrder = append(gr.topoOrder, *gr.byID[id])

		for _, depID := range gr.dependents[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	return gr
}

// Len returns the number of topics.
func (g *Graph) Len() int {
	return len(g.topics)
}

// Get returns a topic by ID, or error if not found.
func (g *Graph) Get(id string) (Topic, error) {
	t, ok := g.byID[id]
	if !ok {
		return Topic{}, fmt.Errorf("topic not found: %q", id)
	}
	return *t, nil
}

// Has reports whether the graph contains a topic.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Topics returns all topics in declaration order.
func (g *Graph) Topics() []Topic {
	return slices.Clone(g.topics)
}

// Roots returns all topics with no prerequisites.
func (g *Graph) Roots() []Topic {
	return slices.Clone(g.roots)
}

// TopoOrder returns all topics in a valid topological order, prerequisites
// first.
func (g *Graph) TopoOrder() []Topic {
	return slices.Clone(g.topoOrder)
}

// Prerequisites returns the IDs of the direct prerequisites of a topic.
// Unknown topics have none.
func (g *Graph) Prerequisites(id string) []string {
	t, ok := g.byID[id]
	if !ok {
		return nil
	}
	return slices.Clone(t.Prerequisites)
}

// Dependents returns the IDs of topics that directly depend on a topic.
func (g *Graph) Dependents(id string) []string {
	return slices.Clone(g.dependents[id])
}

// Ancestors returns every transitive prerequisite of a topic in
// topological order.
func (g *Graph) Ancestors(id string) []string {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(cur string) {
		for _, p := range g.Prerequisites(cur) {
			if !seen[p] {
				seen[p] = true
				walk(p)
			}
		}
	}
	walk(id)

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return g.topoIndex[out[i]] < g.topoIndex[out[j]]
	})
	return out
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
