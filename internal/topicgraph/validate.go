package topicgraph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGraph is wrapped by every validation failure returned from New.
var ErrInvalidGraph = errors.New("invalid topic graph")

// validateTopics performs all structural checks on the given topic set.
// Returns a combined error describing all problems found, or nil if valid.
func validateTopics(topics []Topic) error {
	var errs []string

	idSet := make(map[string]bool, len(topics))

	// Check for empty and duplicate IDs
	for _, t := range topics {
		if t.ID == "" {
			errs = append(errs, "topic with empty ID")
			continue
		}
		if idSet[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate topic ID: %q", t.ID))
		}
		idSet[t.ID] = true
	}

	// Check for dangling and self prerequisites
	for _, t := range topics {
		for _, prereqID := range t.Prerequisites {
			switch {
			case prereqID == t.ID:
				errs = append(errs, fmt.Sprintf("topic %q lists itself as a prerequisite", t.ID))
			case !idSet[prereqID]:
				errs = append(errs, fmt.Sprintf("topic %q references nonexistent prerequisite %q", t.ID, prereqID))
			}
		}
	}

	if len(errs) == 0 {
		if cycle := cycleNodes(topics); len(cycle) > 0 {
			errs = append(errs, fmt.Sprintf("cycle detected involving topics: %s", strings.Join(cycle, ", ")))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidGraph, strings.Join(errs, "\n  "))
	}
	return nil
}

// cycleNodes returns the topics left over after Kahn's algorithm, in input
// order. Empty when the graph is acyclic.
func cycleNodes(topics []Topic) []string {
	inDegree := make(map[string]int, len(topics))
	adjList := make(map[string][]string)
	for _, t := range topics {
		inDegree[t.ID] = len(t.Prerequisites)
		for _, prereqID := range t.Prerequisites {
			adjList[prereqID] = append(adjList[prereqID], t.ID)
		}
	}

	var queue []string
	for _, t := range topics {
		if inDegree[t.ID] == 0 {
			queue = append(queue, t.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if visited == len(topics) {
		return nil
	}
	var cycle []string
	for _, t := range topics {
		if inDegree[t.ID] > 0 {
			cycle = append(cycle, t.ID)
		}
	}
	return cycle
}
