// Package topicgraph holds the prerequisite DAG between the topics of an
// item pool.
package topicgraph

// Topic is a node in the prerequisite graph.
type Topic struct {
	ID            string   `json:"id"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"` // topic IDs that must be mastered first
}

// DisplayName returns Name, or ID when the topic has no name.
func (t Topic) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}
