package session

import "sync"

// PrerequisiteSource resolves the prerequisite topics of a topic. It is
// injected into the Composer at construction.
type PrerequisiteSource interface {
	Prerequisites(topic string) []string
}

// NoPrerequisites is a PrerequisiteSource for pools without a topic graph.
type NoPrerequisites struct{}

func (NoPrerequisites) Prerequisites(string) []string { return nil }

// PrereqQueue holds prerequisite topics queued after failed answers, plus
// memoized topic mastery lookups. It is owned by the caller and must be
// invalidated with InvalidateTopic whenever an item of a topic is written.
type PrereqQueue struct {
	mu       sync.Mutex
	pending  []string
	mastered map[string]bool
	gen      map[string]uint64
	resets   uint64
}

// NewPrereqQueue creates an empty queue.
func NewPrereqQueue() *PrereqQueue {
	return &PrereqQueue{mastered: make(map[string]bool), gen: make(map[string]uint64)}
}

// Enqueue appends topics not already pending.
func (q *PrereqQueue) Enqueue(topics ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range topics {
		if t == "" || q.indexLocked(t) >= 0 {
			continue
		}
		q.pending = append(q.pending, t)
	}
}

// Remove drops a topic from the pending list.
func (q *PrereqQueue) Remove(topic string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i := q.indexLocked(topic); i >= 0 {
		q.pending = append(q.pending[:i], q.pending[i+1:]...)
	}
}

// Pending returns the queued topics, oldest first.
func (q *PrereqQueue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.pending...)
}

// Len returns the number of queued topics.
func (q *PrereqQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Mastered returns the memoized mastery of topic, calling compute on a miss.
// A result is only memoized when the topic was not invalidated while
// compute ran.
func (q *PrereqQueue) Mastered(topic string, compute func() bool) bool {
	q.mu.Lock()
	if v, ok := q.mastered[topic]; ok {
		q.mu.Unlock()
		return v
	}
	gen, resets := q.gen[topic], q.resets
	q.mu.Unlock()

	v := compute()

	q.mu.Lock()
	if q.gen[topic] == gen && q.resets == resets {
		q.mastered[topic] = v
	}
	q.mu.Unlock()
	return v
}

// InvalidateTopic forgets the memoized mastery of topic.
func (q *PrereqQueue) InvalidateTopic(topic string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.mastered, topic)
	q.gen[topic]++
}

// Reset clears the queue and every memoized lookup.
func (q *PrereqQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = nil
	q.mastered = make(map[string]bool)
	q.resets++
}

func (q *PrereqQueue) indexLocked(topic string) int {
	for i, t := range q.pending {
		if t == topic {
			return i
		}
	}
	return -1
}
