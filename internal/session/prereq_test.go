package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrereqQueue_EnqueueUnique(t *testing.T) {
	q := NewPrereqQueue()
	q.Enqueue("anatomy", "physio", "", "anatomy")
	q.Enqueue("physio")

	assert.Equal(t, []string{"anatomy", "physio"}, q.Pending())
	assert.Equal(t, 2, q.Len())

	q.Remove("anatomy")
	q.Remove("missing")
	assert.Equal(t, []string{"physio"}, q.Pending())
}

func TestPrereqQueue_Mastered(t *testing.T) {
	q := NewPrereqQueue()
	calls := 0
	compute := func() bool {
		calls++
		return true
	}

	assert.True(t, q.Mastered("anatomy", compute))
	assert.True(t, q.Mastered("anatomy", compute))
	assert.Equal(t, 1, calls)

	q.InvalidateTopic("anatomy")
	q.Mastered("anatomy", compute)
	assert.Equal(t, 2, calls)
}

func TestPrereqQueue_InvalidatedDuringCompute(t *testing.T) {
	q := NewPrereqQueue()
	stale := q.Mastered("anatomy", func() bool {
		// A write to the topic lands while the old snapshot is evaluated.
		q.InvalidateTopic("anatomy")
		return false
	})
	assert.False(t, stale)
	assert.True(t, q.Mastered("anatomy", func() bool { return true }), "stale result is not memoized")

	q = NewPrereqQueue()
	q.Mastered("renal", func() bool {
		q.Reset()
		return false
	})
	assert.True(t, q.Mastered("renal", func() bool { return true }))
}

func TestPrereqQueue_Reset(t *testing.T) {
	q := NewPrereqQueue()
	q.Enqueue("anatomy")
	q.Mastered("anatomy", func() bool { return false })

	q.Reset()
	assert.Equal(t, 0, q.Len())
	assert.True(t, q.Mastered("anatomy", func() bool { return true }))
}

func TestPrereqQueue_Concurrent(t *testing.T) {
	q := NewPrereqQueue()
	topics := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			topic := topics[i%len(topics)]
			q.Enqueue(topic)
			q.Mastered(topic, func() bool { return false })
			q.InvalidateTopic(topic)
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, topics, q.Pending())
}
