package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(2, setupTestLogger())

	first := newFakeTask("one")
	require.NoError(t, q.Enqueue(first))
	require.NoError(t, q.Enqueue(newFakeTask("two")))
	assert.Equal(t, 2, q.Len())

	err := q.Enqueue(newFakeTask("three"))
	assert.ErrorIs(t, err, ErrQueueFull)

	got := <-q.GetChannel()
	assert.Equal(t, first.ID(), got.ID())

	q.Close()
	q.Close()
	assert.ErrorIs(t, q.Enqueue(newFakeTask("four")), ErrQueueClosed)

	// Remaining tasks can still be drained after Close.
	_, ok := <-q.GetChannel()
	assert.True(t, ok)
	_, ok = <-q.GetChannel()
	assert.False(t, ok)
}

func TestNewTaskQueueMinimumSize(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(0, nil)
	require.NoError(t, q.Enqueue(newFakeTask("only")))
	assert.ErrorIs(t, q.Enqueue(newFakeTask("more")), ErrQueueFull)
}
