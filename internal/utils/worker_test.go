package utils

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	tomb "gopkg.in/tomb.v2"
)

func TestWorkerPool_RunsTasks(t *testing.T) {
	var tb tomb.Tomb
	pool := NewWorkerPool(3)

	var (
		mu   sync.Mutex
		seen []int
		wg   sync.WaitGroup
	)
	pool.Setup(&tb, func(_ *tomb.Tomb, task any) error {
		defer wg.Done()
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, task.(int))
		return nil
	})

	for i := 0; i < 10; i++ {
		wg.Add(1)
		assert.True(t, pool.AddTask(&tb, i))
	}
	wg.Wait()

	tb.Kill(nil)
	assert.NoError(t, tb.Wait())
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)
}

func TestWorkerPool_ErrorKillsTomb(t *testing.T) {
	var tb tomb.Tomb
	pool := NewWorkerPool(2)
	boom := errors.New("boom")

	pool.Setup(&tb, func(*tomb.Tomb, any) error {
		return boom
	})
	pool.AddTask(&tb, "task")

	assert.ErrorIs(t, tb.Wait(), boom)
	assert.False(t, pool.AddTask(&tb, "late"), "a dead pool accepts no tasks")
}
