package starlark

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.starlark.net/starlark"
)

func TestThreadPoolReuse(t *testing.T) {
	pool := NewThreadPool(5)

	first := pool.Get("model.sql")
	assert.Equal(t, "model.sql", first.Name)
	pool.Put(first)
	assert.Equal(t, 1, pool.Size())

	second := pool.Get("other.sql")
	assert.Same(t, first, second)
	assert.Equal(t, "other.sql", second.Name)
	assert.Zero(t, pool.Size())
}

func TestThreadPoolBounds(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int
		puts    int
		want    func(t *testing.T, size int)
	}{
		{name: "capped", maxSize: 2, puts: 3, want: func(t *testing.T, size int) { assert.Equal(t, 2, size) }},
		{name: "below cap", maxSize: 4, puts: 3, want: func(t *testing.T, size int) { assert.Equal(t, 3, size) }},
		{name: "default is per cpu", maxSize: 0, puts: 1, want: func(t *testing.T, size int) { assert.Equal(t, 1, size) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewThreadPool(tt.maxSize)
			threads := make([]*starlark.Thread, tt.puts)
			for i := range threads {
				threads[i] = pool.Get("t")
			}
			for _, th := range threads {
				pool.Put(th)
			}
			tt.want(t, pool.Size())
		})
	}
}

func TestThreadPoolConcurrent(t *testing.T) {
	pool := NewThreadPool(10)
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Put(pool.Get("concurrent"))
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, pool.Size(), 10)
}
