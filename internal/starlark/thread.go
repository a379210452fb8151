package starlark

import (
	"runtime"

	"go.starlark.net/starlark"
)

// ThreadPool recycles Starlark threads between evaluations. It is shared by
// every file templated in parallel.
type ThreadPool struct {
	idle chan *starlark.Thread
}

// NewThreadPool creates a pool keeping at most maxSize idle threads.
// A non-positive size means one per CPU.
func NewThreadPool(maxSize int) *ThreadPool {
	if maxSize <= 0 {
		maxSize = runtime.NumCPU()
	}
	return &ThreadPool{idle: make(chan *starlark.Thread, maxSize)}
}

// Get takes an idle thread or creates one. name shows up in Starlark
// backtraces.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	select {
	case thread := <-p.idle:
		thread.Name = name
		return thread
	default:
		return &starlark.Thread{Name: name, Print: func(*starlark.Thread, string) {}}
	}
}

// Put returns a thread to the pool, dropping it when the pool is full.
// Cancelled threads must not be returned.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	thread.Name = ""
	select {
	case p.idle <- thread:
	default:
	}
}

// Size returns the number of idle threads.
func (p *ThreadPool) Size() int {
	return len(p.idle)
}
