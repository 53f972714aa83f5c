package main

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joshuapare/memkit/mem"
)

// workloadConfig sizes the churn the viewer runs.
type workloadConfig struct {
	Workers int
	MaxSize int
	LiveSet int
	Aligned bool
}

func defaultWorkloadConfig() workloadConfig {
	return workloadConfig{
		Workers: 4,
		MaxSize: 4096,
		LiveSet: 512,
	}
}

// workload runs churn goroutines against one arena: allocate, touch,
// recycle a bounded live set. Paused workers idle without freeing, so
// the live set stays visible in the stats.
type workload struct {
	cfg    workloadConfig
	arena  *mem.Arena
	paused atomic.Bool
	ops    atomic.Int64

	stop chan struct{}
	wg   sync.WaitGroup
}

func startWorkload(arena *mem.Arena, cfg workloadConfig) *workload {
	w := &workload{
		cfg:   cfg,
		arena: arena,
		stop:  make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		w.wg.Add(1)
		go w.run(int64(i + 1))
	}
	return w
}

func (w *workload) run(seed int64) {
	defer w.wg.Done()
	rng := rand.New(rand.NewSource(seed))
	live := make([]uintptr, 0, w.cfg.LiveSet)

	for {
		select {
		case <-w.stop:
			for _, addr := range live {
				w.arena.Free(addr)
			}
			return
		default:
		}
		if w.paused.Load() {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		size := 1 + rng.Intn(w.cfg.MaxSize)
		var (
			addr uintptr
			err  error
		)
		if w.cfg.Aligned {
			addr, err = w.arena.AllocAligned(size)
		} else {
			addr, err = w.arena.Alloc(size)
		}
		if err != nil {
			return
		}
		if buf, err := w.arena.Bytes(addr, size); err == nil {
			buf[0] = byte(size)
		}
		w.ops.Add(1)

		live = append(live, addr)
		if len(live) == cap(live) {
			// recycle half, oldest first
			half := len(live) / 2
			for _, old := range live[:half] {
				w.arena.Free(old)
				w.ops.Add(1)
			}
			live = append(live[:0], live[half:]...)
		}
	}
}

// TogglePause flips the workload state and reports whether it is now
// paused.
func (w *workload) TogglePause() bool {
	paused := !w.paused.Load()
	w.paused.Store(paused)
	return paused
}

// Ops returns the running operation count (allocs + frees).
func (w *workload) Ops() int64 {
	return w.ops.Load()
}

func (w *workload) Stop() {
	close(w.stop)
	w.wg.Wait()
}
