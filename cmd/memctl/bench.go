package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/memkit/mem"
)

var (
	benchAllocs   int
	benchSize     int
	benchWorkers  int
	benchLive     int
	benchAligned  bool
	benchTracking bool
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchAllocs, "allocs", 100000, "Allocations per worker")
	cmd.Flags().IntVar(&benchSize, "size", 256, "Maximum allocation size in bytes")
	cmd.Flags().IntVar(&benchWorkers, "workers", 4, "Concurrent workers")
	cmd.Flags().IntVar(&benchLive, "live", 1024, "Live allocations each worker keeps before recycling")
	cmd.Flags().BoolVar(&benchAligned, "aligned", false, "Use power-of-two aligned allocation")
	cmd.Flags().BoolVar(&benchTracking, "tracking", true, "Enable allocation tracking")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Run an allocation churn workload against a fresh arena",
		Long: `The bench command runs a concurrent allocate/write/free workload
against a fresh arena and reports the aggregate allocator statistics.

Example:
  memctl bench --allocs 500000 --workers 8 --size 512 --aligned
  memctl bench --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
}

// BenchReport is the bench command's result document.
type BenchReport struct {
	Workers     int           `json:"workers"`
	Allocs      int           `json:"allocs_per_worker"`
	MaxSize     int           `json:"max_size"`
	Aligned     bool          `json:"aligned"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	AllocsPerMs float64       `json:"allocs_per_ms"`
	Final       mem.Stats     `json:"final_stats"`
}

func runBench() error {
	opts := mem.DefaultOptions()
	opts.Tracking = benchTracking
	arena := mem.New(opts)
	defer arena.Close()

	printVerbose("starting %d workers, %d allocs each, max size %d\n",
		benchWorkers, benchAllocs, benchSize)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < benchWorkers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			benchWorker(arena, seed)
		}(int64(w + 1))
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := benchWorkers * benchAllocs
	report := BenchReport{
		Workers:     benchWorkers,
		Allocs:      benchAllocs,
		MaxSize:     benchSize,
		Aligned:     benchAligned,
		Elapsed:     elapsed,
		AllocsPerMs: float64(total) / float64(elapsed.Milliseconds()+1),
		Final:       arena.Stats(),
	}

	if jsonOut {
		return printJSON(report)
	}
	p := message.NewPrinter(language.English)
	p.Printf("workers:          %d\n", report.Workers)
	p.Printf("allocations:      %d (%d per worker)\n", total, report.Allocs)
	p.Printf("elapsed:          %v\n", elapsed.Round(time.Millisecond))
	p.Printf("throughput:       %.0f allocs/ms\n", report.AllocsPerMs)
	p.Printf("final bytes:      %d\n", report.Final.TotalBytes)
	p.Printf("final overhead:   %d\n", report.Final.OverheadBytes)
	p.Printf("final records:    %d\n", report.Final.Allocations)
	p.Printf("untracked frees:  %d\n", report.Final.UntrackedFrees)
	if report.Final.UntrackedFrees != 0 {
		return fmt.Errorf("workload produced %d untracked frees", report.Final.UntrackedFrees)
	}
	return nil
}

// benchWorker churns a bounded live set: allocate, touch, recycle.
func benchWorker(arena *mem.Arena, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	live := make([]uintptr, 0, benchLive)

	for i := 0; i < benchAllocs; i++ {
		size := 1 + rng.Intn(benchSize)
		var (
			addr uintptr
			err  error
		)
		if benchAligned {
			addr, err = arena.AllocAligned(size)
		} else {
			addr, err = arena.Alloc(size)
		}
		if err != nil {
			printInfo("alloc failed: %v\n", err)
			return
		}
		if buf, err := arena.Bytes(addr, size); err == nil {
			buf[0] = byte(i)
			buf[size-1] = byte(i >> 8)
		}
		live = append(live, addr)
		if len(live) == cap(live) {
			for _, old := range live {
				arena.Free(old)
			}
			live = live[:0]
		}
	}
	for _, addr := range live {
		arena.Free(addr)
	}
}
