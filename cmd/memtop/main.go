package main

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg := defaultWorkloadConfig()

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			printHelp()
			os.Exit(0)
		case "--version", "-v":
			fmt.Printf("memtop %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built: %s\n", date)
			os.Exit(0)
		case "--workers":
			i++
			cfg.Workers = parseIntArg(args, i, "--workers")
		case "--size":
			i++
			cfg.MaxSize = parseIntArg(args, i, "--size")
		case "--live":
			i++
			cfg.LiveSet = parseIntArg(args, i, "--live")
		case "--aligned":
			cfg.Aligned = true
		default:
			fmt.Fprintf(os.Stderr, "Unknown argument: %s\n", args[i])
			printUsage()
			os.Exit(1)
		}
	}

	m := NewModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	// Clean up resources
	if model, ok := finalModel.(Model); ok {
		model.Close()
	}
}

func parseIntArg(args []string, i int, flag string) int {
	if i >= len(args) {
		fmt.Fprintf(os.Stderr, "Missing value for %s\n", flag)
		os.Exit(1)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		fmt.Fprintf(os.Stderr, "Bad value for %s: %s\n", flag, args[i])
		os.Exit(1)
	}
	return n
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: memtop [options]\n")
	fmt.Fprintf(os.Stderr, "Try 'memtop --help' for more information.\n")
}

func printHelp() {
	fmt.Println("memtop - Live view of an off-heap allocation workload")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  memtop [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  --workers N    Concurrent workload workers (default 4)")
	fmt.Println("  --size N       Maximum allocation size in bytes (default 4096)")
	fmt.Println("  --live N       Live allocations per worker (default 512)")
	fmt.Println("  --aligned      Use power-of-two aligned allocation")
	fmt.Println()
	fmt.Println("KEYS:")
	fmt.Println("  space          Pause/resume the workload")
	fmt.Println("  q, ctrl+c      Quit")
}
