// Package main provides a performance benchmarking tool for the streakline CLI.
// It generates synthetic journals of increasing size, runs each command several
// times with and without the activity cache, treating the first cached run as cold
// and averaging the rest as warm, and writes a CSV summary.
//
// Prerequisites:
// - streakline binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic journals and the cache database are written
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Journal     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Sizes       []int // entries per synthetic journal
	Commands    map[string][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Sizes:       []int{1_000, 10_000, 100_000, 1_000_000},
		Commands: map[string][]string{
			"snapshot": {"snapshot"},
			"grid":     {"grid", "--range", "1 year"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the streakline binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("streakline"); err != nil {
		return fmt.Errorf("streakline binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateJournal writes a JSON lines journal with n entries spread over the last
// five years, skipping roughly one day in four.
func generateJournal(dir string, n int) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("journal_%d.jsonl", n))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewPCG(42, uint64(n)))
	now := time.Now().UTC()
	span := 5 * 365 * 24 * time.Hour
	for i := range n {
		ts := now.Add(-time.Duration(rng.Int64N(int64(span))))
		if ts.YearDay()%4 == 0 {
			ts = ts.Add(24 * time.Hour)
		}
		if _, err := fmt.Fprintf(file, "{\"id\":\"e%d\",\"created_at\":%q}\n", i, ts.Format(time.RFC3339)); err != nil {
			return "", err
		}
	}
	return path, nil
}

// runBenchmarks executes every command against every journal size
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d journals, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Sizes), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.Sizes {
		path, err := generateJournal(config.WorkDir, size)
		if err != nil {
			fmt.Printf("Skipping %d entries: %v\n", size, err)
			continue
		}
		name := fmt.Sprintf("%d entries", size)
		fmt.Printf("Benchmarking %s\n", name)

		for _, command := range []string{"snapshot", "grid"} {
			results = append(results, runBenchmarkSuite(config, name, path, command))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, name, journalPath, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, journalPath, command, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Start the cached phase from an empty cache
	_ = os.Remove(cacheDB(config))
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Journal:     name,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

func cacheDB(config BenchmarkConfig) string {
	return filepath.Join(config.WorkDir, "benchmark_cache.db")
}

// runBenchmark executes a streakline command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, journalPath, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, config.Commands[command]...)
	args = append(args, journalPath, "--output", "json", "--cache-backend", cacheBackend)
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", cacheDB(config))
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("streakline", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.Output()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if the JSON output looks complete for the command
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "grid" {
		return strings.Contains(outputStr, "\"cells\"")
	}
	return strings.Contains(outputStr, "\"current_streak\"")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/streakline_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"journal", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Journal, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"snapshot", "grid"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-16s: No-cache: %s, Cold: %s, Warm: %s\n", result.Journal, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
