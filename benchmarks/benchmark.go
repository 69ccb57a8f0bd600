package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"lockmy/pkg/locking"
)

// BenchmarkResult captures detailed performance metrics for one lock
// workload. It includes timing statistics, throughput, and failure counts.
type BenchmarkResult struct {
	Workload       string        `json:"workload"`           // Descriptive name of the workload
	Iterations     int           `json:"iterations"`         // Acquisitions per goroutine
	Goroutines     int           `json:"goroutines"`         // Concurrent goroutines
	TotalDuration  time.Duration `json:"total_duration_ns"`  // Wall time for the whole workload
	AvgDuration    time.Duration `json:"avg_duration_ns"`    // Average time per acquisition
	MinDuration    time.Duration `json:"min_duration_ns"`    // Fastest acquisition
	MaxDuration    time.Duration `json:"max_duration_ns"`    // Slowest acquisition
	MedianDuration time.Duration `json:"median_duration_ns"` // Median acquisition
	P95Duration    time.Duration `json:"p95_duration_ns"`    // 95th percentile
	P99Duration    time.Duration `json:"p99_duration_ns"`    // 99th percentile
	OpsPerSecond   float64       `json:"ops_per_second"`     // Throughput
	RefusedCount   int           `json:"refused_count"`      // Acquisitions refused or failed
	Timestamp      time.Time     `json:"timestamp"`          // When this workload ran
}

// BenchmarkReport aggregates results from all workloads into a single report.
type BenchmarkReport struct {
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	TotalDuration time.Duration     `json:"total_duration"`
	Results       []BenchmarkResult `json:"results"`
}

// workload is one benchmark scenario: run builds the shared objects and
// hands measure a loop that runs on every goroutine and returns its samples
// and refusal count.
type workload struct {
	name string
	run  func(iterations, goroutines int) BenchmarkResult
}

// main runs the lock workloads and writes a JSON report.
//
// Environment variables:
//   - BENCHMARK_OUTPUT: Directory for the report (default: ./benchmark-results)
//   - BENCHMARK_ITERATIONS: Acquisitions per goroutine (default: 10000)
//   - BENCHMARK_GOROUTINES: Concurrent goroutines (default: 8)
func main() {
	outputDir := filepath.Clean(os.Getenv("BENCHMARK_OUTPUT"))
	if outputDir == "." {
		outputDir = "./benchmark-results"
	}

	iterations := 10000
	if iter := os.Getenv("BENCHMARK_ITERATIONS"); iter != "" {
		_, _ = fmt.Sscanf(iter, "%d", &iterations)
	}

	goroutines := 8
	if g := os.Getenv("BENCHMARK_GOROUTINES"); g != "" {
		_, _ = fmt.Sscanf(g, "%d", &goroutines)
	}

	_ = os.MkdirAll(outputDir, 0o750)

	log.Printf("Starting lock benchmark suite...")
	log.Printf("Iterations: %d, Goroutines: %d", iterations, goroutines)

	report := BenchmarkReport{
		StartTime: time.Now(),
		Results:   []BenchmarkResult{},
	}

	workloads := []workload{
		{"uncontended write", benchUncontendedWrite},
		{"shared reads", benchSharedReads},
		{"mixed read-write", benchMixedReadWrite},
		{"authorized roundtrip", benchAuthorized},
		{"multi-lock batches", benchMultiLock},
	}

	for _, w := range workloads {
		log.Printf("%s", "\n"+strings.Repeat("=", 60))
		log.Printf("WORKLOAD: %s", w.name)

		result := w.run(iterations, goroutines)
		result.Workload = w.name
		result.Timestamp = time.Now()
		report.Results = append(report.Results, result)

		log.Printf("→ %.0f ops/s, p95 %v, refused %d", result.OpsPerSecond, result.P95Duration, result.RefusedCount)
	}

	report.EndTime = time.Now()
	report.TotalDuration = report.EndTime.Sub(report.StartTime)

	if err := saveReport(report, outputDir); err != nil {
		log.Fatalf("Failed to save report: %v", err)
	}
	log.Printf("Report written to %s", outputDir)
}

// measure fans the loop out over the goroutines and aggregates the samples.
func measure(iterations, goroutines int, loop func() ([]time.Duration, int)) BenchmarkResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		all     []time.Duration
		refused int
	)

	start := time.Now()
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			samples, r := loop()

			mu.Lock()
			all = append(all, samples...)
			refused += r
			mu.Unlock()
		}()
	}
	wg.Wait()
	total := time.Since(start)

	return summarize(all, total, iterations, goroutines, refused)
}

func summarize(samples []time.Duration, total time.Duration, iterations, goroutines, refused int) BenchmarkResult {
	slices.Sort(samples)

	var sum time.Duration
	for _, d := range samples {
		sum += d
	}

	result := BenchmarkResult{
		Iterations:    iterations,
		Goroutines:    goroutines,
		TotalDuration: total,
		RefusedCount:  refused,
	}
	if len(samples) == 0 {
		return result
	}

	result.AvgDuration = sum / time.Duration(len(samples))
	result.MinDuration = samples[0]
	result.MaxDuration = samples[len(samples)-1]
	result.MedianDuration = samples[len(samples)/2]
	result.P95Duration = samples[len(samples)*95/100]
	result.P99Duration = samples[len(samples)*99/100]
	result.OpsPerSecond = float64(len(samples)) / total.Seconds()
	return result
}

func benchUncontendedWrite(iterations, goroutines int) BenchmarkResult {
	return measure(iterations, goroutines, func() ([]time.Duration, int) {
		c := locking.NewContainer(0) // one container per goroutine: no contention
		samples := make([]time.Duration, 0, iterations)
		refused := 0
		for i := 0; i < iterations; i++ {
			t0 := time.Now()
			g := c.GetWrite(true)
			if !g.Valid() {
				refused++
			} else {
				g.Release()
			}
			samples = append(samples, time.Since(t0))
		}
		return samples, refused
	})
}

func benchSharedReads(iterations, goroutines int) BenchmarkResult {
	c := locking.NewContainer(42)
	return measure(iterations, goroutines, func() ([]time.Duration, int) {
		samples := make([]time.Duration, 0, iterations)
		refused := 0
		for i := 0; i < iterations; i++ {
			t0 := time.Now()
			g := c.GetRead(true)
			if !g.Valid() {
				refused++
			} else {
				g.Release()
			}
			samples = append(samples, time.Since(t0))
		}
		return samples, refused
	})
}

func benchMixedReadWrite(iterations, goroutines int) BenchmarkResult {
	c := locking.NewContainer(0)
	return measure(iterations, goroutines, func() ([]time.Duration, int) {
		samples := make([]time.Duration, 0, iterations)
		refused := 0
		for i := 0; i < iterations; i++ {
			t0 := time.Now()
			if i%10 == 0 {
				g := c.GetWrite(true)
				if !g.Valid() {
					refused++
				} else {
					g.Release()
				}
			} else {
				g := c.GetRead(true)
				if !g.Valid() {
					refused++
				} else {
					g.Release()
				}
			}
			samples = append(samples, time.Since(t0))
		}
		return samples, refused
	})
}

func benchAuthorized(iterations, goroutines int) BenchmarkResult {
	c := locking.NewContainer(0)
	return measure(iterations, goroutines, func() ([]time.Duration, int) {
		auth := locking.NewAuth(locking.PolicyReadWrite)
		samples := make([]time.Duration, 0, iterations)
		refused := 0
		for i := 0; i < iterations; i++ {
			t0 := time.Now()
			g := c.GetReadAuth(auth, true)
			if !g.Valid() {
				refused++
			} else {
				g.Release()
			}
			samples = append(samples, time.Since(t0))
		}
		return samples, refused
	})
}

func benchMultiLock(iterations, goroutines int) BenchmarkResult {
	gate := locking.NewMultiLock()
	x := locking.NewContainer(0)
	y := locking.NewContainer(0)
	return measure(iterations, goroutines, func() ([]time.Duration, int) {
		auth := locking.NewAuth(locking.PolicyReadWrite)
		samples := make([]time.Duration, 0, iterations)
		refused := 0
		for i := 0; i < iterations; i++ {
			t0 := time.Now()
			claim := gate.Claim(auth, true)
			if !claim.Valid() {
				refused++
				samples = append(samples, time.Since(t0))
				continue
			}
			gx := x.GetWriteMulti(gate, auth, true)
			gy := y.GetWriteMulti(gate, auth, true)
			claim.Release()
			if gx.Valid() {
				gx.Release()
			} else {
				refused++
			}
			if gy.Valid() {
				gy.Release()
			} else {
				refused++
			}
			samples = append(samples, time.Since(t0))
		}
		return samples, refused
	})
}

// saveReport writes the report as timestamped JSON.
func saveReport(report BenchmarkReport, outputDir string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("lock-benchmark-%s.json", report.StartTime.Format("20060102-150405"))
	return os.WriteFile(filepath.Join(outputDir, name), data, 0o600)
}
