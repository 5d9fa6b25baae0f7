// MODUL: dnnfilter-bench/report
// ZWECK: Ergebnis-Struktur und Formatierung fuer den Inferenz-Benchmark
// INPUT: Run-Ergebnisse
// OUTPUT: Formatierte Ausgabe (Terminal, CSV)
// NEBENEFFEKTE: Dateisystem-Schreibzugriff bei ExportCSV
// ABHAENGIGKEITEN: encoding/csv, fmt, os (stdlib)
// HINWEISE: Format-Funktionen an vision/benchmark/results.go angelehnt
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// runResult is one backend/mode combination's measured outcome.
type runResult struct {
	Backend        string
	Mode           string // "sync" or "async"
	NIreq          int
	BatchSize      int
	FrameCount     int
	TotalTime      time.Duration
	AvgLatency     time.Duration
	Throughput     float64 // frames per second
	OrderPreserved bool
	Errors         int
}

func printResults(w io.Writer, results []runResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "DNN Filter Inference Benchmark")
	fmt.Fprintln(w, "==============================")
	fmt.Fprintf(w, "%-10s %-7s %-6s %-6s %-8s %-10s %-10s %-12s %-7s %-6s\n",
		"Backend", "Mode", "NIreq", "Batch", "Frames", "Total", "AvgLat", "Throughput", "Order", "Errs")
	fmt.Fprintln(w, "----------------------------------------------------------------------------------------")
	for _, r := range results {
		order := "ok"
		if !r.OrderPreserved {
			order = "BROKEN"
		}
		fmt.Fprintf(w, "%-10s %-7s %-6d %-6d %-8d %-10s %-10s %7.1f i/s %-7s %-6d\n",
			r.Backend, r.Mode, r.NIreq, r.BatchSize, r.FrameCount,
			formatDuration(r.TotalTime), formatDuration(r.AvgLatency), r.Throughput, order, r.Errors)
	}
}

func writeCSV(w io.Writer, results []runResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"backend", "mode", "nireq", "batch_size", "frame_count",
		"total_time_ms", "avg_latency_ms", "throughput_fps", "order_preserved", "errors",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Backend,
			r.Mode,
			strconv.Itoa(r.NIreq),
			strconv.Itoa(r.BatchSize),
			strconv.Itoa(r.FrameCount),
			strconv.FormatFloat(float64(r.TotalTime.Microseconds())/1000, 'f', 3, 64),
			strconv.FormatFloat(float64(r.AvgLatency.Microseconds())/1000, 'f', 3, 64),
			strconv.FormatFloat(r.Throughput, 'f', 2, 64),
			strconv.FormatBool(r.OrderPreserved),
			strconv.Itoa(r.Errors),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportCSV(results []runResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return writeCSV(f, results)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.2fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
