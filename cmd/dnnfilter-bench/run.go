// MODUL: dnnfilter-bench/run
// ZWECK: `run` Subcommand: laedt Frames, baut ein Backend, treibt die Engine
//        sync und/oder async, misst Durchsatz, prueft Reihenfolge
// INPUT: CLI-Flags
// OUTPUT: runResult pro gewaehltem Modus
// NEBENEFFEKTE: Laedt ein Backend-Modell, liest Bilddateien
// ABHAENGIGKEITEN: dnnbackend, dnnconfig, dnndevice, engine, spf13/cobra
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/dnnbackend/native"
	"github.com/vidstream/dnninfer/dnnconfig"
	"github.com/vidstream/dnninfer/dnndevice"
	"github.com/vidstream/dnninfer/engine"
	"github.com/vidstream/dnninfer/frame"
)

type runOptions struct {
	backend     string
	model       string
	backendOpts string
	outputName  string
	framesDir   string
	count       int
	nireq       int
	batchSize   int
	modes       string // "sync", "async", or "both"
	format      string
	output      string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the inference core against a sample frame directory and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.backend, "backend", "native", "backend variant: native, tensorflow, openvino, auto")
	flags.StringVar(&opts.model, "model", "", "path to the model file (ignored by native)")
	flags.StringVar(&opts.backendOpts, "opts", "", "backend-specific options string, e.g. gpu=1,threads=4")
	flags.StringVar(&opts.outputName, "output-name", "output", "output tensor name requested from the backend")
	flags.StringVar(&opts.framesDir, "frames", "", "directory of sample images to decode (required)")
	flags.IntVar(&opts.count, "count", 0, "total frames to submit; 0 means exactly the files found in --frames")
	flags.IntVar(&opts.nireq, "nireq", int(dnnconfig.DefaultNIreq()), "number of concurrent request slots (async mode)")
	flags.IntVar(&opts.batchSize, "batch", int(dnnconfig.DefaultBatchSize()), "frames packed per request slot")
	flags.StringVar(&opts.modes, "modes", "both", "which modes to run: sync, async, or both")
	flags.StringVar(&opts.format, "format", "table", "report format: table or csv")
	flags.StringVar(&opts.output, "out", "", "optional CSV output file path")
	cmd.MarkFlagRequired("frames")

	return cmd
}

func runBenchmark(opts *runOptions) error {
	variant, err := parseVariant(opts.backend)
	if err != nil {
		return err
	}
	variant = dnndevice.ResolveVariant(variant)

	src, err := loadFrames(opts.framesDir, time.Millisecond)
	if err != nil {
		return err
	}
	frames := src
	if opts.count > 0 {
		frames = cycleFrames(src, opts.count, time.Millisecond)
	}

	var results []runResult
	if opts.modes == "sync" || opts.modes == "both" {
		r, err := runOnce(variant, opts, frames, false)
		if err != nil {
			return fmt.Errorf("sync run: %w", err)
		}
		results = append(results, r)
	}
	if opts.modes == "async" || opts.modes == "both" {
		r, err := runOnce(variant, opts, frames, true)
		if err != nil {
			return fmt.Errorf("async run: %w", err)
		}
		results = append(results, r)
	}

	switch opts.format {
	case "csv":
		if opts.output != "" {
			return exportCSV(results, opts.output)
		}
		return writeCSV(os.Stdout, results)
	default:
		printResults(os.Stdout, results)
	}
	if opts.output != "" && opts.format != "csv" {
		return exportCSV(results, opts.output)
	}
	return nil
}

func parseVariant(s string) (dnnbackend.Variant, error) {
	switch dnnbackend.Variant(s) {
	case dnnbackend.VariantNative, dnnbackend.VariantTensorFlow, dnnbackend.VariantOpenVINO, dnnbackend.VariantAuto:
		return dnnbackend.Variant(s), nil
	default:
		return "", fmt.Errorf("unknown --backend %q", s)
	}
}

// runOnce builds a fresh backend instance, drives one full submit/flush/poll
// cycle over frames in the requested mode, and returns the measured result.
func runOnce(variant dnnbackend.Variant, opts *runOptions, frames []*frame.Frame, async bool) (runResult, error) {
	backend, err := dnnbackend.New(variant)
	if err != nil {
		return runResult{}, err
	}

	if variant == dnnbackend.VariantNative {
		if nb, ok := backend.(*native.Backend); ok {
			first := frames[0]
			desc := dnnbackend.IODesc{
				Channels: first.Format.Channels(),
				Height:   first.Height,
				Width:    first.Width,
				ElemType: frame.ElemUint8,
			}
			nb.Configure(desc, desc, nil)
		}
	}

	if err := backend.Load(opts.model, opts.backendOpts); err != nil {
		backend.Close()
		return runResult{}, fmt.Errorf("load backend: %w", err)
	}
	defer backend.Close()

	if err := backend.ReshapeBatch(opts.batchSize); err != nil {
		return runResult{}, fmt.Errorf("reshape batch: %w", err)
	}

	eng, err := engine.New(backend, async, opts.nireq, opts.batchSize, opts.outputName)
	if err != nil {
		return runResult{}, fmt.Errorf("build engine: %w", err)
	}
	defer eng.Close()

	ctx := context.Background()
	start := time.Now()

	var submitErrs int
	for _, f := range frames {
		cp := *f
		if err := eng.Submit(ctx, &cp); err != nil {
			submitErrs++
		}
	}
	if err := eng.Flush(ctx); err != nil {
		return runResult{}, fmt.Errorf("flush: %w", err)
	}

	var lastPTS time.Duration
	hasLast := false
	orderOK := true
	outCount := 0
	for {
		out, ready := eng.Poll()
		if !ready {
			break
		}
		if out == nil {
			continue
		}
		if hasLast && out.PTS < lastPTS {
			orderOK = false
		}
		lastPTS = out.PTS
		hasLast = true
		outCount++
	}
	elapsed := time.Since(start)

	mode := "sync"
	if eng.IsAsync() {
		mode = "async"
	}

	var avg time.Duration
	if outCount > 0 {
		avg = elapsed / time.Duration(outCount)
	}
	var throughput float64
	if elapsed > 0 {
		throughput = float64(outCount) / elapsed.Seconds()
	}

	return runResult{
		Backend:        string(variant),
		Mode:           mode,
		NIreq:          opts.nireq,
		BatchSize:      opts.batchSize,
		FrameCount:     len(frames),
		TotalTime:      elapsed,
		AvgLatency:     avg,
		Throughput:     throughput,
		OrderPreserved: orderOK,
		Errors:         len(frames) - outCount,
	}, nil
}
