// MODUL: dnnfilter-bench/main
// ZWECK: CLI-Benchmark fuer den DNN-Filter-Core (C12)
// INPUT: CLI-Flags (--backend, --model, --frames, --modes, ...)
// OUTPUT: Durchsatz-/Latenzbericht (Terminal/CSV), Reihenfolge-Verifikation
// NEBENEFFEKTE: Laedt ein Backend-Modell, liest Bilddateien vom Dateisystem
// ABHAENGIGKEITEN: dnnbackend und Varianten (Blank-Import), dnnconfig,
//                  dnndevice, engine, spf13/cobra, golang.org/x/image
// HINWEISE: Go-natives Gegenstueck zu cmd/vision-benchmark, umgebaut von
//           "Embedding-Benchmark" zu "Inferenz-Durchsatz-Benchmark"
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/vidstream/dnninfer/dnnbackend/native"
	_ "github.com/vidstream/dnninfer/dnnbackend/onnxrt"
	_ "github.com/vidstream/dnninfer/dnnbackend/tfstub"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dnnfilter-bench",
		Short:         "Benchmark harness for the DNN filter inference core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}
