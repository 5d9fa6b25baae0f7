//go:build onnx && cgo

// MODUL: onnxrt
// ZWECK: OPENVINO-aequivalente Backend-Variante, echtes ONNX Runtime Binding
//        mit asynchroner Ausfuehrung ueber einen begrenzten Worker-Pool
// INPUT: Modellpfad (.onnx), Optionen-String ("gpu=1,threads=4,workers=4")
// OUTPUT: dnnbackend.Backend mit ExecuteAsync-Unterstuetzung
// NEBENEFFEKTE: Alloziert ONNX Runtime Ressourcen, ggf. GPU-Speicher
// ABHAENGIGKEITEN: github.com/yalue/onnxruntime_go, golang.org/x/sync/semaphore
// HINWEISE: Destroy() (Close) MUSS aufgerufen werden; Run() wird auf einem
//           begrenzten Goroutine-Pool ausgefuehrt, da die Go-Bindung keine
//           native asynchrone Run-API exponiert (spec.md §4.4 verlangt nur,
//           dass cb genau einmal auf irgendeinem Worker-Thread laeuft)
package onnxrt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/sync/semaphore"

	"github.com/vidstream/dnninfer/dnnbackend"
	"github.com/vidstream/dnninfer/frame"
)

func init() {
	dnnbackend.Register(dnnbackend.VariantOpenVINO, func() dnnbackend.Backend {
		return New()
	})
}

var (
	runtimeInitOnce sync.Once
	runtimeInitErr  error
)

func initRuntime() error {
	runtimeInitOnce.Do(func() {
		runtimeInitErr = ort.InitializeEnvironment()
	})
	return runtimeInitErr
}

const defaultWorkers = 4

// Backend wraps an ONNX Runtime session as the async-capable variant the
// core calls OPENVINO (spec.md §4.4's "only OPENVINO supports execute_async").
type Backend struct {
	inner       *ort.DynamicAdvancedSession
	inputName   string
	outputName  string
	inputDesc   dnnbackend.IODesc
	outputDesc  dnnbackend.IODesc
	sem         *semaphore.Weighted
	numWorkers  int
}

// New creates an unconfigured ONNX Runtime backend. Call Load to bind it to
// a model file.
func New() *Backend {
	return &Backend{numWorkers: defaultWorkers}
}

// options parsed from the opts string, e.g. "gpu=1,threads=4,workers=4,input=x,output=y".
type parsedOpts struct {
	useGPU     bool
	numThreads int
	workers    int
	inputName  string
	outputName string
}

func parseOpts(opts string) parsedOpts {
	p := parsedOpts{workers: defaultWorkers}
	for _, kv := range strings.Split(opts, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case "gpu":
			p.useGPU = v == "1" || v == "true"
		case "threads":
			if n, err := strconv.Atoi(v); err == nil {
				p.numThreads = n
			}
		case "workers":
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				p.workers = n
			}
		case "input":
			p.inputName = v
		case "output":
			p.outputName = v
		}
	}
	return p
}

func (b *Backend) Load(modelPath, opts string) error {
	if err := initRuntime(); err != nil {
		return fmt.Errorf("onnxrt: runtime init: %w", err)
	}

	po := parseOpts(opts)
	b.numWorkers = po.workers
	b.sem = semaphore.NewWeighted(int64(b.numWorkers))

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("onnxrt: session options: %w", err)
	}
	defer sessOpts.Destroy()

	if po.numThreads > 0 {
		if err := sessOpts.SetIntraOpNumThreads(po.numThreads); err != nil {
			return fmt.Errorf("onnxrt: set threads: %w", err)
		}
	}

	if po.useGPU {
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err == nil {
			_ = cudaOpts.Update(map[string]string{"device_id": "0"})
			_ = sessOpts.AppendExecutionProviderCUDA(cudaOpts)
			cudaOpts.Destroy()
		}
	}

	inputName := po.inputName
	outputName := po.outputName
	var inputDims, outputDims []int64

	if inputs, outputs, err := ort.GetInputOutputInfo(modelPath); err == nil {
		for _, info := range inputs {
			if len(info.Dimensions) >= 4 {
				if inputName == "" {
					inputName = info.Name
				}
				inputDims = info.Dimensions
				break
			}
		}
		for _, info := range outputs {
			if outputName == "" && len(info.Dimensions) >= 4 {
				outputName = info.Name
				outputDims = info.Dimensions
				break
			}
		}
	}
	if inputName == "" || outputName == "" {
		return fmt.Errorf("onnxrt: could not determine input/output tensor names for %s", modelPath)
	}

	inner, err := ort.NewDynamicAdvancedSession(modelPath, []string{inputName}, []string{outputName}, sessOpts)
	if err != nil {
		return fmt.Errorf("onnxrt: create session: %w", err)
	}

	b.inner = inner
	b.inputName = inputName
	b.outputName = outputName
	b.inputDesc = descFromDims(inputName, inputDims)
	b.outputDesc = descFromDims(outputName, outputDims)
	return nil
}

func descFromDims(name string, dims []int64) dnnbackend.IODesc {
	d := dnnbackend.IODesc{Name: name, ElemType: frame.ElemFloat32, Height: dnnbackend.DynamicDim, Width: dnnbackend.DynamicDim}
	if len(dims) >= 4 {
		d.Channels = int(dims[1])
		if dims[2] > 0 {
			d.Height = int(dims[2])
		}
		if dims[3] > 0 {
			d.Width = int(dims[3])
		}
	}
	return d
}

func (b *Backend) InputDesc() (dnnbackend.IODesc, error) {
	if b.inner == nil {
		return dnnbackend.IODesc{}, fmt.Errorf("onnxrt: not loaded")
	}
	return b.inputDesc, nil
}

func (b *Backend) OutputDesc() (dnnbackend.IODesc, error) {
	if b.inner == nil {
		return dnnbackend.IODesc{}, fmt.Errorf("onnxrt: not loaded")
	}
	return b.outputDesc, nil
}

// ReshapeBatch is a no-op: the session's input/output shapes for this
// model family are read once at Load time; batch is carried per-request
// in NewRequest instead of via graph reshape.
func (b *Backend) ReshapeBatch(n int) error { return nil }

func (b *Backend) NewRequest(batchSize int) (*dnnbackend.Request, error) {
	if b.inner == nil {
		return nil, fmt.Errorf("onnxrt: not loaded")
	}
	h, w := dimOrOne(b.inputDesc.Height), dimOrOne(b.inputDesc.Width)
	oh, ow := dimOrOne(b.outputDesc.Height), dimOrOne(b.outputDesc.Width)
	return &dnnbackend.Request{
		Input: frame.TensorDesc{
			ElemType: frame.ElemFloat32,
			Shape:    [4]int{batchSize, b.inputDesc.Channels, h, w},
			Data:     make([]byte, batchSize*b.inputDesc.Channels*h*w*4),
			Layout:   frame.LayoutNHWC,
		},
		Output: frame.TensorDesc{
			ElemType: frame.ElemFloat32,
			Shape:    [4]int{batchSize, b.outputDesc.Channels, oh, ow},
			Data:     make([]byte, batchSize*b.outputDesc.Channels*oh*ow*4),
			Layout:   frame.LayoutNHWC,
		},
	}, nil
}

func dimOrOne(d int) int {
	if d <= 0 {
		return 1
	}
	return d
}

func (b *Backend) ExecuteSync(req *dnnbackend.Request) error {
	if b.inner == nil {
		return fmt.Errorf("onnxrt: not loaded")
	}
	inputData := req.Input.Float32Data()
	shape := ort.NewShape(int64(req.Input.N()), int64(req.Input.C()), int64(req.Input.H()), int64(req.Input.W()))
	inputTensor, err := ort.NewTensor(shape, inputData)
	if err != nil {
		return fmt.Errorf("onnxrt: input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outShape := ort.NewShape(int64(req.Output.N()), int64(req.Output.C()), int64(req.Output.H()), int64(req.Output.W()))
	outputData := make([]float32, req.Output.NumElements())
	outputTensor, err := ort.NewTensor(outShape, outputData)
	if err != nil {
		return fmt.Errorf("onnxrt: output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := b.inner.Run([]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor}); err != nil {
		return fmt.Errorf("onnxrt: run: %w", err)
	}

	copy(req.Output.Data, float32SliceToBytes(outputTensor.GetData()))
	return nil
}

// ExecuteAsync dispatches ExecuteSync onto a bounded worker goroutine and
// invokes cb exactly once when it returns, with Output readable until cb
// returns (spec.md §4.4).
func (b *Backend) ExecuteAsync(req *dnnbackend.Request, userPtr any, cb dnnbackend.CompletionFunc) error {
	if b.inner == nil {
		return fmt.Errorf("onnxrt: not loaded")
	}
	if err := b.sem.Acquire(context.Background(), 1); err != nil {
		return fmt.Errorf("onnxrt: acquire worker: %w", err)
	}
	go func() {
		defer b.sem.Release(1)
		err := b.ExecuteSync(req)
		cb(userPtr, err)
	}()
	return nil
}

func (b *Backend) SupportsAsync() bool { return true }

func (b *Backend) Close() error {
	if b.inner != nil {
		b.inner.Destroy()
		b.inner = nil
	}
	return nil
}
