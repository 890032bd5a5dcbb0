package model

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXOptions describes how to bind a single-row ONNX classifier.
type ONNXOptions struct {
	// SharedLibraryPath points at libonnxruntime; empty uses the loader default.
	SharedLibraryPath string `mapstructure:"shared_library_path"`
	InputName         string `mapstructure:"input_name"`
	OutputName        string `mapstructure:"output_name"`
	// NumFeatures is the width of the input row.
	NumFeatures int `mapstructure:"num_features"`
	// Classes is the width of the probability output; the last column is the
	// positive class.
	Classes int `mapstructure:"classes"`
}

// DefaultONNXOptions matches a binary tree-ensemble classifier exported with
// the zipmap step disabled.
func DefaultONNXOptions() ONNXOptions {
	return ONNXOptions{
		InputName:   "input",
		OutputName:  "probabilities",
		NumFeatures: 7,
		Classes:     2,
	}
}

var ortInit struct {
	once sync.Once
	err  error
}

func initRuntime(libPath string) error {
	ortInit.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortInit.err = ort.InitializeEnvironment()
	})
	return ortInit.err
}

// ONNXModel runs a classifier through onnxruntime. The session owns fixed input and
// output tensors, so runs are serialized.
type ONNXModel struct {
	mu      sync.Mutex
	opts    ONNXOptions
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// LoadONNX creates an inference session for the model at path.
func LoadONNX(path string, opts ONNXOptions) (*ONNXModel, error) {
	if opts.NumFeatures <= 0 || opts.Classes <= 0 {
		return nil, fmt.Errorf("onnx model %s: invalid shape %d->%d", path, opts.NumFeatures, opts.Classes)
	}
	if err := initRuntime(opts.SharedLibraryPath); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(opts.NumFeatures)), make([]float32, opts.NumFeatures))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(opts.Classes)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(path,
		[]string{opts.InputName}, []string{opts.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("open onnx session %s: %w", path, err)
	}
	return &ONNXModel{opts: opts, session: session, input: input, output: output}, nil
}

func (m *ONNXModel) PredictProba(features []float64) (float64, error) {
	if len(features) != m.opts.NumFeatures {
		return 0, fmt.Errorf("got %d features, model takes %d", len(features), m.opts.NumFeatures)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.input.GetData()
	for i, v := range features {
		row[i] = float32(v)
	}
	if err := m.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx run: %w", err)
	}
	probs := m.output.GetData()
	return float64(probs[len(probs)-1]), nil
}

func (m *ONNXModel) NumFeatures() int {
	return m.opts.NumFeatures
}

// Close releases the session and its tensors.
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for _, destroy := range []func() error{m.session.Destroy, m.input.Destroy, m.output.Destroy} {
		if err := destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
