// Package model wraps ONNX sequence-model inference. A model consumes a
// stack of preprocessed frames and emits one scalar "predicted change"
// per inference.
package model

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"
)

// Spec describes a sequence model's input contract.
type Spec struct {
	Path           string
	Height         int
	Width          int
	Channels       int
	SequenceLength int
	InputName      string
	OutputName     string
	// LibraryPath points at the onnxruntime shared library when it is not
	// on the default search path.
	LibraryPath string
}

// SequenceModel scores a sliding window of frames.
type SequenceModel interface {
	Spec() Spec
	// Infer consumes SequenceLength preprocessed frames laid out as
	// [seq][height][width][channel] float32 and returns the predicted
	// change for the window's last frame.
	Infer(sequence []float32) (float32, error)
	Close() error
}

// OnnxModel runs inference through onnxruntime.
type OnnxModel struct {
	logger      zerolog.Logger
	spec        Spec
	session     *ort.DynamicAdvancedSession
	inputShape  ort.Shape
	outputShape ort.Shape
}

// LoadOnnx creates an inference session for the model at spec.Path.
func LoadOnnx(logger zerolog.Logger, spec Spec) (*OnnxModel, error) {
	if _, err := os.Stat(spec.Path); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", spec.Path)
	}

	if spec.LibraryPath != "" {
		ort.SetSharedLibraryPath(spec.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	inputNames := []string{spec.InputName}
	outputNames := []string{spec.OutputName}

	sess, err := ort.NewDynamicAdvancedSession(
		spec.Path,
		inputNames,
		outputNames,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.Info().
		Str("model", spec.Path).
		Strs("inputs", inputNames).
		Strs("outputs", outputNames).
		Int("sequence_length", spec.SequenceLength).
		Msg("sequence model loaded")

	return &OnnxModel{
		logger:      logger.With().Str("component", "model").Logger(),
		spec:        spec,
		session:     sess,
		inputShape:  ort.NewShape(1, int64(spec.SequenceLength), int64(spec.Height), int64(spec.Width), int64(spec.Channels)),
		outputShape: ort.NewShape(1, 1),
	}, nil
}

// Spec returns the model's input contract.
func (m *OnnxModel) Spec() Spec {
	return m.spec
}

// Infer runs one window of frames through the session.
func (m *OnnxModel) Infer(sequence []float32) (float32, error) {
	want := m.spec.SequenceLength * m.spec.Height * m.spec.Width * m.spec.Channels
	if len(sequence) != want {
		return 0, fmt.Errorf("sequence has %d values, model expects %d", len(sequence), want)
	}

	inputTensor, err := ort.NewTensor(m.inputShape, sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](m.outputShape)
	if err != nil {
		return 0, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	inputs := []ort.ArbitraryTensor{inputTensor}
	outputs := []ort.ArbitraryTensor{outputTensor}
	if err := m.session.Run(inputs, outputs); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}

	data := outputTensor.GetData()
	if len(data) == 0 {
		return 0, fmt.Errorf("model produced an empty output tensor")
	}
	return data[0], nil
}

// Close releases the inference session.
func (m *OnnxModel) Close() error {
	if m.session != nil {
		err := m.session.Destroy()
		m.session = nil
		return err
	}
	return nil
}

// Cleanup tears down the shared ONNX runtime environment. Call once at
// process exit, after all models are closed.
func Cleanup() {
	if ort.IsInitialized() {
		_ = ort.DestroyEnvironment()
	}
}
