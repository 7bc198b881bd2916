package ml

import (
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	onnxruntime "github.com/yalue/onnxruntime_go"

	"nereus/pkg/errors"
	"nereus/pkg/logger"
)

// model output layout: [weight_g, length_cm]
const numOutputs = 2

// Engine wraps an ONNX Runtime session running the frozen growth regression
// model. The session holds off-heap memory, so the engine is a scoped
// resource: construct, use, Close. Initialization is lazy and idempotent;
// Infer calls are serialized because the underlying runtime session is not
// guaranteed safe for concurrent runs.
type Engine struct {
	modelPath   string
	numFeatures int

	mu      sync.Mutex
	session *onnxruntime.DynamicAdvancedSession
	log     *logger.Logger
}

// NewEngine creates an inference engine for a model expecting numFeatures inputs.
// The model file is not touched until Initialize or the first Infer.
func NewEngine(modelPath string, numFeatures int) *Engine {
	return &Engine{
		modelPath:   modelPath,
		numFeatures: numFeatures,
		log:         logger.Get().With("component", "inference_engine"),
	}
}

// Initialize loads the model artifact into memory. Safe to call repeatedly.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initLocked()
}

func (e *Engine) initLocked() error {
	if e.session != nil {
		return nil
	}

	info, err := os.Stat(e.modelPath)
	if err != nil {
		return errors.Wrapf(errors.ErrModelLoad, "model artifact %s: %v", e.modelPath, err)
	}

	if err := onnxruntime.InitializeEnvironment(); err != nil {
		return errors.Wrapf(errors.ErrModelLoad, "initialize ONNX runtime: %v", err)
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return errors.Wrapf(errors.ErrModelLoad, "create session options: %v", err)
	}
	defer options.Destroy()

	// Input: "input" (feature vector), output: "output" ([weight_g, length_cm])
	session, err := onnxruntime.NewDynamicAdvancedSession(e.modelPath,
		[]string{"input"}, []string{"output"}, options)
	if err != nil {
		return errors.Wrapf(errors.ErrModelLoad, "load model %s: %v", e.modelPath, err)
	}

	e.session = session
	e.log.Infof("Model loaded: %s (%s)", e.modelPath, humanize.Bytes(uint64(info.Size())))
	return nil
}

// Infer runs one forward pass. Returns predicted weight in grams and length
// in centimeters, the raw units the model was trained with.
func (e *Engine) Infer(features []float64) (weightGrams, lengthCm float64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.initLocked(); err != nil {
		return 0, 0, err
	}

	if len(features) != e.numFeatures {
		return 0, 0, errors.Wrapf(errors.ErrInference,
			"expected %d features, got %d", e.numFeatures, len(features))
	}

	// Input tensor: shape [1, num_features]
	inputShape := onnxruntime.NewShape(1, int64(len(features)))
	inputTensor, err := onnxruntime.NewTensor(inputShape, features)
	if err != nil {
		return 0, 0, errors.Wrapf(errors.ErrInference, "create input tensor: %v", err)
	}
	defer inputTensor.Destroy()

	// Output tensor: shape [1, 2], pre-allocated
	output := make([]float64, numOutputs)
	outputShape := onnxruntime.NewShape(1, numOutputs)
	outputTensor, err := onnxruntime.NewTensor(outputShape, output)
	if err != nil {
		return 0, 0, errors.Wrapf(errors.ErrInference, "create output tensor: %v", err)
	}
	defer outputTensor.Destroy()

	inputs := []onnxruntime.Value{inputTensor}
	outputs := []onnxruntime.Value{outputTensor}
	if err := e.session.Run(inputs, outputs); err != nil {
		return 0, 0, errors.Wrapf(errors.ErrInference, "forward pass: %v", err)
	}

	return output[0], output[1], nil
}

// Close releases the native session. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		e.session.Destroy()
		e.session = nil
		e.log.Debug("Inference session destroyed")
	}
}
