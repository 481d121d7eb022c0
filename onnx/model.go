package onnx

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// ModelIO holds the tensors of a single inference call. Every tensor it
// holds is owned by it and released by Destroy.
type ModelIO struct {
	InputTensors  []ort.Value
	OutputTensors []ort.Value
}

func (io *ModelIO) AddInput(tensor ort.Value) {
	io.InputTensors = append(io.InputTensors, tensor)
}

func (io *ModelIO) AddOutput(tensor ort.Value) {
	io.OutputTensors = append(io.OutputTensors, tensor)
}

// Float32Output returns the data of output i as float32 values. The slice
// aliases tensor memory and is invalid after Destroy.
func (io *ModelIO) Float32Output(i int) ([]float32, error) {
	if i < 0 || i >= len(io.OutputTensors) {
		return nil, fmt.Errorf("output %d out of range (%d outputs)", i, len(io.OutputTensors))
	}
	tensor, ok := io.OutputTensors[i].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output %d is not a float32 tensor", i)
	}
	return tensor.GetData(), nil
}

func (io *ModelIO) Destroy() {
	for _, tensor := range io.InputTensors {
		if tensor != nil {
			tensor.Destroy()
		}
	}

	for _, tensor := range io.OutputTensors {
		if tensor != nil {
			tensor.Destroy()
		}
	}
	io.InputTensors, io.OutputTensors = nil, nil
}
