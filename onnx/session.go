package onnx

import (
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

// NewDynamicSession opens modelPath with the given input and output names.
// Tensors are supplied per Run call, so one session can serve concurrent
// callers as long as each brings its own ModelIO.
func NewDynamicSession(modelPath string, inputs, outputs []string) (*ort.DynamicAdvancedSession, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("session needs at least one input and one output name")
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputs, outputs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic session: %w", err)
	}
	return session, nil
}
