package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelIOFloat32OutputOutOfRange(t *testing.T) {
	io := &ModelIO{}

	_, err := io.Float32Output(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = io.Float32Output(-1)
	require.Error(t, err)
}

func TestModelIODestroyEmpty(t *testing.T) {
	io := &ModelIO{}
	io.AddInput(nil)
	io.AddOutput(nil)

	io.Destroy()

	assert.Empty(t, io.InputTensors)
	assert.Empty(t, io.OutputTensors)
}

func TestDestroyEnvironmentWithoutInit(t *testing.T) {
	assert.NoError(t, DestroyEnvironment())
}

func TestNewDynamicSessionMissingModel(t *testing.T) {
	_, err := NewDynamicSession(t.TempDir()+"/nope.onnx", []string{"input_ids"}, []string{"sentence_embedding"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file")
}
