package codec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodecErrors(t *testing.T) {
	_, err := NewCodec("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model path is empty")

	_, err = NewCodec(filepath.Join(t.TempDir(), "missing.model"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file not found")
}

func TestFrame(t *testing.T) {
	tests := []struct {
		name   string
		ids    []int64
		bos    int64
		eos    int64
		maxLen int
		want   []int64
	}{
		{"wraps ids", []int64{10, 11}, 2, 1, 8, []int64{2, 10, 11, 1}},
		{"empty text keeps specials", nil, 2, 1, 8, []int64{2, 1}},
		{"truncates body keeps eos", []int64{10, 11, 12, 13}, 2, 1, 4, []int64{2, 10, 11, 1}},
		{"no limit", []int64{10, 11, 12}, 2, 1, 0, []int64{2, 10, 11, 12, 1}},
		{"no specials", []int64{10, 11, 12}, -1, -1, 2, []int64{10, 11}},
		{"only bos", []int64{10}, 2, -1, 8, []int64{2, 10}},
		{"limit smaller than specials", []int64{10}, 2, 1, 1, []int64{1}},
		{"never empty", nil, -1, -1, 8, []int64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, frame(tt.ids, tt.bos, tt.eos, tt.maxLen))
		})
	}
}
