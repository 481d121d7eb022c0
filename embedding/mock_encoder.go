package embedding

import (
	"context"

	"github.com/gomithril/embedd"
	"github.com/stretchr/testify/mock"
)

// MockEncoder is a mock implementation of embedd.Encoder using testify/mock.
type MockEncoder struct {
	mock.Mock
}

func (m *MockEncoder) Encode(ctx context.Context, texts []string) ([]embedd.Embedding, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]embedd.Embedding), args.Error(1)
}

func (m *MockEncoder) Dimensions() int {
	return m.Called().Int(0)
}

func (m *MockEncoder) ModelName() string {
	return m.Called().String(0)
}
