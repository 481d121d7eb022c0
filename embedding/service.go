package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/gomithril/embedd"
	"github.com/gomithril/embedd/codec"
	"github.com/gomithril/embedd/onnx"
	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/sync/semaphore"
)

// ErrInvalidConfig is returned by NewService when the configuration cannot work.
var ErrInvalidConfig = errors.New("invalid embedding config")

// Config holds embedding service configuration
type Config struct {
	ModelName         string
	ModelPath         string
	TokenizerPath     string
	SharedLibraryPath string
	InputNames        []string
	OutputName        string
	// Prefix is prepended to every text before tokenization.
	Prefix         string
	MaxSeqLen      int64
	EmbedDim       int64
	MaxConcurrency int64
}

// DefaultConfig returns default embedding configuration
func DefaultConfig() *Config {
	return &Config{
		ModelName:      "embeddinggemma-300m",
		ModelPath:      "models/model.onnx",
		TokenizerPath:  "models/tokenizer.model",
		InputNames:     []string{"input_ids", "attention_mask"},
		OutputName:     "sentence_embedding",
		MaxSeqLen:      512,
		EmbedDim:       768,
		MaxConcurrency: 4,
	}
}

func (c *Config) validate() error {
	switch {
	case c.ModelPath == "":
		return fmt.Errorf("%w: model path is empty", ErrInvalidConfig)
	case c.TokenizerPath == "":
		return fmt.Errorf("%w: tokenizer path is empty", ErrInvalidConfig)
	case len(c.InputNames) != 2:
		return fmt.Errorf("%w: want 2 input names (ids, mask), got %d", ErrInvalidConfig, len(c.InputNames))
	case c.OutputName == "":
		return fmt.Errorf("%w: output name is empty", ErrInvalidConfig)
	case c.MaxSeqLen < 1:
		return fmt.Errorf("%w: max sequence length must be positive", ErrInvalidConfig)
	case c.EmbedDim < 1:
		return fmt.Errorf("%w: embedding dimension must be positive", ErrInvalidConfig)
	case c.MaxConcurrency < 1:
		return fmt.Errorf("%w: max concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}

// Service owns the tokenizer and the ONNX session. It is built once at
// startup and shared read-only by all requests.
type Service struct {
	config  *Config
	codec   *codec.Codec
	session *ort.DynamicAdvancedSession
	slots   *semaphore.Weighted
}

var _ embedd.Encoder = (*Service)(nil)

// NewService loads the tokenizer and the model and runs one warm-up
// inference, so a model that cannot produce vectors of the configured
// dimension fails here instead of on the first request.
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	textCodec, err := codec.NewCodec(config.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text codec: %w", err)
	}

	if err := onnx.InitEnvironment(config.SharedLibraryPath); err != nil {
		return nil, err
	}

	outputs := []string{config.OutputName}
	session, err := onnx.NewDynamicSession(config.ModelPath, config.InputNames, outputs)
	if err != nil {
		releaseEnvironment()
		return nil, err
	}

	s := &Service{
		config:  config,
		codec:   textCodec,
		session: session,
		slots:   semaphore.NewWeighted(config.MaxConcurrency),
	}

	if _, err := s.Encode(context.Background(), []string{""}); err != nil {
		s.Close()
		return nil, fmt.Errorf("warm-up inference failed: %w", err)
	}
	log.Debug().Str("model", config.ModelName).Int64("dim", config.EmbedDim).Msg("embedding model ready")
	return s, nil
}

func (s *Service) Close() {
	if s.session != nil {
		if err := s.session.Destroy(); err != nil {
			log.Warn().Err(err).Msg("failed to destroy ONNX session")
		}
		s.session = nil
	}
	releaseEnvironment()
}

var destroyEnvironment = onnx.DestroyEnvironment

func releaseEnvironment() {
	if err := destroyEnvironment(); err != nil {
		log.Warn().Err(err).Msg("failed to destroy ONNX environment")
	}
}

func (s *Service) Dimensions() int { return int(s.config.EmbedDim) }

func (s *Service) ModelName() string { return s.config.ModelName }

// Embed returns the embedding of a single text.
func (s *Service) Embed(ctx context.Context, text string) (embedd.Embedding, error) {
	vectors, err := s.Encode(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Encode tokenizes texts and runs them through the model as one batch.
// Waiting for an inference slot honors ctx; the inference itself does not.
func (s *Service) Encode(ctx context.Context, texts []string) ([]embedd.Embedding, error) {
	if len(texts) == 0 {
		return []embedd.Embedding{}, nil
	}

	batch := make([][]int64, len(texts))
	for i, text := range texts {
		batch[i] = s.codec.EncodeWithSpecial(s.config.Prefix+text, int(s.config.MaxSeqLen))
	}

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.slots.Release(1)

	return s.GenerateBatch(batch)
}

// padBatch lays batch out row-major, zero padded to its longest sequence,
// with a matching attention mask.
func padBatch(batch [][]int64) (ids, mask []int64, seqLen int64) {
	for _, seq := range batch {
		seqLen = max(seqLen, int64(len(seq)))
	}

	ids = make([]int64, int64(len(batch))*seqLen)
	mask = make([]int64, len(ids))
	for b, seq := range batch {
		row := int64(b) * seqLen
		for i, id := range seq {
			ids[row+int64(i)] = id
			mask[row+int64(i)] = 1
		}
	}
	return ids, mask, seqLen
}

// splitRows copies a [rows, dim] buffer into independent vectors so callers
// never hold tensor memory.
func splitRows(flat []float32, rows, dim int) ([]embedd.Embedding, error) {
	if len(flat) != rows*dim {
		return nil, fmt.Errorf("model returned %d values, want %d rows of %d", len(flat), rows, dim)
	}
	results := make([]embedd.Embedding, rows)
	for b := 0; b < rows; b++ {
		v := make(embedd.Embedding, dim)
		copy(v, flat[b*dim:(b+1)*dim])
		results[b] = v
	}
	return results, nil
}

func (s *Service) prepareBatchTensors(batch [][]int64) (*onnx.ModelIO, error) {
	batchSize := int64(len(batch))
	paddedIds, attMask, seqLen := padBatch(batch)

	io := &onnx.ModelIO{}

	inputIdsTensor, err := ort.NewTensor(ort.NewShape(batchSize, seqLen), paddedIds)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	io.AddInput(inputIdsTensor)

	attMaskTensor, err := ort.NewTensor(ort.NewShape(batchSize, seqLen), attMask)
	if err != nil {
		io.Destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	io.AddInput(attMaskTensor)

	sentenceEmbedTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(batchSize, s.config.EmbedDim))
	if err != nil {
		io.Destroy()
		return nil, fmt.Errorf("failed to create sentence_embedding tensor: %w", err)
	}
	io.AddOutput(sentenceEmbedTensor)

	return io, nil
}

// GenerateBatch runs one inference over already tokenized sequences.
func (s *Service) GenerateBatch(batch [][]int64) ([]embedd.Embedding, error) {
	io, err := s.prepareBatchTensors(batch)
	if err != nil {
		return nil, err
	}
	defer io.Destroy()

	if err := s.session.Run(io.InputTensors, io.OutputTensors); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	allEmbeds, err := io.Float32Output(0)
	if err != nil {
		return nil, err
	}
	return splitRows(allEmbeds, len(batch), int(s.config.EmbedDim))
}
